package config

import (
	"time"

	"todolists/internal/database"
	"todolists/internal/logging"
	"todolists/services/lists"
)

const (
	defaultSessionTTL    = 14 * 24 * time.Hour
	defaultPurgeInterval = 30 * time.Minute
)

// DatabaseConfig converts settings into the database layer's configuration.
func (s Settings) DatabaseConfig() database.Config {
	return database.Config{DatabasePath: s.Database.Path}
}

// ListPolicy converts settings into the list ownership policy.
func (s Settings) ListPolicy() lists.Policy {
	return lists.Policy{AllowAnonymousOwner: s.Lists.AllowAnonymousOwner}
}

// LoggingConfig converts settings into the logging setup.
func (s Settings) LoggingConfig() logging.Config {
	return logging.Config{
		File:       s.Log.File,
		MaxSizeMB:  s.Log.MaxSizeMB,
		MaxBackups: s.Log.MaxBackups,
		MaxAgeDays: s.Log.MaxAgeDays,
		Compress:   s.Log.Compress,
	}
}

// SessionTTL returns how long login sessions stay valid.
func (s SessionSettings) SessionTTL() time.Duration {
	if s.TTLHours <= 0 {
		return defaultSessionTTL
	}
	return time.Duration(s.TTLHours) * time.Hour
}

// PurgeInterval returns how often expired sessions are removed.
func (s SessionSettings) PurgeInterval() time.Duration {
	if s.PurgeIntervalMinutes <= 0 {
		return defaultPurgeInterval
	}
	return time.Duration(s.PurgeIntervalMinutes) * time.Minute
}

// ReadTimeout and WriteTimeout bound HTTP request handling.
func (s ServerSettings) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

func (s ServerSettings) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}
