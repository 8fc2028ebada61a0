package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Settings is the on-disk configuration.
type Settings struct {
	Server   ServerSettings   `yaml:"server"`
	Database DatabaseSettings `yaml:"database"`
	Sessions SessionSettings  `yaml:"sessions"`
	Lists    ListSettings     `yaml:"lists"`
	Log      LogSettings      `yaml:"log"`
}

type ServerSettings struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// TemplateDir overrides the embedded HTML templates when set.
	TemplateDir         string `yaml:"templateDir,omitempty"`
	ReadTimeoutSeconds  int    `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds int    `yaml:"writeTimeoutSeconds"`
	// MaxConnections caps concurrently accepted connections; 0 disables the cap.
	MaxConnections int `yaml:"maxConnections"`
}

type DatabaseSettings struct {
	Path string `yaml:"path"`
}

type SessionSettings struct {
	CookieName           string `yaml:"cookieName"`
	TTLHours             int    `yaml:"ttlHours"`
	SecureCookie         bool   `yaml:"secureCookie"`
	PurgeIntervalMinutes int    `yaml:"purgeIntervalMinutes"`
}

type ListSettings struct {
	// AllowAnonymousOwner lets signed-out visitors create lists with no owner.
	AllowAnonymousOwner bool `yaml:"allowAnonymousOwner"`
}

type LogSettings struct {
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

// DefaultSettings returns the configuration used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Host:                "0.0.0.0",
			Port:                8000,
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 15,
			MaxConnections:      256,
		},
		Database: DatabaseSettings{
			Path: filepath.Join("data", "todolists.db"),
		},
		Sessions: SessionSettings{
			CookieName:           "todolists_session",
			TTLHours:             24 * 14,
			PurgeIntervalMinutes: 30,
		},
		Log: LogSettings{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Addr returns host:port for the HTTP listener.
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Manager loads and saves settings from a YAML file.
type Manager struct {
	path string
	mu   sync.RWMutex
}

// NewManager creates a manager for the given settings file.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Path returns the settings file path.
func (m *Manager) Path() string {
	return m.path
}

// Load reads the settings file, falling back to defaults when it does not
// exist, and applies environment overrides.
func (m *Manager) Load() (Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	settings := DefaultSettings()
	if m.path != "" {
		data, err := os.ReadFile(m.path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Settings{}, fmt.Errorf("read settings: %w", err)
		default:
			if err := yaml.Unmarshal(data, &settings); err != nil {
				return Settings{}, fmt.Errorf("parse settings %s: %w", m.path, err)
			}
		}
	}

	if err := applyEnv(&settings); err != nil {
		return Settings{}, err
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Save writes settings to the file, creating its directory if needed.
func (m *Manager) Save(settings Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := settings.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if dir := filepath.Dir(m.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create settings directory: %w", err)
		}
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (s Settings) Validate() error {
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", s.Server.Port)
	}
	if strings.TrimSpace(s.Database.Path) == "" {
		return errors.New("database path is required")
	}
	if strings.TrimSpace(s.Sessions.CookieName) == "" {
		return errors.New("session cookie name is required")
	}
	if s.Sessions.TTLHours <= 0 {
		return fmt.Errorf("invalid session ttl %dh", s.Sessions.TTLHours)
	}
	return nil
}

func applyEnv(s *Settings) error {
	if v := strings.TrimSpace(os.Getenv("TODOLISTS_DB_PATH")); v != "" {
		s.Database.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("TODOLISTS_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TODOLISTS_PORT: %w", err)
		}
		s.Server.Port = port
	}
	if v := strings.TrimSpace(os.Getenv("TODOLISTS_ALLOW_ANONYMOUS_OWNER")); v != "" {
		allow, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TODOLISTS_ALLOW_ANONYMOUS_OWNER: %w", err)
		}
		s.Lists.AllowAnonymousOwner = allow
	}
	return nil
}
