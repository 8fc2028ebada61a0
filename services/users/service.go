package users

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"

	"todolists/internal/database"
	"todolists/models"
)

const (
	maxUsernameLength = 150
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

// reservedUsernames share the /users/{name}/ namespace with the account pages.
var reservedUsernames = map[string]bool{
	"login":    true,
	"logout":   true,
	"register": true,
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// FieldError reports a problem with a single registration field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

type userStore interface {
	Insert(ctx context.Context, u *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

var _ userStore = (*database.UserRepository)(nil)

// Service manages accounts.
type Service struct {
	store userStore
	cost  int
	now   func() time.Time
}

// NewService returns an account service hashing with bcrypt.DefaultCost.
func NewService(store userStore) *Service {
	return &Service{store: store, cost: bcrypt.DefaultCost, now: time.Now}
}

// SetHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *Service) SetHashCost(cost int) {
	s.cost = cost
}

// NormalizeUsername trims and NFC-normalizes a username.
func NormalizeUsername(username string) string {
	return norm.NFC.String(strings.TrimSpace(username))
}

// ValidateUsername checks length, the allowed character set
// (letters, digits and @.+-_) and rejects names reserved for account pages.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n == 0 {
		return &FieldError{Field: "username", Message: "is required"}
	}
	if n > maxUsernameLength {
		return &FieldError{Field: "username", Message: fmt.Sprintf("must be at most %d characters", maxUsernameLength)}
	}
	for _, r := range username {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("@.+-_", r) {
			continue
		}
		return &FieldError{Field: "username", Message: "may contain only letters, digits and @/./+/-/_"}
	}
	if reservedUsernames[strings.ToLower(username)] {
		return &FieldError{Field: "username", Message: "is reserved"}
	}
	return nil
}

// Register creates an account after validating the username and password.
func (s *Service) Register(ctx context.Context, username, password, confirm string) (*models.User, error) {
	username = NormalizeUsername(username)
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, &FieldError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	if len(password) > maxPasswordBytes {
		return nil, &FieldError{Field: "password", Message: fmt.Sprintf("must be at most %d bytes", maxPasswordBytes)}
	}
	if password != confirm {
		return nil, &FieldError{Field: "confirm", Message: "passwords do not match"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.store.Insert(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	log.Printf("[users] registered user id=%d username=%q", user.ID, user.Username)
	return user, nil
}

// Authenticate returns the user when the password matches.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.GetByUsername(ctx, NormalizeUsername(username))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetByUsername returns a user by exact username.
func (s *Service) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.GetByUsername(ctx, NormalizeUsername(username))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}
