// Package account holds the credential store: user registration, password hashing and
// authentication.
package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/naijamap/internal/database"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrConflict is returned when the username or email is already taken.
	ErrConflict = errors.New("user already exists")
	// ErrInvalidCredentials is returned for an unknown username as well as a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrMissingField is returned when a required registration field is empty.
	ErrMissingField = errors.New("missing required field")
)

// MissingFieldError names the empty registration field. It matches ErrMissingField.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return e.Field + " is required"
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// Store registers and authenticates users.
type Store struct {
	db   database.DB
	cost int
	// dummyHash is compared against when the username is unknown so both failure paths
	// cost one bcrypt comparison.
	dummyHash []byte
}

// Option configures a Store.
type Option func(*Store)

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(s *Store) {
		s.cost = cost
	}
}

// New creates a new credential store.
func New(db database.DB, opts ...Option) (*Store, error) {
	s := &Store{
		db:   db,
		cost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("naijamap-dummy-password"), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}
	s.dummyHash = dummy
	return s, nil
}

// Register creates a user with a hashed password.
// Neither the username nor the email may already be in use.
func (s *Store) Register(ctx context.Context, username, email, password string) (*database.User, error) {
	switch {
	case username == "":
		return nil, &MissingFieldError{Field: "username"}
	case email == "":
		return nil, &MissingFieldError{Field: "email"}
	case password == "":
		return nil, &MissingFieldError{Field: "password"}
	}

	_, err := s.db.FindUserByUsernameOrEmail(ctx, username, email)
	if err == nil {
		return nil, ErrConflict
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.db.CreateUser(ctx, username, email, string(hash))
	if err != nil {
		// lost a race against a concurrent signup
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("registered user", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Authenticate returns the user if the password matches.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*database.User, error) {
	user, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !VerifyPassword(user, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// VerifyPassword reports whether password matches the stored hash of the user.
func VerifyPassword(user *database.User, password string) bool {
	if user == nil || user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}
