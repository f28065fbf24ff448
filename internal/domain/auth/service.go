// Package auth implements account registration and login on top of pkg/auth.
// Accounts only attribute saved readings to a user; the reading pipeline itself
// never requires one.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgauth "github.com/matiasleandrokruk/arcana/pkg/auth"
)

// ErrInvalidCredentials is returned by Login when email or password is incorrect.
// One error for both cases avoids leaking whether an email exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailTaken is returned by Register when the email is already registered.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidInput is returned by Register for a malformed email or too-short password.
var ErrInvalidInput = errors.New("invalid registration input")

const minPasswordLen = 8

// RegisterInput holds the data needed to create a user.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is returned after successful Register or Login.
//
//nolint:revive // auth.AuthResult reads fine at call sites outside the package
type AuthResult struct {
	Token  string
	UserID string
}

// TokenIssuer signs tokens for a user. *pkgauth.Issuer satisfies it.
type TokenIssuer interface {
	Generate(userID string) (string, error)
}

// Service is the SQLite-backed account service.
type Service struct {
	db     *sql.DB
	tokens TokenIssuer
	logger *slog.Logger
}

// NewService creates a Service.
func NewService(db *sql.DB, tokens TokenIssuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, tokens: tokens, logger: logger}
}

// Register creates a user and returns a JWT.
// The password is hashed with bcrypt before storage; plaintext is never stored.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name = email[:strings.IndexByte(email, '@')]
	}

	hash, err := pkgauth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("user id: %w", err)
	}
	userID := id.String()
	now := time.Now().UTC().Format(time.RFC3339)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_account (id, email, display_name, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, userID, email, name, hash, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issue(ctx, userID, "register")
}

// Login verifies credentials and returns a JWT.
// Any failure (unknown email, wrong password, query error) is ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	var userID, hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash FROM user_account WHERE email = ? LIMIT 1
	`, strings.TrimSpace(in.Email)).Scan(&userID, &hash)
	if err != nil {
		s.logFailure(ctx, "login", "user_not_found_or_query_error", err)
		return nil, ErrInvalidCredentials
	}

	if !pkgauth.VerifyPassword(hash, in.Password) {
		s.logFailure(ctx, "login", "invalid_password", nil)
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, userID, "login")
}

func (s *Service) issue(ctx context.Context, userID, action string) (*AuthResult, error) {
	token, err := s.tokens.Generate(userID)
	if err != nil {
		s.logFailure(ctx, action, "jwt_generation_failed", err)
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}
	s.logger.InfoContext(ctx, "auth success", slog.String("action", action), slog.String("user_id", userID))
	return &AuthResult{Token: token, UserID: userID}, nil
}

func (s *Service) logFailure(ctx context.Context, action, reason string, err error) {
	attrs := []any{slog.String("action", action), slog.String("reason", reason)}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		attrs = append(attrs, slog.Any("error", err))
	}
	s.logger.WarnContext(ctx, "auth failure", attrs...)
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || addr.Name != "" {
		return "", fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}
	return addr.Address, nil
}

// isUniqueViolation checks if an SQLite error is a UNIQUE constraint violation.
// modernc surfaces this as an error message containing "UNIQUE constraint failed".
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
