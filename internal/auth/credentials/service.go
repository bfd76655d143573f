package credentials

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/jsdevtools/client1/internal/db"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyRegistered  = errors.New("credentials already exist")
)

// Account is what Authenticate resolves a valid email/password pair to.
type Account struct {
	UserID      string
	Email       string
	DisplayName string
}

type Service struct {
	db *db.DB
}

func NewService(db *db.DB) *Service {
	return &Service{db: db}
}

// Register creates a user with the given password, finding the user by
// email first so an operator seed can run against an existing row.
func (s *Service) Register(
	ctx context.Context,
	email string,
	password string,
) (string, error) {

	var userID uuid.UUID

	// 1. Find or create user by email
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(&userID)

	if err == sql.ErrNoRows {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO users (email)
			VALUES ($1)
			RETURNING id
		`, email).Scan(&userID)
	}

	if err != nil {
		return "", err
	}

	// 2. Check if credentials already exist
	var exists bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM credentials WHERE user_id = $1
		)
	`, userID).Scan(&exists)

	if err != nil {
		return "", err
	}

	if exists {
		return "", ErrAlreadyRegistered
	}

	// 3. Hash password
	hash, version, err := HashPassword(password)
	if err != nil {
		return "", err
	}

	// 4. Insert credentials
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (user_id, password_hash, hash_version)
		VALUES ($1, $2, $3)
	`, userID, hash, version)

	if err != nil {
		return "", err
	}

	return userID.String(), nil
}

// Authenticate verifies an email/password pair against stored
// credentials. The same error covers unknown users and wrong passwords
// so callers cannot probe which emails exist.
func (s *Service) Authenticate(
	ctx context.Context,
	email string,
	password string,
) (Account, error) {

	var (
		userID       uuid.UUID
		accountEmail string
		displayName  string
		passwordHash string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.display_name, c.password_hash
		FROM users u
		JOIN credentials c ON c.user_id = u.id
		WHERE LOWER(u.email) = LOWER($1)
	`, email).Scan(&userID, &accountEmail, &displayName, &passwordHash)

	if err != nil {
		return Account{}, ErrInvalidCredentials
	}

	if err := VerifyPassword(passwordHash, password); err != nil {
		return Account{}, ErrInvalidCredentials
	}

	return Account{
		UserID:      userID.String(),
		Email:       accountEmail,
		DisplayName: displayName,
	}, nil
}
