package credentials_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/jsdevtools/client1/internal/auth/credentials"
	"github.com/jsdevtools/client1/internal/db"
)

const userID = "5c5f3b2e-9b7a-4f15-8d52-0a4c7e6d9f01"

func newService(t *testing.T) (*credentials.Service, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return credentials.NewService(&db.DB{DB: sqlDB}), mock
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, version, err := credentials.HashPassword("correct-horse")
	require.NoError(t, err)
	require.Equal(t, credentials.HashVersionBcrypt, version)

	require.NoError(t, credentials.VerifyPassword(hash, "correct-horse"))
	require.Error(t, credentials.VerifyPassword(hash, "battery-staple"))
}

func TestHashPasswordTooShort(t *testing.T) {
	_, _, err := credentials.HashPassword("short")
	require.Error(t, err)
}

func TestRegisterNewUser(t *testing.T) {
	service, mock := newService(t)

	mock.ExpectQuery(`SELECT id FROM users`).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(userID))

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectExec(`INSERT INTO credentials`).
		WithArgs(userID, sqlmock.AnyArg(), credentials.HashVersionBcrypt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	got, err := service.Register(context.Background(), "jane@example.com", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, userID, got)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterExistingCredentials(t *testing.T) {
	service, mock := newService(t)

	mock.ExpectQuery(`SELECT id FROM users`).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(userID))

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := service.Register(context.Background(), "jane@example.com", "correct-horse")
	require.ErrorIs(t, err, credentials.ErrAlreadyRegistered)
}
