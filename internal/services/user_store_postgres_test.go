package services

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "6f1c2b8e-3a4d-4e5f-9a0b-1c2d3e4f5a6b"

func newPostgresStore(t *testing.T) (*PostgresUserStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresUserStore(db), mock
}

func TestPostgresCreate(t *testing.T) {
	store, mock := newPostgresStore(t)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("alice", "alice@example.com", "Alice", "https://cdn/a.png", "", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(testUserID, now, now))

	u := &models.User{Username: "alice", Email: "alice@example.com", FullName: "Alice", Avatar: "https://cdn/a.png", Password: "hash"}
	id, err := store.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, testUserID, id)
	assert.Equal(t, now, u.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateDuplicate(t *testing.T) {
	store, mock := newPostgresStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := store.Create(context.Background(), &models.User{Username: "alice"})
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestPostgresFindByUsernameOrEmail(t *testing.T) {
	cols := []string{"id", "username", "email", "full_name", "avatar", "cover_image", "password_hash", "refresh_token", "created_at", "updated_at"}
	now := time.Now().UTC()

	t.Run("email only uses first placeholder", func(t *testing.T) {
		store, mock := newPostgresStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1 LIMIT 1")).
			WithArgs("alice@example.com").
			WillReturnRows(sqlmock.NewRows(cols).AddRow(testUserID, "alice", "alice@example.com", "Alice", "a", "", "hash", nil, now, now))

		u, err := store.FindByUsernameOrEmail(context.Background(), "", "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "hash", u.Password)
		assert.Empty(t, u.RefreshToken)
	})

	t.Run("both fields", func(t *testing.T) {
		store, mock := newPostgresStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE username = $1 OR email = $2")).
			WithArgs("alice", "alice@example.com").
			WillReturnRows(sqlmock.NewRows(cols).AddRow(testUserID, "alice", "alice@example.com", "Alice", "a", "", "hash", "rt", now, now))

		u, err := store.FindByUsernameOrEmail(context.Background(), "alice", "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "rt", u.RefreshToken)
	})

	t.Run("no rows", func(t *testing.T) {
		store, mock := newPostgresStore(t)
		mock.ExpectQuery("SELECT").WillReturnError(sql.ErrNoRows)

		_, err := store.FindByUsernameOrEmail(context.Background(), "ghost", "")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("both blank", func(t *testing.T) {
		store, mock := newPostgresStore(t)
		_, err := store.FindByUsernameOrEmail(context.Background(), "", "")
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresFindPublicByIDOmitsCredentials(t *testing.T) {
	store, mock := newPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + publicUserColumns + " FROM users WHERE id = $1")).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "full_name", "avatar", "cover_image", "created_at", "updated_at"}).
			AddRow(testUserID, "alice", "alice@example.com", "Alice", "a", "", now, now))

	u, err := store.FindPublicByID(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Empty(t, u.Password)
	assert.Empty(t, u.RefreshToken)

	_, err = store.FindPublicByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPostgresRefreshTokenUpdates(t *testing.T) {
	store, mock := newPostgresStore(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET refresh_token = $2")).
		WithArgs(testUserID, "rt").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET refresh_token = NULL")).
		WithArgs(testUserID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, store.SetRefreshToken(ctx, testUserID, "rt"))
	assert.ErrorIs(t, store.ClearRefreshToken(ctx, testUserID), ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
