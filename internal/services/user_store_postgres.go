package services

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	userColumns       = `id, username, email, full_name, avatar, cover_image, password_hash, refresh_token, created_at, updated_at`
	publicUserColumns = `id, username, email, full_name, avatar, cover_image, created_at, updated_at`

	pqUniqueViolation = "23505"
)

// PostgresUserStore keeps users in the users table created by
// database.InitPostgresTables.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	var (
		conds []string
		args  []interface{}
	)
	if username != "" {
		args = append(args, username)
		conds = append(conds, "username = $1")
	}
	if email != "" {
		args = append(args, email)
		conds = append(conds, "email = $"+strconv.Itoa(len(args)))
	}
	if len(conds) == 0 {
		return nil, ErrUserNotFound
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + strings.Join(conds, " OR ") + ` LIMIT 1`
	return scanFullUser(s.db.QueryRowContext(ctx, query, args...))
}

func (s *PostgresUserStore) Create(ctx context.Context, user *models.User) (string, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, full_name, avatar, cover_image, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		user.Username, user.Email, user.FullName, user.Avatar, user.CoverImage, user.Password,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return "", ErrDuplicateUser
		}
		return "", err
	}
	return user.ID, nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}
	return scanFullUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *PostgresUserStore) FindPublicByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}

	var u models.User
	err := s.db.QueryRowContext(ctx, `SELECT `+publicUserColumns+` FROM users WHERE id = $1`, id).Scan(
		&u.ID, &u.Username, &u.Email, &u.FullName, &u.Avatar, &u.CoverImage, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresUserStore) SetRefreshToken(ctx context.Context, id, token string) error {
	return s.exec(ctx, id, `UPDATE users SET refresh_token = $2, updated_at = NOW() WHERE id = $1`, token)
}

func (s *PostgresUserStore) ClearRefreshToken(ctx context.Context, id string) error {
	return s.exec(ctx, id, `UPDATE users SET refresh_token = NULL, updated_at = NOW() WHERE id = $1`)
}

func (s *PostgresUserStore) exec(ctx context.Context, id, query string, args ...interface{}) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrUserNotFound
	}
	res, err := s.db.ExecContext(ctx, query, append([]interface{}{id}, args...)...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanFullUser(row *sql.Row) (*models.User, error) {
	var (
		u       models.User
		refresh sql.NullString
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Avatar, &u.CoverImage,
		&u.Password, &refresh, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.RefreshToken = refresh.String
	return &u, nil
}
