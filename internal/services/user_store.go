package services

import (
	"context"
	"errors"

	"github.com/AnshRaj112/videotube-backend/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user with email or username already exists")
)

// UserStore persists user records. Implementations return ErrUserNotFound
// for missing records and ErrDuplicateUser when a unique field collides.
type UserStore interface {
	// FindByUsernameOrEmail matches either field; blank arguments are ignored.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	// Create inserts the user and fills in ID and timestamps.
	Create(ctx context.Context, user *models.User) (string, error)
	// FindByID returns the full record, credentials included.
	FindByID(ctx context.Context, id string) (*models.User, error)
	// FindPublicByID returns the record without password and refresh token.
	FindPublicByID(ctx context.Context, id string) (*models.User, error)
	SetRefreshToken(ctx context.Context, id, token string) error
	ClearRefreshToken(ctx context.Context, id string) error
}
