package models

import (
	"time"
)

// User is the account record. Password holds the argon2id hash; neither it
// nor RefreshToken is ever serialized to clients.
type User struct {
	ID         string    `json:"_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Password     string `json:"-"`
	RefreshToken string `json:"-"`
}

// Public returns a copy without credential fields
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Password = ""
	cp.RefreshToken = ""
	return &cp
}
