package models

import (
	"time"
)

const UsersTableName = "users"

// User is an account created on first Google sign-in
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Email     string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name      string     `gorm:"size:255" json:"name"`
	Picture   string     `gorm:"type:text" json:"picture"`
	GoogleID  *string    `gorm:"size:255;uniqueIndex" json:"-"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	IsAdmin   bool       `gorm:"default:false" json:"is_admin"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"-"`
}

func (User) TableName() string {
	return UsersTableName
}

// UserIdentity is the authenticated caller attached to a request
type UserIdentity struct {
	ID      uint   `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	IsAdmin bool   `json:"is_admin"`
	// Token is the raw bearer token, kept for logout
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// Identity returns the public identity of the user
func (u *User) Identity() *UserIdentity {
	return &UserIdentity{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Picture: u.Picture,
		IsAdmin: u.IsAdmin,
	}
}
