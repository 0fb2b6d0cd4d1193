// Package models contains the persisted models of the API
package models

import (
	"time"
)

const UserSessionsTableName = "user_sessions"

// UserSession records one issued access token
type UserSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	TokenHash string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	TokenID   string    `gorm:"size:36;index" json:"token_id"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	IsValid   bool      `gorm:"default:true" json:"is_valid"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (UserSession) TableName() string {
	return UserSessionsTableName
}
