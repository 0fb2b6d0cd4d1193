package repository

import (
	"context"

	"github.com/nsvirk/bhavapi/internal/models"
	"gorm.io/gorm"
)

// SessionRepository stores issued access tokens
type SessionRepository struct {
	DB *gorm.DB
}

// NewSessionRepository creates a new repository for user sessions
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

// CreateSession inserts a session row
func (r *SessionRepository) CreateSession(ctx context.Context, session *models.UserSession) error {
	return r.DB.WithContext(ctx).Create(session).Error
}

// InvalidateSession marks the session for tokenHash of userID as invalid
// and returns the number of rows changed
func (r *SessionRepository) InvalidateSession(ctx context.Context, userID uint, tokenHash string) (int64, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.UserSession{}).
		Where("token_hash = ? AND user_id = ?", tokenHash, userID).
		Update("is_valid", false)
	return res.RowsAffected, res.Error
}
