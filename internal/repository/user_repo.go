package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nsvirk/bhavapi/internal/models"
	"gorm.io/gorm"
)

// ErrUserNotFound is returned when no user matches
var ErrUserNotFound = errors.New("user not found")

// UserRepository stores users
type UserRepository struct {
	DB *gorm.DB
}

// NewUserRepository creates a new repository for users
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// GetUserByID gets a user by primary key
func (r *UserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpsertGoogleUser finds the user by Google subject, then by email, creating
// it when neither matches, and stamps the login time
func (r *UserRepository) UpsertGoogleUser(ctx context.Context, googleID, email, name, picture string, loginAt time.Time) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("google_id = ?", googleID).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = tx.Where("email = ?", email).First(&user).Error
			if err == nil {
				// link the Google account to the existing user
				user.GoogleID = &googleID
				user.Picture = picture
			}
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = models.User{
				Email:    email,
				Name:     name,
				Picture:  picture,
				GoogleID: &googleID,
				IsActive: true,
			}
		} else if err != nil {
			return err
		}

		user.LastLogin = &loginAt
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
