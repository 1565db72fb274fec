package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/okravets/contactsbook/internal/models"
)

// UserRepository owns all reads and writes of user records.
type UserRepository struct {
	DB *gorm.DB
}

// GetByEmail returns the user with the given email, or nil when no such
// user exists. The lookup is case-sensitive, matching the stored value.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

// UpdateRefreshToken stores the last issued refresh token on the user row.
// Passing nil revokes the session.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, userID uint, token *string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("refresh_token", token).Error
}

// ConfirmEmail flips the confirmed flag for the user with the given email.
func (r *UserRepository) ConfirmEmail(ctx context.Context, email string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Update("confirmed", true).Error
}

// UpdateAvatar persists a new avatar URL and returns the updated user.
func (r *UserRepository) UpdateAvatar(ctx context.Context, email string, url *string) (*models.User, error) {
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Update("avatar_url", url).Error; err != nil {
		return nil, err
	}
	return r.GetByEmail(ctx, email)
}
