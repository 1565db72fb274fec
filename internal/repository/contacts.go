package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/okravets/contactsbook/internal/models"
)

// ContactRepository owns all reads and writes of contact records. Every
// query is filtered by the owning user id, so one user can never observe
// or mutate another user's contacts.
type ContactRepository struct {
	DB *gorm.DB
}

func (r *ContactRepository) owned(ctx context.Context, userID uint) *gorm.DB {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID)
}

func (r *ContactRepository) List(ctx context.Context, userID uint, offset, limit int) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.owned(ctx, userID).Offset(offset).Limit(limit).Find(&contacts).Error
	return contacts, err
}

// ListAll returns every contact of the owner without pagination.
func (r *ContactRepository) ListAll(ctx context.Context, userID uint) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.owned(ctx, userID).Find(&contacts).Error
	return contacts, err
}

func (r *ContactRepository) first(q *gorm.DB) (*models.Contact, error) {
	var contact models.Contact
	if err := q.First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}

func (r *ContactRepository) Get(ctx context.Context, userID, contactID uint) (*models.Contact, error) {
	return r.first(r.owned(ctx, userID).Where("id = ?", contactID))
}

func (r *ContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	return r.DB.WithContext(ctx).Create(contact).Error
}

func (r *ContactRepository) Save(ctx context.Context, contact *models.Contact) error {
	return r.DB.WithContext(ctx).Save(contact).Error
}

func (r *ContactRepository) Delete(ctx context.Context, contact *models.Contact) error {
	return r.DB.WithContext(ctx).Delete(contact).Error
}

// FindByFirstName matches the first name case-insensitively and returns
// the first match only.
func (r *ContactRepository) FindByFirstName(ctx context.Context, userID uint, firstName string) (*models.Contact, error) {
	return r.first(r.owned(ctx, userID).Where("LOWER(first_name) = ?", strings.ToLower(firstName)))
}

// FindByLastName matches the last name case-insensitively and returns the
// first match only.
func (r *ContactRepository) FindByLastName(ctx context.Context, userID uint, lastName string) (*models.Contact, error) {
	return r.first(r.owned(ctx, userID).Where("LOWER(last_name) = ?", strings.ToLower(lastName)))
}

// FindByEmail matches the contact email exactly, case-sensitively.
func (r *ContactRepository) FindByEmail(ctx context.Context, userID uint, email string) (*models.Contact, error) {
	return r.first(r.owned(ctx, userID).Where("email = ?", email))
}
