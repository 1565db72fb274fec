package contacts

import (
	"context"
	"time"

	"github.com/okravets/contactsbook/internal/models"
	"github.com/okravets/contactsbook/internal/repository"
)

const birthdayWindowDays = 7

// Fields carries the full contact payload. Updates replace all five
// fields, there is no partial patch.
type Fields struct {
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Birthday    time.Time `json:"birthday"`
}

// Service implements the contact operations, each scoped to the owning
// user. Absent records are reported as a nil contact with a nil error.
type Service struct {
	Repo *repository.ContactRepository

	// Now is overridable so the birthday window can be tested at fixed
	// dates. Defaults to time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) List(ctx context.Context, owner uint, offset, limit int) ([]models.Contact, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	return s.Repo.List(ctx, owner, offset, limit)
}

func (s *Service) Get(ctx context.Context, owner, contactID uint) (*models.Contact, error) {
	return s.Repo.Get(ctx, owner, contactID)
}

func (s *Service) Create(ctx context.Context, owner uint, fields Fields) (*models.Contact, error) {
	contact := models.Contact{
		FirstName:   fields.FirstName,
		LastName:    fields.LastName,
		Email:       fields.Email,
		PhoneNumber: fields.PhoneNumber,
		Birthday:    fields.Birthday,
		UserID:      owner,
	}
	if err := s.Repo.Create(ctx, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// Update replaces all fields of the matched contact. It returns nil when
// no contact matches the id under this owner; nothing is created.
func (s *Service) Update(ctx context.Context, owner, contactID uint, fields Fields) (*models.Contact, error) {
	contact, err := s.Repo.Get(ctx, owner, contactID)
	if err != nil || contact == nil {
		return nil, err
	}

	contact.FirstName = fields.FirstName
	contact.LastName = fields.LastName
	contact.Email = fields.Email
	contact.PhoneNumber = fields.PhoneNumber
	contact.Birthday = fields.Birthday

	if err := s.Repo.Save(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// Delete removes and returns the matched contact, or nil when no contact
// matches the id under this owner.
func (s *Service) Delete(ctx context.Context, owner, contactID uint) (*models.Contact, error) {
	contact, err := s.Repo.Get(ctx, owner, contactID)
	if err != nil || contact == nil {
		return nil, err
	}
	if err := s.Repo.Delete(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// FindByFirstName returns the first contact whose first name matches
// regardless of case. When several contacts share a first name only the
// first match is returned.
func (s *Service) FindByFirstName(ctx context.Context, owner uint, firstName string) (*models.Contact, error) {
	return s.Repo.FindByFirstName(ctx, owner, firstName)
}

// FindByLastName returns the first contact whose last name matches
// regardless of case.
func (s *Service) FindByLastName(ctx context.Context, owner uint, lastName string) (*models.Contact, error) {
	return s.Repo.FindByLastName(ctx, owner, lastName)
}

// FindByEmail returns the contact with exactly this email, case-sensitive.
func (s *Service) FindByEmail(ctx context.Context, owner uint, email string) (*models.Contact, error) {
	return s.Repo.FindByEmail(ctx, owner, email)
}

// UpcomingBirthdays returns every contact of the owner whose birthday
// falls within [today, today+7] inclusive, ignoring the birth year. The
// candidate birthday is placed in the current year, or the next year when
// it has already passed, so the window works across a year boundary.
func (s *Service) UpcomingBirthdays(ctx context.Context, owner uint) ([]models.Contact, error) {
	all, err := s.Repo.ListAll(ctx, owner)
	if err != nil {
		return nil, err
	}

	today := dateOnly(s.now())
	windowEnd := today.AddDate(0, 0, birthdayWindowDays)

	upcoming := make([]models.Contact, 0)
	for _, contact := range all {
		candidate := nextOccurrence(contact.Birthday, today)
		if !candidate.After(windowEnd) {
			upcoming = append(upcoming, contact)
		}
	}
	return upcoming, nil
}

// nextOccurrence maps a birthday onto its next calendar occurrence on or
// after today. Feb 29 birthdays normalize to Mar 1 in non-leap years.
func nextOccurrence(birthday, today time.Time) time.Time {
	candidate := time.Date(today.Year(), birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	if candidate.Before(today) {
		candidate = time.Date(today.Year()+1, birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	}
	return candidate
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
