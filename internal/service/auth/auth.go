package auth

import (
	"context"
	"errors"

	"github.com/okravets/contactsbook/internal/hash"
	"github.com/okravets/contactsbook/internal/logging"
	"github.com/okravets/contactsbook/internal/models"
	"github.com/okravets/contactsbook/internal/repository"
	"github.com/okravets/contactsbook/internal/tokens"
)

var (
	// ErrEmailTaken reports a signup with an already registered email.
	ErrEmailTaken = errors.New("account already exists")
	// ErrUnauthorized covers bad credentials, unconfirmed accounts and
	// invalid, expired or mismatched tokens. Callers get no hint which
	// factor failed.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidEmailToken reports a malformed or expired verification token.
	ErrInvalidEmailToken = errors.New("invalid token for email verification")
	// ErrVerification reports a verification token whose subject no longer
	// resolves to a user.
	ErrVerification = errors.New("verification error")
)

// Notifier enqueues a confirmation email. Implementations are expected to
// deliver asynchronously; delivery is best effort and never blocks signup.
type Notifier interface {
	SendConfirmation(email, username string)
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Service owns the credential lifecycle: signup, email confirmation,
// login, refresh rotation and current-user resolution.
type Service struct {
	Users    *repository.UserRepository
	Tokens   *tokens.Manager
	Notifier Notifier
}

func (s *Service) notify(email, username string) {
	if s.Notifier != nil {
		s.Notifier.SendConfirmation(email, username)
	}
}

// Signup registers a new unconfirmed user and enqueues the confirmation
// email. A duplicate email fails with ErrEmailTaken.
func (s *Service) Signup(ctx context.Context, email, username, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	existing, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		l.Warn("signup rejected", "reason", "email already registered")
		return nil, ErrEmailTaken
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
	}
	if err := s.Users.Create(ctx, &user); err != nil {
		return nil, err
	}

	s.notify(user.Email, user.Username)
	l.Info("user created", "user_id", user.ID)
	return &user, nil
}

// Login verifies the credentials and issues a fresh access/refresh pair.
// Unknown email, wrong password and unconfirmed account all fail with the
// same ErrUnauthorized.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		l.Warn("login failed", "reason", "unknown email")
		return nil, ErrUnauthorized
	}
	if !user.Confirmed {
		l.Warn("login failed", "reason", "email not confirmed", "user_id", user.ID)
		return nil, ErrUnauthorized
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login failed", "reason", "wrong password", "user_id", user.ID)
		return nil, ErrUnauthorized
	}

	return s.issuePair(ctx, user)
}

// Refresh redeems a refresh token for a new pair. The presented token must
// equal the stored one; a mismatch revokes the session entirely so a
// stolen or already rotated token cannot be replayed.
func (s *Service) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	email, err := s.Tokens.DecodeRefreshToken(presented)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}

	if user.RefreshToken == nil || *user.RefreshToken != presented {
		l.Warn("refresh token reuse detected, revoking session", "user_id", user.ID)
		if err := s.Users.UpdateRefreshToken(ctx, user.ID, nil); err != nil {
			return nil, err
		}
		return nil, ErrUnauthorized
	}

	return s.issuePair(ctx, user)
}

func (s *Service) issuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, err := s.Tokens.CreateAccessToken(user.Email, 0)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.Tokens.CreateRefreshToken(user.Email, 0)
	if err != nil {
		return nil, err
	}
	if err := s.Users.UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// Logout revokes the stored refresh token.
func (s *Service) Logout(ctx context.Context, user *models.User) error {
	return s.Users.UpdateRefreshToken(ctx, user.ID, nil)
}

// ConfirmEmail flips the confirmed flag for the token's subject. The
// returned bool reports whether the email was already confirmed.
func (s *Service) ConfirmEmail(ctx context.Context, token string) (bool, error) {
	email, err := s.Tokens.DecodeEmailToken(token)
	if err != nil {
		return false, ErrInvalidEmailToken
	}

	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, ErrVerification
	}
	if user.Confirmed {
		return true, nil
	}

	if err := s.Users.ConfirmEmail(ctx, email); err != nil {
		return false, err
	}
	logging.FromContext(ctx).Info("email confirmed", "user_id", user.ID)
	return false, nil
}

// RequestConfirmation re-enqueues the confirmation email. An unknown email
// is silently accepted so callers cannot probe for accounts. The returned
// bool reports whether the email was already confirmed.
func (s *Service) RequestConfirmation(ctx context.Context, email string) (bool, error) {
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}
	if user.Confirmed {
		return true, nil
	}

	s.notify(user.Email, user.Username)
	return false, nil
}

// CurrentUser resolves the bearer access token to the user it names.
func (s *Service) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	email, err := s.Tokens.DecodeAccessToken(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// UpdateAvatar persists the uploaded avatar URL onto the user record.
func (s *Service) UpdateAvatar(ctx context.Context, email string, url string) (*models.User, error) {
	return s.Users.UpdateAvatar(ctx, email, &url)
}
