package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/taskdeck/taskdeck/internal/identity"
)

var (
	ErrNoFieldsToUpdate = errors.New("no data to update")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
)

// Repository is the store surface the service needs; *UserRepo implements it.
type Repository interface {
	Upsert(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	SetEmail(ctx context.Context, id, email string) error
	SetEmailVerified(ctx context.Context, id string, verified bool) error
}

// UserService owns the profile/credential operations. Credential changes are
// delegated to the identity gateway; the local mirror only tracks display
// state and is updated after the gateway call succeeds. The two stores are
// eventually consistent, not transactional: a crash between the calls leaves
// the mirror lagging the provider until the next login refresh.
type UserService struct {
	repo    Repository
	gateway identity.Gateway
}

func NewUserService(repo Repository, gateway identity.Gateway) *UserService {
	return &UserService{repo: repo, gateway: gateway}
}

// UpsertFromProfile syncs the mirror from a freshly verified login profile.
func (s *UserService) UpsertFromProfile(ctx context.Context, p *identity.Profile) (*User, error) {
	u, err := s.repo.Upsert(ctx, &User{
		ID:            p.Sub,
		Username:      p.Username,
		Name:          p.Name,
		Email:         p.Email,
		EmailVerified: p.EmailVerified,
		Role:          p.Role,
		Permissions:   p.Permissions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sync user from identity provider: %w", err)
	}

	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile pushes name/email changes to the identity gateway, then
// mirrors the email locally with the verified flag reset.
func (s *UserService) UpdateProfile(ctx context.Context, userID, username string, req *UpdateProfileRequest) error {
	attrs := []identity.Attribute{}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		attrs = append(attrs, identity.Attribute{Name: "name", Value: strings.TrimSpace(*req.Name)})
	}

	var email string
	if req.Email != nil && *req.Email != "" {
		addr, err := mail.ParseAddress(*req.Email)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidEmail, *req.Email)
		}
		email = addr.Address
		attrs = append(attrs, identity.Attribute{Name: "email", Value: email})
	}

	if len(attrs) == 0 {
		return ErrNoFieldsToUpdate
	}

	if err := s.gateway.UpdateUserAttributes(ctx, username, attrs); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if email != "" {
		if err := s.repo.SetEmail(ctx, userID, email); err != nil {
			return fmt.Errorf("failed to mirror email change: %w", err)
		}
	}

	return nil
}

// ResendVerificationEmail asks the provider to send a fresh code for the
// email attribute. No local state changes.
func (s *UserService) ResendVerificationEmail(ctx context.Context, accessToken string) error {
	if err := s.gateway.RequestEmailVerificationCode(ctx, accessToken); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	return nil
}

// ConfirmEmail submits the code to the provider and, on success, marks the
// mirrored email verified.
func (s *UserService) ConfirmEmail(ctx context.Context, userID, accessToken, code string) error {
	if err := s.gateway.ConfirmEmailAttribute(ctx, accessToken, code); err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}

	if err := s.repo.SetEmailVerified(ctx, userID, true); err != nil {
		return fmt.Errorf("failed to mirror email verification: %w", err)
	}

	return nil
}

// UpdatePassword sets a new permanent password with the provider. The match
// check against a confirmation field is a UI concern; only the length rule
// lives here.
func (s *UserService) UpdatePassword(ctx context.Context, username, password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	if err := s.gateway.SetUserPassword(ctx, username, password); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
