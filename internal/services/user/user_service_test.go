package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/identity"
)

// fakeRepo keeps users in a map and records mirror writes.
type fakeRepo struct {
	users map[string]*User

	upsertErr error
	setErr    error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[string]*User{}}
}

func (r *fakeRepo) Upsert(_ context.Context, u *User) (*User, error) {
	if r.upsertErr != nil {
		return nil, r.upsertErr
	}
	cp := *u
	r.users[u.ID] = &cp
	return &cp, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (r *fakeRepo) SetEmail(_ context.Context, id, email string) error {
	if r.setErr != nil {
		return r.setErr
	}
	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Email = email
	u.EmailVerified = false
	return nil
}

func (r *fakeRepo) SetEmailVerified(_ context.Context, id string, verified bool) error {
	if r.setErr != nil {
		return r.setErr
	}
	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.EmailVerified = verified
	return nil
}

// fakeGateway records calls to the identity provider.
type fakeGateway struct {
	updatedAttrs  []identity.Attribute
	setPassword   string
	codeRequested bool
	confirmedCode string

	err error
}

func (g *fakeGateway) UpdateUserAttributes(_ context.Context, _ string, attrs []identity.Attribute) error {
	if g.err != nil {
		return g.err
	}
	g.updatedAttrs = attrs
	return nil
}

func (g *fakeGateway) SetUserPassword(_ context.Context, _, password string) error {
	if g.err != nil {
		return g.err
	}
	g.setPassword = password
	return nil
}

func (g *fakeGateway) RequestEmailVerificationCode(_ context.Context, _ string) error {
	if g.err != nil {
		return g.err
	}
	g.codeRequested = true
	return nil
}

func (g *fakeGateway) ConfirmEmailAttribute(_ context.Context, _, code string) error {
	if g.err != nil {
		return g.err
	}
	g.confirmedCode = code
	return nil
}

func seedUser(repo *fakeRepo) *User {
	u := &User{
		ID:            "u1",
		Username:      "jdoe",
		Name:          "J. Doe",
		Email:         "old@example.com",
		EmailVerified: true,
		Role:          "user",
	}
	repo.users[u.ID] = u
	return u
}

func strPtr(s string) *string { return &s }

func TestUpsertFromProfile_SyncsMirror(t *testing.T) {
	repo := newFakeRepo()
	svc := NewUserService(repo, &fakeGateway{})

	u, err := svc.UpsertFromProfile(context.Background(), &identity.Profile{
		Sub:           "u1",
		Username:      "jdoe",
		Name:          "J. Doe",
		Email:         "j@example.com",
		EmailVerified: true,
		Role:          "user",
		Permissions:   "read write",
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "j@example.com", u.Email)
	assert.True(t, u.EmailVerified)
	assert.Equal(t, "user", repo.users["u1"].Role)
}

func TestUpdateProfile_EmailChangeResetsVerifiedFlag(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo)
	gw := &fakeGateway{}
	svc := NewUserService(repo, gw)

	err := svc.UpdateProfile(context.Background(), "u1", "jdoe", &UpdateProfileRequest{
		Email: strPtr("new@example.com"),
	})
	require.NoError(t, err)

	require.Len(t, gw.updatedAttrs, 1)
	assert.Equal(t, "email", gw.updatedAttrs[0].Name)
	assert.Equal(t, "new@example.com", gw.updatedAttrs[0].Value)

	assert.Equal(t, "new@example.com", repo.users["u1"].Email)
	assert.False(t, repo.users["u1"].EmailVerified)
}

func TestUpdateProfile_NameOnlyLeavesEmailAlone(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo)
	gw := &fakeGateway{}
	svc := NewUserService(repo, gw)

	err := svc.UpdateProfile(context.Background(), "u1", "jdoe", &UpdateProfileRequest{
		Name: strPtr("  New Name  "),
	})
	require.NoError(t, err)

	require.Len(t, gw.updatedAttrs, 1)
	assert.Equal(t, "name", gw.updatedAttrs[0].Name)
	assert.Equal(t, "New Name", gw.updatedAttrs[0].Value)

	assert.Equal(t, "old@example.com", repo.users["u1"].Email)
	assert.True(t, repo.users["u1"].EmailVerified)
}

func TestUpdateProfile_NoFields(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo)
	svc := NewUserService(repo, &fakeGateway{})

	err := svc.UpdateProfile(context.Background(), "u1", "jdoe", &UpdateProfileRequest{})
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)

	err = svc.UpdateProfile(context.Background(), "u1", "jdoe", &UpdateProfileRequest{
		Name:  strPtr("   "),
		Email: strPtr(""),
	})
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
}

func TestUpdateProfile_InvalidEmail(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo)
	gw := &fakeGateway{}
	svc := NewUserService(repo, gw)

	err := svc.UpdateProfile(context.Background(), "u1", "jdoe", &UpdateProfileRequest{
		Email: strPtr("not-an-address"),
	})
	assert.ErrorIs(t, err, ErrInvalidEmail)
	assert.Empty(t, gw.updatedAttrs)
	assert.Equal(t, "old@example.com", repo.users["u1"].Email)
}

func TestUpdateProfile_GatewayFailureLeavesMirrorUntouched(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo)
	gw := &fakeGateway{err: assert.AnError}
	svc := NewUserService(repo, gw)

	err := svc.UpdateProfile(context.Background(), "u1", "jdoe", &UpdateProfileRequest{
		Email: strPtr("new@example.com"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)

	assert.Equal(t, "old@example.com", repo.users["u1"].Email)
	assert.True(t, repo.users["u1"].EmailVerified)
}

func TestConfirmEmail_MarksMirrorVerified(t *testing.T) {
	repo := newFakeRepo()
	u := seedUser(repo)
	u.EmailVerified = false
	gw := &fakeGateway{}
	svc := NewUserService(repo, gw)

	err := svc.ConfirmEmail(context.Background(), "u1", "token", "123456")
	require.NoError(t, err)
	assert.Equal(t, "123456", gw.confirmedCode)
	assert.True(t, repo.users["u1"].EmailVerified)
}

func TestConfirmEmail_ProviderRejectsCode(t *testing.T) {
	repo := newFakeRepo()
	u := seedUser(repo)
	u.EmailVerified = false
	svc := NewUserService(repo, &fakeGateway{err: assert.AnError})

	err := svc.ConfirmEmail(context.Background(), "u1", "token", "000000")
	require.Error(t, err)
	assert.False(t, repo.users["u1"].EmailVerified)
}

func TestResendVerificationEmail(t *testing.T) {
	gw := &fakeGateway{}
	svc := NewUserService(newFakeRepo(), gw)

	require.NoError(t, svc.ResendVerificationEmail(context.Background(), "token"))
	assert.True(t, gw.codeRequested)
}

func TestUpdatePassword(t *testing.T) {
	gw := &fakeGateway{}
	svc := NewUserService(newFakeRepo(), gw)

	err := svc.UpdatePassword(context.Background(), "jdoe", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	assert.Empty(t, gw.setPassword)

	require.NoError(t, svc.UpdatePassword(context.Background(), "jdoe", "longenough"))
	assert.Equal(t, "longenough", gw.setPassword)
}
