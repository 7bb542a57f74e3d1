package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkjeong/leadnet/internal/apperr"
	"github.com/mkjeong/leadnet/internal/auth"
	"github.com/mkjeong/leadnet/internal/model"
	"github.com/mkjeong/leadnet/internal/repository"
)

type memUsers struct {
	users []model.User
}

var _ repository.UsersRepository = (*memUsers)(nil)

func (m *memUsers) find(pred func(model.User) bool) *model.User {
	for i := range m.users {
		if pred(m.users[i]) {
			u := m.users[i]
			return &u
		}
	}
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	return m.find(func(u model.User) bool { return u.ID == id }), nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.find(func(u model.User) bool { return u.Email == email }), nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return m.find(func(u model.User) bool { return u.Username == username }), nil
}

func (m *memUsers) ListRefs(context.Context) ([]model.UserRef, error) {
	refs := make([]model.UserRef, 0, len(m.users))
	for _, u := range m.users {
		refs = append(refs, model.UserRef{Username: u.Username, Referrer: u.Referrer})
	}
	return refs, nil
}

func (m *memUsers) ListByUsernames(_ context.Context, usernames []string, limit, offset int) ([]model.User, error) {
	out := []model.User{}
	for _, name := range usernames {
		if u := m.find(func(u model.User) bool { return u.Username == name }); u != nil {
			out = append(out, *u)
		}
	}
	if offset >= len(out) {
		return []model.User{}, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memUsers) CountByUsernames(_ context.Context, usernames []string) (int64, error) {
	var n int64
	for _, name := range usernames {
		if u := m.find(func(u model.User) bool { return u.Username == name }); u != nil {
			n++
		}
	}
	return n, nil
}

func (m *memUsers) Insert(_ context.Context, u model.User) error {
	m.users = append(m.users, u)
	return nil
}

func (m *memUsers) Save(_ context.Context, u model.User) error {
	for i := range m.users {
		if m.users[i].ID == u.ID {
			m.users[i] = u
		}
	}
	return nil
}

func (m *memUsers) Delete(_ context.Context, id string) (bool, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type staticResolver struct {
	scope []string
}

func (s staticResolver) ResolveDescendants(context.Context, string, bool) ([]string, error) {
	return s.scope, nil
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newFixture(t *testing.T) (*Service, *memUsers) {
	t.Helper()
	repo := &memUsers{users: []model.User{
		{ID: "u-admin", Username: "admin", Email: "admin@x.kr", Status: "active", UserLevel: model.AdminLevel, PasswordHash: hash(t, "admin-pass-1")},
		{ID: "u-alice", Username: "alice", Email: "alice@x.kr", Status: "active", Referrer: "admin", UserLevel: 1, PasswordHash: hash(t, "alice-pass-1")},
	}}
	tokens := auth.NewTokenManager("test-secret", "leadnet-test", time.Hour)
	return New(repo, staticResolver{scope: []string{"alice"}}, tokens), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, repo := newFixture(t)
	ctx := context.Background()

	id, err := svc.Register(ctx, RegisterInput{
		Email:    "bob@x.kr",
		Username: "bob",
		Password: "bob-pass-123",
		Referrer: "alice",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	created := repo.find(func(u model.User) bool { return u.Username == "bob" })
	require.NotNil(t, created)
	require.Equal(t, "alice", created.Referrer)
	require.NotEqual(t, "bob-pass-123", created.PasswordHash)

	token, err := svc.Login(ctx, "bob@x.kr", "bob-pass-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
}

func TestRegisterRejectsUnknownReferrer(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "bob@x.kr",
		Username: "bob",
		Password: "bob-pass-123",
		Referrer: "nobody",
	})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRegisterRejectsTakenIdentity(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "alice@x.kr", Username: "someone", Password: "long-enough-1"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Register(ctx, RegisterInput{Email: "new@x.kr", Username: "alice", Password: "long-enough-1"})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.Login(context.Background(), "alice@x.kr", "wrong")
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.Login(context.Background(), "ghost@x.kr", "whatever")
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestIsAdmin(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	ok, err := svc.IsAdmin(ctx, "u-admin")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.IsAdmin(ctx, "u-alice")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUpdateUserRequiresAdmin(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.UpdateUser(context.Background(), "u-alice", "u-admin", model.UserPatch{})
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestUpdateUserBlankNeverOverwrites(t *testing.T) {
	svc, _ := newFixture(t)
	blank := ""
	status := "suspended"

	u, err := svc.UpdateUser(context.Background(), "u-admin", "u-alice", model.UserPatch{
		Username: &blank,
		Status:   &status,
	})
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
	require.Equal(t, "suspended", u.Status)
}

func TestDeleteUserRequiresAdmin(t *testing.T) {
	svc, repo := newFixture(t)
	ctx := context.Background()

	err := svc.DeleteUser(ctx, "u-alice", "u-admin")
	require.ErrorIs(t, err, apperr.ErrUnauthorized)

	require.NoError(t, svc.DeleteUser(ctx, "u-admin", "u-alice"))
	require.Nil(t, repo.find(func(u model.User) bool { return u.ID == "u-alice" }))

	err = svc.DeleteUser(ctx, "u-admin", "u-alice")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.ChangePassword(ctx, "u-alice", "new-pass-999"))

	_, err := svc.Login(ctx, "alice@x.kr", "alice-pass-1")
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)

	token, err := svc.Login(ctx, "alice@x.kr", "new-pass-999")
	require.NoError(t, err)
	require.NotEmpty(t, token)
}

func TestUsersUnderNetwork(t *testing.T) {
	svc, _ := newFixture(t)

	page, err := svc.UsersUnderNetwork(context.Background(), "u-admin", 30, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	require.Equal(t, "alice", page.Users[0].Username)
}
