package hierarchy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkjeong/leadnet/internal/apperr"
	"github.com/mkjeong/leadnet/internal/model"
	"github.com/mkjeong/leadnet/internal/repository"
)

type stubUsers struct {
	byID map[string]model.User
	refs []model.UserRef

	refScans int
}

func (s *stubUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := s.byID[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (s *stubUsers) GetByEmail(context.Context, string) (*model.User, error)    { return nil, nil }
func (s *stubUsers) GetByUsername(context.Context, string) (*model.User, error) { return nil, nil }

func (s *stubUsers) ListRefs(context.Context) ([]model.UserRef, error) {
	s.refScans++
	return s.refs, nil
}

func (s *stubUsers) ListByUsernames(context.Context, []string, int, int) ([]model.User, error) {
	return nil, nil
}
func (s *stubUsers) CountByUsernames(context.Context, []string) (int64, error) { return 0, nil }
func (s *stubUsers) Insert(context.Context, model.User) error                  { return nil }
func (s *stubUsers) Save(context.Context, model.User) error                    { return nil }
func (s *stubUsers) Delete(context.Context, string) (bool, error)              { return false, nil }

var _ repository.UsersRepository = (*stubUsers)(nil)

func chainFixture() *stubUsers {
	return &stubUsers{
		byID: map[string]model.User{
			"u-alice": {ID: "u-alice", Username: "alice"},
			"u-bob":   {ID: "u-bob", Username: "bob", Referrer: "alice"},
		},
		refs: []model.UserRef{
			{Username: "alice"},
			{Username: "bob", Referrer: "alice"},
			{Username: "carol", Referrer: "bob"},
		},
	}
}

func TestResolveOwnUsername(t *testing.T) {
	svc := New(chainFixture())

	name, err := svc.ResolveOwnUsername(context.Background(), "u-alice")
	require.NoError(t, err)
	require.Equal(t, "alice", name)
}

func TestResolveOwnUsernameUnknownActor(t *testing.T) {
	svc := New(chainFixture())

	_, err := svc.ResolveOwnUsername(context.Background(), "u-nobody")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestResolveOwnUsernameMissingPrincipal(t *testing.T) {
	svc := New(chainFixture())

	_, err := svc.ResolveOwnUsername(context.Background(), "")
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestResolveDescendantsChain(t *testing.T) {
	svc := New(chainFixture())
	ctx := context.Background()

	withSelf, err := svc.ResolveDescendants(ctx, "u-alice", true)
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob", "carol"}, withSelf)

	withoutSelf, err := svc.ResolveDescendants(ctx, "u-alice", false)
	require.NoError(t, err)
	require.Equal(t, []string{"bob", "carol"}, withoutSelf)
}

func TestResolveDescendantsSelfUnion(t *testing.T) {
	// with-self result is exactly {own} ∪ without-self result
	svc := New(chainFixture())
	ctx := context.Background()

	withSelf, err := svc.ResolveDescendants(ctx, "u-bob", true)
	require.NoError(t, err)
	withoutSelf, err := svc.ResolveDescendants(ctx, "u-bob", false)
	require.NoError(t, err)

	require.NotContains(t, withoutSelf, "bob")
	require.ElementsMatch(t, append([]string{"bob"}, withoutSelf...), withSelf)
}

func TestResolveDescendantsLeaf(t *testing.T) {
	users := chainFixture()
	users.byID["u-carol"] = model.User{ID: "u-carol", Username: "carol", Referrer: "bob"}
	svc := New(users)

	scope, err := svc.ResolveDescendants(context.Background(), "u-carol", false)
	require.NoError(t, err)
	require.Empty(t, scope)
}

func TestResolveDescendantsBranching(t *testing.T) {
	users := &stubUsers{
		byID: map[string]model.User{"u-root": {ID: "u-root", Username: "root"}},
		refs: []model.UserRef{
			{Username: "root"},
			{Username: "l1a", Referrer: "root"},
			{Username: "l1b", Referrer: "root"},
			{Username: "l2a", Referrer: "l1a"},
			{Username: "l2b", Referrer: "l1b"},
			{Username: "other"},
			{Username: "stranger", Referrer: "other"},
		},
	}
	svc := New(users)

	scope, err := svc.ResolveDescendants(context.Background(), "u-root", false)
	require.NoError(t, err)
	require.Equal(t, []string{"l1a", "l1b", "l2a", "l2b"}, scope)
	require.Equal(t, 1, users.refScans, "adjacency is materialized from a single scan")
}

func TestResolveDescendantsTerminatesOnCycle(t *testing.T) {
	// malformed data: carol refers back to alice
	users := chainFixture()
	users.refs = append(users.refs, model.UserRef{Username: "alice", Referrer: "carol"})
	svc := New(users)

	scope, err := svc.ResolveDescendants(context.Background(), "u-alice", true)
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob", "carol"}, scope)
}
