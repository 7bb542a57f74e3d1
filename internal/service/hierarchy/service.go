package hierarchy

import (
	"context"
	"sort"

	"github.com/mkjeong/leadnet/internal/apperr"
	"github.com/mkjeong/leadnet/internal/repository"
)

// Service resolves an actor id into the set of usernames that bound the
// actor's authorization scope.
type Service struct {
	users repository.UsersRepository
}

func New(users repository.UsersRepository) *Service {
	return &Service{users: users}
}

// ResolveOwnUsername maps an actor id to its username. Unknown ids are an
// error, not an empty result.
func (s *Service) ResolveOwnUsername(ctx context.Context, actorID string) (string, error) {
	if actorID == "" {
		return "", apperr.ErrUnauthenticated
	}
	u, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", apperr.NotFoundf("user %s", actorID)
	}
	return u.Username, nil
}

// ResolveDescendants walks the referrer relation downward from the actor's
// username and returns the transitive downline, sorted. The adjacency map is
// materialized from a single scan; the visited set guarantees termination
// even if stored data is unexpectedly cyclic.
func (s *Service) ResolveDescendants(ctx context.Context, actorID string, includeSelf bool) ([]string, error) {
	root, err := s.ResolveOwnUsername(ctx, actorID)
	if err != nil {
		return nil, err
	}

	refs, err := s.users.ListRefs(ctx)
	if err != nil {
		return nil, err
	}
	children := make(map[string][]string, len(refs))
	for _, ref := range refs {
		if ref.Referrer == "" {
			continue
		}
		children[ref.Referrer] = append(children[ref.Referrer], ref.Username)
	}

	visited := map[string]bool{root: true}
	queue := []string{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range children[cur] {
			if visited[child] {
				continue
			}
			visited[child] = true
			queue = append(queue, child)
		}
	}

	out := make([]string, 0, len(visited))
	for name := range visited {
		if !includeSelf && name == root {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}
