package repository

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkjeong/leadnet/internal/model"
)

func TestBuildWhereUnscoped(t *testing.T) {
	where, args, err := buildWhere(RecordFilter{})
	require.NoError(t, err)
	require.Empty(t, where)
	require.Empty(t, args)
}

func TestBuildWhereEmptyScopeNeverMatches(t *testing.T) {
	where, args, err := buildWhere(RecordFilter{Scoped: true})
	require.NoError(t, err)
	require.Equal(t, " WHERE 1 = 0", where)
	require.Empty(t, args)
}

func TestBuildWhereScopeAndType(t *testing.T) {
	where, args, err := buildWhere(RecordFilter{
		Scoped:   true,
		Managers: []string{"alice", "bob", ""},
		Type:     model.TypePotential,
	})
	require.NoError(t, err)
	require.Equal(t, " WHERE manager IN (?, ?, ?) AND `type` = ?", where)
	require.Equal(t, []any{"alice", "bob", "", "potential"}, args)
}

func TestBuildWhereSearchORClause(t *testing.T) {
	where, args, err := buildWhere(RecordFilter{
		Scoped:   true,
		Managers: []string{"alice"},
		Search:   &SearchFilters{Name: "Kim", Manager: "ali"},
	})
	require.NoError(t, err)
	require.Equal(t, " WHERE manager IN (?) AND (LOWER(name) LIKE ? OR LOWER(manager) LIKE ?)", where)
	require.Equal(t, []any{"alice", "%kim%", "%ali%"}, args)
}

func TestBuildWhereEmptySearchOmitted(t *testing.T) {
	// no text filters means no OR clause at all, not "match nothing"
	where, args, err := buildWhere(RecordFilter{
		Scoped:   true,
		Managers: []string{"alice"},
		Search:   &SearchFilters{},
	})
	require.NoError(t, err)
	require.Equal(t, " WHERE manager IN (?)", where)
	require.Equal(t, []any{"alice"}, args)
}
