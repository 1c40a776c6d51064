package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveColumn_FirstCandidateWins(t *testing.T) {
	got, ok := ResolveColumn([]string{"started_at", "foo"}, []string{"date", "started_at", "start_time"})
	require.True(t, ok)
	assert.Equal(t, "started_at", got)

	// 优先级由候选列表决定, 与列的顺序无关
	got, ok = ResolveColumn([]string{"start_time", "date"}, []string{"date", "started_at", "start_time"})
	require.True(t, ok)
	assert.Equal(t, "date", got)
}

func TestResolveColumn_ExactMatchOnly(t *testing.T) {
	_, ok := ResolveColumn([]string{"Date", " date", "DATE"}, []string{"date"})
	assert.False(t, ok)
}

func TestResolveRoles_MissingDateIsFatal(t *testing.T) {
	_, err := ResolveRoles([]string{"foo", "bar"}, defaultCandidates())
	assert.ErrorIs(t, err, ErrNoDateColumn)
}

func TestResolveRoles_OptionalRolesFallBack(t *testing.T) {
	roles, err := ResolveRoles([]string{"start_time", "ride_id"}, defaultCandidates())
	require.NoError(t, err)
	assert.Equal(t, Roles{Date: "start_time"}, roles)
}

func TestResolveRoles_AllPresent(t *testing.T) {
	cols := []string{"from_station", "TAVG", "tavg", "started_at", "start_date"}
	roles, err := ResolveRoles(cols, defaultCandidates())
	require.NoError(t, err)
	assert.Equal(t, Roles{Date: "started_at", Temperature: "tavg", Station: "from_station"}, roles)
}
