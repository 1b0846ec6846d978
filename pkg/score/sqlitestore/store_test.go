package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sauerbraten/duelist/pkg/score"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "scores.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open(" ")
	assert.Error(t, err)
}

func TestGetSetAdd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTempStore(t)

	v, err := s.Get(ctx, score.Deaths, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	v, err = s.Add(ctx, score.Deaths, "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = s.Add(ctx, score.Deaths, "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	require.NoError(t, s.Set(ctx, score.Deaths, "p1", 10))
	v, err = s.Get(ctx, score.Deaths, "p1")
	require.NoError(t, err)
	assert.Equal(t, 10, v)
}

func TestParticipantsOrdered(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTempStore(t)

	require.NoError(t, s.Set(ctx, score.Kills, "c", 2))
	require.NoError(t, s.Set(ctx, score.Kills, "a", 7))
	require.NoError(t, s.Set(ctx, score.Kills, "b", 2))
	require.NoError(t, s.Set(ctx, score.Deaths, "z", 99))

	entries, err := s.Participants(ctx, score.Kills)
	require.NoError(t, err)
	assert.Equal(t, []score.Entry{{Player: "a", Score: 7}, {Player: "b", Score: 2}, {Player: "c", Score: 2}}, entries)
}

func TestScoresSurviveReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scores.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, score.NewLedger(s).RecordWin(ctx, "p1", true))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	r, err := score.NewLedger(s).Record(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Wins)
	assert.Equal(t, 1, r.MaxKillstreak)
}
