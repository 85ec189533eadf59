package sessionlog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleLog(id string, total int) Log {
	return Log{
		ID:           id,
		Date:         "2026-01-01",
		StartTime:    "07:30:00",
		PatternID:    1,
		PatternName:  "Wim Hof",
		TotalSeconds: total,
		Rounds: []Round{
			{DeepSeconds: 30, HoldSeconds: 60, RecoverSeconds: 10},
		},
		Settings: Settings{Rounds: 1, DeepBreathingSeconds: 30, RecoverySeconds: 10, SilentAfter: true},
	}
}

func TestAppendAndList(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	a, b, c := sampleLog("a", 100), sampleLog("b", 200), sampleLog("c", 300)
	for _, l := range []Log{a, b, c} {
		require.NoError(t, s.Append(ctx, l))
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	if diff := cmp.Diff([]Log{a, b, c}, all); diff != "" {
		t.Errorf("List(0) mismatch (-want +got):\n%s", diff)
	}

	last2, err := s.List(ctx, 2)
	require.NoError(t, err)
	if diff := cmp.Diff([]Log{b, c}, last2); diff != "" {
		t.Errorf("List(2) mismatch (-want +got):\n%s", diff)
	}

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestAppendDuplicateID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Append(ctx, sampleLog("x", 1)))
	assert.Error(t, s.Append(ctx, sampleLog("x", 2)))
}

func TestGetAndDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Append(ctx, sampleLog("a", 1)))
	require.NoError(t, s.Append(ctx, sampleLog("b", 2)))

	got, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalSeconds)

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Get(ctx, "a")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(s.Delete(ctx, "a"), ErrNotFound))

	removed, err := s.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	logs, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestReopenKeepsLogs(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, sampleLog("a", 1)))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
