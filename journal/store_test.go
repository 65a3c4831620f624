package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/field-medic/session"
)

var _ session.Observer = (*Observer)(nil)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "journal.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ", nil)
	assert.Error(t, err)
}

func TestOpenTwiceKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.BeginSession(context.Background(), "s1", "default"))
	require.NoError(t, s.Close())

	s, err = Open(path, nil)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Session(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "default", got.Scenario)
}

func TestSessionLifecycle(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.BeginSession(ctx, "s1", "field-casualty"))
	assert.True(t, errors.Is(s.BeginSession(ctx, "s1", "again"), ErrAlreadyExists))

	obs := s.Observer()
	obs.OnTransition("s1", "arm", "BROKEN", "FIXING_UPPER", "ClickDown(upper)")
	obs.OnTransition("s1", "arm", "SPLINT_1_DONE", "HEALED", "Complete")
	obs.OnHealed("s1", "arm")
	obs.OnHealed("s1", "arm")
	obs.OnAllHealed("s1")
	require.NoError(t, s.Flush(ctx))

	transitions, err := s.Transitions(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, transitions, 2)
	assert.Equal(t, "FIXING_UPPER", transitions[0].To)
	assert.Equal(t, "ClickDown(upper)", transitions[0].Trigger)
	assert.Equal(t, "Complete", transitions[1].Trigger)
	assert.Equal(t, now, transitions[0].At)

	healed, err := s.Healed(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, healed, 1, "duplicate healed notifications collapse")
	assert.Equal(t, "arm", healed[0].InjuryID)

	require.NoError(t, s.FinishSession(ctx, "s1"))
	assert.Error(t, s.FinishSession(ctx, "s1"), "finished twice")

	got, err := s.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, now, got.StartedAt)
	assert.Equal(t, now, got.AllHealedAt)
	assert.Equal(t, now, got.FinishedAt)
}

func TestObserverAfterCloseIsNoop(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "journal.db"), nil)
	require.NoError(t, err)
	obs := s.Observer()
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	obs.OnHealed("s1", "arm")
	assert.NoError(t, s.Flush(context.Background()))
}

func TestExtractUp(t *testing.T) {
	assert.Equal(t, "\nA;\n", extractUp("-- +migrate Up\nA;\n-- +migrate Down\nB;"))
	assert.Equal(t, "plain", extractUp("plain"))
}
