package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stockpulse/src/logger"
)

// flakyPinger can be flipped to unhealthy mid-test.
type flakyPinger struct {
	healthy bool
}

func (p *flakyPinger) Ping() error {
	if p.healthy {
		return nil
	}
	return errors.New("connection refused")
}

// -----------------------------------------------------------------------------

func newTestFailover(t *testing.T) (*FailoverStore, *MemoryStore, *MemoryStore, *flakyPinger) {
	t.Helper()

	log := logger.NewLogger("ERROR", "test")
	primary := NewMemoryStore(log)
	fallback := NewMemoryStore(log)
	pinger := &flakyPinger{healthy: true}

	f := NewFailoverStore(primary, pinger, fallback, log)
	require.NoError(t, f.Initialize())
	return f, primary, fallback, pinger
}

// -----------------------------------------------------------------------------

func TestFailover_DelegatesToPrimaryWhileHealthy(t *testing.T) {
	f, primary, fallback, _ := newTestFailover(t)

	_, err := f.Insert("AAPL", 150)
	require.NoError(t, err)

	entries, err := primary.ListAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entries, err = fallback.ListAll()
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestFailover_DemotesWhenPingFails(t *testing.T) {
	f, primary, fallback, pinger := newTestFailover(t)

	_, err := f.Insert("AAPL", 150)
	require.NoError(t, err)

	pinger.healthy = false
	f.StartWatcher(t.Context(), 5*time.Millisecond)

	require.Eventually(t, f.Demoted, time.Second, 5*time.Millisecond)

	// Writes now land in the fallback only.
	_, err = f.Insert("MSFT", 400)
	require.NoError(t, err)

	entries, err := fallback.ListAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "MSFT", entries[0].Symbol)

	entries, err = primary.ListAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "AAPL", entries[0].Symbol)
}

func TestFailover_StaysDemotedAfterRecovery(t *testing.T) {
	f, _, _, pinger := newTestFailover(t)

	pinger.healthy = false
	f.StartWatcher(t.Context(), 5*time.Millisecond)
	require.Eventually(t, f.Demoted, time.Second, 5*time.Millisecond)

	// Connectivity returning mid-process does not flip the store back.
	pinger.healthy = true
	time.Sleep(30 * time.Millisecond)
	require.True(t, f.Demoted())
}
