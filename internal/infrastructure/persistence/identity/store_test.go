package identity

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/telemetry"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := Config{SQLitePath: filepath.Join(t.TempDir(), "identity.db")}
	store, err := Open(cfg, logging.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAnonymousIDRoundTrip(t *testing.T) {
	store := openTestStore(t)

	_, ok := store.GetAnonymousID("client-1")
	assert.False(t, ok)

	require.NoError(t, store.SaveAnonymousID("client-1", "anon-01ABC"))
	id, ok := store.GetAnonymousID("client-1")
	require.True(t, ok)
	assert.Equal(t, "anon-01ABC", id)

	// Identity reset replaces the stored id.
	require.NoError(t, store.SaveAnonymousID("client-1", "anon-01XYZ"))
	id, ok = store.GetAnonymousID("client-1")
	require.True(t, ok)
	assert.Equal(t, "anon-01XYZ", id)
}

func TestSessionRoundTripAndDelete(t *testing.T) {
	store := openTestStore(t)

	_, ok := store.LoadSession("client-1")
	assert.False(t, ok)

	sess := telemetry.Session{ID: "sess-1", ClientID: "client-1"}
	require.NoError(t, store.SaveSession(&sess))

	loaded, ok := store.LoadSession("client-1")
	require.True(t, ok)
	assert.Equal(t, "sess-1", loaded.ID)
	assert.Equal(t, "client-1", loaded.ClientID)

	require.NoError(t, store.DeleteSessions("client-1"))
	_, ok = store.LoadSession("client-1")
	assert.False(t, ok)
}

func TestEventCounts(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.InsertEvent("e1", "page_view", "anon-1", "sess-1", "/rides", "browsing", "unknown", "mobile", "test", ""))
	require.NoError(t, store.InsertEvent("e2", "page_view", "anon-1", "sess-1", "/rides/:id", "browsing", "unknown", "mobile", "test", ""))
	require.NoError(t, store.InsertEvent("e3", "ride_created", "anon-1", "sess-1", "/rides/new", "ride_created", "driver", "mobile", "test", "{}"))

	counts, err := store.EventCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"page_view": 2, "ride_created": 1}, counts)
}
