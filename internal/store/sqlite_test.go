package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_Migration_CreatesTablesAndVersion(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	var version int
	err := s.db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), version)
}

func TestSQLiteStore_RecordAndList(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	d := &Delivery{
		ID:        "dlv-1",
		SessionID: "ses_abc",
		EventKind: "Stop",
		Project:   "my-api",
		Title:     "[my-api] Task Complete",
		Priority:  0,
		Outcome:   map[string]bool{"pushover": true, "desktop": false},
		CreatedAt: now,
	}

	require.NoError(t, s.Record(d))

	got, err := s.List(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "dlv-1", got[0].ID)
	assert.Equal(t, "ses_abc", got[0].SessionID)
	assert.Equal(t, "Stop", got[0].EventKind)
	assert.Equal(t, "my-api", got[0].Project)
	assert.Equal(t, map[string]bool{"pushover": true, "desktop": false}, got[0].Outcome)
	assert.True(t, got[0].Delivered())
	assert.Equal(t, now, got[0].CreatedAt)
}

func TestSQLiteStore_List_NewestFirstWithLimit(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(&Delivery{
			ID:        fmt.Sprintf("dlv-%d", i),
			SessionID: "ses",
			EventKind: "Notification",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := s.List(2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "dlv-4", got[0].ID)
	assert.Equal(t, "dlv-3", got[1].ID)
}

func TestSQLiteStore_Cleanup_PrunesOldDeliveries(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.Record(&Delivery{
		ID: "old", SessionID: "s", EventKind: "Stop",
		CreatedAt: time.Now().UTC().AddDate(0, 0, -120),
	}))
	require.NoError(t, s.Record(&Delivery{
		ID: "fresh", SessionID: "s", EventKind: "Stop",
		CreatedAt: time.Now().UTC(),
	}))

	require.NoError(t, s.Cleanup(90))

	got, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].ID)
}

func TestSQLiteStore_Cleanup_ZeroRetentionKeepsEverything(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.Record(&Delivery{
		ID: "ancient", SessionID: "s", EventKind: "Stop",
		CreatedAt: time.Now().UTC().AddDate(-1, 0, 0),
	}))

	require.NoError(t, s.Cleanup(0))

	got, err := s.List(0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
