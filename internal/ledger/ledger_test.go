package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskflow/slotbooker/internal/scheduling"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func slotAt(start time.Time) scheduling.Slot {
	return scheduling.Slot{Start: start, End: start.Add(30 * time.Minute)}
}

func TestStore_RecordAndQuery(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	monday := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, "acme", slotAt(monday), "evt-1"))
	require.NoError(t, store.Record(ctx, "acme", slotAt(monday.Add(2*time.Hour)), "evt-2"))

	slots, err := store.Bookings(ctx, "acme", monday.AddDate(0, 0, -1), monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, monday, slots[0].Start)
	assert.Equal(t, monday.Add(30*time.Minute), slots[0].End)
}

func TestStore_WindowExcludesOutsideBookings(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	monday := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, "acme", slotAt(monday), "evt-1"))
	require.NoError(t, store.Record(ctx, "acme", slotAt(monday.AddDate(0, 0, 10)), "evt-2"))

	slots, err := store.Bookings(ctx, "acme", monday, monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, monday, slots[0].Start)
}

func TestStore_TenantsAreIsolated(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	monday := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, "acme", slotAt(monday), "evt-1"))

	slots, err := store.Bookings(ctx, "globex", monday.AddDate(0, 0, -1), monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestStore_DuplicateEventIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	monday := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, "acme", slotAt(monday), "evt-1"))
	require.NoError(t, store.Record(ctx, "acme", slotAt(monday), "evt-1"))

	slots, err := store.Bookings(ctx, "acme", monday.AddDate(0, 0, -1), monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, slots, 1)
}

func TestStore_FeedsQuotaTracker(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	monday := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, "acme", slotAt(monday), "evt-1"))
	require.NoError(t, store.Record(ctx, "acme", slotAt(monday.Add(time.Hour)), "evt-2"))

	tracker := &scheduling.QuotaTracker{Ledger: store}
	usage, err := tracker.Usage(ctx, "acme", time.UTC, nil, monday.AddDate(0, 0, -1), monday.AddDate(0, 0, 7))
	require.NoError(t, err)

	assert.Equal(t, 2, usage.DayCount(monday))
	assert.Equal(t, 2, usage.WeekCount(monday))
}
