package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/legislation-tracker/internal/tracker"
)

func TestSaveSnapshotUpsertsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Unix(1700000000, 0).UTC()
	store, err := NewSnapshotStoreWithPool(mock, "", func() time.Time { return now })
	require.NoError(t, err)

	snap := tracker.Snapshot{
		GeneratedAt: "2025-03-04T17:05:00Z",
		TotalCount:  1,
		Bills:       []tracker.Bill{{ID: 7, BillNumber: "HB7", Sponsors: []tracker.Sponsor{}}},
	}
	payload, err := json.Marshal(snap)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO tracker_snapshots").
		WithArgs("bills", "run-1", snap.GeneratedAt, 1, payload, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.SaveSnapshot(context.Background(), "run-1", "bills", snap))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveSnapshotWrapsExecError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewSnapshotStoreWithPool(mock, "custom_snapshots", nil)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO custom_snapshots").
		WillReturnError(errors.New("connection reset"))

	err = store.SaveSnapshot(context.Background(), "run-1", "bills", tracker.Snapshot{})
	require.ErrorContains(t, err, "upsert snapshot")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotStoreValidation(t *testing.T) {
	t.Parallel()

	_, err := NewSnapshotStoreWithPool(nil, "", nil)
	require.Error(t, err)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewSnapshotStoreWithPool(mock, "bad;table", nil)
	require.Error(t, err)

	store, err := NewSnapshotStoreWithPool(mock, "", nil)
	require.NoError(t, err)
	require.Error(t, store.SaveSnapshot(context.Background(), "run", "", tracker.Snapshot{}))

	var nilStore *SnapshotStore
	require.Error(t, nilStore.SaveSnapshot(context.Background(), "run", "bills", tracker.Snapshot{}))
	nilStore.Close()
}

func TestNewSnapshotStoreRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := NewSnapshotStore(context.Background(), Config{})
	require.Error(t, err)

	_, err = NewSnapshotStore(context.Background(), Config{DSN: "postgres://u@localhost/db", Table: "1bad"})
	require.Error(t, err)
}
