package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/legislation-tracker/internal/hash/sha256"
	"github.com/JakeFAU/legislation-tracker/internal/storage/memory"
	"github.com/JakeFAU/legislation-tracker/internal/tracker"
)

type failingStore struct {
	failOn string
	puts   []string
}

func (f *failingStore) PutObject(_ context.Context, path string, _ string, r io.Reader) (string, error) {
	f.puts = append(f.puts, path)
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	if path == f.failOn {
		return "", errors.New("disk full")
	}
	return "fail://" + path, nil
}

type failingSnapshots struct{}

func (failingSnapshots) SaveSnapshot(context.Context, string, string, tracker.Snapshot) error {
	return errors.New("db down")
}

func sampleSnapshot() tracker.Snapshot {
	return Build([]tracker.Bill{
		{ID: 1, Title: "Cannabis <Tax> & Fees", Sponsors: []tracker.Sponsor{}},
		{ID: 2, Title: "Marijuana licensing", Sponsors: []tracker.Sponsor{}},
	}, time.Date(2025, 3, 4, 17, 5, 0, 0, time.UTC))
}

func TestBuild(t *testing.T) {
	t.Parallel()

	snap := sampleSnapshot()
	assert.Equal(t, "2025-03-04T17:05:00Z", snap.GeneratedAt)
	assert.Equal(t, 2, snap.TotalCount)

	empty := Build(nil, time.Unix(0, 0))
	assert.NotNil(t, empty.Bills)
	assert.Zero(t, empty.TotalCount)
}

func TestEncodeShape(t *testing.T) {
	t.Parallel()

	out, err := Encode(sampleSnapshot())
	require.NoError(t, err)
	assert.Contains(t, string(out), "Cannabis <Tax> & Fees", "HTML characters are kept literal")
	assert.Contains(t, string(out), "\n  \"generated_at\"")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Contains(t, decoded, "generated_at")
	assert.Contains(t, decoded, "total_count")
	assert.Contains(t, decoded, "bills")
}

func TestWriteToAllStores(t *testing.T) {
	t.Parallel()

	first := memory.NewBlobStore()
	second := memory.NewBlobStore()
	rows := memory.NewSnapshotStore()
	w, err := New(Config{}, []tracker.BlobStore{first, second}, rows, sha256.New(), nil)
	require.NoError(t, err)

	doc := []byte("<html>doc</html>")
	snap := sampleSnapshot()
	arts, err := w.Write(context.Background(), "run-1", snap, doc)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"memory://bills.json", "memory://index.html",
		"memory://bills.json", "memory://index.html",
	}, arts.URIs)
	hash, err := sha256.New().Hash(doc)
	require.NoError(t, err)
	assert.Equal(t, hash, arts.DocumentSHA256)
	assert.Len(t, arts.SnapshotSHA256, 64)

	for _, store := range []*memory.BlobStore{first, second} {
		stored, contentType, ok := store.Object("index.html")
		require.True(t, ok)
		assert.Equal(t, doc, stored)
		assert.Equal(t, "text/html; charset=utf-8", contentType)

		raw, contentType, ok := store.Object("bills.json")
		require.True(t, ok)
		assert.Equal(t, "application/json", contentType)
		var decoded tracker.Snapshot
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, snap, decoded)
	}

	latest, runID, ok := rows.Latest("bills.json")
	require.True(t, ok)
	assert.Equal(t, "run-1", runID)
	assert.Equal(t, snap, latest)
}

func TestWriteSnapshotBeforeDocument(t *testing.T) {
	t.Parallel()

	store := &failingStore{failOn: "index.html"}
	w, err := New(Config{}, []tracker.BlobStore{store}, nil, sha256.New(), nil)
	require.NoError(t, err)

	_, err = w.Write(context.Background(), "run", sampleSnapshot(), []byte("doc"))
	require.ErrorContains(t, err, "write index.html")
	assert.Equal(t, []string{"bills.json", "index.html"}, store.puts)
}

func TestWriteCustomNames(t *testing.T) {
	t.Parallel()

	store := memory.NewBlobStore()
	w, err := New(Config{SnapshotName: "data/backup.json", DocumentName: "tracker.html"},
		[]tracker.BlobStore{store}, nil, sha256.New(), nil)
	require.NoError(t, err)

	_, err = w.Write(context.Background(), "run", sampleSnapshot(), []byte("doc"))
	require.NoError(t, err)
	_, _, ok := store.Object("data/backup.json")
	assert.True(t, ok)
	_, _, ok = store.Object("tracker.html")
	assert.True(t, ok)
}

func TestWriteSnapshotRowFailure(t *testing.T) {
	t.Parallel()

	w, err := New(Config{}, []tracker.BlobStore{memory.NewBlobStore()}, failingSnapshots{}, sha256.New(), nil)
	require.NoError(t, err)

	_, err = w.Write(context.Background(), "run", sampleSnapshot(), []byte("doc"))
	require.ErrorContains(t, err, "save snapshot row")
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := New(Config{}, nil, nil, sha256.New(), nil)
	assert.Error(t, err)
	_, err = New(Config{}, []tracker.BlobStore{memory.NewBlobStore()}, nil, nil, nil)
	assert.Error(t, err)
}
