// Package snapshot persists a run's outputs: the JSON backup and the rendered
// document, to every configured blob store, plus the latest-snapshot row.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/legislation-tracker/internal/tracker"
)

const (
	// DefaultSnapshotName is the backup file name.
	DefaultSnapshotName = "bills.json"
	// DefaultDocumentName is the rendered page file name.
	DefaultDocumentName = "index.html"

	snapshotContentType = "application/json"
	documentContentType = "text/html; charset=utf-8"
)

// Config names the written artifacts.
type Config struct {
	SnapshotName string
	DocumentName string
}

// Artifacts describes what a Write produced.
type Artifacts struct {
	URIs           []string
	SnapshotSHA256 string
	DocumentSHA256 string
}

// Writer writes snapshots and documents. The snapshot store is optional.
type Writer struct {
	cfg       Config
	stores    []tracker.BlobStore
	snapshots tracker.SnapshotStore
	hasher    tracker.Hasher
	logger    *zap.Logger
}

// New builds a Writer. At least one blob store is required.
func New(
	cfg Config,
	stores []tracker.BlobStore,
	snapshots tracker.SnapshotStore,
	hasher tracker.Hasher,
	logger *zap.Logger,
) (*Writer, error) {
	if len(stores) == 0 {
		return nil, errors.New("at least one blob store is required")
	}
	if hasher == nil {
		return nil, errors.New("hasher is required")
	}
	if cfg.SnapshotName == "" {
		cfg.SnapshotName = DefaultSnapshotName
	}
	if cfg.DocumentName == "" {
		cfg.DocumentName = DefaultDocumentName
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		cfg:       cfg,
		stores:    stores,
		snapshots: snapshots,
		hasher:    hasher,
		logger:    logger.Named("snapshot"),
	}, nil
}

// Build assembles the backup record for bills generated at generatedAt.
func Build(bills []tracker.Bill, generatedAt time.Time) tracker.Snapshot {
	if bills == nil {
		bills = []tracker.Bill{}
	}
	return tracker.Snapshot{
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		TotalCount:  len(bills),
		Bills:       bills,
	}
}

// Encode renders snap as indented JSON without HTML escaping.
func Encode(snap tracker.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Write stores the snapshot first and the document second in every blob
// store, then upserts the snapshot row. The first failure aborts the write.
func (w *Writer) Write(ctx context.Context, runID string, snap tracker.Snapshot, document []byte) (Artifacts, error) {
	encoded, err := Encode(snap)
	if err != nil {
		return Artifacts{}, err
	}
	var arts Artifacts
	if arts.SnapshotSHA256, err = w.hasher.Hash(encoded); err != nil {
		return Artifacts{}, fmt.Errorf("hash snapshot: %w", err)
	}
	if arts.DocumentSHA256, err = w.hasher.Hash(document); err != nil {
		return Artifacts{}, fmt.Errorf("hash document: %w", err)
	}

	for _, store := range w.stores {
		uri, err := store.PutObject(ctx, w.cfg.SnapshotName, snapshotContentType, bytes.NewReader(encoded))
		if err != nil {
			return Artifacts{}, fmt.Errorf("write %s: %w", w.cfg.SnapshotName, err)
		}
		arts.URIs = append(arts.URIs, uri)

		uri, err = store.PutObject(ctx, w.cfg.DocumentName, documentContentType, bytes.NewReader(document))
		if err != nil {
			return Artifacts{}, fmt.Errorf("write %s: %w", w.cfg.DocumentName, err)
		}
		arts.URIs = append(arts.URIs, uri)
	}

	if w.snapshots != nil {
		if err := w.snapshots.SaveSnapshot(ctx, runID, w.cfg.SnapshotName, snap); err != nil {
			return Artifacts{}, fmt.Errorf("save snapshot row: %w", err)
		}
	}

	w.logger.Info("artifacts written",
		zap.Strings("uris", arts.URIs),
		zap.Int("bills", snap.TotalCount),
		zap.String("document_sha256", arts.DocumentSHA256),
	)
	return arts, nil
}
