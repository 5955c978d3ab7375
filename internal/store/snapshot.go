// Package store persists scan snapshots, either as rows in a SQLite
// database or as zstd-compressed JSON files.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"depscope/internal/analysis"
	"depscope/internal/complexity"
	"depscope/internal/graph"
	"depscope/internal/lang"
	"depscope/internal/render"
)

// SnapshotVersion is bumped whenever the snapshot layout changes.
const SnapshotVersion = 1

// Snapshot is the persisted form of one scan.
type Snapshot struct {
	Version     int                         `json:"version"`
	ScanID      string                      `json:"scanId"`
	Root        string                      `json:"root"`
	Language    lang.Language               `json:"language"`
	CreatedAt   time.Time                   `json:"createdAt"`
	Graph       render.Document             `json:"graph"`
	Cycles      []graph.Cycle               `json:"cycles"`
	Complexity  []complexity.FileComplexity `json:"complexity"`
	Diagnostics []analysis.Diagnostic       `json:"diagnostics"`
}

// NewSnapshot captures a scan together with its cycles.
func NewSnapshot(scan *analysis.Scan, cycles []graph.Cycle) *Snapshot {
	if cycles == nil {
		cycles = []graph.Cycle{}
	}
	return &Snapshot{
		Version:     SnapshotVersion,
		ScanID:      scan.ID,
		Root:        scan.Root,
		Language:    scan.Language,
		CreatedAt:   scan.StartedAt.UTC(),
		Graph:       render.NewDocument(scan.Graph),
		Cycles:      cycles,
		Complexity:  scan.Complexity,
		Diagnostics: scan.Diagnostics,
	}
}

// Format is an export file format.
type Format string

const (
	FormatSQLite Format = "sqlite"
	FormatZstd   Format = "zstd"
)

// FormatFor picks the export format from a file name: .db, .sqlite and
// .sqlite3 are SQLite, .json.zst and .zst are compressed JSON.
func FormatFor(path string) (Format, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zst"):
		return FormatZstd, nil
	case strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"), strings.HasSuffix(lower, ".sqlite3"):
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("cannot infer export format from %q (want .db, .sqlite or .json.zst)", filepath.Base(path))
}

// Export writes snap to path in the format its extension names. SQLite
// exports append to an existing database.
func Export(ctx context.Context, path string, snap *Snapshot, logger *slog.Logger) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	if format == FormatZstd {
		return WriteFile(path, snap)
	}

	db, err := Open(path, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Save(ctx, snap)
}

// WriteFile writes snap as zstd-compressed JSON.
func WriteFile(path string, snap *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	if err := WriteSnapshot(f, snap); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteSnapshot encodes snap as zstd-compressed JSON.
func WriteSnapshot(w io.Writer, snap *Snapshot) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	if err := json.NewEncoder(enc).Encode(snap); err != nil {
		enc.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return nil
}

// ReadFile reads a snapshot written by WriteFile.
func ReadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()
	return ReadSnapshot(f)
}

// ReadSnapshot decodes a zstd-compressed JSON snapshot.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()

	var snap Snapshot
	if err := json.NewDecoder(dec).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	return &snap, nil
}
