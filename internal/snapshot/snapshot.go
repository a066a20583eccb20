// Package snapshot persists a compact record of every generated universe for
// replay and debugging. Records are JSON compressed with zstd, one file per
// generation.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"

	"driftgate/server/internal/geom"
)

// Header identifies a snapshot file.
type Header struct {
	Version    int    `json:"version"`
	Seed       string `json:"seed"`
	Generation uint64 `json:"generation"`
}

// ObjectRecord captures one placed object.
type ObjectRecord struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	Position geom.Vec3 `json:"position"`
	Yaw      float64   `json:"yaw"`
	Size     geom.Vec3 `json:"size"`
}

// UniverseRecord is the payload written per generated universe.
type UniverseRecord struct {
	Header Header `json:"header"`

	Kind          string    `json:"kind"`
	Biome         string    `json:"biome"`
	Radius        float64   `json:"radius"`
	SpawnPoint    geom.Vec3 `json:"spawn_point"`
	GroundMode    string    `json:"ground_mode"`
	ObjectiveKind string    `json:"objective_kind,omitempty"`

	Objects []ObjectRecord `json:"objects"`
}

const currentVersion = 1

// Writer persists universe records under a directory, pruning old files
// beyond the retention limit.
type Writer struct {
	dir       string
	retention int
	encoder   *zstd.Encoder
}

// NewWriter creates the snapshot directory if needed. retention <= 0 keeps
// every file.
func NewWriter(dir string, retention int) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return &Writer{dir: dir, retention: retention, encoder: enc}, nil
}

// Write serializes the record to <dir>/universe-<generation>.json.zst.
func (w *Writer) Write(record UniverseRecord) (string, error) {
	record.Header.Version = currentVersion

	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("snapshot: marshal: %w", err)
	}
	compressed := w.encoder.EncodeAll(data, nil)

	name := fmt.Sprintf("universe-%06d.json.zst", record.Header.Generation)
	path := filepath.Join(w.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0o644); err != nil {
		return "", fmt.Errorf("snapshot: write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("snapshot: rename: %w", err)
	}

	if err := w.prune(); err != nil {
		return path, err
	}
	return path, nil
}

func (w *Writer) prune() error {
	if w.retention <= 0 {
		return nil
	}
	entries, err := filepath.Glob(filepath.Join(w.dir, "universe-*.json.zst"))
	if err != nil {
		return fmt.Errorf("snapshot: prune: %w", err)
	}
	if len(entries) <= w.retention {
		return nil
	}
	sort.Strings(entries)
	for _, stale := range entries[:len(entries)-w.retention] {
		if err := os.Remove(stale); err != nil {
			return fmt.Errorf("snapshot: prune: %w", err)
		}
	}
	return nil
}

// Read loads and decompresses a snapshot file.
func Read(path string) (UniverseRecord, error) {
	var record UniverseRecord

	compressed, err := os.ReadFile(path)
	if err != nil {
		return record, fmt.Errorf("snapshot: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return record, fmt.Errorf("snapshot: %w", err)
	}
	defer dec.Close()

	data, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return record, fmt.Errorf("snapshot: decompress: %w", err)
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return record, fmt.Errorf("snapshot: decode: %w", err)
	}
	if record.Header.Version != currentVersion {
		return record, fmt.Errorf("snapshot: unsupported version %d", record.Header.Version)
	}
	return record, nil
}
