package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"dailymile/internal/modules/progress/domain"
	progressout "dailymile/internal/modules/progress/port/out"
	apperrors "dailymile/internal/platform/errors"
)

// FileBackend stores the snapshot as one JSON envelope. Writes go to a temp
// file in the same directory and are renamed into place, so widget processes
// reading the path see either the old record or the new one.
type FileBackend struct {
	path string
	mu   sync.Mutex
}

func NewFileBackend(path string) progressout.SnapshotBackend {
	return &FileBackend{path: path}
}

func (b *FileBackend) Read(_ context.Context) (domain.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ReadEnvelopeFile(b.path)
}

func (b *FileBackend) Write(_ context.Context, snapshot domain.Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	payload, err := json.MarshalIndent(domain.Envelope{SchemaVersion: domain.SchemaVersion, Snapshot: snapshot}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".progress-*.json")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, b.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// ReadEnvelopeFile decodes a snapshot file written by FileBackend. Widget
// renderers use it to read the shared record from their own process.
func ReadEnvelopeFile(path string) (domain.Snapshot, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Snapshot{}, apperrors.ErrNotFound
		}
		return domain.Snapshot{}, fmt.Errorf("%w: read snapshot: %v", apperrors.ErrDataAccessUnavailable, err)
	}
	return decodeEnvelope(payload)
}

func decodeEnvelope(payload []byte) (domain.Snapshot, error) {
	envelope := domain.Envelope{}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: decode snapshot: %v", apperrors.ErrDataAccessUnavailable, err)
	}
	if envelope.SchemaVersion > domain.SchemaVersion {
		return domain.Snapshot{}, fmt.Errorf("%w: snapshot schema %d is newer than %d", apperrors.ErrDataAccessUnavailable, envelope.SchemaVersion, domain.SchemaVersion)
	}
	return envelope.Snapshot, nil
}
