package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dailymile/internal/modules/widget/domain"
	widgetout "dailymile/internal/modules/widget/port/out"
	apperrors "dailymile/internal/platform/errors"
)

// FileManifestStore reads <data>/widgets/widgets.json. Relative binary paths
// resolve against the data directory.
type FileManifestStore struct {
	basePath string
	path     string
}

func NewFileManifestStore(basePath string) widgetout.ManifestStore {
	return &FileManifestStore{basePath: basePath, path: filepath.Join(basePath, "widgets", "widgets.json")}
}

// Load decodes the registry and rejects it as a whole when an entry names an
// unknown timeline kind, lacks a checksum, or reuses a widget name.
func (s *FileManifestStore) Load(_ context.Context) ([]domain.Manifest, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Manifest{}, nil
		}
		return nil, fmt.Errorf("read widget registry: %w", err)
	}
	var manifests []domain.Manifest
	decoder := json.NewDecoder(bytes.NewReader(b))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&manifests); err != nil {
		return nil, fmt.Errorf("decode widget registry: %w", err)
	}

	names := make(map[string]int, len(manifests))
	for i := range manifests {
		m := &manifests[i]
		m.SHA256 = strings.ToLower(strings.TrimSpace(m.SHA256))
		if err := checkEntry(*m); err != nil {
			return nil, fmt.Errorf("%w: widget registry entry %d (%q): %v", apperrors.ErrInvalidInput, i, m.Name, err)
		}
		if first, ok := names[m.Name]; ok {
			return nil, fmt.Errorf("%w: widget %q registered twice (entries %d and %d)", apperrors.ErrInvalidInput, m.Name, first, i)
		}
		names[m.Name] = i
		if m.Binary != "" && !filepath.IsAbs(m.Binary) {
			m.Binary = filepath.Clean(filepath.Join(s.basePath, m.Binary))
		}
	}
	return manifests, nil
}

func checkEntry(m domain.Manifest) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.SHA256 == "" {
		return domain.ErrChecksumMissing
	}
	if len(m.Kinds) == 0 {
		return fmt.Errorf("at least one timeline kind is required")
	}
	for _, kind := range m.Kinds {
		if err := kind.Validate(); err != nil {
			return err
		}
	}
	return nil
}
