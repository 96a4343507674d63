package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dailymile/internal/modules/widget/domain"
	"dailymile/internal/modules/widget/dto"
	widgetout "dailymile/internal/modules/widget/port/out"
	"dailymile/internal/platform/logging"
)

type WidgetService struct {
	store        widgetout.ManifestStore
	host         widgetout.Host
	snapshotPath string
	logger       *slog.Logger
}

// NewWidgetService reloads widgets against the snapshot file at snapshotPath.
// An empty path means the snapshot is not shared on disk; widgets are still
// reloaded and render their own placeholder.
func NewWidgetService(store widgetout.ManifestStore, host widgetout.Host, snapshotPath string, logger *slog.Logger) *WidgetService {
	return &WidgetService{store: store, host: host, snapshotPath: snapshotPath, logger: logging.OrDiscard(logger)}
}

func (s *WidgetService) List(ctx context.Context) ([]dto.WidgetInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.WidgetInfo, 0, len(manifests))
	for _, m := range manifests {
		kinds := make([]string, 0, len(m.Kinds))
		for _, k := range m.Kinds {
			kinds = append(kinds, string(k))
		}
		out = append(out, dto.WidgetInfo{Name: m.Name, Version: m.Version, Enabled: m.Enabled, Binary: m.Binary, Kinds: kinds})
	}
	return out, nil
}

func (s *WidgetService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		binaryOK := fileExists(m.Binary)
		result.BinaryReachable = binaryOK
		checksumOK := false
		if binaryOK {
			checksumOK = checksumMatches(m.Binary, m.SHA256) == nil
		}
		result.ChecksumValid = checksumOK
		if binaryOK && checksumOK && m.Enabled && s.host != nil {
			if err := s.host.CheckLifecycle(ctx, m); err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
			}
		}
		if !binaryOK {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
		}
		if binaryOK && !checksumOK {
			result.Error = "checksum mismatch"
		}
		results = append(results, result)
	}
	return results, nil
}

// Reload asks every enabled widget whose kinds listen to the scope to re-read
// the snapshot. Widgets that fail are reported in the output and in the
// joined error; the others are still reloaded.
func (s *WidgetService) Reload(ctx context.Context, input dto.ReloadInput) (dto.ReloadOutput, error) {
	if err := domain.ValidateScope(input.Scope); err != nil {
		return dto.ReloadOutput{}, err
	}
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return dto.ReloadOutput{}, err
	}
	out := dto.ReloadOutput{Scope: input.Scope, Version: input.Version, Reloaded: []dto.ReloadResult{}, Skipped: []string{}}
	if s.host == nil {
		for _, m := range manifests {
			out.Skipped = append(out.Skipped, m.Name)
		}
		return out, nil
	}

	var errs []error
	for _, manifest := range manifests {
		if !manifest.Enabled || !manifest.ReloadsOn(input.Scope) {
			out.Skipped = append(out.Skipped, manifest.Name)
			continue
		}
		result := dto.ReloadResult{Name: manifest.Name}
		rendered, err := s.reloadOne(ctx, manifest, input)
		if err != nil {
			result.Error = err.Error()
			errs = append(errs, fmt.Errorf("reload widget %s: %w", manifest.Name, err))
			s.logger.Warn("widget reload failed", "widget", manifest.Name, "scope", input.Scope, "error", err)
		} else {
			result.Rendered = rendered
			s.logger.Debug("widget reloaded", "widget", manifest.Name, "scope", input.Scope, "version", input.Version)
		}
		out.Reloaded = append(out.Reloaded, result)
	}
	return out, errors.Join(errs...)
}

func (s *WidgetService) reloadOne(ctx context.Context, manifest domain.Manifest, input dto.ReloadInput) (string, error) {
	if err := checksumMatches(manifest.Binary, manifest.SHA256); err != nil {
		return "", err
	}
	result, err := s.host.Reload(ctx, manifest, domain.ReloadRequest{
		Scope:        input.Scope,
		SnapshotPath: s.snapshotPath,
		Version:      input.Version,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s", domain.ErrWidgetTimeout, manifest.Name)
		}
		return "", err
	}
	return result.Rendered, nil
}

func (s *WidgetService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seenNames := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seenNames[manifest.Name]; ok {
			return nil, fmt.Errorf("duplicate widget name: %s", manifest.Name)
		}
		seenNames[manifest.Name] = struct{}{}
	}
	return manifests, nil
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read widget binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	if hex.EncodeToString(hash[:]) != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
