package usecase_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"dailymile/internal/modules/widget/domain"
	"dailymile/internal/modules/widget/dto"
	"dailymile/internal/modules/widget/service"
	"dailymile/internal/modules/widget/usecase"
)

type fakeManifestStore struct {
	manifests []domain.Manifest
}

func (s fakeManifestStore) Load(context.Context) ([]domain.Manifest, error) {
	return s.manifests, nil
}

type fakeHost struct{}

func (fakeHost) CheckLifecycle(context.Context, domain.Manifest) error { return nil }
func (fakeHost) GetMetadata(context.Context, domain.Manifest) (domain.Metadata, error) {
	return domain.Metadata{Name: "ring", Version: "1"}, nil
}
func (fakeHost) Reload(_ context.Context, _ domain.Manifest, request domain.ReloadRequest) (domain.ReloadResult, error) {
	return domain.ReloadResult{Rendered: "ring " + request.Scope}, nil
}

func TestUsecaseListDoctorAndReload(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t)
	uc := usecase.NewInteractor(service.NewWidgetService(fakeManifestStore{manifests: []domain.Manifest{manifest}}, fakeHost{}, "", nil))

	list, err := uc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "ring" || len(list[0].Kinds) != 2 {
		t.Fatalf("unexpected list: %+v", list)
	}

	docs, err := uc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(docs) != 1 || !docs[0].LifecycleOK {
		t.Fatalf("unexpected doctor result: %+v", docs)
	}

	out, err := uc.Reload(context.Background(), dto.ReloadInput{Scope: domain.ScopeTargeted, Version: 2})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(out.Reloaded) != 1 || out.Reloaded[0].Rendered != "ring targeted" {
		t.Fatalf("unexpected reload: %+v", out)
	}
}

func manifestWithBinary(t *testing.T) domain.Manifest {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "widget-bin")
	if err := os.WriteFile(binPath, []byte("binary"), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	hash := sha256.Sum256([]byte("binary"))
	return domain.Manifest{
		Name:    "ring",
		Version: "1",
		Binary:  binPath,
		SHA256:  hex.EncodeToString(hash[:]),
		Enabled: true,
		Kinds:   []domain.Kind{domain.KindTimelineFull, domain.KindTimelineRoutine},
	}
}
