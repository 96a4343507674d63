package out_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	widgetout "dailymile/internal/modules/widget/adapter/out"
	"dailymile/internal/modules/widget/domain"
	apperrors "dailymile/internal/platform/errors"
)

func TestFileManifestStoreLoadMissingReturnsEmpty(t *testing.T) {
	t.Parallel()
	store := widgetout.NewFileManifestStore(t.TempDir())
	manifests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 0 {
		t.Fatalf("expected empty manifests, got %d", len(manifests))
	}
}

func TestFileManifestStoreResolvesRelativeBinary(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	writeManifests(t, base, `[
  {
    "name": "ring",
    "version": "1.0.0",
    "binary": "widgets/ring/ring-widget",
    "sha256": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
    "enabled": true,
    "kinds": ["timeline_routine"]
  }
]`)
	store := widgetout.NewFileManifestStore(base)
	manifests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 1 {
		t.Fatalf("expected one manifest, got %d", len(manifests))
	}
	want := filepath.Join(base, "widgets", "ring", "ring-widget")
	if manifests[0].Binary != want {
		t.Fatalf("expected %s, got %s", want, manifests[0].Binary)
	}
}

func TestFileManifestStoreRejectsUnknownField(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	writeManifests(t, base, `[
  {
    "name": "ring",
    "version": "1.0.0",
    "binary": "/tmp/ring-widget",
    "sha256": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
    "enabled": true,
    "kinds": ["timeline_full"],
    "refresh_budget": 40
  }
]`)
	store := widgetout.NewFileManifestStore(base)
	if _, err := store.Load(context.Background()); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestFileManifestStoreRejectsInvalidEntries(t *testing.T) {
	t.Parallel()
	sum := strings.Repeat("a", 64)
	duplicate := `[
  {"name":"ring","version":"1","binary":"/tmp/ring","sha256":"` + sum + `","enabled":true,"kinds":["timeline_full"]},
  {"name":"ring","version":"2","binary":"/tmp/ring2","sha256":"` + sum + `","enabled":false,"kinds":["timeline_routine"]}
]`
	cases := map[string]string{
		"unknown kind":   `[{"name":"ring","version":"1","binary":"/tmp/ring","sha256":"` + sum + `","enabled":true,"kinds":["lock_screen"]}]`,
		"no kinds":       `[{"name":"ring","version":"1","binary":"/tmp/ring","sha256":"` + sum + `","enabled":true,"kinds":[]}]`,
		"no checksum":    `[{"name":"ring","version":"1","binary":"/tmp/ring","sha256":"  ","enabled":true,"kinds":["timeline_full"]}]`,
		"duplicate name": duplicate,
	}
	for name, raw := range cases {
		raw := raw
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			base := t.TempDir()
			writeManifests(t, base, raw)
			_, err := widgetout.NewFileManifestStore(base).Load(context.Background())
			if !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestFileManifestStoreNormalizesChecksumCase(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	writeManifests(t, base, `[{"name":"ring","version":"1","binary":"/tmp/ring","sha256":"`+strings.Repeat("AB", 32)+`","enabled":true,"kinds":["timeline_routine"]}]`)
	manifests, err := widgetout.NewFileManifestStore(base).Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if manifests[0].SHA256 != strings.Repeat("ab", 32) {
		t.Fatalf("expected lowercase checksum, got %s", manifests[0].SHA256)
	}
	if err := manifests[0].Validate(); err != nil {
		t.Fatalf("normalized manifest should validate: %v", err)
	}
	if !manifests[0].ReloadsOn(domain.ScopeTargeted) {
		t.Fatalf("routine widget should reload on targeted refresh")
	}
}

func writeManifests(t *testing.T, base, raw string) {
	t.Helper()
	dir := filepath.Join(base, "widgets")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir widgets: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "widgets.json"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write widgets.json: %v", err)
	}
}
