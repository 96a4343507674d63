package domain_test

import (
	"strings"
	"testing"

	"dailymile/internal/modules/widget/domain"
)

func validManifest() domain.Manifest {
	return domain.Manifest{
		Name:    "ring",
		Version: "1.0.0",
		Binary:  "/tmp/ring",
		SHA256:  strings.Repeat("a", 64),
		Enabled: true,
		Kinds:   []domain.Kind{domain.KindTimelineRoutine},
	}
}

func TestManifestValidate(t *testing.T) {
	t.Parallel()
	if err := validManifest().Validate(); err != nil {
		t.Fatalf("expected valid manifest: %v", err)
	}

	cases := map[string]func(*domain.Manifest){
		"missing name":   func(m *domain.Manifest) { m.Name = "" },
		"bad checksum":   func(m *domain.Manifest) { m.SHA256 = "ABC" },
		"no kinds":       func(m *domain.Manifest) { m.Kinds = nil },
		"unknown kind":   func(m *domain.Manifest) { m.Kinds = []domain.Kind{"lock_screen"} },
		"duplicate kind": func(m *domain.Manifest) { m.Kinds = []domain.Kind{domain.KindTimelineFull, domain.KindTimelineFull} },
	}
	for name, mutate := range cases {
		manifest := validManifest()
		mutate(&manifest)
		if err := manifest.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestKindReloadScopes(t *testing.T) {
	t.Parallel()
	if !domain.KindTimelineRoutine.ReloadsOn(domain.ScopeTargeted) || !domain.KindTimelineRoutine.ReloadsOn(domain.ScopeAll) {
		t.Fatalf("routine timelines reload on every scope")
	}
	if domain.KindTimelineFull.ReloadsOn(domain.ScopeTargeted) {
		t.Fatalf("full timelines must skip targeted refreshes")
	}
	if !domain.KindTimelineFull.ReloadsOn(domain.ScopeAll) {
		t.Fatalf("full timelines reload on refresh all")
	}

	full := validManifest()
	full.Kinds = []domain.Kind{domain.KindTimelineFull}
	if full.ReloadsOn(domain.ScopeTargeted) {
		t.Fatalf("manifest with only a full timeline must skip targeted refreshes")
	}
	if err := domain.ValidateScope("partial"); err == nil {
		t.Fatalf("expected unknown scope error")
	}
}
