package domain

import (
	"errors"
	"fmt"
	"regexp"
)

// Kind names the timeline a widget renders. Full timelines are expensive and
// only reload when everything is refreshed; routine ones reload on every save.
type Kind string

const (
	KindTimelineFull    Kind = "timeline_full"
	KindTimelineRoutine Kind = "timeline_routine"
)

const (
	ScopeAll      = "all"
	ScopeTargeted = "targeted"
)

var (
	ErrWidgetDisabled   = errors.New("widget is disabled")
	ErrChecksumMismatch = errors.New("widget checksum mismatch")
	ErrChecksumMissing  = errors.New("widget checksum missing")
	ErrWidgetTimeout    = errors.New("widget timeout")
	ErrUnknownScope     = errors.New("unknown refresh scope")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

type Manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Binary  string `json:"binary"`
	SHA256  string `json:"sha256"`
	Enabled bool   `json:"enabled"`
	Kinds   []Kind `json:"kinds"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("widget name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("widget version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("widget binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("widget sha256 must be lowercase 64-char hex")
	}
	if len(m.Kinds) == 0 {
		return fmt.Errorf("widget kinds are required")
	}
	seen := map[Kind]struct{}{}
	for _, kind := range m.Kinds {
		if err := kind.Validate(); err != nil {
			return err
		}
		if _, ok := seen[kind]; ok {
			return fmt.Errorf("duplicate kind: %s", kind)
		}
		seen[kind] = struct{}{}
	}
	return nil
}

func (k Kind) Validate() error {
	switch k {
	case KindTimelineFull, KindTimelineRoutine:
		return nil
	default:
		return fmt.Errorf("unknown widget kind: %s", k)
	}
}

// ReloadsOn reports whether a refresh of the given scope reaches this kind.
func (k Kind) ReloadsOn(scope string) bool {
	switch k {
	case KindTimelineRoutine:
		return scope == ScopeAll || scope == ScopeTargeted
	case KindTimelineFull:
		return scope == ScopeAll
	default:
		return false
	}
}

func (m Manifest) ReloadsOn(scope string) bool {
	for _, kind := range m.Kinds {
		if kind.ReloadsOn(scope) {
			return true
		}
	}
	return false
}

func ValidateScope(scope string) error {
	switch scope {
	case ScopeAll, ScopeTargeted:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownScope, scope)
	}
}

type Metadata struct {
	Name    string
	Version string
	Kinds   []Kind
}

// ReloadRequest tells a widget to re-read the shared snapshot at SnapshotPath.
// Version is the snapshot version that triggered the reload.
type ReloadRequest struct {
	Scope        string
	SnapshotPath string
	Version      int64
}

type ReloadResult struct {
	Rendered string
}
