package dto

type WidgetInfo struct {
	Name    string
	Version string
	Enabled bool
	Binary  string
	Kinds   []string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}

const (
	ScopeAll      = "all"
	ScopeTargeted = "targeted"
)

// ReloadInput carries a refresh signal. Scope is ScopeAll or ScopeTargeted.
type ReloadInput struct {
	Scope   string
	Version int64
}

type ReloadResult struct {
	Name     string
	Rendered string
	Error    string
}

type ReloadOutput struct {
	Scope    string
	Version  int64
	Reloaded []ReloadResult
	Skipped  []string
}
