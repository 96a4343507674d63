package logging_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"dailymile/internal/platform/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for raw, want := range cases {
		if got := logging.ParseLevel(raw); got != want {
			t.Fatalf("level %q: want %v got %v", raw, want, got)
		}
	}
}

func TestNewJSONHandlerRespectsLevel(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	logger := logging.New(buf, "warn", true)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"key":"value"`) {
		t.Fatalf("expected json warn record, got %s", out)
	}
}
