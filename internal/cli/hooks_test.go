package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stammbaum/pkg/observability"
)

func TestRegisterLogHooks(t *testing.T) {
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	logger := newLogger(&buf, log.DebugLevel)
	registerLogHooks(logger)

	ctx := context.Background()
	observability.Assembly().OnLayoutStart(ctx, "hierarchical", 12)
	observability.Cache().OnCacheHit(ctx, "snapshot")
	observability.HTTP().OnResponse(ctx, "GET", "localhost", "/api/health", 200, 3*time.Millisecond)

	out := buf.String()
	for _, want := range []string{"layout start", "cache hit", "http response"} {
		if !strings.Contains(out, want) {
			t.Errorf("hook output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksSilentAtInfoLevel(t *testing.T) {
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	registerLogHooks(logger)

	observability.Cache().OnCacheMiss(context.Background(), "snapshot")

	if buf.Len() != 0 {
		t.Errorf("debug hooks should not log at info level, got %q", buf.String())
	}
}
