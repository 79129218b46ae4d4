package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stammbaum/pkg/observability"
)

// logHooks feeds assembly, cache, and HTTP events into the CLI logger at
// debug level, so --verbose shows the pipeline timeline.
type logHooks struct {
	logger *log.Logger
}

func registerLogHooks(logger *log.Logger) {
	h := logHooks{logger: logger}
	observability.SetAssemblyHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h logHooks) OnFilterStart(_ context.Context, treeID string, memberCount int) {
	h.logger.Debug("filter start", "tree", treeID, "members", memberCount)
}

func (h logHooks) OnFilterComplete(_ context.Context, treeID string, keptMembers, keptRelations int, err error) {
	if err != nil {
		h.logger.Debug("filter failed", "tree", treeID, "err", err)
		return
	}
	h.logger.Debug("filter complete", "tree", treeID,
		"members", keptMembers, "relations", keptRelations)
}

func (h logHooks) OnLayoutStart(_ context.Context, strategy string, nodeCount int) {
	h.logger.Debug("layout start", "strategy", strategy, "nodes", nodeCount)
}

func (h logHooks) OnLayoutComplete(_ context.Context, strategy string, duration time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout failed", "strategy", strategy, "err", err)
		return
	}
	h.logger.Debug("layout complete", "strategy", strategy,
		"duration", duration.Round(time.Millisecond))
}

func (h logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h logHooks) OnRenderComplete(_ context.Context, formats []string, duration time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "formats", formats, "err", err)
		return
	}
	h.logger.Debug("render complete", "formats", formats,
		"duration", duration.Round(time.Millisecond))
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, statusCode int, duration time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path,
		"status", statusCode, "duration", duration.Round(time.Millisecond))
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}
