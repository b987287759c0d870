package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes pipeline and cache events to a logger at debug level.
// Failures are logged at warn level.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to l.
func NewLogHooks(l *log.Logger) *LogHooks { return &LogHooks{logger: l} }

func (h *LogHooks) OnLoadStart(_ context.Context, path string) {
	h.logger.Debug("loading layout", "path", path)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, path string, arrays int, d time.Duration, err error) {
	h.done("loaded layout", err, "path", path, "arrays", arrays, "took", d)
}

func (h *LogHooks) OnArrayStart(_ context.Context, name, device string) {
	h.logger.Debug("placing array", "name", name, "device", device)
}

func (h *LogHooks) OnArrayComplete(_ context.Context, name string, placed int, d time.Duration, err error) {
	h.done("placed array", err, "name", name, "placed", placed, "took", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("rendering", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.done("rendered", err, "formats", formats, "took", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) done(msg string, err error, kv ...any) {
	if err != nil {
		h.logger.Warn(msg+" failed", append(kv, "error", err)...)
		return
	}
	h.logger.Debug(msg, kv...)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
)
