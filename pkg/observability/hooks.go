// Package observability lets a binary watch figures move through pubfig
// without the libraries depending on a metrics backend.
//
// Libraries report events through [Pipeline], [Cache] and [HTTP]. Until a
// binary registers its own implementation those calls go to no-ops. The
// [Logging] hooks turn every event into a debug line and are what
// `pubfig --verbose` installs:
//
//	observability.SetPipelineHooks(observability.Logging(logger))
//	defer observability.Reset()
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// PipelineHooks receives one event per stage of a render.
type PipelineHooks interface {
	// OnLoadComplete fires once per data read. status is "loaded" or
	// "fallback:<reason>".
	OnLoadComplete(ctx context.Context, source, status string, points int, duration time.Duration)

	OnBuildStart(ctx context.Context, kind string)
	OnBuildComplete(ctx context.Context, kind string, panels int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// CacheHooks receives artifact cache lookups and writes. keyType names
// what was cached; the pipeline only caches "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives requests handled by the render server. route is the
// matched pattern (for example /v1/gallery/{name}), not the raw path, once
// routing has happened.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// NoopPipelineHooks ignores every event. Embed it to implement only the
// methods you need.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadComplete(context.Context, string, string, int, time.Duration)  {}
func (NoopPipelineHooks) OnBuildStart(context.Context, string)                                {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, string, int, time.Duration, error)  {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// LogHooks writes every event as a debug line. It implements all three
// hook interfaces.
type LogHooks struct {
	logger *log.Logger
}

// Logging returns hooks that log to logger with an "event" prefix.
func Logging(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger.WithPrefix("event")}
}

func (h *LogHooks) OnLoadComplete(_ context.Context, source, status string, points int, d time.Duration) {
	h.logger.Debug("load", "source", source, "status", status, "points", points, "took", d)
}

func (h *LogHooks) OnBuildStart(context.Context, string) {}

func (h *LogHooks) OnBuildComplete(_ context.Context, kind string, panels int, d time.Duration, err error) {
	h.logger.Debug("build", "kind", kind, "panels", panels, "took", d, "err", err)
}

func (h *LogHooks) OnRenderStart(context.Context, string) {}

func (h *LogHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	h.logger.Debug("render", "format", format, "bytes", size, "took", d, "err", err)
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

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "route", route, "status", status, "took", d)
}

type registry struct {
	mu       sync.RWMutex
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

var hooks = registry{
	pipeline: NoopPipelineHooks{},
	cache:    NoopCacheHooks{},
	http:     NoopHTTPHooks{},
}

// SetPipelineHooks replaces the pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h == nil {
		return
	}
	hooks.mu.Lock()
	hooks.pipeline = h
	hooks.mu.Unlock()
}

// SetCacheHooks replaces the cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h == nil {
		return
	}
	hooks.mu.Lock()
	hooks.cache = h
	hooks.mu.Unlock()
}

// SetHTTPHooks replaces the HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h == nil {
		return
	}
	hooks.mu.Lock()
	hooks.http = h
	hooks.mu.Unlock()
}

// SetAll installs h for every hook category.
func SetAll(h *LogHooks) {
	hooks.mu.Lock()
	hooks.pipeline, hooks.cache, hooks.http = h, h, h
	hooks.mu.Unlock()
}

// Pipeline returns the current pipeline hooks.
func Pipeline() PipelineHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.pipeline
}

// Cache returns the current cache hooks.
func Cache() CacheHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.cache
}

// HTTP returns the current HTTP hooks.
func HTTP() HTTPHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.http
}

// Reset puts the no-op hooks back. Tests call it after installing their own.
func Reset() {
	hooks.mu.Lock()
	hooks.pipeline = NoopPipelineHooks{}
	hooks.cache = NoopCacheHooks{}
	hooks.http = NoopHTTPHooks{}
	hooks.mu.Unlock()
}
