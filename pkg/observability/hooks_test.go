package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type countingHooks struct {
	NoopPipelineHooks
	loads int
}

func (h *countingHooks) OnLoadComplete(context.Context, string, string, int, time.Duration) {
	h.loads++
}

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T", HTTP())
	}
}

func TestSetAndReset(t *testing.T) {
	defer Reset()

	h := &countingHooks{}
	SetPipelineHooks(h)
	SetPipelineHooks(nil)
	Pipeline().OnLoadComplete(context.Background(), "data.csv", "loaded", 3, 0)
	Pipeline().OnLoadComplete(context.Background(), "data.csv", "fallback:missing", 100, 0)
	if h.loads != 2 {
		t.Errorf("loads = %d, want 2", h.loads)
	}

	Reset()
	Pipeline().OnLoadComplete(context.Background(), "data.csv", "loaded", 3, 0)
	if h.loads != 2 {
		t.Errorf("hook still called after Reset")
	}
}

func TestLogging(t *testing.T) {
	defer Reset()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	SetAll(Logging(logger))

	ctx := context.Background()
	Pipeline().OnLoadComplete(ctx, "data.csv", "fallback:missing", 100, time.Millisecond)
	Pipeline().OnBuildComplete(ctx, "line", 1, time.Millisecond, nil)
	Pipeline().OnRenderComplete(ctx, "pdf", 2048, time.Millisecond, errors.New("boom"))
	Cache().OnCacheMiss(ctx, "artifact")
	Cache().OnCacheSet(ctx, "artifact", 2048)
	HTTP().OnResponse(ctx, "GET", "/v1/gallery/{name}", 404, time.Millisecond)

	out := buf.String()
	for _, want := range []string{
		"event", "fallback:missing", "kind=line", "err=boom",
		"cache miss", "bytes=2048", "status=404",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "\n"); n != 6 {
		t.Errorf("got %d lines, want 6", n)
	}
}

func TestLoggingQuietAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	h := Logging(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))
	h.OnCacheHit(context.Background(), "artifact")
	if buf.Len() != 0 {
		t.Errorf("unexpected output: %q", buf.String())
	}
}
