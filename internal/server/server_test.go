package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/pubfig/pkg/cache"
	"github.com/matzehuels/pubfig/pkg/errors"
	"github.com/matzehuels/pubfig/pkg/gallery"
	"github.com/matzehuels/pubfig/pkg/observability"
	"github.com/matzehuels/pubfig/pkg/pipeline"
	"github.com/matzehuels/pubfig/pkg/style"
)

func newTestServer(t *testing.T, c cache.Cache) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	defaults := style.Default().WithSize(3, 2.5)
	defaults.DPI = 40
	srv := httptest.NewServer(New(pipeline.NewRunner(c, nil, logger), defaults, logger).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func lineCSV(n int) string {
	var b strings.Builder
	b.WriteString("x,y\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d,%d\n", i, 2*i)
	}
	return b.String()
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("got %d %q", resp.StatusCode, body)
	}
	if _, err := uuid.Parse(resp.Header.Get(HeaderRequestID)); err != nil {
		t.Errorf("request id %q is not a UUID", resp.Header.Get(HeaderRequestID))
	}
}

func TestRequestIDEcho(t *testing.T) {
	srv := newTestServer(t, nil)
	id := uuid.NewString()
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(HeaderRequestID, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(HeaderRequestID); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}
}

func TestGalleryList(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/v1/gallery")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var items []galleryItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	names := gallery.Names()
	if len(items) != len(names) {
		t.Fatalf("got %d items, want %d", len(items), len(names))
	}
	for i, item := range items {
		if item.Name != names[i] {
			t.Errorf("item %d = %q, want %q", i, item.Name, names[i])
		}
	}
}

func TestGalleryFigure(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, name := range []string{"line_plot", "simple_xy"} {
		t.Run(name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/v1/gallery/" + name + "?format=svg&font_size=12&ratio=0.8")
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status %d: %s", resp.StatusCode, body)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
				t.Errorf("content type = %q", ct)
			}
			if !bytes.Contains(body, []byte("<svg")) {
				t.Error("body is not an SVG")
			}
		})
	}
}

func TestGalleryNotFound(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/v1/gallery/pie_chart")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	body := decodeError(t, resp)
	if body.Code != string(errors.ErrCodeNotFound) || body.RequestID == "" {
		t.Errorf("error body = %+v", body)
	}
}

func TestRender(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name   string
		query  string
		body   string
		status string
		ct     string
	}{
		{"line", "kind=line", lineCSV(10), "loaded", "image/svg+xml"},
		{"scatter fit as png", "kind=scatter-fit&degree=2&format=png", lineCSV(10), "loaded", "image/png"},
		{"pdf with labels", "kind=bar&format=pdf&title=Counts&xlabel=x", lineCSV(5), "loaded", "application/pdf"},
		{"empty body falls back", "kind=line", "", "fallback:empty", "image/svg+xml"},
		{"garbage falls back", "", "not,a\nnumber,row\n", "fallback:malformed", "image/svg+xml"},
		{"dual axis", "kind=dual-axis", "1,2,3\n2,4,5\n3,6,1\n", "loaded", "image/svg+xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/v1/render?"+tt.query, "text/csv", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status %d: %s", resp.StatusCode, body)
			}
			if got := resp.Header.Get(HeaderData); got != tt.status {
				t.Errorf("%s = %q, want %q", HeaderData, got, tt.status)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.ct {
				t.Errorf("content type = %q, want %q", got, tt.ct)
			}
			if len(body) == 0 {
				t.Error("empty figure")
			}
		})
	}
}

func TestRenderRejects(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name  string
		query string
		body  string
		code  errors.Code
	}{
		{"unknown kind", "kind=pie", lineCSV(3), errors.ErrCodeInvalidKind},
		{"unknown format", "format=bmp", lineCSV(3), errors.ErrCodeInvalidFormat},
		{"zero ratio", "ratio=0", lineCSV(3), errors.ErrCodeInvalidStyle},
		{"non-numeric font size", "font_size=big", lineCSV(3), errors.ErrCodeInvalidInput},
		{"negative degree", "degree=-1", lineCSV(3), errors.ErrCodeInvalidInput},
		{"path in name", "name=../etc/passwd", lineCSV(3), errors.ErrCodeInvalidInput},
		{"dual axis without values", "kind=dual-axis", lineCSV(3), errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/v1/render?"+tt.query, "text/csv", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if body := decodeError(t, resp); body.Code != string(tt.code) {
				t.Errorf("code = %q, want %q (%s)", body.Code, tt.code, body.Error)
			}
		})
	}
}

func TestRenderCache(t *testing.T) {
	fc, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	srv := newTestServer(t, fc)

	var bodies [][]byte
	for _, want := range []string{"miss", "hit"} {
		resp, err := http.Post(srv.URL+"/v1/render?kind=scatter", "text/csv", strings.NewReader(lineCSV(8)))
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if got := resp.Header.Get("X-Cache"); got != want {
			t.Errorf("X-Cache = %q, want %q", got, want)
		}
		bodies = append(bodies, body)
	}
	if !bytes.Equal(bodies[0], bodies[1]) {
		t.Error("cached figure differs from the rendered one")
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu     sync.Mutex
	routes []string
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, fmt.Sprintf("%s %s %d", method, route, status))
}

func TestHTTPHooks(t *testing.T) {
	h := &recordingHTTPHooks{}
	observability.SetHTTPHooks(h)
	defer observability.Reset()

	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/v1/gallery/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	h.mu.Lock()
	defer h.mu.Unlock()
	want := "GET /v1/gallery/{name} 404"
	if len(h.routes) != 1 || h.routes[0] != want {
		t.Errorf("routes = %v, want [%s]", h.routes, want)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   errors.Code
	}{
		{"plain error", io.ErrUnexpectedEOF, 500, errors.ErrCodeInternal},
		{"render failure", errors.New(errors.ErrCodeRenderFailure, "encode"), 500, errors.ErrCodeRenderFailure},
		{"degenerate fit", errors.New(errors.ErrCodeNumericDegeneracy, "singular"), 500, errors.ErrCodeNumericDegeneracy},
		{"invalid style under render failure",
			errors.Wrap(errors.ErrCodeRenderFailure, errors.New(errors.ErrCodeInvalidStyle, "dpi"), "config"),
			400, errors.ErrCodeInvalidStyle},
		{"wrapped not found", fmt.Errorf("lookup: %w", errors.New(errors.ErrCodeNotFound, "x")), 404, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := classify(tt.err)
			if status != tt.status || code != tt.code {
				t.Errorf("classify = %d %s, want %d %s", status, code, tt.status, tt.code)
			}
		})
	}
}
