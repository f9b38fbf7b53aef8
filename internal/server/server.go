// Package server exposes the figure pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz                 liveness check, returns "ok"
//	GET  /v1/gallery              gallery figure names as JSON
//	GET  /v1/gallery/{name}       one rendered gallery figure
//	POST /v1/render               renders a Quick figure from the request body
//
// Rendering is a batch operation: every request builds its own figure and
// returns the encoded bytes. Responses carry an X-Request-ID, and render
// responses an X-Pubfig-Data header that is "loaded" or "fallback:<reason>".
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/pubfig/pkg/buildinfo"
	"github.com/matzehuels/pubfig/pkg/chart"
	"github.com/matzehuels/pubfig/pkg/dataload"
	"github.com/matzehuels/pubfig/pkg/errors"
	"github.com/matzehuels/pubfig/pkg/gallery"
	"github.com/matzehuels/pubfig/pkg/observability"
	"github.com/matzehuels/pubfig/pkg/pipeline"
	"github.com/matzehuels/pubfig/pkg/style"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = ":8080"

	// DefaultFormat is the encoding used when a request names none.
	DefaultFormat = "svg"

	// MaxBodyBytes caps the size of an uploaded table.
	MaxBodyBytes = 8 << 20

	// HeaderRequestID and HeaderData are response headers set by the server.
	HeaderRequestID = "X-Request-ID"
	HeaderData      = "X-Pubfig-Data"

	shutdownTimeout = 10 * time.Second
)

// Server renders figures on request.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	defaults style.RenderConfig
}

// New returns a server rendering through runner. defaults is the style
// profile requests start from; its output path is ignored.
func New(runner *pipeline.Runner, defaults style.RenderConfig, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if defaults == (style.RenderConfig{}) {
		defaults = style.Default()
	}
	return &Server{runner: runner, logger: logger, defaults: defaults}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/gallery", s.handleGalleryList)
		r.Get("/gallery/{name}", s.handleGalleryFigure)
		r.Post("/render", s.handleRender)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "version", buildinfo.Version)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return ctx.Err()
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

type galleryItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	NeedsData   bool   `json:"needs_data"`
}

func (s *Server) handleGalleryList(w http.ResponseWriter, _ *http.Request) {
	names := gallery.Names()
	items := make([]galleryItem, 0, len(names))
	for _, name := range names {
		e, _ := gallery.Lookup(name)
		items = append(items, galleryItem{Name: e.Name, Description: e.Description, NeedsData: e.NeedsData})
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGalleryFigure(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entry, err := gallery.Lookup(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cfg, err := styleFromQuery(entry.Config, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Data-driven entries have no upload here and draw the fallback series.
	fig, err := entry.Figure(dataload.DefaultGenerator().Generate())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.EncodeFigure(ctx, entry.Name, fig, cfg, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeFigure(w, cfg.OutputFormat(), res.Artifact)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	opts, err := s.renderOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Data = body
	opts.NoWrite = true
	opts.Logger = requestLogger(ctx, s.logger)

	res, err := s.runner.Execute(ctx, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set(HeaderData, res.Outcome.Label())
	if res.CacheHit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	writeFigure(w, orDefault(q.Get("format"), DefaultFormat), res.Artifact)
}

// renderOptions maps query parameters onto pipeline options.
func (s *Server) renderOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	cfg, err := styleFromQuery(s.defaults, r)
	if err != nil {
		return pipeline.Options{}, err
	}
	name := orDefault(q.Get("name"), pipeline.DefaultDataName)
	if err := errors.ValidateName(name); err != nil {
		return pipeline.Options{}, err
	}

	opts := pipeline.Options{
		Name:      name,
		Delimiter: q.Get("delimiter"),
		Sheet:     q.Get("sheet"),
		Kind:      chart.Kind(q.Get("kind")),
		Labels: chart.Labels{
			Title:  q.Get("title"),
			X:      q.Get("xlabel"),
			Y:      q.Get("ylabel"),
			Right:  q.Get("right"),
			Legend: q.Get("legend") == "true",
		},
		Config: cfg,
	}
	for param, dst := range map[string]*int{
		"degree":       &opts.FitDegree,
		"x_column":     &opts.XColumn,
		"y_column":     &opts.YColumn,
		"value_column": &opts.ValueColumn,
	} {
		if v := q.Get(param); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parameter %s", param)
			}
			*dst = n
		}
	}
	return opts, opts.ValidateAndSetDefaults()
}

// styleFromQuery applies the format, font_size, ratio and dpi parameters to
// base. The output path becomes a placeholder, since nothing is written.
func styleFromQuery(base style.RenderConfig, r *http.Request) (style.RenderConfig, error) {
	q := r.URL.Query()
	cfg := base.WithOutput("figure").WithFormat(orDefault(q.Get("format"), DefaultFormat))

	floats := map[string]*float64{
		"font_size": &cfg.FontSize,
		"ratio":     &cfg.ScaleRatio,
		"width":     &cfg.Width,
		"height":    &cfg.Height,
	}
	for param, dst := range floats {
		if v := q.Get(param); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parameter %s", param)
			}
			*dst = f
		}
	}
	if v := q.Get("dpi"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parameter dpi")
		}
		cfg.DPI = n
	}
	return cfg, cfg.Validate()
}

// =============================================================================
// Responses
// =============================================================================

var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"svg":  "image/svg+xml",
	"eps":  "application/postscript",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
}

func writeFigure(w http.ResponseWriter, format string, data []byte) {
	ct, ok := contentTypes[strings.ToLower(format)]
	if !ok {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the JSON body of every error response.
type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// clientCodes are the error codes caused by the request itself.
var clientCodes = []errors.Code{
	errors.ErrCodeInvalidInput,
	errors.ErrCodeInvalidKind,
	errors.ErrCodeInvalidFormat,
	errors.ErrCodeInvalidStyle,
	errors.ErrCodeInvalidPath,
	errors.ErrCodeInvalidConfig,
}

// classify maps err to an HTTP status and the code reported to the client.
// A RENDER_FAILURE caused by an invalid parameter is the client's fault.
func classify(err error) (int, errors.Code) {
	if errors.Is(err, errors.ErrCodeNotFound) {
		return http.StatusNotFound, errors.ErrCodeNotFound
	}
	for _, code := range clientCodes {
		if errors.Is(err, code) {
			return http.StatusBadRequest, code
		}
	}
	if code := errors.GetCode(err); code != "" {
		return http.StatusInternalServerError, code
	}
	return http.StatusInternalServerError, errors.ErrCodeInternal
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	id := requestIDFromContext(r.Context())
	logger := requestLogger(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		logger.Debug("rejected request", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Error: errors.UserMessage(err), Code: string(code), RequestID: id})
}

// =============================================================================
// Middleware
// =============================================================================

type ctxKey int

const requestIDKey ctxKey = 0

// requestID tags every request with a fresh ID, or the caller's if it sent one.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		w.Header().Set("Server", buildinfo.Server())
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// instrument fires the HTTP hooks and logs one line per request.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		elapsed := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, elapsed)
		requestLogger(r.Context(), s.logger).Info("request",
			"method", r.Method, "route", route, "status", status,
			"bytes", ww.BytesWritten(), "duration", elapsed.Round(time.Millisecond))
	})
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func requestLogger(ctx context.Context, l *log.Logger) *log.Logger {
	if id := requestIDFromContext(ctx); id != "" {
		return l.With("request_id", id)
	}
	return l
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
