// Package pipeline runs the load → build → render → write sequence behind
// every pubfig entry point.
//
// The CLI and the render server both go through a [Runner], so data loading,
// fallback handling, caching and file output behave the same everywhere.
//
// # Stages
//
//  1. Load: read the input table, falling back to synthetic data
//  2. Build: turn the series into a chart.Figure for the requested kind
//  3. Render: encode the figure, reusing a cached artifact when possible
//  4. Write: store the bytes at the configured output path
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:  "data.csv",
//	    Kind:   chart.KindScatterFit,
//	    Config: style.Default().WithOutput("fit.pdf"),
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Path, result.Outcome.Label())
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pubfig/pkg/chart"
	"github.com/matzehuels/pubfig/pkg/dataload"
	"github.com/matzehuels/pubfig/pkg/errors"
	"github.com/matzehuels/pubfig/pkg/style"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultKind is the chart kind drawn when none is given.
	DefaultKind = chart.KindLine

	// DefaultFitDegree is the polynomial degree of scatter-fit overlays.
	DefaultFitDegree = 1

	// DefaultValueColumn is the zero-based column holding the second value
	// series: the right axis of dual-axis charts, error magnitudes of
	// errorbar charts and z of contour and heatmap charts.
	DefaultValueColumn = 2

	// DefaultDataName names in-memory input that arrives without a name.
	DefaultDataName = "data.csv"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for logging and debugging.
type Options struct {
	// Load options
	Input       string `json:"input,omitempty"` // path to the table; empty uses synthetic data
	Data        []byte `json:"-"`               // in-memory table, read instead of Input when set
	Name        string `json:"name,omitempty"`  // name of Data; a .xlsx suffix selects the spreadsheet reader
	Delimiter   string `json:"delimiter,omitempty"`
	Sheet       string `json:"sheet,omitempty"`
	XColumn     int    `json:"x_column,omitempty"`
	YColumn     int    `json:"y_column,omitempty"`
	ValueColumn int    `json:"value_column,omitempty"`

	// Build options
	Kind      chart.Kind   `json:"kind,omitempty"`
	Labels    chart.Labels `json:"labels"`
	FitDegree int          `json:"fit_degree,omitempty"`

	// Render options
	Config  style.RenderConfig `json:"config"`
	Refresh bool               `json:"refresh,omitempty"`  // ignore cached artifacts
	NoWrite bool               `json:"no_write,omitempty"` // return the bytes without writing Config.Output

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Outcome is the load result, including the fallback reason if any.
	Outcome dataload.Outcome

	// Path is the file written, empty with NoWrite.
	Path string

	// Artifact holds the encoded figure.
	Artifact []byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit is set when the artifact came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Points     int
	Bytes      int
	LoadTime   time.Duration
	BuildTime  time.Duration
	RenderTime time.Duration
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Kind == "" {
		o.Kind = DefaultKind
	}
	kind, err := chart.ParseKind(string(o.Kind))
	if err != nil {
		return err
	}
	o.Kind = kind

	if o.FitDegree < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "fit degree must not be negative, got %d", o.FitDegree)
	}
	if o.FitDegree == 0 {
		o.FitDegree = DefaultFitDegree
	}
	if o.XColumn < 0 || o.YColumn < 0 || o.ValueColumn < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "column indices must not be negative")
	}
	if o.ValueColumn == 0 {
		o.ValueColumn = DefaultValueColumn
	}
	if o.Data != nil && o.Name == "" {
		o.Name = DefaultDataName
	}

	if o.Config == (style.RenderConfig{}) {
		o.Config = style.Default()
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// loadOptions returns the dataload options reading column y against the
// configured x column.
func (o *Options) loadOptions(y int, logger *log.Logger) dataload.Options {
	return dataload.Options{
		Delimiter: o.Delimiter,
		XColumn:   o.XColumn,
		YColumn:   y,
		Sheet:     o.Sheet,
		Logger:    logger,
	}
}

// yColumn is the primary value column.
func (o *Options) yColumn() int {
	if o.XColumn == 0 && o.YColumn == 0 {
		return 1
	}
	return o.YColumn
}
