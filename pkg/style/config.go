// Package style holds the cosmetic profile applied to every figure.
//
// [RenderConfig] is an immutable value: callers pass it explicitly into each
// render call and derive variants with the With* helpers. There is no
// process-wide style state.
//
// The package also carries the shared vocabulary figures are described in:
// named colors, colormaps, dash patterns, marker shapes and tick locators.
package style

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/pubfig/pkg/errors"
)

// Defaults shared by every figure.
const (
	DefaultFontSize   = 24.0
	DefaultScaleRatio = 0.9
	DefaultLineWidth  = 2.0
	DefaultWidth      = 6.5
	DefaultHeight     = 6.0
	DefaultDPI        = 300
	DefaultOutput     = "figure.pdf"
	DefaultFont       = "Serif"
)

// Tick profile. All lengths are in points; ticks are drawn inward.
const (
	MajorTickLength = 10.0
	MajorTickWidth  = 1.5
	MinorTickLength = 5.0
	MinorTickWidth  = 1.5
	AxisLineWidth   = 1.5
)

// Fonts lists the accepted font variants (Liberation families).
var Fonts = []string{"Serif", "Sans", "Mono"}

// RenderConfig is the cosmetic profile for one render call.
type RenderConfig struct {
	FontSize    float64 `toml:"font_size" json:"font_size"`
	ScaleRatio  float64 `toml:"scale_ratio" json:"scale_ratio"`
	LineWidth   float64 `toml:"line_width" json:"line_width"`
	Width       float64 `toml:"width" json:"width"`   // inches
	Height      float64 `toml:"height" json:"height"` // inches
	DPI         int     `toml:"dpi" json:"dpi"`
	Output      string  `toml:"output" json:"output"`
	Format      string  `toml:"format" json:"format,omitempty"`
	Font        string  `toml:"font" json:"font"`
	Math        bool    `toml:"math" json:"math"`
	MirrorTicks bool    `toml:"mirror_ticks" json:"mirror_ticks"`
}

// Default returns the profile every figure starts from.
func Default() RenderConfig {
	return RenderConfig{
		FontSize:    DefaultFontSize,
		ScaleRatio:  DefaultScaleRatio,
		LineWidth:   DefaultLineWidth,
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		DPI:         DefaultDPI,
		Output:      DefaultOutput,
		Font:        DefaultFont,
		Math:        true,
		MirrorTicks: true,
	}
}

// TickLabelSize is the font size of tick labels: FontSize scaled by ScaleRatio.
func (c RenderConfig) TickLabelSize() float64 {
	return c.FontSize * c.ScaleRatio
}

// LegendSize is the default font size of legend entries and annotations.
// It matches the tick labels.
func (c RenderConfig) LegendSize() float64 {
	return c.TickLabelSize()
}

// OutputFormat returns the explicit Format or, failing that, the lowercase
// extension of Output without the dot.
func (c RenderConfig) OutputFormat() string {
	if c.Format != "" {
		return strings.ToLower(c.Format)
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(c.Output)), ".")
}

// WithOutput returns a copy writing to path.
func (c RenderConfig) WithOutput(path string) RenderConfig {
	c.Output = path
	return c
}

// WithFormat returns a copy encoding to format regardless of the output extension.
func (c RenderConfig) WithFormat(format string) RenderConfig {
	c.Format = format
	return c
}

// WithSize returns a copy with the figure size in inches.
func (c RenderConfig) WithSize(width, height float64) RenderConfig {
	c.Width, c.Height = width, height
	return c
}

// WithFontSize returns a copy with a new base font size.
func (c RenderConfig) WithFontSize(size float64) RenderConfig {
	c.FontSize = size
	return c
}

// WithMirror returns a copy with mirrored top and right ticks switched on or off.
func (c RenderConfig) WithMirror(on bool) RenderConfig {
	c.MirrorTicks = on
	return c
}

// Validate checks every field. Failures are RENDER_FAILURE wrapping the
// specific INVALID_STYLE, INVALID_PATH or INVALID_FORMAT cause.
func (c RenderConfig) Validate() error {
	if err := c.validate(); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailure, err, "invalid render config")
	}
	return nil
}

func (c RenderConfig) validate() error {
	switch {
	case !(c.FontSize > 0):
		return errors.New(errors.ErrCodeInvalidStyle, "font size must be positive, got %g", c.FontSize)
	case !(c.ScaleRatio > 0 && c.ScaleRatio <= 1):
		return errors.New(errors.ErrCodeInvalidStyle, "scale ratio must be in (0, 1], got %g", c.ScaleRatio)
	case !(c.LineWidth > 0):
		return errors.New(errors.ErrCodeInvalidStyle, "line width must be positive, got %g", c.LineWidth)
	case !(c.Width > 0 && c.Height > 0):
		return errors.New(errors.ErrCodeInvalidStyle, "figure size must be positive, got %gx%g", c.Width, c.Height)
	case c.DPI <= 0:
		return errors.New(errors.ErrCodeInvalidStyle, "dpi must be positive, got %d", c.DPI)
	}
	if !validFont(c.Font) {
		return errors.New(errors.ErrCodeInvalidStyle, "unknown font %q (want one of %s)", c.Font, strings.Join(Fonts, ", "))
	}
	if err := errors.ValidateOutputPath(c.Output); err != nil {
		return err
	}
	return errors.ValidateFormat(c.OutputFormat())
}

func validFont(name string) bool {
	for _, f := range Fonts {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}
