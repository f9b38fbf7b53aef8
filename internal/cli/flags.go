package cli

import (
	"github.com/spf13/pflag"

	"github.com/matzehuels/pubfig/pkg/style"
)

// styleFlags are the RenderConfig overrides shared by render and gallery.
type styleFlags struct {
	format   string
	fontSize float64
	ratio    float64
	width    float64
	height   float64
	dpi      int
	font     string
	noMirror bool
	noMath   bool
}

func (s *styleFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&s.format, "format", "f", "", "output format: pdf, svg, eps, png, jpg, tiff")
	fs.Float64Var(&s.fontSize, "font-size", 0, "base font size in points")
	fs.Float64Var(&s.ratio, "ratio", 0, "tick label size as a fraction of the font size")
	fs.Float64Var(&s.width, "width", 0, "figure width in inches")
	fs.Float64Var(&s.height, "height", 0, "figure height in inches")
	fs.IntVar(&s.dpi, "dpi", 0, "resolution of raster formats")
	fs.StringVar(&s.font, "font", "", "font family: Serif, Sans or Mono")
	fs.BoolVar(&s.noMirror, "no-mirror", false, "draw ticks on the bottom and left axes only")
	fs.BoolVar(&s.noMath, "no-math", false, "print labels literally instead of typesetting $...$")
}

// apply overrides cfg with every flag the user set.
func (s *styleFlags) apply(fs *pflag.FlagSet, cfg style.RenderConfig) style.RenderConfig {
	if fs.Changed("format") {
		cfg.Format = s.format
	}
	if fs.Changed("font-size") {
		cfg.FontSize = s.fontSize
	}
	if fs.Changed("ratio") {
		cfg.ScaleRatio = s.ratio
	}
	if fs.Changed("width") {
		cfg.Width = s.width
	}
	if fs.Changed("height") {
		cfg.Height = s.height
	}
	if fs.Changed("dpi") {
		cfg.DPI = s.dpi
	}
	if fs.Changed("font") {
		cfg.Font = s.font
	}
	if fs.Changed("no-mirror") {
		cfg.MirrorTicks = !s.noMirror
	}
	if fs.Changed("no-math") {
		cfg.Math = !s.noMath
	}
	return cfg
}
