// Package config reads pubfig's optional TOML configuration file.
//
// A file has three tables, each optional:
//
//	[style]            # overrides style.Default()
//	font_size = 18
//	scale_ratio = 0.75
//	format = "svg"
//
//	[data]             # how input tables are read
//	delimiter = ","
//	x_column = 0
//	y_column = 1
//	value_column = 2
//	sheet = "Sheet1"
//
//	[figure]           # the Quick figure drawn by `pubfig render`
//	kind = "scatter-fit"
//	title = "Calibration"
//	x_label = "$t$ (s)"
//	y_label = "$V$ (mV)"
//	right_label = ""
//	legend = false
//	fit_degree = 2
//
// Unknown keys are rejected with INVALID_CONFIG so a typo never passes
// silently. Command-line flags override whatever the file sets.
package config

import (
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pubfig/pkg/chart"
	"github.com/matzehuels/pubfig/pkg/errors"
	"github.com/matzehuels/pubfig/pkg/pipeline"
	"github.com/matzehuels/pubfig/pkg/style"
)

// File is a decoded configuration file.
type File struct {
	Style  style.RenderConfig `toml:"style"`
	Data   Data               `toml:"data"`
	Figure Figure             `toml:"figure"`
}

// Data is the [data] table.
type Data struct {
	Delimiter   string `toml:"delimiter"`
	XColumn     int    `toml:"x_column"`
	YColumn     int    `toml:"y_column"`
	ValueColumn int    `toml:"value_column"`
	Sheet       string `toml:"sheet"`
}

// Figure is the [figure] table.
type Figure struct {
	Kind       string `toml:"kind"`
	Title      string `toml:"title"`
	XLabel     string `toml:"x_label"`
	YLabel     string `toml:"y_label"`
	RightLabel string `toml:"right_label"`
	Legend     bool   `toml:"legend"`
	FitDegree  int    `toml:"fit_degree"`
}

// Default returns the configuration used when no file is given.
func Default() File {
	return File{
		Style: style.Default(),
		Data:  Data{ValueColumn: pipeline.DefaultValueColumn},
		Figure: Figure{
			Kind:      string(pipeline.DefaultKind),
			FitDegree: pipeline.DefaultFitDegree,
		},
	}
}

// Load reads and validates the file at path.
func Load(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open config")
	}
	defer f.Close()
	return Decode(f, path)
}

// Decode reads a configuration from r on top of Default. name is only used
// in error messages.
func Decode(r io.Reader, name string) (File, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return File{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", name)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return File{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", name, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return File{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", name)
	}
	return cfg, nil
}

// Validate checks the values a decoder cannot: the chart kind, the column
// indices and the style profile. The output path is not checked here since
// commands usually replace it.
func (f File) Validate() error {
	if _, err := chart.ParseKind(f.Figure.Kind); err != nil {
		return err
	}
	if f.Figure.FitDegree < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "fit_degree must not be negative, got %d", f.Figure.FitDegree)
	}
	if f.Data.XColumn < 0 || f.Data.YColumn < 0 || f.Data.ValueColumn < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "column indices must not be negative")
	}
	s := f.Style
	if s.Output == "" {
		s.Output = style.DefaultOutput
	}
	return s.Validate()
}

// Options returns pipeline options for rendering input with this
// configuration.
func (f File) Options(input string) pipeline.Options {
	kind, _ := chart.ParseKind(f.Figure.Kind)
	return pipeline.Options{
		Input:       input,
		Delimiter:   f.Data.Delimiter,
		Sheet:       f.Data.Sheet,
		XColumn:     f.Data.XColumn,
		YColumn:     f.Data.YColumn,
		ValueColumn: f.Data.ValueColumn,
		Kind:        kind,
		Labels: chart.Labels{
			Title:  f.Figure.Title,
			X:      f.Figure.XLabel,
			Y:      f.Figure.YLabel,
			Right:  f.Figure.RightLabel,
			Legend: f.Figure.Legend,
		},
		FitDegree: f.Figure.FitDegree,
		Config:    f.Style,
	}
}
