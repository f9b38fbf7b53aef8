package pipeline

import (
	"context"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pubfig/pkg/cache"
	"github.com/matzehuels/pubfig/pkg/chart"
	"github.com/matzehuels/pubfig/pkg/dataload"
	"github.com/matzehuels/pubfig/pkg/errors"
	"github.com/matzehuels/pubfig/pkg/numeric"
	"github.com/matzehuels/pubfig/pkg/series"
)

// loaded is the result of the load stage.
type loaded struct {
	outcome dataload.Outcome
	data    chart.Data
	digest  string // content hash of every series read, for cache keys
}

// Load reads the input named by opts and assembles the chart data its kind
// needs. Only the primary series can fall back; the value column read by
// dual-axis, errorbar, contour and heatmap charts is optional for errorbar
// charts and required for the others.
func Load(ctx context.Context, opts Options) (dataload.Outcome, chart.Data, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return dataload.Outcome{}, chart.Data{}, err
	}
	l, err := load(ctx, opts)
	return l.outcome, l.data, err
}

func load(ctx context.Context, opts Options) (loaded, error) {
	primary := read(ctx, opts, opts.loadOptions(opts.yColumn(), opts.Logger))
	l := loaded{
		outcome: primary,
		data:    chart.Data{Series: []series.Series{primary.Series}, Degree: opts.FitDegree},
	}
	digests := []string{seriesKey(primary.Series)}

	switch opts.Kind {
	case chart.KindDualAxis, chart.KindErrorBar, chart.KindContour, chart.KindHeatmap:
	default:
		l.digest = cache.Hash([]byte(digests[0]))
		return l, nil
	}

	var second series.Series
	if primary.Loaded() {
		// The value column is read quietly: its absence is reported below,
		// not as a second fallback warning.
		out := read(ctx, opts, opts.loadOptions(opts.ValueColumn, log.New(io.Discard)))
		if out.Loaded() {
			second = out.Series
		} else if opts.Kind != chart.KindErrorBar {
			return l, errors.Wrap(errors.ErrCodeInvalidInput, out.Err,
				"%s charts need a value column %d", opts.Kind, opts.ValueColumn)
		} else {
			opts.Logger.Debug("no error column, using 5% of the y span", "column", opts.ValueColumn)
		}
	} else {
		second = fallbackValues(primary.Series)
	}

	switch opts.Kind {
	case chart.KindContour, chart.KindHeatmap:
		if primary.Loaded() {
			g, err := series.GridFromPoints(primary.Series.X(), primary.Series.Y(), second.Y())
			if err != nil {
				return l, err
			}
			l.data.Grid = g
		} else {
			l.data.Grid = fallbackGrid()
		}
	default:
		if !second.Empty() {
			l.data.Series = append(l.data.Series, second)
		}
	}
	if !second.Empty() {
		digests = append(digests, seriesKey(second))
	}
	l.digest = cache.Hash([]byte(strings.Join(digests, ":")))
	return l, nil
}

// seriesKey identifies a series for the cache. The name is drawn as the
// legend label, so it is part of the key along with the values.
func seriesKey(s series.Series) string {
	return s.Name() + "\x00" + s.Digest()
}

func read(ctx context.Context, opts Options, lo dataload.Options) dataload.Outcome {
	if opts.Data != nil {
		return dataload.ReadBytes(ctx, opts.Data, opts.Name, lo)
	}
	return dataload.LoadContext(ctx, opts.Input, lo)
}

// fallbackValues is the second series used with synthetic data: the
// envelope of the damped sine.
func fallbackValues(s series.Series) series.Series {
	return s.Map(func(x, _ float64) float64 { return math.Exp(-x / 10) }).WithName("envelope")
}

// fallbackGrid is the synthetic field used by contour and heatmap charts
// when no data could be read.
func fallbackGrid() series.Grid {
	axis := numeric.Linspace(dataload.DefaultMin, dataload.DefaultMax, 60)
	return series.NewGrid(axis, axis, func(x, y float64) float64 {
		return dataload.DampedSine(x) * math.Cos(y/2)
	})
}
