package chart

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/pubfig/pkg/errors"
	"github.com/matzehuels/pubfig/pkg/numeric"
	"github.com/matzehuels/pubfig/pkg/series"
	"github.com/matzehuels/pubfig/pkg/style"
)

// small keeps raster tests fast.
func small(format string) style.RenderConfig {
	cfg := style.Default().WithSize(3, 2.5).WithFormat(format)
	cfg.DPI = 60
	return cfg
}

func line(t *testing.T) series.Series {
	t.Helper()
	xs := numeric.Linspace(0, 10, 50)
	return series.FromFunc("sine", xs, math.Sin)
}

func grid() series.Grid {
	xs := numeric.Linspace(-3, 3, 30)
	return series.NewGrid(xs, xs, func(x, y float64) float64 { return math.Exp(-(x*x + y*y) / 2) })
}

func TestEncodeIdempotent(t *testing.T) {
	fig, err := Quick(KindLine, Data{Series: []series.Series{line(t)}}, Labels{X: "x", Y: "y"})
	if err != nil {
		t.Fatalf("Quick: %v", err)
	}
	cfg := small("png")

	a, err := Encode(fig, cfg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := Encode(fig, cfg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("two encodes of the same figure differ")
	}
}

func TestEncodeFormats(t *testing.T) {
	tests := []struct {
		format string
		magic  []string
	}{
		{"pdf", []string{"%PDF"}},
		{"svg", []string{"<?xml", "<svg"}},
		{"eps", []string{"%%!PS-Adobe"}},
		{"png", []string{"\x89PNG"}},
		{"jpg", []string{"\xff\xd8"}},
		{"tiff", []string{"II*\x00", "MM\x00*"}},
	}

	fig := Single(Panel{XLabel: "x", YLabel: "y", Layers: []Layer{Lines{Data: line(t)}}})
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			data, err := Encode(fig, small(tt.format))
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			for _, m := range tt.magic {
				if bytes.HasPrefix(data, []byte(m)) {
					return
				}
			}
			t.Errorf("output starts with %q, want one of %q", data[:min(len(data), 8)], tt.magic)
		})
	}
}

func TestEncodeInvalidConfig(t *testing.T) {
	fig := Single(Panel{Layers: []Layer{Lines{Data: line(t)}}})
	tests := []struct {
		name   string
		mutate func(*style.RenderConfig)
		cause  errors.Code
	}{
		{"zero ratio", func(c *style.RenderConfig) { c.ScaleRatio = 0 }, errors.ErrCodeInvalidStyle},
		{"negative ratio", func(c *style.RenderConfig) { c.ScaleRatio = -1 }, errors.ErrCodeInvalidStyle},
		{"unknown format", func(c *style.RenderConfig) { c.Format = "bmp" }, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := small("png")
			tt.mutate(&cfg)
			_, err := Encode(fig, cfg)
			if !errors.Is(err, errors.ErrCodeRenderFailure) {
				t.Errorf("err = %v, want RENDER_FAILURE", err)
			}
			if !errors.Is(err, tt.cause) {
				t.Errorf("err = %v, want cause %s", err, tt.cause)
			}
		})
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	fig := Single(Panel{Layers: []Layer{Lines{Data: line(t)}}})
	got, err := Save(fig, small("png").WithOutput(path))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got != path {
		t.Errorf("Save() = %q, want %q", got, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("existing file was not overwritten with the figure")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}

	_, err = Save(fig, small("png").WithOutput(filepath.Join(dir, "missing", "out.png")))
	if !errors.Is(err, errors.ErrCodeRenderFailure) {
		t.Errorf("unwritable path: err = %v, want RENDER_FAILURE", err)
	}
}

func TestQuickKinds(t *testing.T) {
	s := line(t)
	pos := series.FromFunc("exp", numeric.Linspace(0, 5, 20), math.Exp)
	two := []series.Series{s, series.FromFunc("cos", s.X(), math.Cos)}

	tests := []struct {
		kind Kind
		data Data
	}{
		{KindLine, Data{Series: two}},
		{KindScatter, Data{Series: []series.Series{s}}},
		{KindScatterFit, Data{Series: []series.Series{s}, Degree: 2}},
		{KindBar, Data{Series: []series.Series{series.MustNew("", []float64{1, 2, 3}, []float64{4, 1, 3})}}},
		{KindHistogram, Data{Series: []series.Series{s}}},
		{KindErrorBar, Data{Series: []series.Series{s}}},
		{KindErrorBar, Data{Series: two}},
		{KindContour, Data{Grid: grid()}},
		{KindHeatmap, Data{Grid: grid()}},
		{KindDualAxis, Data{Series: two}},
		{KindArea, Data{Series: []series.Series{s}}},
		{KindLog, Data{Series: []series.Series{pos}}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			fig, err := Quick(tt.kind, tt.data, Labels{})
			if err != nil {
				t.Fatalf("Quick: %v", err)
			}
			if len(fig.Panels) != 1 {
				t.Fatalf("got %d panels, want 1", len(fig.Panels))
			}
			if _, err := Encode(fig, small("png")); err != nil {
				t.Errorf("Encode: %v", err)
			}
		})
	}
}

func TestQuickErrors(t *testing.T) {
	s := line(t)
	tests := []struct {
		name string
		kind Kind
		data Data
		code errors.Code
	}{
		{"unknown kind", Kind("pie"), Data{Series: []series.Series{s}}, errors.ErrCodeInvalidKind},
		{"no series", KindLine, Data{}, errors.ErrCodeInvalidInput},
		{"contour without grid", KindContour, Data{Series: []series.Series{s}}, errors.ErrCodeInvalidInput},
		{"heatmap without grid", KindHeatmap, Data{}, errors.ErrCodeInvalidInput},
		{"dual axis with one series", KindDualAxis, Data{Series: []series.Series{s}}, errors.ErrCodeInvalidInput},
		{"log of sine", KindLog, Data{Series: []series.Series{s}}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Quick(tt.kind, tt.data, Labels{})
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(" " + string(k) + " ")
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}
	if k, err := ParseKind("Scatter-Fit"); err != nil || k != KindScatterFit {
		t.Errorf("ParseKind is case sensitive: %q, %v", k, err)
	}
}

func TestDrawErrors(t *testing.T) {
	s := line(t)
	tests := []struct {
		name string
		fig  Figure
		code errors.Code
	}{
		{"no panels", Figure{Name: "empty"}, errors.ErrCodeRenderFailure},
		{"too many panels", Figure{Rows: 1, Cols: 1, Panels: []Panel{{}, {}}}, errors.ErrCodeInvalidInput},
		{"colorbar without scale", Single(Panel{Layers: []Layer{Lines{Data: s}}, ColorBar: &ColorBar{}}), errors.ErrCodeInvalidInput},
		{"right axis without ranges", Single(Panel{Right: &RightAxis{}}), errors.ErrCodeInvalidInput},
		{"right axis bar layer", Single(Panel{
			Y:     Between(0, 1),
			Right: &RightAxis{Range: Between(0, 10), Layers: []Layer{Bars{Values: []float64{1}}}},
		}), errors.ErrCodeInvalidInput},
		{"bad dashes", Single(Panel{Layers: []Layer{Lines{Data: s, Dashes: "~"}}}), errors.ErrCodeInvalidStyle},
		{"bad marker", Single(Panel{Layers: []Layer{Points{Data: s, Marker: "?"}}}), errors.ErrCodeInvalidStyle},
		{"degenerate fit", Single(Panel{Layers: []Layer{Fit{Data: series.MustNew("", []float64{1, 1}, []float64{1, 2}), Degree: 1}}}), errors.ErrCodeNumericDegeneracy},
		{"constant contour", Single(Panel{Layers: []Layer{Contour{Grid: series.NewGrid([]float64{0, 1}, []float64{0, 1}, func(x, y float64) float64 { return 1 })}}}), errors.ErrCodeNumericDegeneracy},
		{"log through zero", Single(Panel{YLog: true, Layers: []Layer{Lines{Data: s}}}), errors.ErrCodeRenderFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.fig, small("png"))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestSubplotsAndAnnotations(t *testing.T) {
	s := line(t)
	fig := Figure{
		Name: "grid", Rows: 2, Cols: 2,
		Panels: []Panel{
			{Tag: "(a)", Layers: []Layer{Lines{Data: s, Marker: "o", MarkEvery: 5}}, Grid: &Grid{Dashes: "--", Minor: true}, XTicks: style.StepTicks{Step: 2, Minor: 4}},
			{Tag: "(b)", Layers: []Layer{Band{X: s.X(), Lower: make([]float64, s.Len()), Upper: s.Y(), Where: func(i int) bool { _, y := s.XY(i); return y > 0 }}}},
			{Tag: "(c)", Layers: []Layer{
				RefLine{Value: 0, Dashes: ":"}, Span{Vertical: true, From: 2, To: 4, Alpha: 0.2},
				Text{X: 5, Y: 0.5, Text: "peak", Center: true}, Arrow{X1: 1, Y1: 0.8, X2: 1.5, Y2: 1, Double: true},
				Rect{X: 6, Y: -0.5, W: 1, H: 1, Edge: style.MustColor("r")}, Circle{X: 8, Y: 0, R: 0.5, Fill: style.MustColor("lightgray")},
			}, X: Between(0, 10), Y: Between(-1.5, 1.5)},
			{Tag: "(d)", Layers: []Layer{Heatmap{Grid: grid(), Lines: []float64{0.25, 0.5, 0.75}}}, ColorBar: &ColorBar{Label: "z"}},
		},
	}
	if _, err := Encode(fig, small("png").WithFontSize(12)); err != nil {
		t.Fatalf("Encode: %v", err)
	}
}

func TestApplyStyleFontSizes(t *testing.T) {
	for _, ratio := range []float64{1, 0.9, 0.75, 0.5} {
		cfg := style.Default().WithFontSize(20)
		cfg.ScaleRatio = ratio
		p := plot.New()
		ApplyStyle(p, cfg)

		tick := vg.Points(20 * ratio)
		for name, ax := range map[string]*plot.Axis{"x": &p.X, "y": &p.Y} {
			if got := ax.Tick.Label.Font.Size; got != tick {
				t.Errorf("ratio %g: %s tick label size = %v, want %v", ratio, name, got, tick)
			}
			if got := ax.Label.TextStyle.Font.Size; got != vg.Points(20) {
				t.Errorf("ratio %g: %s axis label size = %v, want %v", ratio, name, got, vg.Points(20))
			}
		}
		if got := p.Title.TextStyle.Font.Size; got != vg.Points(20) {
			t.Errorf("ratio %g: title size = %v, want %v", ratio, got, vg.Points(20))
		}
		if got := p.Legend.TextStyle.Font.Size; got != tick {
			t.Errorf("ratio %g: legend size = %v, want %v", ratio, got, tick)
		}
	}
}

func TestFitLabel(t *testing.T) {
	tests := []struct {
		coeffs []float64
		want   string
	}{
		{[]float64{5, 2}, "Fit: y = 2.00x +5.00"},
		{[]float64{-1, 0, 3}, "Fit: y = 3.00x² +0.00x -1.00"},
		{[]float64{0, 0, 0, 1}, "Fit (degree 3)"},
	}
	for _, tt := range tests {
		if got := FitLabel(numeric.Poly{Coefficients: tt.coeffs}); got != tt.want {
			t.Errorf("FitLabel(%v) = %q, want %q", tt.coeffs, got, tt.want)
		}
	}
}

func TestRuns(t *testing.T) {
	mask := []bool{true, true, false, true, false, true, true, true}
	got := runs(len(mask), func(i int) bool { return mask[i] })
	want := [][2]int{{0, 2}, {5, 8}}
	if len(got) != len(want) {
		t.Fatalf("runs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("runs[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if all := runs(3, nil); len(all) != 1 || all[0] != [2]int{0, 3} {
		t.Errorf("runs(nil) = %v", all)
	}
}

func TestBandedGrid(t *testing.T) {
	g := series.NewGrid([]float64{0, 1, 2, 3, 4}, []float64{0}, func(x, _ float64) float64 { return x })
	b := bandedGrid{Grid: g, lo: 0, hi: 4, n: 4}
	want := []float64{0.5, 1.5, 2.5, 3.5, 3.5}
	for c, w := range want {
		if got := b.Z(c, 0); got != w {
			t.Errorf("Z(%d) = %v, want %v", c, got, w)
		}
	}
}

func TestLinearMap(t *testing.T) {
	f := linearMap(0, 100, -1, 1)
	for _, tt := range []struct{ in, want float64 }{{0, -1}, {50, 0}, {100, 1}} {
		if got := f(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("f(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
