package chart_test

import (
	"fmt"

	"github.com/matzehuels/pubfig/pkg/chart"
	"github.com/matzehuels/pubfig/pkg/numeric"
	"github.com/matzehuels/pubfig/pkg/series"
	"github.com/matzehuels/pubfig/pkg/style"
)

func ExampleFitLabel() {
	xs := []float64{0, 1, 2, 3, 4}
	ys := []float64{5, 7, 9, 11, 13}
	p, err := numeric.PolyFit(xs, ys, 1)
	if err != nil {
		panic(err)
	}
	fmt.Println(chart.FitLabel(p))
	// Output: Fit: y = 2.00x +5.00
}

func ExampleQuick() {
	s := series.MustNew("y = 2x", []float64{0, 1, 2, 3}, []float64{0, 2, 4, 6})
	fig, err := chart.Quick(chart.KindLine, chart.Data{Series: []series.Series{s}}, chart.Labels{X: "x", Y: "y"})
	if err != nil {
		panic(err)
	}
	svg, err := chart.Encode(fig, style.Default().WithFormat("svg"))
	if err != nil {
		panic(err)
	}
	fmt.Println(fig.Name, len(fig.Panels), len(svg) > 0)
	// Output: line 1 true
}
