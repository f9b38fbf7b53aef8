package dataload_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/pubfig/pkg/dataload"
)

func ExampleLoad() {
	out := dataload.Load("does-not-exist.csv", dataload.Options{})
	fmt.Println(out.Label(), out.Series.Len())
	// Output: fallback:missing 100
}

func ExampleReadBytes() {
	table := []byte("# time, voltage\nt,v\n0,1.5\n1,2.5\n2,3.5\n")
	out := dataload.ReadBytes(context.Background(), table, "run.csv", dataload.Options{})
	x, y := out.Series.XY(2)
	fmt.Println(out.Label(), out.Series.Len(), x, y)
	// Output: loaded 3 2 3.5
}
