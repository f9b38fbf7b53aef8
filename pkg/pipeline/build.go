package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/pubfig/pkg/chart"
	"github.com/matzehuels/pubfig/pkg/observability"
)

// Build turns loaded data into the default figure for kind.
func Build(ctx context.Context, kind chart.Kind, d chart.Data, labels chart.Labels) (chart.Figure, error) {
	observability.Pipeline().OnBuildStart(ctx, string(kind))
	start := time.Now()
	fig, err := chart.Quick(kind, d, labels)
	observability.Pipeline().OnBuildComplete(ctx, string(kind), len(fig.Panels), time.Since(start), err)
	return fig, err
}
