package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/pubfig/pkg/chart"
	"github.com/matzehuels/pubfig/pkg/observability"
	"github.com/matzehuels/pubfig/pkg/style"
)

// Render encodes fig in the format cfg selects.
func Render(ctx context.Context, fig chart.Figure, cfg style.RenderConfig) ([]byte, error) {
	format := cfg.OutputFormat()
	observability.Pipeline().OnRenderStart(ctx, format)
	start := time.Now()
	data, err := chart.Encode(fig, cfg)
	observability.Pipeline().OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	return data, err
}

// cacheProfile is the part of a render config that changes the encoded
// bytes. The output path only matters through the format it implies.
func cacheProfile(cfg style.RenderConfig) style.RenderConfig {
	cfg.Format = cfg.OutputFormat()
	cfg.Output = ""
	return cfg
}
