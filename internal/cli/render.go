package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/pubfig/pkg/chart"
	"github.com/matzehuels/pubfig/pkg/errors"
	"github.com/matzehuels/pubfig/pkg/pipeline"
)

// showFigure opens a written figure for viewing. Tests replace it.
var showFigure = chart.Show

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string
	kind       string
	title      string
	xLabel     string
	yLabel     string
	rightLabel string
	legend     bool
	degree     int
	delimiter  string
	sheet      string
	xCol       int
	yCol       int
	valueCol   int
	noCache    bool
	refresh    bool
	show       bool
	style      styleFlags
}

// renderCommand creates the render command. Without a file argument it
// draws the synthetic fallback curve.
func (c *CLI) renderCommand() *cobra.Command {
	opts := &renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a chart from a data table",
		Long: `Render one chart kind from a delimited text table or .xlsx sheet.

The first two columns are x and y unless --x-col/--y-col say otherwise.
Dual-axis and errorbar charts also read --value-col (default 2) as the
right-axis series or the y errors. Contour and heatmap charts read x, y
and --value-col as the points of a complete mesh.

When the file is missing or unusable the damped sine sin(x)·exp(-x/10)
is drawn instead and a single warning is logged.`,
		Example: `  pubfig render data.csv
  pubfig render data.csv -k scatter-fit --degree 2 -o fit.svg
  pubfig render mesh.txt -k contour --value-col 2 -f png --dpi 150`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			return c.runRender(cmd.Context(), cmd, input, opts)
		},
	}
	opts.register(cmd.Flags())

	_ = cmd.RegisterFlagCompletionFunc("kind", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return kindNames(), cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func (opts *renderOpts) register(f *pflag.FlagSet) {
	f.StringVarP(&opts.output, "output", "o", "", "output file (default: input name with the format's extension)")
	f.StringVarP(&opts.kind, "kind", "k", "", "chart kind: "+kindList())
	f.StringVar(&opts.title, "title", "", "figure title")
	f.StringVar(&opts.xLabel, "xlabel", "", "x axis label ($...$ is typeset as math)")
	f.StringVar(&opts.yLabel, "ylabel", "", "y axis label")
	f.StringVar(&opts.rightLabel, "right-label", "", "right axis label (dual-axis)")
	f.BoolVar(&opts.legend, "legend", false, "draw a legend even for a single series")
	f.IntVar(&opts.degree, "degree", 0, "polynomial degree of the scatter-fit curve")
	f.StringVar(&opts.delimiter, "delimiter", "", `column delimiter (default: "," if present, else whitespace)`)
	f.StringVar(&opts.sheet, "sheet", "", "sheet of an .xlsx workbook (default: first)")
	f.IntVar(&opts.xCol, "x-col", 0, "zero-based x column")
	f.IntVar(&opts.yCol, "y-col", 1, "zero-based y column")
	f.IntVar(&opts.valueCol, "value-col", pipeline.DefaultValueColumn, "zero-based value column for dual-axis, errorbar, contour and heatmap")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	f.BoolVar(&opts.refresh, "refresh", false, "re-render even when a cached figure exists")
	f.BoolVar(&opts.show, "show", true, "open the figure in the default viewer when attached to a terminal")
	opts.style.register(f)
}

// pipelineOptions layers the flags the user set over the config file.
func (c *CLI) pipelineOptions(f *pflag.FlagSet, input string, o *renderOpts) pipeline.Options {
	opts := c.Config.Options(input)

	if f.Changed("kind") {
		opts.Kind = chart.Kind(o.kind)
	}
	if f.Changed("title") {
		opts.Labels.Title = o.title
	}
	if f.Changed("xlabel") {
		opts.Labels.X = o.xLabel
	}
	if f.Changed("ylabel") {
		opts.Labels.Y = o.yLabel
	}
	if f.Changed("right-label") {
		opts.Labels.Right = o.rightLabel
	}
	if f.Changed("legend") {
		opts.Labels.Legend = o.legend
	}
	if f.Changed("degree") {
		opts.FitDegree = o.degree
	}
	if f.Changed("delimiter") {
		opts.Delimiter = o.delimiter
	}
	if f.Changed("sheet") {
		opts.Sheet = o.sheet
	}
	if f.Changed("x-col") {
		opts.XColumn = o.xCol
	}
	if f.Changed("y-col") {
		opts.YColumn = o.yCol
	}
	if f.Changed("value-col") {
		opts.ValueColumn = o.valueCol
	}
	opts.Refresh = o.refresh

	opts.Config = o.style.apply(f, opts.Config)
	switch {
	case f.Changed("output"):
		opts.Config.Output = o.output
	case input != "":
		opts.Config.Output = outputPath(input, opts.Config.OutputFormat())
	}
	return opts
}

// outputPath replaces the extension of input with format's.
func outputPath(input, format string) string {
	if format == "" {
		format = "pdf"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}

func (c *CLI) runRender(ctx context.Context, cmd *cobra.Command, input string, o *renderOpts) error {
	logger := loggerFromContext(ctx)
	opts := c.pipelineOptions(cmd.Flags(), input, o)
	opts.Logger = logger

	runner, err := c.newRunner(o.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	if input != "" {
		logger.Infof("Rendering %s", input)
	}
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	out := newScreen(cmd)
	out.success("Rendered %s chart", opts.Kind)
	out.saved(res.Path)
	out.stats(res.Stats.Points, res.Stats.Bytes, res.Outcome.Label(), res.CacheHit)
	if !res.Outcome.Loaded() && input == "" {
		out.nextStep("Plot your own data", "pubfig render data.csv")
	}

	if o.show && res.Path != "" {
		if err := showFigure(res.Path); err != nil {
			logger.Warn("could not display figure", "path", res.Path, "err", errors.UserMessage(err))
		}
	}
	return nil
}

func kindNames() []string {
	names := make([]string, len(chart.Kinds))
	for i, k := range chart.Kinds {
		names[i] = string(k)
	}
	return names
}

func kindList() string { return strings.Join(kindNames(), ", ") }
