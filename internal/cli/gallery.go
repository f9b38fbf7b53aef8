package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pubfig/pkg/dataload"
	"github.com/matzehuels/pubfig/pkg/gallery"
	"github.com/matzehuels/pubfig/pkg/pipeline"
	"github.com/matzehuels/pubfig/pkg/series"
)

// galleryOpts holds the command-line flags for the gallery command.
type galleryOpts struct {
	dir     string
	data    string
	list    bool
	noCache bool
	refresh bool
	show    bool
	style   styleFlags
}

// galleryCommand renders the built-in reference figures. With no arguments
// it renders all of them into the current directory.
func (c *CLI) galleryCommand() *cobra.Command {
	var opts galleryOpts

	cmd := &cobra.Command{
		Use:   "gallery [name...]",
		Short: "Render the built-in reference figures",
		Long: `Render the built-in reference figures with their default sizes and fonts.

Five figures (simple_xy, multi_line, xy_with_markers, xy_scatter_fit and
xy_custom_ticks) plot the table given with --data. When it is missing the
damped-sine fallback is drawn instead. The other figures generate their
own data from a fixed seed.`,
		Example: `  pubfig gallery
  pubfig gallery heatmap subplots -f svg -d figures
  pubfig gallery --list`,
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return gallery.Names(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.list {
				listGallery(newScreen(cmd))
				return nil
			}
			return c.runGallery(cmd.Context(), cmd, args, &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.dir, "dir", "d", ".", "directory to write the figures to")
	f.StringVar(&opts.data, "data", pipeline.DefaultDataName, "table plotted by the data-driven figures")
	f.BoolVarP(&opts.list, "list", "l", false, "list the figures and exit")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	f.BoolVar(&opts.refresh, "refresh", false, "re-render even when cached figures exist")
	f.BoolVar(&opts.show, "show", false, "open each figure in the default viewer")
	opts.style.register(f)
	return cmd
}

func listGallery(out screen) {
	out.title("Gallery")
	for _, e := range gallery.All() {
		marker := " "
		if e.NeedsData {
			marker = "*"
		}
		fmt.Fprintf(out.w, "  %s %-18s %s\n", styleDim.Render(marker), e.Name, styleDim.Render(e.Description))
	}
	out.detail("* plots the --data table")
}

// selectEntries returns the named entries, or all of them.
func selectEntries(names []string) ([]gallery.Entry, error) {
	if len(names) == 0 {
		return gallery.All(), nil
	}
	entries := make([]gallery.Entry, 0, len(names))
	for _, name := range names {
		e, err := gallery.Lookup(name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// galleryData loads the table for data-driven entries once per run.
func (c *CLI) galleryData(ctx context.Context, entries []gallery.Entry, path string) (series.Series, string) {
	for _, e := range entries {
		if e.NeedsData {
			out := dataload.LoadContext(ctx, path, dataload.Options{
				Delimiter: c.Config.Data.Delimiter,
				XColumn:   c.Config.Data.XColumn,
				YColumn:   c.Config.Data.YColumn,
				Sheet:     c.Config.Data.Sheet,
				Logger:    loggerFromContext(ctx),
			})
			return out.Series, out.Label()
		}
	}
	return series.Series{}, ""
}

func (c *CLI) runGallery(ctx context.Context, cmd *cobra.Command, names []string, o *galleryOpts) error {
	logger := loggerFromContext(ctx)
	out := newScreen(cmd)
	entries, err := selectEntries(names)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(o.dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", o.dir, err)
	}

	runner, err := c.newRunner(o.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	xy, dataLabel := c.galleryData(ctx, entries, o.data)
	prog := newProgress(logger)
	spinner := newSpinner(ctx, "Rendering gallery")
	spinner.Start()

	var written []string
	for i, e := range entries {
		spinner.SetMessage(fmt.Sprintf("Rendering %s (%d/%d)", e.Name, i+1, len(entries)))

		fig, err := e.Figure(xy)
		if err != nil {
			spinner.Stop()
			out.failure("%s", e.Name)
			return err
		}
		cfg := o.style.apply(cmd.Flags(), e.Config)
		cfg.Output = filepath.Join(o.dir, outputPath(e.Name, cfg.OutputFormat()))

		// The cache name of a data-driven figure includes its data.
		key := e.Name
		if e.NeedsData {
			key += ":" + xy.Digest()
		}
		res, err := runner.RenderFigure(ctx, key, fig, cfg, o.refresh)
		if err != nil {
			spinner.Stop()
			out.failure("%s", e.Name)
			return err
		}
		prog.add(res.CacheHit)
		written = append(written, res.Path)
	}
	spinner.Stop()

	prog.done()
	out.success("Rendered %d figures (%d cached)", prog.total, prog.fromHit)
	if dataLabel != "" {
		out.detail("data: %s (%s)", o.data, dataLabel)
	}
	for _, path := range written {
		out.saved(path)
		if o.show {
			if err := showFigure(path); err != nil {
				out.warning("%v", err)
			}
		}
	}
	return nil
}
