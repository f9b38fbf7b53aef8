package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pubfig/pkg/cache"
)

// cacheCommand inspects and clears the on-disk figure cache used by
// render and gallery.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the rendered-figure cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "info",
			Short: "Show the number and size of cached figures",
			Args:  cobra.NoArgs,
			RunE:  withExistingCache(cacheInfo),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all cached figures",
			Args:  cobra.NoArgs,
			RunE:  withExistingCache(cacheClear),
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dir, err := cacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
				return nil
			},
		},
	)
	return cmd
}

// withExistingCache opens the cache directory for fn. A directory that was
// never created is reported as an empty cache instead of being created.
func withExistingCache(fn func(screen, *cache.FileCache) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		out := newScreen(cmd)
		dir, err := cacheDir()
		if err != nil {
			return fmt.Errorf("get cache dir: %w", err)
		}
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			out.info("Cache is empty")
			return nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return err
		}
		return fn(out, fc)
	}
}

func cacheInfo(out screen, fc *cache.FileCache) error {
	entries, size, err := fc.Size()
	if err != nil {
		return err
	}
	out.keyValue("Directory", fc.Dir())
	out.keyValue("Entries", fmt.Sprint(entries))
	out.keyValue("Size", formatBytes(size))
	return nil
}

func cacheClear(out screen, fc *cache.FileCache) error {
	entries, _, err := fc.Size()
	if err != nil {
		return err
	}
	if err := fc.Clear(); err != nil {
		return err
	}
	out.success("Cleared %d cached figures", entries)
	out.detail("Directory: %s", fc.Dir())
	return nil
}
