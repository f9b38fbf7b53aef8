package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pubfig/pkg/chart"
	"github.com/matzehuels/pubfig/pkg/config"
	"github.com/matzehuels/pubfig/pkg/errors"
)

// TestMain keeps renders from opening a viewer when the tests run in a terminal.
func TestMain(m *testing.M) {
	showFigure = func(string) error { return nil }
	os.Exit(m.Run())
}

// run executes the root command with args and returns the log output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	var logs bytes.Buffer
	c := New(&logs, LogDebug)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	return logs.String(), err
}

// runOut executes the root command with the cache under a fresh temp dir
// and returns what the command printed to stdout.
func runOut(t *testing.T, cacheRoot string, args ...string) (string, error) {
	t.Helper()
	orig := cacheDir
	cacheDir = func() (string, error) { return cacheRoot, nil }
	t.Cleanup(func() { cacheDir = orig })

	var out bytes.Buffer
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// field returns the value printed after key by a key/value line.
func field(out, key string) string {
	for _, line := range strings.Split(out, "\n") {
		if f := strings.Fields(line); len(f) >= 2 && f[0] == key {
			return f[1]
		}
	}
	return ""
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "line.csv", "x,y\n0,0\n1,2\n2,4\n3,6\n4,8\n")

	logs, err := run(t, "render", input, "--no-cache")
	if err != nil {
		t.Fatalf("render: %v\n%s", err, logs)
	}
	want := filepath.Join(dir, "line.pdf")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected %s: %v", want, err)
	}
	if strings.Contains(logs, "WARN") {
		t.Errorf("unexpected warning:\n%s", logs)
	}
}

func TestRenderCommandShow(t *testing.T) {
	var shown []string
	var fail bool
	orig := showFigure
	showFigure = func(path string) error {
		shown = append(shown, path)
		if fail {
			return errors.New(errors.ErrCodeInternal, "no viewer")
		}
		return nil
	}
	t.Cleanup(func() { showFigure = orig })

	dir := t.TempDir()
	input := writeFile(t, dir, "line.csv", "x,y\n0,0\n1,2\n2,4\n")
	out := filepath.Join(dir, "line.svg")

	if _, err := run(t, "render", input, "-o", out, "--no-cache"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(shown) != 1 || shown[0] != out {
		t.Errorf("displayed %v, want [%s]", shown, out)
	}

	shown = nil
	if _, err := run(t, "render", input, "-o", out, "--no-cache", "--show=false"); err != nil {
		t.Fatalf("render --show=false: %v", err)
	}
	if len(shown) != 0 {
		t.Errorf("--show=false still displayed %v", shown)
	}

	fail = true
	logs, err := run(t, "render", input, "-o", out, "--no-cache")
	if err != nil {
		t.Fatalf("a failing viewer should not fail the render: %v", err)
	}
	if !strings.Contains(logs, "could not display figure") {
		t.Errorf("missing display warning:\n%s", logs)
	}
}

func TestRenderCommandFallback(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "fallback.svg")

	logs, err := run(t, "render", filepath.Join(dir, "missing.csv"), "-o", out, "-k", "area", "--no-cache")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if n := strings.Count(logs, "WARN"); n != 1 {
		t.Errorf("got %d warnings, want 1:\n%s", n, logs)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "d.csv", "1,2\n2,3\n")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown kind", []string{"render", input, "-k", "pie"}, errors.ErrCodeInvalidKind},
		{"bad ratio", []string{"render", input, "--ratio", "1.5"}, errors.ErrCodeInvalidStyle},
		{"bad format", []string{"render", input, "-f", "gif"}, errors.ErrCodeInvalidFormat},
		{"dual axis without values", []string{"render", input, "-k", "dual-axis"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append(tt.args, "--no-cache")...)
			if !errors.Is(err, tt.code) {
				t.Errorf("got %v, want %s", err, tt.code)
			}
		})
	}
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.toml", "[style]\nformat = \"svg\"\n[figure]\nkind = \"scatter\"\n")
	bad := writeFile(t, dir, "bad.toml", "[style]\nfontsize = 12\n")
	input := writeFile(t, dir, "d.csv", "1,2\n2,3\n3,5\n")

	if _, err := run(t, "--config", good, "render", input, "--no-cache"); err != nil {
		t.Fatalf("render with config: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "d.svg")); err != nil {
		t.Errorf("config format not applied: %v", err)
	}

	if _, err := run(t, "--config", bad, "render", input, "--no-cache"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("bad config: got %v, want INVALID_CONFIG", err)
	}
}

func TestPipelineOptionsPrecedence(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	c.Config = config.Default()
	c.Config.Figure.Kind = "scatter"
	c.Config.Figure.Title = "from file"
	c.Config.Style.FontSize = 18

	cmd := &cobra.Command{}
	o := &renderOpts{}
	o.register(cmd.Flags())
	if err := cmd.ParseFlags([]string{"-k", "bar", "--ratio", "0.5", "-f", "svg"}); err != nil {
		t.Fatal(err)
	}
	opts := c.pipelineOptions(cmd.Flags(), filepath.Join("data", "run.txt"), o)

	if opts.Kind != chart.KindBar {
		t.Errorf("kind = %q, want the flag's bar", opts.Kind)
	}
	if opts.Labels.Title != "from file" {
		t.Errorf("title = %q, want the file's", opts.Labels.Title)
	}
	if opts.Config.FontSize != 18 || opts.Config.ScaleRatio != 0.5 {
		t.Errorf("font %g ratio %g, want 18 and 0.5", opts.Config.FontSize, opts.Config.ScaleRatio)
	}
	if want := filepath.Join("data", "run.svg"); opts.Config.Output != want {
		t.Errorf("output = %q, want %q", opts.Config.Output, want)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, format, want string
	}{
		{"data.csv", "pdf", "data.pdf"},
		{"dir/run.txt", "svg", "dir/run.svg"},
		{"noext", "png", "noext.png"},
		{"a.b.csv", "", "a.b.pdf"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.input, tt.format); got != tt.want {
			t.Errorf("outputPath(%q, %q) = %q, want %q", tt.input, tt.format, got, tt.want)
		}
	}
}

func TestGalleryCommand(t *testing.T) {
	dir := t.TempDir()
	logs, err := run(t, "gallery", "histogram", "simple_xy", "-d", dir, "-f", "svg",
		"--data", filepath.Join(dir, "none.csv"), "--no-cache")
	if err != nil {
		t.Fatalf("gallery: %v\n%s", err, logs)
	}
	for _, name := range []string{"histogram.svg", "simple_xy.svg"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	// simple_xy falls back once; histogram needs no data.
	if n := strings.Count(logs, "WARN"); n != 1 {
		t.Errorf("got %d warnings, want 1:\n%s", n, logs)
	}
}

func TestGalleryCommandUnknown(t *testing.T) {
	_, err := run(t, "gallery", "pie_chart", "-d", t.TempDir(), "--no-cache")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("got %v, want NOT_FOUND", err)
	}
}

func TestSelectEntries(t *testing.T) {
	all, err := selectEntries(nil)
	if err != nil || len(all) != 17 {
		t.Fatalf("selectEntries(nil) = %d entries, %v", len(all), err)
	}
	some, err := selectEntries([]string{"subplots", "heatmap"})
	if err != nil {
		t.Fatal(err)
	}
	if some[0].Name != "subplots" || some[1].Name != "heatmap" {
		t.Errorf("order not kept: %s, %s", some[0].Name, some[1].Name)
	}
}

func TestCacheDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CACHE_HOME only applies on Linux")
	}
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	if want := filepath.Join(custom, appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestCacheCommands(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")

	out, err := runOut(t, root, "cache", "path")
	if err != nil || strings.TrimSpace(out) != root {
		t.Fatalf("cache path = %q, %v", out, err)
	}

	out, err = runOut(t, root, "cache", "info")
	if err != nil || !strings.Contains(out, "Cache is empty") {
		t.Fatalf("cache info before render = %q, %v", out, err)
	}
	if _, err := os.Stat(root); err == nil {
		t.Error("cache info created the cache directory")
	}

	fig := filepath.Join(t.TempDir(), "fig.svg")
	out, err = runOut(t, root, "render", filepath.Join(t.TempDir(), "missing.csv"), "-o", fig)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Rendered line chart", "Saved: " + fig, "fallback:missing", "fresh"} {
		if !strings.Contains(out, want) {
			t.Errorf("render output lacks %q:\n%s", want, out)
		}
	}

	out, err = runOut(t, root, "cache", "info")
	if err != nil || field(out, "Entries") != "1" || field(out, "Directory") != root {
		t.Fatalf("cache info after render = %q, %v", out, err)
	}

	out, err = runOut(t, root, "cache", "clear")
	if err != nil || !strings.Contains(out, "Cleared 1 cached figures") {
		t.Fatalf("cache clear = %q, %v", out, err)
	}
	out, _ = runOut(t, root, "cache", "info")
	if field(out, "Entries") != "0" {
		t.Errorf("entries after clear = %q", field(out, "Entries"))
	}
}

func TestGalleryList(t *testing.T) {
	out, err := runOut(t, t.TempDir(), "gallery", "--list")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Gallery", "simple_xy", "heatmap", "* plots the --data table"} {
		if !strings.Contains(out, want) {
			t.Errorf("list lacks %q:\n%s", want, out)
		}
	}
}
