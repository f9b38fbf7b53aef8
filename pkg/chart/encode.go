package chart

import (
	"bytes"
	"os"
	"os/exec"
	"runtime"

	"github.com/mattn/go-isatty"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgeps"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/matzehuels/pubfig/pkg/errors"
	"github.com/matzehuels/pubfig/pkg/style"
)

// Encode renders fig with cfg and returns the encoded file contents. The
// output depends only on its arguments, so equal inputs give equal bytes.
func Encode(fig Figure, cfg style.RenderConfig) (data []byte, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cw := newCanvas(cfg)

	// gonum panics on impossible geometry, e.g. a log axis through zero.
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, errors.New(errors.ErrCodeRenderFailure, "draw %s: %v", fig.Name, r)
		}
	}()
	if err := drawFigure(draw.New(cw), fig, cfg); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := cw.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailure, err, "encode %s", cfg.OutputFormat())
	}
	return buf.Bytes(), nil
}

func newCanvas(cfg style.RenderConfig) vg.CanvasWriterTo {
	w, h := vg.Length(cfg.Width)*vg.Inch, vg.Length(cfg.Height)*vg.Inch
	switch cfg.OutputFormat() {
	case "svg":
		return vgsvg.New(w, h)
	case "eps":
		return vgeps.New(w, h)
	case "png", "jpg", "jpeg", "tif", "tiff":
		img := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(cfg.DPI))
		switch cfg.OutputFormat() {
		case "png":
			return vgimg.PngCanvas{Canvas: img}
		case "tif", "tiff":
			return vgimg.TiffCanvas{Canvas: img}
		}
		return vgimg.JpegCanvas{Canvas: img}
	}
	return vgpdf.New(w, h)
}

// Save renders fig and writes it to cfg.Output, replacing any existing
// file. It returns the path written.
func Save(fig Figure, cfg style.RenderConfig) (string, error) {
	data, err := Encode(fig, cfg)
	if err != nil {
		return "", err
	}
	if err := WriteFile(cfg.Output, data); err != nil {
		return "", err
	}
	return cfg.Output, nil
}

// WriteFile writes data to path, creating or truncating it.
func WriteFile(path string, data []byte) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailure, err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeRenderFailure, cerr, "close %s", path)
		}
	}()
	if _, err := f.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailure, err, "write %s", path)
	}
	return nil
}

// Show opens path in the platform's default viewer. It does nothing unless
// stdout is a terminal, so batch runs never block on a window.
func Show(path string) error {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return nil
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "open viewer for %s", path)
	}
	return cmd.Process.Release()
}
