package dataload

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/pubfig/pkg/errors"
	"github.com/matzehuels/pubfig/pkg/observability"
	"github.com/matzehuels/pubfig/pkg/series"
)

// Options configures a load.
type Options struct {
	// Delimiter separates columns. Empty means auto: a comma when the row
	// contains one, otherwise runs of whitespace.
	Delimiter string

	// XColumn and YColumn are zero-based column indices. When both are zero
	// the first two columns are used.
	XColumn, YColumn int

	// Sheet selects the spreadsheet sheet for .xlsx input. Empty means the first sheet.
	Sheet string

	// Generator produces the fallback series. The zero value is the damped sine.
	Generator Generator

	// Logger receives the fallback warning. Nil discards.
	Logger *log.Logger
}

func (o Options) columns() (int, int) {
	if o.XColumn == 0 && o.YColumn == 0 {
		return 0, 1
	}
	return o.XColumn, o.YColumn
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}

// Load reads the table at path. It never fails: unusable input falls back to
// opts.Generator and the Outcome says why.
func Load(path string, opts Options) Outcome {
	return LoadContext(context.Background(), path, opts)
}

// LoadContext is Load with a context for the load hook.
func LoadContext(ctx context.Context, path string, opts Options) Outcome {
	start := time.Now()
	return finish(ctx, load(path, opts), opts, start)
}

// Read is Load over a stream. name is used for format detection (a .xlsx
// suffix selects the spreadsheet reader) and in log messages.
func Read(ctx context.Context, r io.Reader, name string, opts Options) Outcome {
	start := time.Now()
	var out Outcome
	if isSpreadsheet(name) {
		out = readSpreadsheet(r, name, opts)
	} else {
		out = readTable(r, name, opts)
	}
	return finish(ctx, out, opts, start)
}

func load(path string, opts Options) Outcome {
	if path == "" {
		return fallback(path, ReasonMissing, errors.New(errors.ErrCodeDataUnavailable, "no data file given"))
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return fallback(path, ReasonMissing, errors.Wrap(errors.ErrCodeDataUnavailable, err, "data file %s not found", path))
	}
	if err != nil {
		return fallback(path, ReasonUnreadable, errors.Wrap(errors.ErrCodeDataUnavailable, err, "open %s", path))
	}
	defer f.Close()

	if isSpreadsheet(path) {
		return readSpreadsheet(f, path, opts)
	}
	return readTable(f, path, opts)
}

// finish generates the fallback series when needed, logs the outcome and
// notifies the load hook.
func finish(ctx context.Context, out Outcome, opts Options, start time.Time) Outcome {
	logger := opts.logger()
	if out.Status == Fallback {
		out.Series = opts.Generator.Generate()
		logger.Warn("data unavailable, using synthetic fallback",
			"source", out.Source, "reason", out.Reason, "err", errors.UserMessage(out.Err))
	} else {
		logger.Info("loaded data", "source", out.Source, "points", out.Series.Len())
	}
	observability.Pipeline().OnLoadComplete(ctx, out.Source, out.Label(), out.Series.Len(), time.Since(start))
	return out
}

func fallback(source string, reason Reason, err error) Outcome {
	return Outcome{Status: Fallback, Reason: reason, Err: err, Source: source}
}

func readTable(r io.Reader, source string, opts Options) Outcome {
	var rows [][]string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rows = append(rows, split(line, opts.Delimiter))
	}
	if err := sc.Err(); err != nil {
		return fallback(source, ReasonUnreadable, errors.Wrap(errors.ErrCodeDataUnavailable, err, "read %s", source))
	}
	return parseRows(rows, source, opts)
}

func readSpreadsheet(r io.Reader, source string, opts Options) Outcome {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return fallback(source, ReasonUnreadable, errors.Wrap(errors.ErrCodeDataUnavailable, err, "open workbook %s", source))
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	raw, err := f.GetRows(sheet)
	if err != nil {
		return fallback(source, ReasonUnreadable, errors.Wrap(errors.ErrCodeDataUnavailable, err, "read sheet %q of %s", sheet, source))
	}

	var rows [][]string
	for _, row := range raw {
		if blank(row) {
			continue
		}
		rows = append(rows, row)
	}
	return parseRows(rows, source, opts)
}

// parseRows converts cell rows to a series. A leading row in which no cell
// parses as a number is taken as a header; any other first row is data.
func parseRows(rows [][]string, source string, opts Options) Outcome {
	xc, yc := opts.columns()
	if xc < 0 || yc < 0 {
		return fallback(source, ReasonShape, errors.New(errors.ErrCodeDataUnavailable,
			"%s: column indices must be non-negative, got x=%d y=%d", source, xc, yc))
	}
	need := max(xc, yc) + 1

	if len(rows) > 0 && headerRow(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return fallback(source, ReasonEmpty, errors.New(errors.ErrCodeDataUnavailable, "%s holds no data rows", source))
	}

	xs := make([]float64, 0, len(rows))
	ys := make([]float64, 0, len(rows))
	for i, row := range rows {
		if len(row) < need {
			return fallback(source, ReasonShape, errors.New(errors.ErrCodeDataUnavailable,
				"%s: row %d has %d columns, need %d", source, i+1, len(row), need))
		}
		x, errX := parseFloat(row[xc])
		y, errY := parseFloat(row[yc])
		if errX != nil || errY != nil {
			return fallback(source, ReasonMalformed, errors.New(errors.ErrCodeDataUnavailable,
				"%s: row %d is not numeric: %q", source, i+1, strings.Join(row, " ")))
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}

	s, err := series.New(filepath.Base(source), xs, ys)
	if err != nil {
		return fallback(source, ReasonShape, errors.Wrap(errors.ErrCodeDataUnavailable, err, "%s", source))
	}
	return Outcome{Series: s, Status: Loaded, Source: source}
}

func split(line, delim string) []string {
	switch {
	case delim == "" && strings.Contains(line, ","):
		delim = ","
	case delim == "" || delim == " ":
		return strings.Fields(line)
	}
	parts := strings.Split(line, delim)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func headerRow(row []string) bool {
	for _, c := range row {
		if _, err := parseFloat(c); err == nil {
			return false
		}
	}
	return true
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func isSpreadsheet(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xlsx")
}

// ReadBytes is Read over an in-memory buffer.
func ReadBytes(ctx context.Context, data []byte, name string, opts Options) Outcome {
	return Read(ctx, bytes.NewReader(data), name, opts)
}
