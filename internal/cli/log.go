package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger: "15:04:05.00" timestamps and level
// badges in the same colors as the status lines.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	styles := log.DefaultStyles()
	for lvl, color := range map[log.Level]lipgloss.Color{
		log.DebugLevel: colorDim,
		log.InfoLevel:  colorCyan,
		log.WarnLevel:  colorYellow,
		log.ErrorLevel: colorRed,
	} {
		styles.Levels[lvl] = styles.Levels[lvl].Foreground(color)
	}
	l.SetStyles(styles)
	return l
}

// progress counts the figures of a batch and logs a summary when it ends.
type progress struct {
	logger         *log.Logger
	start          time.Time
	total, fromHit int
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) add(cacheHit bool) {
	p.total++
	if cacheHit {
		p.fromHit++
	}
}

// done logs e.g. "Rendered 17 figures, 3 cached (1.234s)".
func (p *progress) done() {
	noun := "figures"
	if p.total == 1 {
		noun = "figure"
	}
	p.logger.Info(fmt.Sprintf("Rendered %d %s, %d cached (%s)",
		p.total, noun, p.fromHit, time.Since(p.start).Round(time.Millisecond)))
}

type ctxKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default() outside a command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
