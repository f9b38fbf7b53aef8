package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = [...]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerTick = 80 * time.Millisecond

// Spinner animates a one-line status on stderr while the gallery renders.
// It draws nothing when stderr is not a terminal, so logs and CI output
// stay clean.
type Spinner struct {
	w       io.Writer
	enabled bool

	ctx    context.Context
	cancel context.CancelFunc
	exited chan struct{}
	once   sync.Once

	mu      sync.Mutex
	message string
	width   int // widest line drawn, for clearing
}

// newSpinner returns a spinner on stderr that stops with ctx.
func newSpinner(ctx context.Context, message string) *Spinner {
	fd := os.Stderr.Fd()
	return newSpinnerTo(ctx, os.Stderr, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd), message)
}

func newSpinnerTo(ctx context.Context, w io.Writer, enabled bool, message string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		enabled: enabled,
		ctx:     ctx,
		cancel:  cancel,
		exited:  make(chan struct{}),
		message: message,
	}
}

// Start runs the animation until Stop or until the context ends.
func (s *Spinner) Start() {
	go func() {
		defer close(s.exited)
		if !s.enabled {
			<-s.ctx.Done()
			return
		}
		ticker := time.NewTicker(spinnerTick)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// SetMessage replaces the text shown next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = max(s.width, len(s.message))
	pad := strings.Repeat(" ", s.width-len(s.message))
	fmt.Fprintf(s.w, "\r%s %s%s", styleSpinner.Render(frame), styleDim.Render(s.message), pad)
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", max(s.width, len(s.message))+4))
}

// Stop ends the animation, waits for it to clear its line and returns.
// Calling it again does nothing.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.exited
	})
}

// Cancelled reports whether the spinner's context is done, through Stop or
// through its parent.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}
