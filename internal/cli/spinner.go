package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/kastman/sbml-diff/pkg/observability"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates a progress message on stderr while a slow pipeline
// run is in flight. It draws nothing when stderr is not a terminal, so
// piped and scripted runs stay clean.
type spinner struct {
	mu      sync.Mutex
	message string
	width   int

	enabled bool
	cancel  context.CancelFunc
	stopped chan struct{}
}

// startSpinner begins the animation. The caller must call stop.
func startSpinner(ctx context.Context, message string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &spinner{
		message: message,
		enabled: stderrIsTerminal(),
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	if !s.enabled {
		close(s.stopped)
		return s
	}
	go s.run(ctx)
	return s
}

func stderrIsTerminal() bool {
	fi, err := os.Stderr.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.stopped)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			s.clear()
			return
		case <-ticker.C:
			s.draw(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(os.Stderr, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
	if n := len(s.message) + 2; n > s.width {
		s.width = n
	}
}

// setMessage swaps the displayed message for the next frame.
func (s *spinner) setMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", s.width))
}

// stop halts the animation and clears the line. Safe to call more
// than once.
func (s *spinner) stop() {
	s.cancel()
	<-s.stopped
}

// spinnerHooks advances the spinner message as the pipeline moves
// between phases.
type spinnerHooks struct {
	observability.NoopPipelineHooks
	spinner *spinner
}

func (h spinnerHooks) OnParseStart(_ context.Context, documents int) {
	h.spinner.setMessage(fmt.Sprintf("Parsing %d documents", documents))
}

func (h spinnerHooks) OnCompareStart(_ context.Context, models int) {
	h.spinner.setMessage(fmt.Sprintf("Comparing %d models", models))
}

func (h spinnerHooks) OnRenderStart(_ context.Context, formats []string) {
	h.spinner.setMessage("Rendering " + strings.Join(formats, ", "))
}
