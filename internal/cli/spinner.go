package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/thermogrid/pkg/observability"
)

// stage is the pipeline step a Spinner is currently reporting.
type stage int

const (
	stageIdle stage = iota
	stageFetch
	stageMount
	stageRender
)

func (s stage) String() string {
	switch s {
	case stageFetch:
		return "Fetch"
	case stageMount:
		return "Mount"
	case stageRender:
		return "Render"
	default:
		return "Setup"
	}
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates one status line on w while the pipeline runs. Its message
// follows the pipeline stages when it is attached with track.
type Spinner struct {
	w      io.Writer
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once

	mu      sync.Mutex
	stage   stage
	message string
	width   int // widest line drawn, for clearing
	started bool
	stopped chan struct{}
}

// newSpinner creates a spinner on stderr that stops when ctx is cancelled.
func newSpinner(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, message)
}

func newSpinnerTo(ctx context.Context, w io.Writer, message string) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		parent:  ctx,
		ctx:     sctx,
		cancel:  cancel,
		message: message,
		stopped: make(chan struct{}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.message)
	s.width = max(s.width, len(s.message)+2)
	fmt.Fprintf(s.w, "\r%s", line)
}

// enter switches the spinner to st with a new message.
func (s *Spinner) enter(st stage, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage = st
	s.message = message
}

// Stage returns the stage last entered.
func (s *Spinner) Stage() stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Message returns the current status line text.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Stop halts the animation and clears the line. It is safe to call twice.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.stopped
		}
		s.mu.Lock()
		if s.width > 0 {
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width+2))
		}
		s.mu.Unlock()
	})
}

// Fail stops the spinner and reports which stage failed, for example
// "Render failed", or "Fetch cancelled" after an interrupt.
func (s *Spinner) Fail() {
	s.Stop()
	printError("%s", s.failure())
}

func (s *Spinner) failure() string {
	if s.Cancelled() {
		return s.Stage().String() + " cancelled"
	}
	return s.Stage().String() + " failed"
}

// Cancelled reports whether the command's context ended, as opposed to the
// spinner being stopped normally.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}

// track routes pipeline hook events through the spinner until the returned
// restore func runs. Events still reach the hooks installed before.
func (s *Spinner) track() (restore func()) {
	prev := observability.Pipeline()
	observability.SetPipelineHooks(stageHooks{s: s, next: prev})
	return func() { observability.SetPipelineHooks(prev) }
}

// stageHooks advances a Spinner as pipeline stages start.
type stageHooks struct {
	s    *Spinner
	next observability.PipelineHooks
}

func (h stageHooks) OnFetchStart(ctx context.Context, source string) {
	h.s.enter(stageFetch, "Fetching "+source+"...")
	h.next.OnFetchStart(ctx, source)
}

func (h stageHooks) OnFetchComplete(ctx context.Context, source string, records int, d time.Duration, err error) {
	h.next.OnFetchComplete(ctx, source, records, d, err)
}

func (h stageHooks) OnMountStart(ctx context.Context, records int) {
	h.s.enter(stageMount, fmt.Sprintf("Mounting %d records...", records))
	h.next.OnMountStart(ctx, records)
}

func (h stageHooks) OnMountComplete(ctx context.Context, marks int, d time.Duration, err error) {
	h.next.OnMountComplete(ctx, marks, d, err)
}

func (h stageHooks) OnRenderStart(ctx context.Context, formats []string) {
	h.s.enter(stageRender, "Rendering "+strings.Join(formats, ", ")+"...")
	h.next.OnRenderStart(ctx, formats)
}

func (h stageHooks) OnRenderComplete(ctx context.Context, formats []string, d time.Duration, err error) {
	h.next.OnRenderComplete(ctx, formats, d, err)
}
