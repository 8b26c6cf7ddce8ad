package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/thermogrid/pkg/observability"
	"github.com/matzehuels/thermogrid/pkg/pipeline"
)

// stageRecorder records which stage events reached it.
type stageRecorder struct {
	observability.NoopPipelineHooks
	events []string
}

func (r *stageRecorder) OnFetchStart(_ context.Context, source string) {
	r.events = append(r.events, "fetch "+source)
}

func (r *stageRecorder) OnMountComplete(_ context.Context, marks int, _ time.Duration, err error) {
	r.events = append(r.events, "mounted")
}

func (r *stageRecorder) OnRenderComplete(_ context.Context, formats []string, _ time.Duration, err error) {
	r.events = append(r.events, "rendered "+strings.Join(formats, ","))
}

func TestSpinnerFollowsPipelineStages(t *testing.T) {
	t.Cleanup(observability.Reset)
	s := newSpinnerTo(context.Background(), io.Discard, "Preparing...")
	restore := s.track()
	defer restore()

	assert.Equal(t, stageIdle, s.Stage())
	assert.Equal(t, "Preparing...", s.Message())

	ctx := context.Background()
	hooks := observability.Pipeline()

	hooks.OnFetchStart(ctx, "temps.json")
	assert.Equal(t, stageFetch, s.Stage())
	assert.Equal(t, "Fetching temps.json...", s.Message())

	hooks.OnMountStart(ctx, 3153)
	assert.Equal(t, stageMount, s.Stage())
	assert.Equal(t, "Mounting 3153 records...", s.Message())

	hooks.OnRenderStart(ctx, []string{"svg", "png"})
	assert.Equal(t, stageRender, s.Stage())
	assert.Equal(t, "Rendering svg, png...", s.Message())

	hooks.OnRenderComplete(ctx, []string{"svg", "png"}, time.Millisecond, nil)
	assert.Equal(t, stageRender, s.Stage(), "completion does not change the stage")
}

func TestSpinnerTrackForwardsAndRestores(t *testing.T) {
	t.Cleanup(observability.Reset)
	rec := &stageRecorder{}
	observability.SetPipelineHooks(rec)

	s := newSpinnerTo(context.Background(), io.Discard, "")
	restore := s.track()
	require.IsType(t, stageHooks{}, observability.Pipeline())

	ctx := context.Background()
	observability.Pipeline().OnFetchStart(ctx, "temps.json")
	observability.Pipeline().OnMountComplete(ctx, 12, time.Millisecond, nil)
	observability.Pipeline().OnRenderComplete(ctx, []string{"svg"}, time.Millisecond, nil)
	assert.Equal(t, []string{"fetch temps.json", "mounted", "rendered svg"}, rec.events)

	restore()
	assert.Same(t, rec, observability.Pipeline())

	observability.Pipeline().OnFetchStart(ctx, "again.json")
	assert.Equal(t, stageFetch, s.Stage())
	assert.Equal(t, "Fetching temps.json...", s.Message(), "detached spinner ignores later runs")
}

func TestSpinnerFailureNamesStage(t *testing.T) {
	tests := []struct {
		stage stage
		want  string
	}{
		{stageIdle, "Setup failed"},
		{stageFetch, "Fetch failed"},
		{stageMount, "Mount failed"},
		{stageRender, "Render failed"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			s := newSpinnerTo(context.Background(), io.Discard, "")
			s.enter(tt.stage, "")
			assert.Equal(t, tt.want, s.failure())
		})
	}
}

func TestSpinnerTracksRunnerExecute(t *testing.T) {
	t.Cleanup(observability.Reset)
	input := datasetFile(t)

	s := newSpinnerTo(context.Background(), io.Discard, "Preparing...")
	restore := s.track()
	defer restore()

	opts := pipeline.DefaultOptions()
	opts.Input = input
	opts.Formats = []string{"json"}
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	_, err := runner.Execute(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, stageRender, s.Stage())
	assert.Equal(t, "Rendering json...", s.Message())
}

func TestSpinnerRunnerFailureStopsAtFetch(t *testing.T) {
	t.Cleanup(observability.Reset)
	s := newSpinnerTo(context.Background(), io.Discard, "Preparing...")
	restore := s.track()
	defer restore()

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"baseTemperature": "warm"}`), 0644))

	opts := pipeline.DefaultOptions()
	opts.Input = bad
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	_, err := runner.Execute(context.Background(), opts)
	require.Error(t, err)

	assert.Equal(t, "Fetch failed", s.failure())
}

func TestSpinnerDrawsAndClears(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerTo(context.Background(), &buf, "Fetching temps.json...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()
	s.Stop()

	out := buf.String()
	assert.Contains(t, out, "Fetching temps.json...")
	assert.True(t, strings.HasSuffix(out, "\r"), "line is cleared on stop")
	assert.False(t, s.Cancelled())
}

func TestSpinnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerTo(ctx, io.Discard, "Rendering svg...")
	s.Start()

	s.enter(stageFetch, "Fetching temps.json...")
	cancel()
	s.Stop()
	assert.True(t, s.Cancelled())
	assert.Equal(t, "Fetch cancelled", s.failure())
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := newSpinnerTo(context.Background(), io.Discard, "Preparing...")
	assert.NotPanics(t, s.Stop)
}
