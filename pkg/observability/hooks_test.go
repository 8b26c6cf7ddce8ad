package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	_ PipelineHooks = NoopPipelineHooks{}
	_ CacheHooks    = NoopCacheHooks{}
	_ HTTPHooks     = NoopHTTPHooks{}
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)

// hookSet is one implementation of all three hook interfaces.
type hookSet struct {
	name     string
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

func hookSets() []hookSet {
	prom := NewPrometheusHooks()
	return []hookSet{
		{"noop", NoopPipelineHooks{}, NoopCacheHooks{}, NoopHTTPHooks{}},
		{"prometheus", prom, prom, prom},
	}
}

// Every hook must accept a full render run, a failed run, and odd inputs such
// as empty formats or zero-length cache entries, without panicking.
func TestHooksAcceptAnyEvent(t *testing.T) {
	ctx := context.Background()
	failure := errors.New("upstream returned 503")

	for _, hs := range hookSets() {
		t.Run(hs.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				for _, err := range []error{nil, failure} {
					p := hs.pipeline
					p.OnFetchStart(ctx, "https://example.com/global-temperature.json")
					p.OnFetchComplete(ctx, "https://example.com/global-temperature.json", 3153, 80*time.Millisecond, err)
					p.OnMountStart(ctx, 3153)
					p.OnMountComplete(ctx, 3153, 5*time.Millisecond, err)
					p.OnRenderStart(ctx, []string{"svg", "png"})
					p.OnRenderComplete(ctx, []string{"svg", "png"}, 40*time.Millisecond, err)
					p.OnRenderStart(ctx, nil)
					p.OnRenderComplete(ctx, nil, 0, err)

					h := hs.http
					h.OnRequest(ctx, "GET", "example.com", "/global-temperature.json")
					h.OnResponse(ctx, "GET", "example.com", "/global-temperature.json", 304, time.Millisecond)
					h.OnError(ctx, "GET", "example.com", "/global-temperature.json", err)
				}

				c := hs.cache
				c.OnCacheHit(ctx, "dataset")
				c.OnCacheMiss(ctx, "artifact")
				c.OnCacheSet(ctx, "artifact", 0)
			})
		})
	}
}

func TestRegistryDefaultsAndReset(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	assert.IsType(t, NoopPipelineHooks{}, Pipeline())
	assert.IsType(t, NoopCacheHooks{}, Cache())
	assert.IsType(t, NoopHTTPHooks{}, HTTP())

	prom := NewPrometheusHooks()
	SetPipelineHooks(prom)
	SetCacheHooks(prom)
	SetHTTPHooks(prom)
	assert.Same(t, prom, Pipeline())
	assert.Same(t, prom, Cache())
	assert.Same(t, prom, HTTP())

	Reset()
	assert.IsType(t, NoopPipelineHooks{}, Pipeline())
	assert.IsType(t, NoopCacheHooks{}, Cache())
	assert.IsType(t, NoopHTTPHooks{}, HTTP())
}

func TestRegistryIgnoresNil(t *testing.T) {
	t.Cleanup(Reset)
	prom := NewPrometheusHooks()
	SetPipelineHooks(prom)
	SetCacheHooks(prom)
	SetHTTPHooks(prom)

	SetPipelineHooks(nil)
	SetCacheHooks(nil)
	SetHTTPHooks(nil)

	assert.Same(t, prom, Pipeline())
	assert.Same(t, prom, Cache())
	assert.Same(t, prom, HTTP())
}
