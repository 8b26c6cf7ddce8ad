package cli

import (
	"github.com/matzehuels/thermogrid/pkg/observability"
)

// installMetrics registers Prometheus hooks for every hook family and
// returns a function that writes them to path in text exposition format.
func installMetrics(path string) func() error {
	hooks := observability.NewPrometheusHooks()
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	return func() error {
		return hooks.WriteTextfile(path)
	}
}
