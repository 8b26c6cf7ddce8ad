package sink

import (
	"github.com/matzehuels/thermogrid/pkg/heatmap"
	"github.com/matzehuels/thermogrid/pkg/render"
)

// RasterOption configures PNG and PDF rendering.
type RasterOption func(*rasterRenderer)

type rasterRenderer struct {
	svgOpts []SVGOption
	scale   float64
}

// WithSVGOptions passes options through to the underlying SVG renderer.
func WithSVGOptions(opts ...SVGOption) RasterOption {
	return func(r *rasterRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG zoom factor (default 2.0).
func WithScale(s float64) RasterOption {
	return func(r *rasterRenderer) { r.scale = s }
}

func newRasterRenderer(opts []RasterOption) rasterRenderer {
	r := rasterRenderer{scale: render.DefaultPNGScale}
	for _, opt := range opts {
		opt(&r)
	}
	// Static formats cannot run the hover script.
	r.svgOpts = append(r.svgOpts, WithTooltips(false))
	return r
}

// RenderPNG renders v as PNG via SVG conversion.
func RenderPNG(v *heatmap.View, opts ...RasterOption) ([]byte, error) {
	r := newRasterRenderer(opts)
	return render.ToPNG(RenderSVG(v, r.svgOpts...), r.scale)
}

// RenderPDF renders v as PDF via SVG conversion.
func RenderPDF(v *heatmap.View, opts ...RasterOption) ([]byte, error) {
	r := newRasterRenderer(opts)
	return render.ToPDF(RenderSVG(v, r.svgOpts...))
}
