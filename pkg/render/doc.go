// Package render turns a mounted heatmap into output files.
//
// The [sink] subpackage draws a [heatmap.View] as SVG or exports it as JSON.
// PNG and PDF are produced from the SVG by [ToPNG] and [ToPDF], which shell
// out to rsvg-convert from librsvg:
//
//	svg := sink.RenderSVG(view)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// When rsvg-convert is missing both return an errors.ErrCodeUnsupported
// error with installation hints; SVG and JSON output never need it.
//
// [sink]: github.com/matzehuels/thermogrid/pkg/render/sink
// [heatmap.View]: github.com/matzehuels/thermogrid/pkg/heatmap#View
package render
