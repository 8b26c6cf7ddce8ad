// Package sink draws a mounted [heatmap.View] into output formats.
//
// # SVG
//
// [RenderSVG] writes a self-contained document: a #title, one rect.cell per
// mark, a year axis (g#x-axis), a month axis (g#y-axis), the legend ramp
// (g#legend) and a single hidden g#tooltip. Each cell carries data-year,
// data-month (0-based) and data-temp attributes plus its precomputed tooltip
// text and position; a small inline script shows and hides the one tooltip
// element as the pointer enters and leaves cells. The script only looks
// inside the svg element whose data-render-id matches the view, so several
// charts can share a page.
//
// [WithTooltips](false) drops the script and tooltip element, which is what
// the PNG and PDF renderers do.
//
// # JSON
//
// [RenderJSON] exports marks, legend and axes with their computed
// positions and colors.
//
// [heatmap.View]: github.com/matzehuels/thermogrid/pkg/heatmap#View
package sink
