package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/thermogrid/pkg/dataset"
	"github.com/matzehuels/thermogrid/pkg/heatmap"
)

// Margins surround the plot area.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargins leave room for the title, both axes and the legend.
var DefaultMargins = Margins{Top: 50, Right: 40, Bottom: 120, Left: 90}

// OuterSize returns the full image size for a plot area of frame.
func (m Margins) OuterSize(frame heatmap.Frame) (width, height float64) {
	return frame.Width + m.Left + m.Right, frame.Height + m.Top + m.Bottom
}

// Inner returns the plot area left inside an image of the given size.
func (m Margins) Inner(width, height float64) heatmap.Frame {
	return heatmap.Frame{Width: width - m.Left - m.Right, Height: height - m.Top - m.Bottom}
}

const chartCSS = `
    text { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; fill: #222; }
    #title { font-size: 20px; font-weight: 600; }
    .axis-label { font-size: 14px; }
    .tick text { font-size: 11px; }
    .domain, .tick line { stroke: #333; shape-rendering: crispEdges; }
    .cell:hover { stroke: #000; stroke-width: 1; }
    .tooltip { pointer-events: none; transition: opacity 0.1s ease; }
    .tooltip-bg { fill: #fff; stroke: #666; }
    .tooltip .big { font-size: 15px; font-weight: 600; }`

const tooltipJS = `
    (function () {
      const root = document.querySelector('svg[data-render-id="{{ID}}"]');
      if (!root) return;
      const tip = root.querySelector('#tooltip');
      const lines = tip.querySelectorAll('tspan');
      const shown = tip.getAttribute('data-opacity');
      root.querySelectorAll('rect.cell').forEach(cell => {
        cell.addEventListener('mouseenter', () => {
          cell.getAttribute('data-tip').split('\n').forEach((t, i) => {
            if (lines[i]) lines[i].textContent = t;
          });
          tip.setAttribute('transform', 'translate(' + cell.getAttribute('data-tx') + ',' + cell.getAttribute('data-ty') + ')');
          tip.setAttribute('data-year', cell.getAttribute('data-year'));
          tip.setAttribute('opacity', shown);
        });
        cell.addEventListener('mouseleave', () => tip.setAttribute('opacity', '0'));
      });
    })();`

const (
	tooltipWidth   = 160.0
	tooltipHeight  = 62.0
	tickSize       = 6.0
	legendTop      = 60.0
	legendMinSwatH = 8.0
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	margins  Margins
	tooltips bool
}

// WithTooltips toggles the hover script and the tooltip element.
func WithTooltips(on bool) SVGOption { return func(r *svgRenderer) { r.tooltips = on } }

// WithMargins overrides DefaultMargins.
func WithMargins(m Margins) SVGOption { return func(r *svgRenderer) { r.margins = m } }

// RenderSVG draws v as a standalone SVG document.
func RenderSVG(v *heatmap.View, opts ...SVGOption) []byte {
	r := svgRenderer{margins: DefaultMargins, tooltips: true}
	for _, opt := range opts {
		opt(&r)
	}

	m := r.margins
	width, height := m.OuterSize(v.Frame)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" data-render-id="%s">`+"\n",
		width, height, width, height, escapeXML(v.ID))
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", chartCSS)
	buf.WriteString("  <rect width=\"100%\" height=\"100%\" fill=\"#ffffff\"/>\n")
	fmt.Fprintf(&buf, "  <g transform=\"translate(%.1f,%.1f)\">\n", m.Left, m.Top)

	renderTitle(&buf, v)
	renderCells(&buf, v, r.tooltips)
	renderYearAxis(&buf, v)
	renderMonthAxis(&buf, v)
	renderLegend(&buf, v)
	if r.tooltips {
		renderTooltip(&buf, v)
	}

	buf.WriteString("  </g>\n")
	if r.tooltips {
		script := strings.ReplaceAll(tooltipJS, "{{ID}}", escapeXML(v.ID))
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", script)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderTitle(buf *bytes.Buffer, v *heatmap.View) {
	fmt.Fprintf(buf, "    <text id=\"title\" x=\"%.1f\" y=\"-20\" text-anchor=\"middle\">%s</text>\n",
		v.Frame.Width/2, escapeXML(v.Title))
}

func renderCells(buf *bytes.Buffer, v *heatmap.View, tooltips bool) {
	// Tooltip payloads come from the same interaction state the explorer uses.
	ix := heatmap.NewInteraction(dataset.Dataset{BaseTemperature: v.BaseTemperature}, v.Tooltip)

	buf.WriteString("    <g id=\"cells\">\n")
	for _, mk := range v.Marks {
		fmt.Fprintf(buf, `      <rect class="cell" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" data-year="%d" data-month="%d" data-temp="%.3f"`,
			mk.X, mk.Y, mk.Width, mk.Height, mk.Fill, mk.Record.Year, mk.MonthIndex(), mk.Temperature)
		if tooltips {
			state := ix.OnEnter(mk)
			fmt.Fprintf(buf, ` data-tip="%s" data-tx="%.2f" data-ty="%.2f"`,
				escapeXML(state.Text()), state.X, state.Y)
		}
		buf.WriteString("/>\n")
	}
	buf.WriteString("    </g>\n")
}

func renderYearAxis(buf *bytes.Buffer, v *heatmap.View) {
	w, h := v.Frame.Width, v.Frame.Height
	fmt.Fprintf(buf, "    <g id=\"x-axis\" transform=\"translate(0,%.2f)\">\n", h)
	fmt.Fprintf(buf, "      <path class=\"domain\" d=\"M0,%.1fV0H%.2fV%.1f\" fill=\"none\"/>\n", tickSize, w, tickSize)
	for _, t := range v.XAxis.Ticks {
		fmt.Fprintf(buf, "      <g class=\"tick\" transform=\"translate(%.2f,0)\"><line y2=\"%.1f\"/><text y=\"%.1f\" dy=\"0.71em\" text-anchor=\"middle\">%s</text></g>\n",
			t.Position, tickSize, tickSize+3, escapeXML(t.Label))
	}
	fmt.Fprintf(buf, "      <text class=\"axis-label\" x=\"%.2f\" y=\"45\" text-anchor=\"middle\">%s</text>\n",
		w/2, escapeXML(v.XAxis.Label))
	buf.WriteString("    </g>\n")
}

func renderMonthAxis(buf *bytes.Buffer, v *heatmap.View) {
	h := v.Frame.Height
	buf.WriteString("    <g id=\"y-axis\">\n")
	fmt.Fprintf(buf, "      <path class=\"domain\" d=\"M-%.1f,0H0V%.2fH-%.1f\" fill=\"none\"/>\n", tickSize, h, tickSize)
	for _, t := range v.YAxis.Ticks {
		fmt.Fprintf(buf, "      <g class=\"tick\" transform=\"translate(0,%.2f)\"><line x2=\"-%.1f\"/><text x=\"-%.1f\" dy=\"0.32em\" text-anchor=\"end\">%s</text></g>\n",
			t.Position, tickSize, tickSize+3, escapeXML(t.Label))
	}
	fmt.Fprintf(buf, "      <text class=\"axis-label\" transform=\"rotate(-90)\" x=\"%.2f\" y=\"-75\" text-anchor=\"middle\">%s</text>\n",
		-h/2, escapeXML(v.YAxis.Label))
	buf.WriteString("    </g>\n")
}

func renderLegend(buf *bytes.Buffer, v *heatmap.View) {
	lg := v.Legend
	swatchH := math.Max(legendMinSwatH, v.Scales.Y.Bandwidth()/2)
	x := math.Max(0, (v.Frame.Width-lg.Width)/2)

	fmt.Fprintf(buf, "    <g id=\"legend\" transform=\"translate(%.2f,%.2f)\">\n", x, v.Frame.Height+legendTop)
	fmt.Fprintf(buf, "      <text class=\"axis-label\" x=\"-10\" y=\"%.2f\" text-anchor=\"end\">Legend</text>\n", swatchH*0.75)
	for _, b := range lg.Buckets {
		fmt.Fprintf(buf, "      <rect x=\"%.2f\" y=\"0\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\"/>\n",
			b.X, lg.SwatchWidth, swatchH, b.Fill)
	}
	fmt.Fprintf(buf, "      <g id=\"legend-axis\" transform=\"translate(0,%.2f)\">\n", swatchH)
	fmt.Fprintf(buf, "        <path class=\"domain\" d=\"M0,%.1fV0H%.2fV%.1f\" fill=\"none\"/>\n", tickSize, lg.Width, tickSize)
	for _, t := range lg.Ticks {
		fmt.Fprintf(buf, "        <g class=\"tick\" transform=\"translate(%.2f,0)\"><line y2=\"%.1f\"/><text y=\"%.1f\" dy=\"0.71em\" text-anchor=\"middle\">%s</text></g>\n",
			t.Position, tickSize, tickSize+3, escapeXML(t.Label))
	}
	buf.WriteString("      </g>\n")
	buf.WriteString("    </g>\n")
}

func renderTooltip(buf *bytes.Buffer, v *heatmap.View) {
	fmt.Fprintf(buf, "    <g id=\"tooltip\" class=\"tooltip\" opacity=\"0\" data-opacity=\"%.2f\">\n", v.Tooltip.Opacity)
	fmt.Fprintf(buf, "      <rect class=\"tooltip-bg\" width=\"%.0f\" height=\"%.0f\" rx=\"4\"/>\n", tooltipWidth, tooltipHeight)
	buf.WriteString("      <text>")
	buf.WriteString(`<tspan x="8" y="17"></tspan>`)
	buf.WriteString(`<tspan class="big" x="8" y="36"></tspan>`)
	buf.WriteString(`<tspan x="8" y="54"></tspan>`)
	buf.WriteString("</text>\n")
	buf.WriteString("    </g>\n")
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
