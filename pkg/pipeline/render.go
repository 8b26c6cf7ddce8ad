package pipeline

import (
	"fmt"

	"github.com/matzehuels/thermogrid/pkg/heatmap"
	"github.com/matzehuels/thermogrid/pkg/render/sink"
)

// Render serializes view into every format in opts.Formats.
func Render(view *heatmap.View, opts Options) (map[string][]byte, error) {
	svgOpts := []sink.SVGOption{sink.WithTooltips(opts.Tooltips)}
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(view, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(view, sink.WithScale(opts.Scale))
		case FormatPDF:
			data, err = sink.RenderPDF(view)
		case FormatJSON:
			data, err = sink.RenderJSON(view)
		default:
			err = ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
