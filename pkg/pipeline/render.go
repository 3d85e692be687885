package pipeline

import (
	"bytes"
	"fmt"
	"io"

	"github.com/matzehuels/cgmap/pkg/render"
	"github.com/matzehuels/cgmap/pkg/render/canvas"
	"github.com/matzehuels/cgmap/pkg/render/sink"
)

// Render draws rd once per format in opts.Formats. The first drawn format
// lays labels out (or reuses the previous layout when opts.Reuse is set);
// later formats redraw that layout so all artifacts agree. The label JSON
// export is written last from the drawn view; when it is the only format
// the view is drawn on a discarded SVG surface to measure text the same
// way.
func Render(rd *render.Renderer, opts Options) (map[string][]byte, *render.Result, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	title := ""
	if m := rd.Map(); m != nil {
		title = m.Title
	}

	var res *render.Result
	draw := func(s canvas.Surface) *render.Result {
		reuse := opts.Reuse || res != nil
		if !reuse && !opts.Zoomed() {
			return rd.RenderFull(s, opts.ViewOptions())
		}
		return rd.RenderZoomed(s, opts.Zoom, opts.Center, opts.ViewOptions(), reuse)
	}
	keep := func(r *render.Result) {
		if res == nil {
			res = r
		}
	}

	wantJSON := false
	for _, format := range opts.Formats {
		switch format {
		case FormatSVG:
			var buf bytes.Buffer
			s := sink.NewSVGSurface(&buf, opts.Width, opts.Height, sink.WithSVGTitle(title))
			keep(draw(s))
			s.End()
			artifacts[format] = buf.Bytes()
		case FormatPNG:
			s := sink.NewPNGSurface(opts.Width, opts.Height, sink.WithScale(opts.Scale))
			keep(draw(s))
			var buf bytes.Buffer
			if err := s.EncodePNG(&buf); err != nil {
				return nil, nil, fmt.Errorf("render %s: %w", format, err)
			}
			artifacts[format] = buf.Bytes()
		case FormatJSON:
			wantJSON = true
		default:
			return nil, nil, fmt.Errorf("unsupported format: %s", format)
		}
	}

	if wantJSON {
		if res == nil {
			s := sink.NewSVGSurface(io.Discard, opts.Width, opts.Height)
			res = draw(s)
			s.End()
		}
		data, err := sink.RenderLabelsJSON(res, sink.WithJSONTitle(title))
		if err != nil {
			return nil, nil, fmt.Errorf("render %s: %w", FormatJSON, err)
		}
		artifacts[FormatJSON] = data
	}
	return artifacts, res, nil
}
