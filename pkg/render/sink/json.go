package sink

import (
	"encoding/json"

	"github.com/matzehuels/cgmap/pkg/render"
)

// JSONOption configures RenderLabelsJSON.
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	title   string
	compact bool
}

// WithJSONTitle records the map title in the output.
func WithJSONTitle(t string) JSONOption { return func(r *jsonRenderer) { r.title = t } }

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

type jsonOutput struct {
	Title          string               `json:"title,omitempty"`
	Width          float64              `json:"width"`
	Height         float64              `json:"height"`
	SequenceLength int                  `json:"sequence_length"`
	Zoom           float64              `json:"zoom"`
	VirtualZoom    float64              `json:"virtual_zoom,omitempty"`
	Center         int                  `json:"center"`
	Placed         int                  `json:"placed"`
	Dropped        int                  `json:"dropped"`
	Total          int                  `json:"total"`
	Reused         bool                 `json:"reused,omitempty"`
	Labels         []render.LabelBounds `json:"labels"`
}

// RenderLabelsJSON exports the label bounds of res with the view they were
// drawn in. Image map writers turn each bounds record with a hyperlink or
// mouseover into a clickable area.
func RenderLabelsJSON(res *render.Result, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	st := res.State
	out := jsonOutput{
		Title:          r.title,
		Width:          st.Canvas.W(),
		Height:         st.Canvas.H(),
		SequenceLength: st.N,
		Zoom:           st.Zoom,
		Center:         st.Center,
		Placed:         res.Placed,
		Dropped:        res.Dropped,
		Total:          res.Total,
		Reused:         res.Reused,
		Labels:         res.Labels,
	}
	if st.Virtual {
		out.VirtualZoom = st.VirtualZoom
	}
	if out.Labels == nil {
		out.Labels = []render.LabelBounds{}
	}
	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}
