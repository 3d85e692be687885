package render

import (
	"fmt"
	"math"

	"github.com/matzehuels/cgmap/pkg/geom"
	"github.com/matzehuels/cgmap/pkg/render/canvas"
	"github.com/matzehuels/cgmap/pkg/render/view"
	"github.com/matzehuels/cgmap/pkg/scene"
)

// drawBackbone strokes the sequence circle. Linear sequences leave a gap
// at the origin so the two ends read as separate.
func drawBackbone(s canvas.Surface, st view.State, style scene.Style, linear bool) {
	if st.Radius <= 0 || style.BackboneThickness <= 0 {
		return
	}
	stroke := canvas.Stroke{Color: style.BackboneColor, Width: style.BackboneThickness, Cap: canvas.CapButt}
	if st.Entire && !linear {
		a := st.Angle(0)
		s.StrokeArc(st.Centre, st.Radius, a, a+2*math.Pi, stroke)
		return
	}
	gap := 0.0
	if linear {
		gap = style.BackboneThickness / st.Radius
	}
	perBase := st.RadiansPerBase()
	for _, w := range backboneSpans(st) {
		a0 := st.Angle(w[0])
		a1 := a0 + (w[1]-w[0])*perBase
		if w[0] == 0 {
			a0 += gap
		}
		if int(w[1]) == st.N {
			a1 -= gap
		}
		if a1 > a0 {
			s.StrokeArc(st.Centre, st.Radius, a0, a1, stroke)
		}
	}
}

// backboneSpans returns the continuous position intervals to stroke.
func backboneSpans(st view.State) [][2]float64 {
	if st.Entire {
		return [][2]float64{{0, float64(st.N)}}
	}
	var out [][2]float64
	for _, w := range []view.Window{st.One, st.Two} {
		if w.Used() {
			out = append(out, [2]float64{float64(w.Start - 1), float64(w.Stop)})
		}
	}
	return out
}

// textBlock is a line of centred text with its box.
type textBlock struct {
	text string
	size float64
	box  geom.Rect
	kind BoundsKind
}

// titleBlocks lays out the title and length caption about the map centre.
// Both are skipped when the centre is off the canvas or there is no room
// inside the innermost ring.
func titleBlocks(s canvas.Surface, m *scene.Map, st view.State, vo ViewOptions) []textBlock {
	style := m.Style
	if vo.HideTitle || !st.Canvas.Contains(st.Centre) {
		return nil
	}
	var blocks []textBlock
	if style.ShowTitle && m.Title != "" {
		blocks = append(blocks, textBlock{text: m.Title, size: style.TitleFontSize, kind: KindTitle})
	}
	if style.ShowLength {
		size := style.TitleFontSize * 0.75
		blocks = append(blocks, textBlock{text: fmt.Sprintf("%d bp", m.SequenceLength), size: size, kind: KindCaption})
	}
	if len(blocks) == 0 {
		return nil
	}
	total := 0.0
	for i := range blocks {
		w, h := s.MeasureText(blocks[i].text, blocks[i].size)
		blocks[i].box = geom.RectXYWH(0, 0, w, h)
		total += h
	}
	y := st.Centre.Y - total/2
	room := st.InnerRadius()
	out := blocks[:0]
	for _, b := range blocks {
		w, h := b.box.W(), b.box.H()
		b.box = geom.RectXYWH(st.Centre.X-w/2, y, w, h)
		y += h
		if b.box.FarthestDist(st.Centre) > room {
			continue
		}
		out = append(out, b)
	}
	return out
}

func drawText(s canvas.Surface, b textBlock, style scene.Style) {
	s.DrawText(b.text, b.box.Min, b.size, style.TextColor)
}

// legendBox is a laid out legend.
type legendBox struct {
	legend *scene.Legend
	box    geom.Rect
	rows   []legendRow
}

type legendRow struct {
	item   *scene.LegendItem
	swatch geom.Rect
	text   geom.Rect
}

// layoutLegends positions every legend. Legends sharing a position stack
// away from the canvas edge in declaration order.
func layoutLegends(s canvas.Surface, m *scene.Map, canvasRect geom.Rect) []legendBox {
	upper := map[scene.LegendPosition]float64{}
	lower := map[scene.LegendPosition]float64{}
	var out []legendBox
	for i := range m.Legends {
		lg := &m.Legends[i]
		if len(lg.Items) == 0 {
			continue
		}
		size := lg.FontSize
		if size <= 0 {
			size = m.Style.LegendFontSize
		}
		pad := size / 2
		rowH := size * 1.5
		swatchW := 0.0
		textW := 0.0
		for j := range lg.Items {
			if lg.Items[j].DrawSwatch {
				swatchW = size + pad
			}
			w, _ := s.MeasureText(lg.Items[j].Text, size)
			textW = max(textW, w)
		}
		w := 2*pad + swatchW + textW
		h := 2*pad + float64(len(lg.Items))*rowH

		var x float64
		switch lg.Position {
		case scene.UpperLeft, scene.LowerLeft:
			x = canvasRect.Min.X + edgeMargin
		case scene.UpperCenter, scene.LowerCenter:
			x = canvasRect.Center().X - w/2
		default:
			x = canvasRect.Max.X - edgeMargin - w
		}
		var y float64
		switch lg.Position {
		case scene.LowerLeft, scene.LowerRight, scene.LowerCenter:
			y = canvasRect.Max.Y - edgeMargin - lower[lg.Position] - h
			lower[lg.Position] += h + edgeMargin
		default:
			y = canvasRect.Min.Y + edgeMargin + upper[lg.Position]
			upper[lg.Position] += h + edgeMargin
		}

		lb := legendBox{legend: lg, box: geom.RectXYWH(x, y, w, h)}
		for j := range lg.Items {
			it := &lg.Items[j]
			top := y + pad + float64(j)*rowH
			tw, th := s.MeasureText(it.Text, size)
			row := legendRow{
				item: it,
				text: geom.RectXYWH(x+pad+swatchW, top+(rowH-th)/2, tw, th),
			}
			if it.DrawSwatch {
				row.swatch = geom.RectXYWH(x+pad, top+(rowH-size)/2, size, size)
			}
			lb.rows = append(lb.rows, row)
		}
		out = append(out, lb)
	}
	return out
}

func (lb legendBox) fontSize(style scene.Style) float64 {
	if lb.legend.FontSize > 0 {
		return lb.legend.FontSize
	}
	return style.LegendFontSize
}

func drawLegend(s canvas.Surface, lb legendBox, style scene.Style) {
	if lb.legend.Background.A > 0 {
		s.FillRect(lb.box, lb.legend.Background)
	}
	size := lb.fontSize(style)
	for _, row := range lb.rows {
		it := row.item
		linked := it.Hyperlink != "" || it.Mouseover != ""
		if linked {
			s.BeginLink(it.Hyperlink, it.Mouseover)
		}
		if it.DrawSwatch {
			s.FillRect(row.swatch, it.Color)
		}
		c := it.TextColor
		if c.A == 0 {
			c = style.TextColor
		}
		s.DrawText(it.Text, row.text.Min, size, c)
		if linked {
			s.EndLink()
		}
	}
}
