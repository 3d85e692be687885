// Package fonts provides the Go Regular font for text measurement and
// raster drawing.
//
// The font ships with golang.org/x/image, so no files are needed at run
// time. Faces are cached per size.
package fonts

import (
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontFamily is the CSS font-family used by vector output. Viewers without
// the Go fonts fall back to a metric-compatible sans-serif.
const FontFamily = `Go, 'Helvetica Neue', Helvetica, Arial, sans-serif`

var (
	parsed     *opentype.Font
	parseErr   error
	parsedOnce sync.Once

	facesMu sync.Mutex
	faces   = map[float64]font.Face{}
)

func regular() (*opentype.Font, error) {
	parsedOnce.Do(func() {
		parsed, parseErr = opentype.Parse(goregular.TTF)
	})
	return parsed, parseErr
}

// Face returns a shared Go Regular face at size points (72 DPI, so points
// equal pixels). Callers must not draw with it concurrently.
func Face(size float64) (font.Face, error) {
	size = max(size, 1)
	facesMu.Lock()
	defer facesMu.Unlock()
	if f, ok := faces[size]; ok {
		return f, nil
	}
	face, err := NewFace(size)
	if err != nil {
		return nil, err
	}
	faces[size] = face
	return face, nil
}

// NewFace returns an uncached Go Regular face. Faces are not safe for
// concurrent use; rasterisers that draw from several goroutines each take
// their own.
func NewFace(size float64) (font.Face, error) {
	f, err := regular()
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{Size: max(size, 1), DPI: 72, Hinting: font.HintingNone})
}

// Metrics describes the vertical extent of a face.
type Metrics struct {
	Ascent, Descent float64
}

// Height is the line height used for label boxes.
func (m Metrics) Height() float64 { return m.Ascent + m.Descent }

// Measure returns the advance width of text and the face metrics at size.
// When the font cannot be loaded it falls back to an average-glyph estimate.
func Measure(text string, size float64) (float64, Metrics) {
	face, err := Face(size)
	if err != nil {
		return estimate(text, size)
	}
	facesMu.Lock()
	defer facesMu.Unlock()
	adv := font.MeasureString(face, text)
	m := face.Metrics()
	return fixedToFloat(int64(adv)), Metrics{
		Ascent:  fixedToFloat(int64(m.Ascent)),
		Descent: fixedToFloat(int64(m.Descent)),
	}
}

func estimate(text string, size float64) (float64, Metrics) {
	return float64(len([]rune(text))) * size * 0.55, Metrics{Ascent: size * 0.8, Descent: size * 0.2}
}

func fixedToFloat(v int64) float64 { return math.Round(float64(v)/64*100) / 100 }
