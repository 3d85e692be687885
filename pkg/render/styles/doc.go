// Package styles holds the colour and text helpers shared by the ring
// renderer and the output surfaces.
//
// Colour arithmetic goes through go-colorful so blends happen in CIE Lab,
// which keeps highlight and shadow bands perceptually even across hues.
package styles
