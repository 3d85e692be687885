package styles

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
)

// EscapeXML escapes s for use in XML text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// Truncate shortens label to at most maxRunes runes, marking the cut
// with "..".
func Truncate(label string, maxRunes int) string {
	r := []rune(label)
	if maxRunes < 3 || len(r) <= maxRunes {
		return label
	}
	return string(r[:maxRunes-2]) + ".."
}

// FormatBases renders a base count with a unit: 950 bp, 12.5 kbp, 2 Mbp.
func FormatBases(n int) string {
	switch {
	case n >= 1_000_000 && n%1000 == 0:
		return trimFloat(float64(n)/1e6) + " Mbp"
	case n >= 1000 && n%100 == 0:
		return trimFloat(float64(n)/1e3) + " kbp"
	}
	return strconv.Itoa(n) + " bp"
}

func trimFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
