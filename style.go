package pptxjson

import (
	"fmt"
	"math"
	"strings"
)

// Color is an RGB color with an optional alpha channel in [0,1].
// It is a value type; every modifier returns a new Color.
type Color struct {
	R, G, B uint8
	A       float64
	// hasAlpha marks a color whose alpha was set explicitly. Such colors
	// encode as 8 hex digits.
	hasAlpha bool
}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// ParseHexColor parses "RRGGBB", "RRGGBBAA" or "RGB", with or without a
// leading "#". It reports false for anything else.
func ParseHexColor(s string) (Color, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6, 8:
	default:
		return Color{}, false
	}
	for i := 0; i < len(s); i++ {
		if hexVal(s[i]) < 0 {
			return Color{}, false
		}
	}
	c := RGB(parseHexByte(s, 0), parseHexByte(s, 2), parseHexByte(s, 4))
	if len(s) == 8 {
		c = c.WithAlpha(float64(parseHexByte(s, 6)) / 255)
	}
	return c, true
}

// WithAlpha returns c with the alpha channel set (clamped to [0,1]).
func (c Color) WithAlpha(a float64) Color {
	c.A = clamp01(a)
	c.hasAlpha = true
	return c
}

// HasAlpha reports whether the alpha channel was set explicitly.
func (c Color) HasAlpha() bool { return c.hasAlpha }

// Hex encodes c as uppercase RRGGBB, or RRGGBBAA when alpha was set.
func (c Color) Hex() string {
	if c.hasAlpha {
		return fmt.Sprintf("%02X%02X%02X%02X", c.R, c.G, c.B, uint8(math.Round(c.A*255)))
	}
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// String returns the "#"-prefixed hex form.
func (c Color) String() string {
	return "#" + c.Hex()
}

// parseHexByte parses two hex characters at offset into a uint8.
// Returns 0 on any error (out of range, invalid chars).
func parseHexByte(s string, offset int) uint8 {
	if offset+2 > len(s) {
		return 0
	}
	h := hexVal(s[offset])
	l := hexVal(s[offset+1])
	if h < 0 || l < 0 {
		return 0
	}
	return uint8(h<<4 | l)
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return -1
	}
}

// toHexByte rounds a 0-255 channel value and encodes it as two hex digits.
func toHexByte(v float64) string {
	return fmt.Sprintf("%02X", channel(v))
}

// channel rounds and clamps a channel value to 0-255.
func channel(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// withHash prefixes a color string with "#" unless it already has one.
func withHash(s string) string {
	if strings.HasPrefix(s, "#") {
		return s
	}
	return "#" + s
}
