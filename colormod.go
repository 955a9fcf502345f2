package pptxjson

import (
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// modifierScale is the fixed-point denominator of DrawingML color modifier
// values (50000 = 50%).
const modifierScale = 100000

// colorModifier transforms a color by a factor. Modifiers never mutate their
// input.
type colorModifier func(c Color, factor float64) Color

// modifierPipeline lists the modifiers in the order they are applied. The
// order is fixed and independent of the order of the child elements in the
// document.
var modifierPipeline = []struct {
	name  string
	apply colorModifier
}{
	{"alpha", applyAlpha},
	{"hueMod", applyHueMod},
	{"lumMod", applyLumMod},
	{"lumOff", applyLumOff},
	{"satMod", applySatMod},
	{"shade", applyShade},
	{"tint", applyTint},
}

// applyModifiers runs every modifier found under clrNode through the
// pipeline. The second result reports whether any stage ran.
func applyModifiers(c Color, clrNode *Node) (Color, bool) {
	applied := false
	for _, m := range modifierPipeline {
		factor, ok := modifierFactor(clrNode, m.name)
		if !ok {
			continue
		}
		c = m.apply(c, factor)
		applied = true
	}
	return c, applied
}

// modifierFactor reads <a:name val="..."/> under clrNode and scales it to a
// fraction. Absent or unparseable values report false and never read as 0.
func modifierFactor(clrNode *Node, name string) (float64, bool) {
	raw, ok := clrNode.Child(name).LookupAttr("val")
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v / modifierScale, true
}

func (c Color) hsl() (h, s, l float64) {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hsl()
}

// withHSL returns a color with the given HSL components and c's alpha.
func (c Color) withHSL(h, s, l float64) Color {
	r, g, b := colorful.Hsl(h, clamp01(s), clamp01(l)).Clamped().RGB255()
	c.R, c.G, c.B = r, g, b
	return c
}

func applyAlpha(c Color, factor float64) Color {
	return c.WithAlpha(factor)
}

func applyHueMod(c Color, factor float64) Color {
	h, s, l := c.hsl()
	h = math.Mod(h*factor, 360)
	if h < 0 {
		h += 360
	}
	return c.withHSL(h, s, l)
}

func applyLumMod(c Color, factor float64) Color {
	h, s, l := c.hsl()
	return c.withHSL(h, s, math.Min(l*factor, 1))
}

func applyLumOff(c Color, offset float64) Color {
	h, s, l := c.hsl()
	return c.withHSL(h, s, math.Min(l+offset, 1))
}

func applySatMod(c Color, factor float64) Color {
	h, s, l := c.hsl()
	return c.withHSL(h, math.Min(s*factor, 1), l)
}

// applyShade darkens c toward black.
func applyShade(c Color, factor float64) Color {
	h, s, l := c.hsl()
	return c.withHSL(h, s, l*math.Min(factor, 1))
}

// applyTint lightens c toward white.
func applyTint(c Color, factor float64) Color {
	h, s, l := c.hsl()
	f := math.Min(factor, 1)
	return c.withHSL(h, s, l*f+(1-f))
}
