package pptxjson

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// colorEncodings are the DrawingML color elements in lookup order. The first
// one present under a fill node wins.
var colorEncodings = []string{"srgbClr", "schemeClr", "scrgbClr", "prstClr", "hslClr", "sysClr"}

// solidFill resolves a color container node (a:solidFill, a:gs, a:fillRef,
// p:bgRef, ...) to a "#"-prefixed color. cm overrides the scheme role map;
// nil selects the slide's implicit chain. phClr substitutes the placeholder
// token. It reports false when no encoding is present or the encoding
// resolves to nothing.
func (s *SlideContext) solidFill(fill *Node, cm ColorMap, phClr string) (string, bool) {
	if fill == nil {
		return "", false
	}
	var clrNode *Node
	for _, enc := range colorEncodings {
		if clrNode = fill.Child(enc); clrNode != nil {
			break
		}
	}
	if clrNode == nil {
		return "", false
	}

	var hex string
	switch clrNode.Name {
	case "srgbClr":
		hex = clrNode.Attr("val")
	case "schemeClr":
		if cm == nil {
			cm = s.implicitColorMap()
		}
		hex = schemeColor(s.theme(), clrNode.Attr("val"), cm, phClr)
	case "scrgbClr":
		hex = percentRGB(clrNode.Attr("r"), clrNode.Attr("g"), clrNode.Attr("b"))
	case "prstClr":
		hex = presetColor(clrNode.Attr("val"))
	case "hslClr":
		hex = hslColor(clrNode.Attr("hue"), clrNode.Attr("sat"), clrNode.Attr("lum"))
	case "sysClr":
		hex = clrNode.Attr("lastClr")
	}
	if hex == "" {
		return "", false
	}

	base, ok := ParseHexColor(hex)
	if !ok {
		// Not something the modifiers can work on; pass it through.
		return withHash(hex), true
	}
	modified, applied := applyModifiers(base, clrNode)
	if !applied {
		return withHash(hex), true
	}
	return modified.String(), true
}

// percentRGB converts scrgbClr channels ("NN%" or "NN") to RRGGBB.
func percentRGB(r, g, b string) string {
	return toHexByte(255*percentValue(r)/100) +
		toHexByte(255*percentValue(g)/100) +
		toHexByte(255*percentValue(b)/100)
}

// percentValue parses "NN%" or "NN". Malformed input reads as 0.
func percentValue(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '%'); i >= 0 {
		raw = raw[:i]
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}

// hslColor converts hslClr attributes to RRGGBB. hue is in 100000ths of a
// degree; sat and lum are percentages.
func hslColor(hue, sat, lum string) string {
	h, err := strconv.ParseFloat(hue, 64)
	if err != nil {
		h = 0
	}
	h = math.Mod(h/modifierScale, 360)
	if h < 0 {
		h += 360
	}
	c := RGB(0, 0, 0).withHSL(h, percentValue(sat)/100, percentValue(lum)/100)
	return c.Hex()
}

// presetColor maps a DrawingML preset color name to RRGGBB. The preset
// vocabulary is the CSS/X11 set with "dk", "lt" and "med" abbreviations and
// camel case, e.g. dkSlateGray, ltGoldenrodYellow, medSeaGreen.
func presetColor(name string) string {
	key := strings.ToLower(name)
	switch {
	case strings.HasPrefix(key, "dk"):
		key = "dark" + key[2:]
	case strings.HasPrefix(key, "lt"):
		key = "light" + key[2:]
	case strings.HasPrefix(key, "med") && !strings.HasPrefix(key, "medium"):
		key = "medium" + key[3:]
	}
	c, ok := colornames.Map[key]
	if !ok {
		return ""
	}
	return RGB(c.R, c.G, c.B).Hex()
}
