package pptxjson

// placeholderColor is the scheme token that stands for the color supplied by
// the referencing style (p:bgRef, a:fillRef, ...).
const placeholderColor = "phClr"

// ColorMap remaps the abstract scheme roles (bg1, tx1, accent1, ...) to theme
// slots. It is read from p:clrMap on a master or from
// p:clrMapOvr/a:overrideClrMapping on a slide or layout.
type ColorMap map[string]string

// schemeRoles are the twelve roles a ColorMap may remap.
var schemeRoles = []string{
	"bg1", "tx1", "bg2", "tx2",
	"accent1", "accent2", "accent3", "accent4", "accent5", "accent6",
	"hlink", "folHlink",
}

// defaultColorMap applies when no map exists anywhere in the chain.
var defaultColorMap = ColorMap{
	"tx1": "dk1",
	"tx2": "dk2",
	"bg1": "lt1",
	"bg2": "lt2",
}

// colorMapFromNode reads the role attributes of a clrMap-like node.
// A nil node yields a nil map.
func colorMapFromNode(n *Node) ColorMap {
	if n == nil {
		return nil
	}
	m := make(ColorMap, len(schemeRoles))
	for _, role := range schemeRoles {
		if v := n.Attr(role); v != "" {
			m[role] = v
		}
	}
	return m
}

// overrideColorMap reads the color map override of a slide or layout root.
// It returns nil when the part inherits its master's mapping.
func overrideColorMap(root *Node) ColorMap {
	return colorMapFromNode(root.Path("clrMapOvr", "overrideClrMapping"))
}

// masterColorMap reads p:clrMap from a master root.
func masterColorMap(root *Node) ColorMap {
	return colorMapFromNode(root.Child("clrMap"))
}

// firstColorMap returns the first non-nil map, or defaultColorMap.
func firstColorMap(maps ...ColorMap) ColorMap {
	for _, m := range maps {
		if m != nil {
			return m
		}
	}
	return defaultColorMap
}

// remap returns the theme slot a scheme token refers to under m.
func (m ColorMap) remap(token string) string {
	if v, ok := m[token]; ok {
		return v
	}
	if v, ok := defaultColorMap[token]; ok {
		return v
	}
	return token
}

// schemeColor resolves a scheme token against the theme. phClr returns the
// placeholder verbatim when one is supplied. The result is the raw slot value
// (no "#"), or "" when the slot is absent.
func schemeColor(theme *Theme, token string, cm ColorMap, phClr string) string {
	if token == placeholderColor && phClr != "" {
		return phClr
	}
	if cm == nil {
		cm = defaultColorMap
	}
	return theme.slot(cm.remap(token))
}
