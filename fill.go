package pptxjson

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FillKind classifies the fill element of a shape or background properties
// node.
type FillKind int

const (
	// FillUnspecified means no fill element is present; the fill is inherited.
	FillUnspecified FillKind = iota
	FillNone
	FillSolid
	FillGradient
	FillPattern
	FillPicture
	FillGroup
)

var fillKindNames = map[FillKind]string{
	FillUnspecified: "unspecified",
	FillNone:        "noFill",
	FillSolid:       "solidFill",
	FillGradient:    "gradFill",
	FillPattern:     "pattFill",
	FillPicture:     "blipFill",
	FillGroup:       "grpFill",
}

func (k FillKind) String() string {
	if s, ok := fillKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("FillKind(%d)", int(k))
}

// fillPrecedence is the lookup order used by classifyFill. When a node
// carries more than one fill element the first kind in this list wins.
var fillPrecedence = []FillKind{FillNone, FillSolid, FillGradient, FillPattern, FillPicture, FillGroup}

// classifyFill returns the fill kind of props and the element that carries
// it.
func classifyFill(props *Node) (FillKind, *Node) {
	for _, k := range fillPrecedence {
		if n := props.Child(fillKindNames[k]); n != nil {
			return k, n
		}
	}
	return FillUnspecified, nil
}

// fillKindOf classifies a bare fill element such as an entry of the theme's
// bgFillStyleLst.
func fillKindOf(n *Node) FillKind {
	if n == nil {
		return FillUnspecified
	}
	for _, k := range fillPrecedence {
		if fillKindNames[k] == n.Name {
			return k
		}
	}
	return FillUnspecified
}

// RenderMode selects how an explicit "no fill" is reported.
type RenderMode int

const (
	// RenderHTML reports no fill as an empty value.
	RenderHTML RenderMode = iota
	// RenderSVG reports no fill as "none".
	RenderSVG
)

func (m RenderMode) String() string {
	if m == RenderSVG {
		return "svg"
	}
	return "html"
}

// ParseRenderMode parses "html" or "svg".
func ParseRenderMode(s string) (RenderMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html":
		return RenderHTML, nil
	case "svg":
		return RenderSVG, nil
	default:
		return RenderHTML, fmt.Errorf("unknown render mode %q", s)
	}
}

// FillType is the type tag of a resolved fill.
type FillType string

const (
	FillTypeColor    FillType = "color"
	FillTypeGradient FillType = "gradient"
	FillTypeImage    FillType = "image"
	FillTypeNone     FillType = "none"
)

// Fill is a resolved paint. Exactly one payload matches Type: Color for
// color and none, Gradient for gradient, Image for image.
type Fill struct {
	Type     FillType
	Color    string
	Gradient *Gradient
	Image    *PictureFill
}

// Value returns the payload selected by Type.
func (f Fill) Value() any {
	switch f.Type {
	case FillTypeGradient:
		return f.Gradient
	case FillTypeImage:
		return f.Image
	default:
		return f.Color
	}
}

// MarshalJSON encodes the fill as {"type": ..., "value": ...}.
func (f Fill) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  FillType `json:"type"`
		Value any      `json:"value"`
	}{f.Type, f.Value()})
}

func colorFill(c string) *Fill {
	return &Fill{Type: FillTypeColor, Color: c}
}

func noFill(mode RenderMode) *Fill {
	f := &Fill{Type: FillTypeNone}
	if mode == RenderSVG {
		f.Color = "none"
	}
	return f
}

// ResolveShapeFill resolves the fill of a shape-like node from its p:spPr,
// falling back to p:style/a:fillRef when the node specifies no fill or the
// specified fill resolves to nothing. Picture fills resolve media in scope.
// A nil result means the shape has no resolvable paint.
func (s *SlideContext) ResolveShapeFill(node *Node, mode RenderMode, scope Scope) *Fill {
	return s.resolveShapeFill(node, mode, scope, nil)
}

// resolveShapeFill is ResolveShapeFill with the fill of the nearest
// enclosing group, used by a:grpFill.
func (s *SlideContext) resolveShapeFill(node *Node, mode RenderMode, scope Scope, groupFill *Fill) *Fill {
	kind, fillNode := classifyFill(node.Child("spPr"))
	if f := s.resolveFill(kind, fillNode, mode, scope, groupFill); f != nil {
		return f
	}
	if c, ok := s.solidFill(node.Path("style", "fillRef"), nil, ""); ok {
		return colorFill(c)
	}
	return nil
}

// resolveFill resolves one classified fill element. It returns nil when the
// kind is unspecified or the fill resolves to nothing.
func (s *SlideContext) resolveFill(kind FillKind, fillNode *Node, mode RenderMode, scope Scope, groupFill *Fill) *Fill {
	switch kind {
	case FillNone:
		return noFill(mode)
	case FillSolid:
		if c, ok := s.solidFill(fillNode, nil, ""); ok {
			return colorFill(c)
		}
	case FillGradient:
		return &Fill{Type: FillTypeGradient, Gradient: s.gradientFill(fillNode, nil, "")}
	case FillPattern:
		if c, ok := s.solidFill(fillNode.Child("fgClr"), nil, ""); ok {
			return colorFill(c)
		}
	case FillPicture:
		pic, err := s.pictureFill(fillNode, scope)
		if err != nil {
			s.elementFailed(scope, "picture fill", err)
		}
		if pic != nil {
			return &Fill{Type: FillTypeImage, Image: pic}
		}
	case FillGroup:
		return groupFill
	}
	return nil
}
