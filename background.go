package pptxjson

// defaultBackgroundColor is used when no level of the chain defines a
// usable background.
const defaultBackgroundColor = "#fff"

// bgStyleIndexBase is the offset of background style references into the
// theme's bgFillStyleLst; idx 1001 is the first entry. Smaller indices refer
// to fillStyleLst and carry no background.
const bgStyleIndexBase = 1000

func defaultBackground() Fill {
	return Fill{Type: FillTypeColor, Color: defaultBackgroundColor}
}

// backgroundLevel is one document of the background chain together with
// the color map that applies at that level.
type backgroundLevel struct {
	root     *Node
	colorMap ColorMap
	scope    Scope
}

// backgroundChain returns slide, layout and master in lookup order. Each
// level derives its own color map: a slide uses its override, then the
// layout's, then the master map; a layout its override, then the master map.
func (s *SlideContext) backgroundChain() []backgroundLevel {
	master := masterColorMap(s.master)
	layout := overrideColorMap(s.layout)
	return []backgroundLevel{
		{root: s.slide, colorMap: firstColorMap(overrideColorMap(s.slide), layout, master), scope: ScopeSlideBg},
		{root: s.layout, colorMap: firstColorMap(layout, master), scope: ScopeLayoutBg},
		{root: s.master, colorMap: firstColorMap(master), scope: ScopeMasterBg},
	}
}

// ResolveSlideBackground walks slide, layout and master for the first
// p:bg/p:bgPr or p:bg/p:bgRef and resolves it. It never fails; anything
// unresolvable yields a white color background.
func (s *SlideContext) ResolveSlideBackground() Fill {
	for _, level := range s.backgroundChain() {
		bg := level.root.Path("cSld", "bg")
		if bgPr := bg.Child("bgPr"); bgPr != nil {
			kind, fillNode := classifyFill(bgPr)
			return s.backgroundFill(kind, fillNode, level.colorMap, "", level.scope)
		}
		if bgRef := bg.Child("bgRef"); bgRef != nil {
			return s.backgroundFromReference(bgRef, level.colorMap)
		}
	}
	return defaultBackground()
}

// backgroundFromReference resolves p:bgRef through the theme's ordered
// background fill list. The reference's own color becomes the placeholder
// for phClr tokens in the selected entry.
func (s *SlideContext) backgroundFromReference(bgRef *Node, cm ColorMap) Fill {
	phClr, _ := s.solidFill(bgRef, cm, "")
	idx, ok := bgRef.IntAttr("idx")
	if !ok || idx <= bgStyleIndexBase {
		return defaultBackground()
	}
	fills := s.theme().backgroundFills()
	i := int(idx - bgStyleIndexBase - 1)
	if i < 0 || i >= len(fills) {
		s.logger().Debug("background style index out of range", "slide", s.Path, "idx", idx, "entries", len(fills))
		return defaultBackground()
	}
	entry := fills[i]
	return s.backgroundFill(fillKindOf(entry), entry, cm, phClr, ScopeThemeBg)
}

// backgroundFill resolves one background fill element. Kinds that have no
// background rendering (none, pattern, group) keep the default.
func (s *SlideContext) backgroundFill(kind FillKind, fillNode *Node, cm ColorMap, phClr string, scope Scope) Fill {
	switch kind {
	case FillSolid:
		if c, ok := s.solidFill(fillNode, cm, phClr); ok {
			return Fill{Type: FillTypeColor, Color: c}
		}
	case FillGradient:
		return Fill{Type: FillTypeGradient, Gradient: s.gradientFill(fillNode, cm, phClr)}
	case FillPicture:
		pic, err := s.pictureFill(fillNode, scope)
		if err != nil {
			s.elementFailed(scope, "background picture", err)
		}
		if pic != nil {
			return Fill{Type: FillTypeImage, Image: pic}
		}
	}
	return defaultBackground()
}
