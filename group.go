package pptxjson

// TransformContext is the scale and flip accumulated from the groups that
// enclose an element. Start a shape tree from IdentityTransform; a zero
// scale collapses every descendant on that axis.
type TransformContext struct {
	Ws, Hs       float64
	FlipH, FlipV bool
}

// IdentityTransform is the context at the root of a shape tree.
func IdentityTransform() TransformContext {
	return TransformContext{Ws: 1, Hs: 1}
}

// groupFrame is the geometry of a group's grpSpPr/xfrm in points.
type groupFrame struct {
	x, y, cx, cy float64
	chx, chy     float64
	chcx, chcy   float64
	flipH, flipV bool
	rotate       float64
}

func readGroupFrame(xfrm *Node) groupFrame {
	off, ext := xfrm.Child("off"), xfrm.Child("ext")
	chOff, chExt := xfrm.Child("chOff"), xfrm.Child("chExt")
	return groupFrame{
		x:      emuAttrToPoint(off, "x"),
		y:      emuAttrToPoint(off, "y"),
		cx:     emuAttrToPoint(ext, "cx"),
		cy:     emuAttrToPoint(ext, "cy"),
		chx:    emuAttrToPoint(chOff, "x"),
		chy:    emuAttrToPoint(chOff, "y"),
		chcx:   emuAttrToPoint(chExt, "cx"),
		chcy:   emuAttrToPoint(chExt, "cy"),
		flipH:  xfrm.FlagAttr("flipH"),
		flipV:  xfrm.FlagAttr("flipV"),
		rotate: angleToDegrees(xfrm.Attr("rot")),
	}
}

// localScale maps the group's child coordinate space onto its extent. A
// degenerate child extent leaves that axis unscaled.
func (f groupFrame) localScale() (ws, hs float64) {
	ws, hs = 1, 1
	if f.chcx != 0 {
		ws = f.cx / f.chcx
	}
	if f.chcy != 0 {
		hs = f.cy / f.chcy
	}
	return ws, hs
}

// childContext returns the context the group's children are resolved under.
// Flips compose by XOR.
func (f groupFrame) childContext(ambient TransformContext) TransformContext {
	lws, lhs := f.localScale()
	return TransformContext{
		Ws:    ambient.Ws * lws,
		Hs:    ambient.Hs * lhs,
		FlipH: ambient.FlipH != f.flipH,
		FlipV: ambient.FlipV != f.flipV,
	}
}

// reproject maps a child resolved in the group's child space into the
// space of the group's parent. child is the context the children were
// resolved under.
func (f groupFrame) reproject(el Element, ambient, child TransformContext) Element {
	aws, ahs := ambient.Ws, ambient.Hs
	lws, lhs := f.localScale()
	el.Left = (el.Left - f.chx) * lws * aws
	el.Top = (el.Top - f.chy) * lhs * ahs
	el.Width = el.Width * lws * aws
	el.Height = el.Height * lhs * ahs
	el.IsFlipH = el.IsFlipH != child.FlipH
	el.IsFlipV = el.IsFlipV != child.FlipV
	return el
}

// ResolveGroupSubtree resolves a p:grpSp (or any node with grpSpPr/xfrm)
// and its descendants under the ambient context of its enclosing groups.
// Child coordinates in the result are absolute within the group. It reports
// false for a group without a transform.
func (s *SlideContext) ResolveGroupSubtree(node *Node, ambient TransformContext) (Element, bool) {
	return s.resolveGroup(node, walkState{transform: ambient, scope: ScopeSlide, mode: s.renderMode()})
}

func (s *SlideContext) resolveGroup(node *Node, st walkState) (Element, bool) {
	grpSpPr := node.Child("grpSpPr")
	xfrm := grpSpPr.Child("xfrm")
	if xfrm == nil {
		s.logger().Debug("dropping group without transform", "slide", s.Path, "order", node.DeclaredOrder())
		return Element{}, false
	}
	frame := readGroupFrame(xfrm)
	ambient := st.transform

	inner := st
	inner.transform = frame.childContext(ambient)
	inner.groupFill = s.groupFill(grpSpPr, st)

	children := s.walkTree(node, inner)
	for i := range children {
		children[i] = frame.reproject(children[i], ambient, inner.transform)
	}

	return Element{
		Type:     ElementGroup,
		Name:     node.Path("nvGrpSpPr", "cNvPr").Attr("name"),
		Left:     frame.x,
		Top:      frame.y,
		Width:    frame.cx,
		Height:   frame.cy,
		Rotate:   frame.rotate,
		IsFlipH:  inner.transform.FlipH,
		IsFlipV:  inner.transform.FlipV,
		Order:    node.DeclaredOrder(),
		Elements: children,
	}, true
}

// groupFill resolves the fill a group hands to children that use a:grpFill.
// A group without its own fill passes its parent's fill through.
func (s *SlideContext) groupFill(grpSpPr *Node, st walkState) *Fill {
	kind, fillNode := classifyFill(grpSpPr)
	if f := s.resolveFill(kind, fillNode, st.mode, st.scope, st.groupFill); f != nil {
		return f
	}
	return st.groupFill
}
