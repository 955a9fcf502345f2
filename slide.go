package pptxjson

import (
	"fmt"
	"log/slog"
)

// Slide is the resolved description of one slide.
type Slide struct {
	Fill           Fill      `json:"fill"`
	Elements       []Element `json:"elements"`
	LayoutElements []Element `json:"layoutElements"`
	Note           string    `json:"note"`
}

// SlideContext holds the parts one slide resolves against: the slide, its
// layout, master and theme, their relationship tables, and the shared
// per-conversion state. It is built once per slide and is not shared
// between goroutines.
type SlideContext struct {
	Path string

	conv *converter

	slide  *Node
	layout *Node
	master *Node
	// diagram is the root of the slide's diagram drawing part, if any.
	diagram *Node

	slideRels   relTable
	layoutRels  relTable
	masterRels  relTable
	diagramRels relTable

	themeData *Theme

	layoutPlaceholders placeholderTables
	masterPlaceholders placeholderTables

	notesPath string
}

// walkState is threaded by value through the shape tree walk.
type walkState struct {
	transform TransformContext
	scope     Scope
	mode      RenderMode
	// groupFill is the fill of the nearest enclosing group.
	groupFill *Fill
}

// placeholderTables index the placeholders of a layout or master.
type placeholderTables struct {
	byIdx  map[string]*Node
	byType map[string]*Node
}

// indexPlaceholders builds the lookup tables for the top-level shapes of a
// layout or master. Later shapes win on duplicate keys.
func indexPlaceholders(root *Node) placeholderTables {
	t := placeholderTables{byIdx: map[string]*Node{}, byType: map[string]*Node{}}
	for _, n := range root.Path("cSld", "spTree").Children {
		ph := placeholderOf(n)
		if ph == nil {
			continue
		}
		if idx := ph.Attr("idx"); idx != "" {
			t.byIdx[idx] = n
		}
		if typ := ph.Attr("type"); typ != "" {
			t.byType[typ] = n
		}
	}
	return t
}

// placeholderOf returns the p:ph element of a shape-like node.
func placeholderOf(n *Node) *Node {
	for _, nv := range []string{"nvSpPr", "nvPicPr", "nvGrpSpPr", "nvGraphicFramePr", "nvCxnSpPr"} {
		if ph := n.Path(nv, "nvPr", "ph"); ph != nil {
			return ph
		}
	}
	return nil
}

// placeholderSources returns the layout and master shapes a placeholder
// inherits geometry from. Placeholders are matched by type, or by idx when
// they have no type.
func (s *SlideContext) placeholderSources(phType, phIdx string) (layout, master *Node) {
	switch {
	case phType != "":
		return s.layoutPlaceholders.byType[phType], s.masterPlaceholders.byType[phType]
	case phIdx != "":
		return s.layoutPlaceholders.byIdx[phIdx], s.masterPlaceholders.byIdx[phIdx]
	}
	return nil, nil
}

func (s *SlideContext) theme() *Theme {
	if s == nil {
		return nil
	}
	return s.themeData
}

// implicitColorMap is the color map used when a caller supplies none: the
// slide's override, then the layout's, then the master map.
func (s *SlideContext) implicitColorMap() ColorMap {
	return firstColorMap(overrideColorMap(s.slide), overrideColorMap(s.layout), masterColorMap(s.master))
}

func (s *SlideContext) logger() *slog.Logger {
	if s.conv == nil || s.conv.log == nil {
		return discardLogger()
	}
	return s.conv.log
}

func (s *SlideContext) renderMode() RenderMode {
	if s.conv == nil {
		return RenderHTML
	}
	return s.conv.opts.RenderMode
}

// elementFailed records an archive failure that degraded one element.
func (s *SlideContext) elementFailed(scope Scope, what string, err error) {
	s.logger().Warn("element degraded", "slide", s.Path, "scope", string(scope), "element", what, "error", err)
	if s.conv != nil {
		s.conv.opts.Metrics.recordElementFailure(scope)
	}
}

// walkTree resolves the element children of a shape tree or group.
func (s *SlideContext) walkTree(parent *Node, st walkState) []Element {
	var out []Element
	for _, n := range parent.Children {
		if el, ok := s.resolveNode(n, st); ok {
			out = append(out, el)
		}
	}
	return out
}

// resolveNode dispatches one shape tree child by element name. Non-visual
// properties and unknown elements report false.
func (s *SlideContext) resolveNode(n *Node, st walkState) (Element, bool) {
	switch n.Name {
	case "sp":
		return s.shapeElement(n, st), true
	case "cxnSp":
		return s.connectorElement(n, st), true
	case "pic":
		return s.pictureElement(n, st), true
	case "graphicFrame":
		return s.graphicFrameElement(n, st)
	case "grpSp":
		return s.resolveGroup(n, st)
	case "AlternateContent":
		return s.alternateContent(n, st)
	}
	return Element{}, false
}

// alternateContent resolves mc:AlternateContent from its fallback branch.
// A fallback with a group transform becomes a group; otherwise its first
// resolvable child stands in for the whole block.
func (s *SlideContext) alternateContent(n *Node, st walkState) (Element, bool) {
	fallback := n.Child("Fallback")
	var el Element
	ok := false
	if fallback.Path("grpSpPr", "xfrm") != nil {
		el, ok = s.resolveGroup(fallback, st)
	} else {
		for _, c := range fallback.Children {
			if el, ok = s.resolveNode(c, st); ok {
				break
			}
		}
	}
	if ok {
		el.Order = n.DeclaredOrder()
	}
	return el, ok
}

// layoutElements resolves the non-placeholder shapes of the layout and,
// unless the layout hides them, of the master.
func (s *SlideContext) layoutElements(mode RenderMode) []Element {
	var out []Element
	collect := func(root *Node, scope Scope) {
		st := walkState{transform: IdentityTransform(), scope: scope, mode: mode}
		for _, n := range root.Path("cSld", "spTree").Children {
			if placeholderOf(n) != nil {
				continue
			}
			if el, ok := s.resolveNode(n, st); ok {
				out = append(out, el)
			}
		}
	}
	collect(s.layout, ScopeLayoutBg)
	if s.layout.Attr("showMasterSp") != "0" {
		collect(s.master, ScopeMasterBg)
	}
	return out
}

// emptySlide stands in for a slide whose part cannot be read.
func emptySlide() Slide {
	return Slide{
		Fill:           Fill{Type: FillTypeColor, Color: defaultBackgroundColor},
		Elements:       []Element{},
		LayoutElements: []Element{},
	}
}

// resolve builds the slide record.
func (s *SlideContext) resolve() *Slide {
	mode := s.renderMode()
	out := &Slide{
		Fill:     s.ResolveSlideBackground(),
		Elements: []Element{},
	}
	if s.conv.opts.LayoutElements {
		out.LayoutElements = s.layoutElements(mode)
	}
	if out.LayoutElements == nil {
		out.LayoutElements = []Element{}
	}

	st := walkState{transform: IdentityTransform(), scope: ScopeSlide, mode: mode}
	if els := s.walkTree(s.slide.Path("cSld", "spTree"), st); els != nil {
		out.Elements = els
	}

	if s.notesPath != "" {
		note, err := s.conv.readNotes(s.notesPath)
		if err != nil {
			s.elementFailed(ScopeSlide, "notes", err)
		}
		out.Note = note
	}
	return out
}

// loadSlideContext reads a slide part and everything it resolves against.
// A missing or unreadable slide part is an error the caller degrades to an
// empty slide; a missing layout, master,
// theme, notes or diagram part leaves the corresponding field empty.
func (c *converter) loadSlideContext(slidePath string) (*SlideContext, error) {
	a := c.archive
	slide, err := a.readPart(slidePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read slide %s: %w", slidePath, err)
	}
	slideRels, slideOrder, err := a.readRelationships(slidePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read slide relationships %s: %w", slidePath, err)
	}

	s := &SlideContext{Path: slidePath, conv: c, slide: slide, slideRels: slideRels}
	s.notesPath = slideRels.firstOfType(relTypeNotesSlide, slideOrder)

	var layoutOrder, masterOrder []string
	if layoutPath := slideRels.firstOfType(relTypeSlideLayout, slideOrder); layoutPath != "" {
		s.layout, s.layoutRels, layoutOrder = c.optionalPart(layoutPath)
	}
	s.layoutPlaceholders = indexPlaceholders(s.layout)

	if masterPath := s.layoutRels.firstOfType(relTypeSlideMaster, layoutOrder); masterPath != "" {
		s.master, s.masterRels, masterOrder = c.optionalPart(masterPath)
	}
	s.masterPlaceholders = indexPlaceholders(s.master)

	themePath := s.masterRels.firstOfType(relTypeTheme, masterOrder)
	if themePath == "" {
		themePath = c.presentationTheme
	}
	if themePath != "" {
		s.themeData = c.theme(themePath)
	}

	if diagramPath := slideRels.firstOfType(relTypeDiagramDrawing, slideOrder); diagramPath != "" {
		s.diagram, s.diagramRels, _ = c.optionalPart(diagramPath)
	}
	return s, nil
}

// optionalPart reads a part and its relationships, logging and returning
// empty values on failure.
func (c *converter) optionalPart(partPath string) (*Node, relTable, []string) {
	root, err := c.archive.readPart(partPath)
	if err != nil {
		c.partFailed(partPath, err)
		return nil, nil, nil
	}
	rels, order, err := c.archive.readRelationships(partPath)
	if err != nil {
		c.partFailed(partPath, err)
	}
	return root, rels, order
}

func (c *converter) partFailed(partPath string, err error) {
	if IsNotFound(err) {
		c.log.Debug("part missing", "part", partPath)
		return
	}
	c.log.Warn("part unreadable", "part", partPath, "error", err)
}
