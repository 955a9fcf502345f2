package pptxjson

import (
	"path"
	"strings"
)

// ElementType is the kind of a resolved element record.
type ElementType string

const (
	ElementText    ElementType = "text"
	ElementShape   ElementType = "shape"
	ElementImage   ElementType = "image"
	ElementVideo   ElementType = "video"
	ElementAudio   ElementType = "audio"
	ElementGroup   ElementType = "group"
	ElementTable   ElementType = "table"
	ElementChart   ElementType = "chart"
	ElementDiagram ElementType = "diagram"
)

// customShapeType is reported as ShapType for a:custGeom shapes.
const customShapeType = "custom"

// Element is one resolved element of a slide. Positions and sizes are in
// points; inside a group they are relative to the group's top-left corner
// and already scaled by every enclosing group.
type Element struct {
	Type        ElementType `json:"type"`
	Name        string      `json:"name,omitempty"`
	Left        float64     `json:"left"`
	Top         float64     `json:"top"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	Rotate      float64     `json:"rotate"`
	IsFlipH     bool        `json:"isFlipH"`
	IsFlipV     bool        `json:"isFlipV"`
	Order       int         `json:"order"`
	Fill        *Fill       `json:"fill,omitempty"`
	ShapType    string      `json:"shapType,omitempty"`
	Text        string      `json:"text,omitempty"`
	IsVertical  bool        `json:"isVertical,omitempty"`
	Src         string      `json:"src,omitempty"`
	ImageWidth  int         `json:"imageWidth,omitempty"`
	ImageHeight int         `json:"imageHeight,omitempty"`
	Elements    []Element   `json:"elements,omitempty"`
}

// rect is a position and size in points.
type rect struct {
	left, top, width, height float64
}

// xfrmRect reads a:off and a:ext of an xfrm node.
func xfrmRect(xfrm *Node) rect {
	off, ext := xfrm.Child("off"), xfrm.Child("ext")
	return rect{
		left:   emuAttrToPoint(off, "x"),
		top:    emuAttrToPoint(off, "y"),
		width:  emuAttrToPoint(ext, "cx"),
		height: emuAttrToPoint(ext, "cy"),
	}
}

// inheritedRect reads position and size from the first xfrm that carries
// them: the shape's own, then the layout placeholder's, then the master's.
func inheritedRect(xfrms ...*Node) rect {
	var r rect
	for _, x := range xfrms {
		if off := x.Child("off"); off != nil {
			r.left, r.top = emuAttrToPoint(off, "x"), emuAttrToPoint(off, "y")
			break
		}
	}
	for _, x := range xfrms {
		if ext := x.Child("ext"); ext != nil {
			r.width, r.height = emuAttrToPoint(ext, "cx"), emuAttrToPoint(ext, "cy")
			break
		}
	}
	return r
}

// shapeElement resolves p:sp (and dsp:sp inside diagram drawings).
func (s *SlideContext) shapeElement(node *Node, st walkState) Element {
	ph := node.Path("nvSpPr", "nvPr", "ph")
	phType, phIdx := ph.Attr("type"), ph.Attr("idx")
	layoutSp, masterSp := s.placeholderSources(phType, phIdx)

	kind := phType
	if kind == "" && node.Path("nvSpPr", "cNvSpPr").Attr("txBox") == "1" {
		kind = "text"
	}
	if kind == "" {
		kind = layoutSp.Path("nvSpPr", "nvPr", "ph").Attr("type")
	}
	if kind == "" {
		kind = masterSp.Path("nvSpPr", "nvPr", "ph").Attr("type")
	}
	if kind == "" {
		if st.scope == ScopeDiagramBg {
			kind = "diagram"
		} else {
			kind = "obj"
		}
	}

	name := node.Path("nvSpPr", "cNvPr").Attr("name")
	return s.genShape(node, layoutSp, masterSp, name, kind, st)
}

// connectorElement resolves p:cxnSp.
func (s *SlideContext) connectorElement(node *Node, st walkState) Element {
	name := node.Path("nvCxnSpPr", "cNvPr").Attr("name")
	kind := node.Path("nvCxnSpPr", "nvPr", "ph").Attr("type")
	return s.genShape(node, nil, nil, name, kind, st)
}

// genShape builds a shape or text record. kind is the placeholder type, or
// "text"/"obj"/"diagram" for non-placeholders.
func (s *SlideContext) genShape(node, layoutSp, masterSp *Node, name, kind string, st walkState) Element {
	xfrm := node.Path("spPr", "xfrm")
	r := inheritedRect(xfrm, layoutSp.Path("spPr", "xfrm"), masterSp.Path("spPr", "xfrm"))

	el := Element{
		Name:    name,
		Left:    r.left,
		Top:     r.top,
		Width:   r.width,
		Height:  r.height,
		Rotate:  angleToDegrees(xfrm.Attr("rot")),
		IsFlipH: xfrm.FlagAttr("flipH"),
		IsFlipV: xfrm.FlagAttr("flipV"),
		Order:   node.DeclaredOrder(),
		Fill:    s.resolveShapeFill(node, st.mode, st.scope, st.groupFill),
		Text:    plainText(node.Child("txBody")),
	}

	prstGeom := node.Path("spPr", "prstGeom").Attr("prst")
	switch {
	case node.Path("spPr", "custGeom") != nil && kind != "diagram":
		el.Type = ElementShape
		el.ShapType = customShapeType
	case prstGeom != "" && (kind == "obj" || kind == ""):
		el.Type = ElementShape
		el.ShapType = prstGeom
	default:
		el.Type = ElementText
		el.IsVertical = node.Path("txBody", "bodyPr").Attr("vert") == "eaVert"
		if txXfrm := node.Child("txXfrm"); txXfrm != nil {
			el.Rotate = 0
			if rot := txXfrm.Attr("rot"); rot != "" {
				el.Rotate = angleToDegrees(rot) + 90
			}
		}
	}
	return el
}

// pictureElement resolves p:pic as an image, video or audio record.
func (s *SlideContext) pictureElement(node *Node, st walkState) Element {
	xfrm := node.Path("spPr", "xfrm")
	r := xfrmRect(xfrm)
	el := Element{
		Type:    ElementImage,
		Name:    node.Path("nvPicPr", "cNvPr").Attr("name"),
		Left:    r.left,
		Top:     r.top,
		Width:   r.width,
		Height:  r.height,
		Rotate:  angleToDegrees(xfrm.Attr("rot")),
		IsFlipH: xfrm.FlagAttr("flipH"),
		IsFlipV: xfrm.FlagAttr("flipV"),
		Order:   node.DeclaredOrder(),
	}

	scope := pictureScope(st.scope)
	nvPr := node.Path("nvPicPr", "nvPr")
	switch {
	case nvPr.Has("videoFile"):
		el.Type = ElementVideo
		el.Src = s.mediaSource(nvPr.Child("videoFile").Attr("r:link"), scope, "mp4", "webm", "ogg")
		return el
	case nvPr.Has("audioFile"):
		el.Type = ElementAudio
		el.Src = s.mediaSource(nvPr.Child("audioFile").Attr("r:link"), scope, "mp3", "wav", "ogg")
		return el
	}

	m, ok, err := s.loadMedia(node.Path("blipFill", "blip").Attr("r:embed"), scope)
	if err != nil {
		s.elementFailed(scope, "image", err)
	}
	if ok {
		el.Src = m.URI
		el.ImageWidth, el.ImageHeight = m.Width, m.Height
	}
	return el
}

// pictureScope maps the walk scope to the relationship table pictures use.
// Layout and master pictures resolve against their own parts; everything
// else, diagrams included, resolves against the slide.
func pictureScope(scope Scope) Scope {
	switch scope {
	case ScopeLayoutBg, ScopeMasterBg:
		return scope
	default:
		return ScopeSlide
	}
}

// mediaSource returns the source of a linked or embedded media file.
// External links are returned verbatim; embedded files with one of the
// allowed extensions are inlined.
func (s *SlideContext) mediaSource(rid string, scope Scope, allowed ...string) string {
	rel, ok := s.relsFor(scope)[rid]
	if !ok || rel.Target == "" {
		return ""
	}
	if rel.External || isMediaLink(rel.Target) {
		return rel.Target
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(rel.Target), "."))
	for _, a := range allowed {
		if ext != a {
			continue
		}
		m, err := s.conv.media.load(s.conv.archive, rel.Target)
		if err != nil {
			s.elementFailed(scope, "media", err)
			return ""
		}
		return m.URI
	}
	return ""
}

func isMediaLink(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// graphicData URIs of p:graphicFrame content.
const (
	graphicTable   = "http://schemas.openxmlformats.org/drawingml/2006/table"
	graphicChart   = "http://schemas.openxmlformats.org/drawingml/2006/chart"
	graphicDiagram = "http://schemas.openxmlformats.org/drawingml/2006/diagram"
	graphicOLE     = "http://schemas.openxmlformats.org/presentationml/2006/ole"
)

// graphicFrameElement resolves p:graphicFrame. Tables and charts are
// reported as positioned frames; diagrams carry the shapes of their drawing.
func (s *SlideContext) graphicFrameElement(node *Node, st walkState) (Element, bool) {
	data := node.Path("graphic", "graphicData")
	r := xfrmRect(node.Child("xfrm"))
	el := Element{
		Name:   node.Path("nvGraphicFramePr", "cNvPr").Attr("name"),
		Left:   r.left,
		Top:    r.top,
		Width:  r.width,
		Height: r.height,
		Order:  node.DeclaredOrder(),
	}

	switch data.Attr("uri") {
	case graphicTable:
		el.Type = ElementTable
	case graphicChart:
		el.Type = ElementChart
	case graphicDiagram:
		el.Type = ElementDiagram
		el.Elements = s.diagramElements(data.Child("relIds"), st)
	case graphicOLE:
		ole := data.Path("AlternateContent", "Fallback", "oleObj")
		if ole == nil {
			ole = data.Child("oleObj")
		}
		if ole == nil {
			return Element{}, false
		}
		return s.resolveGroup(ole, st)
	default:
		return Element{}, false
	}
	return el, true
}

// diagramElements resolves the shapes of a diagram frame's drawing.
func (s *SlideContext) diagramElements(relIds *Node, st walkState) []Element {
	drawing, rels := s.diagramDrawing(relIds)
	shapes := drawing.Path("spTree").ChildrenNamed("sp")
	if len(shapes) == 0 {
		return nil
	}
	saved := s.diagramRels
	s.diagramRels = rels
	defer func() { s.diagramRels = saved }()

	st.scope = ScopeDiagramBg
	out := make([]Element, 0, len(shapes))
	for _, sp := range shapes {
		out = append(out, s.shapeElement(sp, st))
	}
	return out
}

// diagramDrawing finds the drawing part of one diagram frame. The frame's
// data part (dgm:relIds/@r:dm) names the slide relationship of its drawing
// in dsp:dataModelExt/@relId. Frames without that link use the slide's
// first diagram drawing.
func (s *SlideContext) diagramDrawing(relIds *Node) (*Node, relTable) {
	dataPath := s.slideRels.target(relIds.Attr("r:dm"))
	if dataPath == "" || s.conv == nil {
		return s.diagram, s.diagramRels
	}
	dataModel, err := s.conv.archive.readPart(dataPath)
	if err != nil {
		s.conv.partFailed(dataPath, err)
		return s.diagram, s.diagramRels
	}
	var relID string
	for _, ext := range dataModel.Path("extLst").ChildrenNamed("ext") {
		if id := ext.Child("dataModelExt").Attr("relId"); id != "" {
			relID = id
			break
		}
	}
	rel, ok := s.slideRels[relID]
	if !ok || rel.Type != relTypeDiagramDrawing || rel.External {
		return s.diagram, s.diagramRels
	}
	drawing, rels, _ := s.conv.optionalPart(rel.Target)
	return drawing, rels
}

// plainText flattens a text body: runs and fields are concatenated, line
// breaks become "\n", and paragraphs are joined by "\n".
func plainText(txBody *Node) string {
	if txBody == nil {
		return ""
	}
	var paras []string
	for _, p := range txBody.ChildrenNamed("p") {
		var sb strings.Builder
		for _, c := range p.Children {
			switch c.Name {
			case "r", "fld":
				sb.WriteString(c.Child("t").Text)
			case "br":
				sb.WriteByte('\n')
			}
		}
		paras = append(paras, sb.String())
	}
	text := strings.Join(paras, "\n")
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return text
}
