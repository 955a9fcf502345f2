package pptxjson

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const nsDecl = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" ` +
	`xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006"`

const (
	relImage = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relVideo = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/video"
)

// testPackage builds an in-memory presentation package.
type testPackage struct {
	files map[string][]byte
}

func newTestPackage() *testPackage {
	return &testPackage{files: map[string][]byte{}}
}

func (p *testPackage) add(name, content string) *testPackage {
	p.files[name] = []byte(content)
	return p
}

func (p *testPackage) addBinary(name string, data []byte) *testPackage {
	p.files[name] = data
	return p
}

func (p *testPackage) bytes(t *testing.T) []byte {
	t.Helper()
	names := make([]string, 0, len(p.files))
	for name := range p.files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(p.files[name])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func (p *testPackage) convert(t *testing.T, opts *Options) *Presentation {
	t.Helper()
	data := p.bytes(t)
	pres, err := Convert(context.Background(), bytes.NewReader(data), int64(len(data)), opts)
	require.NoError(t, err)
	return pres
}

func (p *testPackage) archive(t *testing.T) *archive {
	t.Helper()
	data := p.bytes(t)
	a, err := openArchive(bytes.NewReader(data), int64(len(data)), 0)
	require.NoError(t, err)
	return a
}

// rel is one relationship of a test part.
type rel struct {
	id, typ, target string
	external        bool
}

func relsXML(rels ...rel) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, r := range rels {
		mode := ""
		if r.external {
			mode = ` TargetMode="External"`
		}
		fmt.Fprintf(&sb, `<Relationship Id="%s" Type="%s" Target="%s"%s/>`, r.id, r.typ, r.target, mode)
	}
	sb.WriteString(`</Relationships>`)
	return sb.String()
}

// partXML wraps body in a root element carrying the usual namespaces.
func partXML(root, attrs, body string) string {
	if attrs != "" {
		attrs = " " + attrs
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?><%s %s%s>%s</%s>`, root, nsDecl, attrs, body, root)
}

// slideBody builds cSld content with an optional background and a shape tree.
func slideBody(bg, tree string) string {
	return `<p:cSld>` + bg + `<p:spTree><p:nvGrpSpPr/><p:grpSpPr/>` + tree + `</p:spTree></p:cSld>`
}

func themeXML(bgFillStyles string) string {
	return partXML("a:theme", `name="Office Theme"`, `<a:themeElements>`+
		`<a:clrScheme name="Office">`+
		`<a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1>`+
		`<a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1>`+
		`<a:dk2><a:srgbClr val="1F497D"/></a:dk2>`+
		`<a:lt2><a:srgbClr val="EEECE1"/></a:lt2>`+
		`<a:accent1><a:srgbClr val="4F81BD"/></a:accent1>`+
		`<a:accent2><a:srgbClr val="C0504D"/></a:accent2>`+
		`<a:accent3><a:srgbClr val="9BBB59"/></a:accent3>`+
		`<a:accent4><a:srgbClr val="8064A2"/></a:accent4>`+
		`<a:accent5><a:srgbClr val="4BACC6"/></a:accent5>`+
		`<a:accent6><a:srgbClr val="F79646"/></a:accent6>`+
		`<a:hlink><a:srgbClr val="0000FF"/></a:hlink>`+
		`<a:folHlink><a:srgbClr val="800080"/></a:folHlink>`+
		`</a:clrScheme>`+
		`<a:fmtScheme name="Office"><a:bgFillStyleLst>`+bgFillStyles+`</a:bgFillStyleLst></a:fmtScheme>`+
		`</a:themeElements>`)
}

const defaultMasterClrMap = `<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" ` +
	`accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>`

// deck is the usual package shape: N slides sharing one layout, master and
// theme. The fields are the bodies of the respective parts and may be
// replaced before build.
type deck struct {
	slides     []string
	slideRels  [][]rel
	layout     string
	layoutRels []rel
	master     string
	masterRels []rel
	bgStyles   string
	notes      map[int]string
	media      map[string][]byte
}

func newDeck(slides ...string) *deck {
	d := &deck{
		slides:    slides,
		slideRels: make([][]rel, len(slides)),
		layout:    slideBody("", ""),
		master:    slideBody("", "") + defaultMasterClrMap,
		notes:     map[int]string{},
		media:     map[string][]byte{},
	}
	return d
}

func (d *deck) build() *testPackage {
	p := newTestPackage()

	var sldIDs strings.Builder
	presRels := []rel{
		{id: "rIdMaster", typ: relTypeSlideMaster, target: "slideMasters/slideMaster1.xml"},
		{id: "rIdTheme", typ: relTypeTheme, target: "theme/theme1.xml"},
	}
	for i, body := range d.slides {
		n := i + 1
		rid := fmt.Sprintf("rIdSlide%d", n)
		fmt.Fprintf(&sldIDs, `<p:sldId id="%d" r:id="%s"/>`, 255+n, rid)
		presRels = append(presRels, rel{id: rid, typ: relTypeSlide, target: fmt.Sprintf("slides/slide%d.xml", n)})

		slideRels := append([]rel{{id: "rIdLayout", typ: relTypeSlideLayout, target: "../slideLayouts/slideLayout1.xml"}}, d.slideRels[i]...)
		if note, ok := d.notes[i]; ok {
			notesPath := fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", n)
			slideRels = append(slideRels, rel{id: "rIdNotes", typ: relTypeNotesSlide, target: fmt.Sprintf("../notesSlides/notesSlide%d.xml", n)})
			p.add(notesPath, partXML("p:notes", "", note))
		}
		p.add(fmt.Sprintf("ppt/slides/slide%d.xml", n), partXML("p:sld", "", body))
		p.add(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), relsXML(slideRels...))
	}

	p.add(presentationPath, partXML("p:presentation", "",
		`<p:sldIdLst>`+sldIDs.String()+`</p:sldIdLst><p:sldSz cx="9144000" cy="6858000"/>`))
	p.add("ppt/_rels/presentation.xml.rels", relsXML(presRels...))

	p.add("ppt/slideLayouts/slideLayout1.xml", partXML("p:sldLayout", "", d.layout))
	p.add("ppt/slideLayouts/_rels/slideLayout1.xml.rels", relsXML(append(
		[]rel{{id: "rIdMaster", typ: relTypeSlideMaster, target: "../slideMasters/slideMaster1.xml"}}, d.layoutRels...)...))
	p.add("ppt/slideMasters/slideMaster1.xml", partXML("p:sldMaster", "", d.master))
	p.add("ppt/slideMasters/_rels/slideMaster1.xml.rels", relsXML(append(
		[]rel{{id: "rIdTheme", typ: relTypeTheme, target: "../theme/theme1.xml"}}, d.masterRels...)...))
	p.add("ppt/theme/theme1.xml", themeXML(d.bgStyles))

	for name, data := range d.media {
		p.addBinary(name, data)
	}
	return p
}

// testPNG encodes a w×h opaque PNG.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xFF})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func mustParse(t *testing.T, xml string) *Node {
	t.Helper()
	n, err := parseNode([]byte(xml))
	require.NoError(t, err)
	return n
}

// frag parses a DrawingML fragment with the usual namespace prefixes bound.
func frag(t *testing.T, body string) *Node {
	t.Helper()
	return mustParse(t, `<root `+nsDecl+`>`+body+`</root>`).Children[0]
}

// testContext is a slide context with the default theme and master color map
// and no archive behind it.
func testContext(t *testing.T) *SlideContext {
	t.Helper()
	return &SlideContext{
		Path:      "ppt/slides/slide1.xml",
		conv:      &converter{media: newMediaCache(nil), opts: DefaultOptions().withDefaults(), log: discardLogger()},
		master:    mustParse(t, partXML("p:sldMaster", "", slideBody("", "")+defaultMasterClrMap)),
		themeData: &Theme{Path: "ppt/theme/theme1.xml", root: mustParse(t, themeXML(""))},
	}
}

// emu formats points as an EMU attribute value.
func emu(pt float64) string {
	return fmt.Sprintf("%d", Point(pt))
}

// spXML is a rectangle with the given geometry in points and extra spPr content.
func spXML(id int, name string, x, y, cx, cy float64, spPr string) string {
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>`+
		`<p:spPr><a:xfrm><a:off x="%s" y="%s"/><a:ext cx="%s" cy="%s"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom>%s</p:spPr></p:sp>`,
		id, name, emu(x), emu(y), emu(cx), emu(cy), spPr)
}

// grpXML is a group with the given frame and child frame in points.
func grpXML(name string, x, y, cx, cy, chx, chy, chcx, chcy float64, xfrmAttrs, grpSpPr, children string) string {
	if xfrmAttrs != "" {
		xfrmAttrs = " " + xfrmAttrs
	}
	return fmt.Sprintf(`<p:grpSp><p:nvGrpSpPr><p:cNvPr id="1" name="%s"/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`+
		`<p:grpSpPr><a:xfrm%s><a:off x="%s" y="%s"/><a:ext cx="%s" cy="%s"/><a:chOff x="%s" y="%s"/><a:chExt cx="%s" cy="%s"/></a:xfrm>%s</p:grpSpPr>%s</p:grpSp>`,
		name, xfrmAttrs, emu(x), emu(y), emu(cx), emu(cy), emu(chx), emu(chy), emu(chcx), emu(chcy), grpSpPr, children)
}
