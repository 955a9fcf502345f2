package pptxjson

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shapeWithProps(t *testing.T, spPr, style string) *Node {
	t.Helper()
	return frag(t, `<p:sp><p:spPr>`+spPr+`</p:spPr>`+style+`</p:sp>`)
}

func TestClassifyFillPrecedence(t *testing.T) {
	kind, n := classifyFill(frag(t, `<p:spPr><a:gradFill/><a:solidFill><a:srgbClr val="FF0000"/></a:solidFill></p:spPr>`))
	assert.Equal(t, FillSolid, kind)
	assert.Equal(t, "solidFill", n.Name)

	kind, n = classifyFill(frag(t, `<p:spPr><a:ln/></p:spPr>`))
	assert.Equal(t, FillUnspecified, kind)
	assert.Nil(t, n)

	assert.Equal(t, FillPicture, fillKindOf(frag(t, `<a:blipFill/>`)))
	assert.Equal(t, "grpFill", FillGroup.String())
}

func TestResolveShapeFill(t *testing.T) {
	s := testContext(t)

	t.Run("solid", func(t *testing.T) {
		f := s.ResolveShapeFill(shapeWithProps(t, `<a:solidFill><a:schemeClr val="accent6"/></a:solidFill>`, ""), RenderHTML, ScopeSlide)
		require.NotNil(t, f)
		assert.Equal(t, FillTypeColor, f.Type)
		assert.Equal(t, "#F79646", f.Value())
	})

	t.Run("no fill html", func(t *testing.T) {
		f := s.ResolveShapeFill(shapeWithProps(t, `<a:noFill/>`, ""), RenderHTML, ScopeSlide)
		require.NotNil(t, f)
		assert.Equal(t, FillTypeNone, f.Type)
		assert.Equal(t, "", f.Value())
	})

	t.Run("no fill svg", func(t *testing.T) {
		f := s.ResolveShapeFill(shapeWithProps(t, `<a:noFill/>`, ""), RenderSVG, ScopeSlide)
		require.NotNil(t, f)
		assert.Equal(t, "none", f.Value())
	})

	t.Run("gradient", func(t *testing.T) {
		f := s.ResolveShapeFill(shapeWithProps(t, `<a:gradFill><a:gsLst><a:gs pos="0"><a:srgbClr val="000000"/></a:gs></a:gsLst></a:gradFill>`, ""), RenderHTML, ScopeSlide)
		require.NotNil(t, f)
		assert.Equal(t, FillTypeGradient, f.Type)
		require.NotNil(t, f.Gradient)
		assert.Equal(t, "#000000", f.Gradient.Colors[0].Color)
	})

	t.Run("pattern uses foreground", func(t *testing.T) {
		f := s.ResolveShapeFill(shapeWithProps(t, `<a:pattFill prst="dkDnDiag"><a:fgClr><a:srgbClr val="00FF00"/></a:fgClr><a:bgClr><a:srgbClr val="FFFFFF"/></a:bgClr></a:pattFill>`, ""), RenderHTML, ScopeSlide)
		require.NotNil(t, f)
		assert.Equal(t, "#00FF00", f.Color)
	})

	t.Run("fill reference fallback", func(t *testing.T) {
		style := `<p:style><a:fillRef idx="1"><a:schemeClr val="accent1"/></a:fillRef></p:style>`
		f := s.ResolveShapeFill(shapeWithProps(t, ``, style), RenderHTML, ScopeSlide)
		require.NotNil(t, f)
		assert.Equal(t, "#4F81BD", f.Color)
	})

	t.Run("unresolvable solid falls back to reference", func(t *testing.T) {
		style := `<p:style><a:fillRef idx="1"><a:srgbClr val="ABCDEF"/></a:fillRef></p:style>`
		f := s.ResolveShapeFill(shapeWithProps(t, `<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`, style), RenderHTML, ScopeSlide)
		require.NotNil(t, f)
		assert.Equal(t, "#ABCDEF", f.Color)
	})

	t.Run("nothing", func(t *testing.T) {
		assert.Nil(t, s.ResolveShapeFill(shapeWithProps(t, ``, ""), RenderHTML, ScopeSlide))
	})

	t.Run("group fill without group", func(t *testing.T) {
		assert.Nil(t, s.ResolveShapeFill(shapeWithProps(t, `<a:grpFill/>`, ""), RenderHTML, ScopeSlide))
	})

	t.Run("picture without image", func(t *testing.T) {
		style := `<p:style><a:fillRef idx="1"><a:srgbClr val="010203"/></a:fillRef></p:style>`
		f := s.ResolveShapeFill(shapeWithProps(t, `<a:blipFill><a:blip r:embed="rId404"/></a:blipFill>`, style), RenderHTML, ScopeSlide)
		require.NotNil(t, f)
		assert.Equal(t, "#010203", f.Color)
	})
}

func TestFillJSON(t *testing.T) {
	tests := []struct {
		name string
		fill Fill
		want string
	}{
		{"color", Fill{Type: FillTypeColor, Color: "#fff"}, `{"type":"color","value":"#fff"}`},
		{"none", Fill{Type: FillTypeNone}, `{"type":"none","value":""}`},
		{"gradient", Fill{Type: FillTypeGradient, Gradient: &Gradient{Path: "line", Colors: []GradientStop{{Pos: "0%", Color: "#000"}}}},
			`{"type":"gradient","value":{"rot":0,"path":"line","colors":[{"pos":"0%","color":"#000"}]}}`},
		{"image", Fill{Type: FillTypeImage, Image: &PictureFill{PicBase64: "data:image/png;base64,AA==", Opacity: 0.5}},
			`{"type":"image","value":{"picBase64":"data:image/png;base64,AA==","opacity":0.5}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.fill)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestParseRenderMode(t *testing.T) {
	mode, err := ParseRenderMode("SVG")
	require.NoError(t, err)
	assert.Equal(t, RenderSVG, mode)
	assert.Equal(t, "svg", mode.String())

	mode, err = ParseRenderMode("")
	require.NoError(t, err)
	assert.Equal(t, RenderHTML, mode)

	_, err = ParseRenderMode("canvas")
	assert.Error(t, err)
}
