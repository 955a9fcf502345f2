package pptxjson

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type geometry struct {
	Left, Top, Width, Height float64
}

func geometryOf(el Element) geometry {
	return geometry{el.Left, el.Top, el.Width, el.Height}
}

func TestGroupScalesChildren(t *testing.T) {
	s := testContext(t)
	grp := frag(t, grpXML("Group 1", 0, 0, 200, 200, 0, 0, 100, 100, "", "",
		spXML(2, "Rect", 10, 10, 10, 10, "")))

	el, ok := s.ResolveGroupSubtree(grp, IdentityTransform())
	require.True(t, ok)
	assert.Equal(t, ElementGroup, el.Type)
	assert.Equal(t, "Group 1", el.Name)
	assert.Equal(t, geometry{0, 0, 200, 200}, geometryOf(el))

	require.Len(t, el.Elements, 1)
	assert.Equal(t, geometry{20, 20, 20, 20}, geometryOf(el.Elements[0]))
	assert.Equal(t, "rect", el.Elements[0].ShapType)
}

func TestNestedGroupsCompound(t *testing.T) {
	s := testContext(t)
	inner := grpXML("Inner", 0, 0, 200, 200, 0, 0, 100, 100, "", "", spXML(3, "Rect", 10, 10, 10, 10, ""))
	outer := frag(t, grpXML("Outer", 0, 0, 200, 200, 0, 0, 100, 100, "", "", inner))

	el, ok := s.ResolveGroupSubtree(outer, IdentityTransform())
	require.True(t, ok)

	got := []geometry{geometryOf(el), geometryOf(el.Elements[0]), geometryOf(el.Elements[0].Elements[0])}
	want := []geometry{
		{0, 0, 200, 200},
		{0, 0, 400, 400},
		{40, 40, 40, 40},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("geometry mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupChildOffset(t *testing.T) {
	s := testContext(t)
	grp := frag(t, grpXML("Group", 100, 100, 50, 50, 1000, 1000, 100, 100, "", "",
		spXML(2, "Rect", 1010, 1020, 20, 20, "")))

	el, ok := s.ResolveGroupSubtree(grp, IdentityTransform())
	require.True(t, ok)
	assert.Equal(t, geometry{100, 100, 50, 50}, geometryOf(el))
	assert.Equal(t, geometry{5, 10, 10, 10}, geometryOf(el.Elements[0]))
}

func TestGroupAmbientTransform(t *testing.T) {
	s := testContext(t)
	grp := frag(t, grpXML("Group", 0, 0, 200, 200, 0, 0, 100, 100, "", "",
		spXML(2, "Rect", 10, 10, 10, 10, "")))

	el, ok := s.ResolveGroupSubtree(grp, TransformContext{Ws: 2, Hs: 2})
	require.True(t, ok)
	assert.Equal(t, geometry{40, 40, 40, 40}, geometryOf(el.Elements[0]))

	el, ok = s.ResolveGroupSubtree(grp, TransformContext{Ws: 0, Hs: 1})
	require.True(t, ok)
	assert.Equal(t, geometry{0, 20, 0, 20}, geometryOf(el.Elements[0]))
}

func TestGroupZeroExtentCollapsesNestedDescendants(t *testing.T) {
	s := testContext(t)
	inner := grpXML("Inner", 10, 10, 50, 50, 10, 10, 50, 50, "", "",
		spXML(3, "Rect", 20, 20, 10, 10, ""))
	outer := frag(t, grpXML("Outer", 0, 0, 0, 100, 0, 0, 100, 100, "", "", inner))

	el, ok := s.ResolveGroupSubtree(outer, IdentityTransform())
	require.True(t, ok)
	innerEl := el.Elements[0]
	assert.Equal(t, geometry{0, 10, 0, 50}, geometryOf(innerEl))
	assert.Equal(t, geometry{0, 10, 0, 10}, geometryOf(innerEl.Elements[0]))
}

func TestGroupDegenerateChildExtent(t *testing.T) {
	s := testContext(t)
	grp := frag(t, grpXML("Group", 0, 0, 200, 200, 0, 0, 0, 0, "", "",
		spXML(2, "Rect", 10, 10, 10, 10, "")))

	el, ok := s.ResolveGroupSubtree(grp, IdentityTransform())
	require.True(t, ok)
	assert.Equal(t, geometry{10, 10, 10, 10}, geometryOf(el.Elements[0]))
}

func TestGroupFlipComposition(t *testing.T) {
	s := testContext(t)

	single := frag(t, grpXML("Group", 0, 0, 100, 100, 0, 0, 100, 100, `flipH="1"`, "",
		spXML(2, "Rect", 0, 0, 10, 10, "")))
	el, ok := s.ResolveGroupSubtree(single, IdentityTransform())
	require.True(t, ok)
	assert.True(t, el.IsFlipH)
	assert.True(t, el.Elements[0].IsFlipH)
	assert.False(t, el.Elements[0].IsFlipV)

	inner := grpXML("Inner", 0, 0, 100, 100, 0, 0, 100, 100, `flipH="1"`, "", spXML(3, "Rect", 0, 0, 10, 10, ""))
	nested := frag(t, grpXML("Outer", 0, 0, 100, 100, 0, 0, 100, 100, `flipH="1"`, "", inner))
	el, ok = s.ResolveGroupSubtree(nested, IdentityTransform())
	require.True(t, ok)
	leaf := el.Elements[0].Elements[0]
	assert.False(t, leaf.IsFlipH, "two flips cancel for a shared descendant")
}

func TestGroupFlipAcceptsBooleanWords(t *testing.T) {
	s := testContext(t)
	grp := frag(t, grpXML("Group", 0, 0, 100, 100, 0, 0, 100, 100, `flipH="true" flipV="false"`, "",
		spXML(2, "Rect", 0, 0, 10, 10, "")))

	el, ok := s.ResolveGroupSubtree(grp, IdentityTransform())
	require.True(t, ok)
	assert.True(t, el.IsFlipH)
	assert.False(t, el.IsFlipV)
	assert.True(t, el.Elements[0].IsFlipH)
	assert.False(t, el.Elements[0].IsFlipV)

	sp := frag(t, `<p:sp><p:spPr><a:xfrm flipV="true"><a:off x="0" y="0"/><a:ext cx="12700" cy="12700"/></a:xfrm></p:spPr></p:sp>`)
	shape, ok := s.resolveNode(sp, slideState())
	require.True(t, ok)
	assert.True(t, shape.IsFlipV)
	assert.False(t, shape.IsFlipH)
}

func TestGroupWithoutTransformIsDropped(t *testing.T) {
	s := testContext(t)
	grp := frag(t, `<p:grpSp><p:nvGrpSpPr><p:cNvPr id="1" name="Empty"/></p:nvGrpSpPr><p:grpSpPr/>`+
		spXML(2, "Rect", 0, 0, 10, 10, "")+`</p:grpSp>`)
	_, ok := s.ResolveGroupSubtree(grp, IdentityTransform())
	assert.False(t, ok)
}

func TestGroupRotation(t *testing.T) {
	s := testContext(t)
	grp := frag(t, grpXML("Group", 0, 0, 100, 100, 0, 0, 100, 100, `rot="5400000"`, "", ""))
	el, ok := s.ResolveGroupSubtree(grp, IdentityTransform())
	require.True(t, ok)
	assert.Equal(t, 90.0, el.Rotate)
	assert.Empty(t, el.Elements)
}

func TestGroupFillInheritance(t *testing.T) {
	s := testContext(t)
	child := spXML(3, "Child", 0, 0, 10, 10, `<a:grpFill/>`)
	inner := grpXML("Inner", 0, 0, 100, 100, 0, 0, 100, 100, "", "", child)
	outer := frag(t, grpXML("Outer", 0, 0, 100, 100, 0, 0, 100, 100, "",
		`<a:solidFill><a:srgbClr val="FF0000"/></a:solidFill>`, inner+spXML(4, "Direct", 0, 0, 10, 10, `<a:grpFill/>`)))

	el, ok := s.ResolveGroupSubtree(outer, IdentityTransform())
	require.True(t, ok)
	require.Len(t, el.Elements, 2)

	nestedChild := el.Elements[0].Elements[0]
	require.NotNil(t, nestedChild.Fill)
	assert.Equal(t, "#FF0000", nestedChild.Fill.Color, "a group without its own fill passes the parent's through")

	direct := el.Elements[1]
	require.NotNil(t, direct.Fill)
	assert.Equal(t, "#FF0000", direct.Fill.Color)
}
