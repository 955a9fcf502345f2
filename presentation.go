// Package pptxjson converts PowerPoint presentation packages (.pptx) into
// resolved, self-contained slide descriptions.
//
// Every color, gradient and background is resolved through the slide,
// layout, master and theme chain, and every element carries absolute
// coordinates in points with nested group transforms already applied.
// Media is inlined as data URIs.
//
// See the Version variable for the current library version.
package pptxjson

import "strings"

// Presentation is the result of converting one package.
type Presentation struct {
	Slides      []Slide             `json:"slides"`
	ThemeColors []string            `json:"themeColors"`
	Size        Size                `json:"size"`
	Properties  *DocumentProperties `json:"properties,omitempty"`
}

// Size is the slide size in points.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// slideSize reads p:sldSz from presentation.xml.
func slideSize(presentation *Node) Size {
	sz := presentation.Child("sldSz")
	return Size{
		Width:  emuAttrToPoint(sz, "cx"),
		Height: emuAttrToPoint(sz, "cy"),
	}
}

// GetSlideCount returns the number of slides.
func (p *Presentation) GetSlideCount() int {
	return len(p.Slides)
}

// ExtractText returns all text content from the presentation as a single string.
// Useful for search/indexing.
func (p *Presentation) ExtractText() string {
	var parts []string
	for _, slide := range p.Slides {
		parts = append(parts, elementsText(slide.Elements)...)
		if slide.Note != "" {
			parts = append(parts, slide.Note)
		}
	}
	return joinNonEmpty(parts, "\n")
}

func elementsText(elements []Element) []string {
	var parts []string
	for _, el := range elements {
		if el.Text != "" {
			parts = append(parts, el.Text)
		}
		parts = append(parts, elementsText(el.Elements)...)
	}
	return parts
}

func joinNonEmpty(parts []string, sep string) string {
	var result []string
	for _, p := range parts {
		if p != "" {
			result = append(result, p)
		}
	}
	return strings.Join(result, sep)
}
