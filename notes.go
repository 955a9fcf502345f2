package pptxjson

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// readNotes returns the speaker notes text of a notes slide part.
func (c *converter) readNotes(notesPath string) (string, error) {
	root, err := c.archive.readPart(notesPath)
	if err != nil {
		return "", err
	}
	return notesText(root), nil
}

// notesText collects the text runs of every shape on a notes slide.
// Fields (slide number, date) are skipped. Paragraphs are joined by "\n"
// and the result is NFC-normalized.
func notesText(root *Node) string {
	var paras []string
	for _, sp := range root.Path("cSld", "spTree").ChildrenNamed("sp") {
		for _, p := range sp.Path("txBody").ChildrenNamed("p") {
			var sb strings.Builder
			for _, r := range p.ChildrenNamed("r") {
				sb.WriteString(r.Child("t").Text)
			}
			if sb.Len() > 0 {
				paras = append(paras, sb.String())
			}
		}
	}
	return norm.NFC.String(strings.Join(paras, "\n"))
}
