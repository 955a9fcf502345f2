package pptxjson

import (
	"fmt"
	"sort"
)

// Theme is the parsed theme part shared by a master and its slides.
type Theme struct {
	Path string
	root *Node
	rels relTable
}

func loadTheme(a *archive, themePath string) (*Theme, error) {
	root, err := a.readPart(themePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme: %w", err)
	}
	rels, _, err := a.readRelationships(themePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme relationships: %w", err)
	}
	return &Theme{Path: themePath, root: root, rels: rels}, nil
}

func (t *Theme) colorScheme() *Node {
	if t == nil {
		return nil
	}
	return t.root.Path("themeElements", "clrScheme")
}

// slot returns the hex value of one of the 12 scheme slots (dk1, lt1,
// accent1, ...), or "" when the theme does not define it.
func (t *Theme) slot(name string) string {
	ref := t.colorScheme().Child(name)
	if v := ref.Child("srgbClr").Attr("val"); v != "" {
		return v
	}
	return ref.Child("sysClr").Attr("lastClr")
}

// AccentColors returns accent1..accent6 as "#RRGGBB", stopping at the first
// accent the scheme does not define.
func (t *Theme) AccentColors() []string {
	scheme := t.colorScheme()
	var out []string
	for i := 1; i <= 6; i++ {
		accent := scheme.Child(fmt.Sprintf("accent%d", i))
		if accent == nil {
			break
		}
		if v := accent.Child("srgbClr").Attr("val"); v != "" {
			out = append(out, withHash(v))
		}
	}
	return out
}

// backgroundFills returns the entries of bgFillStyleLst sorted by their
// declared order attribute. Entries without the attribute keep their
// document position. The input tree is not modified.
func (t *Theme) backgroundFills() []*Node {
	if t == nil {
		return nil
	}
	lst := t.root.Path("themeElements", "fmtScheme", "bgFillStyleLst")
	if lst == nil {
		return nil
	}
	fills := append([]*Node(nil), lst.Children...)
	sort.SliceStable(fills, func(i, j int) bool {
		return fills[i].DeclaredOrder() < fills[j].DeclaredOrder()
	})
	return fills
}
