package pptxjson

import (
	"sort"
	"strconv"
	"strings"
)

// defaultGradientPath is reported for gradients with neither a:lin nor a
// usable a:path.
const defaultGradientPath = "line"

// GradientStop is one color stop. Pos is a percentage such as "37.5%".
type GradientStop struct {
	Pos   string `json:"pos"`
	Color string `json:"color"`
}

// Gradient is a resolved gradient fill.
type Gradient struct {
	Rot    float64        `json:"rot"`
	Path   string         `json:"path"`
	Colors []GradientStop `json:"colors"`
}

// gradientFill resolves a:gradFill. Stop colors use cm and phClr the same
// way solidFill does.
func (s *SlideContext) gradientFill(grad *Node, cm ColorMap, phClr string) *Gradient {
	if grad == nil {
		return nil
	}
	g := &Gradient{Path: defaultGradientPath}
	for _, gs := range grad.Path("gsLst").ChildrenNamed("gs") {
		color, _ := s.solidFill(gs, cm, phClr)
		g.Colors = append(g.Colors, GradientStop{Pos: stopPosition(gs), Color: color})
	}
	sort.SliceStable(g.Colors, func(i, j int) bool {
		return stopValue(g.Colors[i].Pos) < stopValue(g.Colors[j].Pos)
	})

	if lin := grad.Child("lin"); lin != nil {
		g.Rot = angleToDegrees(lin.Attr("ang"))
	} else if p := grad.Child("path").Attr("path"); p != "" {
		g.Path = p
	}
	return g
}

// stopPosition formats gs@pos (thousandths of a percent) as "NN%".
func stopPosition(gs *Node) string {
	v, err := strconv.ParseFloat(gs.Attr("pos"), 64)
	if err != nil {
		return "0%"
	}
	return strconv.FormatFloat(v/1000, 'f', -1, 64) + "%"
}

func stopValue(pos string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(pos, "%"), 64)
	if err != nil {
		return 0
	}
	return v
}
