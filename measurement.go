package pptxjson

import (
	"math"
	"strconv"
)

// EMU (English Metric Units) conversion helpers.
// 1 inch = 914400 EMU, 1 point = 12700 EMU.

const (
	emuPerInch  = 914400
	emuPerPoint = 12700
	// angleUnitsPerDegree is the DrawingML angle unit: 60000ths of a degree.
	angleUnitsPerDegree = 60000
	// maxEMU is the maximum safe EMU value to prevent overflow.
	maxEMU = math.MaxInt64 / 2
)

// Point converts points to EMU.
func Point(n float64) int64 {
	return clampEMU(n * emuPerPoint)
}

// Inch converts inches to EMU.
func Inch(n float64) int64 {
	return clampEMU(n * emuPerInch)
}

// EMUToPoint converts EMU to points.
func EMUToPoint(emu int64) float64 {
	return float64(emu) / emuPerPoint
}

// clampEMU converts a float64 to int64, clamping to prevent overflow.
func clampEMU(v float64) int64 {
	if v > float64(maxEMU) {
		return maxEMU
	}
	if v < -float64(maxEMU) {
		return -maxEMU
	}
	return int64(v)
}

// emuAttrToPoint reads an EMU attribute and converts it to points.
// Absent or malformed values yield 0.
func emuAttrToPoint(n *Node, name string) float64 {
	v, ok := n.IntAttr(name)
	if !ok {
		return 0
	}
	return EMUToPoint(v)
}

// angleToDegrees converts a raw DrawingML angle to degrees. Absent or
// malformed input yields 0.
func angleToDegrees(raw string) float64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v / angleUnitsPerDegree
}
