package style

import (
	"image/color"
	"strconv"
	"strings"
)

// FallbackColor is used when a descriptor has no usable colour.
var FallbackColor = color.NRGBA{R: 0xff, A: 0xff}

// Descriptor is one selectable overlay style.
type Descriptor struct {
	ID          string
	Name        string
	Description string
	Color       string  // normalized "#rrggbb"
	Opacity     float64 // [0,1]
	Texture     string  // asset reference, empty for flat colour only

	JawWidthScale       float64
	ChinExtensionRatio  float64
	MouthClearanceRatio float64
	UpperTrimRatio      float64
}

// RGBA returns the fill colour, or FallbackColor if Color does not parse.
func (d Descriptor) RGBA() color.NRGBA {
	c, ok := parseHex(d.Color)
	if !ok {
		return FallbackColor
	}
	return c
}

func parseHex(s string) (color.NRGBA, bool) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}
