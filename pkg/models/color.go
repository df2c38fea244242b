package models

import (
	"fmt"
	"strings"
)

// Color is the canonical wine color.
type Color string

const (
	ColorRed   Color = "Red"
	ColorWhite Color = "White"
	ColorRose  Color = "Rose"
)

// ParseColor parses a free-text color value into a canonical Color.
// Matching is case-insensitive and tolerates the accented "rosé" spelling.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red":
		return ColorRed, nil
	case "white":
		return ColorWhite, nil
	case "rose", "rosé":
		return ColorRose, nil
	default:
		return "", fmt.Errorf("unknown wine color %q", s)
	}
}

// Valid reports whether the color is one of the canonical values.
func (c Color) Valid() bool {
	return c == ColorRed || c == ColorWhite || c == ColorRose
}

func (c Color) String() string {
	return string(c)
}
