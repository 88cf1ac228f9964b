package subtitles

import (
	"fmt"
	"strconv"
	"strings"
)

// Style is the burned-in caption look.
//
// VerticalPosition is the caption baseline as a fraction of frame height,
// 0 at the top and 1 at the bottom.
type Style struct {
	Font             string
	FontSize         int
	Color            string
	VerticalPosition float64
}

const (
	DefaultFont             = "Arial"
	DefaultFontSize         = 48
	DefaultColor            = "white"
	DefaultVerticalPosition = 0.85
)

func DefaultStyle() Style {
	return Style{
		Font:             DefaultFont,
		FontSize:         DefaultFontSize,
		Color:            DefaultColor,
		VerticalPosition: DefaultVerticalPosition,
	}
}

// WithDefaults fills zero fields from DefaultStyle.
func (s Style) WithDefaults() Style {
	d := DefaultStyle()
	if strings.TrimSpace(s.Font) == "" {
		s.Font = d.Font
	}
	if s.FontSize <= 0 {
		s.FontSize = d.FontSize
	}
	if strings.TrimSpace(s.Color) == "" {
		s.Color = d.Color
	}
	if s.VerticalPosition <= 0 {
		s.VerticalPosition = d.VerticalPosition
	}
	return s
}

func (s Style) Validate() error {
	if s.FontSize <= 0 {
		return fmt.Errorf("font size must be > 0")
	}
	if s.VerticalPosition < 0 || s.VerticalPosition > 1 {
		return fmt.Errorf("vertical position must be within [0, 1]")
	}
	if _, err := assColor(s.Color); err != nil {
		return err
	}
	return nil
}

var namedColors = map[string]string{
	"white":   "FFFFFF",
	"black":   "000000",
	"yellow":  "FFFF00",
	"red":     "FF0000",
	"green":   "00FF00",
	"blue":    "0000FF",
	"cyan":    "00FFFF",
	"magenta": "FF00FF",
	"orange":  "FFA500",
}

// assColor converts a color name or #RRGGBB into ASS &H00BBGGRR notation.
func assColor(c string) (string, error) {
	c = strings.ToLower(strings.TrimSpace(c))
	hex, ok := namedColors[c]
	if !ok {
		hex = strings.TrimPrefix(strings.TrimPrefix(c, "#"), "0x")
	}
	if len(hex) != 6 {
		return "", fmt.Errorf("unsupported color %q", c)
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return "", fmt.Errorf("unsupported color %q", c)
	}
	hex = strings.ToUpper(hex)
	return "&H00" + hex[4:6] + hex[2:4] + hex[0:2], nil
}
