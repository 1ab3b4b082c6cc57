// Package scale provides the color ramps and value formatting used by the
// choropleth renderer. Interpolation is a plain linear blend between hex
// stops; no external color library is involved.
package scale

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// Color is an opaque sRGB color.
type Color struct {
	R, G, B uint8
}

// ParseHex parses "#rrggbb" (leading '#' optional).
func ParseHex(s string) (Color, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return Color{}, fmt.Errorf("scale: invalid hex color %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return Color{}, fmt.Errorf("scale: invalid hex color %q: %w", s, err)
	}
	return Color{r, g, b}, nil
}

// MustHex parses a hex color and panics on malformed input. For package-level
// ramp definitions only.
func MustHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex renders the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Sequential ramps (ColorBrewer). Blues color enrollment totals, Greens
// positive change, Reds negative change by magnitude.
var (
	Blues = []Color{
		MustHex("#eff3ff"), MustHex("#c6dbef"), MustHex("#9ecae1"),
		MustHex("#6baed6"), MustHex("#3182bd"), MustHex("#08519c"),
	}
	Greens = []Color{
		MustHex("#edf8e9"), MustHex("#c7e9c0"), MustHex("#a1d99b"),
		MustHex("#74c476"), MustHex("#31a354"), MustHex("#006d2c"),
	}
	Reds = []Color{
		MustHex("#fee5d9"), MustHex("#fcbba1"), MustHex("#fc9272"),
		MustHex("#fb6a4a"), MustHex("#de2d26"), MustHex("#a50f15"),
	}

	// NeutralZero fills counties whose change is exactly zero. Never
	// produced by interpolation.
	NeutralZero = MustHex("#f7f7f7")

	// NoData fills counties absent from the change dataset.
	NoData = MustHex("#d9d9d9")
)

// Interpolate maps value onto the ramp. The value is clamped to [min,max],
// mapped to a fractional index into stops, and the two bracketing stops are
// blended channel-wise by the fractional remainder, rounding to the nearest
// integer channel value.
//
// Degenerate domain min==max: values at or below min take the first stop,
// values at or above max the last.
func Interpolate(value, min, max float64, stops []Color) Color {
	if len(stops) == 0 {
		return NoData
	}
	if len(stops) == 1 || min >= max {
		if value <= min {
			return stops[0]
		}
		return stops[len(stops)-1]
	}
	if value < min {
		value = min
	}
	if value > max {
		value = max
	}

	pos := (value - min) / (max - min) * float64(len(stops)-1)
	lo := int(math.Floor(pos))
	if lo >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	frac := pos - float64(lo)
	a, b := stops[lo], stops[lo+1]
	return Color{
		R: blend(a.R, b.R, frac),
		G: blend(a.G, b.G, frac),
		B: blend(a.B, b.B, frac),
	}
}

func blend(a, b uint8, frac float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*frac))
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatChange renders a signed integer with thousands separators and an
// explicit leading '+' for positive values.
func FormatChange(n int) string {
	if n > 0 {
		return "+" + humanize.Comma(int64(n))
	}
	return humanize.Comma(int64(n))
}

// FormatPercent renders a percentage with one decimal place and an explicit
// leading '+' for positive values.
func FormatPercent(pct float64) string {
	if pct > 0 {
		return fmt.Sprintf("+%.1f%%", pct)
	}
	return fmt.Sprintf("%.1f%%", pct)
}
