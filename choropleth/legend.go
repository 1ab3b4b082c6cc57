package choropleth

import (
	"math"

	"github.com/enrollmap/enrollmap/enroll"
	"github.com/enrollmap/enrollmap/scale"
)

// LegendEntry is one labeled swatch.
type LegendEntry struct {
	Color string  `json:"color"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

const legendSteps = 5

// Legend generates five representative steps across the current scale's
// domain. Callers regenerate it whenever the mode or bounds change.
func Legend(mode enroll.DisplayMode, b Bounds) []LegendEntry {
	switch mode {
	case enroll.ModeChange:
		return changeLegend(b.maxAbsChange(), func(v float64) string {
			return scale.FormatChange(int(math.Round(v)))
		})
	case enroll.ModeChangePct:
		return changeLegend(b.maxAbsChangePct(), scale.FormatPercent)
	default:
		return totalLegend(b.MaxEnrollment)
	}
}

func totalLegend(maxEnrollment int) []LegendEntry {
	out := make([]LegendEntry, 0, legendSteps)
	for i := 0; i < legendSteps; i++ {
		v := float64(maxEnrollment) * float64(i) / float64(legendSteps-1)
		out = append(out, LegendEntry{
			Color: scale.Interpolate(v, 0, float64(maxEnrollment), scale.Blues).Hex(),
			Label: scale.FormatCount(int(math.Round(v))),
			Value: v,
		})
	}
	return out
}

// changeLegend spans the symmetric domain [-maxAbs, +maxAbs] with the
// neutral zero swatch in the middle.
func changeLegend(maxAbs float64, format func(float64) string) []LegendEntry {
	out := make([]LegendEntry, 0, legendSteps)
	for i := 0; i < legendSteps; i++ {
		v := -maxAbs + 2*maxAbs*float64(i)/float64(legendSteps-1)
		out = append(out, LegendEntry{
			Color: changeColor(v, maxAbs).Hex(),
			Label: format(v),
			Value: v,
		})
	}
	return out
}
