// Package stage classifies percent scores into maturity stages.
package stage

import "math"

// Stage is one maturity band of the model.
type Stage struct {
	Stage int
	Name  string
}

// band is one row of the classification table.
type band struct {
	min   float64
	max   float64
	stage int
	name  string
}

// bands is evaluated strictly in declaration order. The 11-30 and 11-50
// ranges overlap on purpose: any percent in 11-30 resolves to Foundational
// because it matches first.
var bands = []band{
	{0, 10, 0, "Awareness"},
	{11, 30, 1, "Foundational"},
	{11, 50, 2, "Developing"},
	{51, 70, 3, "Scaling"},
	{71, 90, 4, "Optimizing"},
	{91, 100, 5, "Leading"},
}

// Classify maps a percent score to its maturity stage. Inputs outside the
// table (negative, above 100, NaN, Inf) fail closed to stage 0 Awareness.
func Classify(percent float64) Stage {
	if math.IsNaN(percent) || math.IsInf(percent, 0) {
		return Stage{Stage: bands[0].stage, Name: bands[0].name}
	}

	for _, b := range bands {
		if percent >= b.min && percent <= b.max {
			return Stage{Stage: b.stage, Name: b.name}
		}
	}

	return Stage{Stage: bands[0].stage, Name: bands[0].name}
}

// Name returns the display name for a stage number, or "Awareness" when the
// number is outside the table.
func Name(stage int) string {
	for _, b := range bands {
		if b.stage == stage {
			return b.name
		}
	}
	return bands[0].name
}
