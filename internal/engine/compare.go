package engine

import (
	"fmt"

	"github.com/piwi3910/gapfinder/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.Settings
}

// ComparisonResult holds the finder result and computed statistics for a
// single scenario.
type ComparisonResult struct {
	Scenario    ComparisonScenario
	Result      model.Result
	FreeCount   int
	UsableCount int
	Candidates  int
	LargestArea float64
	FreeArea    float64
	Err         error
}

// CompareScenarios runs the finder on layout once per scenario and returns
// the results in scenario order. A scenario that fails keeps its error and
// does not stop the others.
func CompareScenarios(scenarios []ComparisonScenario, layout model.Layout) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		res, err := New(scenario.Settings).Run(layout)
		cr := ComparisonResult{Scenario: scenario, Err: err}
		if err == nil {
			cr.Result = res
			cr.FreeCount = len(res.Free)
			cr.UsableCount = len(res.Usable(scenario.Settings.MinWidth, scenario.Settings.MinHeight))
			cr.Candidates = res.Stats.HorizontalCandidates + res.Stats.VerticalCandidates
			cr.FreeArea = res.FreeArea()
			if largest, ok := res.Largest(); ok {
				cr.LargestArea = largest.Rect.Area()
			}
		}
		results = append(results, cr)
	}

	return results
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the current settings, varying key parameters to show what-if alternatives.
func BuildDefaultScenarios(base model.Settings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: base,
		},
	}

	alt := base
	alt.ExpandStrips = !base.ExpandStrips
	name := "Raw Strips"
	if alt.ExpandStrips {
		name = "Expanded Strips"
	}
	scenarios = append(scenarios, ComparisonScenario{Name: name, Settings: alt})

	if base.Tolerance > 0 {
		exact := base
		exact.Tolerance = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Exact Comparison",
			Settings: exact,
		})
	} else {
		loose := base
		loose.Tolerance = 1e-9
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Tolerance %g", loose.Tolerance),
			Settings: loose,
		})
	}

	return scenarios
}
