package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/gapfinder/internal/geom"
	"github.com/piwi3910/gapfinder/internal/model"
)

func compareLayout(t *testing.T) model.Layout {
	t.Helper()
	a, err := model.NewObstacle("A", 2, 2, 3, 3)
	require.NoError(t, err)
	b, err := model.NewObstacle("B", 7, 6, 2, 3)
	require.NoError(t, err)
	return model.Layout{Outer: geom.MustRect(0, 0, 12, 10), Obstacles: []model.Obstacle{a, b}}
}

func TestBuildDefaultScenarios(t *testing.T) {
	base := model.DefaultSettings()
	scenarios := BuildDefaultScenarios(base)

	require.Len(t, scenarios, 3)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	assert.Equal(t, base, scenarios[0].Settings)
	assert.Equal(t, "Raw Strips", scenarios[1].Name)
	assert.False(t, scenarios[1].Settings.ExpandStrips)
	assert.Equal(t, "Tolerance 1e-09", scenarios[2].Name)
	assert.Equal(t, 1e-9, scenarios[2].Settings.Tolerance)
}

func TestBuildDefaultScenarios_FromLooseSettings(t *testing.T) {
	base := model.DefaultSettings()
	base.ExpandStrips = false
	base.Tolerance = 0.01

	scenarios := BuildDefaultScenarios(base)
	require.Len(t, scenarios, 3)
	assert.Equal(t, "Expanded Strips", scenarios[1].Name)
	assert.True(t, scenarios[1].Settings.ExpandStrips)
	assert.Equal(t, "Exact Comparison", scenarios[2].Name)
	assert.Zero(t, scenarios[2].Settings.Tolerance)
}

func TestCompareScenarios(t *testing.T) {
	layout := compareLayout(t)
	results := CompareScenarios(BuildDefaultScenarios(model.DefaultSettings()), layout)

	require.Len(t, results, 3)
	for _, r := range results {
		require.NoError(t, r.Err, r.Scenario.Name)
		assert.Equal(t, len(r.Result.Free), r.FreeCount)
		assert.Greater(t, r.FreeCount, 0)
		assert.InDelta(t, 120.0-9-6, r.FreeArea, 1e-9, r.Scenario.Name)
		assert.Greater(t, r.LargestArea, 0.0)
	}
	assert.GreaterOrEqual(t, results[1].Candidates, results[1].FreeCount)
}

func TestCompareScenarios_KeepsErrors(t *testing.T) {
	layout := compareLayout(t)
	layout.Obstacles[0].Rect = geom.Rect{Left: 11, Top: 0, Width: 5, Height: 1}

	results := CompareScenarios([]ComparisonScenario{{Name: "bad", Settings: model.DefaultSettings()}}, layout)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, ErrInvalidNesting)
	assert.Zero(t, results[0].FreeCount)
}
