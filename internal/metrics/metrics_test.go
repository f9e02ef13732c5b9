package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/befsim/internal/dynamo"
	"github.com/san-kum/befsim/internal/foodweb"
	"github.com/san-kum/befsim/internal/integrators"
	"github.com/san-kum/befsim/internal/params"
	"github.com/san-kum/befsim/internal/sim"
)

var trajectory = [][]float64{
	{1, 1, 0},
	{2, 1, 0},
	{3, 1, 0},
}

func TestCoefficientOfVariation(t *testing.T) {
	// sd of 1,2,3 is 1, mean 2
	assert.InDelta(t, (1+1.0/12)*0.5, CoefficientOfVariation([]float64{1, 2, 3}), 1e-12)
	assert.Zero(t, CoefficientOfVariation([]float64{0, 0}))
	assert.Zero(t, CoefficientOfVariation([]float64{4}))
}

func TestShannon(t *testing.T) {
	assert.InDelta(t, math.Log(2), Shannon([]float64{1, 1, 0}), 1e-12)
	assert.Zero(t, Shannon([]float64{0, 0}))
	assert.Zero(t, Shannon([]float64{5}))
}

func TestTrajectorySummaries(t *testing.T) {
	assert.Equal(t, []float64{2, 1, 0}, PopulationBiomass(trajectory, 0))
	assert.Equal(t, []float64{2.5, 1, 0}, PopulationBiomass(trajectory, 2))
	assert.InDelta(t, 3, TotalBiomass(trajectory, 0), 1e-12)
	assert.InDelta(t, 4, TotalBiomass(trajectory, 1), 1e-12)
	assert.Equal(t, 2.0, SpeciesRichness(trajectory, 0, 1e-6))
	assert.InDelta(t, 2.0/3, SpeciesPersistence(trajectory, 0, 1e-6), 1e-12)

	// species 1 is constant, species 0 varies, species 2 is absent
	want := -CoefficientOfVariation([]float64{1, 2, 3}) / 2
	assert.InDelta(t, want, PopulationStability(trajectory, 0, 1e-6), 1e-12)

	assert.InDelta(t, 1, FoodwebEvenness(trajectory[:1], 0), 1e-12)
	even := FoodwebEvenness(trajectory, 0)
	assert.Less(t, even, 1.0)
	assert.Greater(t, even, 0.8)
}

func TestEmptyTrajectory(t *testing.T) {
	assert.Nil(t, PopulationBiomass(nil, 0))
	assert.Zero(t, TotalBiomass(nil, 0))
	assert.Zero(t, PopulationStability(nil, 0, 0))
	assert.Zero(t, SpeciesPersistence(nil, 0, 0))
}

func TestObserversThroughDriver(t *testing.T) {
	p, err := params.Build(foodweb.Matrix{{0, 1}, {0, 0}}, params.DefaultOptions())
	require.NoError(t, err)

	d := sim.New(integrators.NewRK4(), dynamo.DefaultConfig())
	d.AddMetric(NewRichness(1e-6))
	d.AddMetric(NewMeanBiomass())
	d.AddMetric(NewMinBiomass())

	res, err := d.Run(context.Background(), p, []float64{0.5, 0.5}, 0, 1, 11)
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Metrics["richness"])
	assert.Greater(t, res.Metrics["mean_biomass"], 0.0)
	assert.Greater(t, res.Metrics["min_biomass"], 0.0)
	assert.LessOrEqual(t, res.Metrics["min_biomass"], 0.5)

	s := Summarize(res, 5, 1e-6)
	assert.Equal(t, sim.StatusCompleted, s.Status)
	assert.Equal(t, 2, s.Species)
	assert.Equal(t, 1.0, s.Persistence)
}
