package sim

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
)

var (
	chain = foodweb.Matrix{
		{0, 1, 0},
		{0, 0, 1},
		{0, 0, 0},
	}
	fiveSpecies = foodweb.Matrix{
		{0, 0, 1, 1, 0},
		{0, 0, 0, 1, 1},
		{0, 0, 0, 0, 1},
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
	}
)

func build(t *testing.T, a foodweb.Matrix, mod func(*params.Options)) *params.Parameters {
	t.Helper()
	opts := params.DefaultOptions()
	if mod != nil {
		mod(&opts)
	}
	p, err := params.Build(a, opts)
	require.NoError(t, err)
	return p
}

func starving(o *params.Options) {
	o.MetabolicRate.Parameters = map[string]float64{"a_invertebrate": 50}
}

func newDriver() *Driver {
	return New(integrators.NewRK4(), dynamo.DefaultConfig())
}

type nanIntegrator struct{}

func (nanIntegrator) Step(_ dynamo.System, x dynamo.State, _, _ float64) dynamo.State {
	out := x.Clone()
	out[0] = math.NaN()
	return out
}

type countMetric struct{ n int }

func (c *countMetric) Name() string                   { return "count" }
func (c *countMetric) Observe(_ []float64, _ float64) { c.n++ }
func (c *countMetric) Value() float64                 { return float64(c.n) }
func (c *countMetric) Reset()                         { c.n = 0 }

func TestCheckpoints(t *testing.T) {
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, Checkpoints(0, 1, 5))
	assert.Equal(t, []float64{2}, Checkpoints(2, 2, 10))
	assert.Equal(t, []float64{2}, Checkpoints(2, 7, 1))
}

func TestThreeSpeciesChain(t *testing.T) {
	p := build(t, chain, nil)
	res, err := newDriver().Run(context.Background(), p, []float64{0.5, 0.5, 0.5}, 0, 50, 1000)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, res.Status)
	require.Len(t, res.Times, 1000)
	assert.Equal(t, 50.0, res.Times[999])
	for k, row := range res.Biomass {
		for i, v := range row {
			assert.GreaterOrEqual(t, v, 0.0, "checkpoint %d species %d", k, i)
		}
		assert.LessOrEqual(t, row[2], 1.0+1e-9, "producer above K at checkpoint %d", k)
	}
	assert.NotNil(t, res.Final)
}

func TestZeroDuration(t *testing.T) {
	p := build(t, chain, nil)
	b0 := []float64{0.5, 0.4, 0.3}

	for _, tc := range []struct {
		name     string
		t0, tEnd float64
		steps    int
	}{
		{"same times", 3, 3, 100},
		{"one step", 0, 50, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res, err := newDriver().Run(context.Background(), p, b0, tc.t0, tc.tEnd, tc.steps)
			require.NoError(t, err)
			assert.Equal(t, StatusCompleted, res.Status)
			assert.Equal(t, []float64{tc.t0}, res.Times)
			assert.Equal(t, [][]float64{b0}, res.Biomass)
		})
	}
}

func TestExtinctionIsAbsorbing(t *testing.T) {
	p := build(t, chain, starving)
	res, err := newDriver().Run(context.Background(), p, []float64{0.5, 0.5, 0.5}, 0, 10, 101)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, res.Status)
	require.Len(t, res.Extinctions, 2)
	seen := map[int]bool{}
	for _, e := range res.Extinctions {
		seen[e.Species] = true
	}
	assert.True(t, seen[0] && seen[1])

	for i := range p.BodyMass {
		gone := false
		for k, row := range res.Biomass {
			if gone {
				assert.Zero(t, row[i], "species %d revived at checkpoint %d", i, k)
			}
			if row[i] == 0 {
				gone = true
			}
		}
	}
	assert.Positive(t, res.FinalBiomass()[2])
	assert.Empty(t, res.Final.Diet(0))
}

func TestCollapse(t *testing.T) {
	p := build(t, chain, starving)

	res, err := newDriver().Run(context.Background(), p, make([]float64, 3), 0, 10, 50)
	require.NoError(t, err)
	assert.Equal(t, StatusCollapsed, res.Status)
	assert.Len(t, res.Times, 1)

	res, err = newDriver().Run(context.Background(), p, []float64{0.5, 0.5, 0}, 0, 10, 101)
	require.NoError(t, err)
	assert.Equal(t, StatusCollapsed, res.Status)
	assert.Less(t, len(res.Times), 101)
	for _, v := range res.FinalBiomass() {
		assert.Zero(t, v)
	}
}

func TestDivergence(t *testing.T) {
	p := build(t, chain, nil)
	d := New(nanIntegrator{}, dynamo.DefaultConfig())
	res, err := d.Run(context.Background(), p, []float64{0.5, 0.5, 0.5}, 0, 1, 11)
	require.NoError(t, err)
	assert.Equal(t, StatusDiverged, res.Status)
	assert.Equal(t, []float64{0}, res.Times, "the non-finite snapshot is not recorded")
	assert.ErrorIs(t, res.Cause, dynamo.ErrInvalidState)

	var se *dynamo.SimulationError
	require.ErrorAs(t, res.Cause, &se)
	assert.Equal(t, 1, se.Step)
	assert.InDelta(t, 0.1, se.Time, 1e-12)
}

func TestRunRejectsBadInput(t *testing.T) {
	p := build(t, chain, nil)
	ok := []float64{0.5, 0.5, 0.5}
	noStep := dynamo.DefaultConfig()
	noStep.MaxDt = 0
	noTol := dynamo.DefaultConfig()
	noTol.Adaptive = true
	noTol.Tolerance, noTol.AbsTolerance = 0, 0

	tests := []struct {
		name  string
		d     *Driver
		p     *params.Parameters
		b0    []float64
		tEnd  float64
		steps int
	}{
		{"nil parameters", newDriver(), nil, ok, 1, 10},
		{"short biomass", newDriver(), p, []float64{1}, 1, 10},
		{"negative biomass", newDriver(), p, []float64{0.5, -1, 0.5}, 1, 10},
		{"nan biomass", newDriver(), p, []float64{0.5, math.NaN(), 0.5}, 1, 10},
		{"no steps", newDriver(), p, ok, 1, 0},
		{"reversed time", newDriver(), p, ok, -1, 10},
		{"zero max dt", New(integrators.NewEuler(), noStep), p, ok, 1, 10},
		{"no tolerance", New(integrators.NewRK45(), noTol), p, ok, 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.d.Run(context.Background(), tt.p, tt.b0, 0, tt.tEnd, tt.steps)
			assert.ErrorIs(t, err, dynamo.ErrParameter)
		})
	}
}

func TestRunCanceled(t *testing.T) {
	p := build(t, chain, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newDriver().Run(ctx, p, []float64{0.5, 0.5, 0.5}, 0, 10, 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, dynamo.ErrContextCanceled)
}

func TestMetricsAndObservers(t *testing.T) {
	p := build(t, chain, nil)
	d := newDriver()
	d.AddMetric(&countMetric{})
	calls := 0
	d.AddObserver(ObserverFunc(func(k, total int, _ float64, _ []float64) {
		assert.Equal(t, calls, k)
		assert.Equal(t, 21, total)
		calls++
	}))

	res, err := d.Run(context.Background(), p, []float64{0.5, 0.5, 0.5}, 0, 2, 21)
	require.NoError(t, err)
	assert.Equal(t, 21, calls)
	assert.Equal(t, 21.0, res.Metrics["count"])
}

func TestAdaptiveMatchesFixedStep(t *testing.T) {
	p := build(t, chain, nil)
	b0 := []float64{0.5, 0.5, 0.5}

	fixed, err := newDriver().Run(context.Background(), p, b0, 0, 5, 6)
	require.NoError(t, err)

	cfg := dynamo.DefaultConfig()
	cfg.Adaptive = true
	cfg.MaxDt = 0.1
	adaptive, err := New(integrators.NewRK45(), cfg).Run(context.Background(), p, b0, 0, 5, 6)
	require.NoError(t, err)

	assert.InDeltaSlice(t, fixed.FinalBiomass(), adaptive.FinalBiomass(), 1e-4)

	cfg.Tolerance = 0
	absOnly, err := New(integrators.NewRK45(), cfg).Run(context.Background(), p, b0, 0, 5, 6)
	require.NoError(t, err)
	assert.InDeltaSlice(t, fixed.FinalBiomass(), absOnly.FinalBiomass(), 1e-4)
}

func TestRunRewiresAfterExtinction(t *testing.T) {
	p := build(t, fiveSpecies, func(o *params.Options) { o.RewireMethod = params.RewireGilljam })
	b0 := []float64{0.5, 0.5, 0.5, 0, 0.5}

	res, err := newDriver().Run(context.Background(), p, b0, 0, 5, 11)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.Rewirings, 1)
	for i := range res.Final.A {
		assert.Zero(t, res.Final.A[i][3], "link to extinct producer from %d", i)
	}
	assert.Contains(t, res.Final.Diet(0), 4)
	assert.Equal(t, 0.5, res.Series(0)[0])
}
