package dynamics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/befsim/internal/foodweb"
	"github.com/san-kum/befsim/internal/params"
)

var (
	pair = foodweb.Matrix{
		{0, 1},
		{0, 0},
	}
	chain = foodweb.Matrix{
		{0, 1, 0},
		{0, 0, 1},
		{0, 0, 0},
	}
	web = foodweb.Matrix{
		{0, 1, 1, 0, 0},
		{0, 0, 1, 1, 0},
		{0, 0, 0, 1, 1},
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

func TestProducerAlone(t *testing.T) {
	p := build(t, chain, nil)
	got := Derivative([]float64{0, 0, 0.5}, 0, p, p.InitialNetwork())
	assert.InDeltaSlice(t, []float64{0, 0, 0.25}, got, 1e-12)
}

func TestTypeIIResponse(t *testing.T) {
	p := build(t, pair, nil)
	got := Derivative([]float64{0.5, 0.5}, 0, p, p.InitialNetwork())

	x := 0.314
	a := 8 * x / 0.5
	h := 1 / (8 * x)
	f := a * 0.5 / (1 + a*h*0.5)
	assert.InDelta(t, 0.45*f*0.5-x*0.5, got[0], 1e-12)
	assert.InDelta(t, 0.25-f*0.5, got[1], 1e-12)
}

func TestInterference(t *testing.T) {
	plain := build(t, pair, nil)
	crowded := build(t, pair, func(o *params.Options) { o.C = 1 })
	b := []float64{0.5, 0.5}
	assert.Less(t,
		Derivative(b, 0, crowded, crowded.InitialNetwork())[0],
		Derivative(b, 0, plain, plain.InitialNetwork())[0])
}

func TestCompetitiveProductivity(t *testing.T) {
	a := foodweb.Matrix{{0, 0}, {0, 0}}
	p := build(t, a, func(o *params.Options) {
		o.Productivity = params.ProductivityCompetitive
		o.Alpha = 0.5
	})
	got := Derivative([]float64{0.5, 0.5}, 0, p, p.InitialNetwork())
	assert.InDeltaSlice(t, []float64{0.125, 0.125}, got, 1e-12)
}

func TestMassBalance(t *testing.T) {
	p := build(t, web, func(o *params.Options) {
		o.ECarnivore = 1
		o.EHerbivore = 1
		o.C = 0
		o.Z = 10
	})
	net := p.InitialNetwork()
	rng := rand.New(rand.NewSource(3))
	for n := 0; n < 20; n++ {
		b := make([]float64, p.S)
		for i := range b {
			b[i] = rng.Float64()
		}
		total := 0.0
		for _, v := range Derivative(b, 0, p, net) {
			total += v
		}
		want := ProducerGrowth(b, p, net) - MetabolicLoss(b, p)
		assert.InDelta(t, want, total, 1e-10)
	}
}

func TestZeroBiomassIsFinite(t *testing.T) {
	p := build(t, web, nil)
	got := Derivative(make([]float64, p.S), 0, p, p.InitialNetwork())
	for i, v := range got {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "species %d", i)
		assert.Zero(t, v)
	}
}

func TestNegativeBiomassIsClipped(t *testing.T) {
	p := build(t, chain, nil)
	net := p.InitialNetwork()
	assert.Equal(t,
		Derivative([]float64{0, 0, 0.5}, 0, p, net),
		Derivative([]float64{-0.2, -1e-3, 0.5}, 0, p, net))
}

func TestExtinctSpeciesAreAbsent(t *testing.T) {
	p := build(t, chain, nil)
	sys := NewSystem(p, p.InitialNetwork())
	sys.SetExtinct([]bool{false, true, false})

	got := sys.Derive([]float64{0.5, 0.5, 0.5}, 0).Clone()
	assert.Zero(t, got[1])
	assert.InDelta(t, 0.25, got[2], 1e-12, "extinct herbivore eats nothing")
	assert.InDelta(t, -0.314*0.5, got[0], 1e-12, "top predator starves")

	// below the threshold is the same as absent
	below := NewSystem(p, p.InitialNetwork()).Derive([]float64{0.5, 1e-9, 0.5}, 0)
	assert.InDeltaSlice(t, []float64(got), []float64(below), 1e-12)
}

func TestSystemReusesBuffer(t *testing.T) {
	p := build(t, chain, nil)
	sys := NewSystem(p, p.InitialNetwork())
	assert.Equal(t, 3, sys.StateDim())
	first := sys.Derive([]float64{0.5, 0.5, 0.5}, 0)
	second := sys.Derive([]float64{0, 0, 0.5}, 0)
	assert.Equal(t, &first[0], &second[0])
}
