// Package dynamics evaluates the bioenergetic consumer-resource equations.
//
// Producers grow logistically and are eaten; consumers assimilate what they
// eat, pay a metabolic cost and are eaten in turn. Feeding follows a
// generalized functional response with Hill exponent h and predator
// interference c:
//
//	F_ij = w_ij a_ij B_j^h / (1 + c B_i + a_ij sum_k w_ik h_ik B_k^h)
package dynamics

import (
	"math"

	"github.com/san-kum/befsim/internal/dynamo"
	"github.com/san-kum/befsim/internal/params"
)

// System adapts the equations to dynamo.System. It owns scratch buffers, so
// one System serves one run.
type System struct {
	p       *params.Parameters
	net     *params.Network
	extinct []bool

	b     []float64
	bh    []float64
	alive []bool
	out   dynamo.State
}

func NewSystem(p *params.Parameters, net *params.Network) *System {
	return &System{
		p:       p,
		net:     net,
		extinct: make([]bool, p.S),
		b:       make([]float64, p.S),
		bh:      make([]float64, p.S),
		alive:   make([]bool, p.S),
		out:     make(dynamo.State, p.S),
	}
}

func (s *System) StateDim() int { return s.p.S }

// SetNetwork swaps the active network after rewiring.
func (s *System) SetNetwork(net *params.Network) { s.net = net }

func (s *System) Network() *params.Network { return s.net }

// SetExtinct replaces the extinct mask.
func (s *System) SetExtinct(mask []bool) { copy(s.extinct, mask) }

// load clips x into the scratch biomass and marks which species take part.
func (s *System) load(x []float64) {
	h := s.p.H
	for i, v := range x {
		if v < 0 || math.IsNaN(v) {
			v = 0
		}
		s.alive[i] = !s.extinct[i] && v > s.p.ExtinctionThreshold
		if !s.alive[i] {
			v = 0
		}
		s.b[i] = v
		if h == 1 {
			s.bh[i] = v
		} else {
			s.bh[i] = math.Pow(v, h)
		}
	}
}

// Derive returns dB/dt. The returned slice is reused by the next call.
func (s *System) Derive(x dynamo.State, _ float64) dynamo.State {
	s.load(x)
	p, net := s.p, s.net
	for i := range s.out {
		s.out[i] = 0
	}

	for i := 0; i < p.S; i++ {
		if p.Producers[i] {
			if s.alive[i] {
				s.out[i] += s.growth(i)
			}
			continue
		}
		if !s.alive[i] {
			continue
		}

		handled := 0.0
		for k, v := range net.A[i] {
			if v == 1 && s.alive[k] {
				handled += net.Preference[i][k] * p.Handling[i][k] * s.bh[k]
			}
		}

		bi := s.b[i]
		for j, v := range net.A[i] {
			if v == 0 || !s.alive[j] {
				continue
			}
			a := p.Attack[i][j]
			denom := 1 + p.C*bi + a*handled
			if denom <= 0 || math.IsInf(denom, 0) {
				continue
			}
			f := net.Preference[i][j] * a * s.bh[j] / denom
			eaten := f * bi
			s.out[i] += net.Efficiency[i][j] * eaten
			s.out[j] -= eaten
		}
		s.out[i] -= p.Metabolism[i] * bi
	}

	for i := range s.out {
		if !s.alive[i] {
			s.out[i] = 0
		}
	}
	return s.out
}

// growth is the logistic production of producer i.
func (s *System) growth(i int) float64 {
	p := s.p
	k := p.K[i]
	if k <= 0 {
		return 0
	}
	crowd := s.b[i]
	if p.Productivity == params.ProductivityCompetitive {
		crowd = 0
		for j, alpha := range p.Competition[i] {
			crowd += alpha * s.b[j]
		}
	}
	return p.Growth[i] * s.b[i] * (1 - crowd/k)
}

// Derivative evaluates dB/dt once, with no species marked extinct.
func Derivative(b []float64, t float64, p *params.Parameters, net *params.Network) []float64 {
	return NewSystem(p, net).Derive(b, t).Clone()
}

// ProducerGrowth is the total logistic production at biomass b.
func ProducerGrowth(b []float64, p *params.Parameters, net *params.Network) float64 {
	s := NewSystem(p, net)
	s.load(b)
	total := 0.0
	for i, prod := range p.Producers {
		if prod && s.alive[i] {
			total += s.growth(i)
		}
	}
	return total
}

// MetabolicLoss is the total maintenance cost of consumers at biomass b.
func MetabolicLoss(b []float64, p *params.Parameters) float64 {
	total := 0.0
	for i, prod := range p.Producers {
		if !prod && b[i] > p.ExtinctionThreshold {
			total += p.Metabolism[i] * b[i]
		}
	}
	return total
}
