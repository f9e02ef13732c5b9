package rewire

import (
	"math"
	"sort"

	"github.com/san-kum/befsim/internal/params"
)

// ADBM rewires with the allometric diet breadth model of Petchey et al.
// (2008): prey are ranked by energy per handling time and added while the
// expected intake rate keeps rising.
type ADBM struct {
	p    *params.Parameters
	opts params.ADBMOptions
}

func (a *ADBM) Name() params.RewireMethod { return params.RewireADBM }

func (a *ADBM) Rewire(net *params.Network, ev Event) {
	for _, i := range ev.Affected {
		setDiet(a.p, net, ev.Before, i, a.Diet(i, ev))
	}
}

type candidate struct {
	j      int
	energy float64
	rate   float64
	handle float64
}

// Diet is the optimal diet of consumer i among surviving species, in order of
// decreasing profitability.
func (a *ADBM) Diet(i int, ev Event) []int {
	m := a.p.BodyMass
	o := a.opts

	var cands []candidate
	for j := range m {
		if j == i || !ev.alive(j) {
			continue
		}
		h := a.handling(m[i], m[j])
		if math.IsInf(h, 1) || h <= 0 {
			continue
		}
		density := o.N * math.Pow(m[j], o.Ni)
		if o.Nmethod == "biomass" {
			density = ev.Biomass[j]
		}
		c := candidate{
			j:      j,
			energy: o.E * m[j],
			rate:   o.A * math.Pow(m[i], o.Ai) * math.Pow(m[j], o.Aj) * density,
			handle: h,
		}
		if c.rate <= 0 {
			continue
		}
		cands = append(cands, c)
	}
	sort.SliceStable(cands, func(x, y int) bool {
		return cands[x].energy/cands[x].handle > cands[y].energy/cands[y].handle
	})

	var diet []int
	gain, cost, best := 0.0, 0.0, 0.0
	for _, c := range cands {
		g := gain + c.rate*c.energy
		h := cost + c.rate*c.handle
		intake := g / (1 + h)
		if intake <= best {
			break
		}
		gain, cost, best = g, h, intake
		diet = append(diet, c.j)
	}
	return diet
}

func (a *ADBM) handling(mi, mj float64) float64 {
	o := a.opts
	if o.Hmethod == "power" {
		return o.H * math.Pow(mi, o.Hi) * math.Pow(mj, o.Hj)
	}
	ratio := mj / mi
	if ratio >= o.B {
		return math.Inf(1)
	}
	return o.H / (o.B - ratio)
}
