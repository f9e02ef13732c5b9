package rewire

import (
	"math"

	"github.com/san-kum/befsim/internal/params"
)

// Staniczenko gives an affected consumer every surviving species inside its
// original niche range (Staniczenko et al. 2010), or the survivor nearest the
// range centre when the range is empty.
type Staniczenko struct {
	p *params.Parameters
}

func (s *Staniczenko) Name() params.RewireMethod { return params.RewireStaniczenko }

func (s *Staniczenko) Rewire(net *params.Network, ev Event) {
	for _, i := range ev.Affected {
		setDiet(s.p, net, ev.Before, i, s.Diet(i, ev))
	}
}

func (s *Staniczenko) Diet(i int, ev Event) []int {
	web := s.p.Web
	lo := web.Centre[i] - web.Range[i]/2
	hi := web.Centre[i] + web.Range[i]/2

	var diet []int
	for k, n := range web.Niche {
		if k != i && ev.alive(k) && n >= lo && n <= hi {
			diet = append(diet, k)
		}
	}
	if len(diet) > 0 {
		return diet
	}

	best := math.Inf(1)
	var ties []int
	for k, n := range web.Niche {
		if k == i || !ev.alive(k) {
			continue
		}
		d := math.Abs(n - web.Centre[i])
		switch {
		case d < best:
			best = d
			ties = append(ties[:0], k)
		case d == best:
			ties = append(ties, k)
		}
	}
	if len(ties) == 0 {
		return nil
	}
	return []int{ties[ev.Rand.Intn(len(ties))]}
}
