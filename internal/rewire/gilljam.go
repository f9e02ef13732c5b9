package rewire

import (
	"github.com/san-kum/befsim/internal/foodweb"
	"github.com/san-kum/befsim/internal/params"
)

// Gilljam replaces each lost prey with the surviving species most similar to
// it (Gilljam et al. 2015). Novel links pay an efficiency cost.
type Gilljam struct {
	p    *params.Parameters
	opts params.GilljamOptions
}

func (g *Gilljam) Name() params.RewireMethod { return params.RewireGilljam }

func (g *Gilljam) Rewire(net *params.Network, ev Event) {
	before := ev.Before.A
	lost := make(map[int]bool, len(ev.Newly))
	for _, j := range ev.Newly {
		lost[j] = true
	}

	for _, i := range ev.Affected {
		for j, v := range before[i] {
			if v == 0 || !lost[j] || j == i {
				continue
			}
			k, ok := g.replacement(i, j, net, ev)
			if !ok {
				continue
			}
			net.A[i][k] = 1
			net.Novel[i][k] = true
			net.Efficiency[i][k] = g.p.BaseEfficiency(k) * (1 - g.opts.Cost)
		}
		g.setPreference(net, ev, i)
	}
}

// replacement picks the surviving species most similar to lost prey j that i
// does not already eat. Ties are broken at random.
func (g *Gilljam) replacement(i, j int, net *params.Network, ev Event) (int, bool) {
	best := 0.0
	var ties []int
	for k := range net.A {
		if k == i || !ev.alive(k) || net.A[i][k] == 1 {
			continue
		}
		sim := Similarity(ev.Before.A, j, k)
		switch {
		case sim > best:
			best = sim
			ties = append(ties[:0], k)
		case sim == best && sim > 0:
			ties = append(ties, k)
		}
	}
	if len(ties) == 0 {
		return 0, false
	}
	return ties[ev.Rand.Intn(len(ties))], true
}

func (g *Gilljam) setPreference(net *params.Network, ev Event, i int) {
	diet := net.Diet(i)
	if g.opts.PreferenceMethod != "specialist" || len(diet) < 2 {
		net.NormalizePreference(i)
		return
	}

	top := -1.0
	var favoured []int
	for _, j := range diet {
		w := ev.Before.Preference[i][j]
		switch {
		case w > top:
			top = w
			favoured = append(favoured[:0], j)
		case w == top:
			favoured = append(favoured, j)
		}
	}
	fav := favoured[ev.Rand.Intn(len(favoured))]
	rest := (1 - g.opts.SpecialistPrefMag) / float64(len(diet)-1)
	for _, j := range diet {
		net.Preference[i][j] = rest
	}
	net.Preference[i][fav] = g.opts.SpecialistPrefMag
}

// Similarity is the Jaccard index of species a and b over their prey and
// predators combined.
func Similarity(m foodweb.Matrix, a, b int) float64 {
	shared, union := 0, 0
	for k := range m {
		if m[a][k] == 1 || m[b][k] == 1 {
			union++
			if m[a][k] == 1 && m[b][k] == 1 {
				shared++
			}
		}
		if m[k][a] == 1 || m[k][b] == 1 {
			union++
			if m[k][a] == 1 && m[k][b] == 1 {
				shared++
			}
		}
	}
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}
