package foodweb

import (
	"math"
	"math/rand"

	"github.com/san-kum/befsim/internal/dynamo"
)

// ToleranceKind selects how realized connectance is compared to the target.
type ToleranceKind string

const (
	ToleranceAbsolute ToleranceKind = "abs"
	ToleranceRelative ToleranceKind = "rel"
)

// Target is the requested size of a generated web, as a link count or a
// connectance. Use LinkTarget or ConnectanceTarget to build one.
type Target struct {
	links       int
	connectance float64
	byLinks     bool
}

// LinkTarget targets exactly l interactions.
func LinkTarget(l int) Target { return Target{links: l, byLinks: true} }

// ConnectanceTarget targets l = round(c*S^2) interactions.
func ConnectanceTarget(c float64) Target { return Target{connectance: c} }

func (t Target) linksFor(s int) int {
	if t.byLinks {
		return t.links
	}
	return int(math.Round(t.connectance * float64(s*s)))
}

type GenerateOptions struct {
	Tolerance   float64
	Kind        ToleranceKind
	MaxAttempts int
	// Acyclic rejects webs without trophic ranks: diet cycles, and consumers
	// whose only prey is themselves.
	Acyclic bool
}

func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Tolerance:   0.05,
		Kind:        ToleranceAbsolute,
		MaxAttempts: 10000,
	}
}

// FoodWeb is a matrix together with the niche axis it was drawn from.
// Niche, Centre and Range are indexed by species.
type FoodWeb struct {
	A      Matrix
	Niche  []float64
	Centre []float64
	Range  []float64
}

func (w *FoodWeb) Size() int { return len(w.A) }

// HasNiche reports whether niche data is present for every species.
func (w *FoodWeb) HasNiche() bool {
	s := len(w.A)
	return len(w.Niche) == s && len(w.Centre) == s && len(w.Range) == s
}

func (w *FoodWeb) Clone() *FoodWeb {
	return &FoodWeb{
		A:      w.A.Clone(),
		Niche:  append([]float64(nil), w.Niche...),
		Centre: append([]float64(nil), w.Centre...),
		Range:  append([]float64(nil), w.Range...),
	}
}

// Within reports whether actual is close enough to target.
func Within(actual, target, tol float64, kind ToleranceKind) bool {
	if kind == ToleranceRelative {
		return math.Abs(1-actual/target) <= tol
	}
	return math.Abs(actual-target) <= tol
}

// NicheModel draws webs from the Williams-Martinez niche model until the
// realized connectance is within tolerance of the target, or the retry
// budget is spent.
func NicheModel(rng *rand.Rand, s int, target Target, opts GenerateOptions) (*FoodWeb, error) {
	if s < 2 {
		return nil, dynamo.Paramf("S", "need at least 2 species, got %d", s)
	}
	if opts.Kind != ToleranceAbsolute && opts.Kind != ToleranceRelative {
		return nil, dynamo.Paramf("toltype", "unknown tolerance kind %q", opts.Kind)
	}
	if opts.Tolerance < 0 {
		return nil, dynamo.Paramf("tolerance", "must be non-negative, got %g", opts.Tolerance)
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}

	l := target.linksFor(s)
	c := float64(l) / float64(s*s)
	if l < 1 || c >= 0.5 {
		return nil, dynamo.Paramf("connectance", "target connectance %.4f outside (0, 0.5)", c)
	}

	best := math.Inf(1)
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		web := drawNiche(rng, s, c)
		actual := Connectance(web.A)
		if math.Abs(actual-c) < math.Abs(best-c) {
			best = actual
		}
		if !Within(actual, c, opts.Tolerance, opts.Kind) {
			continue
		}
		if opts.Acyclic {
			if _, err := TrophicRank(web.A); err != nil {
				continue
			}
		}
		return web, nil
	}
	return nil, &dynamo.GenerationError{Attempts: opts.MaxAttempts, Target: c, Best: best}
}

func drawNiche(rng *rand.Rand, s int, c float64) *FoodWeb {
	web := &FoodWeb{
		A:      NewMatrix(s),
		Niche:  make([]float64, s),
		Centre: make([]float64, s),
		Range:  make([]float64, s),
	}

	lowest := 0
	for i := 0; i < s; i++ {
		web.Niche[i] = rng.Float64()
		if web.Niche[i] < web.Niche[lowest] {
			lowest = i
		}
	}

	// Range is n_i times a Beta(1, beta) draw, giving E[r] = 2*C*n.
	beta := 1/(2*c) - 1
	for i := 0; i < s; i++ {
		n := web.Niche[i]
		r := n * (1 - math.Pow(1-rng.Float64(), 1/beta))
		if i == lowest {
			r = 0
		}
		web.Range[i] = r
		web.Centre[i] = r/2 + rng.Float64()*(n-r/2)
	}

	for i := 0; i < s; i++ {
		if web.Range[i] == 0 {
			continue
		}
		lo := web.Centre[i] - web.Range[i]/2
		hi := web.Centre[i] + web.Range[i]/2
		for j := 0; j < s; j++ {
			if web.Niche[j] >= lo && web.Niche[j] <= hi {
				web.A[i][j] = 1
			}
		}
	}
	return web
}

// InferNiche attaches a niche axis to a matrix that did not come from the
// niche model. Niche values are trophic ranks rescaled to [0, 1]; each
// consumer's range spans the niche values of its prey.
func InferNiche(a Matrix, ranks []float64) *FoodWeb {
	s := len(a)
	web := &FoodWeb{
		A:      a.Clone(),
		Niche:  make([]float64, s),
		Centre: make([]float64, s),
		Range:  make([]float64, s),
	}

	maxRank := 1.0
	for _, r := range ranks {
		maxRank = math.Max(maxRank, r)
	}
	for i := 0; i < s; i++ {
		if maxRank > 1 {
			web.Niche[i] = (ranks[i] - 1) / (maxRank - 1)
		}
	}

	for i := 0; i < s; i++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, j := range a.Prey(i) {
			lo = math.Min(lo, web.Niche[j])
			hi = math.Max(hi, web.Niche[j])
		}
		if math.IsInf(lo, 1) {
			web.Centre[i] = web.Niche[i]
			continue
		}
		web.Centre[i] = (lo + hi) / 2
		web.Range[i] = hi - lo
	}
	return web
}
