package params

import (
	"github.com/san-kum/befsim/internal/dynamo"
	"github.com/san-kum/befsim/internal/foodweb"
	"github.com/san-kum/befsim/internal/rates"
)

// RewireConfig is the rewiring method with its own options.
type RewireConfig struct {
	Method  RewireMethod
	ADBM    ADBMOptions
	Gilljam GilljamOptions
}

// Parameters is the immutable configuration of a simulation. Pairwise
// coefficients are filled for every consumer row so that links created by
// rewiring need no rebuild.
type Parameters struct {
	S         int
	Web       *foodweb.FoodWeb
	Producers []bool
	Types     []rates.MetabolicType
	Rank      []float64
	BodyMass  []float64

	Growth     []float64
	Metabolism []float64
	Attack     [][]float64
	Handling   [][]float64
	Preference [][]float64
	Efficiency [][]float64

	Productivity Productivity
	K            []float64
	Competition  [][]float64

	H           float64
	C           float64
	Gamma       float64
	ECarnivore  float64
	EHerbivore  float64
	Temperature float64

	Rewire              RewireConfig
	ExtinctionThreshold float64

	Options Options
}

// Build derives parameters for adjacency a. Niche values for rewiring are
// inferred from trophic ranks.
func Build(a foodweb.Matrix, opts Options) (*Parameters, error) {
	if err := foodweb.Check(a); err != nil {
		return nil, err
	}
	ranks, err := foodweb.TrophicRank(a)
	if err != nil {
		return nil, err
	}
	return build(foodweb.InferNiche(a, ranks), ranks, opts)
}

// BuildWeb is Build for a web that already carries niche values.
func BuildWeb(web *foodweb.FoodWeb, opts Options) (*Parameters, error) {
	if web == nil {
		return nil, dynamo.Invalidf("nil food web")
	}
	if err := foodweb.Check(web.A); err != nil {
		return nil, err
	}
	ranks, err := foodweb.TrophicRank(web.A)
	if err != nil {
		return nil, err
	}
	if !web.HasNiche() {
		return build(foodweb.InferNiche(web.A, ranks), ranks, opts)
	}
	return build(web.Clone(), ranks, opts)
}

func build(web *foodweb.FoodWeb, ranks []float64, opts Options) (*Parameters, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s := web.Size()
	for _, l := range []struct {
		field string
		set   bool
		n     int
	}{
		{"bodymass", opts.BodyMass != nil, len(opts.BodyMass)},
		{"dry_mass_293", opts.DryMass293 != nil, len(opts.DryMass293)},
		{"vertebrates", opts.Vertebrates != nil, len(opts.Vertebrates)},
	} {
		if l.set && l.n != s {
			return nil, dynamo.Paramf(l.field, "length %d does not match %d species", l.n, s)
		}
	}
	for _, m := range []struct {
		field string
		v     []float64
	}{
		{"bodymass", opts.BodyMass},
		{"dry_mass_293", opts.DryMass293},
	} {
		for i, x := range m.v {
			if !(x > 0) {
				return nil, dynamo.Paramf(m.field, "species %d: mass must be positive, got %g", i, x)
			}
		}
	}

	p := &Parameters{
		S:                   s,
		Web:                 web,
		Producers:           foodweb.Producers(web.A),
		Rank:                ranks,
		Productivity:        opts.Productivity,
		H:                   opts.H,
		C:                   opts.C,
		Gamma:               opts.Gamma,
		ECarnivore:          opts.ECarnivore,
		EHerbivore:          opts.EHerbivore,
		Temperature:         opts.T,
		ExtinctionThreshold: opts.ExtinctionThreshold,
		Rewire: RewireConfig{
			Method:  opts.RewireMethod,
			ADBM:    opts.ADBM,
			Gilljam: opts.Gilljam,
		},
		Options: opts,
	}

	p.Types = make([]rates.MetabolicType, s)
	for i := range p.Types {
		switch {
		case p.Producers[i]:
			p.Types[i] = rates.Producer
		case len(opts.Vertebrates) > 0 && opts.Vertebrates[i]:
			p.Types[i] = rates.Vertebrate
		default:
			p.Types[i] = rates.Invertebrate
		}
	}
	p.BodyMass = bodyMasses(opts, ranks)

	if err := p.evaluateRates(opts); err != nil {
		return nil, err
	}
	p.setProductivity(opts)
	p.setLinks()
	return p, nil
}

func (p *Parameters) evaluateRates(opts Options) error {
	fns := make(map[rates.Rate]rates.Function, 4)
	for _, r := range []struct {
		field string
		rate  rates.Rate
		rs    RateSpec
	}{
		{"growthrate", rates.Growth, opts.GrowthRate},
		{"metabolicrate", rates.Metabolism, opts.MetabolicRate},
		{"attackrate", rates.Attack, opts.AttackRate},
		{"handlingtime", rates.Handling, opts.HandlingTime},
	} {
		model := r.rs.Model
		if model == "" {
			model = rates.ModelConstant
		}
		if _, err := rates.ParseModel(string(model)); err != nil {
			return dynamo.Paramf(r.field, "unknown rate function %q", model)
		}
		if !rates.Supports(model, r.rate) {
			return dynamo.Paramf(r.field, "rate function %q does not define the %s rate", model, r.rate)
		}
		f, err := rates.New(model, r.rate, overrides(model, r.rate, r.rs.Parameters, opts))
		if err != nil {
			return err
		}
		fns[r.rate] = f
	}

	s, t := p.S, p.Temperature
	p.Growth = make([]float64, s)
	p.Metabolism = make([]float64, s)
	p.Attack = newFloat(s)
	p.Handling = newFloat(s)
	for i := 0; i < s; i++ {
		species := rates.Species(p.BodyMass[i], p.Types[i])
		if p.Producers[i] {
			p.Growth[i] = fns[rates.Growth].Evaluate(species, t)
		}
		p.Metabolism[i] = fns[rates.Metabolism].Evaluate(species, t)
		if p.Producers[i] {
			continue
		}
		for j := 0; j < s; j++ {
			pair := rates.Pair(p.BodyMass[i], p.Types[i], p.BodyMass[j], p.Types[j])
			p.Attack[i][j] = fns[rates.Attack].Evaluate(pair, t)
			p.Handling[i][j] = fns[rates.Handling].Evaluate(pair, t)
		}
	}
	return nil
}

// overrides feeds the scalar model options into the constant rate tables.
// Explicit rate parameters win.
func overrides(model rates.Model, rate rates.Rate, explicit map[string]float64, opts Options) map[string]float64 {
	out := map[string]float64{}
	if model == rates.ModelConstant {
		switch rate {
		case rates.Growth:
			out["r"] = opts.R
		case rates.Attack:
			out["gamma"] = opts.Gamma
			out["h"] = opts.H
			fallthrough
		case rates.Handling:
			out["y_invertebrate"] = opts.YInvertebrate
			out["y_vertebrate"] = opts.YVertebrate
		}
	}
	for k, v := range explicit {
		out[k] = v
	}
	return out
}

func (p *Parameters) setProductivity(opts Options) {
	p.K = make([]float64, p.S)
	np := 0
	for _, prod := range p.Producers {
		if prod {
			np++
		}
	}
	for i, prod := range p.Producers {
		if !prod {
			continue
		}
		p.K[i] = opts.K
		if opts.Productivity == ProductivitySystem {
			p.K[i] = opts.K / float64(np)
		}
	}
	if opts.Productivity != ProductivityCompetitive {
		return
	}
	p.Competition = newFloat(p.S)
	for i := range p.Competition {
		if !p.Producers[i] {
			continue
		}
		for j := range p.Competition[i] {
			if !p.Producers[j] {
				continue
			}
			p.Competition[i][j] = opts.Alpha
			if i == j {
				p.Competition[i][j] = 1
			}
		}
	}
}

func (p *Parameters) setLinks() {
	a := p.Web.A
	p.Preference = newFloat(p.S)
	p.Efficiency = newFloat(p.S)
	for i := range a {
		if p.Producers[i] {
			continue
		}
		n := float64(len(a.Prey(i)))
		for j := range a[i] {
			p.Efficiency[i][j] = p.BaseEfficiency(j)
			if a[i][j] == 1 {
				p.Preference[i][j] = 1 / n
			}
		}
	}
}

// BaseEfficiency is the assimilation efficiency of eating prey j.
func (p *Parameters) BaseEfficiency(j int) float64 {
	if p.Producers[j] {
		return p.EHerbivore
	}
	return p.ECarnivore
}

// InitialNetwork copies the built web into a fresh active network.
func (p *Parameters) InitialNetwork() *Network {
	n := &Network{
		A:          p.Web.A.Clone(),
		Preference: cloneFloat(p.Preference),
		Efficiency: newFloat(p.S),
		Novel:      make([][]bool, p.S),
	}
	for i := range n.A {
		n.Novel[i] = make([]bool, p.S)
		for j, v := range n.A[i] {
			if v == 1 {
				n.Efficiency[i][j] = p.Efficiency[i][j]
			}
		}
	}
	return n
}
