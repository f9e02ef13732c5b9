package rates

import (
	"fmt"
	"math"

	"github.com/san-kum/befsim/internal/dynamo"
)

// Defaults returns a copy of the literature parameter table for model and
// rate.
func Defaults(model Model, rate Rate) (Params, error) {
	byRate, ok := defaults[model]
	if !ok {
		return nil, dynamo.Paramf("model", "unknown rate function %q", model)
	}
	p, ok := byRate[rate]
	if !ok {
		return nil, dynamo.Paramf(string(rate), "rate function %q does not define the %s rate", model, rate)
	}
	return p.Clone(), nil
}

// New binds model to rate, applying overrides on top of the defaults.
// Override names must exist in the default table.
func New(model Model, rate Rate, overrides map[string]float64) (Function, error) {
	p, err := Defaults(model, rate)
	if err != nil {
		return nil, err
	}
	for k, v := range overrides {
		if _, ok := p[k]; !ok {
			return nil, dynamo.Paramf(k, "not a parameter of %s %s (known: %v)", model, rate, p.Keys())
		}
		p[k] = v
	}

	b := base{model: model, rate: rate, p: p}
	switch model {
	case ModelConstant:
		return &Constant{b}, nil
	case ModelExtendedEppley:
		return &ExtendedEppley{b}, nil
	case ModelExponentialBA:
		return &ExponentialBA{b}, nil
	case ModelExtendedBA:
		return &ExtendedBA{b}, nil
	case ModelGaussian:
		return &Gaussian{b}, nil
	}
	return nil, dynamo.Paramf("model", "unknown rate function %q", model)
}

// MustNew is New for arguments known to be valid.
func MustNew(model Model, rate Rate, overrides map[string]float64) Function {
	f, err := New(model, rate, overrides)
	if err != nil {
		panic(fmt.Sprintf("rates: %v", err))
	}
	return f
}

type base struct {
	model Model
	rate  Rate
	p     Params
}

func (b base) Model() Model   { return b.model }
func (b base) Rate() Rate     { return b.rate }
func (b base) Params() Params { return b.p.Clone() }

// allometry is M^beta for species rates and Mc^beta_c * Mr^beta_r for
// pairwise rates.
func (b base) allometry(s Subject) float64 {
	q := math.Pow(s.Mass, b.p.get("beta", s.Type))
	if b.rate.Pairwise() {
		q *= math.Pow(s.ResourceMass, b.p.get("beta", s.ResourceType))
	}
	return q
}

// Constant ignores temperature. Handling time is 1/(y x) and attack rate
// 1/(gamma^h * handling), which together give the classic type II response.
type Constant struct{ base }

func (c *Constant) Evaluate(s Subject, _ float64) float64 {
	m := math.Pow(s.Mass, c.p["beta"])
	switch c.rate {
	case Growth:
		return c.p["r"] * m
	case Metabolism:
		return c.p.get("a", s.Type) * m
	case Handling:
		return 1 / (c.p.get("y", s.Type) * c.p.get("a", s.Type) * m)
	case Attack:
		return c.p.get("y", s.Type) * c.p.get("a", s.Type) * m / math.Pow(c.p["gamma"], c.p["h"])
	}
	return 0
}

// ExtendedEppley is negative outside its thermal range.
type ExtendedEppley struct{ base }

func (e *ExtendedEppley) Evaluate(s Subject, temperature float64) float64 {
	t := s.Type
	m0 := e.p.get("maxrate_0", t)
	b := e.p.get("eppley_exponent", t)
	z := e.p.get("z", t)
	width := e.p.get("range", t)

	shape := (temperature - z) / (width / 2)
	return e.allometry(s) * m0 * math.Exp(b*(temperature-zeroCelsius)) * (1 - shape*shape)
}

type ExponentialBA struct{ base }

func (e *ExponentialBA) Evaluate(s Subject, temperature float64) float64 {
	t := s.Type
	q0 := e.p.get("norm_constant", t)
	energy := e.p.get("activation_energy", t)
	t0 := e.p.get("T0", t)
	return q0 * e.allometry(s) * math.Exp(energy*(t0-temperature)/(Boltzmann*t0*temperature))
}

// ExtendedBA is the Johnson-Lewin unimodal extension of the Boltzmann-Arrhenius
// response.
type ExtendedBA struct{ base }

func (e *ExtendedBA) Evaluate(s Subject, temperature float64) float64 {
	t := s.Type
	q0 := e.p.get("norm_constant", t)
	energy := e.p.get("activation_energy", t)
	deact := e.p.get("deactivation_energy", t)
	topt := e.p.get("T_opt", t)

	kt := Boltzmann * temperature
	l := 1 / (1 + math.Exp(-(deact-temperature*(deact/topt+Boltzmann*math.Log(energy/(deact-energy))))/kt))
	return q0 * e.allometry(s) * math.Exp(-energy/kt) * l
}

// Gaussian peaks at T_opt, except handling time which is minimal there.
type Gaussian struct{ base }

func (g *Gaussian) Evaluate(s Subject, temperature float64) float64 {
	t := s.Type
	qopt := g.p.get("norm_constant", t)
	topt := g.p.get("T_opt", t)
	width := g.p.get("range", t)

	sign := -1.0
	if g.rate == Handling {
		sign = 1.0
	}
	d := temperature - topt
	return g.allometry(s) * qopt * math.Exp(sign*d*d/(2*width*width))
}
