package params

import (
	"github.com/san-kum/befsim/internal/dynamo"
	"github.com/san-kum/befsim/internal/rates"
)

type Productivity string

const (
	ProductivitySpecies     Productivity = "species"
	ProductivitySystem      Productivity = "system"
	ProductivityCompetitive Productivity = "competitive"
)

type RewireMethod string

const (
	RewireNone        RewireMethod = "none"
	RewireADBM        RewireMethod = "ADBM"
	RewireGilljam     RewireMethod = "Gilljam"
	RewireStaniczenko RewireMethod = "stan"
)

// TSR names a temperature-size rule. The empty rule leaves masses unchanged.
type TSR string

const (
	TSRNone            TSR = ""
	TSRMeanAquatic     TSR = "mean_aquatic"
	TSRMeanTerrestrial TSR = "mean_terrestrial"
	TSRMaximum         TSR = "maximum"
	TSRReverse         TSR = "reverse"
)

// RateSpec selects the thermal model of one biological rate and overrides
// some of its default parameters.
type RateSpec struct {
	Model      rates.Model        `yaml:"model" json:"model"`
	Parameters map[string]float64 `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// ADBMOptions configures allometric diet breadth rewiring.
type ADBMOptions struct {
	E       float64 `yaml:"e" json:"e"`
	A       float64 `yaml:"a_adbm" json:"a_adbm"`
	Ai      float64 `yaml:"ai" json:"ai"`
	Aj      float64 `yaml:"aj" json:"aj"`
	B       float64 `yaml:"b" json:"b"`
	H       float64 `yaml:"h_adbm" json:"h_adbm"`
	Hi      float64 `yaml:"hi" json:"hi"`
	Hj      float64 `yaml:"hj" json:"hj"`
	N       float64 `yaml:"n" json:"n"`
	Ni      float64 `yaml:"ni" json:"ni"`
	Hmethod string  `yaml:"Hmethod" json:"Hmethod"`
	Nmethod string  `yaml:"Nmethod" json:"Nmethod"`
}

// GilljamOptions configures similarity based rewiring.
type GilljamOptions struct {
	Cost              float64 `yaml:"cost" json:"cost"`
	SpecialistPrefMag float64 `yaml:"specialistPrefMag" json:"specialistPrefMag"`
	PreferenceMethod  string  `yaml:"preferenceMethod" json:"preferenceMethod"`
}

// Options holds every recognised model option.
type Options struct {
	K             float64      `yaml:"K" json:"K"`
	Z             float64      `yaml:"Z" json:"Z"`
	R             float64      `yaml:"r" json:"r"`
	C             float64      `yaml:"c" json:"c"`
	H             float64      `yaml:"h" json:"h"`
	ECarnivore    float64      `yaml:"e_carnivore" json:"e_carnivore"`
	EHerbivore    float64      `yaml:"e_herbivore" json:"e_herbivore"`
	YInvertebrate float64      `yaml:"y_invertebrate" json:"y_invertebrate"`
	YVertebrate   float64      `yaml:"y_vertebrate" json:"y_vertebrate"`
	Gamma         float64      `yaml:"gamma" json:"gamma"`
	Alpha         float64      `yaml:"alpha" json:"alpha"`
	Productivity  Productivity `yaml:"productivity" json:"productivity"`
	RewireMethod  RewireMethod `yaml:"rewire_method" json:"rewire_method"`

	BodyMass    []float64 `yaml:"bodymass,omitempty" json:"bodymass,omitempty"`
	DryMass293  []float64 `yaml:"dry_mass_293,omitempty" json:"dry_mass_293,omitempty"`
	Vertebrates []bool    `yaml:"vertebrates,omitempty" json:"vertebrates,omitempty"`

	T                   float64 `yaml:"T" json:"T"`
	TSR                 TSR     `yaml:"TSR,omitempty" json:"TSR,omitempty"`
	ExtinctionThreshold float64 `yaml:"extinction_threshold" json:"extinction_threshold"`

	GrowthRate    RateSpec `yaml:"growthrate" json:"growthrate"`
	MetabolicRate RateSpec `yaml:"metabolicrate" json:"metabolicrate"`
	AttackRate    RateSpec `yaml:"attackrate" json:"attackrate"`
	HandlingTime  RateSpec `yaml:"handlingtime" json:"handlingtime"`

	ADBM    ADBMOptions    `yaml:"adbm" json:"adbm"`
	Gilljam GilljamOptions `yaml:"gilljam" json:"gilljam"`
}

func DefaultADBMOptions() ADBMOptions {
	return ADBMOptions{
		E: 1, A: 0.0189, Ai: -0.491, Aj: -0.465, B: 0.401,
		H: 1, Hi: 1, Hj: 1, N: 1, Ni: 0.75,
		Hmethod: "ratio", Nmethod: "original",
	}
}

func DefaultGilljamOptions() GilljamOptions {
	return GilljamOptions{Cost: 0, SpecialistPrefMag: 0.9, PreferenceMethod: "generalist"}
}

func DefaultOptions() Options {
	constant := func() RateSpec { return RateSpec{Model: rates.ModelConstant} }
	return Options{
		K:                   1,
		Z:                   1,
		R:                   1,
		C:                   0,
		H:                   1,
		ECarnivore:          0.85,
		EHerbivore:          0.45,
		YInvertebrate:       8,
		YVertebrate:         4,
		Gamma:               0.5,
		Alpha:               1,
		Productivity:        ProductivitySpecies,
		RewireMethod:        RewireNone,
		T:                   rates.ReferenceTemperature,
		ExtinctionThreshold: 1e-6,
		GrowthRate:          constant(),
		MetabolicRate:       constant(),
		AttackRate:          constant(),
		HandlingTime:        constant(),
		ADBM:                DefaultADBMOptions(),
		Gilljam:             DefaultGilljamOptions(),
	}
}

// Validate checks everything that does not depend on the food web.
func (o Options) Validate() error {
	positive := []struct {
		field string
		v     float64
	}{
		{"K", o.K}, {"Z", o.Z}, {"gamma", o.Gamma}, {"h", o.H}, {"T", o.T},
	}
	for _, p := range positive {
		if !(p.v > 0) {
			return dynamo.Paramf(p.field, "must be positive, got %g", p.v)
		}
	}
	for _, l := range []struct {
		field string
		empty bool
	}{
		{"bodymass", o.BodyMass != nil && len(o.BodyMass) == 0},
		{"dry_mass_293", o.DryMass293 != nil && len(o.DryMass293) == 0},
		{"vertebrates", o.Vertebrates != nil && len(o.Vertebrates) == 0},
	} {
		if l.empty {
			return dynamo.Paramf(l.field, "empty list; omit the key instead")
		}
	}
	if o.C < 0 {
		return dynamo.Paramf("c", "must be non-negative, got %g", o.C)
	}
	if o.ExtinctionThreshold < 0 {
		return dynamo.Paramf("extinction_threshold", "must be non-negative, got %g", o.ExtinctionThreshold)
	}

	switch o.Productivity {
	case ProductivitySpecies, ProductivitySystem, ProductivityCompetitive:
	default:
		return dynamo.Paramf("productivity", "unsupported mode %q (species, system, competitive)", o.Productivity)
	}

	switch o.TSR {
	case TSRNone, TSRMeanAquatic, TSRMeanTerrestrial, TSRMaximum, TSRReverse:
	default:
		return dynamo.Paramf("TSR", "unknown temperature-size rule %q", o.TSR)
	}

	switch o.RewireMethod {
	case RewireNone, RewireStaniczenko:
	case RewireADBM:
		if o.ADBM.Hmethod != "ratio" && o.ADBM.Hmethod != "power" {
			return dynamo.Paramf("Hmethod", "must be ratio or power, got %q", o.ADBM.Hmethod)
		}
		if o.ADBM.Nmethod != "original" && o.ADBM.Nmethod != "biomass" {
			return dynamo.Paramf("Nmethod", "must be original or biomass, got %q", o.ADBM.Nmethod)
		}
	case RewireGilljam:
		g := o.Gilljam
		if g.PreferenceMethod != "generalist" && g.PreferenceMethod != "specialist" {
			return dynamo.Paramf("preferenceMethod", "must be generalist or specialist, got %q", g.PreferenceMethod)
		}
		if g.Cost < 0 || g.Cost > 1 {
			return dynamo.Paramf("cost", "must be in [0, 1], got %g", g.Cost)
		}
		if g.SpecialistPrefMag < 0 || g.SpecialistPrefMag > 1 {
			return dynamo.Paramf("specialistPrefMag", "must be in [0, 1], got %g", g.SpecialistPrefMag)
		}
	default:
		return dynamo.Paramf("rewire_method", "unsupported method %q (none, ADBM, Gilljam, stan)", o.RewireMethod)
	}
	return nil
}
