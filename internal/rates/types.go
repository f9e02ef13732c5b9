package rates

import (
	"fmt"
	"sort"

	"github.com/san-kum/befsim/internal/dynamo"
)

const (
	// Boltzmann is the Boltzmann constant in eV/K.
	Boltzmann = 8.617e-5
	// ReferenceTemperature is 20 degrees Celsius in Kelvin.
	ReferenceTemperature = 293.15
	zeroCelsius          = 273.15
)

type MetabolicType int

const (
	Producer MetabolicType = iota
	Invertebrate
	Vertebrate
)

func (m MetabolicType) String() string {
	switch m {
	case Producer:
		return "producer"
	case Invertebrate:
		return "invertebrate"
	case Vertebrate:
		return "vertebrate"
	default:
		return fmt.Sprintf("MetabolicType(%d)", int(m))
	}
}

type Rate string

const (
	Growth     Rate = "growth"
	Metabolism Rate = "metabolism"
	Attack     Rate = "attack"
	Handling   Rate = "handling"
)

// Pairwise reports whether the rate is defined per consumer-resource pair.
func (r Rate) Pairwise() bool { return r == Attack || r == Handling }

type Model string

const (
	ModelConstant       Model = "constant"
	ModelExtendedEppley Model = "extended_eppley"
	ModelExponentialBA  Model = "exponential_ba"
	ModelExtendedBA     Model = "extended_ba"
	ModelGaussian       Model = "gaussian"
)

func Models() []Model {
	return []Model{ModelConstant, ModelExtendedEppley, ModelExponentialBA, ModelExtendedBA, ModelGaussian}
}

// ParseModel accepts a model name as written in configuration files.
func ParseModel(name string) (Model, error) {
	for _, m := range Models() {
		if string(m) == name {
			return m, nil
		}
	}
	return "", dynamo.Paramf("model", "unknown rate function %q", name)
}

// Subject is what a rate is evaluated for: a species, or a consumer and one
// of its resources.
type Subject struct {
	Mass         float64
	Type         MetabolicType
	ResourceMass float64
	ResourceType MetabolicType
}

func Species(mass float64, t MetabolicType) Subject {
	return Subject{Mass: mass, Type: t}
}

func Pair(consumerMass float64, consumer MetabolicType, resourceMass float64, resource MetabolicType) Subject {
	return Subject{Mass: consumerMass, Type: consumer, ResourceMass: resourceMass, ResourceType: resource}
}

// Function is a thermal response bound to one biological rate.
type Function interface {
	Model() Model
	Rate() Rate
	Params() Params
	Evaluate(s Subject, temperature float64) float64
}

// Params is a named parameter table.
type Params map[string]float64

// get returns the value for name specialised to t, falling back to the
// untyped name.
func (p Params) get(name string, t MetabolicType) float64 {
	if v, ok := p[name+"_"+t.String()]; ok {
		return v
	}
	return p[name]
}

func (p Params) Clone() Params {
	c := make(Params, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
