package rates

import "math"

var (
	allTypes      = []MetabolicType{Producer, Invertebrate, Vertebrate}
	consumerTypes = []MetabolicType{Invertebrate, Vertebrate}
)

// byType expands untyped values into one key per metabolic type.
func byType(values Params, types ...MetabolicType) Params {
	p := make(Params, len(values)*len(types))
	for k, v := range values {
		for _, t := range types {
			p[k+"_"+t.String()] = v
		}
	}
	return p
}

func merge(tables ...Params) Params {
	out := Params{}
	for _, t := range tables {
		for k, v := range t {
			out[k] = v
		}
	}
	return out
}

// defaults holds the literature parameter tables. A missing entry means the
// model does not support that rate.
var defaults = map[Model]map[Rate]Params{
	// Brose et al. 2006 allometric defaults, no temperature effect.
	ModelConstant: {
		Growth: {"r": 1.0, "beta": -0.25},
		Metabolism: {
			"a_producer": 0.138, "a_invertebrate": 0.314, "a_vertebrate": 0.88,
			"beta": -0.25,
		},
		Handling: {
			"y_invertebrate": 8, "y_vertebrate": 4,
			"a_invertebrate": 0.314, "a_vertebrate": 0.88,
			"beta": -0.25,
		},
		Attack: {
			"y_invertebrate": 8, "y_vertebrate": 4,
			"a_invertebrate": 0.314, "a_vertebrate": 0.88,
			"beta": -0.25, "gamma": 0.5, "h": 1,
		},
	},
	// Bernhardt et al. 2018, after Eppley 1972.
	ModelExtendedEppley: {
		Growth: {
			"beta": -0.25, "maxrate_0": 0.81, "eppley_exponent": 0.0631, "z": 298.15, "range": 35,
		},
		Metabolism: byType(Params{
			"beta": -0.25, "maxrate_0": 0.81, "eppley_exponent": 0.0631, "z": 298.15, "range": 35,
		}, allTypes...),
	},
	// Savage et al. 2004, Ehnes et al. 2011, Rall et al. 2012, Binzer et al. 2012, 2016.
	ModelExponentialBA: {
		Growth: {
			"norm_constant": math.Exp(-15.68), "beta": -0.25, "activation_energy": -0.84, "T0": ReferenceTemperature,
		},
		Metabolism: byType(Params{
			"norm_constant": math.Exp(-16.54), "beta": -0.31, "activation_energy": -0.69, "T0": ReferenceTemperature,
		}, allTypes...),
		Attack: merge(
			byType(Params{"norm_constant": math.Exp(-13.1), "activation_energy": -0.38, "T0": ReferenceTemperature}, consumerTypes...),
			Params{"beta_producer": 0.25, "beta_invertebrate": -0.8, "beta_vertebrate": -0.8},
		),
		Handling: merge(
			byType(Params{"norm_constant": math.Exp(9.66), "activation_energy": 0.26, "T0": ReferenceTemperature}, consumerTypes...),
			Params{"beta_producer": -0.45, "beta_invertebrate": 0.47, "beta_vertebrate": 0.47},
		),
	},
	// Dell et al. 2011, Gillooly et al. 2002, Bideault et al. 2019.
	ModelExtendedBA: {
		Growth: {
			"norm_constant": 18e9, "beta": -0.25, "activation_energy": 0.53,
			"deactivation_energy": 1.15, "T_opt": 298.15,
		},
		Metabolism: byType(Params{
			"norm_constant": 15e9, "beta": -0.25, "activation_energy": 0.53,
			"deactivation_energy": 1.15, "T_opt": 298.15,
		}, allTypes...),
		Attack: merge(
			byType(Params{
				"norm_constant": 5e13, "activation_energy": 0.8,
				"deactivation_energy": 1.15, "T_opt": 298.15,
			}, consumerTypes...),
			byType(Params{"beta": 0.25}, allTypes...),
		),
	},
	// Amarasekare 2015.
	ModelGaussian: {
		Growth: {"norm_constant": 1.0, "T_opt": 298.15, "range": 20, "beta": -0.25},
		Metabolism: merge(
			Params{"norm_constant_producer": 0.2, "norm_constant_invertebrate": 0.35, "norm_constant_vertebrate": 0.9},
			byType(Params{"T_opt": 298.15, "range": 20, "beta": -0.25}, allTypes...),
		),
		Attack: merge(
			byType(Params{"norm_constant": 16, "T_opt": 298.15, "range": 20}, consumerTypes...),
			byType(Params{"beta": -0.25}, allTypes...),
		),
		Handling: merge(
			byType(Params{"norm_constant": 0.125, "T_opt": 298.15, "range": 20}, consumerTypes...),
			byType(Params{"beta": -0.25}, allTypes...),
		),
	},
}

// Supports reports whether model defines rate.
func Supports(model Model, rate Rate) bool {
	_, ok := defaults[model][rate]
	return ok
}
