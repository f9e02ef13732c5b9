package params

import (
	"math"

	"github.com/san-kum/befsim/internal/rates"
)

// DryToWet is the wet to dry mass ratio of aquatic invertebrates.
const DryToWet = 6.5

// percentChange is the percent mass change per degree Celsius for a dry mass.
func percentChange(rule TSR, dry float64) float64 {
	switch rule {
	case TSRMeanAquatic:
		return -3.90 - 0.53*math.Log10(dry)
	case TSRMeanTerrestrial:
		return -1.72 + 0.54*math.Log10(dry)
	case TSRMaximum:
		return -8
	case TSRReverse:
		return 4
	}
	return 0
}

// SizeAt scales a mass measured at 293.15 K to temperature t.
func SizeAt(rule TSR, mass, t float64) float64 {
	if rule == TSRNone {
		return mass
	}
	pcm := percentChange(rule, mass)
	return mass * math.Exp(math.Log10(pcm/100+1)*(t-rates.ReferenceTemperature))
}

// bodyMasses resolves masses in priority order: explicit body masses, dry
// masses at 293.15 K, then the consumer-resource ratio Z^(rank-1).
func bodyMasses(opts Options, ranks []float64) []float64 {
	s := len(ranks)
	m := make([]float64, s)
	switch {
	case len(opts.BodyMass) > 0:
		copy(m, opts.BodyMass)
	case len(opts.DryMass293) > 0:
		for i, dry := range opts.DryMass293 {
			m[i] = DryToWet * SizeAt(opts.TSR, dry, opts.T)
		}
	default:
		for i, r := range ranks {
			m[i] = SizeAt(opts.TSR, math.Pow(opts.Z, r-1), opts.T)
		}
	}
	return m
}
