// Package metrics summarises biomass trajectories.
//
// Summary functions take the time by species biomass matrix of a run and
// look at its last checkpoints only; last <= 0 means the whole trajectory.
package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/befsim/internal/sim"
)

func window(b [][]float64, last int) [][]float64 {
	if last <= 0 || last > len(b) {
		return b
	}
	return b[len(b)-last:]
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	s := 0.0
	for _, v := range x {
		s += v
	}
	return s / float64(len(x))
}

// CoefficientOfVariation is sd/mean with the small sample correction
// (1 + 1/(4n)). A zero mean gives zero.
func CoefficientOfVariation(x []float64) float64 {
	n := len(x)
	if n < 2 {
		return 0
	}
	m := mean(x)
	if m == 0 {
		return 0
	}
	ss := 0.0
	for _, v := range x {
		ss += (v - m) * (v - m)
	}
	sd := math.Sqrt(ss / float64(n-1))
	return (1 + 1/(4*float64(n))) * sd / m
}

// Shannon is the entropy of the positive entries of x taken as proportions.
func Shannon(x []float64) float64 {
	total := 0.0
	for _, v := range x {
		if v > 0 {
			total += v
		}
	}
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, v := range x {
		if v > 0 {
			p := v / total
			h -= p * math.Log(p)
		}
	}
	return h
}

// PopulationBiomass is the mean biomass of each species.
func PopulationBiomass(b [][]float64, last int) []float64 {
	w := window(b, last)
	if len(w) == 0 {
		return nil
	}
	out := make([]float64, len(w[0]))
	for _, row := range w {
		for i, v := range row {
			out[i] += v
		}
	}
	for i := range out {
		out[i] /= float64(len(w))
	}
	return out
}

// TotalBiomass is the mean summed biomass.
func TotalBiomass(b [][]float64, last int) float64 {
	w := window(b, last)
	totals := make([]float64, len(w))
	for k, row := range w {
		for _, v := range row {
			totals[k] += v
		}
	}
	return mean(totals)
}

// PopulationStability is the mean negative coefficient of variation of the
// species whose mean biomass exceeds threshold. Zero is perfectly stable.
func PopulationStability(b [][]float64, last int, threshold float64) float64 {
	w := window(b, last)
	if len(w) == 0 {
		return 0
	}
	var cvs []float64
	series := make([]float64, len(w))
	for i := range w[0] {
		for k, row := range w {
			series[k] = row[i]
		}
		if mean(series) > threshold {
			cvs = append(cvs, -CoefficientOfVariation(series))
		}
	}
	return mean(cvs)
}

// SpeciesRichness is the mean number of species above threshold.
func SpeciesRichness(b [][]float64, last int, threshold float64) float64 {
	w := window(b, last)
	counts := make([]float64, len(w))
	for k, row := range w {
		for _, v := range row {
			if v > threshold {
				counts[k]++
			}
		}
	}
	return mean(counts)
}

// SpeciesPersistence is richness as a fraction of the species pool.
func SpeciesPersistence(b [][]float64, last int, threshold float64) float64 {
	if len(b) == 0 || len(b[0]) == 0 {
		return 0
	}
	return SpeciesRichness(b, last, threshold) / float64(len(b[0]))
}

// FoodwebEvenness is the mean Shannon entropy normalised by the log of the
// number of species present.
func FoodwebEvenness(b [][]float64, last int) float64 {
	w := window(b, last)
	even := make([]float64, len(w))
	for k, row := range w {
		present := 0
		for _, v := range row {
			if v > 0 {
				present++
			}
		}
		if present > 1 {
			even[k] = Shannon(row) / math.Log(float64(present))
		}
	}
	return mean(even)
}

type Summary struct {
	Status      sim.Status `json:"status"`
	Species     int        `json:"species"`
	Richness    float64    `json:"richness"`
	Persistence float64    `json:"persistence"`
	Stability   float64    `json:"stability"`
	Biomass     float64    `json:"total_biomass"`
	Evenness    float64    `json:"evenness"`
	Extinctions int        `json:"extinctions"`
	Rewirings   int        `json:"rewirings"`
}

// Summarize computes every summary over the last checkpoints of res.
func Summarize(res *sim.Result, last int, threshold float64) Summary {
	s := Summary{
		Status:      res.Status,
		Richness:    SpeciesRichness(res.Biomass, last, threshold),
		Persistence: SpeciesPersistence(res.Biomass, last, threshold),
		Stability:   PopulationStability(res.Biomass, last, threshold),
		Biomass:     TotalBiomass(res.Biomass, last),
		Evenness:    FoodwebEvenness(res.Biomass, last),
		Extinctions: len(res.Extinctions),
		Rewirings:   res.Rewirings,
	}
	if len(res.Biomass) > 0 {
		s.Species = len(res.Biomass[0])
	}
	return s
}

// SummaryFields names the scalars Get understands.
var SummaryFields = []string{"richness", "persistence", "stability", "biomass", "evenness", "extinctions", "rewirings"}

// Get returns a summary scalar by name.
func (s Summary) Get(name string) (float64, error) {
	switch name {
	case "richness":
		return s.Richness, nil
	case "persistence":
		return s.Persistence, nil
	case "stability":
		return s.Stability, nil
	case "biomass":
		return s.Biomass, nil
	case "evenness":
		return s.Evenness, nil
	case "extinctions":
		return float64(s.Extinctions), nil
	case "rewirings":
		return float64(s.Rewirings), nil
	}
	return 0, fmt.Errorf("unknown summary field %q", name)
}
