package config

import (
	"sort"

	"github.com/san-kum/befsim/internal/params"
	"github.com/san-kum/befsim/internal/rates"
)

var Presets = map[string]map[string]func() *Config{
	"fixed": {
		"chain": func() *Config {
			c := DefaultConfig()
			c.Network.Matrix = [][]int{{0, 1, 0}, {0, 0, 1}, {0, 0, 0}}
			c.Simulation.Stop = 50
			c.Simulation.Steps = 1000
			c.Simulation.Biomass = []float64{0.5}
			return c
		},
		"omnivory": func() *Config {
			c := DefaultConfig()
			c.Network.Matrix = [][]int{{0, 1, 1}, {0, 0, 1}, {0, 0, 0}}
			c.Model.Z = 10
			c.Simulation.Stop = 200
			c.Simulation.Steps = 1000
			c.Simulation.Biomass = []float64{0.5}
			return c
		},
	},
	"niche": {
		"niche10": func() *Config {
			c := DefaultConfig()
			c.Network.Connectance = 0.3
			c.Network.Tolerance = 0.01
			c.Network.TolType = "rel"
			return c
		},
		"rewire": func() *Config {
			c := DefaultConfig()
			c.Network.Species = 20
			c.Model.Z = 10
			c.Model.RewireMethod = params.RewireGilljam
			c.Simulation.Stop = 1000
			c.Simulation.Steps = 1000
			return c
		},
	},
	"temperature": {
		"warm": func() *Config {
			c := DefaultConfig()
			c.Model.T = 303.15
			c.Model.Z = 10
			c.Model.TSR = params.TSRMeanAquatic
			for _, rs := range []*params.RateSpec{
				&c.Model.GrowthRate, &c.Model.MetabolicRate, &c.Model.AttackRate, &c.Model.HandlingTime,
			} {
				rs.Model = rates.ModelExponentialBA
			}
			return c
		},
		"gaussian": func() *Config {
			c := DefaultConfig()
			c.Model.T = 293.15
			c.Model.Z = 10
			for _, rs := range []*params.RateSpec{
				&c.Model.GrowthRate, &c.Model.MetabolicRate, &c.Model.AttackRate, &c.Model.HandlingTime,
			} {
				rs.Model = rates.ModelGaussian
			}
			return c
		},
	},
}

// GetPreset returns a fresh copy of a preset, or nil.
func GetPreset(group, preset string) *Config {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	fn, ok := groupPresets[preset]
	if !ok {
		return nil
	}
	return fn()
}

// FindPreset looks a preset up by name across groups.
func FindPreset(preset string) *Config {
	for _, group := range ListGroups() {
		if cfg := GetPreset(group, preset); cfg != nil {
			return cfg
		}
	}
	return nil
}

func ListGroups() []string {
	groups := make([]string, 0, len(Presets))
	for g := range Presets {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

func ListPresets(group string) []string {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(groupPresets))
	for name := range groupPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
