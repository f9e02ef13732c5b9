package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Green, asciigraph.Cyan, asciigraph.Yellow, asciigraph.Magenta,
	asciigraph.Orange, asciigraph.Blue, asciigraph.Red,
}

type PlotOptions struct {
	Width   int
	Height  int
	Caption string
	// Species selects the series to draw; empty means all of them.
	Species []int
	// Log plots log10 of biomass; zero biomass is left out.
	Log bool
	// Total adds the summed biomass as an extra series.
	Total bool
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{Width: 72, Height: 16, Caption: "biomass"}
}

// PlotBiomass draws species trajectories from a time by species matrix.
func PlotBiomass(biomass [][]float64, opts PlotOptions) string {
	if len(biomass) == 0 || len(biomass[0]) == 0 {
		return ""
	}
	species := opts.Species
	if len(species) == 0 {
		species = make([]int, len(biomass[0]))
		for i := range species {
			species[i] = i
		}
	}

	var (
		series  [][]float64
		legends []string
		colors  []asciigraph.AnsiColor
	)
	for n, i := range species {
		if i < 0 || i >= len(biomass[0]) {
			continue
		}
		s := make([]float64, len(biomass))
		for k, row := range biomass {
			s[k] = scale(row[i], opts.Log)
		}
		series = append(series, s)
		legends = append(legends, fmt.Sprintf("s%d", i))
		colors = append(colors, seriesColors[n%len(seriesColors)])
	}
	if opts.Total {
		s := make([]float64, len(biomass))
		for k, row := range biomass {
			total := 0.0
			for _, v := range row {
				total += v
			}
			s[k] = scale(total, opts.Log)
		}
		series = append(series, s)
		legends = append(legends, "total")
		colors = append(colors, asciigraph.White)
	}
	if len(series) == 0 || !plottable(series) {
		return ""
	}

	caption := opts.Caption
	if opts.Log {
		caption += " (log10)"
	}
	graphOpts := []asciigraph.Option{
		asciigraph.Height(opts.Height),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
	}
	if opts.Width > 0 {
		graphOpts = append(graphOpts, asciigraph.Width(opts.Width))
	}
	if len(series) <= len(seriesColors)+1 {
		graphOpts = append(graphOpts, asciigraph.SeriesLegends(legends...))
	}
	return asciigraph.PlotMany(series, graphOpts...)
}

// PlotSeries draws one scalar history, used for the live total biomass.
func PlotSeries(values []float64, width, height int, caption string) string {
	if len(values) < 2 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Green),
	)
}

func scale(v float64, log bool) float64 {
	if !log {
		return v
	}
	if v <= 0 {
		return math.NaN()
	}
	return math.Log10(v)
}

func plottable(series [][]float64) bool {
	for _, s := range series {
		for _, v := range s {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				return true
			}
		}
	}
	return false
}
