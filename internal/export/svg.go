package export

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/san-kum/befsim/internal/viz"
)

var palette = []string{"#5fd068", "#00a8cc", "#feca57", "#ff6b6b", "#ff9ff3", "#0088ff", "#ffffff"}

type SVGOptions struct {
	Width  int
	Height int
	// Log plots log10 biomass; non-positive values break the line.
	Log bool
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Width: 800, Height: 400}
}

// BiomassSVG writes one polyline per species over time.
func BiomassSVG(w io.Writer, times []float64, biomass [][]float64, opts SVGOptions) error {
	if len(times) != len(biomass) {
		return fmt.Errorf("svg: %d times for %d snapshots", len(times), len(biomass))
	}
	if len(times) < 2 || len(biomass[0]) == 0 {
		return fmt.Errorf("svg: need at least two snapshots")
	}

	value := func(v float64) float64 {
		if !opts.Log {
			return v
		}
		if v <= 0 {
			return math.NaN()
		}
		return math.Log10(v)
	}

	minT, maxT := times[0], times[len(times)-1]
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, row := range biomass {
		for _, v := range row {
			if y := value(v); !math.IsNaN(y) {
				minY = math.Min(minY, y)
				maxY = math.Max(maxY, y)
			}
		}
	}
	if math.IsInf(minY, 1) {
		return fmt.Errorf("svg: nothing to plot")
	}
	spanT, spanY := maxT-minT, maxY-minY
	if spanT == 0 {
		spanT = 1
	}
	if spanY == 0 {
		spanY = 1
	}
	minY -= spanY * 0.05
	spanY *= 1.1

	width, height := float64(opts.Width), float64(opts.Height)
	px := func(t float64) float64 { return (t - minT) / spanT * width }
	py := func(y float64) float64 { return height - (y-minY)/spanY*height }

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, opts.Width, opts.Height, opts.Width, opts.Height)

	for i := range biomass[0] {
		fmt.Fprintf(bw, `<path id="s%d" fill="none" stroke="%s" stroke-width="1.5" d="`, i, palette[i%len(palette)])
		pen := false
		for k, row := range biomass {
			y := value(row[i])
			if math.IsNaN(y) {
				pen = false
				continue
			}
			cmd := "L"
			if !pen {
				cmd = "M"
			}
			fmt.Fprintf(bw, "%s%.1f,%.1f ", cmd, px(times[k]), py(y))
			pen = true
		}
		bw.WriteString("\"/>\n")
	}
	bw.WriteString("</svg>\n")
	return bw.Flush()
}

// CanvasSVG writes every set dot of a canvas as a circle, scale pixels
// apart.
func CanvasSVG(w io.Writer, c *viz.Canvas, scale float64) error {
	dw, dh := c.Dots()
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#5fd068">
`, float64(dw)*scale, float64(dh)*scale, float64(dw)*scale, float64(dh)*scale)

	r := scale * 0.4
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if c.IsSet(x, y) {
				fmt.Fprintf(bw, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
			}
		}
	}
	bw.WriteString("</g>\n</svg>\n")
	return bw.Flush()
}
