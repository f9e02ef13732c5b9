package viz

import (
	"github.com/san-kum/befsim/internal/foodweb"
)

// WebLayout places species on a canvas: x along the niche axis, y by
// trophic level with producers at the bottom.
type WebLayout struct {
	X     []float64
	Level []float64
}

// LayoutWeb uses niche values when the web has them and spreads species
// evenly otherwise. Webs with cycles get a flat layout.
func LayoutWeb(w *foodweb.FoodWeb) WebLayout {
	s := w.Size()
	l := WebLayout{X: make([]float64, s), Level: make([]float64, s)}
	for i := 0; i < s; i++ {
		if w.HasNiche() {
			l.X[i] = w.Niche[i]
		} else if s > 1 {
			l.X[i] = float64(i) / float64(s-1)
		}
		l.Level[i] = 1
	}
	if ranks, err := foodweb.TrophicRank(w.A); err == nil {
		copy(l.Level, ranks)
	}
	return l
}

// RenderWeb is DrawWeb as text.
func RenderWeb(a foodweb.Matrix, layout WebLayout, alive []bool, width, height int) string {
	return DrawWeb(a, layout, alive, width, height).String()
}

// DrawWeb draws the links of a and a node for every species alive.
// A nil alive slice draws every species.
func DrawWeb(a foodweb.Matrix, layout WebLayout, alive []bool, width, height int) *Canvas {
	c := NewCanvas(width, height)
	s := a.Size()
	if s == 0 {
		return c
	}
	dw, dh := c.Dots()

	maxLevel := 1.0
	for _, v := range layout.Level {
		if v > maxLevel {
			maxLevel = v
		}
	}
	px := make([]int, s)
	py := make([]int, s)
	for i := 0; i < s; i++ {
		px[i] = int(layout.X[i] * float64(dw-2))
		y := 0.0
		if maxLevel > 1 {
			y = (layout.Level[i] - 1) / (maxLevel - 1)
		}
		py[i] = int((1 - y) * float64(dh-2))
	}

	isAlive := func(i int) bool { return alive == nil || alive[i] }
	for i := 0; i < s; i++ {
		for j := 0; j < s; j++ {
			if a[i][j] == 1 && isAlive(i) && isAlive(j) {
				c.Line(px[j], py[j], px[i], py[i])
			}
		}
	}
	for i := 0; i < s; i++ {
		if isAlive(i) {
			c.Node(px[i], py[i])
		}
	}
	return c
}
