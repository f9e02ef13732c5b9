package params

import "github.com/san-kum/befsim/internal/foodweb"

// Network is the active adjacency of a run with the coefficients that
// follow it through rewiring. Values are copied, never shared.
type Network struct {
	A          foodweb.Matrix
	Preference [][]float64
	Efficiency [][]float64
	Novel      [][]bool
}

func (n *Network) Size() int { return len(n.A) }

func (n *Network) Clone() *Network {
	c := &Network{
		A:          n.A.Clone(),
		Preference: cloneFloat(n.Preference),
		Efficiency: cloneFloat(n.Efficiency),
		Novel:      make([][]bool, len(n.Novel)),
	}
	for i, row := range n.Novel {
		c.Novel[i] = append([]bool(nil), row...)
	}
	return c
}

// Diet lists the prey of i.
func (n *Network) Diet(i int) []int { return n.A.Prey(i) }

// ClearRow removes every link of consumer i.
func (n *Network) ClearRow(i int) {
	for j := range n.A[i] {
		n.A[i][j] = 0
		n.Preference[i][j] = 0
		n.Efficiency[i][j] = 0
		n.Novel[i][j] = false
	}
}

// ClearColumn removes every link to prey j. Preferences of the affected
// consumers are not renormalised.
func (n *Network) ClearColumn(j int) {
	for i := range n.A {
		n.A[i][j] = 0
		n.Preference[i][j] = 0
		n.Efficiency[i][j] = 0
		n.Novel[i][j] = false
	}
}

// NormalizePreference spreads consumer i's preference uniformly over its
// current diet.
func (n *Network) NormalizePreference(i int) {
	prey := n.Diet(i)
	for j := range n.Preference[i] {
		n.Preference[i][j] = 0
	}
	for _, j := range prey {
		n.Preference[i][j] = 1 / float64(len(prey))
	}
}

func cloneFloat(m [][]float64) [][]float64 {
	c := make([][]float64, len(m))
	for i, row := range m {
		c[i] = append([]float64(nil), row...)
	}
	return c
}

func newFloat(s int) [][]float64 {
	m := make([][]float64, s)
	for i := range m {
		m[i] = make([]float64, s)
	}
	return m
}
