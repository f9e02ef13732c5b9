package foodweb

import "github.com/san-kum/befsim/internal/dynamo"

// Matrix is a predator-by-prey adjacency matrix.
type Matrix [][]int

// NewMatrix returns an s by s matrix of zeros.
func NewMatrix(s int) Matrix {
	m := make(Matrix, s)
	for i := range m {
		m[i] = make([]int, s)
	}
	return m
}

func (m Matrix) Size() int { return len(m) }

func (m Matrix) Clone() Matrix {
	c := make(Matrix, len(m))
	for i, row := range m {
		c[i] = make([]int, len(row))
		copy(c[i], row)
	}
	return c
}

// Prey lists the columns set in row i.
func (m Matrix) Prey(i int) []int {
	var prey []int
	for j, v := range m[i] {
		if v == 1 {
			prey = append(prey, j)
		}
	}
	return prey
}

// Predators lists the rows set in column j.
func (m Matrix) Predators(j int) []int {
	var preds []int
	for i := range m {
		if m[i][j] == 1 {
			preds = append(preds, i)
		}
	}
	return preds
}

// Float returns the matrix as float64 rows.
func (m Matrix) Float() [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = float64(v)
		}
	}
	return out
}

// Check reports whether a is a well formed food web: non-empty,
// two-dimensional, square and binary.
func Check(a Matrix) error {
	s := len(a)
	if s == 0 {
		return dynamo.Invalidf("matrix is empty")
	}
	for i, row := range a {
		if len(row) != s {
			return dynamo.Invalidf("matrix is not square: row %d has %d columns, expected %d", i, len(row), s)
		}
		for j, v := range row {
			if v != 0 && v != 1 {
				return dynamo.Invalidf("non-binary value %d at (%d,%d)", v, i, j)
			}
		}
	}
	return nil
}

// Links counts the interactions in a.
func Links(a Matrix) int {
	l := 0
	for _, row := range a {
		for _, v := range row {
			l += v
		}
	}
	return l
}

// Connectance is L/S^2.
func Connectance(a Matrix) float64 {
	s := len(a)
	if s == 0 {
		return 0
	}
	return float64(Links(a)) / float64(s*s)
}

// Producers flags species with no prey.
func Producers(a Matrix) []bool {
	p := make([]bool, len(a))
	for i, row := range a {
		p[i] = true
		for _, v := range row {
			if v != 0 {
				p[i] = false
				break
			}
		}
	}
	return p
}
