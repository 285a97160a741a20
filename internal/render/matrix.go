package render

import (
	"math/rand/v2"

	"github.com/tejashwikalptaru/beatviz/internal/ports"
)

const (
	matrixCell  = 14.0
	matrixReset = 0.975
	// basicfont covers ASCII only
	matrixGlyphs = "01ABCDEFGHIJKLMNOPQRSTUVWXYZ$#@%&*+=<>"
)

// Matrix drops one glyph per column, each column's cursor falling faster
// with its magnitude. The cursor slice is only reallocated when the column
// count changes.
type Matrix struct {
	rng     *rand.Rand
	cursors []float64
	allocs  int
}

// NewMatrix creates the matrix simulation.
func NewMatrix(rng *rand.Rand) *Matrix {
	return &Matrix{rng: rng}
}

func matrixColumns(width float64) int {
	return max(1, int(width/matrixCell))
}

// Columns returns the current cursor count.
func (m *Matrix) Columns() int { return len(m.cursors) }

// Allocations returns how many times the cursor slice was allocated.
func (m *Matrix) Allocations() int { return m.allocs }

// Cursor returns column i's row position.
func (m *Matrix) Cursor(i int) float64 { return m.cursors[i] }

// Advance moves each cursor down; past the bottom it restarts at random.
func (m *Matrix) Advance(f *Frame) {
	cols := matrixColumns(f.Width)
	if cols != len(m.cursors) {
		m.cursors = make([]float64, cols)
		m.allocs++
	}
	rows := f.Height/matrixCell + 1
	for i := range m.cursors {
		v := f.Sample(i, cols)
		m.cursors[i] += 0.2 + v*1.2
		if m.cursors[i] > rows && (m.rng.Float64() > matrixReset || m.cursors[i] > 2*rows) {
			m.cursors[i] = 0
		}
	}
}

// Draw implements Renderer. Columns that do not exist yet are skipped.
func (m *Matrix) Draw(s ports.Surface, f *Frame) {
	cols := min(matrixColumns(f.Width), len(m.cursors))
	for i := 0; i < cols; i++ {
		v := f.Sample(i, cols)
		row := int(m.cursors[i])
		g := (i*7 + row) % len(matrixGlyphs)
		s.FillText(matrixGlyphs[g:g+1], float64(i)*matrixCell, float64(row)*matrixCell,
			hsla(0.33, 1, 0.35+0.4*v, 0.5+v))
	}
}
