// Package grid provides the 2D pixel array type used throughout the
// calibration pipeline, together with the distribution-extreme statistics
// shared by sigma rejection and column-defect detection.
package grid

import "fmt"

// Shape describes the dimensions of a pixel grid.
type Shape struct {
	Rows int
	Cols int
}

// String returns "RxC" for log output.
func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Cols)
}

// Grid is a dense row-major 2D array of pixel values.
// Pix holds Rows*Cols values; the pixel at (r, c) is Pix[r*Cols+c].
type Grid struct {
	Rows int
	Cols int
	Pix  []float64
}

// New creates a zero-filled grid with the given dimensions.
func New(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", rows, cols)
	}
	return &Grid{
		Rows: rows,
		Cols: cols,
		Pix:  make([]float64, rows*cols),
	}, nil
}

// FromSlice wraps a row-major slice as a grid. The slice is not copied.
func FromSlice(rows, cols int, pix []float64) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", rows, cols)
	}
	if len(pix) != rows*cols {
		return nil, fmt.Errorf("grid data length %d does not match %dx%d", len(pix), rows, cols)
	}
	return &Grid{Rows: rows, Cols: cols, Pix: pix}, nil
}

// Constant creates a grid with every pixel set to v.
func Constant(rows, cols int, v float64) (*Grid, error) {
	g, err := New(rows, cols)
	if err != nil {
		return nil, err
	}
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g, nil
}

// Shape returns the grid dimensions.
func (g *Grid) Shape() Shape {
	return Shape{Rows: g.Rows, Cols: g.Cols}
}

// At returns the pixel at row r, column c.
func (g *Grid) At(r, c int) float64 {
	return g.Pix[r*g.Cols+c]
}

// Set assigns the pixel at row r, column c.
func (g *Grid) Set(r, c int, v float64) {
	g.Pix[r*g.Cols+c] = v
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	pix := make([]float64, len(g.Pix))
	copy(pix, g.Pix)
	return &Grid{Rows: g.Rows, Cols: g.Cols, Pix: pix}
}

// SameShape reports whether o has the same dimensions as g.
func (g *Grid) SameShape(o *Grid) bool {
	return g.Rows == o.Rows && g.Cols == o.Cols
}

// TrimTrailing returns a copy with the trailing rover rows and cover columns
// removed. The extents must leave at least one row and one column.
func (g *Grid) TrimTrailing(rover, cover int) (*Grid, error) {
	if rover < 0 || cover < 0 {
		return nil, fmt.Errorf("overscan extents must be non-negative, got rover=%d cover=%d", rover, cover)
	}
	if rover >= g.Rows || cover >= g.Cols {
		return nil, fmt.Errorf("overscan extents rover=%d cover=%d exceed grid %s", rover, cover, g.Shape())
	}
	rows := g.Rows - rover
	cols := g.Cols - cover
	out, _ := New(rows, cols)
	for r := 0; r < rows; r++ {
		copy(out.Pix[r*cols:(r+1)*cols], g.Pix[r*g.Cols:r*g.Cols+cols])
	}
	return out, nil
}

// ColumnSums returns the per-column sum across all rows.
func (g *Grid) ColumnSums() []float64 {
	sums := make([]float64, g.Cols)
	for r := 0; r < g.Rows; r++ {
		row := g.Pix[r*g.Cols : (r+1)*g.Cols]
		for c, v := range row {
			sums[c] += v
		}
	}
	return sums
}
