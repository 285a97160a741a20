package domain

// PathOp is a single path construction command.
type PathOp int

// Path commands.
const (
	PathMoveTo PathOp = iota
	PathLineTo
	PathQuadTo
	PathClose
)

// PathSegment is one command with its points. LineTo and MoveTo use X, Y.
// QuadTo uses CX, CY as the control point and X, Y as the end point.
type PathSegment struct {
	Op     PathOp
	CX, CY float64
	X, Y   float64
}

// Path is a retained vector path in logical coordinates, built with the same
// verbs as a 2D canvas context.
type Path struct {
	Segments []PathSegment
}

// MoveTo starts a new sub-path.
func (p *Path) MoveTo(x, y float64) {
	p.Segments = append(p.Segments, PathSegment{Op: PathMoveTo, X: x, Y: y})
}

// LineTo adds a straight segment.
func (p *Path) LineTo(x, y float64) {
	p.Segments = append(p.Segments, PathSegment{Op: PathLineTo, X: x, Y: y})
}

// QuadTo adds a quadratic curve through control point (cx, cy).
func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.Segments = append(p.Segments, PathSegment{Op: PathQuadTo, CX: cx, CY: cy, X: x, Y: y})
}

// Close closes the current sub-path.
func (p *Path) Close() {
	p.Segments = append(p.Segments, PathSegment{Op: PathClose})
}

// Reset empties the path while keeping its storage.
func (p *Path) Reset() {
	p.Segments = p.Segments[:0]
}

// Len returns the number of segments.
func (p *Path) Len() int {
	return len(p.Segments)
}
