package chart

import (
	"strconv"
	"strings"
)

// Op is a path drawing operation.
type Op int

const (
	OpMoveTo  Op = iota // start the path at To
	OpCurveTo           // cubic curve to To via C1 and C2
)

// String returns the SVG command letter for the operation.
func (o Op) String() string {
	switch o {
	case OpMoveTo:
		return "M"
	case OpCurveTo:
		return "C"
	default:
		return "Op(" + strconv.Itoa(int(o)) + ")"
	}
}

// Command is a single path operation with its coordinates. C1 and C2 are
// only meaningful for OpCurveTo.
type Command struct {
	Op Op
	C1 Point
	C2 Point
	To Point
}

// Path is an ordered list of drawing commands describing one continuous
// curve. The zero value draws nothing.
type Path []Command

// SmoothPath builds a curve through points: a move to the first point, then
// one cubic segment per consecutive pair.
//
// Each segment leaves A horizontally at A's height and arrives at B
// horizontally at B's height, with control points at one and two thirds of
// the horizontal distance. Tangents are therefore flat at every point and
// are not continuous across joins.
//
// Fewer than two points yield an empty path.
func SmoothPath(points []Point) Path {
	if len(points) < 2 {
		return nil
	}

	path := make(Path, 0, len(points))
	path = append(path, Command{Op: OpMoveTo, To: points[0]})

	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		dx := b.X - a.X
		path = append(path, Command{
			Op: OpCurveTo,
			C1: Point{X: a.X + dx/3, Y: a.Y},
			C2: Point{X: a.X + 2*dx/3, Y: b.Y},
			To: b,
		})
	}

	return path
}

// Count returns the number of commands of the given op.
func (p Path) Count(op Op) int {
	n := 0
	for _, c := range p {
		if c.Op == op {
			n++
		}
	}
	return n
}

// String renders the path as SVG path data, e.g.
// "M 40 140 C 140 140, 240 60, 340 60".
func (p Path) String() string {
	var sb strings.Builder
	for i, c := range p {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch c.Op {
		case OpMoveTo:
			sb.WriteString("M ")
			writePair(&sb, c.To)
		case OpCurveTo:
			sb.WriteString("C ")
			writePair(&sb, c.C1)
			sb.WriteString(", ")
			writePair(&sb, c.C2)
			sb.WriteString(", ")
			writePair(&sb, c.To)
		}
	}
	return sb.String()
}

func writePair(sb *strings.Builder, p Point) {
	sb.WriteString(FormatNumber(p.X))
	sb.WriteByte(' ')
	sb.WriteString(FormatNumber(p.Y))
}

// FormatNumber formats f in its shortest decimal form without an exponent.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
