package world

import (
	"math"
	"sort"
)

// Cell is an integer grid coordinate.
type Cell struct {
	X int
	Y int
}

func (c Cell) Add(d Dir) Cell { return Cell{X: c.X + d.DX, Y: c.Y + d.DY} }

// Dir is an orthogonal unit step, or DirNone.
type Dir struct {
	DX int
	DY int
}

var (
	DirNone  = Dir{}
	DirUp    = Dir{DX: 0, DY: -1}
	DirDown  = Dir{DX: 0, DY: 1}
	DirLeft  = Dir{DX: -1, DY: 0}
	DirRight = Dir{DX: 1, DY: 0}
)

// orthogonal is the neighbour expansion order used by every search.
var orthogonal = [4]Dir{DirDown, DirRight, DirUp, DirLeft}

func (d Dir) IsZero() bool { return d == DirNone }

func (d Dir) Opposite() Dir { return Dir{DX: -d.DX, DY: -d.DY} }

func (d Dir) String() string {
	switch d {
	case DirUp:
		return "UP"
	case DirDown:
		return "DOWN"
	case DirLeft:
		return "LEFT"
	case DirRight:
		return "RIGHT"
	default:
		return ""
	}
}

// ParseDir maps the wire names UP/DOWN/LEFT/RIGHT to a direction.
func ParseDir(s string) (Dir, bool) {
	switch s {
	case "UP":
		return DirUp, true
	case "DOWN":
		return DirDown, true
	case "LEFT":
		return DirLeft, true
	case "RIGHT":
		return DirRight, true
	}
	return DirNone, false
}

func dirBetween(from, to Cell) Dir {
	return Dir{DX: to.X - from.X, DY: to.Y - from.Y}
}

// CellSet is an unordered set of cells.
type CellSet map[Cell]struct{}

func NewCellSet(cells ...Cell) CellSet {
	s := make(CellSet, len(cells))
	for _, c := range cells {
		s[c] = struct{}{}
	}
	return s
}

func (s CellSet) Has(c Cell) bool {
	_, ok := s[c]
	return ok
}

func (s CellSet) Add(c Cell) { s[c] = struct{}{} }

func (s CellSet) Remove(c Cell) { delete(s, c) }

// Sorted returns the cells in row-major order (y, then x).
func (s CellSet) Sorted() []Cell {
	out := make([]Cell, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sortCells(out)
	return out
}

func sortCells(cells []Cell) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
}

// Distance is the euclidean distance between two cells.
func Distance(a, b Cell) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
