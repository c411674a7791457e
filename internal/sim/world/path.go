package world

// ShortestPath runs a breadth-first search from `from` over cells e may move
// onto and returns the steps to the first cell satisfying goal, excluding
// `from` itself. It returns nil when from already satisfies goal or no goal
// cell is reachable. At most GridSize*GridSize cells are dequeued.
func (w *World) ShortestPath(e *Entity, from Cell, goal func(Cell) bool) []Cell {
	if goal(from) || !w.inGrid(from) {
		return nil
	}
	g := w.cfg.GridSize
	idx := func(c Cell) int { return c.Y*g + c.X }

	parent := make([]int32, g*g)
	for i := range parent {
		parent[i] = -1
	}
	start := idx(from)
	parent[start] = int32(start)

	maxNodes := g * g
	queue := make([]Cell, 0, 256)
	queue = append(queue, from)
	for head := 0; head < len(queue) && head < maxNodes; head++ {
		cur := queue[head]
		for _, d := range orthogonal {
			n := cur.Add(d)
			if !w.ValidMove(e, n) {
				continue
			}
			ni := idx(n)
			if parent[ni] >= 0 {
				continue
			}
			parent[ni] = int32(idx(cur))
			if goal(n) {
				return unwindPath(parent, g, start, ni)
			}
			queue = append(queue, n)
		}
	}
	return nil
}

func unwindPath(parent []int32, g, start, end int) []Cell {
	var rev []Cell
	for i := end; i != start; i = int(parent[i]) {
		rev = append(rev, Cell{X: i % g, Y: i / g})
	}
	out := make([]Cell, len(rev))
	for i, c := range rev {
		out[len(rev)-1-i] = c
	}
	return out
}

// PathTo is ShortestPath toward a single target cell.
func (w *World) PathTo(e *Entity, target Cell) []Cell {
	return w.ShortestPath(e, e.Pos, func(c Cell) bool { return c == target })
}
