package world

// ownerGrid returns the owner id of every cell in row-major order, 0 when
// unowned. After the conflict pass each cell has at most one owner.
func (w *World) ownerGrid() []uint64 {
	g := w.cfg.GridSize
	out := make([]uint64, g*g)
	for _, e := range w.reg.order {
		for c := range e.Territory {
			if w.inGrid(c) && out[c.Y*g+c.X] == 0 {
				out[c.Y*g+c.X] = e.ID
			}
		}
	}
	return out
}
