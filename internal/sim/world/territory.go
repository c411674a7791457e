package world

func (w *World) systemTerritory() {
	for _, e := range w.reg.order {
		if len(e.Trail) > 0 && e.InTerritory() {
			w.closeTrail(e)
		}
	}
}

// closeTrail converts e's trail and the area it encloses into territory.
// The trail is cleared whatever the outcome.
func (w *World) closeTrail(e *Entity) bool {
	defer e.clearTrail()

	if len(e.Trail) > 2*w.cfg.GridSize {
		return false
	}
	if w.enclosesEntity(e) {
		return false
	}
	interior := fillInterior(e.Trail, e.Territory)
	claimed := make([]Cell, 0, len(e.Trail)+len(interior))
	claimed = append(claimed, e.Trail...)
	claimed = append(claimed, interior...)
	w.claim(e, claimed)
	return true
}

// enclosesEntity is the hook for refusing closures that would swallow another
// entity. It currently reports none, so every closure within the length limit
// proceeds.
func (w *World) enclosesEntity(e *Entity) bool {
	return false
}

// fillInterior returns the cells enclosed by trail, flood-filled from the first
// row-major cell of the trail's bounding box that a ray cast puts inside the
// trail polygon. Trail and territory bound the fill.
func fillInterior(trail []Cell, territory CellSet) []Cell {
	if len(trail) == 0 {
		return nil
	}
	minX, maxX := trail[0].X, trail[0].X
	minY, maxY := trail[0].Y, trail[0].Y
	trailSet := make(CellSet, len(trail))
	for _, c := range trail {
		trailSet.Add(c)
		minX = min(minX, c.X)
		maxX = max(maxX, c.X)
		minY = min(minY, c.Y)
		maxY = max(maxY, c.Y)
	}
	boundary := func(c Cell) bool { return trailSet.Has(c) || territory.Has(c) }

	seed, found := Cell{}, false
	for y := minY; y <= maxY && !found; y++ {
		for x := minX; x <= maxX; x++ {
			c := Cell{X: x, Y: y}
			if !boundary(c) && pointInTrail(c, trail) {
				seed, found = c, true
				break
			}
		}
	}
	if !found {
		return nil
	}

	ceiling := (maxX - minX + 1) * (maxY - minY + 1)
	filled := CellSet{seed: {}}
	out := []Cell{seed}
	for head := 0; head < len(out) && len(out) < ceiling; head++ {
		cur := out[head]
		for _, d := range orthogonal {
			n := cur.Add(d)
			if n.X < minX || n.X > maxX || n.Y < minY || n.Y > maxY {
				continue
			}
			if boundary(n) || filled.Has(n) {
				continue
			}
			filled.Add(n)
			out = append(out, n)
		}
	}
	return out
}

// pointInTrail is an odd-crossing test with a ray cast toward +x against the
// closed polygon through the trail cells.
func pointInTrail(c Cell, trail []Cell) bool {
	n := len(trail)
	px, py := float64(c.X), float64(c.Y)
	inside := false
	for i := 0; i < n; i++ {
		p1 := trail[i]
		p2 := trail[(i+1)%n]
		if (p1.Y > c.Y) == (p2.Y > c.Y) {
			continue
		}
		x1, y1 := float64(p1.X), float64(p1.Y)
		x2, y2 := float64(p2.X), float64(p2.Y)
		if px < (x2-x1)*(py-y1)/(y2-y1)+x1 {
			inside = !inside
		}
	}
	return inside
}

// claim gives cells to e and removes them from every other entity.
func (w *World) claim(e *Entity, cells []Cell) {
	for _, c := range cells {
		e.Territory.Add(c)
	}
	for _, o := range w.reg.order {
		if o.ID == e.ID {
			continue
		}
		for _, c := range cells {
			o.Territory.Remove(c)
		}
	}
}

// resolveTerritoryConflicts leaves every cell with at most one owner. The
// lowest entity id keeps a contested cell.
func (w *World) resolveTerritoryConflicts() int {
	g := w.cfg.GridSize
	owner := make([]uint64, g*g)
	stripped := 0
	for _, e := range w.reg.order {
		for c := range e.Territory {
			if !w.inGrid(c) {
				delete(e.Territory, c)
				stripped++
				continue
			}
			i := c.Y*g + c.X
			if owner[i] != 0 && owner[i] != e.ID {
				delete(e.Territory, c)
				stripped++
				continue
			}
			owner[i] = e.ID
		}
	}
	return stripped
}
