package world

// RequestDirection applies the movement state machine. An idle entity takes
// any direction and starts moving. A moving entity standing in its own
// territory may turn freely; outside it only an exact reversal is refused.
func (w *World) RequestDirection(e *Entity, d Dir) bool {
	if d.IsZero() {
		return false
	}
	switch {
	case !e.Moving:
		e.Dir = d
		e.Moving = true
	case e.InTerritory():
		e.Dir = d
	case d == e.Dir.Opposite():
		return false
	default:
		e.Dir = d
	}
	return true
}

func (w *World) inGrid(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < w.cfg.GridSize && c.Y < w.cfg.GridSize
}

// InLethalZone reports whether c is on the outermost ring.
func (w *World) InLethalZone(c Cell) bool {
	g := w.cfg.GridSize
	return c.X == 0 || c.Y == 0 || c.X == g-1 || c.Y == g-1
}

// ValidMove is the planning predicate: strict interior, not on e's own trail.
func (w *World) ValidMove(e *Entity, c Cell) bool {
	g := w.cfg.GridSize
	if c.X < 1 || c.Y < 1 || c.X >= g-1 || c.Y >= g-1 {
		return false
	}
	return !e.InTrail(c)
}

// advance moves e one step along its direction. An off-grid destination halts
// the entity in place.
func (w *World) advance(e *Entity) {
	if !e.Moving || e.Dir.IsZero() {
		return
	}
	next := e.Pos.Add(e.Dir)
	if !w.inGrid(next) {
		e.Moving = false
		return
	}
	e.Pos = next
	if !e.Territory.Has(next) {
		e.appendTrail(next)
	}
}

// systemMovement runs every controller and steps every entity once, in id order.
func (w *World) systemMovement() {
	for _, e := range w.reg.All() {
		if w.reg.Get(e.ID) == nil {
			continue
		}
		w.stepEntity(e)
	}
}

func (w *World) stepEntity(e *Entity) {
	if e.ctrl != nil {
		e.ctrl.Decide(w, e)
	}
	if !e.Moving || e.Dir.IsZero() {
		return
	}
	next := e.Pos.Add(e.Dir)
	if e.ctrl != nil && !e.ctrl.Permits(w, e, next) {
		e.ctrl.Blocked(w, e)
		return
	}
	w.advance(e)
}
