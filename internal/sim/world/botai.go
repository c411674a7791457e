package world

const (
	trailScanRadius = 3
	pursuitRadius   = 5
	expansionRadius = 5
)

// BotState carries an autonomous entity's personality and cadence counters.
type BotState struct {
	BaseAggression float64

	TrailCheckCounter   int
	TrailCheckThreshold int
	// TrailCheckRadius is re-drawn alongside the threshold; the scan itself
	// always uses trailScanRadius.
	TrailCheckRadius int

	DirChangeCounter   int
	DirChangeThreshold int

	MaxTrailLength int
}

func newBotState(w *World) *BotState {
	return &BotState{
		DirChangeThreshold:  w.randInt(2, 9),
		TrailCheckThreshold: w.randInt(1, 2),
		TrailCheckRadius:    w.randInt(5, 6),
		MaxTrailLength:      w.randInt(6, 18),
		BaseAggression:      0.1 + 0.8*w.rng.Float64(),
	}
}

type botController struct{}

// Decide runs the trail-check cadence, falling back to the direction-change
// cadence, then overrides both when the current heading is about to trap the bot.
func (botController) Decide(w *World, e *Entity) {
	b := e.Bot
	if b == nil {
		return
	}
	b.TrailCheckCounter++
	if b.TrailCheckCounter >= b.TrailCheckThreshold {
		if c, ok := w.nearbyTrail(e); ok {
			w.steerToward(e, c)
			b.TrailCheckCounter = 0
			b.TrailCheckThreshold = w.randInt(4, 5)
			b.TrailCheckRadius = w.randInt(2, 3)
		} else {
			w.tickDirectionChange(e)
		}
	} else {
		w.tickDirectionChange(e)
	}

	if w.aboutToTrap(e) {
		w.planBot(e)
	}
}

func (botController) Permits(w *World, e *Entity, c Cell) bool { return w.ValidMove(e, c) }

// Blocked replans instead of stalling; the new heading is tried next move.
func (botController) Blocked(w *World, e *Entity) { w.planBot(e) }

func (w *World) tickDirectionChange(e *Entity) {
	b := e.Bot
	b.DirChangeCounter++
	if b.DirChangeCounter < b.DirChangeThreshold {
		return
	}
	w.planBot(e)
	b.DirChangeCounter = 0

	switch d := w.reg.NearestDistance(e); {
	case d < 10:
		b.DirChangeThreshold = w.randInt(3, 6)
	case d < 20:
		b.DirChangeThreshold = w.randInt(5, 9)
	default:
		b.DirChangeThreshold = w.randInt(7, 12)
	}
}

// aboutToTrap reports whether one more step along the current heading is
// invalid or would leave at most one valid exit.
func (w *World) aboutToTrap(e *Entity) bool {
	if e.Dir.IsZero() {
		return false
	}
	next := e.Pos.Add(e.Dir)
	if !w.ValidMove(e, next) {
		return true
	}
	exits := 0
	for _, d := range orthogonal {
		if w.ValidMove(e, next.Add(d)) {
			exits++
		}
	}
	return exits <= 1
}

// planBot picks a new heading. Every branch commits at most the first step of
// a breadth-first path; a failed branch falls through to the next.
func (w *World) planBot(e *Entity) {
	if len(e.Trail) > e.Bot.MaxTrailLength {
		if !w.returnToTerritory(e) {
			w.randomDirection(e)
		}
		return
	}

	for _, t := range w.nearbyTrails(e) {
		if w.rng.Float64() < w.aggression(e, t.owner) {
			if w.commitFirstStep(e, w.PathTo(e, t.cell)) {
				return
			}
		}
	}

	if h := w.reg.Human(); h != nil && h.ID != e.ID &&
		Distance(e.Pos, h.Pos) <= float64(w.cfg.ProximityThreshold) &&
		w.rng.Float64() < w.aggression(e, h) {
		if w.commitFirstStep(e, w.PathTo(e, h.Pos)) {
			return
		}
	}

	w.expand(e)
}

// aggression is the chance of pursuing target, capped at 1.
func (w *World) aggression(e, target *Entity) float64 {
	base := e.Bot.BaseAggression
	var a float64
	if target.IsHuman() {
		a = base * w.cfg.BotVsPlayerAggression
		if Distance(e.Pos, target.Pos) <= float64(w.cfg.ProximityThreshold) {
			a *= w.cfg.PlayerProximityFactor
		}
	} else {
		a = base * w.cfg.BotVsBotAggression
	}
	return min(a, 1.0)
}

func (w *World) commitFirstStep(e *Entity, path []Cell) bool {
	if len(path) == 0 {
		return false
	}
	return w.RequestDirection(e, dirBetween(e.Pos, path[0]))
}

// returnToTerritory heads for the nearest own-territory cell, or for the
// nearest exit when already inside.
func (w *World) returnToTerritory(e *Entity) bool {
	if e.InTerritory() {
		for _, d := range orthogonal {
			n := e.Pos.Add(d)
			if w.ValidMove(e, n) && !e.Territory.Has(n) {
				return w.RequestDirection(e, d)
			}
		}
		return false
	}
	return w.commitFirstStep(e, w.ShortestPath(e, e.Pos, e.Territory.Has))
}

// nearbyTrail scans the radius-3 square (x outer, y inner) for the first cell
// on another entity's trail.
func (w *World) nearbyTrail(e *Entity) (Cell, bool) {
	for dx := -trailScanRadius; dx <= trailScanRadius; dx++ {
		for dy := -trailScanRadius; dy <= trailScanRadius; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			c := Cell{X: e.Pos.X + dx, Y: e.Pos.Y + dy}
			if !w.inGrid(c) {
				continue
			}
			if w.reg.TrailOwner(c, e.ID) != nil {
				return c, true
			}
		}
	}
	return Cell{}, false
}

type trailSighting struct {
	cell  Cell
	owner *Entity
}

// nearbyTrails reports, per other entity in id order, the first of its trail
// cells (x outer, y inner) inside the radius-5 square around e.
func (w *World) nearbyTrails(e *Entity) []trailSighting {
	var out []trailSighting
	for _, o := range w.reg.order {
		if o.ID == e.ID || len(o.Trail) == 0 {
			continue
		}
		var best Cell
		found := false
		for _, c := range o.Trail {
			if abs(c.X-e.Pos.X) > pursuitRadius || abs(c.Y-e.Pos.Y) > pursuitRadius {
				continue
			}
			if !found || c.X < best.X || (c.X == best.X && c.Y < best.Y) {
				best, found = c, true
			}
		}
		if found {
			out = append(out, trailSighting{cell: best, owner: o})
		}
	}
	return out
}

// steerToward takes one orthogonal step toward target, choosing the axis at
// random when both differ.
func (w *World) steerToward(e *Entity, target Cell) {
	dx := target.X - e.Pos.X
	dy := target.Y - e.Pos.Y
	var d Dir
	if w.rng.IntN(2) == 0 {
		if dx != 0 {
			d = Dir{DX: unitStep(dx)}
		} else {
			d = Dir{DY: unitStep(dy)}
		}
	} else {
		if dy != 0 {
			d = Dir{DY: unitStep(dy)}
		} else {
			d = Dir{DX: unitStep(dx)}
		}
	}
	w.RequestDirection(e, d)
}

// expand paths toward a random valid cell within radius 5 that e does not
// own, or picks a random valid direction.
func (w *World) expand(e *Entity) {
	var targets []Cell
	for dx := -expansionRadius; dx <= expansionRadius; dx++ {
		for dy := -expansionRadius; dy <= expansionRadius; dy++ {
			c := Cell{X: e.Pos.X + dx, Y: e.Pos.Y + dy}
			if w.ValidMove(e, c) && !e.Territory.Has(c) {
				targets = append(targets, c)
			}
		}
	}
	if len(targets) > 0 {
		target := targets[w.rng.IntN(len(targets))]
		if w.commitFirstStep(e, w.PathTo(e, target)) {
			return
		}
	}
	w.randomDirection(e)
}

// randomDirection picks a shuffled orthogonal direction whose next cell is
// valid, or stops the entity when none is.
func (w *World) randomDirection(e *Entity) {
	dirs := orthogonal
	w.rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })
	for _, d := range dirs {
		if w.ValidMove(e, e.Pos.Add(d)) {
			w.RequestDirection(e, d)
			return
		}
	}
	e.Moving = false
}

func unitStep(v int) int {
	if v > 0 {
		return 1
	}
	return -1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
