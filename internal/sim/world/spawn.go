package world

import "math"

const (
	spawnMargin   = 3
	spawnAttempts = 200
	// spawnFallbackAttempts caps the separation-only search; past it the
	// best-separated candidate seen is used so spawning always terminates.
	spawnFallbackAttempts = 100000
)

// randInt draws uniformly from [a, b].
func (w *World) randInt(a, b int) int {
	if b <= a {
		return a
	}
	return a + w.rng.IntN(b-a+1)
}

func (w *World) randomInteriorCell() Cell {
	lo, hi := spawnMargin, w.cfg.GridSize-1-spawnMargin
	return Cell{X: w.randInt(lo, hi), Y: w.randInt(lo, hi)}
}

// minSeparation is the distance from c to the nearest live entity.
func (w *World) minSeparation(c Cell) float64 {
	best := math.Inf(1)
	for _, e := range w.reg.order {
		if d := Distance(c, e.Pos); d < best {
			best = d
		}
	}
	return best
}

func (w *World) inBotTerritory(c Cell) bool {
	for _, e := range w.reg.order {
		if e.Role == RoleBot && e.Territory.Has(c) {
			return true
		}
	}
	return false
}

// findSpawn picks a spawn cell at least MinSpawnDistance from every entity and
// never inside the human's territory. Cells outside every bot territory win
// immediately; the last one inside a bot territory is kept as a fallback.
func (w *World) findSpawn() Cell {
	minSep := float64(w.cfg.MinSpawnDistance)
	human := w.reg.Human()

	var fallback Cell
	haveFallback := false
	for i := 0; i < spawnAttempts; i++ {
		c := w.randomInteriorCell()
		if human != nil && human.Territory.Has(c) {
			continue
		}
		if w.minSeparation(c) < minSep {
			continue
		}
		if !w.inBotTerritory(c) {
			return c
		}
		fallback, haveFallback = c, true
	}
	if haveFallback {
		return fallback
	}

	best, bestSep := Cell{}, -1.0
	for i := 0; i < spawnFallbackAttempts; i++ {
		c := w.randomInteriorCell()
		sep := w.minSeparation(c)
		if sep >= minSep {
			return c
		}
		if sep > bestSep {
			best, bestSep = c, sep
		}
	}
	return best
}

func (w *World) spawnHuman() *Entity {
	e := newEntity(w.allocID(), RoleHuman, w.findSpawn(), humanColor)
	e.ctrl = humanController{}
	w.admit(e)
	return e
}

func (w *World) spawnBot() *Entity {
	pos := w.findSpawn()
	e := newEntity(w.allocID(), RoleBot, pos, w.nextBotColor())
	e.Bot = newBotState(w)
	e.ctrl = botController{}
	w.admit(e)
	return e
}

// admit registers e and claims its starting block over any overlapping owner.
func (w *World) admit(e *Entity) {
	w.scores.Register(e)
	w.reg.Add(e)
	w.claim(e, e.Territory.Sorted())
}
