package world

import (
	"math"
	"testing"
)

func TestNewBotState_Ranges(t *testing.T) {
	w := emptyWorld(t, 40)
	for i := 0; i < 500; i++ {
		b := newBotState(w)
		if b.DirChangeThreshold < 2 || b.DirChangeThreshold > 9 {
			t.Fatalf("dir change threshold %d", b.DirChangeThreshold)
		}
		if b.TrailCheckThreshold < 1 || b.TrailCheckThreshold > 2 {
			t.Fatalf("trail check threshold %d", b.TrailCheckThreshold)
		}
		if b.TrailCheckRadius < 5 || b.TrailCheckRadius > 6 {
			t.Fatalf("trail check radius %d", b.TrailCheckRadius)
		}
		if b.MaxTrailLength < 6 || b.MaxTrailLength > 18 {
			t.Fatalf("max trail length %d", b.MaxTrailLength)
		}
		if b.BaseAggression < 0.1 || b.BaseAggression >= 0.9 {
			t.Fatalf("base aggression %v", b.BaseAggression)
		}
	}
}

func TestAggression(t *testing.T) {
	w := emptyWorld(t, 60)
	h := place(t, w, RoleHuman, Cell{X: 20, Y: 20})
	b := place(t, w, RoleBot, Cell{X: 30, Y: 20})
	o := place(t, w, RoleBot, Cell{X: 40, Y: 20})
	b.Bot.BaseAggression = 0.5

	// 0.5 * 1.0 * 3.0 caps at 1.
	if got := w.aggression(b, h); got != 1.0 {
		t.Fatalf("near human: got %v want 1", got)
	}
	h.Pos = Cell{X: 5, Y: 50}
	if got := w.aggression(b, h); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("far human: got %v want 0.5", got)
	}
	if got := w.aggression(b, o); got != 0 {
		t.Fatalf("bot vs bot with zero weight: got %v", got)
	}
	w.cfg.BotVsBotAggression = 0.5
	if got := w.aggression(b, o); math.Abs(got-0.25) > 1e-9 {
		t.Fatalf("bot vs bot: got %v want 0.25", got)
	}
}

func TestPlanBot_LongTrailHeadsHome(t *testing.T) {
	w := emptyWorld(t, 60)
	b := place(t, w, RoleBot, Cell{X: 30, Y: 30})
	walk(w, b, DirRight, 6) // (36,30), trail 33..36
	b.Bot.MaxTrailLength = 2

	w.planBot(b)
	if b.Dir != DirDown && b.Dir != DirUp {
		t.Fatalf("expected a turn off the trail, got %v", b.Dir)
	}
	path := w.ShortestPath(b, b.Pos, b.Territory.Has)
	if len(path) == 0 || path[0] != b.Pos.Add(b.Dir) {
		t.Fatalf("heading %v is not the first step home (%v)", b.Dir, path)
	}
}

func TestAboutToTrap(t *testing.T) {
	w := emptyWorld(t, 40)
	b := place(t, w, RoleBot, Cell{X: 10, Y: 10})
	if w.aboutToTrap(b) {
		t.Fatalf("idle bot cannot be trapped")
	}
	w.RequestDirection(b, DirRight)
	if w.aboutToTrap(b) {
		t.Fatalf("open heading flagged as a trap")
	}
	b.Pos = Cell{X: 1, Y: 10}
	b.Dir = DirLeft
	if !w.aboutToTrap(b) {
		t.Fatalf("heading into the ring should be a trap")
	}
	// Next cell (11,10) has only one valid exit.
	b.Pos = Cell{X: 10, Y: 10}
	b.Dir = DirRight
	b.setTrail([]Cell{{12, 10}, {11, 9}, {11, 11}, {25, 25}})
	if !w.aboutToTrap(b) {
		t.Fatalf("dead-end pocket should be a trap")
	}
}

func TestNearbyTrail(t *testing.T) {
	w := emptyWorld(t, 60)
	a := place(t, w, RoleBot, Cell{X: 20, Y: 20})
	b := place(t, w, RoleBot, Cell{X: 40, Y: 40})
	if _, ok := w.nearbyTrail(a); ok {
		t.Fatalf("no trails yet")
	}
	b.setTrail([]Cell{{22, 23}, {23, 23}, {24, 23}})
	c, ok := w.nearbyTrail(a)
	if !ok || c != (Cell{X: 22, Y: 23}) {
		t.Fatalf("nearbyTrail: got %+v ok=%v", c, ok)
	}
	b.setTrail([]Cell{{24, 24}})
	if _, ok := w.nearbyTrail(a); ok {
		t.Fatalf("trail 4 cells away should be out of range")
	}
	// Own trail is never a target.
	a.setTrail([]Cell{{21, 21}})
	b.setTrail(nil)
	if _, ok := w.nearbyTrail(a); ok {
		t.Fatalf("own trail reported")
	}
}

func TestNearbyTrails_OnePerOwner(t *testing.T) {
	w := emptyWorld(t, 60)
	a := place(t, w, RoleBot, Cell{X: 20, Y: 20})
	b := place(t, w, RoleBot, Cell{X: 40, Y: 40})
	c := place(t, w, RoleBot, Cell{X: 40, Y: 10})
	b.setTrail([]Cell{{24, 22}, {23, 22}, {23, 23}})
	c.setTrail([]Cell{{30, 20}})

	got := w.nearbyTrails(a)
	if len(got) != 1 || got[0].owner != b || got[0].cell != (Cell{X: 23, Y: 22}) {
		t.Fatalf("sightings: %+v", got)
	}
}

func TestBotDecide_KeepsMoving(t *testing.T) {
	w := emptyWorld(t, 60)
	b := place(t, w, RoleBot, Cell{X: 30, Y: 30})
	start := b.Pos
	for i := 0; i < 40; i++ {
		w.stepEntity(b)
		if w.InLethalZone(b.Pos) || len(b.Trail) > 0 && containsCell(b.Trail[:len(b.Trail)-1], b.Pos) {
			t.Fatalf("bot stepped into a fatal cell at %+v", b.Pos)
		}
		w.systemTerritory()
	}
	if b.Pos == start {
		t.Fatalf("bot never moved")
	}
}

func TestPlanBot_PursuesNearbyTrail(t *testing.T) {
	w := emptyWorld(t, 60)
	b := place(t, w, RoleBot, Cell{X: 30, Y: 30})
	o := place(t, w, RoleBot, Cell{X: 45, Y: 45})
	o.setTrail([]Cell{{34, 30}, {33, 30}})
	// Any base aggression times 10 caps at 1, so the roll always succeeds.
	w.cfg.BotVsBotAggression = 10

	path := w.PathTo(b, Cell{X: 33, Y: 30})
	if len(path) != 3 {
		t.Fatalf("path: %v", path)
	}
	w.planBot(b)
	if got := b.Pos.Add(b.Dir); got != path[0] {
		t.Fatalf("heading %v, want first step %+v", b.Dir, path[0])
	}
	if b.Dir != DirRight {
		t.Fatalf("dir: got %v want right", b.Dir)
	}
}

func TestPlanBot_PursuesHumanInRange(t *testing.T) {
	w := emptyWorld(t, 60)
	h := place(t, w, RoleHuman, Cell{X: 36, Y: 30})
	b := place(t, w, RoleBot, Cell{X: 30, Y: 30})
	// 0.5 * 1 * 3 caps at 1.
	b.Bot.BaseAggression = 0.5

	path := w.PathTo(b, h.Pos)
	if len(path) == 0 {
		t.Fatalf("no path to human")
	}
	w.planBot(b)
	if got := b.Pos.Add(b.Dir); got != path[0] {
		t.Fatalf("heading %v, want first step %+v", b.Dir, path[0])
	}
}

func TestExpand_TargetsUnownedCell(t *testing.T) {
	w := emptyWorld(t, 60)
	b := place(t, w, RoleBot, Cell{X: 30, Y: 30})
	// Own every cell in the expansion square except one.
	owned := CellSet{}
	for dx := -expansionRadius; dx <= expansionRadius; dx++ {
		for dy := -expansionRadius; dy <= expansionRadius; dy++ {
			owned.Add(Cell{X: 30 + dx, Y: 30 + dy})
		}
	}
	owned.Remove(Cell{X: 35, Y: 30})
	b.Territory = owned

	w.expand(b)
	if b.Dir != DirRight || !b.Moving {
		t.Fatalf("expected to head for the only unowned cell, got dir=%v moving=%v", b.Dir, b.Moving)
	}
}

func TestRandomDirection_BoxedInStops(t *testing.T) {
	w := emptyWorld(t, 40)
	b := place(t, w, RoleBot, Cell{X: 10, Y: 10})
	b.Dir, b.Moving = DirRight, true
	b.setTrail([]Cell{{11, 10}, {10, 11}, {9, 10}, {10, 9}})

	w.randomDirection(b)
	if b.Moving {
		t.Fatalf("boxed-in bot still moving")
	}

	b.setTrail([]Cell{{11, 10}, {10, 11}, {9, 10}})
	w.randomDirection(b)
	if !b.Moving || b.Dir != DirUp {
		t.Fatalf("expected the single open exit, got dir=%v moving=%v", b.Dir, b.Moving)
	}
}

func TestBotBlocked_Replans(t *testing.T) {
	w := emptyWorld(t, 60)
	place(t, w, RoleHuman, Cell{X: 36, Y: 30})
	b := place(t, w, RoleBot, Cell{X: 30, Y: 30})
	b.Bot.BaseAggression = 0.5
	b.Dir, b.Moving = DirUp, true

	botController{}.Blocked(w, b)
	if b.Dir != DirRight {
		t.Fatalf("blocked bot kept heading %v, want right toward the human", b.Dir)
	}
}
