package world

import "testing"

// loopFivebyFive drives the human around the 5x5 square east of its block and
// back in at (52,52).
func loopFiveByFive(t *testing.T) (*World, *Entity) {
	t.Helper()
	w := emptyWorld(t, 121)
	e := place(t, w, RoleHuman, Cell{X: 50, Y: 50})
	walk(w, e, DirRight, 2)
	if len(e.Trail) != 0 {
		t.Fatalf("trail inside block: %v", e.Trail)
	}
	walk(w, e, DirRight, 5)
	walk(w, e, DirDown, 5)
	walk(w, e, DirLeft, 5)
	walk(w, e, DirUp, 3)
	if e.Pos != (Cell{X: 52, Y: 52}) {
		t.Fatalf("pos: got %+v want (52,52)", e.Pos)
	}
	if len(e.Trail) != 17 {
		t.Fatalf("trail length: got %d want 17", len(e.Trail))
	}
	return w, e
}

// The 4E 4S 4W 4N loop from the block centre leaves the block at (53,50) and
// re-enters at (50,52), so the trail holds 11 cells and the pocket between
// trail and block holds 5.
func TestCloseTrail_CentreLoopFromBlock(t *testing.T) {
	w := emptyWorld(t, 121)
	e := place(t, w, RoleHuman, Cell{X: 50, Y: 50})
	walk(w, e, DirRight, 4)
	walk(w, e, DirDown, 4)
	walk(w, e, DirLeft, 4)
	walk(w, e, DirUp, 4)
	if len(e.Trail) != 11 {
		t.Fatalf("trail length: got %d want 11", len(e.Trail))
	}
	if e.Pos != (Cell{X: 50, Y: 50}) {
		t.Fatalf("pos: got %+v want (50,50)", e.Pos)
	}
	w.systemTerritory()

	if len(e.Trail) != 0 {
		t.Fatalf("trail should be cleared, got %d cells", len(e.Trail))
	}
	if got := len(e.Territory); got != 41 {
		t.Fatalf("territory: got %d want 41 (25 block + 11 trail + 5 interior)", got)
	}
	for _, c := range []Cell{{53, 51}, {53, 52}, {53, 53}, {51, 53}, {52, 53}, {54, 54}} {
		if !e.Territory.Has(c) {
			t.Fatalf("missing %+v", c)
		}
	}
	checkInvariants(t, w)
}

func TestCloseTrail_SquareLoopFillsInterior(t *testing.T) {
	w, e := loopFiveByFive(t)
	w.systemTerritory()

	if len(e.Trail) != 0 {
		t.Fatalf("trail should be cleared, got %d cells", len(e.Trail))
	}
	if got := len(e.Territory); got != 58 {
		t.Fatalf("territory: got %d want 58 (25 block + 17 trail + 16 interior)", got)
	}
	for y := 51; y <= 54; y++ {
		for x := 53; x <= 56; x++ {
			if !e.Territory.Has(Cell{X: x, Y: y}) {
				t.Fatalf("interior cell (%d,%d) not claimed", x, y)
			}
		}
	}
	for _, c := range []Cell{{58, 51}, {53, 56}, {51, 53}} {
		if e.Territory.Has(c) {
			t.Fatalf("cell %+v outside the loop was claimed", c)
		}
	}
}

func TestCloseTrail_NarrowLoopHasNoInterior(t *testing.T) {
	w := emptyWorld(t, 60)
	e := place(t, w, RoleHuman, Cell{X: 30, Y: 30})
	walk(w, e, DirRight, 3) // (33,30)
	walk(w, e, DirDown, 1)  // (33,31)
	walk(w, e, DirLeft, 1)  // (32,31) back inside
	w.systemTerritory()
	if got := len(e.Territory); got != 27 {
		t.Fatalf("territory: got %d want 27", got)
	}
	if len(e.Trail) != 0 {
		t.Fatalf("trail should be cleared")
	}
}

func TestCloseTrail_OverlongTrailIsDiscarded(t *testing.T) {
	w := emptyWorld(t, 30)
	e := place(t, w, RoleHuman, Cell{X: 10, Y: 10})
	var long []Cell
	for y := 1; y < 29 && len(long) <= 2*w.cfg.GridSize; y++ {
		for x := 13; x < 29 && len(long) <= 2*w.cfg.GridSize; x++ {
			long = append(long, Cell{X: x, Y: y})
		}
	}
	e.setTrail(long)
	if w.closeTrail(e) {
		t.Fatalf("closure with %d trail cells should be refused", len(long))
	}
	if len(e.Territory) != 25 {
		t.Fatalf("territory changed on refused closure: %d", len(e.Territory))
	}
	if len(e.Trail) != 0 || len(e.trailSet) != 0 {
		t.Fatalf("refused closure must still clear the trail")
	}
}

func TestClaim_TakesCellsFromOthers(t *testing.T) {
	w := emptyWorld(t, 60)
	a := place(t, w, RoleHuman, Cell{X: 20, Y: 20})
	b := place(t, w, RoleBot, Cell{X: 26, Y: 20})
	w.claim(a, []Cell{{24, 20}, {24, 21}})
	if b.Territory.Has(Cell{X: 24, Y: 20}) || b.Territory.Has(Cell{X: 24, Y: 21}) {
		t.Fatalf("claimed cells still owned by the previous owner")
	}
	if len(b.Territory) != 23 || len(a.Territory) != 27 {
		t.Fatalf("sizes: a=%d b=%d", len(a.Territory), len(b.Territory))
	}
}

func TestResolveTerritoryConflicts_LowestIDKeeps(t *testing.T) {
	w := emptyWorld(t, 60)
	a := place(t, w, RoleHuman, Cell{X: 20, Y: 20})
	b := place(t, w, RoleBot, Cell{X: 30, Y: 20})
	shared := Cell{X: 25, Y: 20}
	a.Territory.Add(shared)
	b.Territory.Add(shared)
	b.Territory.Add(Cell{X: 60, Y: 3}) // off grid

	if n := w.resolveTerritoryConflicts(); n != 2 {
		t.Fatalf("stripped: got %d want 2", n)
	}
	if !a.Territory.Has(shared) || b.Territory.Has(shared) {
		t.Fatalf("contested cell should stay with the lowest id")
	}
	if w.reg.TerritoryOwner(shared) != a {
		t.Fatalf("TerritoryOwner disagrees")
	}
	checkInvariants(t, w)
}

func TestFillInterior_Empty(t *testing.T) {
	if got := fillInterior(nil, CellSet{}); got != nil {
		t.Fatalf("empty trail: got %v", got)
	}
}

func TestPointInTrail(t *testing.T) {
	square := []Cell{{0, 0}, {4, 0}, {4, 4}, {0, 4}}
	if !pointInTrail(Cell{X: 2, Y: 2}, square) {
		t.Fatalf("centre should be inside")
	}
	if pointInTrail(Cell{X: 6, Y: 2}, square) {
		t.Fatalf("(6,2) should be outside")
	}
}
