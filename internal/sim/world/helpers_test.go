package world

import "testing"

func testConfig(grid, bots int) WorldConfig {
	return WorldConfig{
		ID:                    "TEST",
		Seed:                  7,
		TickRateHz:            30,
		GridSize:              grid,
		NumBots:               bots,
		MinSpawnDistance:      9,
		SnapshotEveryTicks:    0,
		BotVsBotAggression:    0.0,
		BotVsPlayerAggression: 1.0,
		PlayerProximityFactor: 3.0,
		ProximityThreshold:    15,
		AutoStart:             true,
	}
}

func newTestWorld(t *testing.T, cfg WorldConfig) *World {
	t.Helper()
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

// emptyWorld returns a started world with no live entities.
func emptyWorld(t *testing.T, grid int) *World {
	t.Helper()
	w := newTestWorld(t, testConfig(grid, 0))
	for _, e := range w.reg.All() {
		w.reg.Remove(e.ID)
		w.scores.Remove(e.Name)
	}
	return w
}

// place admits an entity at pos with the usual 5x5 block and no spawn search.
func place(t *testing.T, w *World, role Role, pos Cell) *Entity {
	t.Helper()
	var e *Entity
	if role == RoleHuman {
		e = newEntity(w.allocID(), RoleHuman, pos, humanColor)
		e.ctrl = humanController{}
	} else {
		e = newEntity(w.allocID(), RoleBot, pos, w.nextBotColor())
		e.Bot = newBotState(w)
		e.ctrl = botController{}
	}
	w.admit(e)
	return e
}

// walk sets e moving along d and advances it n cells.
func walk(w *World, e *Entity, d Dir, n int) {
	w.RequestDirection(e, d)
	for i := 0; i < n; i++ {
		w.advance(e)
	}
}

func checkInvariants(t *testing.T, w *World) {
	t.Helper()
	g := w.cfg.GridSize
	owner := map[Cell]uint64{}
	for _, e := range w.reg.All() {
		if !w.inGrid(e.Pos) {
			t.Fatalf("entity %d off grid at %+v", e.ID, e.Pos)
		}
		if w.InLethalZone(e.Pos) {
			t.Fatalf("entity %d alive on lethal ring at %+v", e.ID, e.Pos)
		}
		seen := CellSet{}
		for _, c := range e.Trail {
			if seen.Has(c) {
				t.Fatalf("entity %d trail repeats %+v", e.ID, c)
			}
			seen.Add(c)
			if e.Territory.Has(c) {
				t.Fatalf("entity %d trail cell %+v inside own territory", e.ID, c)
			}
		}
		if len(seen) != len(e.trailSet) {
			t.Fatalf("entity %d trail set out of sync: %d vs %d", e.ID, len(seen), len(e.trailSet))
		}
		for c := range e.Territory {
			if c.X < 0 || c.Y < 0 || c.X >= g || c.Y >= g {
				t.Fatalf("entity %d owns off-grid cell %+v", e.ID, c)
			}
			if prev, ok := owner[c]; ok {
				t.Fatalf("cell %+v owned by both %d and %d", c, prev, e.ID)
			}
			owner[c] = e.ID
		}
	}
}
