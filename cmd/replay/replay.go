package main

import (
	"fmt"

	"claimgrid.ai/internal/persistence/snapshot"
	"claimgrid.ai/internal/sim/world"
)

func describe(snap snapshot.SnapshotV1) string {
	var bots, owned, trail int
	human := "-"
	for _, e := range snap.Entities {
		if e.Role == world.RoleBot.String() {
			bots++
		} else {
			human = e.Name
		}
		owned += len(e.Territory)
		trail += len(e.Trail)
	}
	return fmt.Sprintf("snapshot v%d world=%s tick=%d seed=%d grid=%d bots=%d human=%s owned=%d trail=%d started=%v paused=%v over=%v",
		snap.Header.Version, snap.Header.WorldID, snap.Header.Tick, snap.Seed, snap.GridSize,
		bots, human, owned, trail, snap.Started, snap.Paused, snap.Over)
}

// replayTicks feeds each logged entry's inputs through StepOnce. Entries that did
// not advance the clock share the tick of the next one, so the current tick must
// match every entry. Digests are compared from verifyFrom on.
func replayTicks(w *world.World, entries []world.TickLogEntry, verifyFrom, toTick uint64) (checked uint64, err error) {
	for _, entry := range entries {
		if toTick != 0 && entry.Tick > toTick {
			break
		}
		if entry.Tick != w.CurrentTick() {
			return checked, fmt.Errorf("tick mismatch: want=%d got=%d", w.CurrentTick(), entry.Tick)
		}

		tick, gotDigest := w.StepOnce(entry.Inputs)

		// Sanity check: StepOnce should have stepped the same tick.
		if tick != entry.Tick {
			return checked, fmt.Errorf("internal tick mismatch: stepped=%d entry=%d", tick, entry.Tick)
		}
		if tick >= verifyFrom {
			checked++
			if gotDigest != entry.Digest {
				return checked, fmt.Errorf("digest mismatch at tick %d: got=%s want=%s", tick, gotDigest, entry.Digest)
			}
		}
	}
	return checked, nil
}
