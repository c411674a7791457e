package world

import "time"

// stepInternal runs one tick. Inputs apply at the tick boundary. While the game
// waits for its first direction, is paused or is over, only the inputs apply
// and the clock holds.
func (w *World) stepInternal(inputs []Input) (digest string, advanced bool) {
	stepStart := time.Now()
	nowTick := w.tick.Load()

	recorded := make([]Input, 0, len(inputs))
	for _, in := range inputs {
		if w.applyInput(in) {
			recorded = append(recorded, in)
		}
	}

	if w.over || !w.started || w.paused {
		if len(recorded) > 0 {
			digest = w.stateDigest(nowTick)
			w.writeTick(TickLogEntry{Tick: nowTick, Inputs: recorded, Digest: digest})
			w.broadcastFrame(nowTick, nil)
		}
		w.publishMetrics(nowTick, time.Since(stepStart))
		return digest, false
	}

	// Systems: move (every other tick) -> closure -> conflicts -> collisions -> removal -> scores
	if nowTick%2 == 0 {
		w.systemMovement()
	}
	w.systemTerritory()
	w.conflictsTotal += uint64(w.resolveTerritoryConflicts())

	kills := w.detectCollisions(nowTick)
	kills = append(kills, w.resolveHeadOn(nowTick)...)
	removed := victims(kills)
	spawned := w.applyRemovals(removed)
	w.killsTotal += uint64(len(removed))
	w.respawnsTotal += uint64(len(spawned))

	w.scores.Recompute(w.reg)

	digest = w.stateDigest(nowTick)
	w.writeTick(TickLogEntry{
		Tick:     nowTick,
		Advanced: true,
		Inputs:   recorded,
		Kills:    kills,
		Removed:  removed,
		Spawned:  spawned,
		Digest:   digest,
	})
	w.broadcastFrame(nowTick, kills)

	next := nowTick + 1
	w.tick.Store(next)

	if w.over {
		w.finishGame(next, kills)
	} else if every := w.cfg.SnapshotEveryTicks; every > 0 && next%uint64(every) == 0 {
		w.emitSnapshot(next)
	}
	w.publishMetrics(next, time.Since(stepStart))
	return digest, true
}

func (w *World) writeTick(entry TickLogEntry) {
	if w.tickLogger == nil {
		return
	}
	_ = w.tickLogger.WriteTick(entry)
}

func (w *World) emitSnapshot(tick uint64) bool {
	if w.snapshotSink == nil {
		return false
	}
	select {
	case w.snapshotSink <- w.ExportSnapshot(tick):
		return true
	default:
		return false
	}
}

func (w *World) finishGame(tick uint64, kills []KillEvent) {
	res := GameResult{
		WorldID:     w.cfg.ID,
		Tick:        tick,
		Human:       w.humanFinal.Name,
		FinalScore:  w.humanFinal.Score,
		HumanKills:  w.humanFinal.Kills,
		Leaderboard: w.scores.Top(LeaderboardSize),
		Snapshot:    w.ExportSnapshot(tick),
	}
	for _, k := range kills {
		if k.VictimName == w.humanFinal.Name {
			res.Cause = k
			break
		}
	}
	// The final snapshot travels with the result; the result consumer persists it.
	if w.resultSink == nil {
		return
	}
	select {
	case w.resultSink <- res:
	default:
	}
}

// StepOnce advances the world by a single tick using the same ordering semantics as the server.
// It is primarily intended for deterministic replays/tests.
func (w *World) StepOnce(inputs []Input) (tick uint64, digest string) {
	tick = w.tick.Load()
	digest, _ = w.stepInternal(inputs)
	if digest == "" {
		digest = w.stateDigest(tick)
	}
	return tick, digest
}
