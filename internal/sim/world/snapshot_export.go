package world

import "claimgrid.ai/internal/persistence/snapshot"

func cellsV1(cells []Cell) [][2]int {
	out := make([][2]int, 0, len(cells))
	for _, c := range cells {
		out = append(out, [2]int{c.X, c.Y})
	}
	return out
}

// ExportSnapshot captures the full world state. tick is the next tick to be
// simulated.
func (w *World) ExportSnapshot(tick uint64) snapshot.SnapshotV1 {
	rng, _ := w.rngSrc.MarshalBinary()

	ents := make([]snapshot.EntityV1, 0, w.reg.Len())
	for _, e := range w.reg.order {
		ev := snapshot.EntityV1{
			ID:        e.ID,
			Role:      e.Role.String(),
			Name:      e.Name,
			Color:     e.Color,
			Pos:       [2]int{e.Pos.X, e.Pos.Y},
			Dir:       [2]int{e.Dir.DX, e.Dir.DY},
			Moving:    e.Moving,
			Trail:     cellsV1(e.Trail),
			Territory: cellsV1(e.Territory.Sorted()),
		}
		if b := e.Bot; b != nil {
			ev.Bot = &snapshot.BotV1{
				BaseAggression:      b.BaseAggression,
				TrailCheckCounter:   b.TrailCheckCounter,
				TrailCheckThreshold: b.TrailCheckThreshold,
				TrailCheckRadius:    b.TrailCheckRadius,
				DirChangeCounter:    b.DirChangeCounter,
				DirChangeThreshold:  b.DirChangeThreshold,
				MaxTrailLength:      b.MaxTrailLength,
			}
		}
		ents = append(ents, ev)
	}

	entries := w.scores.Entries()
	scores := make([]snapshot.ScoreV1, 0, len(entries))
	for _, s := range entries {
		scores = append(scores, snapshot.ScoreV1{Name: s.Name, Score: s.Score, Kills: s.Kills})
	}

	palette := make([][3]uint8, len(w.palette))
	copy(palette, w.palette)

	return snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			WorldID: w.cfg.ID,
			Tick:    tick,
		},
		Seed:               w.cfg.Seed,
		RNG:                rng,
		TickRate:           w.cfg.TickRateHz,
		GridSize:           w.cfg.GridSize,
		NumBots:            w.cfg.NumBots,
		MinSpawnDistance:   w.cfg.MinSpawnDistance,
		SnapshotEveryTicks: w.cfg.SnapshotEveryTicks,
		Aggression: snapshot.AggressionV1{
			BotVsBot:           w.cfg.BotVsBotAggression,
			BotVsPlayer:        w.cfg.BotVsPlayerAggression,
			PlayerProximity:    w.cfg.PlayerProximityFactor,
			ProximityThreshold: w.cfg.ProximityThreshold,
		},
		Entities: ents,
		Scores:   scores,
		Counters: snapshot.CountersV1{
			NextEntityID: w.nextID,
			NameLetter:   w.scores.letter,
			NameNumber:   w.scores.number,
			ColorIndex:   w.colorIndex,
		},
		Palette: palette,
		Started: w.started,
		Paused:  w.paused,
		Over:    w.over,
	}
}
