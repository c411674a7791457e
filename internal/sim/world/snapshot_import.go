package world

import (
	"fmt"
	"math/rand/v2"

	"claimgrid.ai/internal/persistence/snapshot"
)

// ImportSnapshot replaces the world state with s. The snapshot is validated
// completely before anything is touched, so a bad snapshot leaves the current
// state intact. Restored invariants are trusted; no spawn search runs.
func (w *World) ImportSnapshot(s snapshot.SnapshotV1) error {
	if s.Header.Version != snapshot.Version {
		return fmt.Errorf("unsupported snapshot version %d", s.Header.Version)
	}
	cfg := w.cfg
	cfg.Seed = s.Seed
	cfg.TickRateHz = s.TickRate
	cfg.GridSize = s.GridSize
	cfg.NumBots = s.NumBots
	cfg.MinSpawnDistance = s.MinSpawnDistance
	cfg.SnapshotEveryTicks = s.SnapshotEveryTicks
	cfg.BotVsBotAggression = s.Aggression.BotVsBot
	cfg.BotVsPlayerAggression = s.Aggression.BotVsPlayer
	cfg.PlayerProximityFactor = s.Aggression.PlayerProximity
	cfg.ProximityThreshold = s.Aggression.ProximityThreshold
	if s.Header.WorldID != "" {
		cfg.ID = s.Header.WorldID
	}
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("snapshot config: %w", err)
	}
	if len(s.Palette) == 0 {
		return fmt.Errorf("snapshot has no colour palette")
	}

	src := rand.NewPCG(0, 0)
	if err := src.UnmarshalBinary(s.RNG); err != nil {
		return fmt.Errorf("snapshot rng: %w", err)
	}

	inGrid := func(p [2]int) bool {
		return p[0] >= 0 && p[1] >= 0 && p[0] < cfg.GridSize && p[1] < cfg.GridSize
	}
	reg := NewRegistry()
	humans := 0
	for _, ev := range s.Entities {
		role := parseRole(ev.Role)
		if role == 0 {
			return fmt.Errorf("entity %d: unknown role %q", ev.ID, ev.Role)
		}
		if ev.ID == 0 || ev.ID >= s.Counters.NextEntityID || reg.Get(ev.ID) != nil {
			return fmt.Errorf("entity %d: bad or duplicate id", ev.ID)
		}
		if !inGrid(ev.Pos) {
			return fmt.Errorf("entity %d: position %v off grid", ev.ID, ev.Pos)
		}
		e := &Entity{
			ID:        ev.ID,
			Role:      role,
			Name:      ev.Name,
			Color:     ev.Color,
			Pos:       Cell{X: ev.Pos[0], Y: ev.Pos[1]},
			Dir:       Dir{DX: ev.Dir[0], DY: ev.Dir[1]},
			Moving:    ev.Moving,
			Territory: make(CellSet, len(ev.Territory)),
		}
		trail := make([]Cell, 0, len(ev.Trail))
		for _, p := range ev.Trail {
			if !inGrid(p) {
				return fmt.Errorf("entity %d: trail cell %v off grid", ev.ID, p)
			}
			trail = append(trail, Cell{X: p[0], Y: p[1]})
		}
		e.setTrail(trail)
		for _, p := range ev.Territory {
			if !inGrid(p) {
				return fmt.Errorf("entity %d: territory cell %v off grid", ev.ID, p)
			}
			e.Territory.Add(Cell{X: p[0], Y: p[1]})
		}
		switch role {
		case RoleHuman:
			humans++
			e.ctrl = humanController{}
		case RoleBot:
			if ev.Bot == nil {
				return fmt.Errorf("entity %d: bot without bot state", ev.ID)
			}
			b := *ev.Bot
			e.Bot = &BotState{
				BaseAggression:      b.BaseAggression,
				TrailCheckCounter:   b.TrailCheckCounter,
				TrailCheckThreshold: b.TrailCheckThreshold,
				TrailCheckRadius:    b.TrailCheckRadius,
				DirChangeCounter:    b.DirChangeCounter,
				DirChangeThreshold:  b.DirChangeThreshold,
				MaxTrailLength:      b.MaxTrailLength,
			}
			e.ctrl = botController{}
		}
		reg.Add(e)
	}
	if humans > 1 {
		return fmt.Errorf("snapshot has %d human entities", humans)
	}
	if humans == 0 && !s.Over {
		return fmt.Errorf("snapshot has no human entity but the game is not over")
	}

	scores := NewScoreBoard()
	scores.letter = s.Counters.NameLetter
	scores.number = s.Counters.NameNumber
	if scores.letter < 0 || scores.letter >= len(greekLetters) || scores.number < 1 {
		return fmt.Errorf("snapshot name cursor out of range")
	}
	for _, row := range s.Scores {
		scores.scores[row.Name] = row.Score
		scores.kills[row.Name] = row.Kills
	}

	w.cfg = cfg
	w.rngSrc = src
	w.rng = rand.New(src)
	w.reg = reg
	w.scores = scores
	w.nextID = s.Counters.NextEntityID
	w.colorIndex = s.Counters.ColorIndex
	w.palette = append([][3]uint8(nil), s.Palette...)
	w.started = s.Started
	w.paused = s.Paused
	w.over = s.Over
	w.tick.Store(s.Header.Tick)
	w.publishMetrics(s.Header.Tick, 0)
	return nil
}

// PauseForLoad pauses a started game, as a freshly loaded game should wait for
// the player before moving.
func (w *World) PauseForLoad() {
	if w.started && !w.over {
		w.paused = true
	}
}
