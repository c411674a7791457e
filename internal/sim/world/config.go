package world

import (
	"fmt"

	"claimgrid.ai/internal/sim/tuning"
)

type WorldConfig struct {
	ID   string
	Seed int64

	TickRateHz         int
	GridSize           int
	NumBots            int
	MinSpawnDistance   int
	SnapshotEveryTicks int

	BotVsBotAggression    float64
	BotVsPlayerAggression float64
	PlayerProximityFactor float64
	ProximityThreshold    int

	// AutoStart skips the wait for the first direction input (headless runs, tests).
	AutoStart bool
}

func ConfigFromTuning(id string, seed int64, t tuning.Tuning) WorldConfig {
	return WorldConfig{
		ID:                    id,
		Seed:                  seed,
		TickRateHz:            t.TickRateHz,
		GridSize:              t.GridSize(),
		NumBots:               t.NumBots,
		MinSpawnDistance:      t.MinSpawnDistance,
		SnapshotEveryTicks:    t.SnapshotEveryTicks,
		BotVsBotAggression:    t.Aggression.BotVsBot,
		BotVsPlayerAggression: t.Aggression.BotVsPlayer,
		PlayerProximityFactor: t.Aggression.PlayerProximity,
		ProximityThreshold:    t.Aggression.ProximityThreshold,
	}
}

func (c WorldConfig) validate() error {
	if c.TickRateHz <= 0 {
		return fmt.Errorf("tick rate must be > 0 (got %d)", c.TickRateHz)
	}
	// Spawn margin 3 on both sides plus a 5x5 block.
	if c.GridSize < 2*spawnMargin+startBlockRadius*2+1 {
		return fmt.Errorf("grid size %d too small", c.GridSize)
	}
	if c.NumBots < 0 {
		return fmt.Errorf("num bots must be >= 0 (got %d)", c.NumBots)
	}
	if c.MinSpawnDistance < 0 {
		return fmt.Errorf("min spawn distance must be >= 0 (got %d)", c.MinSpawnDistance)
	}
	return nil
}
