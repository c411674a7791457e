package tuning

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version" json:"protocol_version"`

	TickRateHz         int `yaml:"tick_rate_hz" json:"tick_rate_hz"`
	SnapshotEveryTicks int `yaml:"snapshot_every_ticks" json:"snapshot_every_ticks"`

	// Grid dimension is derived from MinArea and the entity count (see GridSize).
	MinArea          int `yaml:"min_area" json:"min_area"`
	NumBots          int `yaml:"num_bots" json:"num_bots"`
	MinSpawnDistance int `yaml:"min_spawn_distance" json:"min_spawn_distance"`

	Aggression Aggression `yaml:"aggression" json:"aggression"`
}

type Aggression struct {
	BotVsBot           float64 `yaml:"bot_vs_bot" json:"bot_vs_bot"`
	BotVsPlayer        float64 `yaml:"bot_vs_player" json:"bot_vs_player"`
	PlayerProximity    float64 `yaml:"player_proximity_factor" json:"player_proximity_factor"`
	ProximityThreshold int     `yaml:"proximity_threshold" json:"proximity_threshold"`
}

// Defaults mirrors configs/tuning.yaml so a missing file still yields a playable game.
func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:    "1.0",
		TickRateHz:         30,
		SnapshotEveryTicks: 3000,
		MinArea:            120 * 120,
		NumBots:            40,
		MinSpawnDistance:   9,
		Aggression: Aggression{
			BotVsBot:           0.0,
			BotVsPlayer:        1.0,
			PlayerProximity:    3.0,
			ProximityThreshold: 15,
		},
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz must be > 0 (got %d)", t.TickRateHz)
	}
	if t.NumBots < 0 {
		return fmt.Errorf("num_bots must be >= 0 (got %d)", t.NumBots)
	}
	if t.MinSpawnDistance < 0 {
		return fmt.Errorf("min_spawn_distance must be >= 0 (got %d)", t.MinSpawnDistance)
	}
	if t.MinArea <= 0 {
		return fmt.Errorf("min_area must be > 0 (got %d)", t.MinArea)
	}
	// 5x5 starting blocks need margin 3 plus room to move.
	if g := t.GridSize(); g < 16 {
		return fmt.Errorf("derived grid size %d too small (min_area=%d)", g, t.MinArea)
	}
	a := t.Aggression
	if a.BotVsBot < 0 || a.BotVsPlayer < 0 || a.PlayerProximity < 0 {
		return fmt.Errorf("aggression weights must be >= 0")
	}
	if a.ProximityThreshold < 0 {
		return fmt.Errorf("proximity_threshold must be >= 0 (got %d)", a.ProximityThreshold)
	}
	return nil
}

// Entities is the live population: one human plus the bots.
func (t Tuning) Entities() int { return t.NumBots + 1 }

// GridSize derives the square grid dimension. The playable area is the larger of
// MinArea and the area needed to seat every entity at MinSpawnDistance (with a
// third extra), and the side is floor(sqrt(area))+1.
func (t Tuning) GridSize() int {
	area := t.MinArea
	d := t.MinSpawnDistance
	if need := t.Entities() * d * d * 4 / 3; need > area {
		area = need
	}
	return int(math.Sqrt(float64(area))) + 1
}
