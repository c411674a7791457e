package world

import "time"

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers/tests.
type WorldMetrics struct {
	Tick uint64 `json:"tick"`

	Entities  int  `json:"entities"`
	Bots      int  `json:"bots"`
	Observers int  `json:"observers"`
	Player    bool `json:"player_connected"`

	Started bool `json:"started"`
	Paused  bool `json:"paused"`
	Over    bool `json:"over"`

	HumanScore     int    `json:"human_score"`
	OwnedCells     int    `json:"owned_cells"`
	TrailCells     int    `json:"trail_cells"`
	KillsTotal     uint64 `json:"kills_total"`
	RespawnsTotal  uint64 `json:"respawns_total"`
	ConflictsTotal uint64 `json:"conflicts_total"`

	QueueDepths QueueDepths `json:"queue_depths"`

	StepMS float64 `json:"step_ms"`
}

type QueueDepths struct {
	Inputs   int `json:"inputs"`
	Join     int `json:"join"`
	Observer int `json:"observer"`
	Admin    int `json:"admin"`
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return WorldMetrics{}
	}
	m, ok := v.(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}

func (w *World) publishMetrics(tick uint64, step time.Duration) {
	m := WorldMetrics{
		Tick:           tick,
		Entities:       w.reg.Len(),
		Observers:      len(w.observers),
		Player:         w.player != nil,
		Started:        w.started,
		Paused:         w.paused,
		Over:           w.over,
		KillsTotal:     w.killsTotal,
		RespawnsTotal:  w.respawnsTotal,
		ConflictsTotal: w.conflictsTotal,
		QueueDepths: QueueDepths{
			Inputs:   len(w.inputs),
			Join:     len(w.playerJoin),
			Observer: len(w.observerJoin),
			Admin:    len(w.admin),
		},
		StepMS: float64(step.Microseconds()) / 1000,
	}
	for _, e := range w.reg.order {
		if e.Role == RoleBot {
			m.Bots++
		} else if s, ok := w.scores.Score(e.Name); ok {
			m.HumanScore = s
		}
		m.OwnedCells += len(e.Territory)
		m.TrailCells += len(e.Trail)
	}
	w.metrics.Store(m)
}
