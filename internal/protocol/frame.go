package protocol

// FRAME (server -> client, server -> observer): the state after all phases of one tick.
type FrameMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	WorldID         string `json:"world_id,omitempty"`
	Tick            uint64 `json:"tick"`

	Started bool `json:"started"`
	Paused  bool `json:"paused"`
	Over    bool `json:"over"`

	GridSize int `json:"grid_size"`

	Entities    []FrameEntity `json:"entities"`
	Ownership   OwnershipGrid `json:"ownership"`
	Leaderboard []ScoreEntry  `json:"leaderboard"`
	Kills       []KillNotice  `json:"kills,omitempty"`
}

type FrameEntity struct {
	ID        uint64   `json:"id"`
	Name      string   `json:"name"`
	Role      string   `json:"role"`
	Pos       [2]int   `json:"pos"`
	Dir       string   `json:"dir,omitempty"`
	Moving    bool     `json:"moving"`
	Color     [3]uint8 `json:"color"`
	Trail     [][2]int `json:"trail"`
	Territory int      `json:"territory"`
}

// OwnershipGrid is the per-cell owner id (0 = unowned) in row-major order,
// run-length encoded and base64 wrapped.
type OwnershipGrid struct {
	Encoding string `json:"encoding"`
	Data     string `json:"data"`
}

type ScoreEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Kills int    `json:"kills"`
}

type KillNotice struct {
	Killer string `json:"killer,omitempty"`
	Victim string `json:"victim"`
	Reason string `json:"reason"`
}
