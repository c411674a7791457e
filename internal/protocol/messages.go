package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	EntityID        uint64      `json:"entity_id"`
	Name            string      `json:"name"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	WorldID    string `json:"world_id"`
	TickRateHz int    `json:"tick_rate_hz"`
	GridSize   int    `json:"grid_size"`
	NumBots    int    `json:"num_bots"`
	Seed       int64  `json:"seed"`
}

// Input actions. Dir and Action are mutually exclusive on the wire.
const (
	ActionStop        = "STOP"
	ActionPause       = "PAUSE"
	ActionResume      = "RESUME"
	ActionTogglePause = "TOGGLE_PAUSE"
)

// INPUT (client -> server): one key press, already translated by the client.
type InputMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Dir             string `json:"dir,omitempty"`
	Action          string `json:"action,omitempty"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}

func NewError(code, message string) ErrorMsg {
	return ErrorMsg{Type: TypeError, ProtocolVersion: Version, Code: code, Message: message}
}
