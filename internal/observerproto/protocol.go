package observerproto

// Version is the observer protocol version (separate from the player WS protocol).
const Version = "0.1"

const TypeSubscribe = "SUBSCRIBE"

// Client -> Server. First message on the observer WS connection, and can be
// re-sent to update settings.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	// MaxQueue bounds how many frames may wait for a slow client before the
	// oldest is dropped.
	MaxQueue int `json:"max_queue,omitempty"`
}

// HTTP response for GET /admin/v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string      `json:"protocol_version"`
	FrameProtocol   string      `json:"frame_protocol"`
	WorldID         string      `json:"world_id"`
	Tick            uint64      `json:"tick"`
	WorldParams     WorldParams `json:"world_params"`
	HumanColor      [3]uint8    `json:"human_color"`
	BotPalette      [][3]uint8  `json:"bot_palette"`
}

type WorldParams struct {
	TickRateHz int   `json:"tick_rate_hz"`
	GridSize   int   `json:"grid_size"`
	NumBots    int   `json:"num_bots"`
	Seed       int64 `json:"seed"`
}

// NormalizeSubscribe clamps client-provided settings.
func NormalizeSubscribe(sub *SubscribeMsg) {
	if sub.MaxQueue <= 0 {
		sub.MaxQueue = 8
	}
	if sub.MaxQueue > 64 {
		sub.MaxQueue = 64
	}
}
