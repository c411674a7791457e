package world

import (
	"math/rand/v2"
	"sync/atomic"

	"claimgrid.ai/internal/persistence/snapshot"
	"claimgrid.ai/internal/protocol"
)

// pcgStream fixes the second PCG word; the configured seed supplies the first.
const pcgStream = 0x9e3779b97f4a7c15

type PlayerJoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan PlayerJoinResponse
}

type PlayerJoinResponse struct {
	Session uint64
	Welcome protocol.WelcomeMsg
	// Code is a protocol error code when the join was refused.
	Code    string
	Message string
}

type InputEnvelope struct {
	Session uint64
	Input   Input
}

// GameResult is emitted once when the human is removed.
type GameResult struct {
	WorldID     string
	Tick        uint64
	Human       string
	FinalScore  int
	HumanKills  int
	Cause       KillEvent
	Leaderboard []ScoreEntry
	Snapshot    snapshot.SnapshotV1
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type TickLogEntry struct {
	Tick     uint64        `json:"tick"`
	Advanced bool          `json:"advanced"`
	Inputs   []Input       `json:"inputs,omitempty"`
	Kills    []KillEvent   `json:"kills,omitempty"`
	Removed  []uint64      `json:"removed,omitempty"`
	Spawned  []SpawnRecord `json:"spawned,omitempty"`
	Digest   string        `json:"digest"`
}

type SpawnRecord struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Pos  [2]int `json:"pos"`
}

type clientState struct {
	Session uint64
	Out     chan []byte
}

// World is a single-threaded authoritative simulation.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg WorldConfig

	rngSrc *rand.PCG
	rng    *rand.Rand

	tick atomic.Uint64

	reg    *Registry
	scores *ScoreBoard

	nextID     uint64
	palette    [][3]uint8
	colorIndex int

	started bool
	paused  bool
	over    bool

	inputs        chan InputEnvelope
	playerJoin    chan PlayerJoinRequest
	playerLeave   chan uint64
	observerJoin  chan ObserverJoinRequest
	observerLeave chan string
	admin         chan adminSnapshotReq
	stop          chan struct{}
	done          chan struct{}

	nextSession uint64
	player      *clientState
	observers   map[string]*observerClient

	tickLogger   TickLogger
	snapshotSink chan<- snapshot.SnapshotV1
	resultSink   chan<- GameResult

	killsTotal     uint64
	respawnsTotal  uint64
	conflictsTotal uint64

	// humanFinal holds the human's scoreboard row as it was when removed.
	humanFinal ScoreEntry

	metrics atomic.Value
}

func New(cfg WorldConfig) (*World, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	src := rand.NewPCG(uint64(cfg.Seed), pcgStream)
	w := &World{
		cfg:           cfg,
		rngSrc:        src,
		rng:           rand.New(src),
		reg:           NewRegistry(),
		scores:        NewScoreBoard(),
		nextID:        1,
		started:       cfg.AutoStart,
		inputs:        make(chan InputEnvelope, 1024),
		playerJoin:    make(chan PlayerJoinRequest, 8),
		playerLeave:   make(chan uint64, 8),
		observerJoin:  make(chan ObserverJoinRequest, 32),
		observerLeave: make(chan string, 32),
		admin:         make(chan adminSnapshotReq, 8),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
		observers:     map[string]*observerClient{},
	}
	w.palette = botPalette(cfg.NumBots, w.rng.Float64())

	w.spawnHuman()
	for i := 0; i < cfg.NumBots; i++ {
		w.spawnBot()
	}
	w.publishMetrics(0, 0)
	return w, nil
}

func (w *World) SetTickLogger(l TickLogger)                    { w.tickLogger = l }
func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }
func (w *World) SetResultSink(ch chan<- GameResult)            { w.resultSink = ch }

func (w *World) Inputs() chan<- InputEnvelope             { return w.inputs }
func (w *World) PlayerJoin() chan<- PlayerJoinRequest     { return w.playerJoin }
func (w *World) PlayerLeave() chan<- uint64               { return w.playerLeave }
func (w *World) ObserverJoin() chan<- ObserverJoinRequest { return w.observerJoin }
func (w *World) ObserverLeave() chan<- string             { return w.observerLeave }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) Config() WorldConfig { return w.cfg }

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.cfg.TickRateHz
}

// Registry exposes the live entities. Only safe from the loop goroutine or
// while the world is not running (tests, replay).
func (w *World) Registry() *Registry { return w.reg }

func (w *World) Scores() *ScoreBoard { return w.scores }

func (w *World) Over() bool    { return w.over }
func (w *World) Paused() bool  { return w.paused }
func (w *World) Started() bool { return w.started }

func (w *World) allocID() uint64 {
	id := w.nextID
	w.nextID++
	return id
}

func (w *World) handlePlayerJoin(req PlayerJoinRequest) {
	resp := w.joinPlayer(req.Out)
	if req.Resp != nil {
		req.Resp <- resp
	}
}

func (w *World) joinPlayer(out chan []byte) PlayerJoinResponse {
	if w.over {
		return PlayerJoinResponse{Code: protocol.ErrGameOver, Message: "game is over"}
	}
	if w.player != nil {
		return PlayerJoinResponse{Code: protocol.ErrPlayerTaken, Message: "a player is already connected"}
	}
	h := w.reg.Human()
	if h == nil {
		return PlayerJoinResponse{Code: protocol.ErrGameOver, Message: "no human entity"}
	}
	w.nextSession++
	w.player = &clientState{Session: w.nextSession, Out: out}
	return PlayerJoinResponse{
		Session: w.nextSession,
		Welcome: protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			EntityID:        h.ID,
			Name:            h.Name,
			WorldParams: protocol.WorldParams{
				WorldID:    w.cfg.ID,
				TickRateHz: w.cfg.TickRateHz,
				GridSize:   w.cfg.GridSize,
				NumBots:    w.cfg.NumBots,
				Seed:       w.cfg.Seed,
			},
		},
	}
}

func (w *World) handlePlayerLeave(session uint64) {
	if w.player != nil && w.player.Session == session {
		w.player = nil
	}
}
