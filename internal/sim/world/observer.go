package world

import (
	"encoding/json"

	"claimgrid.ai/internal/protocol"
	simenc "claimgrid.ai/internal/sim/encoding"
)

type ObserverJoinRequest struct {
	SessionID string
	Out       chan []byte
}

type observerClient struct {
	id  string
	out chan []byte
}

func (w *World) handleObserverJoin(req ObserverJoinRequest) {
	if req.SessionID == "" || req.Out == nil {
		return
	}
	// Replace existing session id if any.
	if old := w.observers[req.SessionID]; old != nil {
		close(old.out)
	}
	w.observers[req.SessionID] = &observerClient{id: req.SessionID, out: req.Out}

	// Paint the current state right away so a paused game is visible.
	if b, err := json.Marshal(w.buildFrame(w.tick.Load(), nil)); err == nil {
		sendLatest(req.Out, b)
	}
}

func (w *World) handleObserverLeave(sessionID string) {
	c := w.observers[sessionID]
	if c == nil {
		return
	}
	delete(w.observers, sessionID)
	close(c.out)
}

// buildFrame renders the post-phase state of a tick.
func (w *World) buildFrame(tick uint64, kills []KillEvent) protocol.FrameMsg {
	ents := make([]protocol.FrameEntity, 0, w.reg.Len())
	for _, e := range w.reg.order {
		trail := make([][2]int, 0, len(e.Trail))
		for _, c := range e.Trail {
			trail = append(trail, [2]int{c.X, c.Y})
		}
		ents = append(ents, protocol.FrameEntity{
			ID:        e.ID,
			Name:      e.Name,
			Role:      e.Role.String(),
			Pos:       [2]int{e.Pos.X, e.Pos.Y},
			Dir:       e.Dir.String(),
			Moving:    e.Moving,
			Color:     e.Color,
			Trail:     trail,
			Territory: len(e.Territory),
		})
	}

	top := w.scores.Top(LeaderboardSize)
	board := make([]protocol.ScoreEntry, 0, len(top))
	for _, s := range top {
		board = append(board, protocol.ScoreEntry{Name: s.Name, Score: s.Score, Kills: s.Kills})
	}

	var notices []protocol.KillNotice
	for _, k := range kills {
		notices = append(notices, protocol.KillNotice{Killer: k.KillerName, Victim: k.VictimName, Reason: string(k.Reason)})
	}

	return protocol.FrameMsg{
		Type:            protocol.TypeFrame,
		ProtocolVersion: protocol.Version,
		WorldID:         w.cfg.ID,
		Tick:            tick,
		Started:         w.started,
		Paused:          w.paused,
		Over:            w.over,
		GridSize:        w.cfg.GridSize,
		Entities:        ents,
		Ownership: protocol.OwnershipGrid{
			Encoding: "RLE",
			Data:     simenc.EncodeOwners(w.ownerGrid()),
		},
		Leaderboard: board,
		Kills:       notices,
	}
}

// broadcastFrame encodes one frame and hands it to the player and every observer.
func (w *World) broadcastFrame(tick uint64, kills []KillEvent) {
	if w.player == nil && len(w.observers) == 0 {
		return
	}
	b, err := json.Marshal(w.buildFrame(tick, kills))
	if err != nil {
		return
	}
	if w.player != nil {
		sendLatest(w.player.Out, b)
	}
	for _, c := range w.observers {
		sendLatest(c.out, b)
	}
}

// sendLatest never blocks the loop: when the client is behind, its oldest
// queued frame is dropped.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
