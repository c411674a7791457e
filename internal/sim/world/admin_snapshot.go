package world

import (
	"context"
	"errors"

	"claimgrid.ai/internal/protocol"
)

type adminSnapshotReq struct {
	Resp chan adminSnapshotResp
}

type adminSnapshotResp struct {
	Tick uint64
	Err  string
}

// RequestSnapshot asks the world loop goroutine to pause the game and enqueue a
// snapshot. It is safe to call from other goroutines (e.g. HTTP handlers).
func (w *World) RequestSnapshot(ctx context.Context) (tick uint64, err error) {
	if w == nil || w.admin == nil {
		return 0, errors.New("admin snapshot not available")
	}
	resp := make(chan adminSnapshotResp, 1)
	req := adminSnapshotReq{Resp: resp}

	select {
	case w.admin <- req:
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	select {
	case r := <-resp:
		if r.Err != "" {
			return r.Tick, errors.New(r.Err)
		}
		return r.Tick, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (w *World) handleAdminSnapshotRequests(reqs []adminSnapshotReq) {
	if w == nil || len(reqs) == 0 {
		return
	}
	cur := w.tick.Load()

	// Saving pauses a running game. The pause goes through the tick log as an
	// input so replays see the same clock.
	pause := Input{Action: protocol.ActionPause}
	if w.started && !w.over && w.applyInput(pause) {
		w.writeTick(TickLogEntry{Tick: cur, Inputs: []Input{pause}, Digest: w.stateDigest(cur)})
		w.broadcastFrame(cur, nil)
	}

	errStr := ""
	if w.snapshotSink == nil {
		errStr = "snapshot sink not configured"
	} else if !w.emitSnapshot(cur) {
		errStr = "snapshot sink backpressure"
	}

	resp := adminSnapshotResp{Tick: cur, Err: errStr}
	for _, r := range reqs {
		if r.Resp == nil {
			continue
		}
		select {
		case r.Resp <- resp:
		default:
			// Client timed out; don't block the sim loop.
		}
	}
}
