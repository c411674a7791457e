package world

import (
	"context"
	"time"
)

// Run drives the world at TickRateHz until ctx ends, Stop is called or the
// human is removed (nil error).
func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(w.done)

	var pendingInputs []Input
	var pendingAdmin []adminSnapshotReq

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.playerJoin:
			w.handlePlayerJoin(req)
		case session := <-w.playerLeave:
			w.handlePlayerLeave(session)
		case req := <-w.observerJoin:
			w.handleObserverJoin(req)
		case id := <-w.observerLeave:
			w.handleObserverLeave(id)
		case req := <-w.admin:
			pendingAdmin = append(pendingAdmin, req)
		case env := <-w.inputs:
			// Inputs from a stale session (player reconnected) are dropped.
			if w.player != nil && env.Session == w.player.Session {
				pendingInputs = append(pendingInputs, env.Input)
			}
		case <-ticker.C:
			w.stepInternal(pendingInputs)
			w.handleAdminSnapshotRequests(pendingAdmin)
			pendingInputs = pendingInputs[:0]
			pendingAdmin = pendingAdmin[:0]
			if w.over {
				return nil
			}
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// Done is closed once Run returns; sends to the world channels after that
// would block forever.
func (w *World) Done() <-chan struct{} { return w.done }
