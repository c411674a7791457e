package world

import "claimgrid.ai/internal/protocol"

// Input is one translated key press from the human's client. Dir and Action
// are mutually exclusive.
type Input struct {
	Dir    string `json:"dir,omitempty"`
	Action string `json:"action,omitempty"`
}

// humanController leaves direction changes to inputs and lets every step
// through; advance halts the human at the grid edge and the collision phase
// handles the lethal ring.
type humanController struct{}

func (humanController) Decide(*World, *Entity)             {}
func (humanController) Permits(*World, *Entity, Cell) bool { return true }
func (humanController) Blocked(*World, *Entity)            {}

// applyInput applies one input at the tick boundary and reports whether it was
// meaningful (and so worth recording). A direction starts the game and lifts
// a pause.
func (w *World) applyInput(in Input) bool {
	if w.over {
		return false
	}
	h := w.reg.Human()
	if in.Dir != "" {
		d, ok := ParseDir(in.Dir)
		if !ok || h == nil {
			return false
		}
		w.started = true
		w.paused = false
		w.RequestDirection(h, d)
		return true
	}
	switch in.Action {
	case protocol.ActionStop:
		if h == nil {
			return false
		}
		h.Stop()
	case protocol.ActionPause:
		if w.paused {
			return false
		}
		w.paused = true
	case protocol.ActionResume:
		if !w.paused {
			return false
		}
		w.paused = false
	case protocol.ActionTogglePause:
		w.paused = !w.paused
	default:
		return false
	}
	return true
}
