package main

import (
	"fmt"
	"strings"

	"claimgrid.ai/internal/protocol"
)

// translateKey maps one key press to an INPUT message. Arrow names and WASD both
// steer; the rest are the game's control keys.
func translateKey(key string) (in protocol.InputMsg, quit bool, ok bool) {
	in = protocol.InputMsg{Type: protocol.TypeInput, ProtocolVersion: protocol.Version}
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "w", "up":
		in.Dir = "UP"
	case "s", "down":
		in.Dir = "DOWN"
	case "a", "left":
		in.Dir = "LEFT"
	case "d", "right":
		in.Dir = "RIGHT"
	case "x", "stop":
		in.Action = protocol.ActionStop
	case "p", "space", "pause":
		in.Action = protocol.ActionTogglePause
	case "r", "resume":
		in.Action = protocol.ActionResume
	case "q", "quit":
		return in, true, false
	default:
		return in, false, false
	}
	return in, false, true
}

func statusLine(f protocol.FrameMsg, self uint64) string {
	var me *protocol.FrameEntity
	for i := range f.Entities {
		if f.Entities[i].ID == self {
			me = &f.Entities[i]
			break
		}
	}
	state := "running"
	switch {
	case !f.Started:
		state = "waiting"
	case f.Paused:
		state = "paused"
	}
	if me == nil {
		return fmt.Sprintf("tick=%d %s (not on grid)", f.Tick, state)
	}
	rank, score := 0, 0
	for i, s := range f.Leaderboard {
		if s.Name == me.Name {
			rank, score = i+1, s.Score
			break
		}
	}
	return fmt.Sprintf("tick=%d %s pos=%d,%d territory=%d trail=%d score=%d rank=%d",
		f.Tick, state, me.Pos[0], me.Pos[1], me.Territory, len(me.Trail), score, rank)
}

func killLine(k protocol.KillNotice) string {
	if k.Killer == "" {
		return fmt.Sprintf("%s died (%s)", k.Victim, k.Reason)
	}
	return fmt.Sprintf("%s killed %s (%s)", k.Killer, k.Victim, k.Reason)
}
