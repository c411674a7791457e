package main

import (
	"encoding/json"
	"testing"

	"claimgrid.ai/internal/protocol"
)

func TestTranslateKey_ProducesValidInputs(t *testing.T) {
	for _, key := range []string{"w", "A", " s ", "right", "x", "p", "r"} {
		in, quit, ok := translateKey(key)
		if quit || !ok {
			t.Fatalf("key %q: quit=%v ok=%v", key, quit, ok)
		}
		raw, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if _, err := protocol.DecodeInput(raw); err != nil {
			t.Fatalf("key %q produced invalid INPUT %s: %v", key, raw, err)
		}
	}
	if _, quit, _ := translateKey("q"); !quit {
		t.Fatalf("q should quit")
	}
	if _, _, ok := translateKey("z"); ok {
		t.Fatalf("z should be unknown")
	}
}

func TestStatusLine(t *testing.T) {
	f := protocol.FrameMsg{
		Tick:    60,
		Started: true,
		Entities: []protocol.FrameEntity{
			{ID: 1, Name: "Player_1", Pos: [2]int{10, 12}, Territory: 31, Trail: [][2]int{{10, 11}}},
		},
		Leaderboard: []protocol.ScoreEntry{{Name: "alpha1_2", Score: 80}, {Name: "Player_1", Score: 31}},
	}
	want := "tick=60 running pos=10,12 territory=31 trail=1 score=31 rank=2"
	if got := statusLine(f, 1); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if got := statusLine(f, 9); got != "tick=60 running (not on grid)" {
		t.Fatalf("missing self: %q", got)
	}
}
