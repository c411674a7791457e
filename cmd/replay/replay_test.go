package main

import (
	"path/filepath"
	"strings"
	"testing"

	persistlog "claimgrid.ai/internal/persistence/log"
	"claimgrid.ai/internal/persistence/snapshot"
	"claimgrid.ai/internal/sim/world"
)

func testWorld(t *testing.T) *world.World {
	t.Helper()
	w, err := world.New(world.WorldConfig{
		ID:                    "game_replay",
		Seed:                  21,
		TickRateHz:            30,
		GridSize:              50,
		NumBots:               5,
		MinSpawnDistance:      9,
		BotVsPlayerAggression: 1,
		PlayerProximityFactor: 3,
		ProximityThreshold:    15,
	})
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return w
}

var keys = map[int][]world.Input{
	2:  {{Dir: "LEFT"}},
	12: {{Dir: "UP"}},
	24: {{Dir: "RIGHT"}},
	40: {{Action: "PAUSE"}},
	44: {{Dir: "DOWN"}},
}

func TestReplay_FromBaseSnapshotAndTickLog(t *testing.T) {
	gameDir := t.TempDir()
	live := testWorld(t)
	tl := persistlog.NewTickLogger(gameDir)
	live.SetTickLogger(tl)

	basePath := filepath.Join(gameDir, "snapshots", snapshot.FileName(live.CurrentTick()))
	if err := snapshot.WriteSnapshot(basePath, live.ExportSnapshot(live.CurrentTick())); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	for i := 0; i < 200 && !live.Over(); i++ {
		live.StepOnce(keys[i])
	}
	if err := tl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	snap, err := snapshot.ReadSnapshot(basePath)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if d := describe(snap); !strings.Contains(d, "world=game_replay") || !strings.Contains(d, "bots=5") {
		t.Fatalf("describe: %s", d)
	}

	w := testWorld(t)
	if err := w.ImportSnapshot(snap); err != nil {
		t.Fatalf("ImportSnapshot: %v", err)
	}
	entries, err := persistlog.ReadTicks(gameDir, w.CurrentTick())
	if err != nil {
		t.Fatalf("ReadTicks: %v", err)
	}
	checked, err := replayTicks(w, entries, 0, 0)
	if err != nil {
		t.Fatalf("replayTicks: %v", err)
	}
	if checked != uint64(len(entries)) || checked == 0 {
		t.Fatalf("checked %d of %d", checked, len(entries))
	}
	if w.CurrentTick() != live.CurrentTick() {
		t.Fatalf("tick: replay %d live %d", w.CurrentTick(), live.CurrentTick())
	}
}

func TestReplay_DetectsTamperedDigest(t *testing.T) {
	live := testWorld(t)
	var entries []world.TickLogEntry
	live.SetTickLogger(tickFunc(func(e world.TickLogEntry) { entries = append(entries, e) }))
	base := live.ExportSnapshot(live.CurrentTick())
	for i := 0; i < 30; i++ {
		live.StepOnce(keys[i])
	}
	entries[len(entries)-1].Digest = "00"

	w := testWorld(t)
	if err := w.ImportSnapshot(base); err != nil {
		t.Fatalf("ImportSnapshot: %v", err)
	}
	if _, err := replayTicks(w, entries, 0, 0); err == nil || !strings.Contains(err.Error(), "digest mismatch") {
		t.Fatalf("expected digest mismatch, got %v", err)
	}
}

type tickFunc func(world.TickLogEntry)

func (f tickFunc) WriteTick(e world.TickLogEntry) error {
	f(e)
	return nil
}
