package log

import (
	"path/filepath"
	"testing"
	"time"

	"claimgrid.ai/internal/sim/world"
)

func TestTickLogger_RoundTripAcrossHours(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLogger(dir)
	clock := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	l.w.now = func() time.Time { return clock }

	for i := uint64(0); i < 5; i++ {
		e := world.TickLogEntry{Tick: i, Advanced: true, Digest: "d"}
		if i == 2 {
			e.Inputs = []world.Input{{Dir: "UP"}}
			e.Kills = []world.KillEvent{{Tick: 2, Victim: 7, VictimName: "beta1_7", Reason: world.KillSelf}}
			e.Removed = []uint64{7}
		}
		if i == 3 {
			clock = clock.Add(time.Minute)
		}
		if err := l.WriteTick(e); err != nil {
			t.Fatalf("WriteTick: %v", err)
		}
	}

	files, err := Files(EventsDir(dir), "events")
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "events-2026-03-01-10.jsonl.zst" {
		t.Fatalf("files: %v", files)
	}

	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	all, err := ReadTicks(dir, 0)
	if err != nil {
		t.Fatalf("ReadTicks: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("entries: got %d want 5", len(all))
	}
	got, err := ReadTicks(dir, 2)
	if err != nil {
		t.Fatalf("ReadTicks: %v", err)
	}
	if len(got) != 3 || got[0].Tick != 2 {
		t.Fatalf("from=2: %+v", got)
	}
	if len(got[0].Inputs) != 1 || got[0].Inputs[0].Dir != "UP" || got[0].Kills[0].Reason != world.KillSelf {
		t.Fatalf("entry 2: %+v", got[0])
	}
}

func TestResultLogger_Writes(t *testing.T) {
	dir := t.TempDir()
	l := NewResultLogger(dir)
	if err := l.WriteResult(world.GameResult{WorldID: "G", Tick: 9, Human: "Player_1", FinalScore: 40}); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	files, err := Files(filepath.Join(dir, "results"), "results")
	if err != nil || len(files) != 1 {
		t.Fatalf("files: %v err=%v", files, err)
	}
	n := 0
	if err := ScanJSONL(files[0], func([]byte) error { n++; return nil }); err != nil {
		t.Fatalf("ScanJSONL: %v", err)
	}
	if n != 1 {
		t.Fatalf("lines: %d", n)
	}
}
