package snapshot

import (
	"os"
	"path/filepath"
	"testing"
)

func sample(tick uint64) SnapshotV1 {
	return SnapshotV1{
		Header:   Header{Version: Version, WorldID: "GRID", Tick: tick},
		Seed:     42,
		RNG:      []byte{1, 2, 3},
		TickRate: 30,
		GridSize: 121,
		NumBots:  1,
		Entities: []EntityV1{
			{ID: 1, Role: "HUMAN", Name: "Player_1", Pos: [2]int{10, 10}, Territory: [][2]int{{10, 10}}},
			{ID: 2, Role: "BOT", Name: "alpha1_2", Pos: [2]int{30, 30}, Moving: true, Dir: [2]int{1, 0},
				Trail: [][2]int{{31, 30}}, Bot: &BotV1{BaseAggression: 0.4, MaxTrailLength: 9}},
		},
		Scores:   []ScoreV1{{Name: "Player_1", Score: 25}, {Name: "alpha1_2", Score: 75, Kills: 1}},
		Counters: CountersV1{NextEntityID: 3, NameLetter: 1, NameNumber: 1},
		Started:  true,
		Paused:   true,
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, FileName(120))
	want := sample(120)
	if err := WriteSnapshot(p, want); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	got, err := ReadSnapshot(p)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if got.Header != want.Header || got.Seed != want.Seed || len(got.Entities) != 2 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	if got.Entities[1].Bot == nil || got.Entities[1].Bot.MaxTrailLength != 9 {
		t.Fatalf("bot state lost: %+v", got.Entities[1])
	}
	if got.Entities[0].Bot != nil {
		t.Fatalf("human should carry no bot state")
	}
	if !got.Paused || !got.Started || got.Over {
		t.Fatalf("flags lost: %+v", got)
	}

	h, err := ReadHeader(p)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.Tick != 120 || h.WorldID != "GRID" {
		t.Fatalf("header: %+v", h)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestReadSnapshot_CorruptFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), FileName(1))
	if err := os.WriteFile(p, []byte("not zstd"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadSnapshot(p); err == nil {
		t.Fatalf("expected error for corrupt snapshot")
	}
}

func TestList_OrdersByTick(t *testing.T) {
	dir := t.TempDir()
	for _, tick := range []uint64{3000, 9, 600} {
		if err := WriteSnapshot(filepath.Join(dir, FileName(tick)), sample(tick)); err != nil {
			t.Fatalf("write %d: %v", tick, err)
		}
	}
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)

	paths, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 snapshots, got %v", paths)
	}
	want := []uint64{9, 600, 3000}
	for i, p := range paths {
		tick, ok := ParseFileName(p)
		if !ok || tick != want[i] {
			t.Fatalf("order[%d]: got %s want tick %d", i, p, want[i])
		}
	}
}
