package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"claimgrid.ai/internal/persistence/indexdb"
	"claimgrid.ai/internal/persistence/snapshot"
	"claimgrid.ai/internal/sim/tuning"
	"claimgrid.ai/internal/sim/world"
)

func TestRunQuery_ReadsIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.sqlite")
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := idx.UpsertTuning(tuning.Defaults()); err != nil {
		t.Fatalf("UpsertTuning: %v", err)
	}
	_ = idx.WriteTick(world.TickLogEntry{
		Tick:     8,
		Advanced: true,
		Kills: []world.KillEvent{
			{Tick: 8, Killer: 4, KillerName: "delta1_4", Victim: 2, VictimName: "beta1_2", Reason: world.KillTrail, Cell: [2]int{7, 7}},
		},
		Digest: "d",
	})
	idx.RecordGame(world.GameResult{
		WorldID:     "game_1",
		Tick:        12,
		Human:       "Player_1",
		FinalScore:  40,
		Cause:       world.KillEvent{Reason: world.KillSelf},
		Leaderboard: []world.ScoreEntry{{Name: "delta1_4", Score: 99, Kills: 1}},
	}, "archives/game_12/12.snap.zst")
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := indexdb.OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()
	ctx := context.Background()

	var buf bytes.Buffer
	if err := runQuery(ctx, r, "kills", 10, "delta1_4", &buf); err != nil {
		t.Fatalf("kills: %v", err)
	}
	var kill indexdb.KillRow
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &kill); err != nil {
		t.Fatalf("decode kill %q: %v", buf.String(), err)
	}
	if kill.Victim != "beta1_2" || kill.Tick != 8 {
		t.Fatalf("kill row: %+v", kill)
	}

	buf.Reset()
	if err := runQuery(ctx, r, "games", 10, "", &buf); err != nil {
		t.Fatalf("games: %v", err)
	}
	if !strings.Contains(buf.String(), `"human":"Player_1"`) {
		t.Fatalf("games: %s", buf.String())
	}

	buf.Reset()
	if err := runQuery(ctx, r, "leaderboard", 1, "", &buf); err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if !strings.Contains(buf.String(), `"name":"delta1_4"`) {
		t.Fatalf("leaderboard: %s", buf.String())
	}

	if err := runQuery(ctx, r, "bogus", 1, "", &buf); err == nil {
		t.Fatalf("expected error for unknown query")
	}
}

func TestListGames_SummarizesSnapshotsAndArchives(t *testing.T) {
	base := t.TempDir()
	gameDir := filepath.Join(base, "game_a")
	snap := snapshot.SnapshotV1{
		Header:  snapshot.Header{Version: snapshot.Version, WorldID: "game_a", Tick: 0},
		Palette: [][3]uint8{{1, 2, 3}},
	}
	for _, tick := range []uint64{0, 3000} {
		snap.Header.Tick = tick
		if err := snapshot.WriteSnapshot(filepath.Join(gameDir, "snapshots", snapshot.FileName(tick)), snap); err != nil {
			t.Fatalf("WriteSnapshot: %v", err)
		}
	}
	if err := os.MkdirAll(filepath.Join(gameDir, "archives", "game_3120"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	var buf bytes.Buffer
	if err := listGames(&buf, base); err != nil {
		t.Fatalf("listGames: %v", err)
	}
	want := "game_a snapshots=2 ticks=0..3000 archived=game_3120\n"
	if buf.String() != want {
		t.Fatalf("got %q want %q", buf.String(), want)
	}
}

func TestPrintSnapshot_SortsLeaderboard(t *testing.T) {
	snap := snapshot.SnapshotV1{
		Header:   snapshot.Header{Version: snapshot.Version, WorldID: "g", Tick: 5},
		GridSize: 40,
		Scores:   []snapshot.ScoreV1{{Name: "b", Score: 30}, {Name: "a", Score: 30}, {Name: "c", Score: 90, Kills: 1}},
	}
	var buf bytes.Buffer
	printSnapshot(&buf, snap, 2)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines: %q", lines)
	}
	if !strings.Contains(lines[1], "c ") || !strings.Contains(lines[2], "a ") {
		t.Fatalf("order: %q", lines)
	}
}
