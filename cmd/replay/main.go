package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	persistlog "claimgrid.ai/internal/persistence/log"
	"claimgrid.ai/internal/persistence/snapshot"
	"claimgrid.ai/internal/sim/world"
)

func main() {
	var (
		snapPath = flag.String("snapshot", "", "path to .snap.zst")
		gameDir  = flag.String("game", "", "game dir containing events/events-*.jsonl.zst (optional; default: two levels above -snapshot)")
		verify   = flag.Bool("verify", true, "re-simulate the tick log and compare digests")
		fromTick = flag.Uint64("from_tick", 0, "start verifying from tick (inclusive, optional)")
		toTick   = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[replay] ", log.LstdFlags|log.Lmicroseconds)

	if *snapPath == "" {
		fmt.Fprintln(os.Stderr, "missing -snapshot")
		os.Exit(2)
	}

	snap, err := snapshot.ReadSnapshot(*snapPath)
	if err != nil {
		logger.Fatalf("read snapshot: %v", err)
	}
	fmt.Println(describe(snap))

	if !*verify {
		return
	}
	dir := *gameDir
	if dir == "" {
		// <game>/snapshots/<tick>.snap.zst
		dir = filepath.Dir(filepath.Dir(*snapPath))
	}

	w, err := world.New(world.WorldConfig{
		ID:         snap.Header.WorldID,
		Seed:       snap.Seed,
		TickRateHz: snap.TickRate,
		GridSize:   snap.GridSize,
	})
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	if err := w.ImportSnapshot(snap); err != nil {
		logger.Fatalf("import snapshot: %v", err)
	}

	entries, err := persistlog.ReadTicks(dir, w.CurrentTick())
	if err != nil {
		logger.Fatalf("read tick log: %v", err)
	}
	if len(entries) == 0 {
		logger.Fatalf("no tick entries at or after tick %d in %s", w.CurrentTick(), persistlog.EventsDir(dir))
	}

	checked, err := replayTicks(w, entries, *fromTick, *toTick)
	if err != nil {
		logger.Fatalf("replay: %v", err)
	}
	fmt.Printf("replay ok: checked=%d entries (from snapshot tick=%d, now tick=%d over=%v)\n",
		checked, snap.Header.Tick, w.CurrentTick(), w.Over())
}
