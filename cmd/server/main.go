package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"claimgrid.ai/internal/persistence/archive"
	persistlog "claimgrid.ai/internal/persistence/log"
	"claimgrid.ai/internal/persistence/snapshot"
	"claimgrid.ai/internal/sim/tuning"
	"claimgrid.ai/internal/sim/world"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "game_1", "game id")
		seed       = flag.Int64("seed", 1337, "world seed (used only when starting a fresh game)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite index (ticks, kills, scores, snapshots, games)")
		autoStart  = flag.Bool("auto_start", false, "start moving without waiting for the first direction input")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	gameDir := filepath.Join(*dataDir, "games", *worldID)
	snapDir := filepath.Join(gameDir, "snapshots")
	_ = os.MkdirAll(gameDir, 0o755)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}

	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = latestSnapshot(snapDir)
	}

	// Tuning is required for a fresh game; a resume takes its values from the snapshot.
	tune, tuneErr := tuning.Load(tp)
	if tuneErr != nil {
		if snapshotToLoad == "" || !os.IsNotExist(tuneErr) {
			logger.Fatalf("load tuning: %v", tuneErr)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	idx, err := openRuntimeIndex(gameDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.UpsertTuning(tune); err != nil {
			logger.Printf("index backend: upsert tuning: %v", err)
		}
	}

	cfg := world.ConfigFromTuning(*worldID, *seed, tune)
	cfg.AutoStart = *autoStart
	w, err := world.New(cfg)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	if snapshotToLoad != "" {
		loadSnapshot(w, snapshotToLoad, *worldID, logger)
	}

	// Base snapshot: the tick log replays forward from here. A resumed game is
	// rewritten because PauseForLoad changed it.
	base := w.ExportSnapshot(w.CurrentTick())
	basePath := filepath.Join(snapDir, snapshot.FileName(base.Header.Tick))
	if err := snapshot.WriteSnapshot(basePath, base); err != nil {
		logger.Fatalf("write base snapshot: %v", err)
	}
	if idx != nil {
		idx.RecordSnapshot(basePath, base)
	}

	ctx, cancel := signalContext()
	defer cancel()

	tickLog := persistlog.NewTickLogger(gameDir)
	resultLog := persistlog.NewResultLogger(gameDir)
	defer tickLog.Close()
	defer resultLog.Close()
	if idx != nil {
		w.SetTickLogger(multiTickLogger{a: tickLog, b: idx})
	} else {
		w.SetTickLogger(tickLog)
	}

	// Snapshot writer.
	snapCh := make(chan snapshot.SnapshotV1, 2)
	w.SetSnapshotSink(snapCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-snapCh:
				path := filepath.Join(snapDir, snapshot.FileName(snap.Header.Tick))
				if err := snapshot.WriteSnapshot(path, snap); err != nil {
					logger.Printf("snapshot write: %v", err)
					continue
				}
				if idx != nil {
					idx.RecordSnapshot(path, snap)
				}
			}
		}
	}()

	// Game over: archive the final snapshot and record the result.
	resultCh := make(chan world.GameResult, 1)
	w.SetResultSink(resultCh)
	go func() {
		select {
		case <-ctx.Done():
			return
		case res := <-resultCh:
			archived, err := archive.WriteAndArchive(gameDir, snapDir, res)
			if err != nil {
				logger.Printf("archive game: %v", err)
			}
			if idx != nil {
				idx.RecordGame(res, archived)
			}
			if err := resultLog.WriteResult(res); err != nil {
				logger.Printf("result log: %v", err)
			}
			logger.Printf("game over tick=%d player=%s score=%d killed_by=%s reason=%s",
				res.Tick, res.Human, res.FinalScore, res.Cause.KillerName, res.Cause.Reason)
		}
	}()

	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
			return
		}
		logger.Printf("world loop exited at tick=%d", w.CurrentTick())
	}()

	mux := newMux(w, idx, muxOptions{
		WorldID:     *worldID,
		EnableAdmin: envBool("CG_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP()),
		EnablePprof: envBool("CG_ENABLE_PPROF_HTTP", false),
	}, logger)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s grid=%d bots=%d tick_rate=%dHz", *addr, w.Config().GridSize, w.Config().NumBots, w.Config().TickRateHz)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func latestSnapshot(snapDir string) string {
	paths, err := snapshot.List(snapDir)
	if err != nil || len(paths) == 0 {
		return ""
	}
	return paths[len(paths)-1]
}

// loadSnapshot resumes w from path. Any failure leaves w as the fresh world
// and is only logged, so a corrupt snapshot never blocks a restart.
func loadSnapshot(w *world.World, path, worldID string, logger *log.Logger) bool {
	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		logger.Printf("read snapshot %s: %v; starting fresh", path, err)
		return false
	}
	if snap.Header.WorldID != "" && snap.Header.WorldID != worldID {
		logger.Printf("snapshot world id mismatch: flag=%s snap=%s; starting fresh", worldID, snap.Header.WorldID)
		return false
	}
	if err := w.ImportSnapshot(snap); err != nil {
		logger.Printf("import snapshot %s: %v; starting fresh", path, err)
		return false
	}
	w.PauseForLoad()
	logger.Printf("resumed from snapshot=%s tick=%d", filepath.Base(path), w.CurrentTick())
	return true
}
