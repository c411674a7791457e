package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"claimgrid.ai/internal/sim/world"
	"claimgrid.ai/internal/transport/observer"
	"claimgrid.ai/internal/transport/ws"
)

type muxOptions struct {
	WorldID     string
	EnableAdmin bool
	EnablePprof bool
}

func newMux(w *world.World, idx runtimeIndex, opts muxOptions, logger *log.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeWorldMetrics(rw, opts.WorldID, w)
		if idx != nil {
			writeIndexMetrics(rw, opts.WorldID, idx)
		}
	})

	if opts.EnableAdmin {
		// Local-only admin endpoints.
		mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			resp := struct {
				WorldID string             `json:"world_id"`
				Tick    uint64             `json:"tick"`
				Metrics world.WorldMetrics `json:"metrics"`
			}{
				WorldID: opts.WorldID,
				Tick:    w.CurrentTick(),
				Metrics: w.Metrics(),
			}
			_ = json.NewEncoder(rw).Encode(resp)
		})
		mux.HandleFunc("/admin/v1/snapshot", func(rw http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				rw.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			ctx2, cancel2 := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel2()
			tick, err := w.RequestSnapshot(ctx2)
			rw.Header().Set("Content-Type", "application/json")
			if err != nil {
				rw.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "tick": tick, "error": err.Error()})
				return
			}
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "tick": tick, "paused": true})
		})

		obsSrv := observer.NewServer(w, logger)
		mux.HandleFunc("/admin/v1/observer/bootstrap", obsSrv.BootstrapHandler())
		mux.HandleFunc("/admin/v1/observer/ws", obsSrv.WSHandler())
	} else if logger != nil {
		logger.Printf("admin endpoints disabled (CG_ENABLE_ADMIN_HTTP=false)")
	}
	if opts.EnablePprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", ws.NewServer(w, logger).Handler())
	return mux
}

// Minimal Prometheus exposition format.
func writeWorldMetrics(out io.Writer, worldID string, w *world.World) {
	m := w.Metrics()
	tick := w.CurrentTick()
	if m.Tick != 0 {
		tick = m.Tick
	}

	fmt.Fprintf(out, "# HELP claimgrid_world_tick Current world tick.\n")
	fmt.Fprintf(out, "# TYPE claimgrid_world_tick gauge\n")
	fmt.Fprintf(out, "claimgrid_world_tick{world=%q} %d\n", worldID, tick)

	fmt.Fprintf(out, "# HELP claimgrid_world_entities Live entities (human and bots).\n")
	fmt.Fprintf(out, "# TYPE claimgrid_world_entities gauge\n")
	fmt.Fprintf(out, "claimgrid_world_entities{world=%q} %d\n", worldID, m.Entities)
	fmt.Fprintf(out, "claimgrid_world_entities{world=%q,role=%q} %d\n", worldID, "bot", m.Bots)

	fmt.Fprintf(out, "# HELP claimgrid_world_clients Connected clients.\n")
	fmt.Fprintf(out, "# TYPE claimgrid_world_clients gauge\n")
	fmt.Fprintf(out, "claimgrid_world_clients{world=%q,kind=%q} %d\n", worldID, "player", boolInt(m.Player))
	fmt.Fprintf(out, "claimgrid_world_clients{world=%q,kind=%q} %d\n", worldID, "observer", m.Observers)

	fmt.Fprintf(out, "# HELP claimgrid_world_state Game state flags (0/1).\n")
	fmt.Fprintf(out, "# TYPE claimgrid_world_state gauge\n")
	fmt.Fprintf(out, "claimgrid_world_state{world=%q,state=%q} %d\n", worldID, "started", boolInt(m.Started))
	fmt.Fprintf(out, "claimgrid_world_state{world=%q,state=%q} %d\n", worldID, "paused", boolInt(m.Paused))
	fmt.Fprintf(out, "claimgrid_world_state{world=%q,state=%q} %d\n", worldID, "over", boolInt(m.Over))

	fmt.Fprintf(out, "# HELP claimgrid_world_cells Owned and trail cell counts.\n")
	fmt.Fprintf(out, "# TYPE claimgrid_world_cells gauge\n")
	fmt.Fprintf(out, "claimgrid_world_cells{world=%q,kind=%q} %d\n", worldID, "owned", m.OwnedCells)
	fmt.Fprintf(out, "claimgrid_world_cells{world=%q,kind=%q} %d\n", worldID, "trail", m.TrailCells)

	fmt.Fprintf(out, "# HELP claimgrid_human_score Current human score.\n")
	fmt.Fprintf(out, "# TYPE claimgrid_human_score gauge\n")
	fmt.Fprintf(out, "claimgrid_human_score{world=%q} %d\n", worldID, m.HumanScore)

	fmt.Fprintf(out, "# HELP claimgrid_events_total Simulation events since start.\n")
	fmt.Fprintf(out, "# TYPE claimgrid_events_total counter\n")
	fmt.Fprintf(out, "claimgrid_events_total{world=%q,event=%q} %d\n", worldID, "kill", m.KillsTotal)
	fmt.Fprintf(out, "claimgrid_events_total{world=%q,event=%q} %d\n", worldID, "respawn", m.RespawnsTotal)
	fmt.Fprintf(out, "claimgrid_events_total{world=%q,event=%q} %d\n", worldID, "conflict", m.ConflictsTotal)

	fmt.Fprintf(out, "# HELP claimgrid_world_queue_depth Channel backlog depth.\n")
	fmt.Fprintf(out, "# TYPE claimgrid_world_queue_depth gauge\n")
	fmt.Fprintf(out, "claimgrid_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "inputs", m.QueueDepths.Inputs)
	fmt.Fprintf(out, "claimgrid_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "join", m.QueueDepths.Join)
	fmt.Fprintf(out, "claimgrid_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "observer", m.QueueDepths.Observer)
	fmt.Fprintf(out, "claimgrid_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "admin", m.QueueDepths.Admin)

	fmt.Fprintf(out, "# HELP claimgrid_world_step_ms Last tick step duration in milliseconds.\n")
	fmt.Fprintf(out, "# TYPE claimgrid_world_step_ms gauge\n")
	fmt.Fprintf(out, "claimgrid_world_step_ms{world=%q} %.3f\n", worldID, m.StepMS)
}

func writeIndexMetrics(out io.Writer, worldID string, idx runtimeIndex) {
	s := idx.Stats()
	fmt.Fprintf(out, "# HELP claimgrid_index_queue_depth Index writer queue depth.\n")
	fmt.Fprintf(out, "# TYPE claimgrid_index_queue_depth gauge\n")
	fmt.Fprintf(out, "claimgrid_index_queue_depth{world=%q} %d\n", worldID, s.QueueDepth)

	fmt.Fprintf(out, "# HELP claimgrid_index_queue_capacity Index writer queue capacity.\n")
	fmt.Fprintf(out, "# TYPE claimgrid_index_queue_capacity gauge\n")
	fmt.Fprintf(out, "claimgrid_index_queue_capacity{world=%q} %d\n", worldID, s.QueueCapacity)

	fmt.Fprintf(out, "# HELP claimgrid_index_dropped_total Index records dropped because the queue was full.\n")
	fmt.Fprintf(out, "# TYPE claimgrid_index_dropped_total counter\n")
	fmt.Fprintf(out, "claimgrid_index_dropped_total{world=%q,kind=%q} %d\n", worldID, "tick", s.DropTickTotal)
	fmt.Fprintf(out, "claimgrid_index_dropped_total{world=%q,kind=%q} %d\n", worldID, "snapshot", s.DropSnapshotTotal)
	fmt.Fprintf(out, "claimgrid_index_dropped_total{world=%q,kind=%q} %d\n", worldID, "game", s.DropGameTotal)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
