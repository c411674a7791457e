package observer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"claimgrid.ai/internal/observerproto"
	"claimgrid.ai/internal/protocol"
	"claimgrid.ai/internal/sim/world"
)

func startWorld(t *testing.T) *world.World {
	t.Helper()
	w, err := world.New(world.WorldConfig{
		ID:               "OBS_TEST",
		Seed:             5,
		TickRateHz:       20,
		GridSize:         50,
		NumBots:          3,
		MinSpawnDistance: 9,
		AutoStart:        true,
	})
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w
}

func TestBootstrapHandler(t *testing.T) {
	w := startWorld(t)
	srv := httptest.NewServer(NewServer(w, nil).BootstrapHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var b observerproto.BootstrapResponse
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.WorldID != "OBS_TEST" || b.WorldParams.GridSize != 50 || len(b.BotPalette) != 3 {
		t.Fatalf("bootstrap: %+v", b)
	}
	if b.HumanColor != world.HumanColor() || b.FrameProtocol != protocol.Version {
		t.Fatalf("bootstrap: %+v", b)
	}
}

func TestWSHandler_SubscribeStreamsFrames(t *testing.T) {
	w := startWorld(t)
	srv := httptest.NewServer(NewServer(w, nil).WSHandler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if err := conn.WriteJSON(observerproto.SubscribeMsg{Type: observerproto.TypeSubscribe, ProtocolVersion: observerproto.Version}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var last uint64
	for i := 0; i < 3; i++ {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var f protocol.FrameMsg
		if err := json.Unmarshal(raw, &f); err != nil || f.Type != protocol.TypeFrame {
			t.Fatalf("frame: %s", raw)
		}
		if i > 0 && f.Tick < last {
			t.Fatalf("frames out of order: %d after %d", f.Tick, last)
		}
		last = f.Tick
		if len(f.Entities) == 0 || len(f.Entities) > 4 {
			t.Fatalf("entities: %d", len(f.Entities))
		}
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:5000": true,
		"[::1]:80":       true,
		"10.0.0.7:1234":  false,
		"garbage":        false,
	}
	for addr, want := range cases {
		if got := isLoopbackRemote(addr); got != want {
			t.Fatalf("isLoopbackRemote(%q)=%v want %v", addr, got, want)
		}
	}
}
