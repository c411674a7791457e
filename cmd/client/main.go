package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"claimgrid.ai/internal/protocol"
)

func main() {
	var (
		url   = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name  = flag.String("name", "", "player name (optional)")
		every = flag.Uint64("status_every", 30, "print a status line every N ticks (0 disables)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[client] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	// Keys arrive line by line; the reader goroutine is the only writer.
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			in, quit, ok := translateKey(sc.Text())
			if quit {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
				return
			}
			if !ok {
				logger.Printf("unknown key %q (w/a/s/d, x=stop, p=pause, r=resume, q=quit)", sc.Text())
				continue
			}
			if err := conn.WriteJSON(in); err != nil {
				logger.Printf("send INPUT: %v", err)
				return
			}
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	go func() {
		<-stop
		_ = conn.Close()
	}()

	var self uint64
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			self = w.EntityID
			logger.Printf("WELCOME entity=%d name=%s grid=%d bots=%d tick_rate=%d seed=%d",
				w.EntityID, w.Name, w.WorldParams.GridSize, w.WorldParams.NumBots, w.WorldParams.TickRateHz, w.WorldParams.Seed)

		case protocol.TypeError:
			var e protocol.ErrorMsg
			if err := json.Unmarshal(msg, &e); err != nil {
				continue
			}
			logger.Printf("ERROR %s %s", e.Code, e.Message)
			if e.Code == protocol.ErrPlayerTaken || e.Code == protocol.ErrGameOver {
				return
			}

		case protocol.TypeFrame:
			var f protocol.FrameMsg
			if err := json.Unmarshal(msg, &f); err != nil {
				continue
			}
			for _, k := range f.Kills {
				logger.Printf("kill: %s", killLine(k))
			}
			if f.Over {
				logger.Printf("GAME OVER tick=%d", f.Tick)
				return
			}
			if *every > 0 && f.Tick%*every == 0 {
				logger.Print(statusLine(f, self))
			}
		}
	}
}
