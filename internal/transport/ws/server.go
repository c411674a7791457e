package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"claimgrid.ai/internal/protocol"
	"claimgrid.ai/internal/sim/world"
)

// joinTimeout bounds how long a handshake waits for the world loop.
const joinTimeout = 5 * time.Second

const leaveTimeout = time.Second

type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	s := &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		session, out := s.handshake(conn)
		if session == 0 {
			return
		}
		if s.log != nil {
			s.log.Printf("player session %d connected from %s", session, r.RemoteAddr)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
	read:
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			in, err := protocol.DecodeInput(msg)
			if err != nil {
				queueError(out, protocol.ErrProtoBadRequest, err.Error())
				continue
			}
			if in.ProtocolVersion != protocol.Version {
				queueError(out, protocol.ErrProtoVersion, "bad protocol_version")
				continue
			}
			env := world.InputEnvelope{Session: session, Input: world.Input{Dir: in.Dir, Action: in.Action}}
			select {
			case s.world.Inputs() <- env:
			case <-ctx.Done():
				break read
			case <-s.world.Done():
				break read
			}
		}

		s.leave(session)
		if s.log != nil {
			s.log.Printf("player session %d disconnected", session)
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) (session uint64, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return 0, nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return 0, nil
	}
	if err := protocol.Validate(protocol.TypeHello, msg); err != nil {
		_ = writeJSON(conn, protocol.NewError(protocol.ErrProtoBadRequest, err.Error()))
		return 0, nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return 0, nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = writeJSON(conn, protocol.NewError(protocol.ErrProtoVersion, "bad protocol_version"))
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return 0, nil
	}

	// Frames are latest-wins; a short queue keeps input-to-screen latency low.
	out = make(chan []byte, 4)

	respCh := make(chan world.PlayerJoinResponse, 1)
	timeout := time.NewTimer(joinTimeout)
	defer timeout.Stop()

	var resp world.PlayerJoinResponse
	select {
	case s.world.PlayerJoin() <- world.PlayerJoinRequest{Name: hello.PlayerName, Out: out, Resp: respCh}:
	case <-timeout.C:
		_ = writeJSON(conn, protocol.NewError(protocol.ErrWorldBusy, "world loop not responding"))
		return 0, nil
	}
	select {
	case resp = <-respCh:
	case <-timeout.C:
		// A late acceptance must still free the player slot.
		go s.releaseLate(respCh)
		_ = writeJSON(conn, protocol.NewError(protocol.ErrWorldBusy, "world loop not responding"))
		return 0, nil
	}
	if resp.Code != "" {
		_ = writeJSON(conn, protocol.NewError(resp.Code, resp.Message))
		return 0, nil
	}

	if err := writeJSON(conn, resp.Welcome); err != nil {
		s.leave(resp.Session)
		return 0, nil
	}
	return resp.Session, out
}

func (s *Server) releaseLate(respCh <-chan world.PlayerJoinResponse) {
	select {
	case resp := <-respCh:
		if resp.Code == "" && resp.Session != 0 {
			s.leave(resp.Session)
		}
	case <-s.world.Done():
	case <-time.After(joinTimeout):
	}
}

// leave tells the world the session is gone, giving up once the loop has
// exited or stays busy past leaveTimeout.
func (s *Server) leave(session uint64) {
	select {
	case s.world.PlayerLeave() <- session:
	case <-s.world.Done():
	case <-time.After(leaveTimeout):
	}
}

// queueError hands an ERROR to the writer goroutine without blocking the reader.
func queueError(out chan []byte, code, message string) {
	b, err := json.Marshal(protocol.NewError(code, message))
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
