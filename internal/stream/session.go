// Package stream serves the live security event channel over WebSocket.
package stream

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Outbound frames buffered per session before it is considered too slow.
	sendBuffer = 256
)

// session owns one WebSocket connection. The read and write pumps run in
// their own goroutines; whichever exits first signals done and the rest of
// the machinery unwinds from there.
type session struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger

	framesSent int64
}

func newSession(id string, conn *websocket.Conn, logger *slog.Logger) *session {
	return &session{
		id:   id,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
		logger: logger.With(
			slog.String("component", "stream.session"),
			slog.String("session_id", id),
		),
	}
}

func (s *session) shutdown() {
	s.once.Do(func() { close(s.done) })
}

// enqueue offers a frame to the write pump without ever blocking. A full
// buffer means the peer is not draining; the session is torn down rather
// than stalling the producer.
func (s *session) enqueue(frame []byte) bool {
	select {
	case <-s.done:
		return false
	case s.send <- frame:
		return true
	default:
		s.logger.Warn("session too slow, disconnecting")
		return false
	}
}

// readPump consumes inbound messages solely to service pongs and detect
// disconnects; clients send nothing the server acts on.
func (s *session) readPump() {
	defer func() {
		s.shutdown()
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Error("unexpected close", "error", err)
			}
			return
		}
	}
}

// writePump pushes frames from the send buffer to the peer and keeps the
// connection alive with pings.
func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.shutdown()
		s.conn.Close()
		s.logger.Info("session closed", "frames_sent", s.framesSent)
	}()

	for {
		select {
		case <-s.done:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case frame := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.logger.Debug("write failed", "error", err)
				return
			}
			s.framesSent++
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
