package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	streamWriteWait = 10 * time.Second
	streamBuffer    = 32
)

// handleStream pushes every new notification to the client as a JSON message.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn("stream accept failed", "err", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	notes, cancel := s.mem.Subscribe(streamBuffer)
	defer cancel()

	// Clients only listen; CloseRead handles their close frames and cancels ctx.
	ctx := conn.CloseRead(r.Context())
	s.log.Debug("stream client connected", "remote", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case n, ok := <-notes:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			wctx, wcancel := context.WithTimeout(ctx, streamWriteWait)
			err := wsjson.Write(wctx, conn, n)
			wcancel()
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					s.log.Debug("stream write failed", "err", err)
				}
				return
			}
		}
	}
}
