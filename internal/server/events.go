package server

import (
	"net/http"
	"net/url"
	"time"

	"github.com/TFMV/fsview/internal/watch"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsReadBufferSize  = 1024
	wsWriteBufferSize = 1024
	wsWriteTimeout    = 10 * time.Second
)

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  wsReadBufferSize,
		WriteBufferSize: wsWriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return isOriginAllowed(r, s.config.AllowedOrigins)
		},
	}
}

// isOriginAllowed accepts requests without an Origin header, same-host
// requests and configured origins.
func isOriginAllowed(r *http.Request, allowed []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || allowAnyOrigin(allowed) {
		return true
	}
	if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
		return true
	}
	for _, o := range allowed {
		if o == origin {
			return true
		}
	}
	return false
}

// streamEvents upgrades to a websocket and writes every bus message as
// JSON until the client goes away or the bus is closed.
func (s *Server) streamEvents(c *gin.Context) {
	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	clientID := uuid.NewString()
	logger := s.logger.With(zap.String("client_id", clientID))

	output, cancel := s.facade.Events().Subscribe()
	defer cancel()

	s.metrics.WSConnected()
	defer s.metrics.WSDisconnected()
	logger.Debug("event stream connected", zap.String("remote_addr", c.Request.RemoteAddr))

	// Reads only detect the client closing; incoming messages are ignored.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-output:
			if !ok {
				deadline := time.Now().Add(wsWriteTimeout)
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "event stream closed"), deadline)
				return
			}
			if err := s.writeMessage(conn, msg); err != nil {
				logger.Debug("event stream write failed", zap.Error(err))
				return
			}
		case <-closed:
			logger.Debug("event stream disconnected")
			return
		}
	}
}

func (s *Server) writeMessage(conn *websocket.Conn, msg watch.Message) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}
