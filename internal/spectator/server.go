package spectator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cinderpeak/ironwatch/internal/config"
	"github.com/cinderpeak/ironwatch/internal/server"
)

// Server exposes the hub over HTTP: GET /watch upgrades to the snapshot
// feed, GET /healthz reports liveness. It plugs into the lifecycle
// supervisor via Start and Stop.
type Server struct {
	hub      *Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader
	mux      *http.ServeMux
	http     *http.Server
}

var _ server.Service = (*Server)(nil)

// NewServer wires a hub to the configured listen address. A nil logger
// is replaced with a no-op.
func NewServer(cfg config.SpectatorConfig, hub *Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		mux: http.NewServeMux(),
	}
	s.mux.HandleFunc("/watch", s.handleWatch)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.http = &http.Server{Addr: cfg.Addr(), Handler: s}
	return s
}

// ServeHTTP dispatches to the feed routes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Start listens on the configured address and blocks until Stop.
func (s *Server) Start() error {
	s.logger.Info("spectator feed listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drops all subscribers and shuts the listener down.
func (s *Server) Stop() {
	s.hub.CloseAll()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Warn("spectator shutdown failed", zap.Error(err))
	}
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("spectator upgrade failed", zap.Error(err))
		return
	}
	sub := s.hub.add(conn)
	s.logger.Info("spectator connected", zap.Uint64("subscriber", sub.id))
	go s.hub.writePump(sub)
	s.readUntilClose(sub)
}

// readUntilClose discards inbound messages. The feed is one-way;
// reading only serves to answer control frames and notice disconnects.
func (s *Server) readUntilClose(sub *subscriber) {
	defer func() {
		s.hub.remove(sub)
		s.logger.Info("spectator disconnected", zap.Uint64("subscriber", sub.id))
	}()
	sub.conn.SetReadLimit(512)
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":     "ok",
		"spectators": s.hub.Count(),
	})
}
