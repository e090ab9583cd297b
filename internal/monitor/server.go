// Package monitor exposes live workload snapshots over HTTP for serve
// mode: a health probe plus a websocket that streams the latest report.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ArseniyBeglov/corobus/internal/sim"
)

// SnapshotSource supplies the state pushed to websocket clients.
type SnapshotSource interface {
	Snapshot() sim.Snapshot
}

// Server streams snapshots to any number of websocket clients.
type Server struct {
	port     int
	src      SnapshotSource
	interval time.Duration
	upgrader websocket.Upgrader
}

// NewServer creates a monitor server pushing one frame per interval.
// interval defaults to 1 second if zero.
func NewServer(port int, src SnapshotSource, interval time.Duration) *Server {
	if interval <= 0 {
		interval = time.Second
	}
	return &Server{
		port:     port,
		src:      src,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func httpHandler(s *Server) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: httpHandler(s),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("monitor: listening", "port", s.port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("monitor: websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	slog.Info("monitor: client connected", "remote", conn.RemoteAddr())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := conn.WriteJSON(s.src.Snapshot()); err != nil {
				slog.Info("monitor: client disconnected", "remote", conn.RemoteAddr(), "err", err)
				return
			}
		}
	}
}
