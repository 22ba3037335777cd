package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/oszuidwest/zwfm-ffpath/internal/config"
	"github.com/oszuidwest/zwfm-ffpath/internal/detect"
	"github.com/oszuidwest/zwfm-ffpath/internal/resolver"
	"github.com/oszuidwest/zwfm-ffpath/internal/server"
)

// Server is the HTTP server that provides the web interface and the
// detection/settings API.
type Server struct {
	config    *config.Config
	detector  *detect.Detector
	resolver  *resolver.Resolver
	saver     *resolver.PathSaver
	broadcast *server.Broadcaster
	commands  *server.CommandHandler
}

// NewServer wires the resolver against this server's own API: the prober
// and both persistence stores go through HTTP, so the resolver sees the
// same endpoint contract a remote one would offer.
func NewServer(cfg *config.Config) *Server {
	snap := cfg.Snapshot()

	baseURL := snap.ProbeEndpoint
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://127.0.0.1:%d", snap.WebPort)
	}
	timeout := time.Duration(snap.ProbeTimeoutMs) * time.Millisecond
	client := resolver.NewClient(baseURL, timeout)

	broadcast := server.NewBroadcaster(snap.FFmpegPath)
	res := resolver.New(client, client, resolver.Options{
		Settings: client,
		Surface:  broadcast,
		Notifier: newNotifier(cfg),
	})
	saver := resolver.NewPathSaver(client, time.Duration(snap.DebounceMs)*time.Millisecond, timeout)

	return &Server{
		config:    cfg,
		detector:  detect.New(snap.MinVersion),
		resolver:  res,
		saver:     saver,
		broadcast: broadcast,
		commands:  server.NewCommandHandler(cfg, res, saver),
	}
}

// Start configures routes and starts the HTTP server in a goroutine.
func (s *Server) Start() *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/api/ffmpeg/detect", s.handleAPIDetect)
	mux.HandleFunc("/api/settings/ffmpeg-path", s.handleAPIFFmpegPath)
	mux.HandleFunc("/api/settings", s.handleAPISettings)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Snapshot().WebPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("web interface listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	return httpServer
}

// Stop cancels pending debounced saves.
func (s *Server) Stop() {
	s.saver.Stop()
}

// handleWebSocket handles bidirectional WebSocket communication for
// real-time status updates and commands.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := server.UpgradeConnection(w, r)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	// Buffered send channel for thread-safe writes. Only the writer
	// goroutine writes to the connection.
	send := make(chan any, 16)

	s.broadcast.Register(send)

	go s.runWebSocketWriter(conn, send)
	s.runWebSocketReader(conn, send)

	s.broadcast.Unregister(send)
	close(send)
}

// runWebSocketWriter writes messages from the send channel to the connection.
func (s *Server) runWebSocketWriter(conn server.WebSocketConn, send <-chan any) {
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Debug("WebSocket close error", "error", err)
		}
	}()
	for msg := range send {
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// runWebSocketReader reads commands from the connection and dispatches them.
func (s *Server) runWebSocketReader(conn server.WebSocketConn, send chan<- any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in WebSocket reader", "panic", r)
		}
	}()

	for {
		var cmd server.WSCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		s.commands.Handle(cmd, send)
	}
}
