// Package gateway exposes chat sessions to browser clients over a websocket.
// Each connection owns one session; inbound frames carry user messages and
// provider configuration, outbound frames mirror the session's event stream.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/agentchat/agentchat/chatloop"
	"github.com/agentchat/agentchat/llmwire"
	"github.com/agentchat/agentchat/tools"
)

// Inbound frame types.
const (
	FrameSend      = "send"
	FrameConfigure = "configure"
)

// Outbound frame types beyond mirrored session events.
const (
	FrameError      = "error"
	FrameConfigured = "configured"
	FrameHistory    = "history"
)

// ClientFrame is a message from the browser.
type ClientFrame struct {
	Type     string `json:"type"`
	Content  string `json:"content,omitempty"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
}

// ServerFrame is a message to the browser.
type ServerFrame struct {
	Type    string                 `json:"type"`
	Event   *chatloop.SessionEvent `json:"event,omitempty"`
	Error   string                 `json:"error,omitempty"`
	History []chatloop.Turn        `json:"history,omitempty"`
}

// Options configures a Server.
type Options struct {
	Addr            string
	Provider        llmwire.ProviderConfig
	Session         chatloop.SessionConfig
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// Server accepts websocket connections and bridges them to chat sessions.
type Server struct {
	opts     Options
	registry *tools.Registry
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewServer creates a Server dispatching tool calls through registry.
func NewServer(registry *tools.Registry, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	return &Server{
		opts:     opts,
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		logger: logger,
	}
}

// Handler returns the HTTP handler serving the gateway routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/providers", s.handleProviders)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.opts.Addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("gateway listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(llmwire.Catalog)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	session := chatloop.NewSession(s.registry, &s.opts.Session)
	defer session.Close()

	if s.opts.Provider.Credential != "" {
		if err := session.Configure(s.opts.Provider); err != nil {
			s.logger.Warn("default provider rejected", "error", err)
		}
	}

	c := &client{conn: conn, session: session, logger: s.logger}
	c.run(r.Context())
}

// client pairs one websocket connection with one session. The event pump and
// the read loop both write frames, so writes go through a mutex.
type client struct {
	conn    *websocket.Conn
	session *chatloop.Session
	logger  *slog.Logger
	writeMu sync.Mutex
}

func (c *client) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.pumpEvents(ctx)

	for {
		var frame ClientFrame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		switch frame.Type {
		case FrameConfigure:
			err := c.session.Configure(llmwire.ProviderConfig{
				Provider:   frame.Provider,
				Model:      frame.Model,
				Credential: frame.APIKey,
			})
			if err != nil {
				c.send(ServerFrame{Type: FrameError, Error: err.Error()})
				continue
			}
			c.send(ServerFrame{Type: FrameConfigured})

		case FrameSend:
			if err := c.session.SendMessage(ctx, frame.Content); err != nil {
				c.send(ServerFrame{Type: FrameError, Error: err.Error()})
			}
			c.send(ServerFrame{Type: FrameHistory, History: c.session.History()})

		default:
			c.send(ServerFrame{Type: FrameError, Error: "unknown frame type: " + frame.Type})
		}
	}
}

func (c *client) pumpEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-c.session.Events():
			if !ok {
				return
			}
			c.send(ServerFrame{Type: "event", Event: &event})
		}
	}
}

func (c *client) send(frame ServerFrame) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteJSON(frame); err != nil {
		c.logger.Warn("websocket write failed", "error", err)
	}
}
