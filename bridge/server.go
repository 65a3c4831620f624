// Package bridge serves treatment sessions to a remote presentation host over websocket
package bridge

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/lixenwraith/field-medic/config"
	"github.com/lixenwraith/field-medic/injury"
	"github.com/lixenwraith/field-medic/journal"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period, must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Outbound messages buffered per connection
	sendBuffer = 256
)

const tracerName = "github.com/lixenwraith/field-medic/bridge"

// Options configures a Server
type Options struct {
	Scenario *config.Scenario
	Graphs   injury.GraphSource
	Interval time.Duration  // Tick interval of each session loop
	Journal  *journal.Store // Optional
	Logger   *slog.Logger
}

// Server upgrades HTTP requests and runs one session per connection
type Server struct {
	opts     Options
	upgrader websocket.Upgrader
	tracer   trace.Tracer
	log      *slog.Logger

	mu     sync.Mutex
	conns  map[*conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

// NewServer validates options and returns a ready handler
func NewServer(opts Options) (*Server, error) {
	if opts.Scenario == nil {
		return nil, errors.New("bridge: scenario required")
	}
	if opts.Graphs == nil {
		return nil, errors.New("bridge: graph source required")
	}
	if opts.Interval <= 0 {
		opts.Interval = 16 * time.Millisecond
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Hosts are local presentation clients
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		tracer: otel.Tracer(tracerName),
		log:    log.With("component", "bridge"),
		conns:  make(map[*conn]struct{}),
	}, nil
}

// ServeHTTP upgrades the request and blocks until the session connection ends
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		http.Error(w, "bridge closed", http.StatusServiceUnavailable)
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c, err := newConn(s, ws)
	if err != nil {
		s.log.Error("session setup failed", "remote", r.RemoteAddr, "error", err)
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "session setup failed"),
			time.Now().Add(writeWait))
		ws.Close()
		return
	}

	s.track(c, true)
	defer s.track(c, false)

	c.run(context.Background())
}

func (s *Server) track(c *conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[c] = struct{}{}
	} else {
		delete(s.conns, c)
	}
}

// Sessions returns the number of live connections
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Close stops accepting connections, closes live ones and waits for their loops
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	for c := range s.conns {
		c.ws.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
