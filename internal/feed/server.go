package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/metric"
)

// Config controls the feed server.
type Config struct {
	Addr        string
	Interval    time.Duration
	MetricsPath string
}

// DefaultConfig returns the server defaults.
func DefaultConfig() Config {
	return Config{
		Addr:        ":4000",
		Interval:    time.Second,
		MetricsPath: "/metrics",
	}
}

// clientBuffer is how many frames may queue for a slow client before new
// frames are dropped.
const clientBuffer = 8

const writeTimeout = 5 * time.Second

type client struct {
	send chan []byte
}

// Server accepts dashboard connections and broadcasts snapshots.
type Server struct {
	cfg       Config
	collector Collector
	log       logger.Logger
	reg       *prometheus.Registry
	metrics   *serverMetrics
	router    chi.Router

	mu      sync.Mutex
	clients map[*client]struct{}

	stop     chan struct{}
	stopOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// NewServer creates a server reading from collector. Zero-value fields in
// cfg are replaced with defaults.
func NewServer(cfg Config, collector Collector, opts ...Option) *Server {
	def := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = def.MetricsPath
	}

	reg := prometheus.NewRegistry()
	s := &Server{
		cfg:       cfg,
		collector: collector,
		log:       logger.NewEnvLogger("[feed]"),
		reg:       reg,
		metrics:   newServerMetrics(reg),
		clients:   make(map[*client]struct{}),
		stop:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/ws", s.handleWS)
	r.Get("/healthz", s.handleHealth)
	r.Handle(s.cfg.MetricsPath, promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	return r
}

// Handler returns the server's HTTP routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Clients returns the number of connected dashboards.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Run listens on the configured address and broadcasts until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	go s.Broadcast(ctx)

	s.log.Info("metrics feed running on %s (broadcast every %s)", s.cfg.Addr, s.cfg.Interval)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.WrapWithCode(err, errors.ErrFeed,
				"Metrics feed server failed",
				"Check that "+s.cfg.Addr+" is free, or set server.addr in .pulse.yaml")
		}
		return nil
	case <-ctx.Done():
	}

	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("shutdown: %v", err)
	}
	return nil
}

// Broadcast sends a snapshot to every client each interval until ctx is
// cancelled. The cadence is independent of any client's refresh settings.
func (s *Server) Broadcast(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.broadcastOnce(ctx)
		}
	}
}

func (s *Server) broadcastOnce(ctx context.Context) {
	start := time.Now()
	snap, err := s.collector.Collect(ctx)
	s.metrics.collectDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.collectErrors.Inc()
		s.log.Warn("collecting metrics: %v", err)
		if len(snap) == 0 {
			return
		}
	}

	frame, err := metric.Encode(metric.TypeSystemMetrics, snap)
	if err != nil {
		s.log.Error("encoding snapshot: %v", err)
		return
	}
	s.metrics.observe(snap)
	s.metrics.broadcasts.Inc()

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- frame:
		default:
			s.metrics.dropped.Inc()
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Warn("websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())

	total, err := s.collector.TotalMemoryMB(ctx)
	if err != nil {
		s.log.Warn("reading total memory: %v", err)
	}
	info, _ := metric.Encode(metric.TypeSystemInfo, metric.SystemInfo{TotalMemoryMB: total})
	if err := s.write(ctx, conn, info); err != nil {
		return
	}

	c := &client{send: make(chan []byte, clientBuffer)}
	s.register(c)
	defer s.unregister(c)

	s.log.Info("client connected - total RAM: %d MB", total)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case frame := <-c.send:
			if err := s.write(ctx, conn, frame); err != nil {
				s.log.Debug("client write failed: %v", err)
				return
			}
		}
	}
}

// Close disconnects every client. The server accepts no further frames
// for existing connections.
func (s *Server) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

func (s *Server) write(ctx context.Context, conn *websocket.Conn, frame []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, frame)
}

func (s *Server) register(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = struct{}{}
	s.metrics.clients.Set(float64(len(s.clients)))
	s.metrics.connections.Inc()
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c)
	s.metrics.clients.Set(float64(len(s.clients)))
}

type healthResponse struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok", Clients: s.Clients()})
}
