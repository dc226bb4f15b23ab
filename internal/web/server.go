package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vitos/coin_dashboard/internal/domain"
	"github.com/vitos/coin_dashboard/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// Snapshots is the use-case surface the HTTP layer serves.
type Snapshots interface {
	BuildSnapshot(ctx context.Context, coinID, rawWindow string) (*domain.Snapshot, error)
	RefreshChart(ctx context.Context, coinID, rawWindow string) (*domain.ChartRefresh, error)
}

type Options struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Server struct {
	router    *http.ServeMux
	server    *http.Server
	snapshots Snapshots
	metrics   *metrics.Metrics
	upgrader  websocket.Upgrader
	logger    *zap.Logger
}

func NewServer(opts Options, snapshots Snapshots, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:    http.NewServeMux(),
		snapshots: snapshots,
		metrics:   m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.Handler(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return s
}

func (s *Server) routes() {
	// Health
	s.router.HandleFunc("GET /ping", s.handlePing)

	// Landing Page
	s.router.HandleFunc("GET /{$}", s.handleIndex)

	// Coin API
	s.router.HandleFunc("POST /api/crypto", s.handleSnapshot)
	s.router.HandleFunc("POST /api/crypto_chart", s.handleChartRefresh)

	// Live chart refresh
	s.router.HandleFunc("GET /ws/chart", s.handleChartSocket)

	// Metrics
	if s.metrics != nil {
		s.router.Handle("GET /metrics", s.metrics.Handler())
	}
}

// Handler is the router wrapped in the request middleware chain.
func (s *Server) Handler() http.Handler {
	return s.requestID(s.observe(s.recoverPanics(s.router)))
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
