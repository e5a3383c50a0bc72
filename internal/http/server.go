package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"fenrir/internal/bus"
	"fenrir/internal/ledger"
	"fenrir/internal/metrics"
)

// Server is the thin HTTP ingress: it accepts orders from clients, hands
// them to the bus, and exposes account and metrics reads. It never touches
// internal/engine directly.
type Server struct {
	engine *gin.Engine
	http   *http.Server

	bus     *bus.Bus
	ledger  *ledger.Ledger
	metrics *metrics.Metrics
}

// New builds a Server listening on addr.
func New(addr string, b *bus.Bus, l *ledger.Ledger, m *metrics.Metrics) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	s := &Server{
		engine:  router,
		bus:     b,
		ledger:  l,
		metrics: m,
	}

	router.GET("/metrics", gin.WrapH(m.Handler()))
	router.POST("/users", s.createUser)
	router.GET("/users/:id", s.getUser)
	router.GET("/users", s.getAllUsers)
	router.POST("/orders", s.placeOrder)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Router exposes the underlying gin engine for tests.
func (s *Server) Router() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.http.Addr).Msg("http server listening")
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}
