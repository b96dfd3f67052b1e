package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danmuck/hyperionctl/internal/auth"
	"github.com/danmuck/hyperionctl/internal/logging"
)

// Status is the client snapshot served on /health.
type Status struct {
	State      string `json:"state"`
	Session    string `json:"session,omitempty"`
	Registered bool   `json:"registered"`
	Frames     uint64 `json:"frames"`
	Rejected   uint64 `json:"rejected"`
	Reconnects uint64 `json:"reconnects"`
}

type StatusFunc func() Status

// StatusOptions are optional status server features.
type StatusOptions struct {
	CorsOrigins []string
	// Token, when set, is required as a bearer token on /metrics.
	Token string
}

type StatusServer struct {
	engine    *gin.Engine
	srv       *http.Server
	startedAt time.Time
}

// NewStatusServer builds the /health and /metrics endpoints.
func NewStatusServer(addr string, status StatusFunc, opts StatusOptions) *StatusServer {
	RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logging.Component("status")))
	r.Use(RequestMetricsMiddleware())
	if len(opts.CorsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: opts.CorsOrigins,
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:       12 * time.Hour,
		}))
	}
	if opts.Token != "" {
		r.Use(auth.Middleware(auth.StaticToken{Token: opts.Token}, "/health"))
	}

	s := &StatusServer{engine: r, startedAt: time.Now()}
	r.GET("/health", func(c *gin.Context) {
		snap := Status{State: "unknown"}
		if status != nil {
			snap = status()
		}
		c.JSON(http.StatusOK, gin.H{
			"status": snap,
			"uptime": time.Since(s.startedAt).Round(time.Second).String(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *StatusServer) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx ends, then shuts down gracefully.
func (s *StatusServer) Run(ctx context.Context) error {
	log := logging.Component("status")
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.srv.Addr).Msg("status server listening")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
