package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vos-cloud/vshell/internal/config"
	"github.com/vos-cloud/vshell/internal/fetch"
	"github.com/vos-cloud/vshell/internal/middleware"
	"github.com/vos-cloud/vshell/internal/monitoring"
	"github.com/vos-cloud/vshell/internal/runtime"
	"github.com/vos-cloud/vshell/internal/seed"
	"github.com/vos-cloud/vshell/internal/session"
	"github.com/vos-cloud/vshell/internal/shell"
	"github.com/vos-cloud/vshell/internal/store"
	"github.com/vos-cloud/vshell/internal/ws"
)

// Server wires the HTTP surface over the shell core.
type Server struct {
	router   *gin.Engine
	store    store.Store
	sessions *session.Manager
	interp   *shell.Interpreter
	metrics  *monitoring.Metrics
	log      *zap.Logger
	httpSrv  *http.Server
}

// NewServer builds the store, interpreter and routes from configuration.
func NewServer(cfg *config.Config, log *zap.Logger) (*Server, error) {
	st, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	if cfg.Seed.Enabled {
		seeder := seed.New(st, cfg.Seed.Dir, log)
		if err := seeder.Seed(context.Background()); err != nil {
			log.Warn("seeding failed", zap.Error(err))
		}
	}

	opts := []shell.Option{
		shell.WithJSRunner(runtime.NewJS(runtime.Config{Timeout: cfg.Runtime.Timeout})),
	}
	if cfg.Fetch.Enabled {
		opts = append(opts, shell.WithHTTPFetcher(fetch.New(cfg.Fetch.Timeout)))
	}
	interp := shell.NewInterpreter(st, log, opts...)

	metrics := monitoring.NewMetrics()
	sessions := session.NewManager()

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}
	router.Use(middleware.Metrics(metrics))

	s := &Server{
		router:   router,
		store:    st,
		sessions: sessions,
		interp:   interp,
		metrics:  metrics,
		log:      log,
	}

	h := newHandlers(s)
	wsHandler := ws.NewHandler(sessions, interp, metrics, log)

	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/commands", h.ListCommands)

	router.POST("/sessions", h.CreateSession)
	router.GET("/sessions", h.ListSessions)
	router.GET("/sessions/:id", h.GetSession)
	router.DELETE("/sessions/:id", h.DeleteSession)
	router.POST("/sessions/:id/interrupt", h.InterruptSession)

	router.POST("/execute", h.Execute)
	router.GET("/stream", wsHandler.HandleConnection)

	return s, nil
}

func openStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case "memory":
		return store.NewMemory(), nil
	case "sqlite":
		return store.OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run(host, port string) error {
	addr := host + ":" + port
	s.log.Info("starting server", zap.String("addr", addr))
	s.httpSrv = &http.Server{Addr: addr, Handler: s.router}
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			s.log.Warn("http shutdown", zap.Error(err))
		}
	}
	return s.store.Close()
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine { return s.router }
