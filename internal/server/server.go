package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/assesskit/assessrec/internal/recommend"
)

const defaultRequestTimeout = 120 * time.Second

// IndexInfo exposes read-only index facts for the health endpoint.
type IndexInfo interface {
	Count() int
}

// Config holds the boundary settings.
type Config struct {
	Addr           string
	RequestTimeout time.Duration
	// Model names the primary provider model, reported by /health.
	Model string
	Debug bool
}

// Server is the HTTP boundary in front of the recommendation pipeline.
type Server struct {
	recommender *recommend.Recommender
	info        IndexInfo
	cfg         Config
	logger      *zap.Logger
	router      *gin.Engine
}

// New creates the server and registers its routes. A nil recommender is
// allowed; requests are answered with service-unavailable until one exists.
func New(recommender *recommend.Recommender, info IndexInfo, cfg Config, logger *zap.Logger) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		recommender: recommender,
		info:        info,
		cfg:         cfg,
		logger:      logger,
		router:      router,
	}

	router.GET("/health", s.handleHealth)
	router.POST("/recommend", s.handleRecommend)

	return s
}

// Handler exposes the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts serving on the configured address and blocks.
func (s *Server) Run() error {
	s.logger.Info("starting http server", zap.String("addr", s.cfg.Addr))
	return s.router.Run(s.cfg.Addr)
}
