// Package server exposes the pipeline over HTTP with gin.
//
// Uploaded CSV files are parsed into tables and handed to the pipeline
// stages; stage errors are mapped to status codes here and nowhere else.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ezoic/tsreg/pipeline"
	"github.com/ezoic/tsreg/pkg/log"
	"github.com/ezoic/tsreg/storage"
)

// Options configures the HTTP layer.
type Options struct {
	// AllowOrigins lists the CORS origins; "*" allows any origin.
	AllowOrigins []string

	// MaxUploadBytes bounds the request body of the upload routes.
	MaxUploadBytes int64
}

// DefaultOptions allows any origin and 32 MiB uploads.
func DefaultOptions() Options {
	return Options{
		AllowOrigins:   []string{"*"},
		MaxUploadBytes: 32 << 20,
	}
}

// Server holds the gin engine and its dependencies.
type Server struct {
	svc    *pipeline.Service
	store  storage.Store
	opts   Options
	engine *gin.Engine
	logger log.Logger
}

// New builds the router. The store is used directly only to serve chart
// blobs for backends without a public endpoint.
func New(svc *pipeline.Service, store storage.Store, opts Options) *Server {
	if len(opts.AllowOrigins) == 0 {
		opts.AllowOrigins = DefaultOptions().AllowOrigins
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultOptions().MaxUploadBytes
	}

	s := &Server{
		svc:    svc,
		store:  store,
		opts:   opts,
		logger: log.GetLoggerWithName("server"),
	}
	s.engine = s.setupRoutes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRoutes() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = s.opts.MaxUploadBytes

	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(accessLog())
	r.Use(cors.New(s.corsConfig()))

	r.GET("/", s.Index)
	r.GET("/health", s.Health)
	r.GET("/blobs/:container/:key", s.Blob)

	uploads := r.Group("/", limitBody(s.opts.MaxUploadBytes))
	{
		uploads.POST("/upload/", s.Upload)
		uploads.POST("/avaliar/", s.Evaluate)
		uploads.POST("/prever/", s.Predict)
	}
	r.GET("/prever/csv/", s.PredictionsCSV)
	r.POST("/reset/", s.Reset)

	return r
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range s.opts.AllowOrigins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = s.opts.AllowOrigins
	cfg.AllowCredentials = true
	return cfg
}
