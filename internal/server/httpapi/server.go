// Package httpapi wires the gin router and HTTP server for the stillmind
// backend: registration/login, the record sync endpoints and presigned
// content URLs.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stillmind/stillmind/internal/logging"
)

// NewRouter builds the gin engine with recovery, CORS and the API routes.
// Everything under /api/v1 except register/login/ping requires a bearer
// token.
func NewRouter(h *Handler, secretKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type"},
	}))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/register", h.register)
		v1.POST("/login", h.login)
		v1.GET("/ping", h.ping)
	}

	authorized := r.Group("/api/v1")
	authorized.Use(Auth(secretKey))
	{
		authorized.POST("/records", h.upsertRecord)
		authorized.GET("/records", h.pullRecords)
		authorized.POST("/records/:id/delete", h.deleteRecord)
		authorized.GET("/content/url", h.contentURL)
	}
	return r
}

// Server runs the HTTP API with graceful shutdown on context cancellation.
type Server struct {
	address string
	router  *gin.Engine
	logger  logging.Logger
}

func NewServer(address string, router *gin.Engine, logger logging.Logger) *Server {
	return &Server{
		address: address,
		router:  router,
		logger:  logger.With("module", "http_server"),
	}
}

// Run serves until ctx is done, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}
