// Package server is the host daemon's admin API: health, metrics, and
// read-only views of the binding table and execution history for the
// configuration editor.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/NoobyNull/crowdisplay/internal/action"
	"github.com/NoobyNull/crowdisplay/internal/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Server hosts the admin API.
type Server struct {
	addr string
	http *http.Server
	log  zerolog.Logger
}

// New builds the admin server over the dispatcher's state.
func New(addr string, corsOrigins []string, d *action.Dispatcher, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(logger))
	if len(corsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: corsOrigins,
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}
	registerRoutes(r, d)

	return &Server{
		addr: addr,
		http: &http.Server{Addr: addr, Handler: r},
		log:  logger,
	}
}

// Run serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- s.http.ListenAndServe() }()
	s.log.Info().Str("addr", s.addr).Msg("admin api listening")

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.http.Shutdown(shutCtx)
		<-errc
		return ctx.Err()
	case err := <-errc:
		return err
	}
}
