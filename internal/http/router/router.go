package router

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vnxcius/grumbot/internal/http/handlers"
	"github.com/vnxcius/grumbot/internal/http/middleware"
	"golang.org/x/time/rate"
)

type Options struct {
	Token          string
	AllowedOrigins []string
	RateLimit      rate.Limit
	Burst          int
}

// NewRouter builds the status API. ctx bounds the rate limiter's cleanup.
func NewRouter(ctx context.Context, log *slog.Logger, lister handlers.Lister, opts Options) (*gin.Engine, error) {
	r := gin.New()
	r.Use(middleware.SlogLoggerMiddleware(log))
	r.Use(gin.Recovery())

	// since we're using Cloudflare Tunnel to reverse proxy the API
	// we should trust only localhost
	if err := r.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	if len(opts.AllowedOrigins) > 0 {
		log.Info("Allowing origins", "origins", opts.AllowedOrigins)
		r.Use(cors.New(cors.Config{
			AllowOrigins: opts.AllowedOrigins,
			AllowMethods: []string{"GET", "OPTIONS"},
			AllowHeaders: []string{"Content-Type", "Authorization"},
			ExposeHeaders: []string{
				"Content-Length",
				middleware.RequestIDHeader,
			},
			AllowCredentials: true,
			MaxAge:           24 * time.Hour,
		}))
	}

	limit, burst := opts.RateLimit, opts.Burst
	if limit == 0 {
		limit = middleware.DefaultRateLimit
	}
	if burst == 0 {
		burst = middleware.DefaultBurst
	}
	limiter := middleware.RateLimit(ctx, limit, burst)

	h := handlers.New(lister)

	{
		v2 := r.Group("/api/v2").Use(limiter)
		v2.GET("/ping", handlers.Ping)
		v2.GET("/servers", h.Servers(false))
		v2.GET("/servers/:name/players", h.Players(false))
	}

	{
		protected := r.Group("/api/v2/signed")
		protected.Use(limiter)
		protected.Use(middleware.TokenAuth(opts.Token))

		protected.GET("/servers", h.Servers(true))
		protected.GET("/servers/:name/players", h.Players(true))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not Found: " + c.Request.URL.Path})
	})

	return r, nil
}
