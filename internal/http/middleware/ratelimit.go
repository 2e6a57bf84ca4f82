// ported from https://github.com/bernardinorafael/go-boilerplate/tree/main/internal/infra/http/middleware/ratelimit.go
package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	// DefaultRateLimit is the number of requests per second
	DefaultRateLimit = 1
	// DefaultBurst is the maximum number of requests that can be made in a single burst
	DefaultBurst = 4

	clientTTL = 3 * time.Minute
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit limits each client IP to limit requests per second. Idle clients
// are forgotten until ctx is done.
func RateLimit(ctx context.Context, limit rate.Limit, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	var clients = make(map[string]*client)

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			mu.Lock()
			for ip, client := range clients {
				if time.Since(client.lastSeen) > clientTTL {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		mu.Lock()

		ip := c.ClientIP()
		if _, ok := clients[ip]; !ok {
			clients[ip] = &client{
				limiter: rate.NewLimiter(limit, burst),
			}
		}
		clients[ip].lastSeen = time.Now()

		if !clients[ip].limiter.Allow() {
			mu.Unlock()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Rate limit exceeded",
			})
			return
		}

		mu.Unlock()
		c.Next()
	}
}
