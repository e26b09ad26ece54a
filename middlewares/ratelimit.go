package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterConfig holds the configuration for the rate limiter
type RateLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
	// IdleTimeout drops a client's limiter after this long without requests.
	IdleTimeout time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterData keeps one limiter per client IP.
type rateLimiterData struct {
	config    RateLimiterConfig
	clients   map[string]*clientLimiter
	lastSweep time.Time
	mu        sync.Mutex
}

func (d *rateLimiterData) allow(ip string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Idle clients are swept at most once per IdleTimeout.
	if now.Sub(d.lastSweep) >= d.config.IdleTimeout {
		for key, client := range d.clients {
			if now.Sub(client.lastSeen) > d.config.IdleTimeout {
				delete(d.clients, key)
			}
		}
		d.lastSweep = now
	}

	client, ok := d.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(d.config.RequestsPerSecond), d.config.Burst)}
		d.clients[ip] = client
	}
	client.lastSeen = now
	return client.limiter.AllowN(now, 1)
}

// NewRateLimiterMiddleware creates a new rate limiter middleware
func NewRateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = 10 * time.Minute
	}
	data := &rateLimiterData{config: config, clients: make(map[string]*clientLimiter), lastSweep: time.Now()}

	return func(c *gin.Context) {
		if !data.allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
