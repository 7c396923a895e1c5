package transport

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/anime-shed/ratemylooks/internal/config"
	apperrors "github.com/anime-shed/ratemylooks/internal/errors"
	"github.com/anime-shed/ratemylooks/internal/logger"
	"github.com/anime-shed/ratemylooks/pkg/models"
)

const devRequestsPerMinute = 1000

// rateRule allows limit requests per window for each client IP
type rateRule struct {
	name    string
	limit   int
	window  time.Duration
	message string
}

type rateLimits struct {
	general  *ipLimiter
	analysis *ipLimiter
	burst    *ipLimiter
}

func newRateLimits(cfg *config.Config, now func() time.Time) rateLimits {
	general := rateRule{
		name:    "general",
		limit:   cfg.RateLimitGeneral,
		window:  time.Hour,
		message: fmt.Sprintf("You have exceeded the free tier limit of %d requests per hour. Please try again later.", cfg.RateLimitGeneral),
	}
	if cfg.IsDevelopment() {
		general = rateRule{
			name:    "development",
			limit:   devRequestsPerMinute,
			window:  time.Minute,
			message: "Development rate limit exceeded",
		}
	}

	return rateLimits{
		general: newIPLimiter(general, now),
		analysis: newIPLimiter(rateRule{
			name:    "analysis",
			limit:   cfg.RateLimitAnalysis,
			window:  time.Hour,
			message: fmt.Sprintf("Analysis limit reached. You can perform %d photo analyses per hour on the free tier.", cfg.RateLimitAnalysis),
		}, now),
		burst: newIPLimiter(rateRule{
			name:    "burst",
			limit:   cfg.RateLimitBurst,
			window:  time.Minute,
			message: "Too many requests in a short time. Please slow down and try again.",
		}, now),
	}
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter keeps one token bucket per client. Buckets idle for a full window are dropped.
type ipLimiter struct {
	rule      rateRule
	now       func() time.Time
	mu        sync.Mutex
	clients   map[string]*clientBucket
	lastSweep time.Time
}

func newIPLimiter(rule rateRule, now func() time.Time) *ipLimiter {
	if rule.limit < 1 {
		rule.limit = 1
	}
	return &ipLimiter{
		rule:      rule,
		now:       now,
		clients:   make(map[string]*clientBucket),
		lastSweep: now(),
	}
}

// allow consumes one token for key, or reports how long until one is available
func (l *ipLimiter) allow(key string) (time.Duration, bool) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.rule.window {
		for k, b := range l.clients {
			if now.Sub(b.lastSeen) >= l.rule.window {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.clients[key]
	if !ok {
		every := rate.Every(l.rule.window / time.Duration(l.rule.limit))
		b = &clientBucket{limiter: rate.NewLimiter(every, l.rule.limit)}
		l.clients[key] = b
	}
	b.lastSeen = now

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return l.rule.window, false
	}
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return wait, false
	}
	return 0, true
}

func (l *ipLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// rateLimit checks each limiter in order and rejects with 429 on the first exhausted one
func rateLimit(limiters ...*ipLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		for _, l := range limiters {
			wait, ok := l.allow(ip)
			if ok {
				continue
			}

			seconds := int(math.Ceil(wait.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			logger.WithFields(logrus.Fields{
				"ip":          ip,
				"path":        c.Request.URL.Path,
				"limiter":     l.rule.name,
				"retry_after": seconds,
			}).Warn("Rate limit exceeded")

			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Success:    false,
				Error:      l.rule.message,
				Code:       apperrors.CodeRateLimitExceeded,
				RetryAfter: fmt.Sprintf("%d seconds", seconds),
				Timestamp:  l.now().UTC().Format(time.RFC3339),
			})
			return
		}
		c.Next()
	}
}
