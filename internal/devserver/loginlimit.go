package devserver

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/miportal/portal/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// attemptIdle is how long an unused allowance is kept before it is swept.
const attemptIdle = 10 * time.Minute

// LoginLimiter throttles credential attempts. Every client IP and submitted
// username pair draws from its own allowance.
type LoginLimiter struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	attempts  map[attemptKey]*attempt
	lastSweep time.Time
	now       func() time.Time
}

type attemptKey struct {
	ip       string
	username string
}

type attempt struct {
	allowance *rate.Limiter
	seen      time.Time
}

// NewLoginLimiter refills perSecond attempts per pair up to burst.
func NewLoginLimiter(perSecond float64, burst int) *LoginLimiter {
	if burst < 1 {
		burst = 1
	}

	logrus.WithFields(logrus.Fields{
		"rate":  perSecond,
		"burst": burst,
	}).Debugln("Login limiter initialized")

	return &LoginLimiter{
		limit:     rate.Limit(perSecond),
		burst:     burst,
		attempts:  make(map[attemptKey]*attempt),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func newAttemptKey(ip, username string) attemptKey {
	return attemptKey{
		ip:       ip,
		username: strings.ToLower(strings.TrimSpace(username)),
	}
}

// Allow reports whether another attempt from ip for username may proceed.
func (l *LoginLimiter) Allow(ip, username string) bool {
	key := newAttemptKey(ip, username)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= attemptIdle {
		l.sweep(now)
	}

	entry, ok := l.attempts[key]
	if !ok {
		entry = &attempt{allowance: rate.NewLimiter(l.limit, l.burst)}
		l.attempts[key] = entry
	}
	entry.seen = now

	return entry.allowance.AllowN(now, 1)
}

// sweep must be called with mu held.
func (l *LoginLimiter) sweep(now time.Time) {
	removed := 0
	for key, entry := range l.attempts {
		if now.Sub(entry.seen) >= attemptIdle {
			delete(l.attempts, key)
			removed++
		}
	}
	l.lastSweep = now

	if removed > 0 {
		logrus.WithField("count", removed).Debugln("Swept idle login allowances")
	}
}

// Len returns the number of tracked ip and username pairs.
func (l *LoginLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts)
}

// Middleware answers 429 once the pair in the login form is over its limit.
func (l *LoginLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		username := c.PostForm("username")

		if l.Allow(ip, username) {
			c.Next()
			return
		}

		logrus.WithFields(logrus.Fields{
			"ip":       ip,
			"username": username,
		}).Warnln("Too many login attempts")

		c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorBody{
			Detail: "Too many login attempts. Please try again later.",
		})
	}
}
