package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/polkiloo/withdrawal/internal/server/http/dto"
)

const (
	defaultIdleTTL      = 15 * time.Minute
	defaultCleanupEvery = 2 * time.Minute
)

// LimiterStore keeps one token bucket per client key and forgets idle ones.
type LimiterStore struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	clock   clockwork.Clock
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewLimiterStore builds a store allowing rps requests per second with the given burst.
func NewLimiterStore(rps float64, burst int, clk clockwork.Clock) *LimiterStore {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &LimiterStore{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: defaultIdleTTL,
		clock:   clk,
	}
}

// Get returns the limiter for key, creating it on first use.
func (s *LimiterStore) Get(key string) *rate.Limiter {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}
	lim := rate.NewLimiter(s.limit, s.burst)
	s.entries[key] = &limiterEntry{lim: lim, lastSeen: now}
	return lim
}

// Len reports the number of tracked clients.
func (s *LimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup drops limiters not used within the idle TTL.
func (s *LimiterStore) Cleanup() {
	cutoff := s.clock.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// RunJanitor periodically calls Cleanup until ctx is cancelled.
func (s *LimiterStore) RunJanitor(ctx context.Context) {
	ticker := s.clock.NewTicker(defaultCleanupEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.Cleanup()
		}
	}
}

// RateLimit rejects requests above the per client budget with 429.
func RateLimit(store *LimiterStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		lim := store.Get(c.ClientIP())
		res := lim.ReserveN(store.clock.Now(), 1)
		if !res.OK() {
			abortTooMany(c, 0)
			return
		}
		if delay := res.DelayFrom(store.clock.Now()); delay > 0 {
			res.CancelAt(store.clock.Now())
			abortTooMany(c, delay)
			return
		}
		c.Next()
	}
}

func abortTooMany(c *gin.Context, retryAfter time.Duration) {
	if retryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
	}
	c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ProblemResponse{
		Status: http.StatusTooManyRequests,
		Code:   "Request.RateLimited",
		Detail: "Too many requests.",
	})
}
