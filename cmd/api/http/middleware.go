package http

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/library-tracker/cmd/api/book"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type middleware struct {
	log zerolog.Logger
}

/* Turns a panic in a downstream handler into a 500 response. */
func (m *middleware) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				m.log.Error().Err(fmt.Errorf("%v", err)).Str("method", r.Method).Str("path", r.URL.Path).Msg("handler panicked")
				responseJSON(w, http.StatusInternalServerError, book.ErrResponseFromRepository)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (m *middleware) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		m.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	rps     float64
	burst   int
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	return &clientLimiter{clients: make(map[string]*client), rps: rps, burst: burst}
}

func (cl *clientLimiter) allow(ip string, now time.Time) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	c, found := cl.clients[ip]
	if !found {
		c = &client{limiter: rate.NewLimiter(rate.Limit(cl.rps), cl.burst)}
		cl.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

/* Forgets the clients not seen for longer than idle. */
func (cl *clientLimiter) forgetIdle(now time.Time, idle time.Duration) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	for ip, c := range cl.clients {
		if now.Sub(c.lastSeen) > idle {
			delete(cl.clients, ip)
		}
	}
}

func (cl *clientLimiter) size() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.clients)
}

/* Runs forgetIdle every interval until done is closed. */
func (cl *clientLimiter) sweep(done <-chan struct{}, every, idle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			cl.forgetIdle(now, idle)
		}
	}
}

/* Applies a token bucket per client IP. Clients idle for three minutes are forgotten until done is closed. */
func (m *middleware) rateLimit(next http.Handler, rps float64, burst int, done <-chan struct{}) http.Handler {
	limiter := newClientLimiter(rps, burst)
	go limiter.sweep(done, time.Minute, 3*time.Minute)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !limiter.allow(ip, time.Now()) {
			m.log.Warn().Str("ip", ip).Msg("rate limit exceeded")
			responseJSON(w, http.StatusTooManyRequests, book.ErrResponse{Code: http.StatusTooManyRequests, Message: "rate limit exceeded"})
			return
		}

		next.ServeHTTP(w, r)
	})
}
