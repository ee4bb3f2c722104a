package http

import (
	"context"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

func TestClientLimiter(t *testing.T) {
	t.Run("refuses a client past its burst", func(t *testing.T) {
		is := is.New(t)
		cl := newClientLimiter(1, 2)
		now := time.Now()

		is.True(cl.allow("192.0.2.1", now))
		is.True(cl.allow("192.0.2.1", now))
		is.True(!cl.allow("192.0.2.1", now))
		is.True(cl.allow("192.0.2.2", now))
	})

	t.Run("forgets idle clients", func(t *testing.T) {
		is := is.New(t)
		cl := newClientLimiter(1, 1)
		now := time.Now()

		cl.allow("192.0.2.1", now.Add(-10*time.Minute))
		cl.allow("192.0.2.2", now)
		cl.forgetIdle(now, 3*time.Minute)

		is.Equal(cl.size(), 1)
	})

	t.Run("the sweep stops when done is closed", func(t *testing.T) {
		is := is.New(t)
		cl := newClientLimiter(1, 1)

		done := make(chan struct{})
		finished := make(chan struct{})
		go func() {
			cl.sweep(done, time.Millisecond, time.Minute)
			close(finished)
		}()
		close(done)

		select {
		case <-finished:
		case <-time.After(time.Second):
			is.Fail() // sweep still running
		}
	})

	t.Run("the sweep stops when the server shuts down", func(t *testing.T) {
		is := is.New(t)
		server := NewServer(ServerConfig{Port: 8080, RateLimitRPS: 1, RateLimitBurst: 1}, NewBookHandler(nil, time.Second, zerolog.Nop()), zerolog.Nop())

		is.NoErr(server.Shutdown(context.Background()))
		// A second shutdown must not close the done channel twice.
		is.NoErr(server.Shutdown(context.Background()))
	})
}
