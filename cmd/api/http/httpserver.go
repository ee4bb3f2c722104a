package http

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/library-tracker/cmd/api/book"
	"github.com/rs/zerolog"
)

type ServerConfig struct {
	Port           int
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewServer(config ServerConfig, h *BookHandler, logger zerolog.Logger) *http.Server {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(notFound)
	router.MethodNotAllowed = http.HandlerFunc(methodNotAllowed)

	router.HandlerFunc(http.MethodGet, "/ping", ping)
	router.HandlerFunc(http.MethodGet, "/books", h.listBooks)
	router.HandlerFunc(http.MethodPost, "/books", h.saveBook)
	router.HandlerFunc(http.MethodGet, "/books/:id", h.getBookById)
	router.HandlerFunc(http.MethodPut, "/books/:id", h.saveBook)
	router.HandlerFunc(http.MethodDelete, "/books/:id", h.deleteBook)
	router.HandlerFunc(http.MethodGet, "/genres", h.listGenres)
	router.HandlerFunc(http.MethodGet, "/stats", h.stats)

	// Background middleware work stops on server.Shutdown.
	done := make(chan struct{})
	var stopOnce sync.Once

	m := &middleware{log: logger.With().Str("component", "http").Logger()}
	var handler http.Handler = router
	if config.RateLimitRPS > 0 {
		handler = m.rateLimit(handler, config.RateLimitRPS, config.RateLimitBurst, done)
	}
	handler = m.recoverPanic(m.logRequests(handler))

	server := http.Server{
		Addr:              fmt.Sprintf(":%d", config.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	server.RegisterOnShutdown(func() {
		stopOnce.Do(func() { close(done) })
	})
	return &server
}

/* Tests the http server connection.  */
func ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	responseJSON(w, http.StatusNotFound, book.ErrResponse{Code: http.StatusNotFound, Message: "the requested resource could not be found"})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	responseJSON(w, http.StatusMethodNotAllowed, book.ErrResponse{Code: http.StatusMethodNotAllowed, Message: fmt.Sprintf("the %s method is not supported for this resource", r.Method)})
}
