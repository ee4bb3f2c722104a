package notifications

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/library-tracker/cmd/api/book"
	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

type message struct {
	path string
	body string
}

/* Starts a fake ntfy server recording every message it receives. */
func newTopicServer(t *testing.T, status int) (*httptest.Server, func() []message) {
	var (
		mu       sync.Mutex
		received []message
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		received = append(received, message{path: r.URL.Path, body: string(body)})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)

	return server, func() []message {
		mu.Lock()
		defer mu.Unlock()
		return append([]message(nil), received...)
	}
}

func TestBookCreated(t *testing.T) {
	t.Run("notificates the creation of a new book without errors", func(t *testing.T) {
		is := is.New(t)
		server, received := newTopicServer(t, http.StatusOK)
		ntfy := NewNtfy(true, server.URL+"/", server.Client(), zerolog.Nop())

		err := ntfy.BookCreated(context.Background(), book.Book{Title: "Duna", Author: "Frank Herbert"})
		is.NoErr(err)
		is.Equal(received(), []message{{path: "/New_book_created", body: "New book created:\nTitle: Duna\nAuthor: Frank Herbert"}})
	})

	t.Run("sends nothing when notifications are disabled", func(t *testing.T) {
		is := is.New(t)
		server, received := newTopicServer(t, http.StatusOK)
		ntfy := NewNtfy(false, server.URL, server.Client(), zerolog.Nop())

		is.NoErr(ntfy.BookCreated(context.Background(), book.Book{Title: "Duna"}))
		is.Equal(len(received()), 0)
	})

	t.Run("a rejected message is an error", func(t *testing.T) {
		is := is.New(t)
		server, _ := newTopicServer(t, http.StatusTooManyRequests)
		ntfy := NewNtfy(true, server.URL, server.Client(), zerolog.Nop())

		err := ntfy.BookCreated(context.Background(), book.Book{Title: "Duna"})
		is.True(err != nil)
	})

	t.Run("expected context timeout error", func(t *testing.T) {
		is := is.New(t)
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)
		ntfy := NewNtfy(true, server.URL, server.Client(), zerolog.Nop())

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := ntfy.BookCreated(ctx, book.Book{Title: "book to test context timeout"})
		is.True(errors.Is(err, context.DeadlineExceeded))
	})
}

func TestBookFinished(t *testing.T) {
	is := is.New(t)
	server, received := newTopicServer(t, http.StatusOK)
	ntfy := NewNtfy(true, server.URL, server.Client(), zerolog.Nop())

	pages := 412
	err := ntfy.BookFinished(context.Background(), book.Book{Title: "Duna", Author: "Frank Herbert", Pages: &pages})
	is.NoErr(err)
	is.Equal(received(), []message{{path: "/Book_finished", body: "Book finished:\nTitle: Duna\nAuthor: Frank Herbert\nPages: 412"}})
}
