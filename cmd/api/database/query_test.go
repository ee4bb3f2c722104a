package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/library-tracker/cmd/api/book"
	"github.com/matryer/is"
)

func TestWhereClause(t *testing.T) {
	t.Run("an empty filter has no clause", func(t *testing.T) {
		is := is.New(t)

		where, args := whereClause(book.Filter{})
		is.Equal(where, "")
		is.Equal(len(args), 0)
	})

	t.Run("text matches title or author with escaped wildcards", func(t *testing.T) {
		is := is.New(t)

		where, args := whereClause(book.BuildFilter(`100%_\`, ""))
		is.Equal(where, "\n\tWHERE (b.title ILIKE $1 OR b.author ILIKE $1)")
		is.Equal(args, []any{`%100\%\_\\%`})
	})

	t.Run("genre and text are combined", func(t *testing.T) {
		is := is.New(t)

		genreID := uuid.NewString()
		where, args := whereClause(book.BuildFilter("guia", genreID))
		is.Equal(where, "\n\tWHERE (b.title ILIKE $1 OR b.author ILIKE $1) AND b.genre_id::text = $2")
		is.Equal(args, []any{"%guia%", genreID})
	})
}

func TestSetClause(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("only updated_at for an empty patch", func(t *testing.T) {
		is := is.New(t)

		set, args := setClause(book.BookPatch{UpdatedAt: at})
		is.Equal(set, "updated_at = $2")
		is.Equal(args, []any{at})
	})

	t.Run("cleared fields are written as null and the cover falls back", func(t *testing.T) {
		is := is.New(t)

		genreID := uuid.New()
		set, args := setClause(book.BookPatch{
			Title:     book.Set("Duna"),
			Cover:     book.Cleared[string](),
			Pages:     book.Cleared[int](),
			Status:    book.Set(book.StatusReading),
			Genre:     book.ConnectGenre(genreID),
			UpdatedAt: at,
		})
		is.Equal(set, "title = $2, cover = $3, pages = $4, status = $5, genre_id = $6, updated_at = $7")
		is.Equal(len(args), 6)
		is.Equal(*args[0].(*string), "Duna")
		is.Equal(args[1], book.DefaultCover)
		is.Equal(args[2].(*int), nil)
		is.Equal(args[3], "READING")
		is.Equal(args[4], genreID)
	})

	t.Run("a disconnected genre is written as null", func(t *testing.T) {
		is := is.New(t)

		set, args := setClause(book.BookPatch{Genre: book.DisconnectGenre(), UpdatedAt: at})
		is.Equal(set, "genre_id = $2, updated_at = $3")
		is.Equal(args[0], nil)
	})
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique violation", &pq.Error{Code: "23505"}, book.ErrResponseDuplicateEntry},
		{"foreign key violation", &pq.Error{Code: "23503"}, book.ErrResponseGenreNotFound},
		{"connection exception", &pq.Error{Code: "08006"}, book.ErrResponseStorageUnavailable},
		{"server shutting down", &pq.Error{Code: "57P01"}, book.ErrResponseStorageUnavailable},
		{"bad connection", fmt.Errorf("querying: %w", driver.ErrBadConn), book.ErrResponseStorageUnavailable},
		{"network failure", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, book.ErrResponseStorageUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)

			err := translate(tt.err)
			is.True(errors.Is(err, tt.want))
			is.True(errors.Is(err, tt.err))
		})
	}

	t.Run("leaves unknown faults untouched", func(t *testing.T) {
		is := is.New(t)

		syntax := &pq.Error{Code: "42601"}
		is.Equal(translate(syntax), syntax)
		is.Equal(translate(nil), nil)
		is.Equal(translate(context.DeadlineExceeded), context.DeadlineExceeded)
	})
}
