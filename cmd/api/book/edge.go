package book

import (
	"fmt"

	"github.com/google/uuid"
)

type EdgeKind uint8

const (
	EdgeUnchanged EdgeKind = iota
	EdgeDisconnect
	EdgeConnect
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeDisconnect:
		return "disconnect"
	case EdgeConnect:
		return "connect"
	default:
		return "unchanged"
	}
}

// GenreEdge is the mutation to apply to a book's genre reference.
// GenreID is only meaningful for EdgeConnect.
type GenreEdge struct {
	Kind    EdgeKind
	GenreID uuid.UUID
}

func ConnectGenre(id uuid.UUID) GenreEdge {
	return GenreEdge{Kind: EdgeConnect, GenreID: id}
}

func DisconnectGenre() GenreEdge {
	return GenreEdge{Kind: EdgeDisconnect}
}

/* Decides whether the genre reference is kept, cleared or replaced. */
func ResolveGenreEdge(genreID Field[string]) (GenreEdge, error) {
	raw, ok := genreID.Get()
	switch {
	case genreID.IsUnchanged():
		return GenreEdge{}, nil
	case !ok || raw == "":
		return DisconnectGenre(), nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return GenreEdge{}, fmt.Errorf("resolving genre %q: %w", raw, ErrResponseGenreNotFound)
	}
	return ConnectGenre(id), nil
}

/* Applies the edge onto a book, leaving the resolved Genre to the caller. */
func (e GenreEdge) applyTo(b *Book) {
	switch e.Kind {
	case EdgeDisconnect:
		b.GenreID = nil
		b.Genre = nil
	case EdgeConnect:
		id := e.GenreID
		b.GenreID = &id
		if b.Genre != nil && b.Genre.ID != id {
			b.Genre = nil
		}
	}
}
