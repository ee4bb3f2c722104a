package book

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// Filter is the composed search predicate handed to a Repository.
// The zero Filter matches every book.
type Filter struct {
	// Query matches title or author by case-insensitive substring. Empty contributes nothing.
	Query string
	// GenreID matches the genre reference exactly. Empty contributes nothing.
	GenreID string
}

/* Composes the predicate from the optional search text and genre selection. */
func BuildFilter(query, genreID string) Filter {
	f := Filter{Query: strings.TrimSpace(query)}
	if genreID = strings.TrimSpace(genreID); genreID != GenreAll {
		// Stores keep the canonical lowercase form.
		if id, err := uuid.Parse(genreID); err == nil {
			genreID = id.String()
		}
		f.GenreID = genreID
	}
	return f
}

func (f Filter) HasQuery() bool { return f.Query != "" }
func (f Filter) HasGenre() bool { return f.GenreID != "" }

/* Evaluates the predicate against a single book. Conditions are combined with AND. */
func (f Filter) Matches(b Book) bool {
	if f.HasGenre() && (b.GenreID == nil || b.GenreID.String() != f.GenreID) {
		return false
	}
	if f.HasQuery() {
		q := Fold(f.Query)
		if !strings.Contains(Fold(b.Title), q) && !strings.Contains(Fold(b.Author), q) {
			return false
		}
	}
	return true
}

// Fold applies Unicode case folding. Accents are left untouched.
func Fold(s string) string {
	return cases.Fold().String(s)
}
