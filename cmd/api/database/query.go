package database

import (
	"fmt"
	"strings"

	"github.com/library-tracker/cmd/api/book"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

/* Compiles f into a WHERE clause over the books table aliased as b. An empty Filter yields an empty clause. */
func whereClause(f book.Filter) (string, []any) {
	conds := []string{}
	args := []any{}

	if f.HasQuery() {
		args = append(args, "%"+likeEscaper.Replace(f.Query)+"%")
		conds = append(conds, fmt.Sprintf("(b.title ILIKE $%d OR b.author ILIKE $%d)", len(args), len(args)))
	}
	if f.HasGenre() {
		args = append(args, f.GenreID)
		conds = append(conds, fmt.Sprintf("b.genre_id::text = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return "\n\tWHERE " + strings.Join(conds, " AND "), args
}

// setBuilder numbers its placeholders from $2; $1 is the book id.
type setBuilder struct {
	cols []string
	args []any
}

func (s *setBuilder) add(col string, v any) {
	s.args = append(s.args, v)
	s.cols = append(s.cols, fmt.Sprintf("%s = $%d", col, len(s.args)+1))
}

func setField[T any](s *setBuilder, col string, f book.Field[T]) {
	if f.IsUnchanged() {
		return
	}
	s.add(col, f.Ptr())
}

/* Compiles the supplied fields of p into a SET list. updated_at is always written. */
func setClause(p book.BookPatch) (string, []any) {
	s := &setBuilder{}

	setField(s, "title", p.Title)
	setField(s, "author", p.Author)
	if p.Cover.IsCleared() {
		s.add("cover", book.DefaultCover)
	} else {
		setField(s, "cover", p.Cover)
	}
	setField(s, "year", p.Year)
	setField(s, "pages", p.Pages)
	setField(s, "current_page", p.CurrentPage)
	setField(s, "rating", p.Rating)
	setField(s, "synopsis", p.Synopsis)
	setField(s, "isbn", p.ISBN)
	setField(s, "notes", p.Notes)
	if status, ok := p.Status.Get(); ok {
		s.add("status", string(status))
	}

	switch p.Genre.Kind {
	case book.EdgeDisconnect:
		s.add("genre_id", nil)
	case book.EdgeConnect:
		s.add("genre_id", p.Genre.GenreID)
	}

	s.add("updated_at", p.UpdatedAt)
	return strings.Join(s.cols, ", "), s.args
}
