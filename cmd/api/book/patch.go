package book

import "time"

// BookPatch is validated book data. On create every Unchanged field takes
// its default; on update only the fields that are not Unchanged are written.
type BookPatch struct {
	Title       Field[string]
	Author      Field[string]
	Cover       Field[string]
	Year        Field[int]
	Pages       Field[int]
	CurrentPage Field[int]
	Rating      Field[int]
	Synopsis    Field[string]
	ISBN        Field[string]
	Notes       Field[string]
	Status      Field[Status]
	Genre       GenreEdge
	UpdatedAt   time.Time
}

/* Returns b with every supplied field of the patch written over it. */
func (p BookPatch) Apply(b Book) Book {
	if v, ok := p.Title.Get(); ok {
		b.Title = v
	}
	if v, ok := p.Author.Get(); ok {
		b.Author = v
	}
	if v, ok := p.Cover.Get(); ok {
		b.Cover = v
	} else if p.Cover.IsCleared() {
		b.Cover = DefaultCover
	}
	if v, ok := p.Status.Get(); ok {
		b.Status = v
	}

	p.Year.applyTo(&b.Year)
	p.Pages.applyTo(&b.Pages)
	p.CurrentPage.applyTo(&b.CurrentPage)
	p.Rating.applyTo(&b.Rating)
	p.Synopsis.applyTo(&b.Synopsis)
	p.ISBN.applyTo(&b.ISBN)
	p.Notes.applyTo(&b.Notes)
	p.Genre.applyTo(&b)

	if !p.UpdatedAt.IsZero() {
		b.UpdatedAt = p.UpdatedAt
	}
	return b
}
