package book

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Form field names accepted on create and update.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldAuthor      = "author"
	FieldCover       = "cover"
	FieldSynopsis    = "synopsis"
	FieldStatus      = "status"
	FieldGenreID     = "genreId"
	FieldYear        = "year"
	FieldPages       = "pages"
	FieldCurrentPage = "currentPage"
	FieldRating      = "rating"
	FieldISBN        = "isbn"
	FieldNotes       = "notes"
)

// Sentinel values that never name a real genre.
const (
	GenreNone = "none"
	GenreAll  = "all"
)

// Candidate is a submitted form after trimming and parsing, before validation.
type Candidate struct {
	ID          string
	Title       Field[string]
	Author      Field[string]
	Cover       Field[string]
	Synopsis    Field[string]
	Status      Field[string]
	GenreID     Field[string]
	Year        Field[float64]
	Pages       Field[float64]
	CurrentPage Field[float64]
	Rating      Field[float64]
	ISBN        Field[string]
	Notes       Field[string]

	// Discarded names the numeric fields whose value was not a finite number
	// and was therefore ignored, leaving the stored value untouched.
	Discarded []string
}

/* Converts raw form values into a typed candidate. Keys that were not submitted stay Unchanged. */
func NormalizeForm(form url.Values) Candidate {
	c := Candidate{
		ID:       strings.TrimSpace(form.Get(FieldID)),
		Title:    requiredText(form, FieldTitle),
		Author:   requiredText(form, FieldAuthor),
		Synopsis: optionalText(form, FieldSynopsis),
		ISBN:     optionalText(form, FieldISBN),
		Notes:    optionalText(form, FieldNotes),
	}

	if form.Has(FieldCover) {
		c.Cover = Set(DefaultCover)
		if cover := strings.TrimSpace(form.Get(FieldCover)); cover != "" {
			c.Cover = Set(cover)
		}
	}

	if status := strings.TrimSpace(form.Get(FieldStatus)); status != "" {
		c.Status = Set(status)
	}

	if form.Has(FieldGenreID) {
		c.GenreID = Cleared[string]()
		genreID := strings.TrimSpace(form.Get(FieldGenreID))
		if genreID != "" && genreID != GenreNone {
			c.GenreID = Set(genreID)
		}
	}

	c.Year = c.number(form, FieldYear)
	c.Pages = c.number(form, FieldPages)
	c.CurrentPage = c.number(form, FieldCurrentPage)
	c.Rating = c.number(form, FieldRating)

	return c
}

/* Title and author stay Set even when blank so validation can report them. */
func requiredText(form url.Values, key string) Field[string] {
	if !form.Has(key) {
		return Unchanged[string]()
	}
	return Set(strings.TrimSpace(form.Get(key)))
}

func optionalText(form url.Values, key string) Field[string] {
	if !form.Has(key) {
		return Unchanged[string]()
	}
	v := strings.TrimSpace(form.Get(key))
	if v == "" {
		return Cleared[string]()
	}
	return Set(v)
}

func (c *Candidate) number(form url.Values, key string) Field[float64] {
	if !form.Has(key) {
		return Unchanged[float64]()
	}
	raw := strings.TrimSpace(form.Get(key))
	if raw == "" {
		return Cleared[float64]()
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		c.Discarded = append(c.Discarded, key)
		return Unchanged[float64]()
	}
	return Set(n)
}
