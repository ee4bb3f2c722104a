package book

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCover is stored whenever a book is saved without a cover.
const DefaultCover = "/bookoru-capa.jpeg"

type Status string

const (
	StatusWantToRead Status = "WANT_TO_READ"
	StatusReading    Status = "READING"
	StatusFinished   Status = "FINISHED"
	StatusPaused     Status = "PAUSED"
	StatusAbandoned  Status = "ABANDONED"
)

// Statuses lists the reading statuses in the order they are offered to users.
var Statuses = []Status{StatusWantToRead, StatusReading, StatusFinished, StatusPaused, StatusAbandoned}

/* Reports whether s belongs to the status enumeration. */
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

type Genre struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

type Book struct {
	ID          uuid.UUID
	Title       string
	Author      string
	Cover       string
	Year        *int
	Pages       *int
	CurrentPage *int
	Rating      *int
	Synopsis    *string
	ISBN        *string
	Notes       *string
	Status      Status
	GenreID     *uuid.UUID
	Genre       *Genre
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

/* Returns the percentage of pages read, when both page counters are known. */
func (b Book) Progress() (int, bool) {
	if b.Pages == nil || b.CurrentPage == nil || *b.Pages == 0 {
		return 0, false
	}
	return (*b.CurrentPage*100 + *b.Pages/2) / *b.Pages, true
}
