package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/library-tracker/cmd/api/book"
)

type GenreResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type BookResponse struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Author      string         `json:"author"`
	Cover       string         `json:"cover"`
	Year        *int           `json:"year"`
	Pages       *int           `json:"pages"`
	CurrentPage *int           `json:"currentPage"`
	Rating      *int           `json:"rating"`
	Synopsis    *string        `json:"synopsis"`
	ISBN        *string        `json:"isbn"`
	Notes       *string        `json:"notes"`
	Status      book.Status    `json:"status"`
	GenreID     *uuid.UUID     `json:"genreId"`
	Genre       *GenreResponse `json:"genre"`
	Progress    *int           `json:"progress"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type StatsResponse struct {
	Total       int `json:"total"`
	Reading     int `json:"reading"`
	Finished    int `json:"finished"`
	PagesTotal  int `json:"pagesTotal"`
	PagesRead   int `json:"pagesRead"`
	PercentRead int `json:"percentRead"`
}

/*Copy the fields of a book object to an http layer struct with json tags*/
func bookToResponse(b book.Book) BookResponse {
	resp := BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Cover:       b.Cover,
		Year:        b.Year,
		Pages:       b.Pages,
		CurrentPage: b.CurrentPage,
		Rating:      b.Rating,
		Synopsis:    b.Synopsis,
		ISBN:        b.ISBN,
		Notes:       b.Notes,
		Status:      b.Status,
		GenreID:     b.GenreID,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if b.Genre != nil {
		g := genreToResponse(*b.Genre)
		resp.Genre = &g
	}
	if progress, ok := b.Progress(); ok {
		resp.Progress = &progress
	}
	return resp
}

func booksToResponse(books []book.Book) []BookResponse {
	resp := make([]BookResponse, 0, len(books))
	for _, b := range books {
		resp = append(resp, bookToResponse(b))
	}
	return resp
}

func genreToResponse(g book.Genre) GenreResponse {
	return GenreResponse{ID: g.ID, Name: g.Name}
}

func genresToResponse(genres []book.Genre) []GenreResponse {
	resp := make([]GenreResponse, 0, len(genres))
	for _, g := range genres {
		resp = append(resp, genreToResponse(g))
	}
	return resp
}

func statsToResponse(st book.Stats) StatsResponse {
	return StatsResponse{
		Total:       st.Total,
		Reading:     st.Reading,
		Finished:    st.Finished,
		PagesTotal:  st.PagesTotal,
		PagesRead:   st.PagesRead,
		PercentRead: st.PercentRead,
	}
}
