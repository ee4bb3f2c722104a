package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/library-tracker/cmd/api/book"
	"github.com/rs/zerolog"
)

type BookHandler struct {
	bookService    book.ServiceAPI
	requestTimeout time.Duration
	log            zerolog.Logger
}

func NewBookHandler(bookService book.ServiceAPI, requestTimeout time.Duration, logger zerolog.Logger) *BookHandler {
	return &BookHandler{
		bookService:    bookService,
		requestTimeout: requestTimeout,
		log:            logger.With().Str("component", "http").Logger(),
	}
}

/* Returns the books matching the optional query and genre parameters. */
func (h *BookHandler) listBooks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	query := r.URL.Query()
	f := book.BuildFilter(query.Get("query"), query.Get("genre"))

	books, err := h.bookService.ListBooks(ctx, f)
	if err != nil {
		h.responseError(w, err)
		return
	}

	responseJSON(w, http.StatusOK, booksToResponse(books))
}

/* Returns the book with that specific ID. */
func (h *BookHandler) getBookById(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	returnedBook, err := h.bookService.GetBook(ctx, isolateId(r))
	if err != nil {
		h.responseError(w, err)
		return
	}

	responseJSON(w, http.StatusOK, bookToResponse(returnedBook))
}

/* Creates or updates a book from a submitted form. On PUT the id comes from the path. */
func (h *BookHandler) saveBook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	err := r.ParseForm()
	if err != nil {
		h.log.Debug().Err(err).Msg("parsing form")
		responseJSON(w, http.StatusBadRequest, book.ErrResponseInvalidForm)
		return
	}

	form := r.PostForm
	if r.Method == http.MethodPut {
		form.Set(book.FieldID, isolateId(r))
	}

	res := h.bookService.SaveBook(ctx, form)
	switch {
	case res.Success && res.Created:
		responseJSON(w, http.StatusCreated, res)
	case res.Success:
		responseJSON(w, http.StatusOK, res)
	default:
		responseJSON(w, statusFor(res.Code), res)
	}
}

/* Deletes a book. A book that is already gone counts as deleted. */
func (h *BookHandler) deleteBook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	res := h.bookService.RemoveBook(ctx, isolateId(r))
	if !res.Success && res.Code == book.ErrResponseBookNotFound.Code {
		res = book.DeleteResult{Success: true, Message: "book already deleted."}
	}

	if !res.Success {
		responseJSON(w, statusFor(res.Code), res)
		return
	}
	responseJSON(w, http.StatusOK, res)
}

/* Returns every genre sorted by name. */
func (h *BookHandler) listGenres(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	genres, err := h.bookService.ListGenres(ctx)
	if err != nil {
		h.responseError(w, err)
		return
	}

	responseJSON(w, http.StatusOK, genresToResponse(genres))
}

/* Returns the reading statistics of the books matching the optional query and genre parameters. */
func (h *BookHandler) stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	query := r.URL.Query()
	st, err := h.bookService.Stats(ctx, book.BuildFilter(query.Get("query"), query.Get("genre")))
	if err != nil {
		h.responseError(w, err)
		return
	}

	responseJSON(w, http.StatusOK, statsToResponse(st))
}

func isolateId(r *http.Request) string {
	return httprouter.ParamsFromContext(r.Context()).ByName("id")
}

/* Writes the taxonomy entry of err with its matching status. */
func (h *BookHandler) responseError(w http.ResponseWriter, err error) {
	errR := book.Classify(err)
	status := statusFor(errR.Code)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Int("error_code", errR.Code).Msg("request failed")
	}
	responseJSON(w, status, errR)
}

func statusFor(code int) int {
	switch code {
	case book.ErrResponseValidation.Code, book.ErrResponseGenreNotFound.Code:
		return http.StatusUnprocessableEntity
	case book.ErrResponseBookNotFound.Code:
		return http.StatusNotFound
	case book.ErrResponseDuplicateEntry.Code:
		return http.StatusConflict
	case book.ErrResponseStorageUnavailable.Code:
		return http.StatusServiceUnavailable
	case book.ErrResponseRequestTimeout.Code:
		return http.StatusGatewayTimeout
	case book.ErrResponseInvalidForm.Code:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func responseJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	// The status is already written, an encoding failure cannot be reported.
	_ = json.NewEncoder(w).Encode(body)
}
