package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/library-tracker/cmd/api/book"
	bookhttp "github.com/library-tracker/cmd/api/http"
	httpmock "github.com/library-tracker/cmd/api/http/mocks"
	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

var requestTimeout = 2 * time.Second

func newServer(t *testing.T, config bookhttp.ServerConfig) (*http.Server, *httpmock.MockServiceAPI) {
	ctrl := gomock.NewController(t)
	mockAPI := httpmock.NewMockServiceAPI(ctrl)
	bookHandler := bookhttp.NewBookHandler(mockAPI, requestTimeout, zerolog.Nop())
	server := bookhttp.NewServer(config, bookHandler, zerolog.Nop())
	t.Cleanup(func() { _ = server.Shutdown(context.Background()) })
	return server, mockAPI
}

func formRequest(method, target string, form url.Values) *http.Request {
	request := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return request
}

func readBody(is *is.I, response *httptest.ResponseRecorder) string {
	is.Helper()

	body, err := io.ReadAll(response.Result().Body)
	is.NoErr(err)
	return string(body)
}

func TestPing(t *testing.T) {
	is := is.New(t)
	server, _ := newServer(t, bookhttp.ServerConfig{Port: 8080})

	response := httptest.NewRecorder()
	server.Handler.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/ping", nil))
	is.Equal(response.Result().StatusCode, http.StatusNoContent)

	response = httptest.NewRecorder()
	server.Handler.ServeHTTP(response, httptest.NewRequest(http.MethodPost, "/ping", nil))
	is.Equal(response.Result().StatusCode, http.StatusMethodNotAllowed)
}

func TestSaveBook(t *testing.T) {
	server, mockAPI := newServer(t, bookhttp.ServerConfig{Port: 8080})

	t.Run("creates a book without errors", func(t *testing.T) {
		is := is.New(t)

		form := url.Values{"title": {"O Hobbit"}, "author": {"J.R.R. Tolkien"}, "genreId": {"none"}}
		newID := uuid.NewString()

		mockAPI.EXPECT().SaveBook(gomock.Any(), form).Return(book.SaveResult{
			Success: true, ID: newID, Message: "book created successfully.", Created: true,
		})

		response := httptest.NewRecorder()
		server.Handler.ServeHTTP(response, formRequest(http.MethodPost, "/books", form))

		is.Equal(response.Result().StatusCode, http.StatusCreated)
		is.Equal(readBody(is, response), fmt.Sprintf(`{"success":true,"id":"%s","message":"book created successfully."}`+"\n", newID))
	})

	t.Run("a form carrying an id is an update", func(t *testing.T) {
		is := is.New(t)

		id := uuid.NewString()
		form := url.Values{"id": {id}, "notes": {""}}

		mockAPI.EXPECT().SaveBook(gomock.Any(), form).Return(book.SaveResult{Success: true, ID: id, Message: "book updated successfully."})

		response := httptest.NewRecorder()
		server.Handler.ServeHTTP(response, formRequest(http.MethodPost, "/books", form))
		is.Equal(response.Result().StatusCode, http.StatusOK)
	})

	t.Run("put takes the id from the path", func(t *testing.T) {
		is := is.New(t)

		id := uuid.NewString()
		mockAPI.EXPECT().SaveBook(gomock.Any(), url.Values{"id": {id}, "status": {"READING"}}).
			Return(book.SaveResult{Success: true, ID: id, Message: "book updated successfully."})

		response := httptest.NewRecorder()
		server.Handler.ServeHTTP(response, formRequest(http.MethodPut, "/books/"+id, url.Values{"status": {"READING"}}))
		is.Equal(response.Result().StatusCode, http.StatusOK)
	})

	t.Run("field errors are unprocessable", func(t *testing.T) {
		is := is.New(t)

		mockAPI.EXPECT().SaveBook(gomock.Any(), gomock.Any()).Return(book.SaveResult{
			Code:        book.ErrResponseValidation.Code,
			Message:     book.ErrResponseValidation.Message,
			FieldErrors: book.FieldErrors{"title": {"is required"}},
		})

		response := httptest.NewRecorder()
		server.Handler.ServeHTTP(response, formRequest(http.MethodPost, "/books", url.Values{"title": {""}}))

		is.Equal(response.Result().StatusCode, http.StatusUnprocessableEntity)
		is.Equal(readBody(is, response), `{"success":false,"message":"some fields are invalid.","code":100,"fieldErrors":{"title":["is required"]}}`+"\n")
	})

	t.Run("maps failures to their status", func(t *testing.T) {
		tests := []struct {
			errR   book.ErrResponse
			status int
		}{
			{book.ErrResponseDuplicateEntry, http.StatusConflict},
			{book.ErrResponseBookNotFound, http.StatusNotFound},
			{book.ErrResponseStorageUnavailable, http.StatusServiceUnavailable},
			{book.ErrResponseFromRepository, http.StatusInternalServerError},
		}
		for _, tt := range tests {
			is := is.New(t)

			mockAPI.EXPECT().SaveBook(gomock.Any(), gomock.Any()).Return(book.SaveResult{Code: tt.errR.Code, Message: tt.errR.Message})

			response := httptest.NewRecorder()
			server.Handler.ServeHTTP(response, formRequest(http.MethodPost, "/books", url.Values{"title": {"x"}}))
			is.Equal(response.Result().StatusCode, tt.status)
		}
	})

	t.Run("a malformed form is a bad request", func(t *testing.T) {
		is := is.New(t)

		request := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader("title=%zz"))
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		response := httptest.NewRecorder()
		server.Handler.ServeHTTP(response, request)

		is.Equal(response.Result().StatusCode, http.StatusBadRequest)
		is.Equal(readBody(is, response), `{"error_code":106,"error_message":"invalid form request."}`+"\n")
	})
}

func TestGetBook(t *testing.T) {
	server, mockAPI := newServer(t, bookhttp.ServerConfig{Port: 8080})

	t.Run("Gets a book by ID without errors", func(t *testing.T) {
		is := is.New(t)

		genreID := uuid.New()
		b := book.Book{
			ID:          uuid.New(),
			Title:       "Duna",
			Author:      "Frank Herbert",
			Cover:       book.DefaultCover,
			Pages:       toPointer(200),
			CurrentPage: toPointer(50),
			Status:      book.StatusReading,
			GenreID:     &genreID,
			Genre:       &book.Genre{ID: genreID, Name: "Ficção Científica"},
			CreatedAt:   time.Now().UTC().Round(time.Millisecond),
			UpdatedAt:   time.Now().UTC().Round(time.Millisecond),
		}

		mockAPI.EXPECT().GetBook(gomock.Any(), b.ID.String()).Return(b, nil)

		response := httptest.NewRecorder()
		server.Handler.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/books/"+b.ID.String(), nil))
		is.Equal(response.Result().StatusCode, http.StatusOK)

		var got bookhttp.BookResponse
		is.NoErr(json.NewDecoder(response.Result().Body).Decode(&got))
		is.Equal(got.ID, b.ID)
		is.Equal(got.Title, "Duna")
		is.Equal(got.Genre.Name, "Ficção Científica")
		is.Equal(*got.Progress, 25)
		is.True(got.Rating == nil)
	})

	t.Run("an unknown id is not found", func(t *testing.T) {
		is := is.New(t)

		mockAPI.EXPECT().GetBook(gomock.Any(), "nope").Return(book.Book{}, fmt.Errorf("getting book: %w", book.ErrResponseBookNotFound))

		response := httptest.NewRecorder()
		server.Handler.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/books/nope", nil))

		is.Equal(response.Result().StatusCode, http.StatusNotFound)
		is.Equal(readBody(is, response), `{"error_code":101,"error_message":"book not found"}`+"\n")
	})
}

func TestListBooks(t *testing.T) {
	server, mockAPI := newServer(t, bookhttp.ServerConfig{Port: 8080})

	t.Run("passes the query and genre through the filter", func(t *testing.T) {
		is := is.New(t)

		genreID := uuid.NewString()
		mockAPI.EXPECT().ListBooks(gomock.Any(), book.Filter{Query: "guia", GenreID: genreID}).Return([]book.Book{
			{ID: uuid.New(), Title: "O Guia do Mochileiro das Galáxias", Author: "Douglas Adams"},
		}, nil)

		response := httptest.NewRecorder()
		server.Handler.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/books?query=+guia+&genre="+genreID, nil))
		is.Equal(response.Result().StatusCode, http.StatusOK)

		var got []bookhttp.BookResponse
		is.NoErr(json.NewDecoder(response.Result().Body).Decode(&got))
		is.Equal(len(got), 1)
		is.Equal(got[0].Author, "Douglas Adams")
	})

	t.Run("the all sentinel lists everything and an empty result is an empty list", func(t *testing.T) {
		is := is.New(t)

		mockAPI.EXPECT().ListBooks(gomock.Any(), book.Filter{}).Return([]book.Book{}, nil)

		response := httptest.NewRecorder()
		server.Handler.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/books?genre=all", nil))
		is.Equal(response.Result().StatusCode, http.StatusOK)
		is.Equal(readBody(is, response), "[]\n")
	})

	t.Run("a transient storage failure asks to try again", func(t *testing.T) {
		is := is.New(t)

		mockAPI.EXPECT().ListBooks(gomock.Any(), gomock.Any()).Return(nil, book.ErrResponseStorageUnavailable)

		response := httptest.NewRecorder()
		server.Handler.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/books", nil))
		is.Equal(response.Result().StatusCode, http.StatusServiceUnavailable)
	})

	t.Run("expected context timeout error", func(t *testing.T) {
		is := is.New(t)

		ctrl := gomock.NewController(t)
		slowAPI := httpmock.NewMockServiceAPI(ctrl)
		slowServer := bookhttp.NewServer(bookhttp.ServerConfig{Port: 8080}, bookhttp.NewBookHandler(slowAPI, 20*time.Millisecond, zerolog.Nop()), zerolog.Nop())

		slowAPI.EXPECT().ListBooks(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, f book.Filter) ([]book.Book, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

		response := httptest.NewRecorder()
		slowServer.Handler.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/books", nil))
		is.Equal(response.Result().StatusCode, http.StatusGatewayTimeout)
	})
}

func TestDeleteBook(t *testing.T) {
	server, mockAPI := newServer(t, bookhttp.ServerConfig{Port: 8080})

	t.Run("deletes a book without errors", func(t *testing.T) {
		is := is.New(t)

		id := uuid.NewString()
		mockAPI.EXPECT().RemoveBook(gomock.Any(), id).Return(book.DeleteResult{Success: true, Message: "book deleted successfully."})

		response := httptest.NewRecorder()
		server.Handler.ServeHTTP(response, httptest.NewRequest(http.MethodDelete, "/books/"+id, nil))
		is.Equal(response.Result().StatusCode, http.StatusOK)
		is.Equal(readBody(is, response), `{"success":true,"message":"book deleted successfully."}`+"\n")
	})

	t.Run("a book that is already gone counts as deleted", func(t *testing.T) {
		is := is.New(t)

		id := uuid.NewString()
		mockAPI.EXPECT().RemoveBook(gomock.Any(), id).Return(book.DeleteResult{
			Code: book.ErrResponseBookNotFound.Code, Message: book.ErrResponseBookNotFound.Message,
		})

		response := httptest.NewRecorder()
		server.Handler.ServeHTTP(response, httptest.NewRequest(http.MethodDelete, "/books/"+id, nil))
		is.Equal(response.Result().StatusCode, http.StatusOK)
		is.Equal(readBody(is, response), `{"success":true,"message":"book already deleted."}`+"\n")
	})

	t.Run("other failures are reported", func(t *testing.T) {
		is := is.New(t)

		mockAPI.EXPECT().RemoveBook(gomock.Any(), gomock.Any()).Return(book.DeleteResult{
			Code: book.ErrResponseStorageUnavailable.Code, Message: book.ErrResponseStorageUnavailable.Message,
		})

		response := httptest.NewRecorder()
		server.Handler.ServeHTTP(response, httptest.NewRequest(http.MethodDelete, "/books/"+uuid.NewString(), nil))
		is.Equal(response.Result().StatusCode, http.StatusServiceUnavailable)
	})
}

func TestGenresAndStats(t *testing.T) {
	server, mockAPI := newServer(t, bookhttp.ServerConfig{Port: 8080})

	t.Run("lists genres", func(t *testing.T) {
		is := is.New(t)

		id := uuid.New()
		mockAPI.EXPECT().ListGenres(gomock.Any()).Return([]book.Genre{{ID: id, Name: "Fantasia"}}, nil)

		response := httptest.NewRecorder()
		server.Handler.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/genres", nil))
		is.Equal(response.Result().StatusCode, http.StatusOK)
		is.Equal(readBody(is, response), fmt.Sprintf(`[{"id":"%s","name":"Fantasia"}]`+"\n", id))
	})

	t.Run("summarizes the filtered books", func(t *testing.T) {
		is := is.New(t)

		mockAPI.EXPECT().Stats(gomock.Any(), book.Filter{Query: "duna"}).Return(book.Stats{Total: 1, Reading: 1, PagesTotal: 100, PagesRead: 25, PercentRead: 25}, nil)

		response := httptest.NewRecorder()
		server.Handler.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/stats?query=duna", nil))
		is.Equal(response.Result().StatusCode, http.StatusOK)
		is.Equal(readBody(is, response), `{"total":1,"reading":1,"finished":0,"pagesTotal":100,"pagesRead":25,"percentRead":25}`+"\n")
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("a panic becomes an internal server error", func(t *testing.T) {
		is := is.New(t)
		server, mockAPI := newServer(t, bookhttp.ServerConfig{Port: 8080})

		mockAPI.EXPECT().ListGenres(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]book.Genre, error) {
			panic("boom")
		})

		response := httptest.NewRecorder()
		server.Handler.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/genres", nil))
		is.Equal(response.Result().StatusCode, http.StatusInternalServerError)
	})

	t.Run("too many requests from one client are refused", func(t *testing.T) {
		is := is.New(t)
		server, _ := newServer(t, bookhttp.ServerConfig{Port: 8080, RateLimitRPS: 1, RateLimitBurst: 2})

		statuses := []int{}
		for i := 0; i < 3; i++ {
			response := httptest.NewRecorder()
			server.Handler.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/ping", nil))
			statuses = append(statuses, response.Result().StatusCode)
		}
		is.Equal(statuses, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests})
	})

	t.Run("unknown routes are json not found", func(t *testing.T) {
		is := is.New(t)
		server, _ := newServer(t, bookhttp.ServerConfig{Port: 8080})

		response := httptest.NewRecorder()
		server.Handler.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/authors", nil))
		is.Equal(response.Result().StatusCode, http.StatusNotFound)
		is.Equal(response.Result().Header.Get("content-type"), "application/json")
	})
}

func toPointer[T any](v T) *T {
	return &v
}
