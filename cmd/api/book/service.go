package book

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ServiceAPI interface {
	ListBooks(ctx context.Context, f Filter) ([]Book, error)
	GetBook(ctx context.Context, id string) (Book, error)
	ListGenres(ctx context.Context) ([]Genre, error)
	Stats(ctx context.Context, f Filter) (Stats, error)
	SaveBook(ctx context.Context, form url.Values) SaveResult
	RemoveBook(ctx context.Context, id string) DeleteResult
}

// Repository is implemented by the storage engines. Implementations wrap
// known storage faults with the ErrResponse values of this package.
type Repository interface {
	ListBooks(ctx context.Context, f Filter) ([]Book, error)
	GetBookByID(ctx context.Context, id uuid.UUID) (Book, error)
	ListGenres(ctx context.Context) ([]Genre, error)
	CreateGenre(ctx context.Context, g Genre) (Genre, error)
	CreateBook(ctx context.Context, b Book) (Book, error)
	UpdateBook(ctx context.Context, id uuid.UUID, p BookPatch) (Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
}

type Notifier interface {
	BookCreated(ctx context.Context, b Book) error
	BookFinished(ctx context.Context, b Book) error
}

type Service struct {
	repo                 Repository
	ntfy                 Notifier
	notificationsTimeout time.Duration
	log                  zerolog.Logger
	now                  func() time.Time
}

/* Builds the service. ntfy may be nil when notifications are disabled. */
func NewService(repo Repository, ntfy Notifier, notificationsTimeout time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		repo:                 repo,
		ntfy:                 ntfy,
		notificationsTimeout: notificationsTimeout,
		log:                  logger.With().Str("component", "book").Logger(),
		now: func() time.Time {
			return time.Now().UTC().Round(time.Millisecond)
		},
	}
}

/* Returns every book matching f, newest first, each with its genre resolved. */
func (s *Service) ListBooks(ctx context.Context, f Filter) ([]Book, error) {
	books, err := s.repo.ListBooks(ctx, f)
	if err != nil {
		return nil, s.repoErr("ListBooks", err)
	}
	return books, nil
}

func (s *Service) GetBook(ctx context.Context, id string) (Book, error) {
	bookID, err := uuid.Parse(id)
	if err != nil {
		return Book{}, fmt.Errorf("getting book %q: %w", id, ErrResponseBookNotFound)
	}

	b, err := s.repo.GetBookByID(ctx, bookID)
	if err != nil {
		return Book{}, s.repoErr("GetBook", err)
	}
	return b, nil
}

/* Returns every genre sorted by name. */
func (s *Service) ListGenres(ctx context.Context) ([]Genre, error) {
	genres, err := s.repo.ListGenres(ctx)
	if err != nil {
		return nil, s.repoErr("ListGenres", err)
	}
	return genres, nil
}

/* Stores a new book built from validated data. */
func (s *Service) CreateBook(ctx context.Context, p BookPatch) (Book, error) {
	createdAt := s.now()
	p.UpdatedAt = createdAt

	newBook := p.Apply(Book{
		ID:        uuid.New(),
		Cover:     DefaultCover,
		Status:    StatusWantToRead,
		CreatedAt: createdAt,
	})

	created, err := s.repo.CreateBook(ctx, newBook)
	if err != nil {
		return Book{}, s.repoErr("CreateBook", err)
	}

	s.notify("book created", created, s.ntfyBookCreated)
	if created.Status == StatusFinished {
		s.notify("book finished", created, s.ntfyBookFinished)
	}
	return created, nil
}

/* Writes the supplied fields of p over the stored book. */
func (s *Service) UpdateBook(ctx context.Context, id string, p BookPatch) (Book, error) {
	bookID, err := uuid.Parse(id)
	if err != nil {
		return Book{}, fmt.Errorf("updating book %q: %w", id, ErrResponseBookNotFound)
	}

	stored, err := s.repo.GetBookByID(ctx, bookID)
	if err != nil {
		return Book{}, s.repoErr("UpdateBook", err)
	}

	// A patch may carry only one of the page counters; check it against the stored other one.
	merged := p.Apply(stored)
	fe := FieldErrors{}
	CheckPageProgress(merged.Pages, merged.CurrentPage, fe)
	if !fe.Empty() {
		return Book{}, NewValidationError(fe)
	}

	p.UpdatedAt = s.now()
	updated, err := s.repo.UpdateBook(ctx, bookID, p)
	if err != nil {
		return Book{}, s.repoErr("UpdateBook", err)
	}

	if stored.Status != StatusFinished && updated.Status == StatusFinished {
		s.notify("book finished", updated, s.ntfyBookFinished)
	}
	return updated, nil
}

/* Removes a book. Unknown ids fail with ErrResponseBookNotFound on every call. */
func (s *Service) DeleteBook(ctx context.Context, id string) error {
	bookID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("deleting book %q: %w", id, ErrResponseBookNotFound)
	}

	err = s.repo.DeleteBook(ctx, bookID)
	if err != nil {
		return s.repoErr("DeleteBook", err)
	}
	return nil
}

/* Normalizes, validates and stores a submitted form. A form carrying an id updates that book. */
func (s *Service) SaveBook(ctx context.Context, form url.Values) SaveResult {
	c := NormalizeForm(form)
	if len(c.Discarded) > 0 {
		s.log.Warn().Strs("fields", c.Discarded).Msg("non-numeric values ignored")
	}
	currentYear := s.now().Year()

	if c.ID == "" {
		p, err := ValidateCreate(c, currentYear)
		if err != nil {
			return saveFailure(err)
		}
		created, err := s.CreateBook(ctx, p)
		if err != nil {
			return saveFailure(err)
		}
		return SaveResult{Success: true, ID: created.ID.String(), Message: "book created successfully.", Created: true}
	}

	p, err := ValidateUpdate(c, currentYear)
	if err != nil {
		return saveFailure(err)
	}
	updated, err := s.UpdateBook(ctx, c.ID, p)
	if err != nil {
		return saveFailure(err)
	}
	return SaveResult{Success: true, ID: updated.ID.String(), Message: "book updated successfully."}
}

func (s *Service) RemoveBook(ctx context.Context, id string) DeleteResult {
	err := s.DeleteBook(ctx, id)
	if err != nil {
		code := Classify(err)
		return DeleteResult{Success: false, Code: code.Code, Message: code.Message}
	}
	return DeleteResult{Success: true, Message: "book deleted successfully."}
}

/* Translates a storage fault into the taxonomy, logging the ones it does not recognize. */
func (s *Service) repoErr(op string, err error) error {
	switch Classify(err) {
	case ErrResponseFromRepository:
		s.log.Error().Err(err).Str("op", op).Msg("unrecognized storage failure")
		return ErrResponseFromRepository
	case ErrResponseStorageUnavailable:
		s.log.Warn().Err(err).Str("op", op).Msg("storage unavailable")
	case ErrResponseRequestTimeout:
		s.log.Warn().Err(err).Str("op", op).Msg("storage call timed out")
		return fmt.Errorf("timeout on call to %s: %w: %w", op, ErrResponseRequestTimeout, err)
	}
	return err
}

func (s *Service) ntfyBookCreated(ctx context.Context, b Book) error {
	return s.ntfy.BookCreated(ctx, b)
}

func (s *Service) ntfyBookFinished(ctx context.Context, b Book) error {
	return s.ntfy.BookFinished(ctx, b)
}

/* Sends a notification in the background. Failures are logged and never reach the caller. */
func (s *Service) notify(event string, b Book, send func(context.Context, Book) error) {
	if s.ntfy == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.notificationsTimeout)
		defer cancel()
		if err := send(ctx, b); err != nil {
			s.log.Warn().Err(err).Str("event", event).Str("book_id", b.ID.String()).Msg("notification not delivered")
		}
	}()
}
