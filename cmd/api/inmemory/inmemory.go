package inmemory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
	"github.com/library-tracker/cmd/api/book"
)

const (
	tableBook  = "book"
	tableGenre = "genre"
)

type InMemoryStore struct {
	db *memdb.MemDB
}

func NewInMemoryStore() (*InMemoryStore, error) {
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableGenre: {
				Name: tableGenre,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					"name": {
						Name:    "name",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Name"},
					},
				},
			},
			tableBook: {
				Name: tableBook,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					// Books without an ISBN are left out of this index.
					"isbn": {
						Name:         "isbn",
						Unique:       true,
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "ISBN"},
					},
					"genre_id": {
						Name:         "genre_id",
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "GenreID"},
					},
				},
			},
		},
	}

	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("validating in-memory schema: %w", err)
	}

	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize in-memory database: %w", err)
	}
	return &InMemoryStore{db: db}, nil
}

type AdaptedGenre struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

func adaptGenreIdToString(g book.Genre) AdaptedGenre {
	return AdaptedGenre{
		ID:        g.ID.String(),
		Name:      g.Name,
		CreatedAt: g.CreatedAt,
	}
}

func adaptGenreIdToUUID(g AdaptedGenre) book.Genre {
	return book.Genre{
		ID:        uuid.MustParse(g.ID),
		Name:      g.Name,
		CreatedAt: g.CreatedAt,
	}
}

// AdaptedBook keeps the nullable text references as plain strings so memdb can
// index them. An empty ISBN or GenreID means the book has none.
type AdaptedBook struct {
	ID          string
	Title       string
	Author      string
	Cover       string
	Year        *int
	Pages       *int
	CurrentPage *int
	Rating      *int
	Synopsis    *string
	ISBN        string
	Notes       *string
	Status      string
	GenreID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func adaptBookIdToString(b book.Book) AdaptedBook {
	adapted := AdaptedBook{
		ID:          b.ID.String(),
		Title:       b.Title,
		Author:      b.Author,
		Cover:       b.Cover,
		Year:        b.Year,
		Pages:       b.Pages,
		CurrentPage: b.CurrentPage,
		Rating:      b.Rating,
		Synopsis:    b.Synopsis,
		Notes:       b.Notes,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if b.ISBN != nil {
		adapted.ISBN = *b.ISBN
	}
	if b.GenreID != nil {
		adapted.GenreID = b.GenreID.String()
	}
	return adapted
}

func adaptBookIdToUUID(adptBook AdaptedBook) book.Book {
	b := book.Book{
		ID:          uuid.MustParse(adptBook.ID),
		Title:       adptBook.Title,
		Author:      adptBook.Author,
		Cover:       adptBook.Cover,
		Year:        adptBook.Year,
		Pages:       adptBook.Pages,
		CurrentPage: adptBook.CurrentPage,
		Rating:      adptBook.Rating,
		Synopsis:    adptBook.Synopsis,
		Notes:       adptBook.Notes,
		Status:      book.Status(adptBook.Status),
		CreatedAt:   adptBook.CreatedAt,
		UpdatedAt:   adptBook.UpdatedAt,
	}
	if adptBook.ISBN != "" {
		isbn := adptBook.ISBN
		b.ISBN = &isbn
	}
	if adptBook.GenreID != "" {
		genreID := uuid.MustParse(adptBook.GenreID)
		b.GenreID = &genreID
	}
	return b
}

// -- Genres --

/* Returns every genre sorted by name. */
func (store *InMemoryStore) ListGenres(ctx context.Context) ([]book.Genre, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("listing genres from db: %w", err)
	}
	txn := store.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableGenre, "name")
	if err != nil {
		return nil, fmt.Errorf("listing genres from db: %w", err)
	}

	genres := []book.Genre{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		genres = append(genres, adaptGenreIdToUUID(obj.(AdaptedGenre)))
	}
	return genres, nil
}

func (store *InMemoryStore) CreateGenre(ctx context.Context, g book.Genre) (book.Genre, error) {
	if err := ctx.Err(); err != nil {
		return book.Genre{}, fmt.Errorf("storing genre on db: %w", err)
	}
	txn := store.db.Txn(true)
	defer txn.Abort()

	// memdb only enforces uniqueness on the id index.
	raw, err := txn.First(tableGenre, "name", g.Name)
	if err != nil {
		return book.Genre{}, fmt.Errorf("storing genre on db: %w", err)
	}
	if raw != nil {
		return book.Genre{}, fmt.Errorf("storing genre %q on db: %w", g.Name, book.ErrResponseDuplicateEntry)
	}

	if err := txn.Insert(tableGenre, adaptGenreIdToString(g)); err != nil {
		return book.Genre{}, fmt.Errorf("storing genre on db: %w", err)
	}
	txn.Commit()
	return g, nil
}

// -- Books --

func (store *InMemoryStore) CreateBook(ctx context.Context, bookEntry book.Book) (book.Book, error) {
	if err := ctx.Err(); err != nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", err)
	}
	txn := store.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tableBook, "id", bookEntry.ID.String())
	if err != nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", err)
	}
	if raw != nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", book.ErrResponseDuplicateEntry)
	}

	adapted := adaptBookIdToString(bookEntry)
	if err := checkReferences(txn, adapted); err != nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", err)
	}
	if err := txn.Insert(tableBook, adapted); err != nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", err)
	}

	created, err := resolveGenre(txn, adapted)
	if err != nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", err)
	}
	txn.Commit()
	return created, nil
}

func (store *InMemoryStore) GetBookByID(ctx context.Context, id uuid.UUID) (book.Book, error) {
	if err := ctx.Err(); err != nil {
		return book.Book{}, fmt.Errorf("searching by ID: %w", err)
	}
	txn := store.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tableBook, "id", id.String())
	if err != nil {
		return book.Book{}, fmt.Errorf("searching by ID: %w", err)
	}
	if raw == nil {
		return book.Book{}, fmt.Errorf("searching by ID: %w", book.ErrResponseBookNotFound)
	}

	b, err := resolveGenre(txn, raw.(AdaptedBook))
	if err != nil {
		return book.Book{}, fmt.Errorf("searching by ID: %w", err)
	}
	return b, nil
}

/* Returns the books matching f, newest first. Books created at the same instant are ordered by id, descending. */
func (store *InMemoryStore) ListBooks(ctx context.Context, f book.Filter) ([]book.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("listing books from db: %w", err)
	}
	txn := store.db.Txn(false)
	defer txn.Abort()

	var it memdb.ResultIterator
	var err error
	if f.HasGenre() {
		it, err = txn.Get(tableBook, "genre_id", f.GenreID)
	} else {
		it, err = txn.Get(tableBook, "id")
	}
	if err != nil {
		return nil, fmt.Errorf("listing books from db: %w", err)
	}

	books := []book.Book{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		b, err := resolveGenre(txn, obj.(AdaptedBook))
		if err != nil {
			return nil, fmt.Errorf("listing books from db: %w", err)
		}
		if !f.Matches(b) {
			continue
		}
		books = append(books, b)
	}

	sortBooks(books)
	return books, nil
}

func sortBooks(books []book.Book) {
	sort.Slice(books, func(i, j int) bool {
		if !books[i].CreatedAt.Equal(books[j].CreatedAt) {
			return books[i].CreatedAt.After(books[j].CreatedAt)
		}
		return books[i].ID.String() > books[j].ID.String()
	})
}

/* Writes the supplied fields of p over the stored book and returns the result. */
func (store *InMemoryStore) UpdateBook(ctx context.Context, id uuid.UUID, p book.BookPatch) (book.Book, error) {
	if err := ctx.Err(); err != nil {
		return book.Book{}, fmt.Errorf("updating book on db: %w", err)
	}
	txn := store.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tableBook, "id", id.String())
	if err != nil {
		return book.Book{}, fmt.Errorf("updating book on db: %w", err)
	}
	if raw == nil {
		return book.Book{}, fmt.Errorf("updating book on db: %w", book.ErrResponseBookNotFound)
	}

	stored := adaptBookIdToUUID(raw.(AdaptedBook))
	updated := adaptBookIdToString(p.Apply(stored))
	// CreatedAt will not change
	updated.CreatedAt = stored.CreatedAt

	if err := checkReferences(txn, updated); err != nil {
		return book.Book{}, fmt.Errorf("updating book on db: %w", err)
	}
	if err := txn.Insert(tableBook, updated); err != nil {
		return book.Book{}, fmt.Errorf("updating book on db: %w", err)
	}

	b, err := resolveGenre(txn, updated)
	if err != nil {
		return book.Book{}, fmt.Errorf("updating book on db: %w", err)
	}
	txn.Commit()
	return b, nil
}

func (store *InMemoryStore) DeleteBook(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("deleting book from db: %w", err)
	}
	txn := store.db.Txn(true)
	defer txn.Abort()

	count, err := txn.DeleteAll(tableBook, "id", id.String())
	if err != nil {
		return fmt.Errorf("deleting book from db: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("deleting book from db: %w", book.ErrResponseBookNotFound)
	}

	txn.Commit()
	return nil
}

/* Enforces the ISBN uniqueness and the genre reference the way the SQL schema does. */
func checkReferences(txn *memdb.Txn, b AdaptedBook) error {
	if b.ISBN != "" {
		raw, err := txn.First(tableBook, "isbn", b.ISBN)
		if err != nil {
			return err
		}
		if raw != nil && raw.(AdaptedBook).ID != b.ID {
			return fmt.Errorf("isbn %q: %w", b.ISBN, book.ErrResponseDuplicateEntry)
		}
	}

	if b.GenreID != "" {
		raw, err := txn.First(tableGenre, "id", b.GenreID)
		if err != nil {
			return err
		}
		if raw == nil {
			return fmt.Errorf("genre %s: %w", b.GenreID, book.ErrResponseGenreNotFound)
		}
	}
	return nil
}

func resolveGenre(txn *memdb.Txn, adapted AdaptedBook) (book.Book, error) {
	b := adaptBookIdToUUID(adapted)
	if adapted.GenreID == "" {
		return b, nil
	}

	raw, err := txn.First(tableGenre, "id", adapted.GenreID)
	if err != nil {
		return book.Book{}, err
	}
	if raw != nil {
		g := adaptGenreIdToUUID(raw.(AdaptedGenre))
		b.Genre = &g
	}
	return b, nil
}
