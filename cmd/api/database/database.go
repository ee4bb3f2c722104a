package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/google/uuid"
	"github.com/library-tracker/cmd/api/book"

	_ "github.com/golang-migrate/migrate/v4/source/file"

	_ "github.com/lib/pq"
)

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db  *sql.DB
	exc *Exectuor
}

type Exectuor struct {
	DBTX
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:  db,
		exc: NewExc(db),
	}
}

func NewExc(dbtx DBTX) *Exectuor {
	return &Exectuor{DBTX: dbtx}
}

/* Returns a store bound to a new transaction. The caller commits or rolls back through the returned driver.Tx. */
func (store *Store) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Store, driver.Tx, error) {
	tx, err := store.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", translate(err))
	}

	txRepo := NewStore(store.db)
	txRepo.exc = NewExc(tx)
	return txRepo, tx, nil
}

/* Connects to the database trought a connection string and returns a pointer to a valid DB object (*sql.DB). */
func ConnectDb(ctx context.Context, connStr string) (*sql.DB, error) {
	sqlDB, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("connecting to db, openning: %w", err)
	}

	err = sqlDB.PingContext(ctx)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("connecting to db, pingging: %w", translate(err))
	}
	return sqlDB, nil
}

/* Applies every pending migration found under path. migrate.ErrNoChange is returned when the schema is current. */
func MigrationUp(store *Store, path string) error {
	driver, err := postgres.WithInstance(store.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migrating up: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", path),
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("migrating up: %w", err)
	}

	err = m.Up()
	if err != nil {
		return fmt.Errorf("migrating up: %w", err)
	}
	return nil
}

// -- Genres --

/* Returns every genre sorted by name. */
func (store *Store) ListGenres(ctx context.Context) ([]book.Genre, error) {
	sqlStatement := `SELECT id, name, created_at FROM genres ORDER BY name ASC;`
	rows, err := store.exc.QueryContext(ctx, sqlStatement)
	if err != nil {
		return nil, fmt.Errorf("listing genres from db: %w", translate(err))
	}
	defer rows.Close()

	genres := []book.Genre{}
	for rows.Next() {
		var g book.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("listing genres from db: %w", translate(err))
		}
		genres = append(genres, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing genres from db: %w", translate(err))
	}
	return genres, nil
}

func (store *Store) CreateGenre(ctx context.Context, g book.Genre) (book.Genre, error) {
	sqlStatement := `
	INSERT INTO genres (id, name, created_at)
	VALUES ($1, $2, $3)
	RETURNING id, name, created_at`
	createdRow := store.exc.QueryRowContext(ctx, sqlStatement, g.ID, g.Name, g.CreatedAt)
	var genreToReturn book.Genre
	err := createdRow.Scan(&genreToReturn.ID, &genreToReturn.Name, &genreToReturn.CreatedAt)
	if err != nil {
		return book.Genre{}, fmt.Errorf("storing genre on db: %w", translate(err))
	}
	return genreToReturn, nil
}

// -- Books --

/* Stores the book and returns it with its genre resolved. */
func (store *Store) CreateBook(ctx context.Context, bookEntry book.Book) (book.Book, error) {
	sqlStatement := `
	WITH b AS (
		INSERT INTO books (id, title, author, cover, year, pages, current_page, rating,
			synopsis, isbn, notes, status, genre_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING *
	)
	SELECT ` + bookColumns + `
	FROM b LEFT JOIN genres g ON g.id = b.genre_id`
	createdRow := store.exc.QueryRowContext(ctx, sqlStatement,
		bookEntry.ID, bookEntry.Title, bookEntry.Author, bookEntry.Cover,
		bookEntry.Year, bookEntry.Pages, bookEntry.CurrentPage, bookEntry.Rating,
		bookEntry.Synopsis, bookEntry.ISBN, bookEntry.Notes, string(bookEntry.Status),
		bookEntry.GenreID, bookEntry.CreatedAt, bookEntry.UpdatedAt)

	bookToReturn, err := scanBook(createdRow)
	if err != nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", translate(err))
	}
	return bookToReturn, nil
}

/* Searches a book in database based on ID and returns it if succeed. */
func (store *Store) GetBookByID(ctx context.Context, id uuid.UUID) (book.Book, error) {
	sqlStatement := `SELECT ` + bookColumns + `
	FROM books b LEFT JOIN genres g ON g.id = b.genre_id
	WHERE b.id = $1;`
	foundRow := store.exc.QueryRowContext(ctx, sqlStatement, id)

	bookToReturn, err := scanBook(foundRow)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return book.Book{}, fmt.Errorf("searching by ID: %w", book.ErrResponseBookNotFound)
		default:
			return book.Book{}, fmt.Errorf("searching by ID: %w", translate(err))
		}
	}
	return bookToReturn, nil
}

/* Returns the books matching f, newest first, ties broken by id. */
func (store *Store) ListBooks(ctx context.Context, f book.Filter) ([]book.Book, error) {
	where, args := whereClause(f)
	sqlStatement := `SELECT ` + bookColumns + `
	FROM books b LEFT JOIN genres g ON g.id = b.genre_id` + where + `
	ORDER BY b.created_at DESC, b.id DESC;`

	rows, err := store.exc.QueryContext(ctx, sqlStatement, args...)
	if err != nil {
		return nil, fmt.Errorf("listing books from db: %w", translate(err))
	}
	defer rows.Close()

	bookslist := []book.Book{}
	for rows.Next() {
		bookToReturn, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("listing books from db: %w", translate(err))
		}
		bookslist = append(bookslist, bookToReturn)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("listing books from db: %w", translate(err))
	}
	return bookslist, nil
}

/* Writes the supplied fields of p and returns the updated book with its genre resolved. */
func (store *Store) UpdateBook(ctx context.Context, id uuid.UUID, p book.BookPatch) (book.Book, error) {
	set, args := setClause(p)
	sqlStatement := `
	WITH b AS (
		UPDATE books
		SET ` + set + `
		WHERE id = $1
		RETURNING *
	)
	SELECT ` + bookColumns + `
	FROM b LEFT JOIN genres g ON g.id = b.genre_id`
	updatedRow := store.exc.QueryRowContext(ctx, sqlStatement, append([]any{id}, args...)...)

	bookToReturn, err := scanBook(updatedRow)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return book.Book{}, fmt.Errorf("updating on db: %w", book.ErrResponseBookNotFound)
		default:
			return book.Book{}, fmt.Errorf("updating on db: %w", translate(err))
		}
	}
	return bookToReturn, nil
}

func (store *Store) DeleteBook(ctx context.Context, id uuid.UUID) error {
	sqlStatement := `
	DELETE FROM books
	WHERE id = $1;`
	result, err := store.exc.ExecContext(ctx, sqlStatement, id)
	if err != nil {
		return fmt.Errorf("deleting book from db: %w", translate(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting book from db: %w", translate(err))
	}
	if rowsAffected == 0 {
		return fmt.Errorf("deleting book from db: %w", book.ErrResponseBookNotFound)
	}
	return nil
}

const bookColumns = `b.id, b.title, b.author, b.cover, b.year, b.pages, b.current_page, b.rating,
	b.synopsis, b.isbn, b.notes, b.status, b.genre_id, b.created_at, b.updated_at,
	g.id, g.name, g.created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner) (book.Book, error) {
	var b book.Book
	var genreID *uuid.UUID
	var genreName *string
	var genreCreatedAt sql.NullTime

	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Cover, &b.Year, &b.Pages, &b.CurrentPage, &b.Rating,
		&b.Synopsis, &b.ISBN, &b.Notes, &b.Status, &b.GenreID, &b.CreatedAt, &b.UpdatedAt,
		&genreID, &genreName, &genreCreatedAt)
	if err != nil {
		return book.Book{}, err
	}

	if genreID != nil && genreName != nil {
		b.Genre = &book.Genre{ID: *genreID, Name: *genreName, CreatedAt: genreCreatedAt.Time}
	}
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}
