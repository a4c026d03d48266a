package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"devdesk/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is SQLSTATE unique_violation.
const pgUniqueViolation = "23505"

// ErrConstraintViolation is returned when a book collides with an existing ISBN.
var ErrConstraintViolation = fmt.Errorf("book: %w", ErrDuplicate)

const (
	colTitle       = "title"
	colAuthor      = "author"
	colISBN        = "isbn"
	colPublishDate = "publish_date"
	colQuantity    = "quantity"

	bookColumns = `id, title, author, isbn, publish_date, quantity, created_at`

	insertBookSQL = `INSERT INTO books (title, author, isbn, publish_date, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	selectBooksSQL = `SELECT ` + bookColumns + ` FROM books ORDER BY id`

	searchBooksSQL = `SELECT ` + bookColumns + ` FROM books
		WHERE title LIKE $1 ESCAPE '\' OR author LIKE $1 ESCAPE '\' OR isbn LIKE $1 ESCAPE '\'
		ORDER BY id`

	deleteBookSQL = `DELETE FROM books WHERE id = $1`
)

type BookPostgres struct {
	db DBTX
}

func NewBookPostgres(db DBTX) *BookPostgres {
	return &BookPostgres{db: db}
}

var _ BookRepo = (*BookPostgres)(nil)

// Add inserts a book and returns its generated id. Quantity is stored as given.
func (r *BookPostgres) Add(ctx context.Context, b models.Book) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, insertBookSQL,
		b.Title,
		b.Author,
		nullableISBN(b.ISBN),
		nullableDate(b.PublishDate),
		b.Quantity,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert book %q: %w", b.Title, mapPgError(err))
	}
	return id, nil
}

// ListAll returns every book.
func (r *BookPostgres) ListAll(ctx context.Context) ([]models.Book, error) {
	return r.query(ctx, selectBooksSQL)
}

// Search returns books whose title, author or isbn contains keyword.
func (r *BookPostgres) Search(ctx context.Context, keyword string) ([]models.Book, error) {
	return r.query(ctx, searchBooksSQL, "%"+escapeLike(keyword)+"%")
}

// Update applies the supplied fields of p to book id.
// An empty patch and an unknown id are both no-ops.
func (r *BookPostgres) Update(ctx context.Context, id int64, p models.BookPatch) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.IsEmpty() {
		return nil
	}

	q, args := buildBookUpdate(id, p)
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("update book %d: %w", id, mapPgError(err))
	}
	return nil
}

// Delete removes book id. Deleting a missing id is not an error.
func (r *BookPostgres) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, deleteBookSQL, id); err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	return nil
}

func (r *BookPostgres) query(ctx context.Context, q string, args ...any) ([]models.Book, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select books: %w", err)
	}
	defer rows.Close()

	out := make([]models.Book, 0, 16)
	for rows.Next() {
		var (
			b     models.Book
			isbn  sql.NullString
			pubAt sql.NullTime
		)
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &isbn, &pubAt, &b.Quantity, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		if isbn.Valid {
			s := isbn.String
			b.ISBN = &s
		}
		if pubAt.Valid {
			d := pubAt.Time.UTC()
			b.PublishDate = &d
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return out, nil
}

// buildBookUpdate renders one UPDATE touching only the columns set in p,
// in fixed column order. Column names never come from input.
func buildBookUpdate(id int64, p models.BookPatch) (string, []any) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Title != nil {
		set(colTitle, *p.Title)
	}
	if p.Author != nil {
		set(colAuthor, *p.Author)
	}
	if p.ISBN != nil {
		set(colISBN, nullableISBN(p.ISBN))
	}
	if p.ClearPublishDate {
		set(colPublishDate, nil)
	} else if p.PublishDate != nil {
		set(colPublishDate, nullableDate(p.PublishDate))
	}
	if p.Quantity != nil {
		set(colQuantity, *p.Quantity)
	}

	args = append(args, id)
	q := fmt.Sprintf("UPDATE books SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	return q, args
}

// nullableISBN stores a blank ISBN as NULL so the unique constraint ignores it.
func nullableISBN(isbn *string) any {
	if isbn == nil {
		return nil
	}
	s := strings.TrimSpace(*isbn)
	if s == "" {
		return nil
	}
	return s
}

func nullableDate(d *time.Time) any {
	if d == nil {
		return nil
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrConstraintViolation, pgErr.ConstraintName)
	}
	return err
}
