package repository

import (
	"context"
	"database/sql"
	"errors"

	"devdesk/internal/models"
)

// ErrDuplicate reports a unique constraint violation on insert or update.
var ErrDuplicate = errors.New("unique constraint violated")

// DBTX is the subset of database/sql used by the repositories.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// BookRepo is the data-access object of the books table.
type BookRepo interface {
	Add(ctx context.Context, b models.Book) (int64, error)
	ListAll(ctx context.Context) ([]models.Book, error)
	Search(ctx context.Context, keyword string) ([]models.Book, error)
	Update(ctx context.Context, id int64, p models.BookPatch) error
	Delete(ctx context.Context, id int64) error
}

// Repository aggregates the repositories of the web service.
type Repository struct {
	Auth Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Auth: NewUserRepository(db),
	}
}
