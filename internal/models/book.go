package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultQuantity is stored when a book is added without a quantity.
const DefaultQuantity = 1

// DateLayout is the textual form of Book.PublishDate.
const DateLayout = "2006-01-02"

var ErrInvalidPatch = errors.New("invalid book patch")

// Book is a row of the books table.
type Book struct {
	ID          int64      `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Author      string     `json:"author" yaml:"author"`
	ISBN        *string    `json:"isbn,omitempty" yaml:"isbn,omitempty"`
	PublishDate *time.Time `json:"publish_date,omitempty" yaml:"publish_date,omitempty"`
	Quantity    int        `json:"quantity" yaml:"quantity"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
}

// BookPatch carries the fields of a partial update. Nil fields are left untouched.
type BookPatch struct {
	Title       *string
	Author      *string
	ISBN        *string
	PublishDate *time.Time
	// ClearPublishDate sets publish_date to NULL.
	ClearPublishDate bool
	Quantity         *int
}

// IsEmpty reports whether the patch changes nothing.
func (p BookPatch) IsEmpty() bool {
	return p.Title == nil &&
		p.Author == nil &&
		p.ISBN == nil &&
		p.PublishDate == nil &&
		!p.ClearPublishDate &&
		p.Quantity == nil
}

// Validate rejects values the books table would accept but the inventory should not.
func (p BookPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title must not be blank", ErrInvalidPatch)
	}
	if p.Author != nil && strings.TrimSpace(*p.Author) == "" {
		return fmt.Errorf("%w: author must not be blank", ErrInvalidPatch)
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		return fmt.Errorf("%w: quantity %d is negative", ErrInvalidPatch, *p.Quantity)
	}
	if p.ClearPublishDate && p.PublishDate != nil {
		return fmt.Errorf("%w: publish date both set and cleared", ErrInvalidPatch)
	}
	return nil
}
