package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"devdesk/internal/models"
	"devdesk/internal/repository"
)

var ErrInvalidBook = errors.New("invalid book")

// BookService is what the bookstore CLI talks to.
type BookService struct {
	repo repository.BookRepo
}

func NewBookService(repo repository.BookRepo) *BookService {
	return &BookService{repo: repo}
}

// Add validates b and stores it.
func (s *BookService) Add(ctx context.Context, b models.Book) (int64, error) {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	if b.Title == "" || b.Author == "" {
		return 0, fmt.Errorf("%w: title and author are required", ErrInvalidBook)
	}
	if b.Quantity < 0 {
		return 0, fmt.Errorf("%w: quantity must not be negative", ErrInvalidBook)
	}
	return s.repo.Add(ctx, b)
}

func (s *BookService) List(ctx context.Context) ([]models.Book, error) {
	return s.repo.ListAll(ctx)
}

// Search lists every book when keyword is blank.
func (s *BookService) Search(ctx context.Context, keyword string) ([]models.Book, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.repo.ListAll(ctx)
	}
	return s.repo.Search(ctx, keyword)
}

func (s *BookService) Update(ctx context.Context, id int64, p models.BookPatch) error {
	return s.repo.Update(ctx, id, p)
}

func (s *BookService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
