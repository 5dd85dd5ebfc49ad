package app

import (
	"context"

	"github.com/cimillas/bookstore-backoffice/internal/domain"
)

type BookRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	ListBooks(ctx context.Context, filter domain.BookFilter, page, pageSize int) ([]domain.Book, error)
	GetBook(ctx context.Context, isbn string) (domain.Book, error)
	UpdateBookInfo(ctx context.Context, isbn string, info domain.BookInfo) (domain.Book, error)
	MoveToShelf(ctx context.Context, isbn string, count int) (domain.Book, error)
}

type BookService struct {
	repo BookRepository
}

func NewBookService(repo BookRepository) *BookService {
	return &BookService{repo: repo}
}

func (s *BookService) ListBooks(ctx context.Context, filter domain.BookFilter, page, pageSize int) ([]domain.Book, error) {
	return s.repo.ListBooks(ctx, filter, page, pageSize)
}

func (s *BookService) GetBook(ctx context.Context, isbn string) (domain.Book, error) {
	if isbn == "" {
		return domain.Book{}, domain.ErrInvalidID
	}
	return s.repo.GetBook(ctx, isbn)
}

func (s *BookService) UpdateBook(ctx context.Context, isbn string, info domain.BookInfo) (domain.Book, error) {
	if isbn == "" {
		return domain.Book{}, domain.ErrInvalidID
	}
	if info.Price < 0 {
		return domain.Book{}, domain.ErrInvalidPrice
	}
	return s.repo.UpdateBookInfo(ctx, isbn, info)
}

// PutOnShelf moves count units from warehouse inventory onto the shelf; a
// negative count moves units back. The move is a single conditional update,
// so it can never drive either counter negative even under concurrent sells.
func (s *BookService) PutOnShelf(ctx context.Context, isbn string, count int) (domain.Book, error) {
	if isbn == "" {
		return domain.Book{}, domain.ErrInvalidID
	}
	if count == 0 {
		return domain.Book{}, domain.ErrInvalidCount
	}

	var result domain.Book
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		book, err := s.repo.MoveToShelf(txCtx, isbn, count)
		if err != nil {
			return err
		}
		result = book
		return nil
	})
	if err != nil {
		return domain.Book{}, err
	}
	return result, nil
}
