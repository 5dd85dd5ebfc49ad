package app

import (
	"context"
	"testing"

	"github.com/cimillas/bookstore-backoffice/internal/domain"
)

func TestBookService_PutOnShelf(t *testing.T) {
	t.Parallel()

	t.Run("moves stock from inventory to shelf", func(t *testing.T) {
		repo := newFakeBookRepo()
		repo.books["isbn-1"] = domain.Book{ISBN: "isbn-1", InventoryCount: 10, OnShelfCount: 1}
		svc := NewBookService(repo)

		book, err := svc.PutOnShelf(context.Background(), "isbn-1", 4)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if book.InventoryCount != 6 || book.OnShelfCount != 5 {
			t.Fatalf("expected 6/5, got %d/%d", book.InventoryCount, book.OnShelfCount)
		}
	})

	t.Run("negative count moves stock back to inventory", func(t *testing.T) {
		repo := newFakeBookRepo()
		repo.books["isbn-1"] = domain.Book{ISBN: "isbn-1", InventoryCount: 2, OnShelfCount: 5}
		svc := NewBookService(repo)

		book, err := svc.PutOnShelf(context.Background(), "isbn-1", -3)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if book.InventoryCount != 5 || book.OnShelfCount != 2 {
			t.Fatalf("expected 5/2, got %d/%d", book.InventoryCount, book.OnShelfCount)
		}
	})

	t.Run("zero count is rejected", func(t *testing.T) {
		repo := newFakeBookRepo()
		svc := NewBookService(repo)

		_, err := svc.PutOnShelf(context.Background(), "isbn-1", 0)
		if err != domain.ErrInvalidCount {
			t.Fatalf("expected ErrInvalidCount, got %v", err)
		}
	})

	t.Run("insufficient inventory is rejected", func(t *testing.T) {
		repo := newFakeBookRepo()
		repo.books["isbn-1"] = domain.Book{ISBN: "isbn-1", InventoryCount: 2}
		svc := NewBookService(repo)

		_, err := svc.PutOnShelf(context.Background(), "isbn-1", 3)
		if err != domain.ErrInsufficientInventory {
			t.Fatalf("expected ErrInsufficientInventory, got %v", err)
		}
		if got := repo.books["isbn-1"].InventoryCount; got != 2 {
			t.Fatalf("expected inventory unchanged, got %d", got)
		}
	})

	t.Run("insufficient shelf stock is rejected", func(t *testing.T) {
		repo := newFakeBookRepo()
		repo.books["isbn-1"] = domain.Book{ISBN: "isbn-1", OnShelfCount: 1}
		svc := NewBookService(repo)

		_, err := svc.PutOnShelf(context.Background(), "isbn-1", -2)
		if err != domain.ErrInsufficientShelfStock {
			t.Fatalf("expected ErrInsufficientShelfStock, got %v", err)
		}
	})
}

func TestBookService_UpdateBook(t *testing.T) {
	t.Parallel()

	t.Run("updates descriptive fields", func(t *testing.T) {
		repo := newFakeBookRepo()
		repo.books["isbn-1"] = domain.Book{ISBN: "isbn-1", Title: "Old", InventoryCount: 3}
		svc := NewBookService(repo)

		book, err := svc.UpdateBook(context.Background(), "isbn-1", domain.BookInfo{
			Title: "New",
			Price: 15,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if book.Title != "New" || book.Price != 15 {
			t.Fatalf("expected updated info, got %+v", book)
		}
		if book.InventoryCount != 3 {
			t.Fatalf("expected stock counters untouched, got %d", book.InventoryCount)
		}
	})

	t.Run("negative price is rejected", func(t *testing.T) {
		repo := newFakeBookRepo()
		svc := NewBookService(repo)

		_, err := svc.UpdateBook(context.Background(), "isbn-1", domain.BookInfo{Price: -1})
		if err != domain.ErrInvalidPrice {
			t.Fatalf("expected ErrInvalidPrice, got %v", err)
		}
	})

	t.Run("empty isbn is rejected", func(t *testing.T) {
		repo := newFakeBookRepo()
		svc := NewBookService(repo)

		_, err := svc.GetBook(context.Background(), "")
		if err != domain.ErrInvalidID {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})
}

type fakeBookRepo struct {
	books map[string]domain.Book
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: make(map[string]domain.Book)}
}

func (f *fakeBookRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeBookRepo) ListBooks(_ context.Context, filter domain.BookFilter, page, pageSize int) ([]domain.Book, error) {
	var out []domain.Book
	for _, b := range f.books {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBookRepo) GetBook(_ context.Context, isbn string) (domain.Book, error) {
	book, ok := f.books[isbn]
	if !ok {
		return domain.Book{}, domain.ErrBookNotFound
	}
	return book, nil
}

func (f *fakeBookRepo) UpdateBookInfo(_ context.Context, isbn string, info domain.BookInfo) (domain.Book, error) {
	book, ok := f.books[isbn]
	if !ok {
		return domain.Book{}, domain.ErrBookNotFound
	}
	book.Title = info.Title
	book.Author = info.Author
	book.Publisher = info.Publisher
	book.Price = info.Price
	f.books[isbn] = book
	return book, nil
}

func (f *fakeBookRepo) MoveToShelf(_ context.Context, isbn string, count int) (domain.Book, error) {
	book, ok := f.books[isbn]
	if !ok {
		return domain.Book{}, domain.ErrBookNotFound
	}
	if book.InventoryCount-count < 0 {
		return domain.Book{}, domain.ErrInsufficientInventory
	}
	if book.OnShelfCount+count < 0 {
		return domain.Book{}, domain.ErrInsufficientShelfStock
	}
	book.InventoryCount -= count
	book.OnShelfCount += count
	f.books[isbn] = book
	return book, nil
}
