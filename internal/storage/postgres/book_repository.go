package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cimillas/bookstore-backoffice/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookRepository struct {
	pool *pgxpool.Pool
}

func NewBookRepository(pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

func (r *BookRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const bookColumns = `isbn, title, author, publisher, price, inventory_count, on_shelf_count`

func (r *BookRepository) ListBooks(ctx context.Context, filter domain.BookFilter, page, pageSize int) ([]domain.Book, error) {
	var (
		where []string
		args  []any
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, "%"+value+"%")
		where = append(where, column+" ILIKE $"+strconv.Itoa(len(args)))
	}
	add("isbn", filter.ISBN)
	add("title", filter.Title)
	add("author", filter.Author)
	add("publisher", filter.Publisher)

	query := `SELECT ` + bookColumns + ` FROM books`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, pageSize, pageOffset(page, pageSize))
	query += fmt.Sprintf(" ORDER BY isbn ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", classify(err))
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate books: %w", classify(rows.Err()))
	}
	return books, nil
}

func (r *BookRepository) GetBook(ctx context.Context, isbn string) (domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE isbn = $1`

	b, err := scanBook(r.queryRow(ctx, query, isbn))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Book{}, domain.ErrBookNotFound
		}
		return domain.Book{}, fmt.Errorf("get book: %w", classify(err))
	}
	return b, nil
}

// UpdateBookInfo replaces the descriptive fields; stock counters are owned by
// the ticket flows and are never touched here.
func (r *BookRepository) UpdateBookInfo(ctx context.Context, isbn string, info domain.BookInfo) (domain.Book, error) {
	stmt := `
UPDATE books
SET title = $2, author = $3, publisher = $4, price = $5
WHERE isbn = $1
RETURNING ` + bookColumns

	b, err := scanBook(r.queryRow(ctx, stmt, isbn, info.Title, info.Author, info.Publisher, info.Price))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Book{}, domain.ErrBookNotFound
		}
		return domain.Book{}, fmt.Errorf("update book: %w", classify(err))
	}
	return b, nil
}

// MoveToShelf moves count units from inventory to the shelf in one statement;
// a negative count pulls stock back off the shelf. The WHERE clause keeps
// both counters non-negative and takes the row lock.
func (r *BookRepository) MoveToShelf(ctx context.Context, isbn string, count int) (domain.Book, error) {
	stmt := `
UPDATE books
SET inventory_count = inventory_count - $2, on_shelf_count = on_shelf_count + $2
WHERE isbn = $1 AND inventory_count - $2 >= 0 AND on_shelf_count + $2 >= 0
RETURNING ` + bookColumns

	b, err := scanBook(r.queryRow(ctx, stmt, isbn, count))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Book{}, fmt.Errorf("move to shelf: %w", classify(err))
	}

	if _, err := r.GetBook(ctx, isbn); err != nil {
		return domain.Book{}, err
	}
	if count >= 0 {
		return domain.Book{}, domain.ErrInsufficientInventory
	}
	return domain.Book{}, domain.ErrInsufficientShelfStock
}

func scanBook(row pgx.Row) (domain.Book, error) {
	var b domain.Book
	err := row.Scan(&b.ISBN, &b.Title, &b.Author, &b.Publisher, &b.Price, &b.InventoryCount, &b.OnShelfCount)
	return b, err
}

func (r *BookRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *BookRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
