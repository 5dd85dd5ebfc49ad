package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cimillas/bookstore-backoffice/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

func (r *TicketRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const ticketColumns = `id, total_price, total_count, status, type, created_at, updated_at, book_isbn, operator_id`

func (r *TicketRepository) GetBook(ctx context.Context, isbn string) (domain.Book, error) {
	const query = `
SELECT isbn, title, author, publisher, price, inventory_count, on_shelf_count
FROM books
WHERE isbn = $1`

	var b domain.Book
	err := r.queryRow(ctx, query, isbn).
		Scan(&b.ISBN, &b.Title, &b.Author, &b.Publisher, &b.Price, &b.InventoryCount, &b.OnShelfCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Book{}, domain.ErrBookNotFound
		}
		return domain.Book{}, fmt.Errorf("get book: %w", classify(err))
	}
	return b, nil
}

// CreateBook inserts a book with both stock counters at zero. A concurrent
// insert of the same ISBN is not an error; first writer wins.
func (r *TicketRepository) CreateBook(ctx context.Context, isbn string, info domain.BookInfo) error {
	const stmt = `
INSERT INTO books (isbn, title, author, publisher, price, inventory_count, on_shelf_count)
VALUES ($1, $2, $3, $4, $5, 0, 0)
ON CONFLICT (isbn) DO NOTHING`

	if _, err := r.exec(ctx, stmt, isbn, info.Title, info.Author, info.Publisher, info.Price); err != nil {
		return fmt.Errorf("create book: %w", classify(err))
	}
	return nil
}

func (r *TicketRepository) InsertTicket(ctx context.Context, t domain.Ticket) (domain.Ticket, error) {
	const stmt = `
INSERT INTO tickets (total_price, total_count, status, type, created_at, updated_at, book_isbn, operator_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`

	err := r.queryRow(ctx, stmt,
		t.TotalPrice,
		t.TotalCount,
		t.Status,
		t.Type,
		t.CreatedAt,
		t.UpdatedAt,
		t.BookISBN,
		t.OperatorID,
	).Scan(&t.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Ticket{}, domain.ErrBookNotFound
		}
		return domain.Ticket{}, fmt.Errorf("insert ticket: %w", classify(err))
	}
	return t, nil
}

func (r *TicketRepository) GetTicket(ctx context.Context, id int64) (domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	t, err := r.scanTicket(r.queryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Ticket{}, domain.ErrTicketNotFound
		}
		return domain.Ticket{}, fmt.Errorf("get ticket: %w", classify(err))
	}
	return t, nil
}

// UpdateTicketStatus is the compare-and-set transition primitive: a single
// conditional UPDATE, so two racing transitions on the same ticket cannot
// both succeed. On a miss the ticket is re-read in the same transaction to
// tell a missing ticket apart from a state conflict.
func (r *TicketRepository) UpdateTicketStatus(ctx context.Context, id int64, wantStatus domain.TicketStatus, wantType domain.TicketType, newStatus domain.TicketStatus, now time.Time) (domain.Ticket, error) {
	stmt := `
UPDATE tickets
SET status = $4, updated_at = $5
WHERE id = $1 AND status = $2 AND type = $3
RETURNING ` + ticketColumns

	t, err := r.scanTicket(r.queryRow(ctx, stmt, id, wantStatus, wantType, newStatus, now))
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Ticket{}, fmt.Errorf("update ticket status: %w", classify(err))
	}

	current, err := r.GetTicket(ctx, id)
	if err != nil {
		return domain.Ticket{}, err
	}
	return domain.Ticket{}, &domain.TicketStateError{
		WantStatus: wantStatus,
		GotStatus:  current.Status,
		WantType:   wantType,
		GotType:    current.Type,
	}
}

// AdjustShelfCount adds delta to on_shelf_count, refusing to let it go
// negative. The conditional UPDATE takes the book's row lock, serializing
// concurrent adjustments of the same ISBN.
func (r *TicketRepository) AdjustShelfCount(ctx context.Context, isbn string, delta int) error {
	const stmt = `
UPDATE books
SET on_shelf_count = on_shelf_count + $2
WHERE isbn = $1 AND on_shelf_count + $2 >= 0`

	tag, err := r.exec(ctx, stmt, isbn, delta)
	if err != nil {
		return fmt.Errorf("adjust shelf count: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		if err := r.checkBookExists(ctx, isbn); err != nil {
			return err
		}
		return domain.ErrInsufficientShelfStock
	}
	return nil
}

// AdjustInventoryCount is the warehouse-side counterpart of AdjustShelfCount.
func (r *TicketRepository) AdjustInventoryCount(ctx context.Context, isbn string, delta int) error {
	const stmt = `
UPDATE books
SET inventory_count = inventory_count + $2
WHERE isbn = $1 AND inventory_count + $2 >= 0`

	tag, err := r.exec(ctx, stmt, isbn, delta)
	if err != nil {
		return fmt.Errorf("adjust inventory count: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		if err := r.checkBookExists(ctx, isbn); err != nil {
			return err
		}
		return domain.ErrInsufficientInventory
	}
	return nil
}

func (r *TicketRepository) CreateLedgerEntry(ctx context.Context, entry domain.LedgerEntry) error {
	const stmt = `
INSERT INTO ledger_entries (created_at, total_price, ticket_id)
VALUES ($1, $2, $3)`

	if _, err := r.exec(ctx, stmt, entry.CreatedAt, entry.TotalPrice, entry.TicketID); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrTicketNotFound
		}
		return fmt.Errorf("create ledger entry: %w", classify(err))
	}
	return nil
}

func (r *TicketRepository) ListTickets(ctx context.Context, typ domain.TicketType, page, pageSize int) ([]domain.Ticket, error) {
	query := `
SELECT ` + ticketColumns + `
FROM tickets
WHERE type = $1
ORDER BY id DESC
LIMIT $2 OFFSET $3`

	rows, err := r.query(ctx, query, typ, pageSize, pageOffset(page, pageSize))
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", classify(err))
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		t, err := r.scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate tickets: %w", classify(rows.Err()))
	}
	return tickets, nil
}

func (r *TicketRepository) checkBookExists(ctx context.Context, isbn string) error {
	const query = `SELECT EXISTS (SELECT 1 FROM books WHERE isbn = $1)`
	var exists bool
	if err := r.queryRow(ctx, query, isbn).Scan(&exists); err != nil {
		return fmt.Errorf("check book: %w", classify(err))
	}
	if !exists {
		return domain.ErrBookNotFound
	}
	return nil
}

func (r *TicketRepository) scanTicket(row pgx.Row) (domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(
		&t.ID,
		&t.TotalPrice,
		&t.TotalCount,
		&t.Status,
		&t.Type,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.BookISBN,
		&t.OperatorID,
	)
	return t, err
}

func (r *TicketRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *TicketRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *TicketRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
