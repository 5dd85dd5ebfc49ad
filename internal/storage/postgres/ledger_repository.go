package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cimillas/bookstore-backoffice/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// ListEntries returns ledger entries inside the optional [from, to] window,
// newest first. Entries are append-only, so a plain offset scan is stable
// enough for back-office paging.
func (r *LedgerRepository) ListEntries(ctx context.Context, from, to *time.Time, page, pageSize int) ([]domain.LedgerEntry, error) {
	query := `SELECT id, created_at, total_price, ticket_id FROM ledger_entries`
	var args []any
	if from != nil {
		args = append(args, *from)
		query += " WHERE created_at > $" + strconv.Itoa(len(args))
	}
	if to != nil {
		args = append(args, *to)
		if from != nil {
			query += " AND created_at < $" + strconv.Itoa(len(args))
		} else {
			query += " WHERE created_at < $" + strconv.Itoa(len(args))
		}
	}
	args = append(args, pageSize, pageOffset(page, pageSize))
	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", classify(err))
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.TotalPrice, &e.TicketID); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", classify(rows.Err()))
	}
	return entries, nil
}
