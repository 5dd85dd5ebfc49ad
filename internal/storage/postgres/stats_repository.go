package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cimillas/bookstore-backoffice/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StatsRepository serves the read-only reporting sums. Nothing here runs in a
// transaction; slightly stale numbers are fine for dashboards.
type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// SumLedgerByType totals paid amounts for tickets of one type. The result is
// reported unsigned: the ledger stores restock expenditure negative, so the
// Stock total is negated back to a positive figure.
func (r *StatsRepository) SumLedgerByType(ctx context.Context, typ domain.TicketType, since *time.Time, operatorID *int64) (float64, error) {
	query := `
SELECT COALESCE(SUM(l.total_price), 0)
FROM ledger_entries l
JOIN tickets t ON t.id = l.ticket_id
WHERE t.type = $1`
	args := []any{typ}
	query, args = appendWindow(query, args, "l.created_at", since)
	query, args = appendOperator(query, args, "t.operator_id", operatorID)

	var total float64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum ledger: %w", classify(err))
	}
	if typ == domain.TicketTypeStock {
		total = -total
	}
	return total, nil
}

// SumTicketCounts totals units across tickets of one type, and separately
// across the subset currently in onlyStatus (pass "" to skip the subset).
func (r *StatsRepository) SumTicketCounts(ctx context.Context, typ domain.TicketType, onlyStatus domain.TicketStatus, since *time.Time, operatorID *int64) (total int, inStatus int, err error) {
	query := `
SELECT
	COALESCE(SUM(total_count), 0),
	COALESCE(SUM(total_count) FILTER (WHERE status = $2), 0)
FROM tickets
WHERE type = $1`
	args := []any{typ, onlyStatus}
	query, args = appendWindow(query, args, "created_at", since)
	query, args = appendOperator(query, args, "operator_id", operatorID)

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total, &inStatus); err != nil {
		return 0, 0, fmt.Errorf("sum ticket counts: %w", classify(err))
	}
	return total, inStatus, nil
}

func (r *StatsRepository) BookTotals(ctx context.Context) (inventory int, titles int, err error) {
	const query = `SELECT COALESCE(SUM(inventory_count), 0), COUNT(*) FROM books`

	if err := r.pool.QueryRow(ctx, query).Scan(&inventory, &titles); err != nil {
		return 0, 0, fmt.Errorf("book totals: %w", classify(err))
	}
	return inventory, titles, nil
}

func appendWindow(query string, args []any, column string, since *time.Time) (string, []any) {
	if since == nil {
		return query, args
	}
	args = append(args, *since)
	return query + " AND " + column + " > $" + strconv.Itoa(len(args)), args
}

func appendOperator(query string, args []any, column string, operatorID *int64) (string, []any) {
	if operatorID == nil {
		return query, args
	}
	args = append(args, *operatorID)
	return query + " AND " + column + " = $" + strconv.Itoa(len(args)), args
}
