package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/cimillas/bookstore-backoffice/internal/domain"
	"github.com/cimillas/bookstore-backoffice/internal/testutil"
)

func TestStatsRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewStatsRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	seed := func(t *testing.T, ctx context.Context) (operatorID int64) {
		t.Helper()
		testutil.TruncateAll(t, ctx, pool)
		operatorID = testutil.InsertUser(t, ctx, pool, "Alice", domain.RoleAdmin)
		testutil.InsertBook(t, ctx, pool, "isbn-1", 10, 5)

		sellID := testutil.InsertTicket(t, ctx, pool, domain.Ticket{
			TotalPrice: 30, TotalCount: 2,
			Status: domain.TicketStatusDone, Type: domain.TicketTypeSell,
			CreatedAt: now, UpdatedAt: now, BookISBN: "isbn-1", OperatorID: operatorID,
		})
		stockID := testutil.InsertTicket(t, ctx, pool, domain.Ticket{
			TotalPrice: 80, TotalCount: 8,
			Status: domain.TicketStatusStockPaid, Type: domain.TicketTypeStock,
			CreatedAt: now, UpdatedAt: now, BookISBN: "isbn-1", OperatorID: operatorID,
		})

		if _, err := pool.Exec(ctx, `
INSERT INTO ledger_entries (created_at, total_price, ticket_id)
VALUES ($1, 30, $2), ($1, -80, $3)`, now, sellID, stockID); err != nil {
			t.Fatalf("insert ledger entries: %v", err)
		}
		return operatorID
	}

	t.Run("SumLedgerByType reports unsigned totals per direction", func(t *testing.T) {
		ctx := context.Background()
		seed(t, ctx)

		sell, err := repo.SumLedgerByType(ctx, domain.TicketTypeSell, nil, nil)
		if err != nil {
			t.Fatalf("sum sell: %v", err)
		}
		if sell != 30 {
			t.Fatalf("expected sell total 30, got %v", sell)
		}

		stock, err := repo.SumLedgerByType(ctx, domain.TicketTypeStock, nil, nil)
		if err != nil {
			t.Fatalf("sum stock: %v", err)
		}
		if stock != 80 {
			t.Fatalf("expected stock total 80, got %v", stock)
		}
	})

	t.Run("operator scope excludes other operators", func(t *testing.T) {
		ctx := context.Background()
		seed(t, ctx)
		other := testutil.InsertUser(t, ctx, pool, "Bob", domain.RoleAdmin)

		sell, err := repo.SumLedgerByType(ctx, domain.TicketTypeSell, nil, &other)
		if err != nil {
			t.Fatalf("sum: %v", err)
		}
		if sell != 0 {
			t.Fatalf("expected 0 for other operator, got %v", sell)
		}
	})

	t.Run("time window excludes older entries", func(t *testing.T) {
		ctx := context.Background()
		seed(t, ctx)

		since := now.Add(time.Hour)
		sell, err := repo.SumLedgerByType(ctx, domain.TicketTypeSell, &since, nil)
		if err != nil {
			t.Fatalf("sum: %v", err)
		}
		if sell != 0 {
			t.Fatalf("expected 0 inside empty window, got %v", sell)
		}
	})

	t.Run("SumTicketCounts splits by status", func(t *testing.T) {
		ctx := context.Background()
		seed(t, ctx)

		total, waiting, err := repo.SumTicketCounts(ctx, domain.TicketTypeStock, domain.TicketStatusStockPaid, nil, nil)
		if err != nil {
			t.Fatalf("sum: %v", err)
		}
		if total != 8 || waiting != 8 {
			t.Fatalf("expected 8/8, got %d/%d", total, waiting)
		}

		total, done, err := repo.SumTicketCounts(ctx, domain.TicketTypeSell, domain.TicketStatusDone, nil, nil)
		if err != nil {
			t.Fatalf("sum: %v", err)
		}
		if total != 2 || done != 2 {
			t.Fatalf("expected 2/2, got %d/%d", total, done)
		}
	})

	t.Run("BookTotals counts titles and inventory", func(t *testing.T) {
		ctx := context.Background()
		seed(t, ctx)

		inventory, titles, err := repo.BookTotals(ctx)
		if err != nil {
			t.Fatalf("totals: %v", err)
		}
		if inventory != 10 || titles != 1 {
			t.Fatalf("expected 10/1, got %d/%d", inventory, titles)
		}
	})
}
