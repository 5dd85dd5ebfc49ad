package app

import (
	"context"
	"time"

	"github.com/cimillas/bookstore-backoffice/internal/clock"
	"github.com/cimillas/bookstore-backoffice/internal/domain"
)

type StatsRepository interface {
	SumLedgerByType(ctx context.Context, typ domain.TicketType, since *time.Time, operatorID *int64) (float64, error)
	SumTicketCounts(ctx context.Context, typ domain.TicketType, onlyStatus domain.TicketStatus, since *time.Time, operatorID *int64) (total int, inStatus int, err error)
	BookTotals(ctx context.Context) (inventory int, titles int, err error)
}

// StatsService computes the dashboard sums. Plain reads, no invariants: a
// number that is a moment stale is acceptable here.
type StatsService struct {
	repo  StatsRepository
	clock clock.Clock
}

func NewStatsService(repo StatsRepository, clk clock.Clock) *StatsService {
	return &StatsService{
		repo:  repo,
		clock: clk,
	}
}

type StatSpan string

const (
	SpanDay   StatSpan = "day"
	SpanWeek  StatSpan = "week"
	SpanMonth StatSpan = "month"
	SpanAll   StatSpan = "all"
)

func (s StatSpan) since(now time.Time) *time.Time {
	var days int
	switch s {
	case SpanDay:
		days = 1
	case SpanWeek:
		days = 7
	case SpanMonth:
		days = 30
	default:
		return nil
	}
	t := now.AddDate(0, 0, -days)
	return &t
}

// StatScope restricts sums to the requesting operator's own tickets unless
// the operator is a super admin asking for the whole store.
type StatScope struct {
	Span StatSpan
	All  bool
	User domain.User
}

func (sc StatScope) operatorID() *int64 {
	if sc.All && sc.User.Role == domain.RoleSuperAdmin {
		return nil
	}
	id := sc.User.ID
	return &id
}

type TransactionStats struct {
	TotalSellPrice      float64
	TotalStockPaidPrice float64
}

func (s *StatsService) TransactionStats(ctx context.Context, scope StatScope) (TransactionStats, error) {
	since := scope.Span.since(s.clock.Now())
	operator := scope.operatorID()

	sell, err := s.repo.SumLedgerByType(ctx, domain.TicketTypeSell, since, operator)
	if err != nil {
		return TransactionStats{}, err
	}
	stock, err := s.repo.SumLedgerByType(ctx, domain.TicketTypeStock, since, operator)
	if err != nil {
		return TransactionStats{}, err
	}
	return TransactionStats{
		TotalSellPrice:      sell,
		TotalStockPaidPrice: stock,
	}, nil
}

type StockStats struct {
	TotalStockCount             int
	TotalWaitingForConfirmCount int
}

func (s *StatsService) StockStats(ctx context.Context, scope StatScope) (StockStats, error) {
	total, waiting, err := s.repo.SumTicketCounts(ctx,
		domain.TicketTypeStock, domain.TicketStatusStockPaid,
		scope.Span.since(s.clock.Now()), scope.operatorID())
	if err != nil {
		return StockStats{}, err
	}
	return StockStats{
		TotalStockCount:             total,
		TotalWaitingForConfirmCount: waiting,
	}, nil
}

type SellStats struct {
	TotalSellCount int
	TotalDoneCount int
}

func (s *StatsService) SellStats(ctx context.Context, scope StatScope) (SellStats, error) {
	total, done, err := s.repo.SumTicketCounts(ctx,
		domain.TicketTypeSell, domain.TicketStatusDone,
		scope.Span.since(s.clock.Now()), scope.operatorID())
	if err != nil {
		return SellStats{}, err
	}
	return SellStats{
		TotalSellCount: total,
		TotalDoneCount: done,
	}, nil
}

type BookStats struct {
	TotalInventoryCount int
	TotalBookCount      int
}

func (s *StatsService) BookStats(ctx context.Context) (BookStats, error) {
	inventory, titles, err := s.repo.BookTotals(ctx)
	if err != nil {
		return BookStats{}, err
	}
	return BookStats{
		TotalInventoryCount: inventory,
		TotalBookCount:      titles,
	}, nil
}
