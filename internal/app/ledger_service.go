package app

import (
	"context"
	"time"

	"github.com/cimillas/bookstore-backoffice/internal/domain"
)

type LedgerRepository interface {
	ListEntries(ctx context.Context, from, to *time.Time, page, pageSize int) ([]domain.LedgerEntry, error)
}

// LedgerService exposes the append-only payment records for display. Entries
// are written exclusively by the ticket pay transitions; nothing here
// mutates.
type LedgerService struct {
	repo LedgerRepository
}

func NewLedgerService(repo LedgerRepository) *LedgerService {
	return &LedgerService{repo: repo}
}

type ListLedgerInput struct {
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

func (s *LedgerService) ListEntries(ctx context.Context, in ListLedgerInput) ([]domain.LedgerEntry, error) {
	return s.repo.ListEntries(ctx, in.From, in.To, in.Page, in.PageSize)
}
