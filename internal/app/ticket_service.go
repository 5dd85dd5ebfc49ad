package app

import (
	"context"
	"time"

	"github.com/cimillas/bookstore-backoffice/internal/clock"
	"github.com/cimillas/bookstore-backoffice/internal/domain"
)

type TicketRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetBook(ctx context.Context, isbn string) (domain.Book, error)
	CreateBook(ctx context.Context, isbn string, info domain.BookInfo) error
	InsertTicket(ctx context.Context, t domain.Ticket) (domain.Ticket, error)
	GetTicket(ctx context.Context, id int64) (domain.Ticket, error)
	UpdateTicketStatus(ctx context.Context, id int64, wantStatus domain.TicketStatus, wantType domain.TicketType, newStatus domain.TicketStatus, now time.Time) (domain.Ticket, error)
	AdjustShelfCount(ctx context.Context, isbn string, delta int) error
	AdjustInventoryCount(ctx context.Context, isbn string, delta int) error
	CreateLedgerEntry(ctx context.Context, entry domain.LedgerEntry) error
	ListTickets(ctx context.Context, typ domain.TicketType, page, pageSize int) ([]domain.Ticket, error)
}

// TicketService orchestrates the ticket lifecycle. Every operation that
// mutates state runs as one transaction: the status compare-and-set, the
// stock counter adjustment and the ledger write commit or roll back as a
// unit, so a failed step never leaves partial effects behind.
type TicketService struct {
	repo  TicketRepository
	clock clock.Clock
}

func NewTicketService(repo TicketRepository, clk clock.Clock) *TicketService {
	return &TicketService{
		repo:  repo,
		clock: clk,
	}
}

type NewTicketInput struct {
	BookISBN   string
	TotalPrice float64
	TotalCount int
	// Book supplies descriptive info when a restock references an unknown
	// ISBN; ignored for sells.
	Book       *domain.BookInfo
	OperatorID int64
}

func (in NewTicketInput) validate() error {
	if in.TotalCount <= 0 {
		return domain.ErrInvalidCount
	}
	if in.TotalPrice < 0 {
		return domain.ErrInvalidPrice
	}
	return nil
}

// SellBook opens a Pending sell ticket. Stock is untouched until payment;
// the sale is fulfilled from the shelf at pay time.
func (s *TicketService) SellBook(ctx context.Context, in NewTicketInput) (domain.Ticket, error) {
	if err := in.validate(); err != nil {
		return domain.Ticket{}, err
	}

	now := s.clock.Now()
	var result domain.Ticket

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetBook(txCtx, in.BookISBN); err != nil {
			return err
		}
		ticket, err := s.repo.InsertTicket(txCtx, newTicket(in, domain.TicketTypeSell, now))
		if err != nil {
			return err
		}
		result = ticket
		return nil
	})
	if err != nil {
		return domain.Ticket{}, err
	}
	return result, nil
}

// StockBook opens a Pending restock ticket, creating the book record first
// when the ISBN is new and descriptive info was supplied.
func (s *TicketService) StockBook(ctx context.Context, in NewTicketInput) (domain.Ticket, error) {
	if err := in.validate(); err != nil {
		return domain.Ticket{}, err
	}

	now := s.clock.Now()
	var result domain.Ticket

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetBook(txCtx, in.BookISBN); err != nil {
			if err != domain.ErrBookNotFound {
				return err
			}
			if in.Book == nil {
				return domain.ErrBookInfoRequired
			}
			if err := s.repo.CreateBook(txCtx, in.BookISBN, *in.Book); err != nil {
				return err
			}
		}
		ticket, err := s.repo.InsertTicket(txCtx, newTicket(in, domain.TicketTypeStock, now))
		if err != nil {
			return err
		}
		result = ticket
		return nil
	})
	if err != nil {
		return domain.Ticket{}, err
	}
	return result, nil
}

// PaySell completes a sale: Pending → Done, shelf stock down by the sold
// units, one positive ledger entry. A concurrent duplicate pay loses the
// compare-and-set and observes the conflict instead of double-charging.
func (s *TicketService) PaySell(ctx context.Context, id int64) (domain.Ticket, error) {
	now := s.clock.Now()
	var result domain.Ticket

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		ticket, err := s.repo.UpdateTicketStatus(txCtx, id,
			domain.TicketStatusPending, domain.TicketTypeSell, domain.TicketStatusDone, now)
		if err != nil {
			return err
		}
		if err := s.repo.AdjustShelfCount(txCtx, ticket.BookISBN, -ticket.TotalCount); err != nil {
			return err
		}
		if err := s.repo.CreateLedgerEntry(txCtx, domain.LedgerEntry{
			CreatedAt:  now,
			TotalPrice: domain.LedgerAmount(ticket),
			TicketID:   ticket.ID,
		}); err != nil {
			return err
		}
		result = ticket
		return nil
	})
	if err != nil {
		return domain.Ticket{}, err
	}
	return result, nil
}

// RevokeSell cancels a sell ticket that has not been paid. No stock or
// ledger effect.
func (s *TicketService) RevokeSell(ctx context.Context, id int64) (domain.Ticket, error) {
	return s.revoke(ctx, id, domain.TicketTypeSell)
}

// RevokeStock cancels a restock ticket that has not been paid.
func (s *TicketService) RevokeStock(ctx context.Context, id int64) (domain.Ticket, error) {
	return s.revoke(ctx, id, domain.TicketTypeStock)
}

func (s *TicketService) revoke(ctx context.Context, id int64, typ domain.TicketType) (domain.Ticket, error) {
	now := s.clock.Now()
	var result domain.Ticket

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		ticket, err := s.repo.UpdateTicketStatus(txCtx, id,
			domain.TicketStatusPending, typ, domain.TicketStatusRevoked, now)
		if err != nil {
			return err
		}
		result = ticket
		return nil
	})
	if err != nil {
		return domain.Ticket{}, err
	}
	return result, nil
}

// PayStock records payment to the supplier: Pending → StockPaid plus one
// negative ledger entry. Inventory only moves at confirmation, when the
// delivery arrives.
func (s *TicketService) PayStock(ctx context.Context, id int64) (domain.Ticket, error) {
	now := s.clock.Now()
	var result domain.Ticket

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		ticket, err := s.repo.UpdateTicketStatus(txCtx, id,
			domain.TicketStatusPending, domain.TicketTypeStock, domain.TicketStatusStockPaid, now)
		if err != nil {
			return err
		}
		if err := s.repo.CreateLedgerEntry(txCtx, domain.LedgerEntry{
			CreatedAt:  now,
			TotalPrice: domain.LedgerAmount(ticket),
			TicketID:   ticket.ID,
		}); err != nil {
			return err
		}
		result = ticket
		return nil
	})
	if err != nil {
		return domain.Ticket{}, err
	}
	return result, nil
}

// ConfirmStock books the delivered units into warehouse inventory:
// StockPaid → Done, inventory up by the purchased count.
func (s *TicketService) ConfirmStock(ctx context.Context, id int64) (domain.Ticket, error) {
	now := s.clock.Now()
	var result domain.Ticket

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		ticket, err := s.repo.UpdateTicketStatus(txCtx, id,
			domain.TicketStatusStockPaid, domain.TicketTypeStock, domain.TicketStatusDone, now)
		if err != nil {
			return err
		}
		if err := s.repo.AdjustInventoryCount(txCtx, ticket.BookISBN, ticket.TotalCount); err != nil {
			return err
		}
		result = ticket
		return nil
	})
	if err != nil {
		return domain.Ticket{}, err
	}
	return result, nil
}

func (s *TicketService) GetTicket(ctx context.Context, id int64) (domain.Ticket, error) {
	return s.repo.GetTicket(ctx, id)
}

func (s *TicketService) ListTickets(ctx context.Context, typ domain.TicketType, page, pageSize int) ([]domain.Ticket, error) {
	return s.repo.ListTickets(ctx, typ, page, pageSize)
}

func newTicket(in NewTicketInput, typ domain.TicketType, now time.Time) domain.Ticket {
	return domain.Ticket{
		TotalPrice: in.TotalPrice,
		TotalCount: in.TotalCount,
		Status:     domain.TicketStatusPending,
		Type:       typ,
		CreatedAt:  now,
		UpdatedAt:  now,
		BookISBN:   in.BookISBN,
		OperatorID: in.OperatorID,
	}
}
