package domain

import "time"

type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "Pending"
	TicketStatusStockPaid TicketStatus = "StockPaid"
	TicketStatusDone      TicketStatus = "Done"
	TicketStatusRevoked   TicketStatus = "Revoked"
)

type TicketType string

const (
	TicketTypeSell  TicketType = "Sell"
	TicketTypeStock TicketType = "Stock"
)

// Ticket represents a sell or restock order moving through its lifecycle.
// Type is immutable after creation; Status only advances along the
// transition graph (Pending → Done/Revoked for Sell, Pending → StockPaid →
// Done or Pending → Revoked for Stock).
type Ticket struct {
	ID         int64
	TotalPrice float64
	TotalCount int
	Status     TicketStatus
	Type       TicketType
	CreatedAt  time.Time
	UpdatedAt  time.Time
	BookISBN   string
	OperatorID int64
}

// Terminal reports whether no further transition may leave the status.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusDone || s == TicketStatusRevoked
}
