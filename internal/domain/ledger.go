package domain

import "time"

// LedgerEntry is an immutable financial record written in the same
// transaction as the pay transition of its ticket; at most one per ticket.
type LedgerEntry struct {
	ID         int64
	CreatedAt  time.Time
	TotalPrice float64
	TicketID   int64
}

// LedgerAmount is the canonical sign rule: revenue from a sale is positive,
// expenditure for a restock is negative. Amounts are signed here, at write
// time, and stored as-is.
func LedgerAmount(t Ticket) float64 {
	if t.Type == TicketTypeStock {
		return -t.TotalPrice
	}
	return t.TotalPrice
}
