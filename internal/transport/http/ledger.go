package http

import (
	"context"
	"net/http"
	"time"

	"github.com/cimillas/bookstore-backoffice/internal/app"
	"github.com/cimillas/bookstore-backoffice/internal/domain"
)

// LedgerReader is the minimal interface needed by the ledger endpoint.
type LedgerReader interface {
	ListEntries(ctx context.Context, in app.ListLedgerInput) ([]domain.LedgerEntry, error)
}

// HandleLedger serves GET /ledger with an optional from/to time window.
func HandleLedger(svc LedgerReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		in := app.ListLedgerInput{}
		in.Page, in.PageSize = parsePagination(r)

		if raw := r.URL.Query().Get("from"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid from format")
				return
			}
			in.From = &parsed
		}
		if raw := r.URL.Query().Get("to"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid to format")
				return
			}
			in.To = &parsed
		}

		entries, err := svc.ListEntries(r.Context(), in)
		if err != nil {
			respondError(w, err)
			return
		}
		resp := make([]ledgerEntryResponse, 0, len(entries))
		for _, entry := range entries {
			resp = append(resp, ledgerEntryResponse{
				ID:         entry.ID,
				CreatedAt:  entry.CreatedAt,
				TotalPrice: entry.TotalPrice,
				TicketID:   entry.TicketID,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type ledgerEntryResponse struct {
	ID         int64     `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	TotalPrice float64   `json:"total_price"`
	TicketID   int64     `json:"ticket_id"`
}
