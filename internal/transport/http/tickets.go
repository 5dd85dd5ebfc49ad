package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cimillas/bookstore-backoffice/internal/app"
	"github.com/cimillas/bookstore-backoffice/internal/domain"
)

// TicketWorkflow is the minimal interface needed by the ticket endpoints.
type TicketWorkflow interface {
	SellBook(ctx context.Context, in app.NewTicketInput) (domain.Ticket, error)
	StockBook(ctx context.Context, in app.NewTicketInput) (domain.Ticket, error)
	PaySell(ctx context.Context, id int64) (domain.Ticket, error)
	RevokeSell(ctx context.Context, id int64) (domain.Ticket, error)
	PayStock(ctx context.Context, id int64) (domain.Ticket, error)
	ConfirmStock(ctx context.Context, id int64) (domain.Ticket, error)
	RevokeStock(ctx context.Context, id int64) (domain.Ticket, error)
	GetTicket(ctx context.Context, id int64) (domain.Ticket, error)
	ListTickets(ctx context.Context, typ domain.TicketType, page, pageSize int) ([]domain.Ticket, error)
}

// HandleSellTickets serves POST (open a sale) and GET (list sales) on the
// sell ticket collection.
func HandleSellTickets(svc TicketWorkflow) http.HandlerFunc {
	return handleTicketCollection(svc, domain.TicketTypeSell)
}

// HandleStockTickets serves POST (open a restock) and GET (list restocks) on
// the stock ticket collection.
func HandleStockTickets(svc TicketWorkflow) http.HandlerFunc {
	return handleTicketCollection(svc, domain.TicketTypeStock)
}

func handleTicketCollection(svc TicketWorkflow, typ domain.TicketType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			page, pageSize := parsePagination(r)
			tickets, err := svc.ListTickets(r.Context(), typ, page, pageSize)
			if err != nil {
				respondError(w, err)
				return
			}
			resp := make([]ticketResponse, 0, len(tickets))
			for _, t := range tickets {
				resp = append(resp, newTicketResponse(t))
			}
			writeJSON(w, http.StatusOK, resp)
		case http.MethodPost:
			operator, ok := mustUser(w, r)
			if !ok {
				return
			}

			var req createTicketRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			if req.BookISBN == "" {
				writeError(w, http.StatusBadRequest, codeInvalidID, "book_isbn is required")
				return
			}

			in := app.NewTicketInput{
				BookISBN:   req.BookISBN,
				TotalPrice: req.TotalPrice,
				TotalCount: req.TotalCount,
				OperatorID: operator.ID,
			}
			if req.Book != nil {
				in.Book = &domain.BookInfo{
					Title:     req.Book.Title,
					Author:    req.Book.Author,
					Publisher: req.Book.Publisher,
					Price:     req.Book.Price,
				}
			}

			create := svc.SellBook
			if typ == domain.TicketTypeStock {
				create = svc.StockBook
			}
			ticket, err := create(r.Context(), in)
			if err != nil {
				respondError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, newTicketResponse(ticket))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleSellTicketActions serves POST /tickets/sell/{id}/pay and
// POST /tickets/sell/{id}/revoke.
func HandleSellTicketActions(svc TicketWorkflow) http.HandlerFunc {
	return handleTicketActions(svc, "sell", map[string]ticketAction{
		"pay":    svc.PaySell,
		"revoke": svc.RevokeSell,
	})
}

// HandleStockTicketActions serves POST /tickets/stock/{id}/pay, .../confirm
// and .../revoke.
func HandleStockTicketActions(svc TicketWorkflow) http.HandlerFunc {
	return handleTicketActions(svc, "stock", map[string]ticketAction{
		"pay":     svc.PayStock,
		"confirm": svc.ConfirmStock,
		"revoke":  svc.RevokeStock,
	})
}

type ticketAction func(ctx context.Context, id int64) (domain.Ticket, error)

func handleTicketActions(svc TicketWorkflow, collection string, actions map[string]ticketAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		id, action, ok := parseTicketActionPath(r.URL.Path, collection)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		run, ok := actions[action]
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		ticket, err := run(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newTicketResponse(ticket))
	}
}

// HandleGetTicket serves GET /tickets/{id}.
func HandleGetTicket(svc TicketWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 2 || parts[0] != "tickets" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, codeInvalidID, "invalid ticket id")
			return
		}

		ticket, err := svc.GetTicket(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newTicketResponse(ticket))
	}
}

func parseTicketActionPath(path, collection string) (int64, string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 4 {
		return 0, "", false
	}
	if parts[0] != "tickets" || parts[1] != collection {
		return 0, "", false
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || id <= 0 {
		return 0, "", false
	}
	return id, parts[3], true
}

type createTicketRequest struct {
	BookISBN   string           `json:"book_isbn"`
	TotalPrice float64          `json:"total_price"`
	TotalCount int              `json:"total_count"`
	Book       *bookInfoRequest `json:"book,omitempty"`
}

type bookInfoRequest struct {
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Publisher string  `json:"publisher"`
	Price     float64 `json:"price"`
}

type ticketResponse struct {
	ID         int64     `json:"id"`
	TotalPrice float64   `json:"total_price"`
	TotalCount int       `json:"total_count"`
	Status     string    `json:"status"`
	Type       string    `json:"type"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	BookISBN   string    `json:"book_isbn"`
	OperatorID int64     `json:"operator_id"`
}

func newTicketResponse(t domain.Ticket) ticketResponse {
	return ticketResponse{
		ID:         t.ID,
		TotalPrice: t.TotalPrice,
		TotalCount: t.TotalCount,
		Status:     string(t.Status),
		Type:       string(t.Type),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
		BookISBN:   t.BookISBN,
		OperatorID: t.OperatorID,
	}
}
