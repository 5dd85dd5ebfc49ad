package http

import (
	"context"
	"net/http"

	"github.com/cimillas/bookstore-backoffice/internal/app"
)

// StatsProvider is the minimal interface needed by the dashboard endpoints.
type StatsProvider interface {
	TransactionStats(ctx context.Context, scope app.StatScope) (app.TransactionStats, error)
	StockStats(ctx context.Context, scope app.StatScope) (app.StockStats, error)
	SellStats(ctx context.Context, scope app.StatScope) (app.SellStats, error)
	BookStats(ctx context.Context) (app.BookStats, error)
}

// HandleTransactionStats serves GET /stats/transactions.
func HandleTransactionStats(svc StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := statScope(w, r)
		if !ok {
			return
		}
		stats, err := svc.TransactionStats(r.Context(), scope)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, transactionStatsResponse{
			TotalSellPrice:      stats.TotalSellPrice,
			TotalStockPaidPrice: stats.TotalStockPaidPrice,
		})
	}
}

// HandleStockStats serves GET /stats/stock.
func HandleStockStats(svc StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := statScope(w, r)
		if !ok {
			return
		}
		stats, err := svc.StockStats(r.Context(), scope)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stockStatsResponse{
			TotalStockCount:             stats.TotalStockCount,
			TotalWaitingForConfirmCount: stats.TotalWaitingForConfirmCount,
		})
	}
}

// HandleSellStats serves GET /stats/sell.
func HandleSellStats(svc StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := statScope(w, r)
		if !ok {
			return
		}
		stats, err := svc.SellStats(r.Context(), scope)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sellStatsResponse{
			TotalSellCount: stats.TotalSellCount,
			TotalDoneCount: stats.TotalDoneCount,
		})
	}
}

// HandleBookStats serves GET /stats/books.
func HandleBookStats(svc StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		stats, err := svc.BookStats(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, bookStatsResponse{
			TotalInventoryCount: stats.TotalInventoryCount,
			TotalBookCount:      stats.TotalBookCount,
		})
	}
}

// statScope builds the stats scope from the span and scope query parameters
// and the authenticated operator.
func statScope(w http.ResponseWriter, r *http.Request) (app.StatScope, bool) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return app.StatScope{}, false
	}
	operator, ok := mustUser(w, r)
	if !ok {
		return app.StatScope{}, false
	}

	span := app.StatSpan(r.URL.Query().Get("span"))
	switch span {
	case app.SpanDay, app.SpanWeek, app.SpanMonth, app.SpanAll:
	case "":
		span = app.SpanAll
	default:
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid span")
		return app.StatScope{}, false
	}

	return app.StatScope{
		Span: span,
		All:  r.URL.Query().Get("scope") == "all",
		User: operator,
	}, true
}

type transactionStatsResponse struct {
	TotalSellPrice      float64 `json:"total_sell_price"`
	TotalStockPaidPrice float64 `json:"total_stock_paid_price"`
}

type stockStatsResponse struct {
	TotalStockCount             int `json:"total_stock_count"`
	TotalWaitingForConfirmCount int `json:"total_waiting_for_confirm_count"`
}

type sellStatsResponse struct {
	TotalSellCount int `json:"total_sell_count"`
	TotalDoneCount int `json:"total_done_count"`
}

type bookStatsResponse struct {
	TotalInventoryCount int `json:"total_inventory_count"`
	TotalBookCount      int `json:"total_book_count"`
}
