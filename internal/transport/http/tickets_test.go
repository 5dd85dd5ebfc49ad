package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cimillas/bookstore-backoffice/internal/app"
	"github.com/cimillas/bookstore-backoffice/internal/domain"
)

func TestHandleSellTickets_Create(t *testing.T) {
	t.Parallel()

	operator := domain.User{ID: 7, Role: domain.RoleAdmin}

	t.Run("creates ticket and returns 201", func(t *testing.T) {
		svc := &stubTicketWorkflow{
			sellBook: func(ctx context.Context, in app.NewTicketInput) (domain.Ticket, error) {
				if in.BookISBN != "isbn-1" || in.TotalCount != 2 || in.OperatorID != 7 {
					t.Fatalf("unexpected input: %+v", in)
				}
				return domain.Ticket{
					ID:         1,
					TotalPrice: in.TotalPrice,
					TotalCount: in.TotalCount,
					Status:     domain.TicketStatusPending,
					Type:       domain.TicketTypeSell,
					BookISBN:   in.BookISBN,
					OperatorID: in.OperatorID,
				}, nil
			},
		}

		req := authedRequest(http.MethodPost, "/tickets/sell",
			`{"book_isbn":"isbn-1","total_price":30,"total_count":2}`, operator)
		rec := httptest.NewRecorder()
		HandleSellTickets(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp ticketResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.ID != 1 || resp.Status != string(domain.TicketStatusPending) || resp.Type != string(domain.TicketTypeSell) {
			t.Fatalf("unexpected response: %+v", resp)
		}
	})

	t.Run("invalid body returns 400", func(t *testing.T) {
		req := authedRequest(http.MethodPost, "/tickets/sell", `{not json`, operator)
		rec := httptest.NewRecorder()
		HandleSellTickets(&stubTicketWorkflow{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, rec, codeInvalidRequestBody)
	})

	t.Run("missing book isbn returns 400", func(t *testing.T) {
		req := authedRequest(http.MethodPost, "/tickets/sell", `{"total_count":1}`, operator)
		rec := httptest.NewRecorder()
		HandleSellTickets(&stubTicketWorkflow{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown book maps to 404", func(t *testing.T) {
		svc := &stubTicketWorkflow{
			sellBook: func(ctx context.Context, in app.NewTicketInput) (domain.Ticket, error) {
				return domain.Ticket{}, domain.ErrBookNotFound
			},
		}
		req := authedRequest(http.MethodPost, "/tickets/sell",
			`{"book_isbn":"missing","total_price":30,"total_count":2}`, operator)
		rec := httptest.NewRecorder()
		HandleSellTickets(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, rec, codeBookNotFound)
	})

	t.Run("delete method returns 405", func(t *testing.T) {
		req := authedRequest(http.MethodDelete, "/tickets/sell", "", operator)
		rec := httptest.NewRecorder()
		HandleSellTickets(&stubTicketWorkflow{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})
}

func TestHandleTicketActions(t *testing.T) {
	t.Parallel()

	operator := domain.User{ID: 7, Role: domain.RoleAdmin}

	t.Run("pay routes to PaySell", func(t *testing.T) {
		var paid int64
		svc := &stubTicketWorkflow{
			paySell: func(ctx context.Context, id int64) (domain.Ticket, error) {
				paid = id
				return domain.Ticket{ID: id, Status: domain.TicketStatusDone, Type: domain.TicketTypeSell}, nil
			},
		}
		req := authedRequest(http.MethodPost, "/tickets/sell/5/pay", "", operator)
		rec := httptest.NewRecorder()
		HandleSellTicketActions(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if paid != 5 {
			t.Fatalf("expected ticket 5 paid, got %d", paid)
		}
	})

	t.Run("state conflict maps to 409 with actual state", func(t *testing.T) {
		svc := &stubTicketWorkflow{
			paySell: func(ctx context.Context, id int64) (domain.Ticket, error) {
				return domain.Ticket{}, &domain.TicketStateError{
					WantStatus: domain.TicketStatusPending,
					GotStatus:  domain.TicketStatusDone,
					WantType:   domain.TicketTypeSell,
					GotType:    domain.TicketTypeSell,
				}
			},
		}
		req := authedRequest(http.MethodPost, "/tickets/sell/5/pay", "", operator)
		rec := httptest.NewRecorder()
		HandleSellTicketActions(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, rec, codeTicketConflict)
		if !strings.Contains(rec.Body.String(), "Done") {
			t.Fatalf("expected actual state in message, got %s", rec.Body.String())
		}
	})

	t.Run("insufficient shelf stock maps to 409", func(t *testing.T) {
		svc := &stubTicketWorkflow{
			paySell: func(ctx context.Context, id int64) (domain.Ticket, error) {
				return domain.Ticket{}, domain.ErrInsufficientShelfStock
			},
		}
		req := authedRequest(http.MethodPost, "/tickets/sell/5/pay", "", operator)
		rec := httptest.NewRecorder()
		HandleSellTicketActions(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, rec, codeInsufficientShelf)
	})

	t.Run("confirm is not a sell action", func(t *testing.T) {
		req := authedRequest(http.MethodPost, "/tickets/sell/5/confirm", "", operator)
		rec := httptest.NewRecorder()
		HandleSellTicketActions(&stubTicketWorkflow{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("confirm routes to ConfirmStock", func(t *testing.T) {
		var confirmed int64
		svc := &stubTicketWorkflow{
			confirmStock: func(ctx context.Context, id int64) (domain.Ticket, error) {
				confirmed = id
				return domain.Ticket{ID: id, Status: domain.TicketStatusDone, Type: domain.TicketTypeStock}, nil
			},
		}
		req := authedRequest(http.MethodPost, "/tickets/stock/9/confirm", "", operator)
		rec := httptest.NewRecorder()
		HandleStockTicketActions(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if confirmed != 9 {
			t.Fatalf("expected ticket 9 confirmed, got %d", confirmed)
		}
	})

	t.Run("non-numeric id returns 404", func(t *testing.T) {
		req := authedRequest(http.MethodPost, "/tickets/sell/abc/pay", "", operator)
		rec := httptest.NewRecorder()
		HandleSellTicketActions(&stubTicketWorkflow{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func authedRequest(method, target, body string, user domain.User) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(withUser(req.Context(), user))
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Code != want {
		t.Fatalf("expected code %s, got %s", want, resp.Code)
	}
}

type stubTicketWorkflow struct {
	sellBook     func(ctx context.Context, in app.NewTicketInput) (domain.Ticket, error)
	stockBook    func(ctx context.Context, in app.NewTicketInput) (domain.Ticket, error)
	paySell      func(ctx context.Context, id int64) (domain.Ticket, error)
	revokeSell   func(ctx context.Context, id int64) (domain.Ticket, error)
	payStock     func(ctx context.Context, id int64) (domain.Ticket, error)
	confirmStock func(ctx context.Context, id int64) (domain.Ticket, error)
	revokeStock  func(ctx context.Context, id int64) (domain.Ticket, error)
}

func (s *stubTicketWorkflow) SellBook(ctx context.Context, in app.NewTicketInput) (domain.Ticket, error) {
	if s.sellBook == nil {
		return domain.Ticket{}, nil
	}
	return s.sellBook(ctx, in)
}

func (s *stubTicketWorkflow) StockBook(ctx context.Context, in app.NewTicketInput) (domain.Ticket, error) {
	if s.stockBook == nil {
		return domain.Ticket{}, nil
	}
	return s.stockBook(ctx, in)
}

func (s *stubTicketWorkflow) PaySell(ctx context.Context, id int64) (domain.Ticket, error) {
	if s.paySell == nil {
		return domain.Ticket{}, nil
	}
	return s.paySell(ctx, id)
}

func (s *stubTicketWorkflow) RevokeSell(ctx context.Context, id int64) (domain.Ticket, error) {
	if s.revokeSell == nil {
		return domain.Ticket{}, nil
	}
	return s.revokeSell(ctx, id)
}

func (s *stubTicketWorkflow) PayStock(ctx context.Context, id int64) (domain.Ticket, error) {
	if s.payStock == nil {
		return domain.Ticket{}, nil
	}
	return s.payStock(ctx, id)
}

func (s *stubTicketWorkflow) ConfirmStock(ctx context.Context, id int64) (domain.Ticket, error) {
	if s.confirmStock == nil {
		return domain.Ticket{}, nil
	}
	return s.confirmStock(ctx, id)
}

func (s *stubTicketWorkflow) RevokeStock(ctx context.Context, id int64) (domain.Ticket, error) {
	if s.revokeStock == nil {
		return domain.Ticket{}, nil
	}
	return s.revokeStock(ctx, id)
}

func (s *stubTicketWorkflow) GetTicket(ctx context.Context, id int64) (domain.Ticket, error) {
	return domain.Ticket{ID: id}, nil
}

func (s *stubTicketWorkflow) ListTickets(ctx context.Context, typ domain.TicketType, page, pageSize int) ([]domain.Ticket, error) {
	return nil, nil
}
