package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cimillas/bookstore-backoffice/internal/domain"
)

const (
	codeMethodNotAllowed      = "method_not_allowed"
	codeNotFound              = "not_found"
	codeInvalidRequestBody    = "invalid_request_body"
	codeInvalidID             = "invalid_id"
	codeInvalidCount          = "invalid_count"
	codeInvalidPrice          = "invalid_price"
	codeBookInfoRequired      = "book_info_required"
	codeRealNameRequired      = "real_name_required"
	codePasswordRequired      = "password_required"
	codeTicketNotFound        = "ticket_not_found"
	codeBookNotFound          = "book_not_found"
	codeUserNotFound          = "user_not_found"
	codeTicketConflict        = "ticket_conflict"
	codeInsufficientInventory = "insufficient_inventory"
	codeInsufficientShelf     = "insufficient_shelf_stock"
	codeInvalidCredentials    = "invalid_credentials"
	codeTokenInvalid          = "token_invalid"
	codeForbidden             = "forbidden"
	codeUnavailable           = "temporarily_unavailable"
	codeInternalError         = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// respondError maps a service error onto an HTTP status and stable error
// code. Unknown errors are reported as opaque 500s; transient database
// conditions become 503 so callers know a retry may succeed.
func respondError(w http.ResponseWriter, err error) {
	status, code := classifyError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeError(w, status, code, msg)
}

func classifyError(err error) (int, string) {
	switch domain.CategoryOf(err) {
	case domain.CategoryValidation:
		return http.StatusBadRequest, validationCode(err)
	case domain.CategoryNotFound:
		return http.StatusNotFound, notFoundCode(err)
	case domain.CategoryConflict:
		return http.StatusConflict, conflictCode(err)
	case domain.CategoryUnauthorized:
		return http.StatusUnauthorized, unauthorizedCode(err)
	case domain.CategoryForbidden:
		return http.StatusForbidden, codeForbidden
	case domain.CategoryTransient:
		return http.StatusServiceUnavailable, codeUnavailable
	default:
		return http.StatusInternalServerError, codeInternalError
	}
}

func validationCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCount):
		return codeInvalidCount
	case errors.Is(err, domain.ErrInvalidPrice):
		return codeInvalidPrice
	case errors.Is(err, domain.ErrBookInfoRequired):
		return codeBookInfoRequired
	case errors.Is(err, domain.ErrRealNameRequired):
		return codeRealNameRequired
	case errors.Is(err, domain.ErrPasswordRequired):
		return codePasswordRequired
	case errors.Is(err, domain.ErrInvalidID):
		return codeInvalidID
	default:
		return codeInvalidRequestBody
	}
}

func notFoundCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrTicketNotFound):
		return codeTicketNotFound
	case errors.Is(err, domain.ErrBookNotFound):
		return codeBookNotFound
	case errors.Is(err, domain.ErrUserNotFound):
		return codeUserNotFound
	default:
		return codeNotFound
	}
}

func conflictCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientInventory):
		return codeInsufficientInventory
	case errors.Is(err, domain.ErrInsufficientShelfStock):
		return codeInsufficientShelf
	default:
		return codeTicketConflict
	}
}

func unauthorizedCode(err error) string {
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return codeInvalidCredentials
	}
	return codeTokenInvalid
}
