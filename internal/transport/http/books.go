package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cimillas/bookstore-backoffice/internal/domain"
)

// BookCatalog is the minimal interface needed by the book endpoints.
type BookCatalog interface {
	ListBooks(ctx context.Context, filter domain.BookFilter, page, pageSize int) ([]domain.Book, error)
	GetBook(ctx context.Context, isbn string) (domain.Book, error)
	UpdateBook(ctx context.Context, isbn string, info domain.BookInfo) (domain.Book, error)
	PutOnShelf(ctx context.Context, isbn string, count int) (domain.Book, error)
}

// HandleBooks serves GET /books with optional filter query parameters.
func HandleBooks(svc BookCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		q := r.URL.Query()
		filter := domain.BookFilter{
			ISBN:      q.Get("isbn"),
			Title:     q.Get("title"),
			Author:    q.Get("author"),
			Publisher: q.Get("publisher"),
		}
		page, pageSize := parsePagination(r)

		books, err := svc.ListBooks(r.Context(), filter, page, pageSize)
		if err != nil {
			respondError(w, err)
			return
		}
		resp := make([]bookResponse, 0, len(books))
		for _, b := range books {
			resp = append(resp, newBookResponse(b))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleBookByISBN serves GET and PUT on /books/{isbn}, and
// POST /books/{isbn}/shelf for moving stock between warehouse and shelf.
func HandleBookByISBN(svc BookCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isbn, shelf, ok := parseBookPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		if shelf {
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			handlePutOnShelf(w, r, svc, isbn)
			return
		}

		switch r.Method {
		case http.MethodGet:
			book, err := svc.GetBook(r.Context(), isbn)
			if err != nil {
				respondError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, newBookResponse(book))
		case http.MethodPut:
			var req bookInfoRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			book, err := svc.UpdateBook(r.Context(), isbn, domain.BookInfo{
				Title:     req.Title,
				Author:    req.Author,
				Publisher: req.Publisher,
				Price:     req.Price,
			})
			if err != nil {
				respondError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, newBookResponse(book))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func handlePutOnShelf(w http.ResponseWriter, r *http.Request, svc BookCatalog, isbn string) {
	var req putOnShelfRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	book, err := svc.PutOnShelf(r.Context(), isbn, req.Count)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newBookResponse(book))
}

func parseBookPath(path string) (isbn string, shelf bool, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(parts) == 2 && parts[0] == "books" && parts[1] != "":
		return parts[1], false, true
	case len(parts) == 3 && parts[0] == "books" && parts[1] != "" && parts[2] == "shelf":
		return parts[1], true, true
	default:
		return "", false, false
	}
}

type putOnShelfRequest struct {
	Count int `json:"count"`
}

type bookResponse struct {
	ISBN           string  `json:"isbn"`
	Title          string  `json:"title"`
	Author         string  `json:"author"`
	Publisher      string  `json:"publisher"`
	Price          float64 `json:"price"`
	InventoryCount int     `json:"inventory_count"`
	OnShelfCount   int     `json:"on_shelf_count"`
}

func newBookResponse(b domain.Book) bookResponse {
	return bookResponse{
		ISBN:           b.ISBN,
		Title:          b.Title,
		Author:         b.Author,
		Publisher:      b.Publisher,
		Price:          b.Price,
		InventoryCount: b.InventoryCount,
		OnShelfCount:   b.OnShelfCount,
	}
}
