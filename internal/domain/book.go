package domain

// Book is keyed by ISBN. InventoryCount is warehouse stock, OnShelfCount is
// stock displayed for sale; both stay non-negative through every operation.
type Book struct {
	ISBN           string
	Title          string
	Author         string
	Publisher      string
	Price          float64
	InventoryCount int
	OnShelfCount   int
}

// BookInfo carries the descriptive fields supplied when a restock ticket
// references an ISBN the store has never seen.
type BookInfo struct {
	Title     string
	Author    string
	Publisher string
	Price     float64
}

// BookFilter narrows a book listing; empty fields match everything.
type BookFilter struct {
	ISBN      string
	Title     string
	Author    string
	Publisher string
}
