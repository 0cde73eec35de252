// Package models holds the typed document shapes stored in the catalog.
// Documents cross the store boundary as raw field maps; these types pin the
// field names down so a typo is a compile error instead of a silent miss.
package models

// Book lifecycle statuses. A book has at most one active request at a time;
// RequestID points at it and is cleared when the request ends.
const (
	BookAvailable  = "available"
	BookRequested  = "requested"
	BookReserved   = "reserved"
	BookCheckedOut = "checked_out"
)

// Request lifecycle statuses. Completed, rejected and cancelled are terminal.
const (
	RequestPending   = "pending"
	RequestApproved  = "approved"
	RequestRejected  = "rejected"
	RequestCompleted = "completed"
	RequestCancelled = "cancelled"
)

// Book is a document in the books collection.
type Book struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	CoverURL    string `json:"coverUrl,omitempty"`
	Condition   string `json:"condition,omitempty"`
	Status      string `json:"status"`
	RequestID   string `json:"requestId,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Request is a document in the requests collection, linking a requester to
// a donor's book.
type Request struct {
	ID          string `json:"id"`
	BookID      string `json:"bookId"`
	RequesterID string `json:"requesterId"`
	DonorID     string `json:"donorId"`
	Message     string `json:"message,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}
