package model

// Item represents a found-item report.
//
// ID is the single canonical identifier. Legacy producers use several
// aliases on the wire (itemId, itemID, uuid); those are normalized to ID
// at the API client boundary and never re-derived downstream.
type Item struct {
	ID          string   `json:"id"`
	ItemName    string   `json:"itemName"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone,omitempty"`
	Images      []string `json:"images"`

	// Timestamp is the creation time in epoch milliseconds. It is assigned
	// by the server at creation and never mutated afterwards.
	Timestamp int64 `json:"timestamp"`

	Returned     bool   `json:"returned,omitempty"`
	ReturnedDate int64  `json:"returnedDate,omitempty"`
	ReturnedBy   string `json:"returnedBy,omitempty"`
	AdminNotes   string `json:"adminNotes,omitempty"`
	Deleted      bool   `json:"deleted,omitempty"`
}

// Active reports whether the item belongs in the browsable view.
// Returned and soft-deleted items are excluded.
func (it Item) Active() bool {
	return !it.Deleted && !it.Returned
}

// Pending reports whether the item is a local optimistic insert that has
// not yet been echoed back by the server (no authoritative ID assigned).
func (it Item) Pending() bool {
	return it.ID == ""
}

// Image limits for a report.
const (
	MinImages = 1
	MaxImages = 4
)
