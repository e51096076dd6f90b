package client

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// wireItem tolerates the identifier aliases and loose numeric encodings
// legacy producers emit. It exists only at this boundary; everything past
// DecodeItems works with the canonical model.Item.
type wireItem struct {
	ID      string `json:"id"`
	ItemID  string `json:"itemId"`
	ItemIDU string `json:"itemID"`
	UUID    string `json:"uuid"`

	ItemName    string   `json:"itemName"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Images      []string `json:"images"`

	Timestamp    json.Number `json:"timestamp"`
	Returned     bool        `json:"returned"`
	ReturnedDate json.Number `json:"returnedDate"`
	ReturnedBy   string      `json:"returnedBy"`
	AdminNotes   string      `json:"adminNotes"`
	Deleted      bool        `json:"deleted"`
}

// canonical normalizes the wire record: the first non-empty identifier
// alias becomes the single ID, never re-derived downstream.
func (w wireItem) canonical() model.Item {
	id := w.ID
	for _, alias := range []string{w.ItemID, w.ItemIDU, w.UUID} {
		if id != "" {
			break
		}
		id = alias
	}

	return model.Item{
		ID:           id,
		ItemName:     w.ItemName,
		Description:  w.Description,
		Location:     w.Location,
		Email:        w.Email,
		Phone:        w.Phone,
		Images:       w.Images,
		Timestamp:    numberToMillis(w.Timestamp),
		Returned:     w.Returned,
		ReturnedDate: numberToMillis(w.ReturnedDate),
		ReturnedBy:   w.ReturnedBy,
		AdminNotes:   w.AdminNotes,
		Deleted:      w.Deleted,
	}
}

func numberToMillis(n json.Number) int64 {
	if n == "" {
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return int64(f)
	}
	return 0
}

// DecodeItems parses an item-list response body. Accepted shapes, in
// order: a bare JSON array, an object with an "items" array, and an object
// whose "body" field is a JSON string wrapping either of the former
// (API-gateway style). Anything else is rejected with ErrBadShape rather
// than silently treated as an empty collection.
func DecodeItems(data []byte) ([]model.Item, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrBadShape)
	}

	if trimmed[0] == '[' {
		var ws []wireItem
		if err := json.Unmarshal(trimmed, &ws); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadShape, err)
		}
		return canonicalize(ws), nil
	}

	var env struct {
		Items []wireItem      `json:"items"`
		Body  json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadShape, err)
	}
	if env.Items != nil {
		return canonicalize(env.Items), nil
	}
	if len(env.Body) > 0 {
		// "body" carries a JSON document encoded as a string.
		var inner string
		if err := json.Unmarshal(env.Body, &inner); err != nil {
			return nil, fmt.Errorf("%w: body is not a string", ErrBadShape)
		}
		return DecodeItems([]byte(inner))
	}

	return nil, fmt.Errorf("%w: no item list found", ErrBadShape)
}

// DecodeItem parses a single-item response body.
func DecodeItem(data []byte) (model.Item, error) {
	var w wireItem
	if err := json.Unmarshal(bytes.TrimSpace(data), &w); err != nil {
		return model.Item{}, fmt.Errorf("%w: %v", ErrBadShape, err)
	}
	return w.canonical(), nil
}

func canonicalize(ws []wireItem) []model.Item {
	items := make([]model.Item, len(ws))
	for i, w := range ws {
		items[i] = w.canonical()
	}
	return items
}
