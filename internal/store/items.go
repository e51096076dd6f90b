package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/najdeno/internal/model"
)

// CreateItem inserts a new report with a server-assigned ID and timestamp.
func CreateItem(ctx context.Context, db *sql.DB, item model.Item) (*model.Item, error) {
	id := uuid.NewString()
	ts := time.Now().UnixMilli()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO items (id, item_name, description, location, email, phone, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, item.ItemName, item.Description, item.Location, item.Email, item.Phone, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	for i, url := range item.Images {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO item_images (item_id, position, url) VALUES (?, ?, ?)`,
			id, i, url,
		)
		if err != nil {
			return nil, fmt.Errorf("storing item image: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, including soft-deleted ones.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT id, item_name, description, location, email, phone, timestamp,
		        returned, returned_date, returned_by, admin_notes, deleted
		 FROM items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}

	if err := attachImages(ctx, db, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems returns items newest first. With activeOnly set, returned and
// soft-deleted items are excluded (the authoritative browsable view);
// otherwise soft-deleted items are still excluded but returned ones kept.
func ListItems(ctx context.Context, db *sql.DB, activeOnly bool) ([]model.Item, error) {
	query := `SELECT id, item_name, description, location, email, phone, timestamp,
	                 returned, returned_date, returned_by, admin_notes, deleted
	          FROM items WHERE deleted = 0`
	if activeOnly {
		query += ` AND returned = 0`
	}
	query += ` ORDER BY timestamp DESC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		if err := attachImages(ctx, db, &items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// MarkReturned sets the returned lifecycle fields on an item.
func MarkReturned(ctx context.Context, db *sql.DB, id, notes, by string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET returned = 1, returned_date = ?, returned_by = ?, admin_notes = ?
		 WHERE id = ? AND deleted = 0`,
		time.Now().UnixMilli(), by, notes, id,
	)
	if err != nil {
		return fmt.Errorf("marking item returned: %w", err)
	}
	return nil
}

// SoftDeleteItem marks an item deleted so it disappears from all views.
func SoftDeleteItem(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET deleted = 1 WHERE id = ? AND deleted = 0`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// HardDeleteItem permanently removes an item and its image rows.
func HardDeleteItem(ctx context.Context, db *sql.DB, id string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM item_images WHERE item_id = ?`, id); err != nil {
		return fmt.Errorf("purging item images: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("purging item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing purge: %w", err)
	}
	return nil
}

// CountItems returns collection totals for the admin dashboard.
func CountItems(ctx context.Context, db *sql.DB) (total, active, returned, today int, err error) {
	midnight := time.Now().Truncate(24 * time.Hour).UnixMilli()
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(returned = 0), 0),
		        COALESCE(SUM(returned = 1), 0),
		        COALESCE(SUM(returned = 0 AND timestamp >= ?), 0)
		 FROM items WHERE deleted = 0`, midnight,
	).Scan(&total, &active, &returned, &today)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("counting items: %w", err)
	}
	return total, active, returned, today, nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*model.Item, error) {
	item := &model.Item{}
	var description, phone, returnedBy, adminNotes sql.NullString
	var returnedDate sql.NullInt64
	err := s.Scan(
		&item.ID, &item.ItemName, &description, &item.Location, &item.Email, &phone,
		&item.Timestamp, &item.Returned, &returnedDate, &returnedBy, &adminNotes, &item.Deleted,
	)
	if err != nil {
		return nil, err
	}
	item.Description = description.String
	item.Phone = phone.String
	item.ReturnedDate = returnedDate.Int64
	item.ReturnedBy = returnedBy.String
	item.AdminNotes = adminNotes.String
	return item, nil
}

func attachImages(ctx context.Context, db *sql.DB, item *model.Item) error {
	rows, err := db.QueryContext(ctx,
		`SELECT url FROM item_images WHERE item_id = ? ORDER BY position`, item.ID,
	)
	if err != nil {
		return fmt.Errorf("getting item images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return fmt.Errorf("scanning item image: %w", err)
		}
		item.Images = append(item.Images, url)
	}
	return rows.Err()
}
