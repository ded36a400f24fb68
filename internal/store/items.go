package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/dbx"
	"github.com/erazemk/najdeno/internal/model"
)

// CreateItem creates a new item owned by the given user. New items start out
// available.
func CreateItem(ctx context.Context, q dbx.DBTX, name, description, location string, createdBy int64) (*model.Item, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO items (name, description, location, created_by) VALUES (?, ?, ?, ?)`,
		name, description, location, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, q, id)
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, q dbx.DBTX, id int64) (*model.Item, error) {
	item := &model.Item{}
	var description, location, imageMime sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, name, description, location, image_mime, status, created_by, created_at
		 FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Name, &description, &location, &imageMime, &item.Status, &item.CreatedBy, &item.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	item.Description = description.String
	item.Location = location.String
	item.ImageMime = imageMime.String
	return item, nil
}

// ListItems returns items newest first, optionally filtered by a search
// string (matched against name, description and location) and by status.
func ListItems(ctx context.Context, q dbx.DBTX, search, status string) ([]model.Item, error) {
	query := `SELECT i.id, i.name, i.description, i.location, i.image_mime, i.status,
	                 i.created_by, i.created_at, u.name AS creator_name
	          FROM items i
	          LEFT JOIN users u ON u.id = i.created_by
	          WHERE 1=1`
	var args []any

	if search != "" {
		query += ` AND (i.name LIKE ? OR i.description LIKE ? OR i.location LIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if status != "" {
		query += ` AND i.status = ?`
		args = append(args, status)
	}

	query += ` ORDER BY i.created_at DESC, i.id DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ListItemsByCreator returns the items a user registered, newest first.
func ListItemsByCreator(ctx context.Context, q dbx.DBTX, userID int64) ([]model.Item, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT i.id, i.name, i.description, i.location, i.image_mime, i.status,
		        i.created_by, i.created_at, u.name AS creator_name
		 FROM items i
		 LEFT JOIN users u ON u.id = i.created_by
		 WHERE i.created_by = ?
		 ORDER BY i.created_at DESC, i.id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items by creator: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		var item model.Item
		var description, location, imageMime, creatorName sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &description, &location, &imageMime,
			&item.Status, &item.CreatedBy, &item.CreatedAt, &creatorName); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		item.Description = description.String
		item.Location = location.String
		item.ImageMime = imageMime.String
		item.CreatorName = creatorName.String
		items = append(items, item)
	}
	return items, rows.Err()
}

// SetItemStatus sets an item's status unconditionally.
func SetItemStatus(ctx context.Context, q dbx.DBTX, id int64, status string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE items SET status = ? WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("setting item status: %w", err)
	}
	return nil
}

// MarkItemClaimed flips an item to claimed only if it is still available,
// and reports whether the flip happened. A false return with no error means
// the item was already claimed (or does not exist); callers distinguish the
// two by fetching the item first.
func MarkItemClaimed(ctx context.Context, q dbx.DBTX, id int64) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE items SET status = ? WHERE id = ? AND status = ?`,
		model.ItemStatusClaimed, id, model.ItemStatusAvailable,
	)
	if err != nil {
		return false, fmt.Errorf("marking item claimed: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("marking item claimed: %w", err)
	}
	return n > 0, nil
}

// ReleaseItemsWithoutClaims flips every claimed item with no live claim back
// to available and returns how many items changed. This is the store-wide
// re-derivation the reconciler uses as the consistency backstop.
func ReleaseItemsWithoutClaims(ctx context.Context, q dbx.DBTX) (int64, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE items SET status = ?
		 WHERE status = ? AND id NOT IN (SELECT item_id FROM claims)`,
		model.ItemStatusAvailable, model.ItemStatusClaimed,
	)
	if err != nil {
		return 0, fmt.Errorf("releasing items without claims: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("releasing items without claims: %w", err)
	}
	return n, nil
}

// DeleteItem deletes an item row. It does not cascade; the workflow layer
// removes dependent claims and messages first.
func DeleteItem(ctx context.Context, q dbx.DBTX, id int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// SetItemImage sets an item's image data.
func SetItemImage(ctx context.Context, q dbx.DBTX, id int64, image []byte, mime string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ? WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return nil
}

// GetItemImage returns an item's image data and MIME type.
func GetItemImage(ctx context.Context, q dbx.DBTX, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}
