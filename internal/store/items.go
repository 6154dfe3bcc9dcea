package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/izgubljeno/internal/model"
)

const itemColumns = `i.id, i.user_id, i.title, i.description, i.category, i.location, i.date_lost_found,
        i.item_type, i.status, i.contact_email, i.contact_phone, i.image_url, i.emoji,
        i.created_at, i.updated_at`

// NewItem holds the fields of a new report.
type NewItem struct {
	Title         string
	Description   string
	Category      string
	Location      string
	DateLostFound string
	ItemType      string
	ContactEmail  string
	ContactPhone  string
	ImageURL      string
	Emoji         string
}

// ItemUpdate holds the mutable item fields. Nil fields keep their value.
type ItemUpdate struct {
	Title         *string
	Description   *string
	Category      *string
	Location      *string
	DateLostFound *string
	ContactEmail  *string
	ContactPhone  *string
	ImageURL      *string
	Emoji         *string
}

type scanner interface {
	Scan(dest ...any) error
}

// CreateItem creates an active item owned by userID.
func CreateItem(ctx context.Context, db *sql.DB, userID int64, in NewItem) (*model.Item, error) {
	emoji := in.Emoji
	switch {
	case in.ImageURL != "":
		emoji = ""
	case emoji == "":
		emoji = model.DefaultEmoji
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (user_id, title, description, category, location, date_lost_found,
		                    item_type, status, contact_email, contact_phone, image_url, emoji)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, in.Title, nullString(in.Description), in.Category, in.Location, in.DateLostFound,
		in.ItemType, model.ItemStatusActive, nullString(in.ContactEmail), nullString(in.ContactPhone),
		nullString(in.ImageURL), nullString(emoji),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item with its poster's contact details, or nil if
// there is none.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	var studentID, name, email, phone sql.NullString
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+`, u.student_id, u.full_name, u.email, u.phone
		 FROM items i
		 LEFT JOIN users u ON u.id = i.user_id
		 WHERE i.id = ?`, id,
	), &studentID, &name, &email, &phone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	item.PosterStudentID = studentID.String
	item.PosterName = name.String
	item.PosterEmail = email.String
	item.PosterPhone = phone.String
	return item, nil
}

// ListItems returns the page of items selected by f.
func ListItems(ctx context.Context, db *sql.DB, f ItemFilter) ([]model.Item, error) {
	query, args := f.Query()
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var studentID, name sql.NullString
		var comments int
		item, err := scanItem(rows, &studentID, &name, &comments)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		item.PosterStudentID = studentID.String
		item.PosterName = name.String
		item.CommentCount = &comments
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem applies u to an item owned by userID.
func UpdateItem(ctx context.Context, db *sql.DB, id, userID int64, u ItemUpdate) (*model.Item, error) {
	err := execOwned(ctx, db, id,
		`UPDATE items SET
		     title = COALESCE(?, title),
		     description = COALESCE(?, description),
		     category = COALESCE(?, category),
		     location = COALESCE(?, location),
		     date_lost_found = COALESCE(?, date_lost_found),
		     contact_email = COALESCE(?, contact_email),
		     contact_phone = COALESCE(?, contact_phone),
		     image_url = COALESCE(?, image_url),
		     emoji = COALESCE(?, emoji),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		u.Title, u.Description, u.Category, u.Location, u.DateLostFound,
		u.ContactEmail, u.ContactPhone, u.ImageURL, u.Emoji, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}
	return GetItem(ctx, db, id)
}

// SetItemStatus sets the status of any item.
func SetItemStatus(ctx context.Context, db *sql.DB, id int64, status string) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return nil, fmt.Errorf("setting item status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("setting item status: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return GetItem(ctx, db, id)
}

// SetOwnedItemStatus sets the status of an item owned by userID.
func SetOwnedItemStatus(ctx context.Context, db *sql.DB, id, userID int64, status string) (*model.Item, error) {
	err := execOwned(ctx, db, id,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`,
		status, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("setting item status: %w", err)
	}
	return GetItem(ctx, db, id)
}

// DeleteItem hard-deletes an item owned by userID. Its comments are kept.
func DeleteItem(ctx context.Context, db *sql.DB, id, userID int64) error {
	err := execOwned(ctx, db, id, `DELETE FROM items WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// ItemExists reports whether an item with the given ID exists.
func ItemExists(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking item: %w", err)
	}
	return count > 0, nil
}

// execOwned runs a statement whose WHERE clause restricts it to the item's
// owner. When nothing matched it reports ErrNotFound or ErrNotOwner.
func execOwned(ctx context.Context, db *sql.DB, id int64, query string, args ...any) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	exists, err := ItemExists(ctx, db, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrNotOwner
}

func scanItem(s scanner, extra ...any) (*model.Item, error) {
	item := &model.Item{}
	var userID sql.NullInt64
	var description, contactEmail, contactPhone, imageURL, emoji sql.NullString

	dest := append([]any{
		&item.ID, &userID, &item.Title, &description, &item.Category, &item.Location, &item.DateLostFound,
		&item.ItemType, &item.Status, &contactEmail, &contactPhone, &imageURL, &emoji,
		&item.CreatedAt, &item.UpdatedAt,
	}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	if userID.Valid {
		item.UserID = &userID.Int64
	}
	item.Description = description.String
	item.ContactEmail = contactEmail.String
	item.ContactPhone = contactPhone.String
	item.ImageURL = imageURL.String
	item.Emoji = emoji.String
	return item, nil
}
