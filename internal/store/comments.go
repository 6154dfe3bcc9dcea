package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/izgubljeno/internal/model"
)

const commentSelect = `SELECT c.id, c.item_id, c.user_id, c.text, c.created_at,
        u.student_id, u.full_name, u.username
 FROM comments c
 LEFT JOIN users u ON u.id = c.user_id`

// CreateComment adds a comment by userID to an existing item. It returns
// ErrNotFound if the item does not exist.
func CreateComment(ctx context.Context, db *sql.DB, itemID, userID int64, text string) (*model.Comment, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO comments (item_id, user_id, text)
		 SELECT ?, ?, ? WHERE EXISTS (SELECT 1 FROM items WHERE id = ?)`,
		itemID, userID, text, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting comment id: %w", err)
	}

	return GetComment(ctx, db, id)
}

// GetComment returns a comment with its author, or nil if there is none.
func GetComment(ctx context.Context, db *sql.DB, id int64) (*model.Comment, error) {
	c, err := scanComment(db.QueryRowContext(ctx, commentSelect+` WHERE c.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting comment: %w", err)
	}
	return c, nil
}

// ListComments returns the comments on an item, oldest first. An unknown
// item simply has no comments.
func ListComments(ctx context.Context, db *sql.DB, itemID int64) ([]model.Comment, error) {
	rows, err := db.QueryContext(ctx,
		commentSelect+` WHERE c.item_id = ? ORDER BY c.created_at ASC, c.id ASC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

// DeleteComment removes a comment written by userID.
func DeleteComment(ctx context.Context, db *sql.DB, id, userID int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM comments WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	if n > 0 {
		return nil
	}

	c, err := GetComment(ctx, db, id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}
	return ErrNotOwner
}

func scanComment(s scanner) (*model.Comment, error) {
	c := &model.Comment{}
	var studentID, name, username sql.NullString
	if err := s.Scan(&c.ID, &c.ItemID, &c.UserID, &c.Text, &c.CreatedAt, &studentID, &name, &username); err != nil {
		return nil, err
	}
	c.StudentID = studentID.String
	c.AuthorName = name.String
	c.Username = username.String
	return c, nil
}
