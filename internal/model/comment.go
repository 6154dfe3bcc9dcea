package model

import "time"

// Comment is a message left on an item.
type Comment struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	UserID    int64     `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`

	// Author fields joined from users.
	StudentID  string `json:"student_id"`
	AuthorName string `json:"author_name"`
	Username   string `json:"username"`
}
