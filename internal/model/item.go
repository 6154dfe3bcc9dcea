package model

import "time"

// Item is a lost or found report posted by a user.
type Item struct {
	ID            int64     `json:"id"`
	UserID        *int64    `json:"user_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Location      string    `json:"location"`
	DateLostFound string    `json:"date_lost_found"`
	ItemType      string    `json:"item_type"`
	Status        string    `json:"status"`
	ContactEmail  string    `json:"contact_email"`
	ContactPhone  string    `json:"contact_phone"`
	ImageURL      string    `json:"image_url"`
	Emoji         string    `json:"emoji"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	PosterStudentID string `json:"poster_student_id,omitempty"`
	PosterName      string `json:"poster_name,omitempty"`
	PosterEmail     string `json:"poster_email,omitempty"`
	PosterPhone     string `json:"poster_phone,omitempty"`
	CommentCount    *int   `json:"comment_count,omitempty"`

	// Set when the caller is known.
	IsOwner bool `json:"is_owner"`
}

// OwnedBy reports whether userID posted the item.
func (i *Item) OwnedBy(userID int64) bool {
	return i.UserID != nil && *i.UserID == userID
}

// Item types.
const (
	ItemTypeLost  = "lost"
	ItemTypeFound = "found"
)

// Item statuses. Archived is accepted by the schema but never set.
const (
	ItemStatusActive   = "active"
	ItemStatusClaimed  = "claimed"
	ItemStatusArchived = "archived"
)

// DefaultEmoji is the icon shown for items posted without an image.
const DefaultEmoji = "📦"

// ValidItemType reports whether t is lost or found.
func ValidItemType(t string) bool {
	return t == ItemTypeLost || t == ItemTypeFound
}
