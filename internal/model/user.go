package model

import "time"

// User represents a registered student account.
type User struct {
	ID           int64     `json:"id"`
	StudentID    string    `json:"student_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicUser is the projection of a user returned by the auth endpoints.
type PublicUser struct {
	ID        int64      `json:"id"`
	StudentID string     `json:"studentId"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FullName  string     `json:"fullName"`
	Phone     *string    `json:"phone"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Public returns the user without credentials.
func (u *User) Public() PublicUser {
	p := PublicUser{
		ID:        u.ID,
		StudentID: u.StudentID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
	}
	if u.Phone != "" {
		phone := u.Phone
		p.Phone = &phone
	}
	return p
}
