package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/izgubljeno/internal/model"
)

const userColumns = `id, student_id, username, email, password_hash, full_name, phone, created_at`

// NewUser holds the fields needed to register a user.
type NewUser struct {
	StudentID    string
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Phone        string
}

// CreateUser inserts a user. A duplicate student id, username or email
// yields ErrConflict.
func CreateUser(ctx context.Context, db *sql.DB, u NewUser) (*model.User, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (student_id, username, email, password_hash, full_name, phone)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.StudentID, u.Username, u.Email, u.PasswordHash, u.FullName, nullString(u.Phone),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID, or nil if there is none.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByIdentifier returns the user whose student id, username or email
// equals identifier, or nil if there is none.
func GetUserByIdentifier(ctx context.Context, db *sql.DB, identifier string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE student_id = ? OR username = ? OR email = ?
		 ORDER BY id LIMIT 1`,
		identifier, identifier, identifier,
	))
	if err != nil {
		return nil, fmt.Errorf("getting user by identifier: %w", err)
	}
	return u, nil
}

// UserExists reports whether any user already holds the student id,
// username or email.
func UserExists(ctx context.Context, db *sql.DB, studentID, username, email string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE student_id = ? OR username = ? OR email = ?`,
		studentID, username, email,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking existing user: %w", err)
	}
	return count > 0, nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	var phone sql.NullString
	err := row.Scan(&u.ID, &u.StudentID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &phone, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Phone = phone.String
	return u, nil
}

// nullString maps the empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
