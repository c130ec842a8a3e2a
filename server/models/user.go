package models

import (
	"context"
	"database/sql"
	"fmt"
)

// User is a registered account. Accounts are created elsewhere; the
// gateway only ever reads them.
type User struct {
	ID        string
	Username  string
	FirstName string
	LastName  string
	Image     sql.NullString
	CreatedAt string
}

// DisplayName is the name shown beside a user's messages.
func (u *User) DisplayName() string {
	return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
}

func (u *User) Insert(ctx context.Context, db DBTX) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (id, username, first_name, last_name, image, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.ID, u.Username, u.FirstName, u.LastName, u.Image, u.CreatedAt)
	return err
}

func UserByID(ctx context.Context, db DBTX, id string) (*User, error) {
	var user User
	err := db.QueryRowContext(ctx, `
		SELECT id, username, first_name, last_name, image, created_at
		FROM users
		WHERE id = ?
	`, id).Scan(&user.ID, &user.Username, &user.FirstName, &user.LastName, &user.Image, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("user not found: %s", id)
	}

	return &user, nil
}
