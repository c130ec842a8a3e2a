package db

import (
	"context"

	"github.com/whisperchat/whisperd/server/models"
)

// RoomMembers returns the users belonging to a room.
func RoomMembers(ctx context.Context, db *DB, roomID string) ([]*models.User, error) {
	const sqlstr = `SELECT ` +
		`u.id, u.username, u.first_name, u.last_name, u.image, u.created_at ` +
		`FROM users u ` +
		`JOIN rooms_members rm ON u.id = rm.user_id ` +
		`WHERE rm.room_id = $1 ` +
		`ORDER BY u.username ASC`

	rows, err := db.QueryContext(ctx, sqlstr, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Image, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}
