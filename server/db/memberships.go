package db

import (
	"context"

	"github.com/whisperchat/whisperd/server/models"
)

// ListMemberships returns every room the user is a member of.
func ListMemberships(ctx context.Context, db *DB, userID string) ([]*models.Room, error) {
	const sqlstr = `SELECT ` +
		`r.id, r.room_type, r.name, r.created_at ` +
		`FROM rooms r ` +
		`JOIN rooms_members rm ON r.id = rm.room_id ` +
		`WHERE rm.user_id = $1 ` +
		`ORDER BY r.created_at ASC`

	rows, err := db.QueryContext(ctx, sqlstr, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		r := &models.Room{}
		if err := rows.Scan(&r.ID, &r.RoomType, &r.Name, &r.CreatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rooms, nil
}

// IsRoomMember checks if a user is a member of a specific room.
func IsRoomMember(ctx context.Context, db *DB, userID, roomID string) (bool, error) {
	const sqlstr = `SELECT EXISTS(` +
		`SELECT 1 FROM rooms_members ` +
		`WHERE user_id = $1 AND room_id = $2` +
		`) AS is_member`
	var isMember bool
	if err := db.QueryRowContext(ctx, sqlstr, userID, roomID).Scan(&isMember); err != nil {
		return false, err
	}
	return isMember, nil
}
