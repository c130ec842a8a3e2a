package models

import (
	"context"
	"database/sql"
	"fmt"
)

// Room types. A self room is a user's notes-to-self channel.
const (
	RoomTypeDirect = "direct"
	RoomTypeGroup  = "group"
	RoomTypeSelf   = "self"
)

type Room struct {
	ID        string
	RoomType  string
	Name      sql.NullString
	CreatedAt string
}

func (r *Room) Insert(ctx context.Context, db DBTX) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO rooms (id, room_type, name, created_at)
		VALUES (?, ?, ?, ?)
	`, r.ID, r.RoomType, r.Name, r.CreatedAt)
	return err
}

func RoomByID(ctx context.Context, db DBTX, id string) (*Room, error) {
	var room Room
	err := db.QueryRowContext(ctx, `
		SELECT id, room_type, name, created_at
		FROM rooms
		WHERE id = ?
	`, id).Scan(&room.ID, &room.RoomType, &room.Name, &room.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("room not found: %s", id)
	}

	return &room, nil
}

// RoomsMember records one user's membership in one room. Membership is
// authoritative for which broadcast groups a connection may join.
type RoomsMember struct {
	UserID string
	RoomID string
}

func (m *RoomsMember) Insert(ctx context.Context, db DBTX) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO rooms_members (user_id, room_id)
		VALUES (?, ?)
	`, m.UserID, m.RoomID)
	return err
}
