package db

import (
	"context"
	"database/sql"
)

// RoomMessage is one row of a room's history, denormalized with the
// sender's display data. Sender fields are nullable because messages
// outlive deleted users.
type RoomMessage struct {
	ID          string
	RoomID      sql.NullString
	UserID      sql.NullString
	Body        sql.NullString
	MessageType string
	MediaFile   sql.NullString
	ContactInfo sql.NullString
	CreatedAt   string
	UserName    sql.NullString
	UserImage   sql.NullString
}

// RoomMessages returns a page of the room's history, newest first.
func RoomMessages(ctx context.Context, db *DB, roomID string, limit, offset int) ([]*RoomMessage, error) {
	const sqlstr = `SELECT ` +
		`m.id, m.room_id, m.user_id, m.body, m.message_type, m.media_file, m.contact_info, m.created_at, ` +
		`u.first_name || ' ' || u.last_name AS user_name, u.image ` +
		`FROM messages m ` +
		`LEFT JOIN users u ON m.user_id = u.id ` +
		`WHERE m.room_id = $1 ` +
		`ORDER BY m.created_at DESC ` +
		`LIMIT $2 OFFSET $3`

	rows, err := db.QueryContext(ctx, sqlstr, roomID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*RoomMessage
	for rows.Next() {
		m := &RoomMessage{}
		if err := rows.Scan(&m.ID, &m.RoomID, &m.UserID, &m.Body, &m.MessageType, &m.MediaFile, &m.ContactInfo, &m.CreatedAt, &m.UserName, &m.UserImage); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

// CountRoomMessages returns the total number of messages in a room,
// used for the pagination envelope.
func CountRoomMessages(ctx context.Context, db *DB, roomID string) (int, error) {
	const sqlstr = `SELECT COUNT(*) FROM messages WHERE room_id = $1`
	var count int
	if err := db.QueryRowContext(ctx, sqlstr, roomID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
