package models

import (
	"context"
	"database/sql"
)

// Message is a persisted chat message. RoomID and UserID are weak
// references: if the room or sender is deleted the message survives
// with a NULL reference.
type Message struct {
	ID          string
	RoomID      sql.NullString
	UserID      sql.NullString
	Body        sql.NullString
	MessageType string
	MediaFile   sql.NullString
	ContactInfo sql.NullString
	CreatedAt   string
}

func (m *Message) Insert(ctx context.Context, db DBTX) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO messages (id, room_id, user_id, body, message_type, media_file, contact_info, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.RoomID, m.UserID, m.Body, m.MessageType, m.MediaFile, m.ContactInfo, m.CreatedAt)
	return err
}
