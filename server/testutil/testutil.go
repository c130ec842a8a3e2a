// Package testutil provides shared test helper functions for database
// setup and fixture creation.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/whisperchat/whisperd/server/db"
	"github.com/whisperchat/whisperd/server/models"
)

// TestSchema is the database schema for tests - kept in sync with schema.sql
const TestSchema = `
CREATE TABLE IF NOT EXISTS users(
	id TEXT PRIMARY KEY NOT NULL,
	username TEXT NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	image TEXT,
	created_at TEXT NOT NULL
) STRICT;

CREATE UNIQUE INDEX IF NOT EXISTS users_username ON users(username);

CREATE TABLE IF NOT EXISTS rooms(
	id TEXT PRIMARY KEY NOT NULL,
	room_type TEXT NOT NULL DEFAULT 'group',
	name TEXT,
	created_at TEXT NOT NULL
) STRICT;

CREATE TABLE IF NOT EXISTS rooms_members(
	user_id TEXT REFERENCES users(id) NOT NULL,
	room_id TEXT REFERENCES rooms(id) NOT NULL,
	PRIMARY KEY (user_id, room_id)
) STRICT;

CREATE TABLE IF NOT EXISTS messages(
	id TEXT PRIMARY KEY NOT NULL,
	room_id TEXT REFERENCES rooms(id) ON DELETE SET NULL,
	user_id TEXT REFERENCES users(id) ON DELETE SET NULL,
	body TEXT,
	message_type TEXT NOT NULL DEFAULT 'text',
	media_file TEXT,
	contact_info TEXT,
	created_at TEXT NOT NULL
) STRICT;

CREATE INDEX IF NOT EXISTS messages_room_created ON messages(room_id, created_at DESC);
`

// NewTestDB creates a uniquely-named in-memory database with the schema
// loaded. Each test gets its own database; the shared cache keeps it
// alive across the read and write pools.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dbPath := fmt.Sprintf("file:test_%s?mode=memory&cache=shared", uuid.New().String())
	database, err := db.NewDB(dbPath, logger)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if _, err := database.ExecContext(context.Background(), TestSchema); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return database
}

// CreateTestUser creates a user in the database for testing
func CreateTestUser(t *testing.T, database *db.DB, id, username, firstName, lastName string) *models.User {
	t.Helper()
	user := &models.User{
		ID:        id,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	if err := user.Insert(context.Background(), database); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// CreateTestRoom creates a group room in the database for testing
func CreateTestRoom(t *testing.T, database *db.DB, id, name string) *models.Room {
	t.Helper()
	room := &models.Room{
		ID:        id,
		RoomType:  models.RoomTypeGroup,
		Name:      sql.NullString{String: name, Valid: name != ""},
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	if err := room.Insert(context.Background(), database); err != nil {
		t.Fatalf("Failed to create test room: %v", err)
	}
	return room
}

// AddUserToRoom adds a user to a room
func AddUserToRoom(t *testing.T, database *db.DB, userID, roomID string) {
	t.Helper()
	membership := &models.RoomsMember{
		UserID: userID,
		RoomID: roomID,
	}
	if err := membership.Insert(context.Background(), database); err != nil {
		t.Fatalf("Failed to add user to room: %v", err)
	}
}

// CreateTestMessage creates a text message in the database for testing
func CreateTestMessage(t *testing.T, database *db.DB, id, roomID, userID, body string) *models.Message {
	t.Helper()
	msg := &models.Message{
		ID:          id,
		RoomID:      sql.NullString{String: roomID, Valid: true},
		UserID:      sql.NullString{String: userID, Valid: true},
		Body:        sql.NullString{String: body, Valid: true},
		MessageType: "text",
		CreatedAt:   time.Now().Format(time.RFC3339Nano),
	}
	if err := msg.Insert(context.Background(), database); err != nil {
		t.Fatalf("Failed to create test message: %v", err)
	}
	return msg
}
