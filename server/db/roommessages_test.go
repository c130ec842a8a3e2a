package db_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/whisperchat/whisperd/server/db"
	"github.com/whisperchat/whisperd/server/models"
	"github.com/whisperchat/whisperd/server/testutil"
)

// insertMessageAt inserts a text message with an explicit timestamp so
// ordering assertions don't depend on the wall clock.
func insertMessageAt(t *testing.T, database *db.DB, id, roomID, userID, body string, at time.Time) {
	t.Helper()
	msg := &models.Message{
		ID:          id,
		RoomID:      sql.NullString{String: roomID, Valid: true},
		UserID:      sql.NullString{String: userID, Valid: true},
		Body:        sql.NullString{String: body, Valid: true},
		MessageType: "text",
		CreatedAt:   at.Format(time.RFC3339Nano),
	}
	if err := msg.Insert(context.Background(), database); err != nil {
		t.Fatalf("inserting message: %v", err)
	}
}

func TestRoomMessages_PaginationNewestFirst(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	testutil.CreateTestUser(t, database, "usr_1", "alice", "Alice", "Anderson")
	testutil.CreateTestRoom(t, database, "r1", "general")

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		insertMessageAt(t, database, fmt.Sprintf("msg_%d", i), "r1", "usr_1",
			fmt.Sprintf("message %d", i), base.Add(time.Duration(i)*time.Second))
	}

	page, err := db.RoomMessages(ctx, database, "r1", 2, 0)
	if err != nil {
		t.Fatalf("RoomMessages failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(page))
	}
	if page[0].Body.String != "message 4" || page[1].Body.String != "message 3" {
		t.Errorf("expected newest first, got %q then %q", page[0].Body.String, page[1].Body.String)
	}
	if page[0].UserName.String != "Alice Anderson" {
		t.Errorf("expected denormalized sender name, got %q", page[0].UserName.String)
	}

	page, err = db.RoomMessages(ctx, database, "r1", 2, 4)
	if err != nil {
		t.Fatalf("RoomMessages failed: %v", err)
	}
	if len(page) != 1 || page[0].Body.String != "message 0" {
		t.Errorf("expected the oldest message on the last page, got %v", page)
	}

	count, err := db.CountRoomMessages(ctx, database, "r1")
	if err != nil {
		t.Fatalf("CountRoomMessages failed: %v", err)
	}
	if count != 5 {
		t.Errorf("expected count 5, got %d", count)
	}
}

func TestRoomMessages_DeletedSenderLeavesWeakReference(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	testutil.CreateTestUser(t, database, "usr_1", "alice", "Alice", "Anderson")
	testutil.CreateTestRoom(t, database, "r1", "general")
	testutil.CreateTestMessage(t, database, "msg_1", "r1", "usr_1", "still here")

	// membership rows reference users, so clear them before the user
	if _, err := database.ExecContext(ctx, "DELETE FROM rooms_members WHERE user_id = 'usr_1'"); err != nil {
		t.Fatalf("deleting memberships: %v", err)
	}
	if _, err := database.ExecContext(ctx, "DELETE FROM users WHERE id = 'usr_1'"); err != nil {
		t.Fatalf("deleting user: %v", err)
	}

	page, err := db.RoomMessages(ctx, database, "r1", 10, 0)
	if err != nil {
		t.Fatalf("RoomMessages failed: %v", err)
	}
	if len(page) != 1 {
		t.Fatalf("expected the message to survive its sender, got %d rows", len(page))
	}
	if page[0].UserID.Valid {
		t.Errorf("expected NULL user reference, got %q", page[0].UserID.String)
	}
	if page[0].Body.String != "still here" {
		t.Errorf("message body lost: %q", page[0].Body.String)
	}
}
