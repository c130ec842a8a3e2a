package server

import (
	"context"
	"database/sql"
	"time"

	"github.com/whisperchat/whisperd/server/models"
)

type seedUser struct {
	id        string
	username  string
	firstName string
	lastName  string
}

var devUsers = []seedUser{
	{id: "usr_alice", username: "alice", firstName: "Alice", lastName: "Anderson"},
	{id: "usr_bob", username: "bob", firstName: "Bob", lastName: "Burton"},
}

// seed inserts a couple of development users sharing one room. It is
// idempotent enough for repeated runs against a fresh database; with an
// already-seeded database the unique username index makes it fail fast.
func (s *ChatServer) seed(ctx context.Context) error {
	now := time.Now().Format(time.RFC3339)

	room := &models.Room{
		ID:        "dev-room",
		RoomType:  models.RoomTypeGroup,
		Name:      sql.NullString{String: "general", Valid: true},
		CreatedAt: now,
	}
	if err := room.Insert(ctx, s.db); err != nil {
		return err
	}

	for _, u := range devUsers {
		user := &models.User{
			ID:        u.id,
			Username:  u.username,
			FirstName: u.firstName,
			LastName:  u.lastName,
			CreatedAt: now,
		}
		if err := user.Insert(ctx, s.db); err != nil {
			return err
		}

		membership := &models.RoomsMember{UserID: user.ID, RoomID: room.ID}
		if err := membership.Insert(ctx, s.db); err != nil {
			return err
		}
	}

	s.logger.Info("seeded development data", "room", room.ID, "users", len(devUsers))
	return nil
}
