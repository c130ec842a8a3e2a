package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/whisperchat/whisperd/server/media"
	"github.com/whisperchat/whisperd/server/models"
	"github.com/whisperchat/whisperd/server/protocol"
)

// SubmitMessage validates and persists one inbound message envelope and
// returns the frame to publish to the envelope's room group. Domain
// failures (unknown user, unknown room, undecodable attachment) come
// back as an error frame with a nil error; the returned error is
// non-nil only for internal faults, and then no frame is returned.
//
// Exactly one message row is written per successful call and none on
// any failure path.
func (a *Api) SubmitMessage(ctx context.Context, env *protocol.Envelope) ([]byte, error) {
	if err := a.gate.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer a.gate.Release(1)

	user, err := models.UserByID(ctx, a.db, env.User)
	if err != nil {
		return errorFrame("User does not exist")
	}

	room, err := models.RoomByID(ctx, a.db, env.RoomID)
	if err != nil {
		return errorFrame("ChatRoom does not exist")
	}

	messageType := env.MessageType
	if messageType == "" {
		messageType = protocol.TypeText
	}

	var mediaURL, fileName *string
	if env.MediaFile != "" {
		blob, name, err := media.Decode(env.MediaFile)
		if err != nil {
			var decodeErr *media.DecodeError
			if errors.As(err, &decodeErr) {
				return errorFrame(fmt.Sprintf("Error processing media file: %s", decodeErr.Reason))
			}
			return nil, err
		}

		url, err := a.media.Store(blob, name)
		if err != nil {
			a.logger.Error("unable to store media blob", "error", err)
			return errorFrame(fmt.Sprintf("Error processing media file: %v", err))
		}
		mediaURL = &url
		fileName = &name
	}

	msg := models.Message{
		ID:          models.GenerateMessageID(),
		RoomID:      sql.NullString{String: room.ID, Valid: true},
		UserID:      sql.NullString{String: user.ID, Valid: true},
		MessageType: messageType,
		CreatedAt:   time.Now().Format(time.RFC3339Nano),
	}
	if messageType == protocol.TypeText {
		msg.Body = sql.NullString{String: env.Message, Valid: true}
	}
	if mediaURL != nil {
		msg.MediaFile = sql.NullString{String: *mediaURL, Valid: true}
	}
	if messageType == protocol.TypeContact && len(env.ContactInfo) > 0 {
		msg.ContactInfo = sql.NullString{String: string(env.ContactInfo), Valid: true}
	}

	if err := msg.Insert(ctx, a.db); err != nil {
		a.logger.Error("unable to insert message", "error", err)
		return nil, err
	}

	var userImage *string
	if user.Image.Valid {
		userImage = &user.Image.String
	}

	broadcast := protocol.MessageBroadcast{
		Action:        protocol.ActionMessage,
		User:          user.ID,
		RoomID:        room.ID,
		Message:       env.Message,
		MessageType:   messageType,
		MediaFile:     mediaURL,
		MediaFileName: fileName,
		UserImage:     userImage,
		UserName:      user.DisplayName(),
		Timestamp:     msg.CreatedAt,
	}

	return json.Marshal(&broadcast)
}
