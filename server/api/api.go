// Package api implements the message coordinator: it validates inbound
// message envelopes, decodes attachments, persists the message and
// produces the frame to broadcast. It never broadcasts anything itself;
// routing frames to room groups belongs to the connection layer.
package api

import (
	"log/slog"

	"golang.org/x/sync/semaphore"

	"github.com/whisperchat/whisperd/server/db"
	"github.com/whisperchat/whisperd/server/media"
)

// DefaultMaxInflight bounds how many message submissions may hold a
// database or media-store handle at once across all connections.
const DefaultMaxInflight = 32

type Api struct {
	db     *db.DB
	media  media.Store
	logger *slog.Logger

	// gate bounds concurrent persistence and media work so a burst on
	// one connection cannot starve the pumps of every other connection.
	gate *semaphore.Weighted
}

func NewApi(db *db.DB, mediaStore media.Store, logger *slog.Logger) *Api {
	return &Api{
		db:     db,
		media:  mediaStore,
		logger: logger,
		gate:   semaphore.NewWeighted(DefaultMaxInflight),
	}
}
