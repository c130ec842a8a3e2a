package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/whisperchat/whisperd/server/api"
	"github.com/whisperchat/whisperd/server/db"
	"github.com/whisperchat/whisperd/server/models"
	"github.com/whisperchat/whisperd/server/presence"
	"github.com/whisperchat/whisperd/server/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Inline-encoded media
	// rides inside message frames, so this has to fit a base64 blob.
	maxMessageSize = 8 << 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Client owns one connection's lifecycle: it joins the broadcast groups
// for the user's room memberships plus the presence group, tracks the
// attached identity, and pumps frames in both directions.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan []byte

	logger *slog.Logger

	// The user the connection authenticated as. nil when the claimed id
	// resolved to no known user; such a connection still completes its
	// handshake and still receives presence frames, but it is never
	// registered as online and belongs to no room group.
	user *models.User

	api      *api.Api
	presence presence.Registry
}

func must(e error) {
	if e != nil {
		panic(e)
	}
}

// readPump pumps messages from the websocket connection to the hub.
//
// The application runs readPump in a per-connection goroutine. The
// application ensures that there is at most one reader on a connection
// by executing all reads from this goroutine.
func (c *Client) readPump() {
	defer func() {
		c.disconnect()
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	must(c.conn.SetReadDeadline(time.Now().Add(pongWait)))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("", "err", err)
			}
			break
		}

		t := time.Now()

		var env protocol.Envelope
		if err = json.Unmarshal(message, &env); err != nil {
			// a malformed frame is dropped; the connection stays open
			c.logger.Error("invalid json", "message", string(message))
			continue
		}

		switch env.Action {
		case protocol.ActionMessage:
			// Whatever the coordinator produces, enriched message or
			// structured error, goes to the room group unmodified.
			frame, err := c.api.SubmitMessage(context.Background(), &env)
			if err != nil {
				c.logger.Error("failed to submit message", "error", err)
				continue
			}
			c.hub.Publish(env.RoomID, frame)
		case protocol.ActionTyping:
			// typing indicators pass through byte for byte
			c.hub.Publish(env.RoomID, message)
		default:
			c.hub.Publish(env.RoomID, []byte("{}"))
		}

		c.logger.Debug("handled ws", "message", string(message), "duration", time.Since(t))
	}
}

// disconnect deregisters presence for the attached user, republishes
// the presence snapshot, and leaves every joined group. The snapshot is
// taken after the registry mutation so it never reflects stale state.
func (c *Client) disconnect() {
	if c.user != nil {
		ctx := context.Background()
		if err := c.presence.Remove(ctx, c.user.ID); err != nil {
			c.logger.Error("failed to deregister presence", "error", err, "user", c.user.ID)
		}
		c.publishPresence()
	}
	c.hub.Detach(c)
}

// publishPresence publishes the current presence snapshot to the
// reserved presence group.
func (c *Client) publishPresence() {
	online, err := c.presence.Online(context.Background())
	if err != nil {
		c.logger.Error("failed to list online users", "error", err)
		return
	}
	frame, err := json.Marshal(&protocol.PresenceBroadcast{
		Action:   protocol.ActionOnlineUser,
		UserList: online,
	})
	if err != nil {
		c.logger.Error("failed to marshal presence frame", "error", err)
		return
	}
	c.hub.Publish(protocol.PresenceGroup, frame)
}

// writePump pumps messages from the hub to the websocket connection.
//
// A goroutine running writePump is started for each connection. The
// application ensures that there is at most one writer to a connection
// by executing all writes from this goroutine.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			must(c.conn.SetWriteDeadline(time.Now().Add(writeWait)))
			if !ok {
				// The hub closed the channel.
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("unable to send close message", "err", err)
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			must(c.conn.SetWriteDeadline(time.Now().Add(writeWait)))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// serveWs handles websocket requests from the peer. The claimed user id
// arrives as a path parameter; an id that resolves to no known user is
// a soft failure, not a rejection.
func serveWs(hub *Hub, apiHandler *api.Api, registry presence.Registry, database *db.DB, w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	ctx := r.Context()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Error("unable to upgrade connection", "err", err)
		return
	}

	client := &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		logger:   hub.logger,
		api:      apiHandler,
		presence: registry,
	}

	// Membership resolution tolerates an unknown user: it simply yields
	// no rooms, leaving the connection inert for messaging.
	rooms, err := db.ListMemberships(ctx, database, userID)
	if err != nil {
		hub.logger.Error("unable to resolve memberships", "err", err, "user", userID)
	}
	for _, room := range rooms {
		hub.Join(room.ID, client)
	}
	hub.Join(protocol.PresenceGroup, client)

	user, err := models.UserByID(ctx, database, userID)
	if err != nil {
		hub.logger.Warn("connection from unresolved user id", "user", userID)
	} else {
		client.user = user
		if err := registry.Add(ctx, user.ID); err != nil {
			hub.logger.Error("failed to register presence", "error", err, "user", user.ID)
		}
	}

	// The snapshot is published after the registry mutation, and after
	// this connection joined the presence group, so the new connection
	// sees itself in the first frame it receives.
	client.publishPresence()

	// Allow collection of memory referenced by the caller by doing all
	// work in new goroutines.
	go client.writePump()
	go client.readPump()
}
