package server

import (
	"log/slog"
)

// GroupMessage wraps a frame with its target group for routing
type GroupMessage struct {
	Group   string
	Message []byte
}

type subscription struct {
	group  string
	client *Client
}

// Hub is the room broadcast bus. It owns the named subscriber groups
// (one per room, plus the reserved presence group) and fans published
// frames out to every connection joined to the target group, the
// originator included. All group state is owned by the run goroutine;
// the channels are the only way in.
type Hub struct {
	// groups maps a group id to its subscribed clients.
	groups map[string]map[*Client]bool

	// memberships indexes the groups each client has joined, so a
	// detaching client can be removed from all of them.
	memberships map[*Client]map[string]bool

	join    chan subscription
	leave   chan subscription
	detach  chan *Client
	publish chan GroupMessage

	logger *slog.Logger
}

func newHub(logger *slog.Logger) *Hub {
	return &Hub{
		groups:      make(map[string]map[*Client]bool),
		memberships: make(map[*Client]map[string]bool),
		join:        make(chan subscription),
		leave:       make(chan subscription),
		detach:      make(chan *Client),
		publish:     make(chan GroupMessage),
		logger:      logger,
	}
}

// Join subscribes the client to a group, creating the group if needed.
func (h *Hub) Join(group string, c *Client) {
	h.join <- subscription{group: group, client: c}
}

// Leave removes the client from one group.
func (h *Hub) Leave(group string, c *Client) {
	h.leave <- subscription{group: group, client: c}
}

// Detach removes the client from every group it has joined and closes
// its send channel. Detaching a client twice is a no-op.
func (h *Hub) Detach(c *Client) {
	h.detach <- c
}

// Publish delivers the frame to every connection joined to the group.
// Publishing to a group with no subscribers is a no-op, not an error.
func (h *Hub) Publish(group string, message []byte) {
	h.publish <- GroupMessage{Group: group, Message: message}
}

func (h *Hub) run() {
	for {
		select {
		case sub := <-h.join:
			clients, ok := h.groups[sub.group]
			if !ok {
				clients = make(map[*Client]bool)
				h.groups[sub.group] = clients
			}
			clients[sub.client] = true

			groups, ok := h.memberships[sub.client]
			if !ok {
				groups = make(map[string]bool)
				h.memberships[sub.client] = groups
			}
			groups[sub.group] = true
		case sub := <-h.leave:
			h.removeFromGroup(sub.group, sub.client)
			if groups, ok := h.memberships[sub.client]; ok {
				delete(groups, sub.group)
			}
		case client := <-h.detach:
			h.drop(client)
		case groupMsg := <-h.publish:
			for client := range h.groups[groupMsg.Group] {
				select {
				case client.send <- groupMsg.Message:
				default:
					// A subscriber that can't keep up is dropped rather
					// than allowed to stall delivery to the others.
					h.logger.Warn("dropping slow subscriber", "group", groupMsg.Group)
					h.drop(client)
				}
			}
		}
	}
}

// drop removes the client from every group and closes its send channel.
// Must only be called from the run goroutine.
func (h *Hub) drop(client *Client) {
	groups, ok := h.memberships[client]
	if !ok {
		return
	}
	for group := range groups {
		h.removeFromGroup(group, client)
	}
	delete(h.memberships, client)
	close(client.send)
}

func (h *Hub) removeFromGroup(group string, client *Client) {
	clients, ok := h.groups[group]
	if !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.groups, group)
	}
}
