// Package protocol defines the WebSocket wire types exchanged between
// client and server. This is the source of truth for the API contract.
package protocol

import "encoding/json"

// Actions a client may put in an inbound envelope.
const (
	ActionMessage = "message"
	ActionTyping  = "typing"
)

// ActionOnlineUser tags the presence frame broadcast on the reserved
// presence group.
const ActionOnlineUser = "onlineUser"

// PresenceGroup is the reserved broadcast group that every connection
// joins; presence frames are published there and nowhere else.
const PresenceGroup = "onlineUser"

// Message types a message envelope may carry.
const (
	TypeText     = "text"
	TypeImage    = "image"
	TypeDocument = "document"
	TypeContact  = "contact"
)

// Envelope is the inbound frame. Typing frames are rebroadcast from the
// raw bytes rather than from this struct, so nothing a client sends is
// lost in transit.
type Envelope struct {
	Action      string          `json:"action"`
	RoomID      string          `json:"roomId"`
	Message     string          `json:"message"`
	User        string          `json:"user"`
	MessageType string          `json:"message_type"`
	MediaFile   string          `json:"media_file"`
	ContactInfo json.RawMessage `json:"contact_info,omitempty"`
}

// MessageBroadcast is the enriched message frame fanned out to every
// connection joined to the target room, the sender included.
type MessageBroadcast struct {
	Action        string  `json:"action"`
	User          string  `json:"user"`
	RoomID        string  `json:"roomId"`
	Message       string  `json:"message"`
	MessageType   string  `json:"message_type"`
	MediaFile     *string `json:"media_file"`
	MediaFileName *string `json:"media_file_name"`
	UserImage     *string `json:"userImage"`
	UserName      string  `json:"userName"`
	Timestamp     string  `json:"timestamp"`
}

// ErrorBroadcast is published to the room group when message submission
// fails. It goes to the whole group, not just the sender.
type ErrorBroadcast struct {
	Error string `json:"error"`
}

// PresenceBroadcast lists every currently-online user. It is published
// to the reserved presence group on each connect and disconnect.
type PresenceBroadcast struct {
	Action   string   `json:"action"`
	UserList []string `json:"userList"`
}
