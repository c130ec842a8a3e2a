// Package rest provides the request/response endpoints that sit beside
// the WebSocket gateway: room listing and creation, and paginated
// message history.
package rest

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/whisperchat/whisperd/server/db"
	"github.com/whisperchat/whisperd/server/models"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// API provides REST API handlers
type API struct {
	db     *db.DB
	logger *slog.Logger
}

// NewAPI creates a new REST API handler
func NewAPI(db *db.DB, logger *slog.Logger) *API {
	return &API{
		db:     db,
		logger: logger,
	}
}

// MemberResponse represents a room member
type MemberResponse struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	UserName  string  `json:"userName"`
	UserImage *string `json:"userImage"`
}

// RoomResponse represents a room in API responses
type RoomResponse struct {
	RoomID  string           `json:"roomId"`
	Type    string           `json:"type"`
	Name    *string          `json:"name"`
	Members []MemberResponse `json:"member"`
}

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	Type    string   `json:"type"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// MessageResponse represents one history entry
type MessageResponse struct {
	ID          string          `json:"id"`
	RoomID      *string         `json:"roomId"`
	User        *string         `json:"user"`
	Message     *string         `json:"message"`
	MessageType string          `json:"message_type"`
	MediaFile   *string         `json:"media_file"`
	ContactInfo json.RawMessage `json:"contact_info"`
	Timestamp   string          `json:"timestamp"`
	UserName    *string         `json:"userName"`
	UserImage   *string         `json:"userImage"`
}

// MessagePageResponse is the paginated history envelope
type MessagePageResponse struct {
	Count   int               `json:"count"`
	Results []MessageResponse `json:"results"`
}

// ErrorResponse is returned when an error occurs
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (a *API) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.logger.Error("failed to encode JSON response", "error", err)
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, errType, message string) {
	a.writeJSON(w, status, ErrorResponse{
		Error:   errType,
		Message: message,
	})
}

// GetUserRooms returns every room the user belongs to, members included
// GET /api/v1/users/{userId}/rooms
func (a *API) GetUserRooms(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	ctx := r.Context()

	rooms, err := db.ListMemberships(ctx, a.db, userID)
	if err != nil {
		a.logger.Error("failed to list memberships", "error", err, "user", userID)
		a.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list rooms")
		return
	}

	response := make([]RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		members, err := db.RoomMembers(ctx, a.db, room.ID)
		if err != nil {
			a.logger.Error("failed to list room members", "error", err, "room", room.ID)
			a.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list rooms")
			return
		}
		response = append(response, roomResponse(room, members))
	}

	a.writeJSON(w, http.StatusOK, response)
}

// CreateRoom creates a room with the given member list
// POST /api/v1/rooms
func (a *API) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if len(req.Members) == 0 {
		a.writeError(w, http.StatusBadRequest, "validation_error", "At least one member is required")
		return
	}

	roomType := req.Type
	switch roomType {
	case "":
		roomType = models.RoomTypeGroup
	case models.RoomTypeDirect, models.RoomTypeGroup, models.RoomTypeSelf:
	default:
		a.writeError(w, http.StatusBadRequest, "validation_error", "Unknown room type")
		return
	}

	ctx := r.Context()

	// Resolve every member id before the room row is written, so a bad
	// id cannot leave an orphaned, member-less room behind.
	for _, memberID := range req.Members {
		if _, err := models.UserByID(ctx, a.db, memberID); err != nil {
			a.writeError(w, http.StatusBadRequest, "validation_error", "Unknown member id")
			return
		}
	}

	room := &models.Room{
		ID:        models.GenerateRoomID(),
		RoomType:  roomType,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	if req.Name != "" {
		room.Name = sql.NullString{String: req.Name, Valid: true}
	}

	if err := room.Insert(ctx, a.db); err != nil {
		a.logger.Error("failed to create room", "error", err)
		a.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to create room")
		return
	}

	for _, memberID := range req.Members {
		membership := &models.RoomsMember{
			RoomID: room.ID,
			UserID: memberID,
		}
		if err := membership.Insert(ctx, a.db); err != nil {
			a.logger.Error("failed to add room member", "error", err, "room", room.ID, "user", memberID)
			a.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to create room")
			return
		}
	}

	members, err := db.RoomMembers(ctx, a.db, room.ID)
	if err != nil {
		a.logger.Error("failed to list room members", "error", err, "room", room.ID)
		a.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to create room")
		return
	}

	a.writeJSON(w, http.StatusCreated, roomResponse(room, members))
}

// GetRoomMessages returns a page of a room's history, newest first
// GET /api/v1/rooms/{roomId}/messages?limit=&offset=
func (a *API) GetRoomMessages(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomId")
	ctx := r.Context()

	if _, err := models.RoomByID(ctx, a.db, roomID); err != nil {
		a.writeError(w, http.StatusNotFound, "not_found", "Room not found")
		return
	}

	limit := intQueryParam(r, "limit", defaultPageSize)
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := intQueryParam(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	messages, err := db.RoomMessages(ctx, a.db, roomID, limit, offset)
	if err != nil {
		a.logger.Error("failed to list room messages", "error", err, "room", roomID)
		a.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list messages")
		return
	}

	count, err := db.CountRoomMessages(ctx, a.db, roomID)
	if err != nil {
		a.logger.Error("failed to count room messages", "error", err, "room", roomID)
		a.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list messages")
		return
	}

	results := make([]MessageResponse, len(messages))
	for i, m := range messages {
		results[i] = MessageResponse{
			ID:          m.ID,
			RoomID:      nullable(m.RoomID),
			User:        nullable(m.UserID),
			Message:     nullable(m.Body),
			MessageType: m.MessageType,
			MediaFile:   nullable(m.MediaFile),
			Timestamp:   m.CreatedAt,
			UserName:    nullable(m.UserName),
			UserImage:   nullable(m.UserImage),
		}
		if m.ContactInfo.Valid {
			results[i].ContactInfo = json.RawMessage(m.ContactInfo.String)
		}
	}

	a.writeJSON(w, http.StatusOK, MessagePageResponse{
		Count:   count,
		Results: results,
	})
}

func roomResponse(room *models.Room, members []*models.User) RoomResponse {
	memberResponses := make([]MemberResponse, len(members))
	for i, m := range members {
		memberResponses[i] = MemberResponse{
			ID:        m.ID,
			Username:  m.Username,
			UserName:  m.DisplayName(),
			UserImage: nullable(m.Image),
		}
	}
	return RoomResponse{
		RoomID:  room.ID,
		Type:    room.RoomType,
		Name:    nullable(room.Name),
		Members: memberResponses,
	}
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func intQueryParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
