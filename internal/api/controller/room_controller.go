package controller

import (
	"context"
	"ctchen222/tictactoe-rooms/internal/api/response"
	"ctchen222/tictactoe-rooms/internal/room"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RoomLister returns the current room roster.
type RoomLister interface {
	Rooms(ctx context.Context) ([]room.Summary, error)
}

// RoomController serves the lobby over HTTP.
type RoomController struct {
	rooms RoomLister
}

// NewRoomController creates a new RoomController.
func NewRoomController(rooms RoomLister) *RoomController {
	return &RoomController{rooms: rooms}
}

// List handles GET /rooms.
func (rc *RoomController) List(c *gin.Context) {
	rooms, ok := rc.load(c)
	if !ok {
		return
	}
	response.SuccessResponse(c, gin.H{"rooms": rooms})
}

// Get handles GET /rooms/:id.
func (rc *RoomController) Get(c *gin.Context) {
	rooms, ok := rc.load(c)
	if !ok {
		return
	}

	id := c.Param("id")
	for _, summary := range rooms {
		if summary.ID == id {
			response.SuccessResponse(c, summary)
			return
		}
	}
	response.ErrorResponse(c, http.StatusNotFound, "room not found")
}

// Health handles GET /healthz. It fails once the hub has stopped.
func (rc *RoomController) Health(c *gin.Context) {
	if _, ok := rc.load(c); !ok {
		return
	}
	response.SuccessResponseContent(c, "ok")
}

func (rc *RoomController) load(c *gin.Context) ([]room.Summary, bool) {
	rooms, err := rc.rooms.Rooms(c.Request.Context())
	if err != nil {
		status := http.StatusServiceUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		slog.WarnContext(c.Request.Context(), "Could not read room roster", "error", err)
		response.ErrorResponse(c, status, err.Error())
		return nil, false
	}
	return rooms, true
}
