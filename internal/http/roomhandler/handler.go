package roomhandler

import (
	"net/http"
	"slices"
	"strings"

	"chatroomgo/internal/presence"

	"github.com/gin-gonic/gin"
)

// PresenceReader is the read side of the coordinator exposed over REST.
type PresenceReader interface {
	Rooms() []string
	Members(room string) []presence.Participant
	ConnectionCount() int
}

type Handler struct {
	presence PresenceReader
}

func New(p PresenceReader) *Handler { return &Handler{presence: p} }

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/healthz", h.health)
	r.GET("/rooms", h.rooms)
	r.GET("/rooms/:room/members", h.members)
}

// @Summary		List active rooms
// @Description	Returns every room with at least one member, sorted by name.
// @Tags			Rooms
// @Success		200	{object}	RoomsResponse
// @Router			/rooms [get]
func (h *Handler) rooms(c *gin.Context) {
	rooms := h.presence.Rooms()
	slices.Sort(rooms)
	c.JSON(http.StatusOK, RoomsResponse{Rooms: rooms})
}

// @Summary		List room members
// @Description	Returns the participants currently in a room. Unknown rooms are empty.
// @Tags			Rooms
// @Param			room	path		string	true	"Room name"	default(lobby)
// @Success		200		{object}	MembersResponse
// @Failure		400		{object}	ErrorResponse
// @Router			/rooms/{room}/members [get]
func (h *Handler) members(c *gin.Context) {
	room := strings.TrimSpace(c.Param("room"))
	if room == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "room is required"})
		return
	}
	members := h.presence.Members(room)
	slices.SortFunc(members, func(a, b presence.Participant) int {
		if n := strings.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return strings.Compare(a.ID, b.ID)
	})
	c.JSON(http.StatusOK, MembersResponse{Room: room, Members: members})
}

// @Summary		Health check
// @Tags			Health
// @Success		200	{object}	HealthResponse
// @Router			/healthz [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Connections: h.presence.ConnectionCount()})
}
