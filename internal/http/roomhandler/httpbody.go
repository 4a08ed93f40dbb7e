package roomhandler

import "chatroomgo/internal/presence"

type RoomsResponse struct {
	Rooms []string `json:"rooms" example:"lobby"`
} // @name RoomsResponse

type MembersResponse struct {
	Room    string                 `json:"room"    example:"lobby"`
	Members []presence.Participant `json:"members"`
} // @name MembersResponse

type HealthResponse struct {
	Status      string `json:"status"      example:"ok"`
	Connections int    `json:"connections" example:"3"`
} // @name HealthResponse

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse
