package http_server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"chatroomgo/internal/presence"
	"chatroomgo/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestEngine_RoutesRestAndWebsocket(t *testing.T) {
	req := require.New(t)
	gin.SetMode(gin.TestMode)

	hub := ws.NewHub()
	coord := presence.NewCoordinator(hub, presence.Options{})
	srv := NewHttpServer(context.Background(), 3500, ws.NewWsServer(hub, coord, ws.Options{}), coord)
	engine := srv.Engine()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rooms", nil))
	req.Equal(http.StatusOK, w.Code)
	req.JSONEq(`{"rooms":[]}`, w.Body.String())

	// A plain GET on /ws is not an upgrade request
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	req.Equal(http.StatusBadRequest, w.Code)
	req.Zero(coord.ConnectionCount())
}
