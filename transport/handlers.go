package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/MayankMankar1/ShadowSignal/game"
)

var errUnknownAction = errors.New("unknown action")

// ClientMessage is the inbound action envelope. Which fields matter depends
// on the action.
type ClientMessage struct {
	Action string         `json:"action"`
	Name   string         `json:"name,omitempty"`
	Code   string         `json:"code,omitempty"`
	Mode   game.Mode      `json:"mode,omitempty"`
	Target string         `json:"target,omitempty"`
	Signal *SignalPayload `json:"signal,omitempty"`
}

// Handler owns the HTTP surface: the health check and the single websocket
// endpoint every game action flows through.
type Handler struct {
	svc      *game.Service
	hub      *Hub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewHandler(svc *game.Service, hub *Hub, allowedOrigins []string, log zerolog.Logger) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		svc: svc,
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Non-browser clients send no Origin.
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
		log: log,
	}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", func(ctx *gin.Context) { ctx.String(http.StatusOK, "healthy") })
	r.GET("/ws", h.serveWS)
}

func (h *Handler) serveWS(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Str("ip", ctx.ClientIP()).Msg("websocket upgrade failed")
		return
	}

	client := newClient(uuid.NewString(), conn, h.log)
	h.hub.add(client)
	h.log.Info().Str("client", client.ID).Str("ip", ctx.ClientIP()).Msg("client connected")

	go client.writePump()
	go client.readPump(h.handleMessage, h.handleClose)
}

// handleClose turns a dropped socket into an implicit leave.
func (h *Handler) handleClose(c *Client) {
	h.hub.remove(c.ID)
	h.svc.LeaveRoom(c.ID)
	h.log.Info().Str("client", c.ID).Msg("client disconnected")
}

func (h *Handler) handleMessage(c *Client, data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.sendError(c, "malformed message")
		return
	}

	var err error
	switch msg.Action {
	case "create":
		_, err = h.svc.CreateRoom(c.ID, msg.Name)
	case "join":
		_, err = h.svc.JoinRoom(msg.Code, c.ID, msg.Name)
	case "fetch":
		var view game.RoomView
		if view, err = h.svc.FetchRoom(msg.Code, c.ID); err == nil {
			h.hub.Send(c.ID, game.Envelope{Type: game.MsgRoomState, Data: view})
		}
	case "start":
		err = h.svc.StartGame(msg.Code, c.ID, msg.Mode)
	case "skip":
		err = h.svc.SkipTurn(msg.Code, c.ID)
	case "vote":
		err = h.svc.CastVote(msg.Code, c.ID, msg.Target)
	case "reset":
		err = h.svc.ResetGame(msg.Code, c.ID)
	case "leave":
		h.svc.LeaveRoom(c.ID)
	case "signal":
		err = h.relaySignal(c, msg.Signal)
	default:
		err = errUnknownAction
	}

	if err != nil {
		// Rejections go to the originating caller only; nothing was mutated.
		h.sendError(c, err.Error())
	}
}

func (h *Handler) sendError(c *Client, reason string) {
	h.hub.Send(c.ID, game.Envelope{Type: "error", Data: map[string]string{"message": reason}})
}
