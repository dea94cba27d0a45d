package gateway

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"canvasroom/internal/application/client"
	"canvasroom/internal/application/hub"
	"canvasroom/internal/application/room"
)

// Gateway is the session coordinator: it maps transport messages to
// registry/ledger/history mutations and decides what to broadcast to
// whom. Each client's messages arrive one at a time (read pump), but
// different clients run concurrently; all cross-key sequences are
// serialized inside the room package.
type Gateway struct {
	hub      *hub.Hub
	registry *room.Registry
	ledger   *room.Ledger
	history  *room.History
	log      *zap.Logger
	ctx      context.Context
}

func New(ctx context.Context, h *hub.Hub, reg *room.Registry, led *room.Ledger, hist *room.History, log *zap.Logger) *Gateway {
	return &Gateway{
		hub:      h,
		registry: reg,
		ledger:   led,
		history:  hist,
		log:      log,
		ctx:      ctx,
	}
}

// Dispatch routes one inbound frame to its handler. Unknown or
// malformed frames earn the sender an error event, nothing more.
func (g *Gateway) Dispatch(c *client.Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		g.sendError(c, "invalid message frame")
		return
	}

	switch env.Type {
	case MsgCreateRoom:
		g.handleCreateRoom(c, env.Data)
	case MsgJoinRoom:
		g.handleJoinRoom(c, env.Data)
	case MsgDraw:
		g.handleDraw(c, env.Data)
	case MsgStartStroke:
		g.handleStartStroke(c, env.Data)
	case MsgEndStroke:
		g.handleEndStroke(c, env.Data)
	case MsgDrawShape:
		g.handleDrawShape(c, env.Data)
	case MsgAddText:
		g.handleAddText(c, env.Data)
	case MsgUpdateText:
		g.handleUpdateText(c, env.Data)
	case MsgDeleteText:
		g.handleDeleteText(c, env.Data)
	case MsgUndo:
		g.handleUndo(c)
	case MsgRedo:
		g.handleRedo(c)
	case MsgClearCanvas:
		g.handleClearCanvas(c)
	case MsgSaveCanvas:
		g.handleSaveCanvas(c, env.Data)
	case MsgCursorMove:
		g.handleCursorMove(c, env.Data)
	case MsgSendMessage:
		g.handleSendMessage(c, env.Data)
	case MsgLoadChatHistory:
		g.handleLoadChatHistory(c, env.Data)
	case MsgGetActiveRooms:
		g.handleGetActiveRooms(c)
	default:
		g.sendError(c, "unknown message type: "+env.Type)
	}
}

// HandleDisconnect tears down the session's membership and broadcasts
// the departure. The empty room is deleted by the registry.
func (g *Gateway) HandleDisconnect(c *client.Client) {
	s, ok := g.hub.SessionOf(c.ID)
	if !ok {
		return
	}
	g.hub.Unbind(c.ID)

	count, deleted, err := g.registry.Leave(g.ctx, s.RoomID, s.UserID)
	if err != nil {
		g.log.Error("leave on disconnect failed",
			zap.String("room", s.RoomID),
			zap.String("user", s.UserID),
			zap.Error(err))
		return
	}
	if deleted {
		return
	}
	g.hub.BroadcastRoom(s.RoomID, event(EvtUserLeft, PresenceEvent{
		Username:  s.Username,
		UserID:    s.UserID,
		UserCount: count,
	}), "")
}

// session resolves the caller's room binding, reporting the failure
// to the client itself.
func (g *Gateway) session(c *client.Client) (hub.Session, bool) {
	s, ok := g.hub.SessionOf(c.ID)
	if !ok {
		g.sendError(c, "session not associated with a room")
	}
	return s, ok
}

func (g *Gateway) sendError(c *client.Client, message string) {
	g.hub.Send(c, event(EvtError, ErrorEvent{Message: message}))
}

// fail maps an internal error to the client-facing message and logs
// the rest. The mutation is treated as not applied: no broadcast
// follows a failure.
func (g *Gateway) fail(c *client.Client, op string, err error) {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		g.sendError(c, "Room not found")
	case errors.Is(err, room.ErrRoomFull):
		g.sendError(c, "Room is full")
	default:
		g.log.Error(op+" failed", zap.String("client", c.ID), zap.Error(err))
		g.sendError(c, "temporary storage failure, please retry")
	}
}
