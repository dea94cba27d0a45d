package gateway

import (
	"go.uber.org/zap"

	"canvasroom/internal/application/client"
	"canvasroom/internal/application/hub"
)

func (g *Gateway) handleCreateRoom(c *client.Client, raw []byte) {
	payload, err := decodePayload[CreateRoomPayload](raw)
	if err != nil {
		g.sendError(c, "invalid createRoom payload")
		return
	}

	rm, user, err := g.registry.Create(g.ctx, payload.RoomName, payload.Username)
	if err != nil {
		g.fail(c, "createRoom", err)
		return
	}
	g.hub.Bind(c.ID, hub.Session{
		UserID:   user.ID,
		Username: user.Username,
		RoomID:   rm.RoomID,
	})
	g.hub.Send(c, event(EvtRoomCreated, RoomCreatedEvent{
		RoomID:   rm.RoomID,
		UserID:   user.ID,
		RoomName: rm.Name,
	}))
}

func (g *Gateway) handleJoinRoom(c *client.Client, raw []byte) {
	payload, err := decodePayload[JoinRoomPayload](raw)
	if err != nil {
		g.sendError(c, "invalid joinRoom payload")
		return
	}

	rm, user, count, err := g.registry.Join(g.ctx, payload.RoomID, payload.Username)
	if err != nil {
		g.fail(c, "joinRoom", err)
		return
	}
	g.hub.Bind(c.ID, hub.Session{
		UserID:   user.ID,
		Username: user.Username,
		RoomID:   rm.RoomID,
	})

	// Private full-history replay before any live event is relayed to
	// the joiner.
	state, err := g.ledger.State(g.ctx, rm.RoomID)
	if err != nil {
		g.fail(c, "joinRoom replay", err)
		return
	}
	g.hub.Send(c, event(EvtDrawingHistory, state.Events))
	g.hub.Send(c, event(EvtShapesHistory, state.Shapes))
	g.hub.Send(c, event(EvtTextsHistory, state.Texts))
	g.hub.Send(c, event(EvtChatHistory, state.Chat))
	g.hub.Send(c, event(EvtRoomJoined, RoomJoinedEvent{
		Success:   true,
		RoomID:    rm.RoomID,
		UserID:    user.ID,
		UserCount: count,
	}))

	g.hub.BroadcastRoom(rm.RoomID, event(EvtUserJoined, PresenceEvent{
		Username:  user.Username,
		UserCount: count,
	}), "")
	g.log.Info("user joined room",
		zap.String("room", rm.RoomID),
		zap.String("user", user.ID))
}

func (g *Gateway) handleCursorMove(c *client.Client, raw []byte) {
	s, ok := g.session(c)
	if !ok {
		return
	}
	payload, err := decodePayload[CursorMovePayload](raw)
	if err != nil {
		g.sendError(c, "invalid cursorMove payload")
		return
	}

	// The author's pointer needs no echo back to itself.
	g.hub.BroadcastRoom(s.RoomID, event(EvtCursorUpdate, CursorUpdateEvent{
		UserID:   s.UserID,
		Username: s.Username,
		X:        payload.X,
		Y:        payload.Y,
	}), c.ID)
}

func (g *Gateway) handleSendMessage(c *client.Client, raw []byte) {
	s, ok := g.session(c)
	if !ok {
		return
	}
	payload, err := decodePayload[SendMessagePayload](raw)
	if err != nil {
		g.sendError(c, "invalid sendMessage payload")
		return
	}

	msg, err := g.ledger.AppendChat(g.ctx, s.RoomID, s.UserID, s.Username, payload.Message)
	if err != nil {
		g.fail(c, "sendMessage", err)
		return
	}
	g.hub.BroadcastRoom(s.RoomID, event(EvtReceiveMessage, msg), "")
}

func (g *Gateway) handleLoadChatHistory(c *client.Client, raw []byte) {
	s, ok := g.session(c)
	if !ok {
		return
	}
	payload, err := decodePayload[LoadChatHistoryPayload](raw)
	if err != nil {
		g.sendError(c, "invalid loadChatHistory payload")
		return
	}

	messages, err := g.ledger.ChatHistory(g.ctx, s.RoomID, payload.Limit)
	if err != nil {
		g.fail(c, "loadChatHistory", err)
		return
	}
	g.hub.Send(c, event(EvtChatHistory, messages))
}

func (g *Gateway) handleGetActiveRooms(c *client.Client) {
	rooms, err := g.registry.ActiveRooms(g.ctx)
	if err != nil {
		g.fail(c, "getActiveRooms", err)
		return
	}
	g.hub.Send(c, event(EvtActiveRooms, rooms))
}
