package gateway

import (
	"encoding/json"
	"fmt"

	"canvasroom/internal/application/room"
)

// Envelope is the wire frame: a message name plus its payload. Every
// payload has an explicit type, validated before any mutation runs.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Inbound message names.
const (
	MsgCreateRoom      = "createRoom"
	MsgJoinRoom        = "joinRoom"
	MsgDraw            = "draw"
	MsgStartStroke     = "startStroke"
	MsgEndStroke       = "endStroke"
	MsgDrawShape       = "drawShape"
	MsgAddText         = "addText"
	MsgUpdateText      = "updateText"
	MsgDeleteText      = "deleteText"
	MsgUndo            = "undo"
	MsgRedo            = "redo"
	MsgClearCanvas     = "clearCanvas"
	MsgSaveCanvas      = "saveCanvas"
	MsgCursorMove      = "cursorMove"
	MsgSendMessage     = "sendMessage"
	MsgLoadChatHistory = "loadChatHistory"
	MsgGetActiveRooms  = "getActiveRooms"
)

// Outbound event names.
const (
	EvtWelcome        = "welcome"
	EvtRoomCreated    = "roomCreated"
	EvtRoomJoined     = "roomJoined"
	EvtUserJoined     = "userJoined"
	EvtUserLeft       = "userLeft"
	EvtDrawing        = "drawing"
	EvtDrawingHistory = "drawingHistory"
	EvtShapeDrawn     = "shapeDrawn"
	EvtShapesHistory  = "shapesHistory"
	EvtTextAdded      = "textAdded"
	EvtTextUpdated    = "textUpdated"
	EvtTextDeleted    = "textDeleted"
	EvtTextsHistory   = "textsHistory"
	EvtUndoPerformed  = "undoPerformed"
	EvtRedoPerformed  = "redoPerformed"
	EvtCanvasCleared  = "canvasCleared"
	EvtCursorUpdate   = "cursorUpdate"
	EvtReceiveMessage = "receiveMessage"
	EvtChatHistory    = "chatHistory"
	EvtActiveRooms    = "activeRooms"
	EvtError          = "error"
)

type CreateRoomPayload struct {
	RoomName string `json:"roomName"`
	Username string `json:"username"`
}

type JoinRoomPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type DrawPayload struct {
	RoomID string `json:"roomId"`
	room.DrawEvent
}

type StrokePayload struct {
	RoomID   string `json:"roomId"`
	StrokeID string `json:"strokeId"`
}

type ShapePayload struct {
	RoomID string `json:"roomId"`
	room.Shape
}

type AddTextPayload struct {
	RoomID string `json:"roomId"`
	room.TextElement
}

type UpdateTextPayload struct {
	RoomID string  `json:"roomId"`
	TextID string  `json:"textId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type DeleteTextPayload struct {
	RoomID string `json:"roomId"`
	TextID string `json:"textId"`
}

type RoomPayload struct {
	RoomID string `json:"roomId"`
}

type SaveCanvasPayload struct {
	RoomID     string `json:"roomId"`
	CanvasData string `json:"canvasData"`
}

type CursorMovePayload struct {
	RoomID string  `json:"roomId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type SendMessagePayload struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

type LoadChatHistoryPayload struct {
	RoomID string `json:"roomId"`
	Limit  int64  `json:"limit"`
}

type WelcomeEvent struct {
	ClientID string `json:"clientId"`
}

type RoomCreatedEvent struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	RoomName string `json:"roomName"`
}

type RoomJoinedEvent struct {
	Success   bool   `json:"success"`
	RoomID    string `json:"roomId"`
	UserID    string `json:"userId"`
	UserCount int64  `json:"userCount"`
}

type PresenceEvent struct {
	Username  string `json:"username"`
	UserID    string `json:"userId,omitempty"`
	UserCount int64  `json:"userCount"`
}

type HistoryEvent struct {
	Strokes []room.Stroke    `json:"strokes"`
	Events  []room.DrawEvent `json:"events"`
}

type CursorUpdateEvent struct {
	UserID   string  `json:"userId"`
	Username string  `json:"username"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type TextDeletedEvent struct {
	TextID string `json:"textId"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

func decodePayload[T any](raw json.RawMessage) (T, error) {
	var payload T
	if len(raw) == 0 {
		return payload, fmt.Errorf("missing payload")
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, fmt.Errorf("decode payload: %w", err)
	}
	return payload, nil
}

// event serializes an outbound envelope. Payloads are our own types,
// so marshalling cannot fail in practice.
func event(typ string, data any) []byte {
	var raw json.RawMessage
	if data != nil {
		raw, _ = json.Marshal(data)
	}
	payload, _ := json.Marshal(Envelope{Type: typ, Data: raw})
	return payload
}
