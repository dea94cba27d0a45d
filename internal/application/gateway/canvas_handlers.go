package gateway

import (
	"canvasroom/internal/application/client"
)

func (g *Gateway) handleDraw(c *client.Client, raw []byte) {
	s, ok := g.session(c)
	if !ok {
		return
	}
	payload, err := decodePayload[DrawPayload](raw)
	if err != nil {
		g.sendError(c, "invalid draw payload")
		return
	}

	recorded, err := g.ledger.RecordDrawEvent(g.ctx, s.RoomID, payload.DrawEvent)
	if err != nil {
		g.fail(c, "draw", err)
		return
	}
	// Echoed to the author too: one render path for every client.
	g.hub.BroadcastRoom(s.RoomID, event(EvtDrawing, recorded), "")
}

func (g *Gateway) handleStartStroke(c *client.Client, raw []byte) {
	s, ok := g.session(c)
	if !ok {
		return
	}
	payload, err := decodePayload[StrokePayload](raw)
	if err != nil {
		g.sendError(c, "invalid startStroke payload")
		return
	}

	if err := g.ledger.StartStroke(g.ctx, s.RoomID, payload.StrokeID); err != nil {
		g.fail(c, "startStroke", err)
	}
}

func (g *Gateway) handleEndStroke(c *client.Client, raw []byte) {
	s, ok := g.session(c)
	if !ok {
		return
	}
	payload, err := decodePayload[StrokePayload](raw)
	if err != nil {
		g.sendError(c, "invalid endStroke payload")
		return
	}

	if _, err := g.ledger.EndStroke(g.ctx, s.RoomID, payload.StrokeID); err != nil {
		g.fail(c, "endStroke", err)
	}
}

func (g *Gateway) handleDrawShape(c *client.Client, raw []byte) {
	s, ok := g.session(c)
	if !ok {
		return
	}
	payload, err := decodePayload[ShapePayload](raw)
	if err != nil {
		g.sendError(c, "invalid drawShape payload")
		return
	}

	shape, err := g.ledger.AddShape(g.ctx, s.RoomID, payload.Shape)
	if err != nil {
		g.fail(c, "drawShape", err)
		return
	}
	g.hub.BroadcastRoom(s.RoomID, event(EvtShapeDrawn, shape), "")
}

func (g *Gateway) handleAddText(c *client.Client, raw []byte) {
	s, ok := g.session(c)
	if !ok {
		return
	}
	payload, err := decodePayload[AddTextPayload](raw)
	if err != nil {
		g.sendError(c, "invalid addText payload")
		return
	}

	text, err := g.ledger.AddText(g.ctx, s.RoomID, payload.TextElement)
	if err != nil {
		g.fail(c, "addText", err)
		return
	}
	g.hub.BroadcastRoom(s.RoomID, event(EvtTextAdded, text), "")
}

func (g *Gateway) handleUpdateText(c *client.Client, raw []byte) {
	s, ok := g.session(c)
	if !ok {
		return
	}
	payload, err := decodePayload[UpdateTextPayload](raw)
	if err != nil {
		g.sendError(c, "invalid updateText payload")
		return
	}

	updated, found, err := g.ledger.UpdateText(g.ctx, s.RoomID, payload.TextID, payload.X, payload.Y)
	if err != nil {
		g.fail(c, "updateText", err)
		return
	}
	if !found {
		return
	}
	g.hub.BroadcastRoom(s.RoomID, event(EvtTextUpdated, updated), "")
}

func (g *Gateway) handleDeleteText(c *client.Client, raw []byte) {
	s, ok := g.session(c)
	if !ok {
		return
	}
	payload, err := decodePayload[DeleteTextPayload](raw)
	if err != nil {
		g.sendError(c, "invalid deleteText payload")
		return
	}

	found, err := g.ledger.DeleteText(g.ctx, s.RoomID, payload.TextID)
	if err != nil {
		g.fail(c, "deleteText", err)
		return
	}
	if !found {
		return
	}
	g.hub.BroadcastRoom(s.RoomID, event(EvtTextDeleted, TextDeletedEvent{TextID: payload.TextID}), "")
}

func (g *Gateway) handleUndo(c *client.Client) {
	s, ok := g.session(c)
	if !ok {
		return
	}

	strokes, events, performed, err := g.history.Undo(g.ctx, s.RoomID)
	if err != nil {
		g.fail(c, "undo", err)
		return
	}
	if !performed {
		return
	}
	// Full reconstructed sequence, not a delta: clients re-render
	// from scratch and converge even after missed broadcasts.
	g.hub.BroadcastRoom(s.RoomID, event(EvtUndoPerformed, HistoryEvent{
		Strokes: strokes,
		Events:  events,
	}), "")
}

func (g *Gateway) handleRedo(c *client.Client) {
	s, ok := g.session(c)
	if !ok {
		return
	}

	strokes, events, performed, err := g.history.Redo(g.ctx, s.RoomID)
	if err != nil {
		g.fail(c, "redo", err)
		return
	}
	if !performed {
		return
	}
	g.hub.BroadcastRoom(s.RoomID, event(EvtRedoPerformed, HistoryEvent{
		Strokes: strokes,
		Events:  events,
	}), "")
}

func (g *Gateway) handleClearCanvas(c *client.Client) {
	s, ok := g.session(c)
	if !ok {
		return
	}

	if err := g.ledger.ClearAll(g.ctx, s.RoomID); err != nil {
		g.fail(c, "clearCanvas", err)
		return
	}
	g.hub.BroadcastRoom(s.RoomID, event(EvtCanvasCleared, nil), "")
}

func (g *Gateway) handleSaveCanvas(c *client.Client, raw []byte) {
	s, ok := g.session(c)
	if !ok {
		return
	}
	payload, err := decodePayload[SaveCanvasPayload](raw)
	if err != nil {
		g.sendError(c, "invalid saveCanvas payload")
		return
	}

	if err := g.ledger.SaveSnapshot(g.ctx, s.RoomID, payload.CanvasData); err != nil {
		g.fail(c, "saveCanvas", err)
	}
}
