package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"canvasroom/internal/infrastructure/store"
)

// Ledger is the authoritative, replayable record of a room's canvas:
// the open-stroke history buffer, the committed-stroke list, shapes,
// texts, the bounded chat log and the cached canvas snapshot.
type Ledger struct {
	store     store.Store
	keys      store.Keys
	locks     *LockTable
	log       *zap.Logger
	chatLimit int64
	ttl       time.Duration
}

func NewLedger(st store.Store, locks *LockTable, log *zap.Logger, chatLimit int64, ttl time.Duration) *Ledger {
	return &Ledger{
		store:     st,
		keys:      store.Keys{},
		locks:     locks,
		log:       log,
		chatLimit: chatLimit,
		ttl:       ttl,
	}
}

// RecordDrawEvent appends one segment to the room's open history
// buffer, tagged with the currently open stroke id if any.
func (l *Ledger) RecordDrawEvent(ctx context.Context, roomID string, ev DrawEvent) (DrawEvent, error) {
	strokeID, err := l.store.Get(ctx, l.keys.RoomOpenStroke(roomID))
	if err != nil && !errors.Is(err, store.ErrKeyNotFound) {
		return DrawEvent{}, err
	}
	ev.StrokeID = strokeID
	ev.Timestamp = time.Now().UnixMilli()

	data, err := json.Marshal(ev)
	if err != nil {
		return DrawEvent{}, err
	}
	if err := l.store.ListAppend(ctx, l.keys.RoomHistory(roomID), string(data)); err != nil {
		return DrawEvent{}, fmt.Errorf("append draw event: %w", err)
	}
	return ev, nil
}

// StartStroke opens a stroke for the room. New forward progress
// invalidates redo, and any buffer orphaned by a mid-stroke
// disconnect is discarded here.
func (l *Ledger) StartStroke(ctx context.Context, roomID, strokeID string) error {
	lock := l.locks.For(roomID)
	lock.Lock()
	defer lock.Unlock()

	if err := l.store.Delete(ctx, l.keys.RoomRedo(roomID), l.keys.RoomHistory(roomID)); err != nil {
		return err
	}
	return l.store.Set(ctx, l.keys.RoomOpenStroke(roomID), strokeID, l.ttl)
}

// EndStroke slices the history buffer to the events belonging to
// strokeID, commits them as one Stroke and clears the buffer. When no
// buffered event carries the id the whole buffer is taken as the
// stroke.
func (l *Ledger) EndStroke(ctx context.Context, roomID, strokeID string) (Stroke, error) {
	lock := l.locks.For(roomID)
	lock.Lock()
	defer lock.Unlock()

	events, err := l.historyBuffer(ctx, roomID)
	if err != nil {
		return Stroke{}, err
	}
	first := -1
	for i, ev := range events {
		if ev.StrokeID == strokeID {
			first = i
			break
		}
	}
	if first > 0 {
		events = events[first:]
	}

	stroke := Stroke{
		ID:        strokeID,
		Events:    events,
		Timestamp: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(stroke)
	if err != nil {
		return Stroke{}, err
	}
	if err := l.store.ListAppend(ctx, l.keys.RoomStrokes(roomID), string(data)); err != nil {
		return Stroke{}, fmt.Errorf("commit stroke: %w", err)
	}
	if err := l.store.Delete(ctx, l.keys.RoomHistory(roomID), l.keys.RoomOpenStroke(roomID)); err != nil {
		return Stroke{}, err
	}
	return stroke, nil
}

func (l *Ledger) historyBuffer(ctx context.Context, roomID string) ([]DrawEvent, error) {
	raw, err := l.store.ListRange(ctx, l.keys.RoomHistory(roomID), 0, -1)
	if err != nil {
		return nil, err
	}
	events := make([]DrawEvent, 0, len(raw))
	for _, item := range raw {
		var ev DrawEvent
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			l.log.Warn("skipping malformed draw event", zap.String("room", roomID), zap.Error(err))
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (l *Ledger) Strokes(ctx context.Context, roomID string) ([]Stroke, error) {
	raw, err := l.store.ListRange(ctx, l.keys.RoomStrokes(roomID), 0, -1)
	if err != nil {
		return nil, err
	}
	strokes := make([]Stroke, 0, len(raw))
	for _, item := range raw {
		var s Stroke
		if err := json.Unmarshal([]byte(item), &s); err != nil {
			l.log.Warn("skipping malformed stroke", zap.String("room", roomID), zap.Error(err))
			continue
		}
		strokes = append(strokes, s)
	}
	return strokes, nil
}

// AddShape commits a shape as a single unit with a generated id and
// server timestamp. Shapes are not part of the undo stack.
func (l *Ledger) AddShape(ctx context.Context, roomID string, shape Shape) (Shape, error) {
	shape.ID = newShapeID()
	shape.Timestamp = time.Now().UnixMilli()
	data, err := json.Marshal(shape)
	if err != nil {
		return Shape{}, err
	}
	if err := l.store.ListAppend(ctx, l.keys.RoomShapes(roomID), string(data)); err != nil {
		return Shape{}, fmt.Errorf("append shape: %w", err)
	}
	return shape, nil
}

func (l *Ledger) Shapes(ctx context.Context, roomID string) ([]Shape, error) {
	raw, err := l.store.ListRange(ctx, l.keys.RoomShapes(roomID), 0, -1)
	if err != nil {
		return nil, err
	}
	shapes := make([]Shape, 0, len(raw))
	for _, item := range raw {
		var s Shape
		if err := json.Unmarshal([]byte(item), &s); err != nil {
			continue
		}
		shapes = append(shapes, s)
	}
	return shapes, nil
}

func (l *Ledger) AddText(ctx context.Context, roomID string, text TextElement) (TextElement, error) {
	text.ID = newTextID()
	text.Timestamp = time.Now().UnixMilli()
	data, err := json.Marshal(text)
	if err != nil {
		return TextElement{}, err
	}
	if err := l.store.ListAppend(ctx, l.keys.RoomTexts(roomID), string(data)); err != nil {
		return TextElement{}, fmt.Errorf("append text: %w", err)
	}
	return text, nil
}

func (l *Ledger) Texts(ctx context.Context, roomID string) ([]TextElement, error) {
	raw, err := l.store.ListRange(ctx, l.keys.RoomTexts(roomID), 0, -1)
	if err != nil {
		return nil, err
	}
	texts := make([]TextElement, 0, len(raw))
	for _, item := range raw {
		var t TextElement
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			continue
		}
		texts = append(texts, t)
	}
	return texts, nil
}

// UpdateText moves a text element and rewrites the ledger entry, so
// late joiners replay the current position. Returns false when no
// element has the given id.
func (l *Ledger) UpdateText(ctx context.Context, roomID, textID string, x, y float64) (TextElement, bool, error) {
	lock := l.locks.For(roomID)
	lock.Lock()
	defer lock.Unlock()

	texts, err := l.Texts(ctx, roomID)
	if err != nil {
		return TextElement{}, false, err
	}
	var updated TextElement
	found := false
	for i := range texts {
		if texts[i].ID == textID {
			texts[i].X = x
			texts[i].Y = y
			updated = texts[i]
			found = true
			break
		}
	}
	if !found {
		return TextElement{}, false, nil
	}
	if err := l.rewriteTexts(ctx, roomID, texts); err != nil {
		return TextElement{}, false, err
	}
	return updated, true, nil
}

// DeleteText removes a text element from the ledger. Returns false
// when no element has the given id.
func (l *Ledger) DeleteText(ctx context.Context, roomID, textID string) (bool, error) {
	lock := l.locks.For(roomID)
	lock.Lock()
	defer lock.Unlock()

	texts, err := l.Texts(ctx, roomID)
	if err != nil {
		return false, err
	}
	remaining := texts[:0]
	found := false
	for _, t := range texts {
		if t.ID == textID {
			found = true
			continue
		}
		remaining = append(remaining, t)
	}
	if !found {
		return false, nil
	}
	return true, l.rewriteTexts(ctx, roomID, remaining)
}

func (l *Ledger) rewriteTexts(ctx context.Context, roomID string, texts []TextElement) error {
	if err := l.store.Delete(ctx, l.keys.RoomTexts(roomID)); err != nil {
		return err
	}
	if len(texts) == 0 {
		return nil
	}
	items := make([]string, 0, len(texts))
	for _, t := range texts {
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		items = append(items, string(data))
	}
	return l.store.ListAppend(ctx, l.keys.RoomTexts(roomID), items...)
}

// AppendChat stores a chat message, keeping only the most recent
// chatLimit entries.
func (l *Ledger) AppendChat(ctx context.Context, roomID, userID, username, text string) (ChatMessage, error) {
	msg := ChatMessage{
		ID:        newMessageID(),
		UserID:    userID,
		Username:  username,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return ChatMessage{}, err
	}
	key := l.keys.RoomChat(roomID)
	if err := l.store.ListAppend(ctx, key, string(data)); err != nil {
		return ChatMessage{}, fmt.Errorf("append chat message: %w", err)
	}
	if err := l.store.ListTrim(ctx, key, -l.chatLimit, -1); err != nil {
		return ChatMessage{}, err
	}
	return msg, nil
}

// ChatHistory returns the most recent messages, newest last. Limits
// outside (0, chatLimit] fall back to half the retention window.
func (l *Ledger) ChatHistory(ctx context.Context, roomID string, limit int64) ([]ChatMessage, error) {
	if limit <= 0 || limit > l.chatLimit {
		limit = l.chatLimit / 2
	}
	raw, err := l.store.ListRange(ctx, l.keys.RoomChat(roomID), -limit, -1)
	if err != nil {
		return nil, err
	}
	messages := make([]ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// ClearAll wipes every drawable record of the room. Chat survives.
func (l *Ledger) ClearAll(ctx context.Context, roomID string) error {
	lock := l.locks.For(roomID)
	lock.Lock()
	defer lock.Unlock()

	return l.store.Delete(ctx,
		l.keys.RoomHistory(roomID),
		l.keys.RoomStrokes(roomID),
		l.keys.RoomRedo(roomID),
		l.keys.RoomShapes(roomID),
		l.keys.RoomTexts(roomID),
		l.keys.RoomCanvas(roomID),
		l.keys.RoomOpenStroke(roomID),
	)
}

// State assembles the full replay payload for a newly joined client.
func (l *Ledger) State(ctx context.Context, roomID string) (FullState, error) {
	strokes, err := l.Strokes(ctx, roomID)
	if err != nil {
		return FullState{}, err
	}
	shapes, err := l.Shapes(ctx, roomID)
	if err != nil {
		return FullState{}, err
	}
	texts, err := l.Texts(ctx, roomID)
	if err != nil {
		return FullState{}, err
	}
	chat, err := l.ChatHistory(ctx, roomID, 0)
	if err != nil {
		return FullState{}, err
	}
	return FullState{
		Events: Flatten(strokes),
		Shapes: shapes,
		Texts:  texts,
		Chat:   chat,
	}, nil
}

// SaveSnapshot caches an opaque client-rendered image. The snapshot
// is never authoritative; the event ledger is.
func (l *Ledger) SaveSnapshot(ctx context.Context, roomID, encoded string) error {
	return l.store.Set(ctx, l.keys.RoomCanvas(roomID), encoded, l.ttl)
}

func (l *Ledger) Snapshot(ctx context.Context, roomID string) (string, error) {
	data, err := l.store.Get(ctx, l.keys.RoomCanvas(roomID))
	if errors.Is(err, store.ErrKeyNotFound) {
		return "", nil
	}
	return data, err
}
