package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"canvasroom/internal/infrastructure/store"
)

// History is the per-room linear undo/redo discipline over committed
// strokes. Shapes and text are not undoable.
type History struct {
	store     store.Store
	keys      store.Keys
	locks     *LockTable
	log       *zap.Logger
	redoLimit int64
}

func NewHistory(st store.Store, locks *LockTable, log *zap.Logger, redoLimit int64) *History {
	return &History{
		store:     st,
		keys:      store.Keys{},
		locks:     locks,
		log:       log,
		redoLimit: redoLimit,
	}
}

// Undo moves the most recent committed stroke onto the redo stack and
// returns the remaining strokes with their flattened events. ok is
// false when there was nothing to undo.
func (h *History) Undo(ctx context.Context, roomID string) (strokes []Stroke, events []DrawEvent, ok bool, err error) {
	lock := h.locks.For(roomID)
	lock.Lock()
	defer lock.Unlock()

	popped, err := h.store.ListPopLast(ctx, h.keys.RoomStrokes(roomID))
	if errors.Is(err, store.ErrEmptyList) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, err
	}

	// Pop and push are two separate single-key operations. If the
	// push half fails, restore the popped stroke before reporting.
	if err := h.store.ListAppend(ctx, h.keys.RoomRedo(roomID), popped); err != nil {
		h.compensate(ctx, h.keys.RoomStrokes(roomID), popped)
		return nil, nil, false, fmt.Errorf("push to redo stack: %w", err)
	}
	if err := h.store.ListTrim(ctx, h.keys.RoomRedo(roomID), -h.redoLimit, -1); err != nil {
		return nil, nil, false, err
	}

	strokes, events, err = h.remaining(ctx, roomID)
	return strokes, events, true, err
}

// Redo moves the most recent redo entry back onto the committed
// strokes and returns the updated strokes with their flattened
// events. ok is false when the redo stack was empty.
func (h *History) Redo(ctx context.Context, roomID string) (strokes []Stroke, events []DrawEvent, ok bool, err error) {
	lock := h.locks.For(roomID)
	lock.Lock()
	defer lock.Unlock()

	popped, err := h.store.ListPopLast(ctx, h.keys.RoomRedo(roomID))
	if errors.Is(err, store.ErrEmptyList) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, err
	}

	if err := h.store.ListAppend(ctx, h.keys.RoomStrokes(roomID), popped); err != nil {
		h.compensate(ctx, h.keys.RoomRedo(roomID), popped)
		return nil, nil, false, fmt.Errorf("restore stroke: %w", err)
	}

	strokes, events, err = h.remaining(ctx, roomID)
	return strokes, events, true, err
}

// RedoDepth reports the current redo stack size.
func (h *History) RedoDepth(ctx context.Context, roomID string) (int64, error) {
	entries, err := h.store.ListRange(ctx, h.keys.RoomRedo(roomID), 0, -1)
	if err != nil {
		return 0, err
	}
	return int64(len(entries)), nil
}

// RedoStack returns the redo entries oldest-first.
func (h *History) RedoStack(ctx context.Context, roomID string) ([]Stroke, error) {
	raw, err := h.store.ListRange(ctx, h.keys.RoomRedo(roomID), 0, -1)
	if err != nil {
		return nil, err
	}
	strokes := make([]Stroke, 0, len(raw))
	for _, item := range raw {
		var s Stroke
		if err := json.Unmarshal([]byte(item), &s); err != nil {
			continue
		}
		strokes = append(strokes, s)
	}
	return strokes, nil
}

func (h *History) compensate(ctx context.Context, key, value string) {
	if err := h.store.ListAppend(ctx, key, value); err != nil {
		// Best effort. The stroke is lost; surface it loudly.
		h.log.Error("compensation failed, stroke dropped",
			zap.String("key", key), zap.Error(err))
	}
}

func (h *History) remaining(ctx context.Context, roomID string) ([]Stroke, []DrawEvent, error) {
	raw, err := h.store.ListRange(ctx, h.keys.RoomStrokes(roomID), 0, -1)
	if err != nil {
		return nil, nil, err
	}
	strokes := make([]Stroke, 0, len(raw))
	for _, item := range raw {
		var s Stroke
		if err := json.Unmarshal([]byte(item), &s); err != nil {
			continue
		}
		strokes = append(strokes, s)
	}
	return strokes, Flatten(strokes), nil
}
