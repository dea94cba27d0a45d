package store

import "fmt"

// Keys builds the per-room key namespace.
type Keys struct{}

func (k Keys) RoomMeta(roomID string) string {
	return fmt.Sprintf("room:%s:meta", roomID)
}

func (k Keys) RoomUsers(roomID string) string {
	return fmt.Sprintf("room:%s:users", roomID)
}

// RoomHistory is the open-stroke event buffer, cleared on every
// stroke commit.
func (k Keys) RoomHistory(roomID string) string {
	return fmt.Sprintf("room:%s:history", roomID)
}

func (k Keys) RoomStrokes(roomID string) string {
	return fmt.Sprintf("room:%s:strokes", roomID)
}

func (k Keys) RoomRedo(roomID string) string {
	return fmt.Sprintf("room:%s:redo", roomID)
}

func (k Keys) RoomCanvas(roomID string) string {
	return fmt.Sprintf("room:%s:canvas", roomID)
}

func (k Keys) RoomShapes(roomID string) string {
	return fmt.Sprintf("room:%s:shapes", roomID)
}

func (k Keys) RoomTexts(roomID string) string {
	return fmt.Sprintf("room:%s:texts", roomID)
}

func (k Keys) RoomChat(roomID string) string {
	return fmt.Sprintf("room:%s:chat", roomID)
}

// RoomOpenStroke holds the id of the stroke currently being drawn,
// so a second instance (or a restart) can resume tagging events.
func (k Keys) RoomOpenStroke(roomID string) string {
	return fmt.Sprintf("room:%s:stroke", roomID)
}

// AllRoom returns every key in a room's namespace, for teardown.
func (k Keys) AllRoom(roomID string) []string {
	return []string{
		k.RoomMeta(roomID),
		k.RoomUsers(roomID),
		k.RoomHistory(roomID),
		k.RoomStrokes(roomID),
		k.RoomRedo(roomID),
		k.RoomCanvas(roomID),
		k.RoomShapes(roomID),
		k.RoomTexts(roomID),
		k.RoomChat(roomID),
		k.RoomOpenStroke(roomID),
	}
}

func (k Keys) RoomMetaPattern() string {
	return "room:*:meta"
}
