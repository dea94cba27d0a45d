package room

// Timestamps are unix milliseconds throughout, matching what the
// browser clients render.

type Room struct {
	RoomID    string `json:"roomId"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
	CreatedBy string `json:"createdBy"`
	MaxUsers  int    `json:"maxUsers"`
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	JoinedAt int64  `json:"joinedAt"`
}

// DrawEvent is one line segment of a freehand stroke. Immutable once
// recorded.
type DrawEvent struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	PrevX     float64 `json:"prevX"`
	PrevY     float64 `json:"prevY"`
	Color     string  `json:"color"`
	BrushSize float64 `json:"brushSize"`
	Tool      string  `json:"tool"`
	StrokeID  string  `json:"strokeId,omitempty"`
	Timestamp int64   `json:"timestamp,omitempty"`
}

// Stroke is the atomic undo/redo unit: every event of one continuous
// pointer gesture.
type Stroke struct {
	ID        string      `json:"id"`
	Events    []DrawEvent `json:"events"`
	Timestamp int64       `json:"timestamp"`
}

type Shape struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	StartX      float64 `json:"startX"`
	StartY      float64 `json:"startY"`
	EndX        float64 `json:"endX"`
	EndY        float64 `json:"endY"`
	Color       string  `json:"color"`
	StrokeWidth float64 `json:"strokeWidth"`
	Filled      bool    `json:"filled"`
	Timestamp   int64   `json:"timestamp"`
}

type TextElement struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	FontSize   float64 `json:"fontSize"`
	FontFamily string  `json:"fontFamily"`
	Color      string  `json:"color"`
	Timestamp  int64   `json:"timestamp"`
}

type ChatMessage struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// Summary is a lobby view of one active room.
type Summary struct {
	Room
	UserCount int64 `json:"userCount"`
}

// FullState hydrates a newly joined client: committed strokes
// flattened to their events plus the shape, text and recent chat
// windows.
type FullState struct {
	Events []DrawEvent   `json:"events"`
	Shapes []Shape       `json:"shapes"`
	Texts  []TextElement `json:"texts"`
	Chat   []ChatMessage `json:"chat"`
}

// Flatten concatenates the events of the given strokes in commit
// order.
func Flatten(strokes []Stroke) []DrawEvent {
	events := make([]DrawEvent, 0)
	for _, s := range strokes {
		events = append(events, s.Events...)
	}
	return events
}
