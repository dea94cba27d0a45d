package room

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const roomCodeLength = 6

// newRoomCode returns a short shareable room code. Collisions are
// possible and checked by the caller against existing metadata.
func newRoomCode() string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomCodeAlphabet[rand.IntN(len(roomCodeAlphabet))]
	}
	return string(code)
}

func newUserID() string {
	return "user_" + uuid.NewString()
}

func newShapeID() string {
	return "shape_" + uuid.NewString()
}

func newTextID() string {
	return "text_" + uuid.NewString()
}

func newMessageID() string {
	return "msg_" + uuid.NewString()
}
