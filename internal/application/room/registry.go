package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"canvasroom/internal/infrastructure/store"
)

// Registry owns room creation, membership, capacity and lifecycle.
// Rooms are ephemeral: metadata expires after the configured TTL and
// the whole namespace is torn down when the last member leaves.
type Registry struct {
	store    store.Store
	keys     store.Keys
	locks    *LockTable
	log      *zap.Logger
	ttl      time.Duration
	maxUsers int
}

func NewRegistry(st store.Store, locks *LockTable, log *zap.Logger, ttl time.Duration, maxUsers int) *Registry {
	return &Registry{
		store:    st,
		keys:     store.Keys{},
		locks:    locks,
		log:      log,
		ttl:      ttl,
		maxUsers: maxUsers,
	}
}

const codeAttempts = 5

// Create persists a new room and its creator as the first member.
func (r *Registry) Create(ctx context.Context, name, username string) (Room, User, error) {
	var roomID string
	for i := 0; i < codeAttempts; i++ {
		candidate := newRoomCode()
		_, err := r.store.Get(ctx, r.keys.RoomMeta(candidate))
		if errors.Is(err, store.ErrKeyNotFound) {
			roomID = candidate
			break
		}
		if err != nil {
			return Room{}, User{}, fmt.Errorf("check room code: %w", err)
		}
	}
	if roomID == "" {
		return Room{}, User{}, fmt.Errorf("could not find a free room code in %d attempts", codeAttempts)
	}

	now := time.Now().UnixMilli()
	rm := Room{
		RoomID:    roomID,
		Name:      name,
		CreatedAt: now,
		CreatedBy: username,
		MaxUsers:  r.maxUsers,
	}
	meta, err := json.Marshal(rm)
	if err != nil {
		return Room{}, User{}, err
	}
	if err := r.store.Set(ctx, r.keys.RoomMeta(roomID), string(meta), r.ttl); err != nil {
		return Room{}, User{}, fmt.Errorf("persist room meta: %w", err)
	}

	user, err := r.addUser(ctx, roomID, username)
	if err != nil {
		return Room{}, User{}, err
	}
	r.log.Info("room created",
		zap.String("room", roomID),
		zap.String("by", username))
	return rm, user, nil
}

// Join adds a user to an existing room and returns the new member
// count. Fails with ErrRoomNotFound or ErrRoomFull.
func (r *Registry) Join(ctx context.Context, roomID, username string) (Room, User, int64, error) {
	lock := r.locks.For(roomID)
	lock.Lock()
	defer lock.Unlock()

	rm, err := r.Meta(ctx, roomID)
	if err != nil {
		return Room{}, User{}, 0, err
	}
	count, err := r.store.SetCard(ctx, r.keys.RoomUsers(roomID))
	if err != nil {
		return Room{}, User{}, 0, err
	}
	if count >= int64(rm.MaxUsers) {
		return Room{}, User{}, 0, ErrRoomFull
	}

	user, err := r.addUser(ctx, roomID, username)
	if err != nil {
		return Room{}, User{}, 0, err
	}
	return rm, user, count + 1, nil
}

func (r *Registry) addUser(ctx context.Context, roomID, username string) (User, error) {
	user := User{
		ID:       newUserID(),
		Username: username,
		JoinedAt: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(user)
	if err != nil {
		return User{}, err
	}
	if err := r.store.SetAdd(ctx, r.keys.RoomUsers(roomID), string(data)); err != nil {
		return User{}, fmt.Errorf("add user to room: %w", err)
	}
	return user, nil
}

// Leave removes the user and, when the room empties, deletes every
// key in its namespace. Returns the remaining count and whether the
// room was deleted.
func (r *Registry) Leave(ctx context.Context, roomID, userID string) (int64, bool, error) {
	lock := r.locks.For(roomID)
	lock.Lock()
	defer lock.Unlock()

	users, err := r.Users(ctx, roomID)
	if err != nil {
		return 0, false, err
	}
	remaining := make([]string, 0, len(users))
	for _, u := range users {
		if u.ID == userID {
			continue
		}
		data, err := json.Marshal(u)
		if err != nil {
			return 0, false, err
		}
		remaining = append(remaining, string(data))
	}
	if err := r.store.SetReplaceAll(ctx, r.keys.RoomUsers(roomID), remaining); err != nil {
		return 0, false, fmt.Errorf("rewrite room membership: %w", err)
	}

	count := int64(len(remaining))
	if count > 0 {
		return count, false, nil
	}
	if err := r.store.Delete(ctx, r.keys.AllRoom(roomID)...); err != nil {
		return 0, false, fmt.Errorf("delete room namespace: %w", err)
	}
	r.locks.Forget(roomID)
	r.log.Info("room deleted (empty)", zap.String("room", roomID))
	return 0, true, nil
}

func (r *Registry) Meta(ctx context.Context, roomID string) (Room, error) {
	data, err := r.store.Get(ctx, r.keys.RoomMeta(roomID))
	if errors.Is(err, store.ErrKeyNotFound) {
		return Room{}, ErrRoomNotFound
	}
	if err != nil {
		return Room{}, err
	}
	var rm Room
	if err := json.Unmarshal([]byte(data), &rm); err != nil {
		return Room{}, err
	}
	return rm, nil
}

func (r *Registry) Users(ctx context.Context, roomID string) ([]User, error) {
	members, err := r.store.SetMembers(ctx, r.keys.RoomUsers(roomID))
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(members))
	for _, m := range members {
		var u User
		if err := json.Unmarshal([]byte(m), &u); err != nil {
			r.log.Warn("skipping malformed room member", zap.String("room", roomID), zap.Error(err))
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *Registry) UserCount(ctx context.Context, roomID string) (int64, error) {
	return r.store.SetCard(ctx, r.keys.RoomUsers(roomID))
}

// ActiveRooms enumerates non-expired room metadata for the lobby.
func (r *Registry) ActiveRooms(ctx context.Context) ([]Summary, error) {
	keys, err := r.store.Keys(ctx, r.keys.RoomMetaPattern())
	if err != nil {
		return nil, err
	}
	rooms := make([]Summary, 0, len(keys))
	for _, key := range keys {
		roomID := roomIDFromMetaKey(key)
		if roomID == "" {
			continue
		}
		rm, err := r.Meta(ctx, roomID)
		if err != nil {
			continue
		}
		count, err := r.UserCount(ctx, roomID)
		if err != nil {
			continue
		}
		rooms = append(rooms, Summary{Room: rm, UserCount: count})
	}
	return rooms, nil
}

func roomIDFromMetaKey(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) != 3 {
		return ""
	}
	return parts[1]
}
