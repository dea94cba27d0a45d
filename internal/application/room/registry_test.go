package room

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"canvasroom/internal/infrastructure/store"
)

func newTestRegistry(maxUsers int) (*Registry, store.Store) {
	st := store.NewMemoryStore()
	locks := NewLockTable()
	return NewRegistry(st, locks, zap.NewNop(), 24*time.Hour, maxUsers), st
}

func TestCreateRoom(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(10)

	rm, user, err := reg.Create(ctx, "sketch night", "Alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(rm.RoomID) != 6 {
		t.Fatalf("expected 6-char room code, got %q", rm.RoomID)
	}
	if rm.CreatedBy != "Alice" || rm.MaxUsers != 10 {
		t.Fatalf("unexpected meta %+v", rm)
	}
	if user.Username != "Alice" || user.ID == "" {
		t.Fatalf("unexpected creator %+v", user)
	}

	count, err := reg.UserCount(ctx, rm.RoomID)
	if err != nil || count != 1 {
		t.Fatalf("expected 1 member, got %d err %v", count, err)
	}
	meta, err := reg.Meta(ctx, rm.RoomID)
	if err != nil || meta.Name != "sketch night" {
		t.Fatalf("meta roundtrip failed: %+v %v", meta, err)
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(10)

	_, _, _, err := reg.Join(ctx, "NOPE99", "Bob")
	if err != ErrRoomNotFound {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestJoinCapacity(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(3)

	rm, _, err := reg.Create(ctx, "small", "Alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, count, err := reg.Join(ctx, rm.RoomID, "Bob"); err != nil || count != 2 {
		t.Fatalf("second join: count %d err %v", count, err)
	}
	// Joining at maxUsers-1 succeeds and count becomes maxUsers.
	if _, _, count, err := reg.Join(ctx, rm.RoomID, "Carol"); err != nil || count != 3 {
		t.Fatalf("third join: count %d err %v", count, err)
	}
	// Joining at maxUsers fails.
	if _, _, _, err := reg.Join(ctx, rm.RoomID, "Dave"); err != ErrRoomFull {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
}

func TestDuplicateUsernamesAllowed(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(10)

	rm, creator, err := reg.Create(ctx, "dupes", "Alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, second, count, err := reg.Join(ctx, rm.RoomID, "Alice")
	if err != nil || count != 2 {
		t.Fatalf("duplicate username join: count %d err %v", count, err)
	}
	if second.ID == creator.ID {
		t.Fatalf("expected distinct user ids for duplicate usernames")
	}
}

func TestLeaveDeletesEmptyRoom(t *testing.T) {
	ctx := context.Background()
	reg, st := newTestRegistry(10)
	keys := store.Keys{}

	rm, alice, err := reg.Create(ctx, "lifecycle", "Alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, bob, _, err := reg.Join(ctx, rm.RoomID, "Bob")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	// Park some state in every namespaced key.
	_ = st.ListAppend(ctx, keys.RoomStrokes(rm.RoomID), "{}")
	_ = st.ListAppend(ctx, keys.RoomChat(rm.RoomID), "{}")
	_ = st.Set(ctx, keys.RoomCanvas(rm.RoomID), "img", 0)

	count, deleted, err := reg.Leave(ctx, rm.RoomID, bob.ID)
	if err != nil || deleted || count != 1 {
		t.Fatalf("first leave: count %d deleted %v err %v", count, deleted, err)
	}
	count, deleted, err = reg.Leave(ctx, rm.RoomID, alice.ID)
	if err != nil || !deleted || count != 0 {
		t.Fatalf("last leave: count %d deleted %v err %v", count, deleted, err)
	}

	if _, err := reg.Meta(ctx, rm.RoomID); err != ErrRoomNotFound {
		t.Fatalf("expected meta gone, got %v", err)
	}
	for _, key := range keys.AllRoom(rm.RoomID) {
		if _, err := st.Get(ctx, key); err != store.ErrKeyNotFound {
			items, _ := st.ListRange(ctx, key, 0, -1)
			if len(items) > 0 {
				t.Fatalf("key %s survived room deletion", key)
			}
		}
	}
}

func TestActiveRooms(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(10)

	first, _, err := reg.Create(ctx, "one", "Alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, _, err := reg.Create(ctx, "two", "Bob")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, _, err := reg.Join(ctx, second.RoomID, "Carol"); err != nil {
		t.Fatalf("join: %v", err)
	}

	rooms, err := reg.ActiveRooms(ctx)
	if err != nil {
		t.Fatalf("active rooms: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(rooms))
	}
	counts := map[string]int64{}
	for _, r := range rooms {
		counts[r.RoomID] = r.UserCount
	}
	if counts[first.RoomID] != 1 || counts[second.RoomID] != 2 {
		t.Fatalf("unexpected counts %v", counts)
	}
}
