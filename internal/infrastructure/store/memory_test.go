package store

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"
)

func TestMemoryStoreGetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Get(ctx, "missing"); err != ErrKeyNotFound {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	if err := s.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, err := s.Get(ctx, "k")
	if err != nil || val != "v" {
		t.Fatalf("expected v, got %q err %v", val, err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "k"); err != ErrKeyNotFound {
		t.Fatalf("expected ErrKeyNotFound after delete, got %v", err)
	}
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Set(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("expected live key, got %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := s.Get(ctx, "k"); err != ErrKeyNotFound {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestMemoryStoreListRangeNegativeIndices(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for i := 0; i < 5; i++ {
		if err := s.ListAppend(ctx, "l", fmt.Sprintf("v%d", i)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := s.ListRange(ctx, "l", 0, -1)
	if err != nil || len(all) != 5 {
		t.Fatalf("expected 5 items, got %d err %v", len(all), err)
	}
	lastTwo, err := s.ListRange(ctx, "l", -2, -1)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(lastTwo) != 2 || lastTwo[0] != "v3" || lastTwo[1] != "v4" {
		t.Fatalf("expected [v3 v4], got %v", lastTwo)
	}
	none, err := s.ListRange(ctx, "missing", 0, -1)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty range on missing key, got %v err %v", none, err)
	}
}

func TestMemoryStoreListTrimKeepsTail(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for i := 0; i < 10; i++ {
		_ = s.ListAppend(ctx, "l", fmt.Sprintf("v%d", i))
	}
	if err := s.ListTrim(ctx, "l", -3, -1); err != nil {
		t.Fatalf("trim: %v", err)
	}
	got, _ := s.ListRange(ctx, "l", 0, -1)
	if len(got) != 3 || got[0] != "v7" || got[2] != "v9" {
		t.Fatalf("expected [v7 v8 v9], got %v", got)
	}
}

func TestMemoryStoreListPopLast(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.ListPopLast(ctx, "l"); err != ErrEmptyList {
		t.Fatalf("expected ErrEmptyList, got %v", err)
	}
	_ = s.ListAppend(ctx, "l", "a", "b")
	val, err := s.ListPopLast(ctx, "l")
	if err != nil || val != "b" {
		t.Fatalf("expected b, got %q err %v", val, err)
	}
	rest, _ := s.ListRange(ctx, "l", 0, -1)
	if len(rest) != 1 || rest[0] != "a" {
		t.Fatalf("expected [a], got %v", rest)
	}
}

func TestMemoryStoreSetReplaceAll(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_ = s.SetAdd(ctx, "members", "a", "b", "c")
	if n, _ := s.SetCard(ctx, "members"); n != 3 {
		t.Fatalf("expected cardinality 3, got %d", n)
	}
	if err := s.SetReplaceAll(ctx, "members", []string{"b"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, _ := s.SetMembers(ctx, "members")
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("expected [b], got %v", got)
	}
	if err := s.SetReplaceAll(ctx, "members", nil); err != nil {
		t.Fatalf("replace empty: %v", err)
	}
	if n, _ := s.SetCard(ctx, "members"); n != 0 {
		t.Fatalf("expected empty set, got %d", n)
	}
}

func TestMemoryStoreKeysPattern(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	keys := Keys{}

	_ = s.Set(ctx, keys.RoomMeta("AAA111"), "{}", 0)
	_ = s.Set(ctx, keys.RoomMeta("BBB222"), "{}", 0)
	_ = s.Set(ctx, keys.RoomCanvas("AAA111"), "img", 0)
	_ = s.ListAppend(ctx, keys.RoomChat("AAA111"), "m")

	got, err := s.Keys(ctx, keys.RoomMetaPattern())
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	sort.Strings(got)
	if len(got) != 2 || got[0] != "room:AAA111:meta" || got[1] != "room:BBB222:meta" {
		t.Fatalf("expected the two meta keys, got %v", got)
	}
}
