package store

import (
	"context"
	"path"
	"sync"
	"time"
)

// MemoryStore is an in-process Store with the same single-key
// semantics as Redis, including negative list indices. It backs the
// test suite and local development without a Redis instance.
type MemoryStore struct {
	mu        sync.Mutex
	strings   map[string]string
	deadlines map[string]time.Time
	lists     map[string][]string
	sets      map[string]map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		strings:   make(map[string]string),
		deadlines: make(map[string]time.Time),
		lists:     make(map[string][]string),
		sets:      make(map[string]map[string]struct{}),
	}
}

func (s *MemoryStore) expired(key string) bool {
	dl, ok := s.deadlines[key]
	if !ok {
		return false
	}
	if time.Now().Before(dl) {
		return false
	}
	delete(s.strings, key)
	delete(s.deadlines, key)
	return true
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strings[key] = value
	if ttl > 0 {
		s.deadlines[key] = time.Now().Add(ttl)
	} else {
		delete(s.deadlines, key)
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expired(key) {
		return "", ErrKeyNotFound
	}
	val, ok := s.strings[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return val, nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.strings, key)
		delete(s.deadlines, key)
		delete(s.lists, key)
		delete(s.sets, key)
	}
	return nil
}

func (s *MemoryStore) ListAppend(_ context.Context, key string, values ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[key] = append(s.lists[key], values...)
	return nil
}

// normalize resolves redis-style negative indices against a list of
// length n. The returned range is [start, stop] inclusive.
func normalize(start, stop, n int64) (int64, int64) {
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	return start, stop
}

func (s *MemoryStore) ListRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.lists[key]
	n := int64(len(list))
	start, stop = normalize(start, stop, n)
	if n == 0 || start > stop || start >= n {
		return nil, nil
	}
	out := make([]string, stop-start+1)
	copy(out, list[start:stop+1])
	return out, nil
}

func (s *MemoryStore) ListPopLast(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.lists[key]
	if len(list) == 0 {
		return "", ErrEmptyList
	}
	last := list[len(list)-1]
	s.lists[key] = list[:len(list)-1]
	if len(s.lists[key]) == 0 {
		delete(s.lists, key)
	}
	return last, nil
}

func (s *MemoryStore) ListTrim(_ context.Context, key string, start, stop int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.lists[key]
	n := int64(len(list))
	start, stop = normalize(start, stop, n)
	if n == 0 {
		return nil
	}
	if start > stop || start >= n {
		delete(s.lists, key)
		return nil
	}
	trimmed := make([]string, stop-start+1)
	copy(trimmed, list[start:stop+1])
	s.lists[key] = trimmed
	return nil
}

func (s *MemoryStore) SetAdd(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]struct{})
		s.sets[key] = set
	}
	for _, m := range members {
		set[m] = struct{}{}
	}
	return nil
}

func (s *MemoryStore) SetReplaceAll(_ context.Context, key string, members []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sets, key)
	if len(members) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	s.sets[key] = set
	return nil
}

func (s *MemoryStore) SetMembers(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.sets[key]
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	return out, nil
}

func (s *MemoryStore) SetCard(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.sets[key])), nil
}

func (s *MemoryStore) Keys(_ context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	match := func(key string) {
		if ok, _ := path.Match(pattern, key); ok {
			out = append(out, key)
		}
	}
	for key := range s.strings {
		if !s.expired(key) {
			match(key)
		}
	}
	for key := range s.lists {
		match(key)
	}
	for key := range s.sets {
		match(key)
	}
	return out, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
