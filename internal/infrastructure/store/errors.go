package store

import "errors"

var (
	ErrKeyNotFound  = errors.New("key not found")
	ErrEmptyList    = errors.New("list is empty")
	ErrNotConnected = errors.New("store not connected")
)
