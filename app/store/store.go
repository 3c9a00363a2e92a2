// Package store contains entities and the durable key-value storage for them.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is an error that is returned when the requested entity is not found.
var ErrNotFound = errors.New("not found")

//go:generate moq -out mock_store.go . Interface

// Interface defines methods for a durable key-value store.
// Values are read and written whole.
type Interface interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}
