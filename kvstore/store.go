// ABOUTME: Store is the injected key-value capability that backs persistent state cells.
// ABOUTME: Absence of a key is reported separately from an empty value; backend failures are StorageUnavailableError.
package kvstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrStorageUnavailable matches any backend failure wrapped by this package.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Store is a flat string key-value store.
type Store interface {
	// Get returns ok=false when the key has never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// StorageUnavailableError reports a failed backend operation.
type StorageUnavailableError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageUnavailableError) Unwrap() error {
	return e.Err
}

func (e *StorageUnavailableError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

func unavailable(op, key string, err error) error {
	return &StorageUnavailableError{Op: op, Key: key, Err: err}
}
