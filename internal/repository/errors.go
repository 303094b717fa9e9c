package repository

import "errors"

var (
	ErrKeyNotFound        = errors.New("key not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrStorageFailed      = errors.New("storage operation failed")
)
