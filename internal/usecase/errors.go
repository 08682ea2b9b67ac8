package usecase

import "fmt"

// UpstreamError reports a failure of the external headline feed.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("headline feed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// StorageError reports a failure of the data store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
