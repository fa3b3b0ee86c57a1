package region

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by repositories. They describe business
// conditions and are mapped to outcomes by the registry.
var (
	// ErrOverlap indicates the candidate box intersects a stored region.
	ErrOverlap = errors.New("region overlaps an existing region")

	// ErrNoRegion indicates no region contains the queried point.
	ErrNoRegion = errors.New("no region at point")

	// ErrNotOwner indicates the actor may not delete the region.
	ErrNotOwner = errors.New("actor does not own region")
)

// ErrStorage matches every StorageError via errors.Is.
var ErrStorage = errors.New("storage failure")

// StorageError reports an infrastructure fault (connectivity, constraint,
// timeout) during an operation. It is never a business outcome.
type StorageError struct {
	// Op names the registry operation, e.g. "register".
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrStorage, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrStorage) true for any StorageError.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
