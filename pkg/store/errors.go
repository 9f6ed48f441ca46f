package store

import "fmt"

// IOError is returned when the filesystem could not be queried.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e IOError) Error() string {
	return fmt.Sprintf("couldn't %s on '%s' - %v", e.Op, e.Path, e.Err)
}

func (e IOError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned when a device id has no device behind it.
type NotFoundError struct {
	DevID uint64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("device %d not found", e.DevID)
}

// ResourceExhaustionError is returned when a query would need an unreasonable
// amount of memory. It is not recoverable.
type ResourceExhaustionError struct {
	What  string
	Count uint64
}

func (e ResourceExhaustionError) Error() string {
	return fmt.Sprintf("not enough memory for %d %s", e.Count, e.What)
}

// PreconditionError is returned when the collected data is inconsistent or
// insufficient to produce a report.
type PreconditionError struct {
	Path   string
	Reason string
}

func (e PreconditionError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s on '%s'", e.Reason, e.Path)
}

// NoAllocationsError is returned when a filesystem reports no chunks at all.
type NoAllocationsError struct {
	Path string
}

func (e NoAllocationsError) Error() string {
	return "No chunks found"
}
