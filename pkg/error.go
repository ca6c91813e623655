package pkg

import "errors"

// Input stack errors.
var (
	// ErrClosed indicates the stream or monitor has been closed.
	ErrClosed = errors.New("already closed")

	// ErrNoDevNode indicates a device has no device node to open.
	ErrNoDevNode = errors.New("device has no devnode")

	// ErrDuplicateDevice indicates a device ID is already tracked.
	ErrDuplicateDevice = errors.New("device already tracked")

	// ErrUnknownDevice indicates a device ID is not tracked.
	ErrUnknownDevice = errors.New("device not tracked")

	// ErrUnknownBackend indicates an unrecognized monitor backend name.
	ErrUnknownBackend = errors.New("unknown monitor backend")

	// ErrNotPollable indicates a source does not expose a readiness descriptor.
	ErrNotPollable = errors.New("source not pollable")

	// ErrMonitorFailed indicates the device monitor readiness descriptor
	// became unusable. This is a stream-level failure.
	ErrMonitorFailed = errors.New("device monitor failed")

	// ErrShortRecord indicates a truncated raw input record.
	ErrShortRecord = errors.New("short input record")

	// ErrInvalidParameter indicates an invalid parameter was provided.
	ErrInvalidParameter = errors.New("invalid parameter")
)
