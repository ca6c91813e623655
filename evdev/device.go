package evdev

import (
	"errors"

	"github.com/ardnew/softinput/pkg"
	"golang.org/x/sys/unix"
)

// =============================================================================
// Read Modes and Statuses
// =============================================================================

// ReadMode selects normal or resynchronization reads. Callers echo the
// mode implied by the previous ReadStatus; the handle's own overrun state
// is authoritative, so a caller that always passes ReadModeNormal still
// resynchronizes correctly.
type ReadMode int

// Read modes.
const (
	ReadModeNormal ReadMode = iota // Regular event delivery
	ReadModeResync                 // Replaying state after an overrun
)

// ReadStatus is the outcome of one Next call.
type ReadStatus int

// Read statuses.
const (
	ReadAgain  ReadStatus = iota // No more data for this pass
	ReadResync                   // Record delivered in resync mode
	ReadRecord                   // Record delivered normally
)

// String returns a string representation of the read status.
func (s ReadStatus) String() string {
	switch s {
	case ReadAgain:
		return "again"
	case ReadResync:
		return "resync"
	case ReadRecord:
		return "record"
	default:
		return "unknown"
	}
}

// =============================================================================
// Device Handle
// =============================================================================

// readChunkRecords is the number of records fetched per kernel read.
const readChunkRecords = 64

// Device owns one open input device node and its decoding state. It is
// not safe for concurrent use; the stream drives it from a single
// goroutine.
type Device struct {
	fd      int
	path    string
	buf     [RecordSize * readChunkRecords]byte // Kernel read buffer
	partial []byte                              // Trailing bytes of an incomplete record
	pending []Record                            // Decoded, undelivered records
	syncing bool                                // Resync in progress (overrun seen)
	closed  bool

	// read is the raw read operation, injectable for tests.
	read func([]byte) (int, error)
}

// Open opens the device node at path read-only and non-blocking.
func Open(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	return OpenFD(fd, path), nil
}

// OpenFD wraps an already-open descriptor as a Device. The descriptor
// must be non-blocking; the Device takes ownership and closes it.
func OpenFD(fd int, path string) *Device {
	d := &Device{fd: fd, path: path}
	d.read = func(b []byte) (int, error) {
		return unix.Read(d.fd, b)
	}
	return d
}

// Path returns the devnode path the handle was opened from.
func (d *Device) Path() string {
	return d.path
}

// PollFD returns the descriptor to register with a readiness poller.
func (d *Device) PollFD() int {
	return d.fd
}

// Close releases the underlying descriptor. Safe to call more than once.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return unix.Close(d.fd)
}

// Next returns the next raw record, or ReadAgain when the device has no
// more data for this pass. While resynchronizing after an overrun,
// records carry ReadResync; the terminating SYN_REPORT is returned with
// ReadRecord to signal that normal delivery has resumed.
func (d *Device) Next(mode ReadMode) (ReadStatus, Record, error) {
	if d.closed {
		return ReadAgain, Record{}, pkg.ErrClosed
	}

	if len(d.pending) == 0 {
		if err := d.fill(); err != nil {
			if errors.Is(err, unix.EAGAIN) {
				return ReadAgain, Record{}, nil
			}
			return ReadAgain, Record{}, err
		}
		if len(d.pending) == 0 {
			return ReadAgain, Record{}, nil
		}
	}

	rec := d.pending[0]
	d.pending = d.pending[1:]

	switch {
	case rec.Type == EV_SYN && rec.Code == SYN_DROPPED:
		d.syncing = true
		return ReadResync, rec, nil
	case d.syncing:
		if rec.Type == EV_SYN && rec.Code == SYN_REPORT {
			// Overrun replay complete; normal delivery resumes.
			d.syncing = false
			return ReadRecord, rec, nil
		}
		return ReadResync, rec, nil
	default:
		return ReadRecord, rec, nil
	}
}

// fill performs one kernel read and decodes complete records, retaining
// any trailing partial record for the next read.
func (d *Device) fill() error {
	n, err := d.read(d.buf[:])
	if err != nil {
		return err
	}
	if n == 0 {
		// A zero-length read means the node is gone.
		return unix.ENODEV
	}

	data := d.buf[:n]
	if len(d.partial) > 0 {
		data = append(d.partial, data...)
	}

	for len(data) >= RecordSize {
		rec, err := DecodeRecord(data[:RecordSize])
		if err != nil {
			return err
		}
		d.pending = append(d.pending, rec)
		data = data[RecordSize:]
	}

	d.partial = append(d.partial[:0], data...)
	return nil
}
