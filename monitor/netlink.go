//go:build linux

package monitor

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ardnew/softinput/event"
	"golang.org/x/sys/unix"
)

// =============================================================================
// UEvent Types
// =============================================================================

// ueventBufferSize is the receive buffer for one netlink uevent message.
const ueventBufferSize = 2048

// uevent represents a parsed netlink uevent.
type uevent struct {
	action    string // ACTION value (or the action@devpath header)
	devpath   string // DEVPATH value
	subsystem string // SUBSYSTEM value
	devname   string // DEVNAME value, relative to /dev (e.g. "input/event5")
}

// sysname returns the kernel's short device name, the final component of
// the devpath.
func (e uevent) sysname() string {
	return filepath.Base(e.devpath)
}

// devnode returns the absolute device node path, or "" when the uevent
// carries no DEVNAME.
func (e uevent) devnode() string {
	if e.devname == "" {
		return ""
	}
	if filepath.IsAbs(e.devname) {
		return e.devname
	}
	return filepath.Join("/dev", e.devname)
}

// =============================================================================
// Netlink Monitor
// =============================================================================

// netlinkMonitor receives input-subsystem uevents from the kernel
// broadcast group.
type netlinkMonitor struct {
	fd        int                    // Netlink socket file descriptor
	buf       [ueventBufferSize]byte // Buffer for receiving events
	deviceDir string                 // Device node directory (/dev/input)
	sysfsDir  string                 // Class directory (/sys/class/input)
	closed    bool
}

// newNetlinkMonitor creates a monitor bound to the kernel uevent group.
func newNetlinkMonitor(deviceDir, sysfsDir string) (*netlinkMonitor, error) {
	fd, err := unix.Socket(
		unix.AF_NETLINK,
		unix.SOCK_DGRAM|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK,
		unix.NETLINK_KOBJECT_UEVENT,
	)
	if err != nil {
		return nil, fmt.Errorf("creating uevent socket: %w", err)
	}

	addr := unix.SockaddrNetlink{
		Family: unix.AF_NETLINK,
		Groups: 1, // Kernel broadcast group
	}
	if err := unix.Bind(fd, &addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("binding uevent socket: %w", err)
	}

	return &netlinkMonitor{
		fd:        fd,
		deviceDir: deviceDir,
		sysfsDir:  sysfsDir,
	}, nil
}

// PollFD returns the netlink socket descriptor for poller registration.
func (m *netlinkMonitor) PollFD() int {
	return m.fd
}

// Close shuts down the uevent socket. Safe to call more than once.
func (m *netlinkMonitor) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	return unix.Close(m.fd)
}

// Receive consumes pending uevents until it finds one for the input
// subsystem, then reports it. Returns ok=false when no data is pending.
func (m *netlinkMonitor) Receive() (Notification, bool, error) {
	for {
		n, err := unix.Read(m.fd, m.buf[:])
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				return Notification{}, false, nil
			}
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return Notification{}, false, fmt.Errorf("reading uevent socket: %w", err)
		}
		if n <= 0 {
			return Notification{}, false, nil
		}

		evt := parseUEvent(m.buf[:n])
		if evt.subsystem != "input" {
			continue
		}

		note := Notification{
			RawAction: evt.action,
			ID:        event.DeviceID(evt.sysname()),
			DevNode:   evt.devnode(),
		}
		switch evt.action {
		case "add":
			note.Action = ActionAdd
		case "remove":
			note.Action = ActionRemove
		default:
			note.Action = ActionUnknown
		}
		return note, true, nil
	}
}

// Enumerate lists present input devices from the sysfs class directory,
// resolving device nodes under the device directory when they exist.
func (m *netlinkMonitor) Enumerate() ([]DeviceInfo, error) {
	return enumerateSysfs(m.sysfsDir, m.deviceDir)
}

// =============================================================================
// UEvent Parsing
// =============================================================================

// parseUEvent parses a netlink uevent message into its relevant fields.
func parseUEvent(data []byte) uevent {
	evt := uevent{}

	// Messages are null-terminated KEY=VALUE strings, preceded by an
	// "action@devpath" header line.
	lines := bytes.Split(data, []byte{0})

	for _, line := range lines {
		if len(line) == 0 {
			continue
		}

		s := string(line)

		idx := strings.IndexByte(s, '=')
		if idx < 0 {
			if at := strings.IndexByte(s, '@'); at > 0 {
				evt.action = s[:at]
				evt.devpath = s[at+1:]
			}
			continue
		}

		key := s[:idx]
		value := s[idx+1:]

		switch key {
		case "ACTION":
			evt.action = value
		case "DEVPATH":
			evt.devpath = value
		case "SUBSYSTEM":
			evt.subsystem = value
		case "DEVNAME":
			evt.devname = value
		}
	}

	return evt
}

// Ensure netlinkMonitor implements Monitor.
var _ Monitor = (*netlinkMonitor)(nil)
