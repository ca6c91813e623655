package monitor

import (
	"fmt"

	"github.com/ardnew/softinput/event"
	"github.com/ardnew/softinput/pkg"
)

// =============================================================================
// Notifications
// =============================================================================

// Action is the kind of hot-plug notification.
type Action uint8

// Hot-plug actions. Actions other than add and remove (change, bind,
// move, ...) surface as ActionUnknown for the caller to log and ignore.
const (
	ActionUnknown Action = iota
	ActionAdd
	ActionRemove
)

// String returns a string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Notification is one hot-plug event for an input device.
type Notification struct {
	Action    Action
	RawAction string         // Verbatim action string, for logging unknowns
	ID        event.DeviceID // Stable short device name (sysname)
	DevNode   string         // Device node path, or "" if the device has none
}

// DeviceInfo describes one currently present device from an enumeration
// pass.
type DeviceInfo struct {
	ID      event.DeviceID
	DevNode string // "" if the device has no node
}

// =============================================================================
// Monitor Contract
// =============================================================================

// Monitor is the readiness-pollable device-discovery capability the
// stream multiplexer depends on.
type Monitor interface {
	// Enumerate lists currently present input devices.
	Enumerate() ([]DeviceInfo, error)

	// Receive returns the next pending notification, or ok=false when
	// none is pending. It never blocks.
	Receive() (note Notification, ok bool, err error)

	// PollFD returns the descriptor to register with a readiness poller.
	PollFD() int

	// Close releases the monitor's resources.
	Close() error
}

// Backend names accepted by New.
const (
	BackendNetlink = "netlink"
	BackendWatcher = "watcher"
)

// New creates a monitor for the named backend. An empty backend selects
// netlink.
func New(backend, deviceDir, sysfsDir string) (Monitor, error) {
	switch backend {
	case "", BackendNetlink:
		return newNetlinkMonitor(deviceDir, sysfsDir)
	case BackendWatcher:
		return newWatcherMonitor(deviceDir)
	default:
		return nil, fmt.Errorf("%w: %q", pkg.ErrUnknownBackend, backend)
	}
}
