package monitor

import (
	"os"
	"path/filepath"

	"github.com/ardnew/softinput/event"
)

// Default discovery directories.
const (
	// DefaultDeviceDir is where the kernel exposes input device nodes.
	DefaultDeviceDir = "/dev/input"

	// DefaultSysfsDir is the sysfs class directory for input devices.
	DefaultSysfsDir = "/sys/class/input"
)

// enumerateSysfs lists input devices registered in the sysfs class
// directory. Entries whose node is missing from the device directory
// (e.g. inputN aggregates) carry an empty DevNode; the stream logs and
// skips those at open.
func enumerateSysfs(sysfsDir, deviceDir string) ([]DeviceInfo, error) {
	entries, err := os.ReadDir(sysfsDir)
	if err != nil {
		return nil, err
	}

	var devices []DeviceInfo
	for _, entry := range entries {
		name := entry.Name()
		info := DeviceInfo{ID: event.DeviceID(name)}

		node := filepath.Join(deviceDir, name)
		if _, err := os.Stat(node); err == nil {
			info.DevNode = node
		}

		devices = append(devices, info)
	}

	return devices, nil
}

// enumerateDeviceDir lists device nodes directly from the device
// directory. Used by the watcher backend, which has no sysfs view.
func enumerateDeviceDir(deviceDir string) ([]DeviceInfo, error) {
	entries, err := os.ReadDir(deviceDir)
	if err != nil {
		return nil, err
	}

	var devices []DeviceInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue // by-id, by-path
		}
		name := entry.Name()
		if !isEventNode(name) {
			continue
		}
		devices = append(devices, DeviceInfo{
			ID:      event.DeviceID(name),
			DevNode: filepath.Join(deviceDir, name),
		})
	}

	return devices, nil
}

// isEventNode reports whether name is an evdev event node (event0,
// event12, ...).
func isEventNode(name string) bool {
	const prefix = "event"
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return false
	}
	for _, c := range name[len(prefix):] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
