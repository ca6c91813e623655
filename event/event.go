package event

// =============================================================================
// Identifiers
// =============================================================================

// DeviceID is the stable per-process identity of a physical input device.
// It is derived from the kernel's short device name (sysname, e.g.
// "event3"), not from a file descriptor or devnode path, so it survives
// fd reuse across add/remove cycles within one process run.
type DeviceID string

// ButtonID identifies a button or key by its raw evdev key code.
type ButtonID uint32

// AxisID identifies a motion axis. Relative axes use the raw evdev code
// directly; absolute axes are offset into a disjoint identity range so
// the two classes never collide numerically.
type AxisID uint32

// WindowID identifies a window in the wider windowing vocabulary.
//
// No type in this module implements it. The input back-end therefore
// cannot construct a window-scoped event; callers must not fabricate one
// from this back-end either.
type WindowID interface {
	windowID()
}

// =============================================================================
// Event Union
// =============================================================================

// Event is the sealed union of semantic events yielded by a Stream.
type Event interface {
	event()
}

// DeviceAdded reports a device that appeared and was opened successfully.
// Devices present before the stream was constructed are seeded silently
// and do not produce this event.
type DeviceAdded struct {
	Device DeviceID
}

// DeviceRemoved reports the removal of a previously known device. Exactly
// one is produced per known removal; removing an unknown device produces
// nothing.
type DeviceRemoved struct {
	Device DeviceID
}

// RawButtonPress reports a key or button transitioning to pressed.
// Auto-repeat transitions are suppressed and never surface as presses.
type RawButtonPress struct {
	Device DeviceID
	Button ButtonID
}

// RawButtonRelease reports a key or button transitioning to released.
type RawButtonRelease struct {
	Device DeviceID
	Button ButtonID
}

// RawMotion reports movement on a single axis.
type RawMotion struct {
	Device DeviceID
	Axis   AxisID
	Value  float64
}

// WindowFocus reports a window focus change. Never produced by this
// back-end.
type WindowFocus struct {
	Window  WindowID
	Focused bool
}

// WindowResize reports a window size change. Never produced by this
// back-end.
type WindowResize struct {
	Window WindowID
	Width  uint32
	Height uint32
}

func (DeviceAdded) event()      {}
func (DeviceRemoved) event()    {}
func (RawButtonPress) event()   {}
func (RawButtonRelease) event() {}
func (RawMotion) event()        {}
func (WindowFocus) event()      {}
func (WindowResize) event()     {}
