//go:build linux

package stream

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardnew/softinput/config"
	"github.com/ardnew/softinput/evdev"
	"github.com/ardnew/softinput/event"
	"github.com/ardnew/softinput/monitor"
	"github.com/ardnew/softinput/pkg"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// =============================================================================
// Device Handles
// =============================================================================

// deviceHandle is the capability a Stream needs from an open device.
type deviceHandle interface {
	Next(mode evdev.ReadMode) (evdev.ReadStatus, evdev.Record, error)
	PollFD() int
	Path() string
	Close() error
}

// openFunc opens a device node, injectable for tests.
type openFunc func(path string) (deviceHandle, error)

// entry is the per-device multiplexer state.
type entry struct {
	dev   deviceHandle
	mode  evdev.ReadMode // Mode implied by the previous read status
	ready bool           // Readiness observed, not yet drained to EAGAIN
}

// =============================================================================
// Stream
// =============================================================================

// Stream multiplexes the device monitor and every open device into one
// ordered sequence of semantic events. It is not safe for concurrent
// use; drive it from a single goroutine.
type Stream struct {
	id      uuid.UUID
	mon     monitor.Monitor
	poller  *poller
	devices map[event.DeviceID]*entry
	fds     map[int]event.DeviceID // Poll fd to device identity
	buffer  *queue
	open    openFunc

	// monReady latches monitor readiness across passes; the one-shot
	// registration reports it only once per arming, so it must not be
	// lost when a pass ends with buffered events still pending.
	monReady bool
	closed   bool
}

// New creates a Stream from cfg, seeding it with the devices currently
// present. Seeded devices do not produce DeviceAdded events. A nil cfg
// uses the defaults.
func New(cfg *config.Config) (*Stream, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	mon, err := monitor.New(cfg.Monitor.Backend, cfg.Monitor.DeviceDir, cfg.Monitor.SysfsDir)
	if err != nil {
		return nil, fmt.Errorf("creating device monitor: %w", err)
	}

	s, err := newStream(mon, cfg, func(path string) (deviceHandle, error) {
		return evdev.Open(path)
	})
	if err != nil {
		mon.Close()
		return nil, err
	}
	return s, nil
}

// newStream wires a Stream around an existing monitor.
func newStream(mon monitor.Monitor, cfg *config.Config, open openFunc) (*Stream, error) {
	p, err := newPoller(cfg.Stream.MaxPollEvents)
	if err != nil {
		return nil, fmt.Errorf("creating poller: %w", err)
	}

	s := &Stream{
		id:      uuid.New(),
		mon:     mon,
		poller:  p,
		devices: make(map[event.DeviceID]*entry),
		fds:     make(map[int]event.DeviceID),
		buffer:  newQueue(cfg.Stream.BufferCapacity),
		open:    open,
	}

	if err := p.add(mon.PollFD(), true); err != nil {
		p.close()
		return nil, fmt.Errorf("registering monitor descriptor: %w", err)
	}

	infos, err := mon.Enumerate()
	if err != nil {
		p.close()
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	for _, info := range infos {
		s.openDevice(info.ID, info.DevNode)
	}

	pkg.LogInfo(pkg.ComponentStream, "stream started",
		"stream", s.id,
		"devices", len(s.devices))
	return s, nil
}

// ID returns the stream's unique instance identifier.
func (s *Stream) ID() uuid.UUID {
	return s.id
}

// Devices returns the identities of all currently open devices, in
// unspecified order.
func (s *Stream) Devices() []event.DeviceID {
	ids := make([]event.DeviceID, 0, len(s.devices))
	for id := range s.devices {
		ids = append(ids, id)
	}
	return ids
}

// =============================================================================
// Polling
// =============================================================================

// Poll runs one multiplexing pass and returns the oldest pending event,
// or ok=false when no source is ready and nothing is buffered. It never
// blocks; pair it with Wait to sleep between passes.
//
// Within a pass, device records are buffered before monitor
// notifications. Order across devices follows table iteration order,
// which is unspecified.
func (s *Stream) Poll() (event.Event, bool, error) {
	if s.closed {
		return nil, false, pkg.ErrClosed
	}

	if err := s.gather(0); err != nil {
		return nil, false, fmt.Errorf("polling readiness: %w", err)
	}

	if s.buffer.len() == 0 && !s.monReady && !s.anyDeviceReady() {
		return nil, false, nil
	}

	for id, ent := range s.devices {
		if ent.ready {
			s.drainDevice(id, ent)
		}
	}

	if s.monReady {
		if err := s.drainMonitor(); err != nil {
			return nil, false, err
		}
	}

	if e, ok := s.buffer.pop(); ok {
		return e, true, nil
	}

	// Both drains produced nothing deliverable; the monitor's one-shot
	// interest was consumed above, so re-arm it before suspending.
	if err := s.rearmMonitor(); err != nil {
		return nil, false, err
	}
	return nil, false, nil
}

// Wait blocks until the monitor or any device becomes ready, or until
// timeout elapses. A negative timeout waits indefinitely. It returns
// immediately when an event is already buffered or readiness is already
// latched.
func (s *Stream) Wait(timeout time.Duration) error {
	if s.closed {
		return pkg.ErrClosed
	}
	if s.buffer.len() > 0 || s.monReady || s.anyDeviceReady() {
		return nil
	}
	if err := s.gather(timeout); err != nil {
		return fmt.Errorf("waiting for readiness: %w", err)
	}
	return nil
}

// Close releases every device handle, the monitor, and the poller. Safe
// to call more than once.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	for id := range s.devices {
		s.closeDevice(id)
	}

	err := s.mon.Close()
	if perr := s.poller.close(); err == nil {
		err = perr
	}

	pkg.LogInfo(pkg.ComponentStream, "stream closed", "stream", s.id)
	return err
}

// gather collects readiness from the poller and latches it into the
// monitor flag and per-device flags.
func (s *Stream) gather(timeout time.Duration) error {
	events, err := s.poller.wait(timeout)
	if err != nil {
		return err
	}

	for _, ev := range events {
		if !readable(ev) {
			continue
		}
		fd := int(ev.Fd)
		if fd == s.mon.PollFD() {
			s.monReady = true
			continue
		}
		if id, ok := s.fds[fd]; ok {
			s.devices[id].ready = true
		}
	}
	return nil
}

func (s *Stream) anyDeviceReady() bool {
	for _, ent := range s.devices {
		if ent.ready {
			return true
		}
	}
	return false
}

// rearmMonitor re-registers the monitor's one-shot readiness interest.
// Failure here would silently stall all hot-plug delivery, so it is a
// stream-level error.
func (s *Stream) rearmMonitor() error {
	s.monReady = false
	if err := s.poller.rearm(s.mon.PollFD(), true); err != nil {
		return fmt.Errorf("%w: re-arming readiness: %v", pkg.ErrMonitorFailed, err)
	}
	return nil
}

// =============================================================================
// Draining
// =============================================================================

// drainDevice reads records from one device until it reports EAGAIN,
// pushing translated events into the buffer. Read failures are isolated
// to the device: a vanished node is removed here, emitting the one
// DeviceRemoved the removal gets (the trailing monitor notification then
// finds it unknown and no-ops); any other error is logged and the device
// is skipped for this pass.
func (s *Stream) drainDevice(id event.DeviceID, ent *entry) {
	for {
		status, rec, err := ent.dev.Next(ent.mode)
		if err != nil {
			if errors.Is(err, unix.ENODEV) {
				pkg.LogDebug(pkg.ComponentStream, "device vanished",
					"stream", s.id,
					"device", id)
				if s.closeDevice(id) {
					s.buffer.push(event.DeviceRemoved{Device: id})
				}
				return
			}
			pkg.LogWarn(pkg.ComponentStream, "device read failed",
				"stream", s.id,
				"device", id,
				"error", err)
			ent.ready = false
			return
		}

		switch status {
		case evdev.ReadAgain:
			ent.ready = false
			return
		case evdev.ReadResync:
			ent.mode = evdev.ReadModeResync
		case evdev.ReadRecord:
			ent.mode = evdev.ReadModeNormal
		}

		if e, ok := translate(id, rec); ok {
			s.buffer.push(e)
		}
	}
}

// drainMonitor consumes every pending hot-plug notification, opening and
// closing devices and buffering DeviceAdded/DeviceRemoved events. A
// monitor receive failure is a stream-level error.
func (s *Stream) drainMonitor() error {
	for {
		note, ok, err := s.mon.Receive()
		if err != nil {
			return fmt.Errorf("%w: %w", pkg.ErrMonitorFailed, err)
		}
		if !ok {
			return nil
		}

		switch note.Action {
		case monitor.ActionAdd:
			if s.openDevice(note.ID, note.DevNode) {
				s.buffer.push(event.DeviceAdded{Device: note.ID})
			}
		case monitor.ActionRemove:
			if s.closeDevice(note.ID) {
				s.buffer.push(event.DeviceRemoved{Device: note.ID})
			}
		default:
			pkg.LogDebug(pkg.ComponentMonitor, "ignoring notification",
				"action", note.RawAction,
				"device", note.ID)
		}
	}
}

// =============================================================================
// Device Table
// =============================================================================

// openDevice opens and registers a device, reporting whether it became
// tracked. Duplicates, node-less devices, and open failures all report
// false and are logged; none is fatal.
func (s *Stream) openDevice(id event.DeviceID, devnode string) bool {
	if _, exists := s.devices[id]; exists {
		pkg.LogDebug(pkg.ComponentStream, "ignoring duplicate device",
			"stream", s.id,
			"device", id)
		return false
	}
	if devnode == "" {
		pkg.LogDebug(pkg.ComponentStream, "device has no devnode",
			"stream", s.id,
			"device", id)
		return false
	}

	dev, err := s.open(devnode)
	if err != nil {
		pkg.LogDebug(pkg.ComponentStream, "unable to open device",
			"stream", s.id,
			"device", id,
			"path", devnode,
			"error", err)
		return false
	}

	if err := s.poller.add(dev.PollFD(), false); err != nil {
		pkg.LogWarn(pkg.ComponentStream, "unable to register device",
			"stream", s.id,
			"device", id,
			"error", err)
		dev.Close()
		return false
	}

	s.devices[id] = &entry{dev: dev}
	s.fds[dev.PollFD()] = id
	pkg.LogDebug(pkg.ComponentStream, "device opened",
		"stream", s.id,
		"device", id,
		"path", devnode)
	return true
}

// closeDevice unregisters and closes a tracked device, reporting whether
// it was tracked.
func (s *Stream) closeDevice(id event.DeviceID) bool {
	ent, exists := s.devices[id]
	if !exists {
		pkg.LogDebug(pkg.ComponentStream, "ignoring unknown device removal",
			"stream", s.id,
			"device", id)
		return false
	}

	fd := ent.dev.PollFD()
	if err := s.poller.remove(fd); err != nil {
		pkg.LogDebug(pkg.ComponentStream, "unable to unregister device",
			"stream", s.id,
			"device", id,
			"error", err)
	}
	delete(s.fds, fd)
	delete(s.devices, id)
	if err := ent.dev.Close(); err != nil {
		pkg.LogDebug(pkg.ComponentStream, "unable to close device",
			"stream", s.id,
			"device", id,
			"error", err)
	}

	pkg.LogDebug(pkg.ComponentStream, "device closed",
		"stream", s.id,
		"device", id)
	return true
}

// Interface compliance of the concrete device handle.
var _ deviceHandle = (*evdev.Device)(nil)
