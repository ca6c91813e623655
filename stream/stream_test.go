//go:build linux

package stream

import (
	"errors"
	"testing"

	"github.com/ardnew/softinput/config"
	"github.com/ardnew/softinput/evdev"
	"github.com/ardnew/softinput/event"
	"github.com/ardnew/softinput/monitor"
	"github.com/ardnew/softinput/pkg"
	"golang.org/x/sys/unix"
)

// =============================================================================
// Fixtures
// =============================================================================

// fakeMonitor is a scriptable monitor.Monitor backed by a self-pipe so
// the stream's poller observes queued notifications as fd readiness.
type fakeMonitor struct {
	infos   []monitor.DeviceInfo
	notes   []monitor.Notification
	recvErr error
	pipeR   int
	pipeW   int
	closed  bool
}

var _ monitor.Monitor = (*fakeMonitor)(nil)

func newFakeMonitor(t *testing.T, infos ...monitor.DeviceInfo) *fakeMonitor {
	t.Helper()
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		t.Fatalf("pipe2: %v", err)
	}
	m := &fakeMonitor{infos: infos, pipeR: p[0], pipeW: p[1]}
	t.Cleanup(func() { m.Close() })
	return m
}

func (m *fakeMonitor) Enumerate() ([]monitor.DeviceInfo, error) {
	return m.infos, nil
}

func (m *fakeMonitor) Receive() (monitor.Notification, bool, error) {
	if m.recvErr != nil {
		return monitor.Notification{}, false, m.recvErr
	}
	if len(m.notes) == 0 {
		return monitor.Notification{}, false, nil
	}
	note := m.notes[0]
	m.notes = m.notes[1:]
	var b [1]byte
	unix.Read(m.pipeR, b[:])
	return note, true, nil
}

func (m *fakeMonitor) PollFD() int { return m.pipeR }

func (m *fakeMonitor) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	unix.Close(m.pipeR)
	unix.Close(m.pipeW)
	return nil
}

// notify queues a notification and signals the readiness pipe.
func (m *fakeMonitor) notify(t *testing.T, action monitor.Action, id event.DeviceID, devnode string) {
	t.Helper()
	m.notes = append(m.notes, monitor.Notification{
		Action:  action,
		ID:      id,
		DevNode: devnode,
	})
	if _, err := unix.Write(m.pipeW, []byte{0}); err != nil {
		t.Fatalf("notify: %v", err)
	}
}

// harness is a Stream whose devices read from test-owned pipes.
type harness struct {
	s       *Stream
	mon     *fakeMonitor
	writers map[string]int // Devnode path to pipe write end
}

func newHarness(t *testing.T, infos ...monitor.DeviceInfo) *harness {
	t.Helper()

	h := &harness{
		mon:     newFakeMonitor(t, infos...),
		writers: make(map[string]int),
	}
	open := func(path string) (deviceHandle, error) {
		var p [2]int
		if err := unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
			return nil, err
		}
		h.writers[path] = p[1]
		return evdev.OpenFD(p[0], path), nil
	}

	s, err := newStream(h.mon, config.Default(), open)
	if err != nil {
		t.Fatalf("newStream() error = %v", err)
	}
	h.s = s
	t.Cleanup(func() {
		s.Close()
		for _, w := range h.writers {
			unix.Close(w)
		}
	})
	return h
}

// write delivers raw records to the device opened from path.
func (h *harness) write(t *testing.T, path string, recs ...evdev.Record) {
	t.Helper()
	w, ok := h.writers[path]
	if !ok {
		t.Fatalf("no device opened from %q", path)
	}
	for _, rec := range recs {
		b, err := rec.MarshalBinary()
		if err != nil {
			t.Fatal(err)
		}
		if _, err := unix.Write(w, b); err != nil {
			t.Fatalf("writing record: %v", err)
		}
	}
}

// poll asserts that Poll yields an event.
func (h *harness) poll(t *testing.T) event.Event {
	t.Helper()
	e, ok, err := h.s.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if !ok {
		t.Fatal("Poll() reported not ready, want an event")
	}
	return e
}

// pollNone asserts that Poll reports not ready.
func (h *harness) pollNone(t *testing.T) {
	t.Helper()
	e, ok, err := h.s.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if ok {
		t.Fatalf("Poll() = %#v, want not ready", e)
	}
}

func key(code uint16, value int32) evdev.Record {
	return evdev.Record{Type: evdev.EV_KEY, Code: code, Value: value}
}

func rel(code uint16, value int32) evdev.Record {
	return evdev.Record{Type: evdev.EV_REL, Code: code, Value: value}
}

func syn(code uint16) evdev.Record {
	return evdev.Record{Type: evdev.EV_SYN, Code: code}
}

// =============================================================================
// Tests
// =============================================================================

func TestStream_SeededDeviceProducesNoAddEvent(t *testing.T) {
	h := newHarness(t, monitor.DeviceInfo{ID: "event3", DevNode: "devA"})

	if got := h.s.Devices(); len(got) != 1 || got[0] != "event3" {
		t.Fatalf("Devices() = %v, want [event3]", got)
	}

	// Present-at-startup devices are seeded silently.
	h.pollNone(t)

	h.write(t, "devA", key(30, evdev.KeyValuePress), syn(evdev.SYN_REPORT))
	if got := h.poll(t); got != (event.RawButtonPress{Device: "event3", Button: 30}) {
		t.Errorf("Poll() = %#v, want press of 30", got)
	}

	h.write(t, "devA", key(30, evdev.KeyValueRelease), syn(evdev.SYN_REPORT))
	if got := h.poll(t); got != (event.RawButtonRelease{Device: "event3", Button: 30}) {
		t.Errorf("Poll() = %#v, want release of 30", got)
	}

	h.pollNone(t)
}

func TestStream_HotplugAdd(t *testing.T) {
	h := newHarness(t)

	h.mon.notify(t, monitor.ActionAdd, "event5", "devB")
	if got := h.poll(t); got != (event.DeviceAdded{Device: "event5"}) {
		t.Fatalf("Poll() = %#v, want DeviceAdded event5", got)
	}

	// The device is live immediately after its add event.
	h.write(t, "devB", rel(0, 4), syn(evdev.SYN_REPORT))
	if got := h.poll(t); got != (event.RawMotion{Device: "event5", Axis: 0, Value: 4}) {
		t.Errorf("Poll() = %#v, want motion on axis 0", got)
	}
}

func TestStream_DuplicateAddKeepsExistingHandle(t *testing.T) {
	h := newHarness(t, monitor.DeviceInfo{ID: "event3", DevNode: "devA"})

	h.mon.notify(t, monitor.ActionAdd, "event3", "devA2")
	h.pollNone(t)

	if got := h.s.Devices(); len(got) != 1 {
		t.Fatalf("Devices() = %v, want just event3", got)
	}
	if _, opened := h.writers["devA2"]; opened {
		t.Error("duplicate add opened a second handle")
	}

	// The original handle still delivers.
	h.write(t, "devA", key(30, evdev.KeyValuePress), syn(evdev.SYN_REPORT))
	if got := h.poll(t); got != (event.RawButtonPress{Device: "event3", Button: 30}) {
		t.Errorf("Poll() = %#v, want press from original handle", got)
	}
}

func TestStream_RemoveKnownAndUnknown(t *testing.T) {
	h := newHarness(t, monitor.DeviceInfo{ID: "event3", DevNode: "devA"})

	// Unknown removal is a silent no-op.
	h.mon.notify(t, monitor.ActionRemove, "event9", "")
	h.pollNone(t)

	h.mon.notify(t, monitor.ActionRemove, "event3", "")
	if got := h.poll(t); got != (event.DeviceRemoved{Device: "event3"}) {
		t.Fatalf("Poll() = %#v, want DeviceRemoved event3", got)
	}
	if got := h.s.Devices(); len(got) != 0 {
		t.Errorf("Devices() after removal = %v, want none", got)
	}

	h.pollNone(t)
}

func TestStream_DeviceRecordsBeforeNotifications(t *testing.T) {
	h := newHarness(t, monitor.DeviceInfo{ID: "event3", DevNode: "devA"})

	// Both sources pending in the same pass: raw records must come out
	// before the hot-plug event.
	h.write(t, "devA", key(30, evdev.KeyValuePress), syn(evdev.SYN_REPORT))
	h.mon.notify(t, monitor.ActionAdd, "event5", "devB")

	if got := h.poll(t); got != (event.RawButtonPress{Device: "event3", Button: 30}) {
		t.Fatalf("Poll() #1 = %#v, want the raw press first", got)
	}
	if got := h.poll(t); got != (event.DeviceAdded{Device: "event5"}) {
		t.Fatalf("Poll() #2 = %#v, want DeviceAdded second", got)
	}
}

func TestStream_FIFOWithinDevice(t *testing.T) {
	h := newHarness(t, monitor.DeviceInfo{ID: "event3", DevNode: "devA"})

	h.write(t, "devA",
		key(30, evdev.KeyValuePress),
		rel(1, -2),
		syn(evdev.SYN_REPORT),
		key(30, evdev.KeyValueRelease),
		syn(evdev.SYN_REPORT),
	)

	want := []event.Event{
		event.RawButtonPress{Device: "event3", Button: 30},
		event.RawMotion{Device: "event3", Axis: 1, Value: -2},
		event.RawButtonRelease{Device: "event3", Button: 30},
	}
	for i, w := range want {
		if got := h.poll(t); got != w {
			t.Errorf("Poll() #%d = %#v, want %#v", i, got, w)
		}
	}
	h.pollNone(t)
}

func TestStream_AutorepeatSuppressed(t *testing.T) {
	h := newHarness(t, monitor.DeviceInfo{ID: "event3", DevNode: "devA"})

	h.write(t, "devA", key(30, evdev.KeyValueRepeat), syn(evdev.SYN_REPORT))
	h.pollNone(t)
}

func TestStream_OverrunReplayDelivered(t *testing.T) {
	h := newHarness(t, monitor.DeviceInfo{ID: "event3", DevNode: "devA"})

	// An overrun mid-stream: the replayed state records after SYN_DROPPED
	// are still translated and delivered in order.
	h.write(t, "devA",
		key(30, evdev.KeyValuePress),
		syn(evdev.SYN_DROPPED),
		key(31, evdev.KeyValuePress),
		syn(evdev.SYN_REPORT),
		key(31, evdev.KeyValueRelease),
		syn(evdev.SYN_REPORT),
	)

	want := []event.Event{
		event.RawButtonPress{Device: "event3", Button: 30},
		event.RawButtonPress{Device: "event3", Button: 31},
		event.RawButtonRelease{Device: "event3", Button: 31},
	}
	for i, w := range want {
		if got := h.poll(t); got != w {
			t.Errorf("Poll() #%d = %#v, want %#v", i, got, w)
		}
	}
}

func TestStream_VanishedDeviceRemovedOnce(t *testing.T) {
	h := newHarness(t, monitor.DeviceInfo{ID: "event3", DevNode: "devA"})

	// Closing the write end makes reads return EOF, which the handle
	// reports as a gone device.
	unix.Close(h.writers["devA"])
	delete(h.writers, "devA")

	if got := h.poll(t); got != (event.DeviceRemoved{Device: "event3"}) {
		t.Fatalf("Poll() = %#v, want DeviceRemoved event3", got)
	}
	if got := h.s.Devices(); len(got) != 0 {
		t.Errorf("Devices() = %v, want none", got)
	}

	// The trailing monitor notification finds nothing to remove.
	h.mon.notify(t, monitor.ActionRemove, "event3", "")
	h.pollNone(t)
}

func TestStream_MonitorFailureIsStreamLevel(t *testing.T) {
	h := newHarness(t)

	h.mon.notify(t, monitor.ActionAdd, "event5", "devB")
	h.mon.recvErr = errors.New("socket torn down")

	_, _, err := h.s.Poll()
	if !errors.Is(err, pkg.ErrMonitorFailed) {
		t.Errorf("Poll() error = %v, want ErrMonitorFailed", err)
	}
}

func TestStream_WaitReturnsOnBufferedEvent(t *testing.T) {
	h := newHarness(t, monitor.DeviceInfo{ID: "event3", DevNode: "devA"})

	h.write(t, "devA", key(30, evdev.KeyValuePress), syn(evdev.SYN_REPORT))

	// Readiness is pending, so Wait must not block.
	if err := h.s.Wait(-1); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if got := h.poll(t); got != (event.RawButtonPress{Device: "event3", Button: 30}) {
		t.Errorf("Poll() = %#v, want press of 30", got)
	}

	// Nothing pending: a finite timeout elapses without error.
	if err := h.s.Wait(0); err != nil {
		t.Fatalf("Wait(0) error = %v", err)
	}
}

func TestStream_ClosedOperationsFail(t *testing.T) {
	h := newHarness(t, monitor.DeviceInfo{ID: "event3", DevNode: "devA"})

	if err := h.s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := h.s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if _, _, err := h.s.Poll(); !errors.Is(err, pkg.ErrClosed) {
		t.Errorf("Poll() after close error = %v, want ErrClosed", err)
	}
	if err := h.s.Wait(0); !errors.Is(err, pkg.ErrClosed) {
		t.Errorf("Wait() after close error = %v, want ErrClosed", err)
	}
}

func TestStream_OpenFailureIsIsolated(t *testing.T) {
	h := newHarness(t)

	// No devnode: nothing to open, no event, not fatal.
	h.mon.notify(t, monitor.ActionAdd, "input7", "")
	h.pollNone(t)
	if got := h.s.Devices(); len(got) != 0 {
		t.Errorf("Devices() = %v, want none", got)
	}
}
