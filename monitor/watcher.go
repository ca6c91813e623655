//go:build linux

package monitor

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/ardnew/softinput/event"
	"github.com/ardnew/softinput/pkg"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/sys/unix"
)

// watcherMonitor adapts fsnotify directory watching to the pollable
// Monitor contract. fsnotify delivers on channels from its own goroutine;
// a self-pipe carries readiness to the stream's poller, with one pipe
// byte per queued notification.
type watcherMonitor struct {
	watcher   *fsnotify.Watcher
	deviceDir string

	pipeR int // Readiness descriptor handed to the poller
	pipeW int

	mu     sync.Mutex
	queue  []Notification
	done   chan struct{}
	closed bool
}

// newWatcherMonitor creates a monitor watching the device directory.
func newWatcherMonitor(deviceDir string) (*watcherMonitor, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(deviceDir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", deviceDir, err)
	}

	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		w.Close()
		return nil, fmt.Errorf("creating readiness pipe: %w", err)
	}

	m := &watcherMonitor{
		watcher:   w,
		deviceDir: deviceDir,
		pipeR:     p[0],
		pipeW:     p[1],
		done:      make(chan struct{}),
	}
	go m.run()
	return m, nil
}

// PollFD returns the read end of the self-pipe.
func (m *watcherMonitor) PollFD() int {
	return m.pipeR
}

// Close stops the watch goroutine and releases the pipe. Safe to call
// more than once.
func (m *watcherMonitor) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.done)
	m.mu.Unlock()

	err := m.watcher.Close()
	unix.Close(m.pipeW)
	unix.Close(m.pipeR)
	return err
}

// Receive pops one queued notification and consumes its pipe token.
func (m *watcherMonitor) Receive() (Notification, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) == 0 {
		return Notification{}, false, nil
	}
	note := m.queue[0]
	m.queue = m.queue[1:]

	var token [1]byte
	unix.Read(m.pipeR, token[:]) // Drain one readiness token; EAGAIN is fine

	return note, true, nil
}

// Enumerate lists event nodes from the device directory.
func (m *watcherMonitor) Enumerate() ([]DeviceInfo, error) {
	return enumerateDeviceDir(m.deviceDir)
}

// run pumps fsnotify events into the queue until closed.
func (m *watcherMonitor) run() {
	for {
		select {
		case <-m.done:
			return

		case ev, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			name := filepath.Base(ev.Name)
			if !isEventNode(name) {
				continue
			}

			note := Notification{
				ID:      event.DeviceID(name),
				DevNode: ev.Name,
			}
			switch {
			case ev.Op&fsnotify.Create != 0:
				note.Action = ActionAdd
				note.RawAction = "add"
			case ev.Op&fsnotify.Remove != 0:
				note.Action = ActionRemove
				note.RawAction = "remove"
			default:
				continue
			}
			m.push(note)

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			pkg.LogWarn(pkg.ComponentMonitor, "watch error", "error", err)
		}
	}
}

// push queues a notification and signals readiness on the pipe.
func (m *watcherMonitor) push(note Notification) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.queue = append(m.queue, note)
	m.mu.Unlock()

	var token = [1]byte{1}
	unix.Write(m.pipeW, token[:]) // A full pipe already signals readiness
}

// Ensure watcherMonitor implements Monitor.
var _ Monitor = (*watcherMonitor)(nil)
