//go:build linux

package stream

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// poller wraps an epoll instance for readiness multiplexing. The monitor
// descriptor is registered one-shot so its interest must be explicitly
// re-armed after each consumed readiness; device descriptors are
// level-triggered.
type poller struct {
	epfd   int
	events []unix.EpollEvent
}

// newPoller creates an epoll instance sized for maxEvents per wait.
func newPoller(maxEvents int) (*poller, error) {
	if maxEvents <= 0 {
		maxEvents = 1
	}

	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}

	return &poller{
		epfd:   epfd,
		events: make([]unix.EpollEvent, maxEvents),
	}, nil
}

// add registers fd for read readiness.
func (p *poller) add(fd int, oneshot bool) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
		Events: readEvents(oneshot),
		Fd:     int32(fd),
	})
}

// rearm re-registers read interest for an already-added fd. Required
// after a one-shot registration fires.
func (p *poller) rearm(fd int, oneshot bool) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{
		Events: readEvents(oneshot),
		Fd:     int32(fd),
	})
}

// remove deletes fd from the interest list.
func (p *poller) remove(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// wait collects ready descriptors. A negative timeout waits
// indefinitely; zero returns immediately.
func (p *poller) wait(timeout time.Duration) ([]unix.EpollEvent, error) {
	msec := -1
	if timeout >= 0 {
		msec = int(timeout / time.Millisecond)
	}

	for {
		n, err := unix.EpollWait(p.epfd, p.events, msec)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return nil, err
		}
		return p.events[:n], nil
	}
}

// close releases the epoll instance.
func (p *poller) close() error {
	return unix.Close(p.epfd)
}

// readEvents builds the event mask for read interest. Errors and hangups
// are always reported so a dead descriptor gets drained and released.
func readEvents(oneshot bool) uint32 {
	events := uint32(unix.EPOLLIN)
	if oneshot {
		events |= unix.EPOLLONESHOT
	}
	return events
}

// readable reports whether an epoll event indicates the descriptor can
// be read (or has failed and should be read to surface the error).
func readable(ev unix.EpollEvent) bool {
	return ev.Events&(unix.EPOLLIN|unix.EPOLLERR|unix.EPOLLHUP) != 0
}
