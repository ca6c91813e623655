// Package stream multiplexes a dynamically changing set of input devices
// into one ordered, pollable sequence of semantic events.
//
// A Stream owns a device monitor, an epoll-based readiness poller, the
// table of open device handles (keyed by stable device identity, not
// file descriptor), and a FIFO buffer of pending events. It is driven
// cooperatively from a single goroutine: every read is non-blocking, and
// Poll reports "not ready" instead of blocking.
//
// # Poll pass
//
// Each Poll call executes, in order: a zero-timeout readiness check, a
// drain of every open device (raw records through the translator into
// the buffer), a drain of pending monitor notifications (device
// open/close, producing DeviceAdded/DeviceRemoved), and finally yields
// the oldest buffered event. When the buffer is empty after both drains,
// the monitor's readiness interest is re-armed and Poll reports not
// ready; Wait then blocks until any source becomes ready again.
//
// Within one pass all device records are buffered before any monitor
// notification; the buffer is strictly FIFO and never reordered. Order
// across devices follows table iteration order, which is unspecified.
//
// Per-device failures (open errors, read errors, unknown records) are
// logged and isolated; they never surface as stream errors. Only
// construction failures and poll-infrastructure failures terminate the
// stream.
package stream
