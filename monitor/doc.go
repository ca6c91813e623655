// Package monitor discovers Linux input devices and reports hot-plug
// notifications through a non-blocking, pollable interface.
//
// Two backends implement the Monitor contract:
//
//   - netlink: subscribes to kernel uevents (AF_NETLINK, KOBJECT_UEVENT)
//     and filters for the input subsystem. This is the default and
//     mirrors what udev itself listens to.
//   - watcher: watches the device directory with fsnotify and adapts its
//     channel delivery to a pollable descriptor via a self-pipe. Useful
//     where the uevent socket is unavailable (some containers).
//
// Both expose a readiness descriptor (PollFD) for registration with the
// stream's poller, a non-blocking Receive that consumes at most one
// pending notification, and an Enumerate pass over currently present
// devices used to seed the device table at startup.
package monitor
