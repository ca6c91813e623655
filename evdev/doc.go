// Package evdev wraps a single Linux input device node (/dev/input/event*)
// as a non-blocking source of raw input records.
//
// A Device owns exactly one open device node. Records are read in batches
// with a single non-blocking read and decoded from the kernel's
// struct input_event layout. A "no data" result (ReadAgain) is a normal,
// cheap outcome, not an error.
//
// # Resynchronization
//
// When the kernel drops events because a device's buffer overran, it
// delivers a SYN_DROPPED marker. The Device then enters resync mode:
// subsequent records carry the ReadResync status until the terminating
// SYN_REPORT, which is reported with ReadRecord to signal that normal
// reads have resumed. Callers absorb this transparently; it is a mode
// switch, not an error.
package evdev
