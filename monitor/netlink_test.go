//go:build linux

package monitor

import (
	"testing"
)

// =============================================================================
// uevent Parsing Tests
// =============================================================================

func TestParseUEvent_Add(t *testing.T) {
	// Simulated kernel uevent for an input device add
	data := []byte(
		"add@/devices/platform/i8042/serio0/input/input5/event5\x00" +
			"ACTION=add\x00" +
			"DEVPATH=/devices/platform/i8042/serio0/input/input5/event5\x00" +
			"SUBSYSTEM=input\x00" +
			"DEVNAME=input/event5\x00" +
			"MAJOR=13\x00" +
			"MINOR=69\x00",
	)

	evt := parseUEvent(data)

	if evt.action != "add" {
		t.Errorf("action = %q, want %q", evt.action, "add")
	}
	if evt.subsystem != "input" {
		t.Errorf("subsystem = %q, want %q", evt.subsystem, "input")
	}
	if got := evt.sysname(); got != "event5" {
		t.Errorf("sysname() = %q, want %q", got, "event5")
	}
	if got := evt.devnode(); got != "/dev/input/event5" {
		t.Errorf("devnode() = %q, want %q", got, "/dev/input/event5")
	}
}

func TestParseUEvent_Remove(t *testing.T) {
	data := []byte(
		"remove@/devices/platform/i8042/serio0/input/input5/event5\x00" +
			"ACTION=remove\x00" +
			"DEVPATH=/devices/platform/i8042/serio0/input/input5/event5\x00" +
			"SUBSYSTEM=input\x00" +
			"DEVNAME=input/event5\x00",
	)

	evt := parseUEvent(data)

	if evt.action != "remove" {
		t.Errorf("action = %q, want %q", evt.action, "remove")
	}
}

func TestParseUEvent_HeaderOnly(t *testing.T) {
	// Some messages omit the ACTION key; the header line still carries it.
	data := []byte("add@/devices/virtual/input/input9\x00")

	evt := parseUEvent(data)

	if evt.action != "add" {
		t.Errorf("action = %q, want %q", evt.action, "add")
	}
	if evt.devpath != "/devices/virtual/input/input9" {
		t.Errorf("devpath = %q, unexpected value", evt.devpath)
	}
	if got := evt.devnode(); got != "" {
		t.Errorf("devnode() = %q, want empty (no DEVNAME)", got)
	}
}

func TestParseUEvent_ChangeAction(t *testing.T) {
	data := []byte(
		"change@/devices/virtual/input/input7/event7\x00" +
			"ACTION=change\x00" +
			"DEVPATH=/devices/virtual/input/input7/event7\x00" +
			"SUBSYSTEM=input\x00",
	)

	evt := parseUEvent(data)

	if evt.action != "change" {
		t.Errorf("action = %q, want %q", evt.action, "change")
	}
}

func TestParseUEvent_AbsoluteDevname(t *testing.T) {
	data := []byte(
		"ACTION=add\x00" +
			"DEVPATH=/devices/virtual/input/input3/event3\x00" +
			"SUBSYSTEM=input\x00" +
			"DEVNAME=/dev/input/event3\x00",
	)

	evt := parseUEvent(data)

	if got := evt.devnode(); got != "/dev/input/event3" {
		t.Errorf("devnode() = %q, want %q", got, "/dev/input/event3")
	}
}

func TestParseUEvent_Garbage(t *testing.T) {
	evt := parseUEvent([]byte("libudev\x00\x00garbage-without-separator\x00"))

	if evt.action != "" || evt.subsystem != "" {
		t.Errorf("garbage parsed to non-empty uevent: %+v", evt)
	}
}
