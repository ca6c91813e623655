// Package event defines the semantic event vocabulary produced by the
// softinput back-end and consumed by the wider windowing system.
//
// Events form a sealed union over the Event interface: device lifecycle
// events (DeviceAdded, DeviceRemoved) and raw input events
// (RawButtonPress, RawButtonRelease, RawMotion). Every variant carries
// the DeviceID of the originating device.
//
// Window-scoped variants (WindowFocus, WindowResize) are part of the
// vocabulary for the windowing front-end, but this back-end never
// constructs them: WindowID is an interface with no implementations in
// this module, so no value of it can be produced here.
package event
