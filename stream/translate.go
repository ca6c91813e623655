package stream

import (
	"github.com/ardnew/softinput/evdev"
	"github.com/ardnew/softinput/event"
	"github.com/ardnew/softinput/pkg"
)

// translate maps one raw device record to at most one semantic event.
//
// Key records become button presses and releases keyed by the raw key
// code; kernel autorepeat records are dropped, since repeats are not
// discrete physical transitions. Relative motion keeps the raw axis
// code, while absolute motion is offset past the relative axis range so
// the two families can never collide on an axis identifier. Sync and
// misc records carry no semantic payload and are consumed silently.
func translate(id event.DeviceID, rec evdev.Record) (event.Event, bool) {
	switch rec.Type {
	case evdev.EV_SYN, evdev.EV_MSC:
		return nil, false

	case evdev.EV_KEY:
		switch rec.Value {
		case evdev.KeyValueRelease:
			return event.RawButtonRelease{
				Device: id,
				Button: event.ButtonID(rec.Code),
			}, true
		case evdev.KeyValuePress:
			return event.RawButtonPress{
				Device: id,
				Button: event.ButtonID(rec.Code),
			}, true
		case evdev.KeyValueRepeat:
			return nil, false
		default:
			pkg.LogWarn(pkg.ComponentTranslate, "unrecognized key state",
				"code", rec.Code,
				"value", rec.Value)
			return nil, false
		}

	case evdev.EV_REL:
		return event.RawMotion{
			Device: id,
			Axis:   event.AxisID(rec.Code),
			Value:  float64(rec.Value),
		}, true

	case evdev.EV_ABS:
		return event.RawMotion{
			Device: id,
			Axis:   event.AxisID(evdev.REL_CNT) + event.AxisID(rec.Code),
			Value:  float64(rec.Value),
		}, true

	default:
		pkg.LogWarn(pkg.ComponentTranslate, "unrecognized record type",
			"type", rec.Type,
			"code", rec.Code,
			"value", rec.Value)
		return nil, false
	}
}
