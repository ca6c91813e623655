package evdev

import (
	"encoding/binary"

	"github.com/ardnew/softinput/pkg"
)

// RecordSize is the size of the kernel's struct input_event on 64-bit
// platforms: 16 bytes of struct timeval followed by type, code, and value.
const RecordSize = 24

// Record is one undecoded input event (type, code, value) as delivered by
// the kernel.
type Record struct {
	Sec   int64  // Timestamp seconds
	Usec  int64  // Timestamp microseconds
	Type  uint16 // Event type (EV_*)
	Code  uint16 // Event code within the type
	Value int32  // Event value
}

// DecodeRecord decodes one struct input_event from b.
func DecodeRecord(b []byte) (Record, error) {
	if len(b) < RecordSize {
		return Record{}, pkg.ErrShortRecord
	}
	return Record{
		Sec:   int64(binary.LittleEndian.Uint64(b[0:8])),
		Usec:  int64(binary.LittleEndian.Uint64(b[8:16])),
		Type:  binary.LittleEndian.Uint16(b[16:18]),
		Code:  binary.LittleEndian.Uint16(b[18:20]),
		Value: int32(binary.LittleEndian.Uint32(b[20:24])),
	}, nil
}

// MarshalBinary encodes the record in the kernel's struct input_event
// layout. It is the inverse of DecodeRecord.
func (r Record) MarshalBinary() ([]byte, error) {
	b := make([]byte, RecordSize)
	binary.LittleEndian.PutUint64(b[0:8], uint64(r.Sec))
	binary.LittleEndian.PutUint64(b[8:16], uint64(r.Usec))
	binary.LittleEndian.PutUint16(b[16:18], r.Type)
	binary.LittleEndian.PutUint16(b[18:20], r.Code)
	binary.LittleEndian.PutUint32(b[20:24], uint32(r.Value))
	return b, nil
}
