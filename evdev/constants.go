package evdev

// =============================================================================
// Event Types (linux/input-event-codes.h)
// =============================================================================

// Raw record types delivered by the kernel.
const (
	EV_SYN = 0x00 // Synchronization markers
	EV_KEY = 0x01 // Key and button state changes
	EV_REL = 0x02 // Relative axis motion
	EV_ABS = 0x03 // Absolute axis motion
	EV_MSC = 0x04 // Miscellaneous (scan codes, timestamps)
)

// =============================================================================
// Synchronization Codes
// =============================================================================

// Codes for EV_SYN records.
const (
	SYN_REPORT  = 0 // End of a batch of records
	SYN_CONFIG  = 1
	SYN_DROPPED = 3 // Kernel ring buffer overran; events were lost
)

// =============================================================================
// Key Values
// =============================================================================

// Values for EV_KEY records.
const (
	KeyValueRelease = 0 // Key released
	KeyValuePress   = 1 // Key pressed
	KeyValueRepeat  = 2 // Auto-repeat while held
)

// =============================================================================
// Axis Ranges
// =============================================================================

// REL_CNT is the number of relative axis codes. Absolute axis identities
// are offset by REL_CNT so the two axis classes occupy disjoint numeric
// ranges.
const REL_CNT = 0x10

// ABS_CNT is the number of absolute axis codes.
const ABS_CNT = 0x40
