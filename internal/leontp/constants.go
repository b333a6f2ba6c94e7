package leontp

import "time"

// Request template
const (
	// ProtocolVersion is the NTP version number placed in the request header
	ProtocolVersion = 4

	// ModePrivate is NTP mode 7, used by LeoNTP for its status query
	ModePrivate = 7

	// RequestSize is the length of the status request frame
	RequestSize = 8

	requestMarker   = 0x10
	requestSequence = 1
)

// Response layout. All multi-byte fields are little-endian.
const (
	// MinResponseSize is the smallest response carrying every status field
	MinResponseSize = 48

	// MaxDatagramSize bounds the receive buffer
	MaxDatagramSize = 1024

	offsetRefFraction  = 16
	offsetRefSeconds   = 20
	offsetUptime       = 24
	offsetNTPServed    = 28
	offsetMode6Served  = 32
	offsetGPSLockTime  = 36
	offsetFlags        = 40
	offsetActiveSats   = 41
	offsetSerialNumber = 42
	offsetFirmware     = 44
)

// Time base
const (
	// NTPEpochOffset is the number of seconds from 1900-01-01 to 1970-01-01
	NTPEpochOffset uint64 = 2_208_988_800

	// DefaultTimeout is the receive deadline for a status query
	DefaultTimeout = 2500 * time.Millisecond

	// DefaultPort is the NTP service port
	DefaultPort = 123
)
