package leontp

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/maximewewer/leontp-stats/pkg/civil"
	"github.com/maximewewer/leontp-stats/pkg/mathutil"
)

// Request is the fixed status request frame
type Request [RequestSize]byte

// EncodeRequest builds the status request frame for the given NTP version and mode.
func EncodeRequest(version, mode uint8) Request {
	var r Request
	r[0] = version<<3 | mode
	r[1] = 0
	r[2] = requestMarker
	r[3] = requestSequence
	return r
}

// NewRequest returns the request frame LeoNTP devices answer with their status
func NewRequest() Request {
	return EncodeRequest(ProtocolVersion, ModePrivate)
}

// Status is the decoded LeoNTP status response
type Status struct {
	// RefFraction is the fractional part of the reference time, in units of 2^-32 s
	RefFraction uint32
	// RefSeconds is the reference time in seconds since 1900-01-01
	RefSeconds uint32

	Uptime           uint32 // seconds
	NTPRequests      uint32
	Mode6Requests    uint32
	GPSLockTime      uint32 // seconds
	Flags            uint8
	ActiveSatellites uint8
	SerialNumber     uint16
	Firmware         uint32
}

// frame is a response buffer whose length has already been checked against
// MinResponseSize; reads never go past it.
type frame []byte

func newFrame(b []byte) (frame, error) {
	if len(b) < MinResponseSize {
		return nil, fmt.Errorf("%w: got %d bytes, need at least %d", ErrTooShort, len(b), MinResponseSize)
	}
	return frame(b[:MinResponseSize]), nil
}

func (f frame) u8(off int) uint8 {
	return f[off]
}

func (f frame) u16(off int) uint16 {
	return binary.LittleEndian.Uint16(f[off : off+2])
}

func (f frame) u32(off int) uint32 {
	return binary.LittleEndian.Uint32(f[off : off+4])
}

// DecodeStatus decodes a status response. Buffers shorter than
// MinResponseSize fail with ErrTooShort; bytes past it are ignored.
func DecodeStatus(b []byte) (*Status, error) {
	f, err := newFrame(b)
	if err != nil {
		return nil, err
	}

	return &Status{
		RefFraction:      f.u32(offsetRefFraction),
		RefSeconds:       f.u32(offsetRefSeconds),
		Uptime:           f.u32(offsetUptime),
		NTPRequests:      f.u32(offsetNTPServed),
		Mode6Requests:    f.u32(offsetMode6Served),
		GPSLockTime:      f.u32(offsetGPSLockTime),
		Flags:            f.u8(offsetFlags),
		ActiveSatellites: f.u8(offsetActiveSats),
		SerialNumber:     f.u16(offsetSerialNumber),
		Firmware:         f.u32(offsetFirmware),
	}, nil
}

// UnixSeconds returns the reference time as seconds since the Unix epoch.
// A reference time before 1970 (an unset device clock) reads as zero.
func (s *Status) UnixSeconds() int64 {
	return int64(mathutil.SaturatingSubUint64(uint64(s.RefSeconds), NTPEpochOffset))
}

// FractionNanos returns the sub-second part of the reference time in nanoseconds
func (s *Status) FractionNanos() int64 {
	return mathutil.FractionToNanos(s.RefFraction)
}

// TimestampNanos returns the reference time as nanoseconds since the Unix epoch
func (s *Status) TimestampNanos() int64 {
	return mathutil.SaturatingAdd(
		mathutil.SaturatingMul(s.UnixSeconds(), int64(time.Second)),
		s.FractionNanos(),
	)
}

// Civil returns the reference time as UTC calendar fields
func (s *Status) Civil() civil.Timestamp {
	return civil.FromUnix(s.UnixSeconds())
}

// NTPTime formats the reference time in the NTP time base as "seconds.fraction",
// with the fraction in nanoseconds.
func (s *Status) NTPTime() string {
	return fmt.Sprintf("%d.%09d", s.RefSeconds, s.FractionNanos())
}

// FirmwareVersion formats the firmware word as "major.minor"
func (s *Status) FirmwareVersion() string {
	return fmt.Sprintf("%d.%02d", s.Firmware>>8, s.Firmware&0xFF)
}
