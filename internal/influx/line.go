package influx

import (
	"strconv"

	"github.com/maximewewer/leontp-stats/internal/leontp"
)

const (
	// Measurement is the measurement name of every record
	Measurement = "Measurements"

	// HostTag is the value of the host tag
	HostTag = "NTP01"
)

// Line is one line-protocol record derived from a device status
type Line struct {
	Uptime          uint32
	NTPRequests     uint32
	Satellites      uint8
	GPSLockTime     uint32
	SerialNumber    uint16
	FirmwareVersion uint32

	// Timestamp in nanoseconds since the Unix epoch
	Timestamp int64
}

// NewLine builds the record for status
func NewLine(status *leontp.Status) Line {
	return Line{
		Uptime:          status.Uptime,
		NTPRequests:     status.NTPRequests,
		Satellites:      status.ActiveSatellites,
		GPSLockTime:     status.GPSLockTime,
		SerialNumber:    status.SerialNumber,
		FirmwareVersion: status.Firmware,
		Timestamp:       status.TimestampNanos(),
	}
}

// AppendTo appends the encoded record to b. Field values are written as bare
// decimals, without a type suffix.
func (l Line) AppendTo(b []byte) []byte {
	b = append(b, Measurement...)
	b = append(b, ",host="...)
	b = append(b, HostTag...)
	b = append(b, " Uptime="...)
	b = strconv.AppendUint(b, uint64(l.Uptime), 10)
	b = append(b, ",Nb_NTP_Requests="...)
	b = strconv.AppendUint(b, uint64(l.NTPRequests), 10)
	b = append(b, ",Nb_of_SAT="...)
	b = strconv.AppendUint(b, uint64(l.Satellites), 10)
	b = append(b, ",GPS_lock_time="...)
	b = strconv.AppendUint(b, uint64(l.GPSLockTime), 10)
	b = append(b, ",Serial_Number="...)
	b = strconv.AppendUint(b, uint64(l.SerialNumber), 10)
	b = append(b, ",Firmware_Version="...)
	b = strconv.AppendUint(b, uint64(l.FirmwareVersion), 10)
	b = append(b, ' ')
	b = strconv.AppendInt(b, l.Timestamp, 10)
	return b
}

// String returns the encoded record
func (l Line) String() string {
	return string(l.AppendTo(make([]byte, 0, 160)))
}

// WritePath returns the request target for a line-protocol write with
// nanosecond precision
func WritePath(org, bucket string) string {
	return "/api/v2/write?org=" + EscapeComponent(org) +
		"&bucket=" + EscapeComponent(bucket) +
		"&precision=ns"
}

// EscapeComponent percent-encodes every byte outside the unreserved set
// A-Z a-z 0-9 - _ . ~ as %XX with uppercase hex digits.
func EscapeComponent(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	const hex = "0123456789ABCDEF"
	b := make([]byte, 0, len(s)+2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b = append(b, c)
			continue
		}
		b = append(b, '%', hex[c>>4], hex[c&0x0F])
	}
	return string(b)
}

func unreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	}
	return false
}
