package civil

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromUnix_KnownValues(t *testing.T) {
	tests := []struct {
		name string
		sec  int64
		want Timestamp
	}{
		{"epoch", 0, Timestamp{1970, 1, 1, 0, 0, 0}},
		{"day_before_epoch", -86400, Timestamp{1969, 12, 31, 0, 0, 0}},
		{"one_second_before_epoch", -1, Timestamp{1969, 12, 31, 23, 59, 59}},
		{"leap_day_2000", 951782400, Timestamp{2000, 2, 29, 0, 0, 0}},
		{"march_first_2000", 951868800, Timestamp{2000, 3, 1, 0, 0, 0}},
		{"nov_2023", 1700000000, Timestamp{2023, 11, 14, 22, 13, 20}},
		{"ntp_epoch", -2208988800, Timestamp{1900, 1, 1, 0, 0, 0}},
		{"no_leap_1900", -2203891200, Timestamp{1900, 3, 1, 0, 0, 0}},
		{"u32_limit", math.MaxUint32, Timestamp{2106, 2, 7, 6, 28, 15}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromUnix(tt.sec)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromUnix_MatchesTimePackage(t *testing.T) {
	// Stride over 1800-2200 and compare with the standard library calendar.
	start := time.Date(1800, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	end := time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC).Unix()

	for sec := start; sec < end; sec += 86_400*3 + 3_607 {
		ref := time.Unix(sec, 0).UTC()
		got := FromUnix(sec)
		want := Timestamp{
			Year:   int64(ref.Year()),
			Month:  int(ref.Month()),
			Day:    ref.Day(),
			Hour:   ref.Hour(),
			Minute: ref.Minute(),
			Second: ref.Second(),
		}
		if got != want {
			t.Fatalf("FromUnix(%d) = %v, want %v", sec, got, want)
		}
	}
}

func TestFromUnix_RoundTrip(t *testing.T) {
	start := time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	end := time.Date(2101, 1, 1, 0, 0, 0, 0, time.UTC).Unix()

	// A prime stride visits every second-of-day residue class across the window.
	const stride = 997
	for sec := start; sec < end; sec += stride {
		got := FromUnix(sec).Unix()
		if got != sec {
			t.Fatalf("round trip of %d gave %d", sec, got)
		}
	}
}

func TestFromDays_EveryDay(t *testing.T) {
	first := ToDays(1900, 1, 1)
	last := ToDays(2100, 12, 31)
	require.Equal(t, int64(-25567), first)

	prevY, prevM, prevD := FromDays(first - 1)
	for days := first; days <= last; days++ {
		y, m, d := FromDays(days)
		assert.Equal(t, days, ToDays(y, m, d))

		// Consecutive days either advance the day or roll over to the 1st.
		if d != prevD+1 {
			require.Equal(t, 1, d, "day %d: %d-%d-%d after %d-%d-%d", days, y, m, d, prevY, prevM, prevD)
		}
		prevY, prevM, prevD = y, m, d
	}
}

func TestFromUnix_Extremes(t *testing.T) {
	assert.NotPanics(t, func() {
		lo := FromUnix(math.MinInt64)
		hi := FromUnix(math.MaxInt64)
		assert.Less(t, lo.Year, int64(0))
		assert.Greater(t, hi.Year, int64(1_000_000))
		for _, ts := range []Timestamp{lo, hi} {
			assert.GreaterOrEqual(t, ts.Month, 1)
			assert.LessOrEqual(t, ts.Month, 12)
			assert.GreaterOrEqual(t, ts.Day, 1)
			assert.LessOrEqual(t, ts.Day, 31)
			assert.Less(t, ts.Hour, 24)
			assert.Less(t, ts.Minute, 60)
			assert.Less(t, ts.Second, 60)
		}
	})
}

func TestLeapYears(t *testing.T) {
	tests := []struct {
		year int64
		leap bool
	}{
		{1900, false},
		{2000, true},
		{2004, true},
		{2100, false},
		{2400, true},
		{-4, true},
		{-100, false},
	}

	for _, tt := range tests {
		feb28 := ToDays(tt.year, 2, 28)
		_, m, d := FromDays(feb28 + 1)
		if tt.leap {
			assert.Equal(t, 2, m, "year %d", tt.year)
			assert.Equal(t, 29, d, "year %d", tt.year)
		} else {
			assert.Equal(t, 3, m, "year %d", tt.year)
			assert.Equal(t, 1, d, "year %d", tt.year)
		}
	}
}

func TestTimestamp_Format(t *testing.T) {
	ts := FromUnix(951782400)
	assert.Equal(t, "2000-02-29 00:00:00", ts.String())
	assert.Equal(t, "2000-02-29 00:00:00.500000000", ts.Format(500_000_000))
	assert.Equal(t, "1969-12-31 23:59:59.999999999", FromUnix(-1).Format(999_999_999))
}
