package calendar

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTextFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		key   int
	}{
		{"iso", "2021-05-10", 20210510},
		{"iso unpadded", "2021-5-1", 20210501},
		{"us", "05/10/2021", 20210510},
		{"us unpadded", "5/1/2021", 20210501},
		{"dashed us", "05-10-2021", 20210510},
		{"timestamp", "2021-01-02 13:45:00", 20210102},
		{"rfc3339", "2021-01-02T00:00:00Z", 20210102},
		{"padded", "  2021-01-03 ", 20210103},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := ParseText(tt.input)
			require.True(t, ok)
			require.Equal(t, tt.key, d.Key)
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "   ", "not a date", "13/45/2021", "2021-02-30", "20210102"} {
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			_, ok := ParseText(input)
			require.False(t, ok)
		})
	}

	_, ok := Parse(Null())
	require.False(t, ok)
	_, ok = Parse(Time(time.Time{}))
	require.False(t, ok)
}

func TestISOAndUSAgree(t *testing.T) {
	start := time.Date(2019, time.December, 25, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 800; i++ {
		day := start.AddDate(0, 0, i)

		iso, ok := ParseText(day.Format("2006-01-02"))
		require.True(t, ok)
		us, ok := ParseText(day.Format("01/02/2006"))
		require.True(t, ok)
		parsed, ok := Parse(Time(day.Add(15 * time.Hour)))
		require.True(t, ok)

		require.Equal(t, iso, us, "day %s", day)
		require.Equal(t, iso, parsed, "day %s", day)
	}
}

func TestDerivedAttributes(t *testing.T) {
	tests := []struct {
		input   string
		day     string
		month   string
		quarter int
		weekend bool
	}{
		{"2021-01-02", "Saturday", "January", 1, true},
		{"2021-01-03", "Sunday", "January", 1, true},
		{"05/10/2021", "Monday", "May", 2, false},
		{"2021-12-31", "Friday", "December", 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, ok := ParseText(tt.input)
			require.True(t, ok)
			require.Equal(t, tt.day, d.DayName)
			require.Equal(t, tt.month, d.MonthName)
			require.Equal(t, tt.quarter, d.Quarter)
			require.Equal(t, tt.weekend, d.Weekend)
			require.Equal(t, d.Year*10000+d.Month*100+d.Day, d.Key)
		})
	}
}

func TestKeyOrderingFollowsCalendar(t *testing.T) {
	prev := 0
	day := time.Date(1999, time.November, 28, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 1000; i++ {
		key := FromTime(day).Key
		require.Greater(t, key, prev)
		prev = key
		day = day.AddDate(0, 0, 1)
	}
}

func TestFromKeyRoundTrip(t *testing.T) {
	d, ok := ParseText("2024-02-29")
	require.True(t, ok)

	again, ok := FromKey(d.Key)
	require.True(t, ok)
	require.Equal(t, d, again)

	for _, key := range []int{0, -1, 20211301, 20210230, 20210100} {
		_, ok := FromKey(key)
		require.False(t, ok, "key %d", key)
	}
}

func TestWeekdayIndex(t *testing.T) {
	require.Equal(t, 0, WeekdayIndex("Monday"))
	require.Equal(t, 6, WeekdayIndex("Sunday"))
	require.Equal(t, 7, WeekdayIndex("Funday"))
}

func TestValueString(t *testing.T) {
	require.Equal(t, "", Null().String())
	require.Equal(t, "05/10/2021", Text("05/10/2021").String())
	require.Equal(t, "2021-05-10 08:30:00",
		Time(time.Date(2021, 5, 10, 8, 30, 0, 0, time.UTC)).String())
	require.True(t, Text("  ").IsNull())
}

func TestParseTimestampKeepsTimeOfDay(t *testing.T) {
	morning, ok := ParseTimestamp(Text("2024-04-03 09:00:00"))
	require.True(t, ok)
	afternoon, ok := ParseTimestamp(Text(" 2024-04-03T15:00:00 "))
	require.True(t, ok)
	require.True(t, morning.Before(afternoon))

	day, ok := ParseTimestamp(Text("04/03/2024"))
	require.True(t, ok)
	require.Equal(t, time.Date(2024, time.April, 3, 0, 0, 0, 0, time.UTC), day)

	at := time.Date(2024, time.April, 3, 8, 30, 0, 0, time.UTC)
	got, ok := ParseTimestamp(Time(at))
	require.True(t, ok)
	require.Equal(t, at, got)

	for _, v := range []Value{Null(), Text(""), Text("yesterday")} {
		_, ok := ParseTimestamp(v)
		require.False(t, ok, v.String())
	}
}
