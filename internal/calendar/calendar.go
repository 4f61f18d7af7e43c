//-------------------------------------------------------------------------
//
// pgEdge Sales Mart
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package calendar parses source date values into canonical calendar
// dates and the integer YYYYMMDD keys used by the date dimension.
package calendar

import (
	"strings"
	"time"
)

type kind uint8

const (
	kindNull kind = iota
	kindText
	kindTime
)

// Value is a date as it arrived from the source system: text in one of
// the accepted layouts, an already-parsed time, or null.
type Value struct {
	kind kind
	text string
	time time.Time
}

// Null returns the null date value.
func Null() Value {
	return Value{}
}

// Text wraps a textual date.
func Text(s string) Value {
	return Value{kind: kindText, text: s}
}

// Time wraps an already-parsed date. The zero time is treated as null.
func Time(t time.Time) Value {
	if t.IsZero() {
		return Value{}
	}
	return Value{kind: kindTime, time: t}
}

// IsNull reports whether the value carries no date at all.
func (v Value) IsNull() bool {
	return v.kind == kindNull || (v.kind == kindText && strings.TrimSpace(v.text) == "")
}

// String returns the value in a form suitable for writing back to a
// textual source column. Null values return the empty string.
func (v Value) String() string {
	switch v.kind {
	case kindText:
		return v.text
	case kindTime:
		return v.time.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// layouts are tried in order. Single-digit layout elements also accept
// zero-padded input, so "2021-01-05" and "2021-1-5" both parse.
var layouts = []string{
	"2006-1-2",
	"1/2/2006",
	"1-2-2006",
	"2006-1-2 15:04:05",
	"2006-1-2T15:04:05",
	time.RFC3339Nano,
	"1/2/2006 15:04:05",
}

// Date is a canonical calendar date with its derived attributes.
type Date struct {
	Key       int
	Time      time.Time
	DayName   string
	MonthName string
	Day       int
	Month     int
	Quarter   int
	Year      int
	Weekend   bool
}

// Parse resolves a source value to a calendar date. The second result is
// false when the value is null or matches none of the accepted layouts.
func Parse(v Value) (Date, bool) {
	switch v.kind {
	case kindTime:
		return FromTime(v.time), true
	case kindText:
		return ParseText(v.text)
	default:
		return Date{}, false
	}
}

// ParseText parses a textual date in ISO (YYYY-MM-DD), US (MM/DD/YYYY),
// dashed US (MM-DD-YYYY) or timestamp form.
func ParseText(s string) (Date, bool) {
	t, ok := parseLayouts(s)
	if !ok {
		return Date{}, false
	}
	return FromTime(t), true
}

// ParseTimestamp resolves a source value to the full instant it carries,
// keeping any time of day. It accepts the same inputs as Parse.
func ParseTimestamp(v Value) (time.Time, bool) {
	switch v.kind {
	case kindTime:
		return v.time, true
	case kindText:
		return parseLayouts(v.text)
	default:
		return time.Time{}, false
	}
}

func parseLayouts(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FromTime derives the calendar date of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	wd := day.Weekday()
	return Date{
		Key:       KeyOf(y, m, d),
		Time:      day,
		DayName:   wd.String(),
		MonthName: m.String(),
		Day:       d,
		Month:     int(m),
		Quarter:   (int(m)-1)/3 + 1,
		Year:      y,
		Weekend:   wd == time.Saturday || wd == time.Sunday,
	}
}

// FromKey rebuilds the date for a YYYYMMDD key. It returns false when the
// key does not encode a real calendar date.
func FromKey(key int) (Date, bool) {
	y, m, d := key/10000, time.Month(key/100%100), key%100
	if key <= 0 || m < time.January || m > time.December || d < 1 {
		return Date{}, false
	}
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || t.Month() != m {
		return Date{}, false
	}
	return FromTime(t), true
}

// KeyOf encodes a calendar date as YYYYMMDD.
func KeyOf(year int, month time.Month, day int) int {
	return year*10000 + int(month)*100 + day
}

// Weekdays lists day names Monday first, the order used by day-of-week
// reports.
var Weekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// WeekdayIndex returns the Monday-first position of a day name, or
// len(Weekdays) when the name is unknown.
func WeekdayIndex(name string) int {
	for i, n := range Weekdays {
		if n == name {
			return i
		}
	}
	return len(Weekdays)
}
