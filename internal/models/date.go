package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateLayout is the wire and storage layout of a calendar day.
const DateLayout = "2006-01-02"

// Date is a calendar day in YYYY-MM-DD form. Lexical order equals chronological order.
type Date string

// ParseDate validates raw as YYYY-MM-DD.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
	}
	return Date(t.Format(DateLayout)), nil
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Time returns midnight of the day in loc (UTC when nil).
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, string(d), loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays shifts the date by n calendar days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time(time.UTC).AddDate(0, 0, n))
}

// Valid reports whether the value parses as a calendar day.
func (d Date) Valid() bool {
	_, err := time.Parse(DateLayout, string(d))
	return err == nil
}

func (d Date) String() string { return string(d) }

// Value stores the day as a DATE literal.
func (d Date) Value() (driver.Value, error) {
	if d == "" {
		return nil, nil
	}
	if !d.Valid() {
		return nil, fmt.Errorf("invalid date %q", string(d))
	}
	return string(d), nil
}

// Scan accepts DATE columns from lib/pq (time.Time) and textual forms.
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = DateOf(v)
	case []byte:
		return d.scanText(string(v))
	case string:
		return d.scanText(v)
	default:
		return fmt.Errorf("unsupported type %T for Date", value)
	}
	return nil
}

func (d *Date) scanText(raw string) error {
	if len(raw) > len(DateLayout) {
		raw = raw[:len(DateLayout)]
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
