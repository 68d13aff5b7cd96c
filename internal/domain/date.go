package domain

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar day stored as midnight UTC. The zero value means "no date"
// and is written as SQL NULL and JSON null.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date { return DateOf(time.Now()) }

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return DateOf(t), nil
}

func (d Date) Valid() bool { return !d.IsZero() }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// FR renders the day as DD/MM/YYYY.
func (d Date) FR() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("02/01/2006")
}

func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	return d.UnmarshalText(bytes.Trim(b, `"`))
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = DateOf(v)
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

// DaysBetween counts whole days from a to b.
func DaysBetween(a, b Date) int {
	return int(b.Sub(a.Time).Hours() / 24)
}

// MonthsBetween counts completed calendar months from a to b.
func MonthsBetween(a, b Date) int {
	months := (b.Year()-a.Year())*12 + int(b.Month()-a.Month())
	if b.Day() < a.Day() {
		months--
	}
	return months
}

// FormatAgeAt renders the age on a given day: "N ans" from two years on,
// otherwise the month remainder when non-zero, otherwise days. A patient of
// thirteen months therefore reads "1 mois".
func FormatAgeAt(birth, at Date) string {
	if birth.IsZero() || at.IsZero() {
		return ""
	}
	if years := AgeYears(birth, at); years >= 2 {
		return fmt.Sprintf("%d ans", years)
	}
	if months := MonthsBetween(birth, at) % 12; months >= 1 {
		return fmt.Sprintf("%d mois", months)
	}
	return fmt.Sprintf("%d jours", DaysBetween(birth, at))
}

// AgeYears is the completed age in years on the given day.
func AgeYears(birth, on Date) int {
	if birth.IsZero() || on.IsZero() {
		return 0
	}
	years := on.Year() - birth.Year()
	if on.Month() < birth.Month() || (on.Month() == birth.Month() && on.Day() < birth.Day()) {
		years--
	}
	return years
}

// FormatShortAge renders a stored age in days as "XaYm", or "Ym" under a year,
// using 365-day years and 30-day months.
func FormatShortAge(days int) string {
	years := days / 365
	months := (days % 365) / 30
	if years > 0 {
		return fmt.Sprintf("%da%dm", years, months)
	}
	return fmt.Sprintf("%dm", months)
}
