package indices

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MonthFormat is the canonical text form of a month: its first calendar day in ISO-8601.
const MonthFormat = "2006-01-02"

// Month is a calendar month, the unit of every series in this package.
//
// Its zero value is not a valid month, use IsZero to test it.
type Month struct {
	y int        // year
	m time.Month // month
}

// NewMonth returns the normalized Month for year and month (month 13 is January of next year).
func NewMonth(year int, month time.Month) Month {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Month{t.Year(), t.Month()}
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month { return NewMonth(t.Year(), t.Month()) }

// ThisMonth returns the current month.
func ThisMonth() Month { return MonthOf(time.Now()) }

// Year returns the month's year.
func (m Month) Year() int { return m.y }

// Month returns the month of the year.
func (m Month) Month() time.Month { return m.m }

// IsZero returns true if m is the zero value.
func (m Month) IsZero() bool { return m.y == 0 && m.m == 0 }

// String formats the month as the ISO date of its first day.
func (m Month) String() string { return m.time().Format(MonthFormat) }

// Format formats the first day of the month according to layout (see [time.Time.Format]).
func (m Month) Format(layout string) string { return m.time().Format(layout) }

// time returns midnight UTC of the first day of the month.
func (m Month) time() time.Time { return time.Date(m.y, m.m, 1, 0, 0, 0, 0, time.UTC) }

// Start returns the first day of the month.
func (m Month) Start() time.Time { return m.time() }

// End returns the last day of the month.
func (m Month) End() time.Time { return time.Date(m.y, m.m+1, 0, 0, 0, 0, 0, time.UTC) }

// AddMonth returns the month i months after m (before if i is negative).
func (m Month) AddMonth(i int) Month { return NewMonth(m.y, m.m+time.Month(i)) }

// Next returns the month after m.
func (m Month) Next() Month { return m.AddMonth(1) }

// Previous returns the month before m.
func (m Month) Previous() Month { return m.AddMonth(-1) }

// PreviousDecember returns December of the year before m.
func (m Month) PreviousDecember() Month { return NewMonth(m.y-1, time.December) }

// Before reports whether m is before x.
func (m Month) Before(x Month) bool { return m.Since(x) < 0 }

// After reports whether m is after x.
func (m Month) After(x Month) bool { return m.Since(x) > 0 }

// Since returns the number of months from x to m.
func (m Month) Since(x Month) int {
	return (m.y-x.y)*12 + int(m.m) - int(x.m)
}

var (
	relativeMonthRE = regexp.MustCompile(`^([+-]?)(\d+)m$`)
	isoMonthRE      = regexp.MustCompile(`^(\d{4})-(\d{1,2})(?:-(\d{1,2}))?$`)
	brMonthRE       = regexp.MustCompile(`^(?:(\d{1,2})/)?(\d{1,2})/(\d{4})$`)
)

// ParseMonth parses a month. It is lenient, and accepts:
//
//   - ISO dates "2024-02-01", "2024-2-15" (the day is dropped) or "2024-02",
//   - Brazilian dates "01/02/2024" or "02/2024",
//   - relative months "-1m", "+2m" or "0m" for the current month.
func ParseMonth(str string) (Month, error) {
	str = strings.TrimSpace(str)

	if match := relativeMonthRE.FindStringSubmatch(str); match != nil {
		n, err := strconv.Atoi(match[2])
		if err != nil {
			return Month{}, fmt.Errorf("invalid number in relative month %q: %w", str, err)
		}
		if n != 0 && match[1] == "" {
			return Month{}, fmt.Errorf("relative month %q requires a sign", str)
		}
		if match[1] == "-" {
			n = -n
		}
		return ThisMonth().AddMonth(n), nil
	}

	if match := isoMonthRE.FindStringSubmatch(str); match != nil {
		return monthFromParts(str, match[1], match[2], match[3])
	}
	if match := brMonthRE.FindStringSubmatch(str); match != nil {
		return monthFromParts(str, match[3], match[2], match[1])
	}
	return Month{}, fmt.Errorf("unrecognized month format: %q", str)
}

func monthFromParts(str, year, month, day string) (Month, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return Month{}, fmt.Errorf("invalid year in %q: %w", str, err)
	}
	mm, err := strconv.Atoi(month)
	if err != nil || mm < 1 || mm > 12 {
		return Month{}, fmt.Errorf("invalid month in %q", str)
	}
	if day != "" {
		d, err := strconv.Atoi(day)
		if err != nil || d < 1 || d > 31 {
			return Month{}, fmt.Errorf("invalid day in %q", str)
		}
	}
	return NewMonth(y, time.Month(mm)), nil
}

// MustParseMonth is like ParseMonth but panics on error.
func MustParseMonth(str string) Month {
	m, err := ParseMonth(str)
	if err != nil {
		panic(err)
	}
	return m
}

// MarshalJSON implements the json.Marshaler interface.
func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (m *Month) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("month should be a string, got %s: %w", data, err)
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
