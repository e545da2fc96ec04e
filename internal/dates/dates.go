// Package dates implements calendar arithmetic on plain YYYY-MM-DD strings.
//
// Meal plans and shopping list ranges are calendar dates with no time
// component. Arithmetic is done by carrying days through month and year
// boundaries directly, never by round-tripping through time.Time
// serialization, so results cannot shift across DST or UTC boundaries.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Valid reports whether s is a well-formed YYYY-MM-DD calendar date.
func Valid(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	y, m, d := split(s)
	return m >= 1 && m <= 12 && d >= 1 && d <= daysInMonth(y, m)
}

func split(s string) (year, month, day int) {
	year, _ = strconv.Atoi(s[0:4])
	month, _ = strconv.Atoi(s[5:7])
	day, _ = strconv.Atoi(s[8:10])
	return year, month, day
}

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

func daysInMonth(y, m int) int {
	switch m {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	default:
		if isLeapYear(y) {
			return 29
		}
		return 28
	}
}

// AddDays returns the date n days after s (n may be negative).
// s must be a valid YYYY-MM-DD string.
func AddDays(s string, n int) (string, error) {
	if !Valid(s) {
		return "", fmt.Errorf("invalid date %q", s)
	}

	year, month, day := split(s)
	day += n

	for day > daysInMonth(year, month) {
		day -= daysInMonth(year, month)
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	for day < 1 {
		month--
		if month < 1 {
			month = 12
			year--
		}
		day += daysInMonth(year, month)
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), nil
}

// WeekRange returns the inclusive [start, start+6] window for a week
// beginning at start.
func WeekRange(start string) (string, string, error) {
	end, err := AddDays(start, 6)
	if err != nil {
		return "", "", err
	}
	return start, end, nil
}
