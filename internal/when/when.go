// Package when resolves natural-language time expressions to absolute
// instants. Every function is a pure function of the reference instant,
// so behavior is fully testable against a fixed clock.
//
// Supported forms: clock times ("15:30", "3pm", "9:15am"), day phrases
// ("tomorrow 9am", "tonight", "noon"), weekday phrases ("friday 17:00"),
// relative durations ("in 20 minutes", "in 2h"), and full date+time
// ("2025-01-15 09:00"). A clock time already past for today rolls
// forward to the next day.
package when

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	clockPattern    = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	meridiemPattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)$`)
	inPattern       = regexp.MustCompile(`^in\s+(\d+)\s*(s|sec|secs|second|seconds|m|min|mins|minute|minutes|h|hr|hrs|hour|hours|d|day|days)$`)
	datePattern     = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})(?:[ T](\d{1,2}):(\d{2}))?$`)
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Words that name a time of day, resolved to conventional hours.
var daywords = map[string]int{
	"morning":   9,
	"noon":      12,
	"afternoon": 14,
	"evening":   18,
	"tonight":   21,
	"night":     21,
	"midnight":  0,
}

// Parse resolves expr relative to now. The result is always strictly
// after now: today's 9am asked for at 10am means tomorrow's 9am.
func Parse(expr string, now time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(expr))
	s = strings.TrimPrefix(s, "at ")
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time expression")
	}

	// "in 20 minutes"
	if m := inPattern.FindStringSubmatch(s); m != nil {
		amount, _ := strconv.Atoi(m[1])
		return now.Add(time.Duration(amount) * unitDuration(m[2])), nil
	}

	// "2025-01-15 09:00" or bare date (midnight)
	if m := datePattern.FindStringSubmatch(s); m != nil {
		return parseDate(m, now)
	}

	// "tomorrow", "tomorrow 9am", "tomorrow 15:30"
	if rest, ok := strings.CutPrefix(s, "tomorrow"); ok {
		day := now.AddDate(0, 0, 1)
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return at(day, 9, 0), nil
		}
		hour, minute, err := clockOf(rest)
		if err != nil {
			return time.Time{}, err
		}
		return at(day, hour, minute), nil
	}

	if rest, ok := strings.CutPrefix(s, "today"); ok {
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return time.Time{}, fmt.Errorf("ambiguous time %q: give a clock time, e.g. \"today 15:30\"", expr)
		}
		hour, minute, err := clockOf(rest)
		if err != nil {
			return time.Time{}, err
		}
		return rollForward(at(now, hour, minute), now), nil
	}

	// "friday", "friday 17:00"
	fields := strings.Fields(s)
	if day, ok := weekdays[fields[0]]; ok {
		hour, minute := 9, 0
		if len(fields) > 1 {
			var err error
			if hour, minute, err = clockOf(strings.Join(fields[1:], " ")); err != nil {
				return time.Time{}, err
			}
		}
		target := at(nextWeekday(now, day), hour, minute)
		if !target.After(now) {
			target = target.AddDate(0, 0, 7)
		}
		return target, nil
	}

	// "tonight", "noon", ...
	if hour, ok := daywords[s]; ok {
		return rollForward(at(now, hour, 0), now), nil
	}

	// bare clock time
	hour, minute, err := clockOf(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse time %q (try \"15:30\", \"3pm\", \"tomorrow 9am\", \"in 20 minutes\")", expr)
	}
	return rollForward(at(now, hour, minute), now), nil
}

// clockOf parses "15:30", "3pm" and "9:15am" into hour and minute.
func clockOf(s string) (int, int, error) {
	if m := meridiemPattern.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		if hour < 1 || hour > 12 {
			return 0, 0, fmt.Errorf("hour out of range in %q", s)
		}
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if m[3] == "pm" && hour != 12 {
			hour += 12
		}
		if m[3] == "am" && hour == 12 {
			hour = 0
		}
		if minute > 59 {
			return 0, 0, fmt.Errorf("minute out of range in %q", s)
		}
		return hour, minute, nil
	}

	if m := clockPattern.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return 0, 0, fmt.Errorf("clock time out of range in %q", s)
		}
		return hour, minute, nil
	}

	if hour, ok := daywords[s]; ok {
		return hour, 0, nil
	}

	return 0, 0, fmt.Errorf("cannot parse clock time %q", s)
}

func parseDate(m []string, now time.Time) (time.Time, error) {
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	hour, minute := 0, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 {
		return time.Time{}, fmt.Errorf("date out of range: %s", m[0])
	}
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, now.Location()), nil
}

func unitDuration(unit string) time.Duration {
	switch unit[0] {
	case 's':
		return time.Second
	case 'm':
		return time.Minute
	case 'h':
		return time.Hour
	default:
		return 24 * time.Hour
	}
}

func at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

// rollForward pushes a same-day target that already passed to tomorrow.
func rollForward(target, now time.Time) time.Time {
	if !target.After(now) {
		return target.AddDate(0, 0, 1)
	}
	return target
}

func nextWeekday(now time.Time, day time.Weekday) time.Time {
	diff := (int(day) - int(now.Weekday()) + 7) % 7
	return now.AddDate(0, 0, diff)
}
