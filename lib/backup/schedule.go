// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backup

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Schedule is a parsed five-field cron expression: minute, hour, day
// of month, month, day of week (0 is Sunday). Each field accepts *,
// single values, ranges, comma lists and /N steps. Times are UTC.
type Schedule struct {
	expression string
	fields     [5]uint64
}

type scheduleField struct {
	name     string
	min, max int
}

var scheduleFields = [5]scheduleField{
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day of month", 1, 31},
	{"month", 1, 12},
	{"day of week", 0, 6},
}

// ParseSchedule parses a cron expression such as "30 2 * * *".
func ParseSchedule(expression string) (Schedule, error) {
	parts := strings.Fields(expression)
	if len(parts) != len(scheduleFields) {
		return Schedule{}, fmt.Errorf("schedule %q: want 5 fields, got %d", expression, len(parts))
	}
	schedule := Schedule{expression: strings.Join(parts, " ")}
	for index, part := range parts {
		field := scheduleFields[index]
		for _, term := range strings.Split(part, ",") {
			bits, err := parseScheduleTerm(term, field.min, field.max)
			if err != nil {
				return Schedule{}, fmt.Errorf("schedule %q: %s: %w", expression, field.name, err)
			}
			schedule.fields[index] |= bits
		}
	}
	return schedule, nil
}

func parseScheduleTerm(term string, min, max int) (uint64, error) {
	span, stepText, stepped := strings.Cut(term, "/")
	step := 1
	if stepped {
		parsed, err := strconv.Atoi(stepText)
		if err != nil || parsed < 1 {
			return 0, fmt.Errorf("invalid step %q", stepText)
		}
		step = parsed
	}

	low, high := min, max
	if span != "*" {
		first, last, ranged := strings.Cut(span, "-")
		var err error
		if low, err = strconv.Atoi(first); err != nil {
			return 0, fmt.Errorf("invalid value %q", first)
		}
		high = low
		if ranged {
			if high, err = strconv.Atoi(last); err != nil {
				return 0, fmt.Errorf("invalid value %q", last)
			}
		} else if stepped {
			high = max
		}
	}
	if low < min || high > max || low > high {
		return 0, fmt.Errorf("%q outside %d-%d", term, min, max)
	}

	var bits uint64
	for value := low; value <= high; value += step {
		bits |= 1 << value
	}
	return bits, nil
}

func (s Schedule) String() string { return s.expression }

// IsZero reports whether s was never parsed.
func (s Schedule) IsZero() bool { return s.expression == "" }

func (s Schedule) matches(index, value int) bool {
	return s.fields[index]&(1<<value) != 0
}

// Next returns the first matching minute strictly after t. An
// expression that never matches, such as "0 0 31 2 *", is an error.
func (s Schedule) Next(t time.Time) (time.Time, error) {
	if s.IsZero() {
		return time.Time{}, fmt.Errorf("schedule: empty")
	}
	candidate := t.UTC().Truncate(time.Minute).Add(time.Minute)
	// Eight years spans every leap day a day-of-week constraint can
	// combine with.
	limit := candidate.AddDate(8, 0, 0)
	for candidate.Before(limit) {
		year, month, day := candidate.Date()
		switch {
		case !s.matches(3, int(month)):
			candidate = time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
		case !s.matches(2, day) || !s.matches(4, int(candidate.Weekday())):
			candidate = time.Date(year, month, day+1, 0, 0, 0, 0, time.UTC)
		case !s.matches(1, candidate.Hour()):
			candidate = time.Date(year, month, day, candidate.Hour()+1, 0, 0, 0, time.UTC)
		case !s.matches(0, candidate.Minute()):
			candidate = candidate.Add(time.Minute)
		default:
			return candidate, nil
		}
	}
	return time.Time{}, fmt.Errorf("schedule %q never fires", s.expression)
}
