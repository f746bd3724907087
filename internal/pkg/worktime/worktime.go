// Package worktime converts a pair of wall-clock times into paid worked hours.
//
// The computation is pure: the same inputs always produce the same result, which
// is what lets correction passes re-run it over historical attendance safely.
package worktime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DefaultBreakMinutes applies when the break policy is unset.
	DefaultBreakMinutes = 60

	// BreakBufferMinutes is how far past the break a shift must run before the
	// break is deducted.
	BreakBufferMinutes = 120

	minutesPerDay = 24 * 60
)

var (
	ErrInvalidTimeFormat   = errors.New("invalid time format, expected HH:MM")
	ErrInvalidBreakMinutes = errors.New("break minutes must not be negative")
)

var sixty = decimal.NewFromInt(60)

// Clock is a wall-clock time with minute resolution and no date.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" (24h).
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[0]) > 2 || len(parts[1]) != 2 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	return Clock{Hour: hour, Minute: minute}, nil
}

// MinuteOfDay returns minutes elapsed since midnight.
func (c Clock) MinuteOfDay() int {
	return c.Hour*60 + c.Minute
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Result is the outcome of a worked-hours computation.
type Result struct {
	TotalMinutes  int
	BreakMinutes  int
	BreakDeducted bool
	WorkedMinutes int
	WorkedHours   decimal.Decimal
}

// ElapsedMinutes returns the minutes from in to out. A checkout earlier in the day
// than the check-in is taken to fall on the next calendar day.
func ElapsedMinutes(in, out Clock) int {
	inMinutes := in.MinuteOfDay()
	outMinutes := out.MinuteOfDay()
	if outMinutes < inMinutes {
		outMinutes += minutesPerDay
	}
	return outMinutes - inMinutes
}

// Compute derives worked hours from the check-in and check-out clock values.
// breakMinutes nil means the policy is unset and DefaultBreakMinutes applies.
// The break is only deducted when the elapsed time is at least the break plus
// BreakBufferMinutes; shorter shifts count in full.
func Compute(inTime, outTime string, breakMinutes *int) (Result, error) {
	in, err := ParseClock(inTime)
	if err != nil {
		return Result{}, err
	}
	out, err := ParseClock(outTime)
	if err != nil {
		return Result{}, err
	}

	brk := DefaultBreakMinutes
	if breakMinutes != nil {
		if *breakMinutes < 0 {
			return Result{}, ErrInvalidBreakMinutes
		}
		brk = *breakMinutes
	}

	total := ElapsedMinutes(in, out)
	worked := total
	deducted := false
	if total >= brk+BreakBufferMinutes {
		worked = total - brk
		deducted = true
	}

	return Result{
		TotalMinutes:  total,
		BreakMinutes:  brk,
		BreakDeducted: deducted,
		WorkedMinutes: worked,
		WorkedHours:   MinutesToHours(worked),
	}, nil
}

// MinutesToHours converts minutes to hours rounded half away from zero to 2 places.
func MinutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(sixty).Round(2)
}
