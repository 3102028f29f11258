// File: models/slots.go
package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MinutesPerDay bounds every TimeSlot.
const MinutesPerDay = 24 * 60

// TimeSlot is a wall-clock time of day in minutes from midnight (e.g., 570 for 09:30).
type TimeSlot int

// ParseTimeSlot parses an "HH:MM" 24-hour label.
func ParseTimeSlot(s string) (TimeSlot, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("invalid time slot %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in time slot %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in time slot %q", s)
	}
	return TimeSlot(h*60 + m), nil
}

// NewTimeSlot builds a slot from an hour and minute.
func NewTimeSlot(hour, minute int) TimeSlot {
	return TimeSlot(hour*60 + minute)
}

func (s TimeSlot) Hour() int   { return int(s) / 60 }
func (s TimeSlot) Minute() int { return int(s) % 60 }

func (s TimeSlot) String() string {
	return fmt.Sprintf("%02d:%02d", s.Hour(), s.Minute())
}

// Aligned reports whether s sits on a grid of the given interval in minutes.
func (s TimeSlot) Aligned(interval int) bool {
	return interval > 0 && int(s)%interval == 0
}

func (s TimeSlot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *TimeSlot) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	parsed, err := ParseTimeSlot(label)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// SlotSet is an unordered, deduplicated set of slots.
type SlotSet map[TimeSlot]struct{}

func (set SlotSet) Add(s TimeSlot) { set[s] = struct{}{} }

func (set SlotSet) Has(s TimeSlot) bool {
	_, ok := set[s]
	return ok
}

// Sorted returns the members in ascending order.
func (set SlotSet) Sorted() []TimeSlot {
	out := make([]TimeSlot, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Labels renders slots as HH:MM strings, preserving order.
func Labels(slots []TimeSlot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	return out
}
