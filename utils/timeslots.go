// utils/timeslots.go
package utils

import (
	"errors"
	"time"

	"github.com/beautycort/beautycort_backend/models"
)

// Slot reasons returned by availability checks
const (
	SlotReasonBooked        = "booked"
	SlotReasonPrayerTime    = "prayer_time"
	SlotReasonNonWorkingDay = "non_working_day"
	SlotReasonOutsideHours  = "outside_hours"
	SlotReasonPast          = "past"
)

// Friday prayer window blocked for all providers
const (
	fridayPrayerStart = "12:00"
	fridayPrayerEnd   = "13:30"
)

// SlotInterval is the booking grid granularity
const SlotInterval = 30 * time.Minute

// Grid shown for days the provider is closed or has no hours set
const (
	closedDayOpen  = "09:00"
	closedDayClose = "18:00"
)

// DefaultServiceDuration is assumed when no service is given
const DefaultServiceDuration = 30

// ParseBookingDate parses a "2006-01-02" date into midnight UTC
func ParseBookingDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, errors.New("invalid date format, use YYYY-MM-DD")
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ParseSlotTime parses a "15:04" clock time
func ParseSlotTime(s string) (time.Time, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, errors.New("invalid time format, use HH:MM")
	}
	return t, nil
}

// WeekdayKey returns the lowercase weekday name used in WorkingHours
func WeekdayKey(date time.Time) string {
	switch date.Weekday() {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	default:
		return "sunday"
	}
}

// EndTime adds a service duration to a "15:04" start time
func EndTime(start string, durationMinutes int) (string, error) {
	t, err := ParseSlotTime(start)
	if err != nil {
		return "", err
	}
	return t.Add(time.Duration(durationMinutes) * time.Minute).Format("15:04"), nil
}

// InPrayerWindow reports whether a slot on the given date falls inside a
// blocked prayer window
func InPrayerWindow(date time.Time, slot string) bool {
	if date.Weekday() != time.Friday {
		return false
	}
	t, err := ParseSlotTime(slot)
	if err != nil {
		return false
	}
	start, _ := ParseSlotTime(fridayPrayerStart)
	end, _ := ParseSlotTime(fridayPrayerEnd)
	return !t.Before(start) && t.Before(end)
}

// DaySlots returns the provider's slot grid for one weekday. Empty when
// the provider is closed or has no hours configured for that day.
func DaySlots(hours models.WorkingHours, date time.Time) []string {
	day, ok := hours[WeekdayKey(date)]
	if !ok || day.Closed {
		return nil
	}

	open, err := ParseSlotTime(day.Open)
	if err != nil {
		return nil
	}
	close, err := ParseSlotTime(day.Close)
	if err != nil {
		return nil
	}

	var slots []string
	for t := open; t.Before(close); t = t.Add(SlotInterval) {
		slots = append(slots, t.Format("15:04"))
	}
	return slots
}

// BuildAvailability computes the slot list for a provider on one date.
// booked holds the occupied start times, durationMinutes the requested
// service length, now the current wall clock for past-slot filtering.
func BuildAvailability(hours models.WorkingHours, date time.Time, booked map[string]bool, durationMinutes int, now time.Time) []models.TimeSlot {
	grid := DaySlots(hours, date)
	if grid == nil {
		return nonWorkingDaySlots()
	}

	if durationMinutes <= 0 {
		durationMinutes = DefaultServiceDuration
	}

	day := hours[WeekdayKey(date)]
	closeAt, _ := ParseSlotTime(day.Close)

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	isToday := date.Equal(today)

	slots := make([]models.TimeSlot, 0, len(grid))
	for _, s := range grid {
		slot := models.TimeSlot{Time: s, Available: true}
		start, _ := ParseSlotTime(s)
		end := start.Add(time.Duration(durationMinutes) * time.Minute)

		switch {
		case end.After(closeAt):
			slot.Available = false
			slot.Reason = SlotReasonOutsideHours
		case booked[s]:
			slot.Available = false
			slot.Reason = SlotReasonBooked
		case InPrayerWindow(date, s):
			slot.Available = false
			slot.Reason = SlotReasonPrayerTime
		case isToday && !afterClock(start, now):
			slot.Available = false
			slot.Reason = SlotReasonPast
		}
		slots = append(slots, slot)
	}
	return slots
}

// nonWorkingDaySlots renders a standard-hours grid with every slot
// blocked, so closed days still explain why nothing is bookable.
func nonWorkingDaySlots() []models.TimeSlot {
	open, _ := ParseSlotTime(closedDayOpen)
	close, _ := ParseSlotTime(closedDayClose)

	var slots []models.TimeSlot
	for t := open; t.Before(close); t = t.Add(SlotInterval) {
		slots = append(slots, models.TimeSlot{
			Time:   t.Format("15:04"),
			Reason: SlotReasonNonWorkingDay,
		})
	}
	return slots
}

func afterClock(slot time.Time, now time.Time) bool {
	return slot.Hour() > now.Hour() || (slot.Hour() == now.Hour() && slot.Minute() > now.Minute())
}

// SuggestTimes picks up to max free slots from an availability list,
// used as alternatives when a requested slot is taken
func SuggestTimes(slots []models.TimeSlot, max int) []string {
	var out []string
	for _, s := range slots {
		if s.Available {
			out = append(out, s.Time)
			if len(out) == max {
				break
			}
		}
	}
	return out
}

// SlotOnGrid reports whether a requested start time is one of the
// provider's slots for that date
func SlotOnGrid(hours models.WorkingHours, date time.Time, startTime string) bool {
	for _, s := range DaySlots(hours, date) {
		if s == startTime {
			return true
		}
	}
	return false
}
