package utils

import (
	"testing"
	"time"

	"github.com/beautycort/beautycort_backend/models"
)

// 2025-01-06 is a Monday, 2025-01-03 a Friday
var (
	testMonday = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	testFriday = time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
)

func testHours() models.WorkingHours {
	return models.WorkingHours{
		"monday": {Open: "09:00", Close: "12:00"},
		"friday": {Open: "10:00", Close: "15:00"},
		"sunday": {Closed: true},
	}
}

func TestParseBookingDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid date", "2025-01-06", false},
		{"wrong format", "06/01/2025", true},
		{"not a date", "tomorrow", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBookingDate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBookingDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil {
				if got.Hour() != 0 || got.Minute() != 0 || got.Location() != time.UTC {
					t.Errorf("ParseBookingDate(%q) = %v, want midnight UTC", tt.input, got)
				}
			}
		})
	}
}

func TestWeekdayKey(t *testing.T) {
	if got := WeekdayKey(testMonday); got != "monday" {
		t.Errorf("WeekdayKey(monday date) = %q", got)
	}
	if got := WeekdayKey(testFriday); got != "friday" {
		t.Errorf("WeekdayKey(friday date) = %q", got)
	}
}

func TestEndTime(t *testing.T) {
	tests := []struct {
		start    string
		duration int
		want     string
	}{
		{"09:00", 30, "09:30"},
		{"09:30", 60, "10:30"},
		{"13:00", 90, "14:30"},
	}

	for _, tt := range tests {
		got, err := EndTime(tt.start, tt.duration)
		if err != nil {
			t.Fatalf("EndTime(%q, %d) error: %v", tt.start, tt.duration, err)
		}
		if got != tt.want {
			t.Errorf("EndTime(%q, %d) = %q, want %q", tt.start, tt.duration, got, tt.want)
		}
	}
}

func TestInPrayerWindow(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		slot string
		want bool
	}{
		{"friday during prayer", testFriday, "12:00", true},
		{"friday mid prayer", testFriday, "13:00", true},
		{"friday after prayer", testFriday, "13:30", false},
		{"friday before prayer", testFriday, "11:30", false},
		{"monday same time", testMonday, "12:30", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InPrayerWindow(tt.date, tt.slot); got != tt.want {
				t.Errorf("InPrayerWindow(%v, %q) = %v, want %v", tt.date.Weekday(), tt.slot, got, tt.want)
			}
		})
	}
}

func TestDaySlots(t *testing.T) {
	hours := testHours()

	slots := DaySlots(hours, testMonday)
	want := []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}
	if len(slots) != len(want) {
		t.Fatalf("DaySlots returned %d slots, want %d: %v", len(slots), len(want), slots)
	}
	for i := range want {
		if slots[i] != want[i] {
			t.Errorf("slot[%d] = %q, want %q", i, slots[i], want[i])
		}
	}

	// Sunday is marked closed
	sunday := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	if got := DaySlots(hours, sunday); got != nil {
		t.Errorf("DaySlots on closed day = %v, want nil", got)
	}

	// Saturday has no entry at all
	saturday := time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC)
	if got := DaySlots(hours, saturday); got != nil {
		t.Errorf("DaySlots on unconfigured day = %v, want nil", got)
	}
}

func TestBuildAvailability(t *testing.T) {
	hours := testHours()
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

	booked := map[string]bool{"09:30": true}
	slots := BuildAvailability(hours, testMonday, booked, 60, now)
	if len(slots) != 6 {
		t.Fatalf("got %d slots, want 6", len(slots))
	}

	byTime := map[string]models.TimeSlot{}
	for _, s := range slots {
		byTime[s.Time] = s
	}

	if s := byTime["09:00"]; !s.Available {
		t.Errorf("09:00 should be available, reason %q", s.Reason)
	}
	if s := byTime["09:30"]; s.Available || s.Reason != SlotReasonBooked {
		t.Errorf("09:30 = %+v, want booked", s)
	}
	// 60-minute service starting 11:30 would run past the 12:00 close
	if s := byTime["11:30"]; s.Available || s.Reason != SlotReasonOutsideHours {
		t.Errorf("11:30 = %+v, want outside_hours", s)
	}
}

func TestBuildAvailabilityPrayerAndPast(t *testing.T) {
	hours := testHours()

	// Same-day request at 11:05: morning slots are gone
	now := time.Date(2025, 1, 3, 11, 5, 0, 0, time.UTC)
	slots := BuildAvailability(hours, testFriday, nil, 30, now)

	byTime := map[string]models.TimeSlot{}
	for _, s := range slots {
		byTime[s.Time] = s
	}

	if s := byTime["10:00"]; s.Available || s.Reason != SlotReasonPast {
		t.Errorf("10:00 = %+v, want past", s)
	}
	if s := byTime["11:30"]; !s.Available {
		t.Errorf("11:30 should be available, reason %q", s.Reason)
	}
	if s := byTime["12:30"]; s.Available || s.Reason != SlotReasonPrayerTime {
		t.Errorf("12:30 = %+v, want prayer_time", s)
	}
	if s := byTime["13:30"]; !s.Available {
		t.Errorf("13:30 should be available after prayer, reason %q", s.Reason)
	}
}

func TestSuggestTimes(t *testing.T) {
	slots := []models.TimeSlot{
		{Time: "09:00", Available: false, Reason: SlotReasonBooked},
		{Time: "09:30", Available: true},
		{Time: "10:00", Available: true},
		{Time: "10:30", Available: false, Reason: SlotReasonBooked},
		{Time: "11:00", Available: true},
		{Time: "11:30", Available: true},
	}

	got := SuggestTimes(slots, 3)
	want := []string{"09:30", "10:00", "11:00"}
	if len(got) != len(want) {
		t.Fatalf("SuggestTimes returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("suggestion[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := SuggestTimes(nil, 3); got != nil {
		t.Errorf("SuggestTimes(nil) = %v, want nil", got)
	}
}

func TestSlotOnGrid(t *testing.T) {
	hours := testHours()

	tests := []struct {
		name  string
		date  time.Time
		start string
		want  bool
	}{
		{"on grid", testMonday, "09:30", true},
		{"off grid minute", testMonday, "09:45", false},
		{"before opening", testMonday, "08:30", false},
		{"at closing", testMonday, "12:00", false},
		{"closed day", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), "10:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SlotOnGrid(hours, tt.date, tt.start); got != tt.want {
				t.Errorf("SlotOnGrid(%v, %q) = %v, want %v", tt.date.Weekday(), tt.start, got, tt.want)
			}
		})
	}
}

func TestBuildAvailabilityNonWorkingDay(t *testing.T) {
	// 2025-01-05 is a closed Sunday
	sunday := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

	slots := BuildAvailability(testHours(), sunday, nil, 30, now)
	if len(slots) != 18 {
		t.Fatalf("closed day grid has %d slots, want 18", len(slots))
	}
	if slots[0].Time != "09:00" || slots[len(slots)-1].Time != "17:30" {
		t.Errorf("closed day grid spans %s..%s, want 09:00..17:30", slots[0].Time, slots[len(slots)-1].Time)
	}
	for _, s := range slots {
		if s.Available {
			t.Errorf("slot %s available on a closed day", s.Time)
		}
		if s.Reason != SlotReasonNonWorkingDay {
			t.Errorf("slot %s reason = %q, want %q", s.Time, s.Reason, SlotReasonNonWorkingDay)
		}
	}
	if got := SuggestTimes(slots, 3); got != nil {
		t.Errorf("SuggestTimes on a closed day = %v, want nil", got)
	}

	// Unconfigured weekday gets the same treatment
	saturday := time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC)
	slots = BuildAvailability(testHours(), saturday, nil, 30, now)
	if len(slots) == 0 || slots[0].Reason != SlotReasonNonWorkingDay {
		t.Error("unconfigured day should return a non_working_day grid")
	}
}
