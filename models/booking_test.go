package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"pending to completed", StatusPending, StatusCompleted, false},
		{"pending to no_show", StatusPending, StatusNoShow, false},
		{"confirmed to completed", StatusConfirmed, StatusCompleted, true},
		{"confirmed to cancelled", StatusConfirmed, StatusCancelled, true},
		{"confirmed to no_show", StatusConfirmed, StatusNoShow, true},
		{"confirmed back to pending", StatusConfirmed, StatusPending, false},
		{"completed is terminal", StatusCompleted, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusConfirmed, false},
		{"no_show is terminal", StatusNoShow, StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsTerminalStatus(t *testing.T) {
	terminal := []string{StatusCompleted, StatusCancelled, StatusNoShow}
	for _, s := range terminal {
		if !IsTerminalStatus(s) {
			t.Errorf("IsTerminalStatus(%q) = false, want true", s)
		}
	}
	open := []string{StatusPending, StatusConfirmed}
	for _, s := range open {
		if IsTerminalStatus(s) {
			t.Errorf("IsTerminalStatus(%q) = true, want false", s)
		}
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []string{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow} {
		if !IsValidStatus(s) {
			t.Errorf("IsValidStatus(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "done", "PENDING", "noshow"} {
		if IsValidStatus(s) {
			t.Errorf("IsValidStatus(%q) = true, want false", s)
		}
	}
}

func TestBuildSlotKey(t *testing.T) {
	providerID, _ := primitive.ObjectIDFromHex("5f9b3b3b3b3b3b3b3b3b3b3b")
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	got := BuildSlotKey(providerID, date, "14:30")
	want := "5f9b3b3b3b3b3b3b3b3b3b3b|2025-06-15|14:30"
	if got != want {
		t.Errorf("BuildSlotKey = %q, want %q", got, want)
	}

	// Different providers at the same time must produce different keys
	otherID := primitive.NewObjectID()
	if BuildSlotKey(otherID, date, "14:30") == got {
		t.Error("slot keys for different providers collided")
	}
}
