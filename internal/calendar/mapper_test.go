package calendar

import (
	"testing"
	"time"

	"github.com/moimhq/moim/internal/api"
)

func TestConvertEvent_AllFields(t *testing.T) {
	start := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	s := api.Schedule{
		ScheduleID:   42,
		Title:        "Sprint planning",
		StartDt:      start,
		EndDt:        start.Add(time.Hour),
		Content:      "Backlog grooming first",
		Place:        "Room 4",
		ScheduleType: "SIMPLE",
		CategoryName: "planning",
		CategoryID:   7,
		Color:        "#82AAFF",
	}

	e := ConvertEvent(s)

	if e.ID != "42" {
		t.Errorf("expected id %q, got %q", "42", e.ID)
	}
	if e.Title != s.Title {
		t.Errorf("expected title %q, got %q", s.Title, e.Title)
	}
	if !e.Start.Equal(s.StartDt) || !e.End.Equal(s.EndDt) {
		t.Errorf("expected times %v-%v, got %v-%v", s.StartDt, s.EndDt, e.Start, e.End)
	}
	if e.BorderColor != s.Color || e.BackgroundColor != s.Color {
		t.Errorf("expected both colors %q, got border %q background %q", s.Color, e.BorderColor, e.BackgroundColor)
	}
	if e.ExtendedProps.Content != s.Content {
		t.Errorf("expected content %q, got %q", s.Content, e.ExtendedProps.Content)
	}
	if e.ExtendedProps.Place != s.Place {
		t.Errorf("expected place %q, got %q", s.Place, e.ExtendedProps.Place)
	}
	if e.ExtendedProps.CategoryName != s.CategoryName {
		t.Errorf("expected category %q, got %q", s.CategoryName, e.ExtendedProps.CategoryName)
	}
	if e.ExtendedProps.CategoryID != s.CategoryID {
		t.Errorf("expected category id %d, got %d", s.CategoryID, e.ExtendedProps.CategoryID)
	}
}

func TestConvertEvent_MissingColor(t *testing.T) {
	e := ConvertEvent(api.Schedule{ScheduleID: 1, Title: "no category"})

	if e.BorderColor != "" || e.BackgroundColor != "" {
		t.Errorf("expected empty colors for uncategorized schedule, got border %q background %q",
			e.BorderColor, e.BackgroundColor)
	}
}

func TestConvertEvents_LengthPreserving(t *testing.T) {
	tests := []struct {
		name      string
		schedules []api.Schedule
	}{
		{name: "nil input", schedules: nil},
		{name: "empty input", schedules: []api.Schedule{}},
		{name: "three schedules", schedules: []api.Schedule{
			{ScheduleID: 1}, {ScheduleID: 2}, {ScheduleID: 3},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := ConvertEvents(tt.schedules)
			if len(events) != len(tt.schedules) {
				t.Errorf("expected %d events, got %d", len(tt.schedules), len(events))
			}
			for i := range events {
				if want := ConvertEvent(tt.schedules[i]); events[i].ID != want.ID {
					t.Errorf("event %d: expected id %q, got %q", i, want.ID, events[i].ID)
				}
			}
		})
	}
}

func TestDisplayTime(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "whole minute",
			in:   time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
			want: "2025-03-14 09:30",
		},
		{
			name: "seconds dropped, never rounded up",
			in:   time.Date(2025, 3, 14, 9, 30, 59, 0, time.UTC),
			want: "2025-03-14 09:30",
		},
		{
			name: "midnight",
			in:   time.Date(2025, 12, 31, 0, 0, 30, 0, time.UTC),
			want: "2025-12-31 00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayTime(tt.in); got != tt.want {
				t.Errorf("DisplayTime(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
