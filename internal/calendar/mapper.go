package calendar

import (
	"strconv"
	"time"

	"github.com/moimhq/moim/internal/api"
)

// EventProps carries the schedule fields the detail view needs back out of
// a clicked display event.
type EventProps struct {
	Content      string
	Place        string
	ScheduleType string
	Category     string
	CategoryName string
	CategoryID   int64
}

// DisplayEvent is the calendar widget's display schema for one schedule.
type DisplayEvent struct {
	ID              string
	Start           time.Time
	End             time.Time
	Title           string
	BorderColor     string
	BackgroundColor string
	ExtendedProps   EventProps
}

// ConvertEvent maps one backend schedule record to its display form. The
// category color doubles as border and background; a category without a
// color yields empty strings.
func ConvertEvent(s api.Schedule) DisplayEvent {
	return DisplayEvent{
		ID:              strconv.FormatInt(s.ScheduleID, 10),
		Start:           s.StartDt,
		End:             s.EndDt,
		Title:           s.Title,
		BorderColor:     s.Color,
		BackgroundColor: s.Color,
		ExtendedProps: EventProps{
			Content:      s.Content,
			Place:        s.Place,
			ScheduleType: s.ScheduleType,
			Category:     s.Category,
			CategoryName: s.CategoryName,
			CategoryID:   s.CategoryID,
		},
	}
}

// ConvertEvents maps backend schedule records to the widget's display
// schema. Total over well-formed input: the output has one display event
// per record, fields preserved.
func ConvertEvents(schedules []api.Schedule) []DisplayEvent {
	events := make([]DisplayEvent, len(schedules))
	for i, s := range schedules {
		events[i] = ConvertEvent(s)
	}
	return events
}

// DisplayTime renders a timestamp for the detail view, truncated to the
// minute.
func DisplayTime(t time.Time) string {
	return t.Truncate(time.Minute).Format("2006-01-02 15:04")
}
