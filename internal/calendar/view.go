// Package calendar is the team calendar view: it loads a team's schedules,
// converts them to the display schema, and handles the click-to-view, edit
// and delete interactions.
package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/moimhq/moim/internal/api"
	"github.com/moimhq/moim/internal/report"
)

const (
	deleteConfirmPrompt = "Delete this event?"
	deleteBlockedMsg    = "cannot delete event: its creator is still a member of this team"
	deleteFailedMsg     = "the event could not be deleted, please try again"
)

// Selected is the detail-view state extracted from a clicked event.
type Selected struct {
	ID         string
	Title      string
	Start      time.Time
	Content    string
	Place      string
	Category   string
	CategoryID int64
}

// Draft is the create/edit form state. Selecting a date pre-fills Start.
type Draft struct {
	Title      string
	Content    string
	Place      string
	CategoryID int64
	Start      time.Time
	End        time.Time
}

// View is the calendar state for one team.
type View struct {
	client        *api.Client
	teamID        int64
	participantID int64
	reporter      *report.Reporter
	// confirm answers a yes/no prompt; delete proceeds only on true.
	confirm func(prompt string) bool

	events   []DisplayEvent
	selected *Selected
	draft    Draft
}

func NewView(client *api.Client, teamID, participantID int64, reporter *report.Reporter, confirm func(string) bool) *View {
	if confirm == nil {
		confirm = func(string) bool { return true }
	}
	return &View{
		client:        client,
		teamID:        teamID,
		participantID: participantID,
		reporter:      reporter,
		confirm:       confirm,
	}
}

// Events returns the currently displayed events.
func (v *View) Events() []DisplayEvent { return v.events }

// Selected returns the detail-view state, nil when nothing is selected.
func (v *View) Selected() *Selected { return v.selected }

// Draft returns the create form's current pre-fill.
func (v *View) Draft() Draft { return v.draft }

// Load fetches the team's schedules and replaces the displayed events.
func (v *View) Load(ctx context.Context) error {
	schedules, err := v.client.ListCalendar(ctx, v.teamID)
	if err != nil {
		v.reporter.Silent("load events", err)
		return err
	}
	v.events = ConvertEvents(schedules)
	return nil
}

// Select opens the detail view for a clicked event. Every event opens the
// same detail view regardless of when it occurs.
func (v *View) Select(id string) (*Selected, error) {
	for i := range v.events {
		e := &v.events[i]
		if e.ID != id {
			continue
		}
		v.selected = &Selected{
			ID:         e.ID,
			Title:      e.Title,
			Start:      e.Start,
			Content:    e.ExtendedProps.Content,
			Place:      e.ExtendedProps.Place,
			Category:   e.ExtendedProps.CategoryName,
			CategoryID: e.ExtendedProps.CategoryID,
		}
		return v.selected, nil
	}
	return nil, fmt.Errorf("no event with id %q", id)
}

// SelectDate opens the create form pre-filled with the clicked date.
func (v *View) SelectDate(d time.Time) {
	v.selected = nil
	v.draft = Draft{Start: d, End: d.Add(time.Hour)}
}

// Create posts a new schedule from the draft and reloads the list so the
// display reflects server state.
func (v *View) Create(ctx context.Context, d Draft) error {
	_, err := v.client.CreateSchedule(ctx, v.teamID, api.ScheduleRequest{
		TeamParticipantID: v.participantID,
		CategoryID:        d.CategoryID,
		Title:             d.Title,
		Content:           d.Content,
		Place:             d.Place,
		StartDt:           d.Start,
		EndDt:             d.End,
	})
	if err != nil {
		v.reporter.Silent("create event", err)
		return err
	}
	return v.Load(ctx)
}

// Edit mutates the selected schedule in place and reloads the list.
func (v *View) Edit(ctx context.Context, scheduleID int64, d Draft) error {
	_, err := v.client.EditSchedule(ctx, v.teamID, api.ScheduleRequest{
		ScheduleID:        scheduleID,
		TeamParticipantID: v.participantID,
		CategoryID:        d.CategoryID,
		Title:             d.Title,
		Content:           d.Content,
		Place:             d.Place,
		StartDt:           d.Start,
		EndDt:             d.End,
	})
	if err != nil {
		v.reporter.Silent("edit event", err)
		return err
	}
	return v.Load(ctx)
}

// Delete removes the selected event after explicit confirmation. Success
// refetches the team's events instead of reloading everything; failure
// leaves the list untouched and surfaces an alert that distinguishes an
// authorization refusal from other failures.
func (v *View) Delete(ctx context.Context, scheduleID int64) error {
	if !v.confirm(deleteConfirmPrompt) {
		return nil
	}
	err := v.client.DeleteSchedule(ctx, api.DeleteScheduleRequest{
		ScheduleID:        scheduleID,
		TeamID:            v.teamID,
		TeamParticipantID: v.participantID,
	})
	if err != nil {
		msg := deleteFailedMsg
		if report.Classify(err) == report.KindAuth {
			msg = deleteBlockedMsg
		}
		v.reporter.Surface("delete event", msg, err)
		return err
	}
	v.selected = nil
	return v.Load(ctx)
}
