package api

import (
	"context"
	"fmt"
	"time"
)

// ScheduleRequest is the body for creating or editing a simple schedule.
type ScheduleRequest struct {
	ScheduleID        int64     `json:"scheduleId,omitempty"`
	TeamParticipantID int64     `json:"teamParticipantId"`
	CategoryID        int64     `json:"categoryId"`
	Title             string    `json:"title"`
	Content           string    `json:"content"`
	Place             string    `json:"place"`
	StartDt           time.Time `json:"startDt"`
	EndDt             time.Time `json:"endDt"`
}

// DeleteScheduleRequest is the body of the schedule delete call.
type DeleteScheduleRequest struct {
	ScheduleID        int64 `json:"scheduleId"`
	TeamID            int64 `json:"teamId"`
	TeamParticipantID int64 `json:"teamParticipantId"`
}

// ListCalendar fetches every schedule of a team for calendar display.
func (c *Client) ListCalendar(ctx context.Context, teamID int64) ([]Schedule, error) {
	var schedules []Schedule
	if err := c.get(ctx, fmt.Sprintf("/team/%d/schedules/calendar", teamID), nil, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// CreateSchedule adds a simple schedule to the team calendar.
func (c *Client) CreateSchedule(ctx context.Context, teamID int64, req ScheduleRequest) (*Schedule, error) {
	var created Schedule
	if err := c.post(ctx, fmt.Sprintf("/team/%d/schedules/simple", teamID), nil, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// EditSchedule updates a simple schedule in place.
func (c *Client) EditSchedule(ctx context.Context, teamID int64, req ScheduleRequest) (*Schedule, error) {
	var updated Schedule
	if err := c.put(ctx, fmt.Sprintf("/team/%d/schedules/simple", teamID), nil, req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteSchedule removes one schedule.
func (c *Client) DeleteSchedule(ctx context.Context, req DeleteScheduleRequest) error {
	path := fmt.Sprintf("/team/%d/schedules/simple/%d", req.TeamID, req.ScheduleID)
	return c.delete(ctx, path, req, nil)
}
