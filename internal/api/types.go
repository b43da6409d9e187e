package api

import "time"

// CategoryType distinguishes schedule categories from document categories.
type CategoryType string

const (
	CategorySchedule  CategoryType = "SCHEDULE"
	CategoryDocuments CategoryType = "DOCUMENTS"
)

// Role is a participant's role within one team. A team's sole leader may
// not remove themselves.
type Role string

const (
	RoleLeader Role = "LEADER"
	RoleMember Role = "MEMBER"
)

// Category is a named grouping for schedules or documents within a team.
type Category struct {
	CategoryID   int64        `json:"categoryId"`
	CategoryName string       `json:"categoryName"`
	CategoryType CategoryType `json:"categoryType"`
	Color        string       `json:"color,omitempty"`
	CreateDt     string       `json:"createDt,omitempty"`
	UpdateDt     string       `json:"updateDt,omitempty"`
}

// Schedule is one calendar event as the backend returns it.
type Schedule struct {
	ScheduleID   int64     `json:"scheduleId"`
	Title        string    `json:"title"`
	StartDt      time.Time `json:"startDt"`
	EndDt        time.Time `json:"endDt"`
	Content      string    `json:"content"`
	Place        string    `json:"place"`
	ScheduleType string    `json:"scheduleType"`
	Category     string    `json:"category"`
	CategoryName string    `json:"categoryName"`
	CategoryID   int64     `json:"categoryId"`
	Color        string    `json:"color,omitempty"`
}

// Document is one shared document in a team's list.
type Document struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	TeamID     int64    `json:"teamId"`
	CommentsID []string `json:"commentsId,omitempty"`
	CreatedDt  string   `json:"createdDt"`
	UpdatedDt  string   `json:"updatedDt"`
}

// Team is one team the authenticated user belongs to, merged with their
// participant record the way /member/participants returns it.
type Team struct {
	TeamID                 int64  `json:"teamId"`
	TeamName               string `json:"teamName"`
	TeamRole               Role   `json:"teamRole"`
	TeamParticipantsID     int64  `json:"teamParticipantsId"`
	TeamNickName           string `json:"teamNickName"`
	ParticipantsProfileURL string `json:"participantsProfileUrl"`
}

// User is the authenticated member's global profile.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Page is the backend's Spring-style page envelope.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}
