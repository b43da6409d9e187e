// Package profile manages the member's global profile and their per-team
// participant profiles (nickname, avatar). Mutations never update the
// display optimistically; views re-fetch afterwards.
package profile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/moimhq/moim/internal/api"
	"github.com/moimhq/moim/internal/report"
)

const soleLeaderMsg = "transfer team leadership before leaving the team"

// passwordForm is the password-change input. The new password must be at
// least 8 characters, different from the current one, and confirmed.
type passwordForm struct {
	Current string `validate:"required"`
	New     string `validate:"required,min=8,nefield=Current"`
	Confirm string `validate:"required,eqfield=New"`
}

// UserManager is the global profile view state.
type UserManager struct {
	client   *api.Client
	reporter *report.Reporter
	validate *validator.Validate

	user  *api.User
	teams []api.Team
}

func NewUserManager(client *api.Client, reporter *report.Reporter) *UserManager {
	return &UserManager{client: client, reporter: reporter, validate: validator.New()}
}

// User returns the loaded profile, nil before Load.
func (m *UserManager) User() *api.User { return m.user }

// Teams returns the member's teams, oldest first.
func (m *UserManager) Teams() []api.Team { return m.teams }

// Load fetches the member's profile and first page of teams. Auth failures
// get distinct messages so the view can tell an expired token from a
// server-side lookup problem.
func (m *UserManager) Load(ctx context.Context) error {
	user, err := m.client.MyPage(ctx)
	if err != nil {
		switch report.Classify(err) {
		case report.KindAuth:
			err = fmt.Errorf("session expired, sign in again: %w", err)
		default:
			err = fmt.Errorf("unable to load profile: %w", err)
		}
		m.reporter.Silent("load profile", err)
		return err
	}
	m.user = user

	teams, err := m.client.ListTeams(ctx, 0, 10)
	if err != nil {
		m.reporter.Silent("load teams", err)
		return err
	}
	m.teams = teams.Content
	return nil
}

// ChangePassword validates locally, then posts. Validation problems come
// back as field-carrying errors for inline rendering.
func (m *UserManager) ChangePassword(ctx context.Context, current, newPassword, confirm string) error {
	form := passwordForm{Current: current, New: newPassword, Confirm: confirm}
	if err := m.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		field, msg := "password", "missing required fields"
		if ok := isValidationErrors(err, &verrs); ok && len(verrs) > 0 {
			switch verrs[0].StructField() {
			case "New":
				field, msg = "newPassword", "password must be at least 8 characters"
				if verrs[0].Tag() == "nefield" {
					msg = "new password must differ from the current one"
				}
			case "Confirm":
				field, msg = "confirmPassword", "passwords do not match"
			}
		}
		return report.Validation(field, msg)
	}
	err := m.client.ChangePassword(ctx, api.ChangePasswordRequest{
		OldPassword: current,
		NewPassword: newPassword,
	})
	if err != nil {
		m.reporter.Silent("change password", err)
		return err
	}
	return nil
}

func isValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

// TeamManager is the per-team participant profile view state.
type TeamManager struct {
	client   *api.Client
	reporter *report.Reporter

	teams    []api.Team
	selected *api.Team
}

func NewTeamManager(client *api.Client, reporter *report.Reporter) *TeamManager {
	return &TeamManager{client: client, reporter: reporter}
}

// Teams returns the member's participant records.
func (m *TeamManager) Teams() []api.Team { return m.teams }

// Selected returns the team whose profile is being edited.
func (m *TeamManager) Selected() *api.Team { return m.selected }

// Load fetches the member's participant records.
func (m *TeamManager) Load(ctx context.Context) error {
	teams, err := m.client.ListParticipants(ctx)
	if err != nil {
		m.reporter.Silent("load participants", err)
		return err
	}
	m.teams = teams
	return nil
}

// Select picks the team to edit.
func (m *TeamManager) Select(teamID int64) error {
	for i := range m.teams {
		if m.teams[i].TeamID == teamID {
			m.selected = &m.teams[i]
			return nil
		}
	}
	return fmt.Errorf("not a participant of team %d", teamID)
}

// UpdateProfile edits the selected team's nickname and, when avatarPath is
// set, replaces the avatar image read from the local file. The nickname is
// trimmed before submission.
func (m *TeamManager) UpdateProfile(ctx context.Context, nickname, avatarPath string) error {
	if m.selected == nil {
		return report.Validation("team", "select a team first")
	}
	req := api.UpdateParticipantRequest{
		TeamParticipantsID: m.selected.TeamParticipantsID,
		TeamNickName:       strings.TrimSpace(nickname),
	}
	if avatarPath != "" {
		f, err := os.Open(avatarPath)
		if err != nil {
			return report.Validation("avatar", fmt.Sprintf("cannot read image: %v", err))
		}
		defer f.Close()
		req.Avatar = f
		req.AvatarFilename = filepath.Base(avatarPath)
	}
	if err := m.client.UpdateParticipant(ctx, req); err != nil {
		m.reporter.Silent("update participant", err)
		return err
	}
	return nil
}

// Leave removes the member from the selected team. A leader may not leave:
// the guard refuses before any network call so a team is never left without
// leadership.
func (m *TeamManager) Leave(ctx context.Context) error {
	if m.selected == nil {
		return report.Validation("team", "select a team first")
	}
	if m.selected.TeamRole == api.RoleLeader {
		err := report.Domain(soleLeaderMsg)
		m.reporter.Surface("leave team", soleLeaderMsg, err)
		return err
	}
	if err := m.client.LeaveTeam(ctx, m.selected.TeamID); err != nil {
		m.reporter.Silent("leave team", err)
		return err
	}
	m.selected = nil
	return m.Load(ctx)
}
