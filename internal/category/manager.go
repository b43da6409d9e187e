// Package category manages a team's schedule categories. The manager owns
// the displayed list and keeps it synchronized with the server: mutations
// either refetch the list or merge the server's returned representation,
// and a failed mutation leaves the list untouched.
package category

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/moimhq/moim/internal/api"
	"github.com/moimhq/moim/internal/report"
)

// deleteBlockedMsg is the alert raised when the server refuses a delete,
// which it does when the category's creator is still a member of the team.
const deleteBlockedMsg = "cannot delete category: its creator is still a member of this team"

// Input is the create/edit form. CategoryName is required; submission is
// aborted locally when it is empty.
type Input struct {
	CategoryName string `validate:"required"`
	CategoryType api.CategoryType
	Color        string
}

// DeleteOption carries the mandatory reassignment choice for schedules
// still assigned to the deleted category.
type DeleteOption struct {
	CategoryID    int64
	IsMoved       bool
	NewCategoryID int64
}

// Manager is the category list state for one team.
type Manager struct {
	client        *api.Client
	teamID        int64
	participantID int64
	reporter      *report.Reporter
	validate      *validator.Validate

	categories []api.Category
}

func NewManager(client *api.Client, teamID, participantID int64, reporter *report.Reporter) *Manager {
	return &Manager{
		client:        client,
		teamID:        teamID,
		participantID: participantID,
		reporter:      reporter,
		validate:      validator.New(),
	}
}

// Categories returns the currently displayed list.
func (m *Manager) Categories() []api.Category { return m.categories }

// List fetches and replaces the local list. A fetch failure is logged only
// and the previous list stays in place.
func (m *Manager) List(ctx context.Context) error {
	categories, err := m.client.ListCategories(ctx, m.teamID)
	if err != nil {
		m.reporter.Silent("list categories", err)
		return err
	}
	m.categories = categories
	return nil
}

// checkInput validates the form. On an empty name it returns a validation
// error naming categoryName so the caller can focus that field; no network
// call is made.
func (m *Manager) checkInput(in Input) error {
	if err := m.validate.Struct(in); err != nil {
		return report.Validation("categoryName", "category name is required")
	}
	return nil
}

// Create posts a new category. On success the server's representation is
// appended to the list.
func (m *Manager) Create(ctx context.Context, in Input) error {
	if err := m.checkInput(in); err != nil {
		return err
	}
	created, err := m.client.CreateCategory(ctx, api.CreateCategoryRequest{
		TeamID:              m.teamID,
		CreateParticipantID: m.participantID,
		CategoryName:        in.CategoryName,
		CategoryType:        in.CategoryType,
		Color:               in.Color,
	})
	if err != nil {
		m.reporter.Silent("create category", err)
		return err
	}
	m.categories = append(m.categories, *created)
	return nil
}

// Edit updates a category in place. On success the server's returned
// representation is merged into the list, so the display reflects
// authoritative state without waiting for an unrelated refetch.
func (m *Manager) Edit(ctx context.Context, categoryID int64, in Input) error {
	if err := m.checkInput(in); err != nil {
		return err
	}
	updated, err := m.client.EditCategory(ctx, api.EditCategoryRequest{
		CategoryID:          categoryID,
		TeamID:              m.teamID,
		UpdateParticipantID: m.participantID,
		CategoryName:        in.CategoryName,
		CategoryType:        in.CategoryType,
		Color:               in.Color,
	})
	if err != nil {
		m.reporter.Silent("edit category", err)
		return err
	}
	for i := range m.categories {
		if m.categories[i].CategoryID == updated.CategoryID {
			m.categories[i] = *updated
			break
		}
	}
	return nil
}

// Delete removes a category, carrying the reassignment choice in the
// request body. Success triggers a full refetch rather than a local splice;
// failure leaves the list untouched and raises exactly one alert.
func (m *Manager) Delete(ctx context.Context, opt DeleteOption) error {
	err := m.client.DeleteCategory(ctx, api.DeleteCategoryRequest{
		CategoryID:    opt.CategoryID,
		TeamID:        m.teamID,
		ParticipantID: m.participantID,
		IsMoved:       opt.IsMoved,
		NewCategoryID: opt.NewCategoryID,
	})
	if err != nil {
		m.reporter.Surface("delete category", deleteBlockedMsg, err)
		return err
	}
	return m.List(ctx)
}
