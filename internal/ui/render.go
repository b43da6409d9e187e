// Package ui renders the feature views for the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/moimhq/moim/internal/api"
	"github.com/moimhq/moim/internal/calendar"
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(ac("240", "245")).Width(10)
	mutedStyle  = lipgloss.NewStyle().Foreground(ac("240", "243"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// Categories renders the category list.
func Categories(categories []api.Category) string {
	if len(categories) == 0 {
		return mutedStyle.Render("no categories")
	}
	b := &strings.Builder{}
	b.WriteString(headerStyle.Render("Categories"))
	b.WriteByte('\n')
	for _, c := range categories {
		line := fmt.Sprintf("%4d  %-24s %s", c.CategoryID, c.CategoryName, c.CategoryType)
		if c.Color != "" {
			line += "  " + lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("●")
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Events renders the calendar event list.
func Events(events []calendar.DisplayEvent) string {
	if len(events) == 0 {
		return mutedStyle.Render("no events")
	}
	b := &strings.Builder{}
	b.WriteString(headerStyle.Render("Events"))
	b.WriteByte('\n')
	for _, e := range events {
		when := calendar.DisplayTime(e.Start)
		b.WriteString(fmt.Sprintf("%5s  %s  %-28s %s\n",
			e.ID, when, e.Title, mutedStyle.Render(e.ExtendedProps.CategoryName)))
	}
	return b.String()
}

// EventDetail renders the detail view for a clicked event.
func EventDetail(sel *calendar.Selected) string {
	b := &strings.Builder{}
	b.WriteString(titleStyle.Render(sel.Title))
	b.WriteByte('\n')
	b.WriteString(labelStyle.Render("when") + calendar.DisplayTime(sel.Start) + "\n")
	b.WriteString(labelStyle.Render("content") + sel.Content + "\n")
	b.WriteString(labelStyle.Render("place") + sel.Place + "\n")
	b.WriteString(labelStyle.Render("category") + sel.Category + "\n")
	return b.String()
}

// Documents renders one page of the document list.
func Documents(docs []api.Document, page, totalPages int) string {
	if len(docs) == 0 {
		return mutedStyle.Render("no documents")
	}
	b := &strings.Builder{}
	b.WriteString(headerStyle.Render("Documents"))
	b.WriteByte('\n')
	for _, d := range docs {
		preview := d.Content
		if len(preview) > 40 {
			preview = preview[:40] + "..."
		}
		b.WriteString(fmt.Sprintf("%-36s  %-24s %s\n", d.ID, d.Title, mutedStyle.Render(preview)))
	}
	if totalPages > 1 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("page %d of %d", page+1, totalPages)))
		b.WriteByte('\n')
	}
	return b.String()
}

// Teams renders the member's participant records.
func Teams(teams []api.Team) string {
	if len(teams) == 0 {
		return mutedStyle.Render("no teams")
	}
	b := &strings.Builder{}
	b.WriteString(headerStyle.Render("Teams"))
	b.WriteByte('\n')
	for _, t := range teams {
		b.WriteString(fmt.Sprintf("%4d  %-24s %-8s %s\n",
			t.TeamID, t.TeamName, t.TeamRole, mutedStyle.Render(t.TeamNickName)))
	}
	return b.String()
}

// UserProfile renders the member's global profile.
func UserProfile(user *api.User) string {
	b := &strings.Builder{}
	b.WriteString(titleStyle.Render(user.Name))
	b.WriteByte('\n')
	b.WriteString(labelStyle.Render("email") + user.Email + "\n")
	return b.String()
}

// Alert renders a blocking user-facing message.
func Alert(msg string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(ac("160", "203")).Render("! " + msg)
}
