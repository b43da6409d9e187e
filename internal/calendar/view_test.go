package calendar

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/moimhq/moim/internal/api"
	"github.com/moimhq/moim/internal/report"
	"github.com/moimhq/moim/pkg/moimtest"
)

const (
	testTeamID        = int64(5)
	testParticipantID = int64(77)
)

type viewFixture struct {
	server  *moimtest.Server
	view    *View
	alerts  *int
	confirm *bool
}

func newViewFixture(t *testing.T) *viewFixture {
	t.Helper()
	server := moimtest.NewServer()
	t.Cleanup(server.Close)

	client, err := api.NewClient(server.URL, http.DefaultClient)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	alerts := 0
	confirmAnswer := true
	reporter := report.New(nil, report.NotifierFunc(func(string) { alerts++ }))
	view := NewView(client, testTeamID, testParticipantID, reporter, func(string) bool { return confirmAnswer })
	return &viewFixture{server: server, view: view, alerts: &alerts, confirm: &confirmAnswer}
}

func seedSchedule(f *viewFixture, title string) api.Schedule {
	return f.server.SeedSchedule(testTeamID, api.Schedule{
		Title:        title,
		StartDt:      time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
		EndDt:        time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
		Content:      "agenda",
		Place:        "Room 4",
		CategoryName: "planning",
		CategoryID:   7,
		Color:        "#82AAFF",
	})
}

func countDeletes(server *moimtest.Server) int {
	n := 0
	for _, r := range server.Requests() {
		if r.Method == http.MethodDelete {
			n++
		}
	}
	return n
}

func TestSelect_OpensDetailView(t *testing.T) {
	f := newViewFixture(t)
	seeded := seedSchedule(f, "Sprint planning")

	ctx := context.Background()
	if err := f.view.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	sel, err := f.view.Select(f.view.Events()[0].ID)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if sel.Title != seeded.Title {
		t.Errorf("expected title %q, got %q", seeded.Title, sel.Title)
	}
	if !sel.Start.Equal(seeded.StartDt) {
		t.Errorf("expected start %v, got %v", seeded.StartDt, sel.Start)
	}
	if sel.Content != seeded.Content || sel.Place != seeded.Place {
		t.Errorf("expected content/place %q/%q, got %q/%q", seeded.Content, seeded.Place, sel.Content, sel.Place)
	}
	if sel.Category != seeded.CategoryName || sel.CategoryID != seeded.CategoryID {
		t.Errorf("expected category %q (%d), got %q (%d)", seeded.CategoryName, seeded.CategoryID, sel.Category, sel.CategoryID)
	}
}

func TestSelect_UnknownID(t *testing.T) {
	f := newViewFixture(t)
	if _, err := f.view.Select("999"); err == nil {
		t.Fatal("expected an error for an unknown event id")
	}
	if f.view.Selected() != nil {
		t.Error("expected no selection after a failed Select")
	}
}

func TestSelectDate_PrefillsDraft(t *testing.T) {
	f := newViewFixture(t)
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	f.view.SelectDate(day)

	draft := f.view.Draft()
	if !draft.Start.Equal(day) {
		t.Errorf("expected draft start %v, got %v", day, draft.Start)
	}
	if !draft.End.Equal(day.Add(time.Hour)) {
		t.Errorf("expected draft end one hour later, got %v", draft.End)
	}
	if f.view.Selected() != nil {
		t.Error("expected date selection to close the detail view")
	}
}

func TestCreate_ReloadsEvents(t *testing.T) {
	f := newViewFixture(t)
	ctx := context.Background()

	err := f.view.Create(ctx, Draft{
		Title:      "Retro",
		CategoryID: 7,
		Start:      time.Date(2025, 3, 21, 15, 0, 0, 0, time.UTC),
		End:        time.Date(2025, 3, 21, 16, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(f.view.Events()) != 1 {
		t.Fatalf("expected the created event in the view, got %d events", len(f.view.Events()))
	}
	if f.view.Events()[0].Title != "Retro" {
		t.Errorf("expected title %q, got %q", "Retro", f.view.Events()[0].Title)
	}
}

func TestDelete_DeclinedConfirmationSendsNothing(t *testing.T) {
	f := newViewFixture(t)
	seeded := seedSchedule(f, "keep me")
	*f.confirm = false

	ctx := context.Background()
	if err := f.view.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := f.view.Delete(ctx, seeded.ScheduleID); err != nil {
		t.Fatalf("a declined delete is not an error, got %v", err)
	}

	if got := countDeletes(f.server); got != 0 {
		t.Errorf("expected no DELETE request after declining, got %d", got)
	}
	if len(f.view.Events()) != 1 {
		t.Errorf("expected the event to survive, got %d events", len(f.view.Events()))
	}
}

func TestDelete_ConfirmedRefetchesEvents(t *testing.T) {
	f := newViewFixture(t)
	seeded := seedSchedule(f, "doomed")

	ctx := context.Background()
	if err := f.view.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := f.view.Delete(ctx, seeded.ScheduleID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if got := countDeletes(f.server); got != 1 {
		t.Errorf("expected 1 DELETE request, got %d", got)
	}
	if len(f.view.Events()) != 0 {
		t.Errorf("expected an empty view after the refetch, got %d events", len(f.view.Events()))
	}
	if *f.alerts != 0 {
		t.Errorf("expected no alert on success, got %d", *f.alerts)
	}
}

func TestDelete_ForbiddenKeepsEventsAndAlertsOnce(t *testing.T) {
	f := newViewFixture(t)
	seeded := seedSchedule(f, "protected")
	f.server.FailDeleteSchedule(http.StatusForbidden)

	ctx := context.Background()
	if err := f.view.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := f.view.Delete(ctx, seeded.ScheduleID); err == nil {
		t.Fatal("expected the delete to fail")
	}
	if *f.alerts != 1 {
		t.Errorf("expected exactly 1 alert, got %d", *f.alerts)
	}
	if len(f.view.Events()) != 1 {
		t.Errorf("expected the displayed events to be untouched, got %d", len(f.view.Events()))
	}
}
