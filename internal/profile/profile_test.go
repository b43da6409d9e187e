package profile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"github.com/moimhq/moim/internal/api"
	"github.com/moimhq/moim/internal/report"
	"github.com/moimhq/moim/pkg/moimtest"
)

// authedClient builds an API client that sends a bearer token, the way the
// composed app does after sign-in.
func authedClient(t *testing.T, server *moimtest.Server) *api.Client {
	t.Helper()
	httpClient := oauth2.NewClient(context.Background(),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-access-token"}))
	client, err := api.NewClient(server.URL, httpClient)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func countRequests(server *moimtest.Server, method, path string) int {
	n := 0
	for _, r := range server.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func TestUserManagerLoad(t *testing.T) {
	server := moimtest.NewServer()
	defer server.Close()
	server.SetUser(api.User{ID: 9, Name: "mina", Email: "mina@moim.test"})
	server.SeedTeam(api.Team{TeamID: 1, TeamName: "platform", TeamRole: api.RoleMember})
	server.SeedTeam(api.Team{TeamID: 2, TeamName: "design", TeamRole: api.RoleLeader})

	m := NewUserManager(authedClient(t, server), report.New(nil, nil))
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.User() == nil || m.User().Email != "mina@moim.test" {
		t.Errorf("expected the member profile, got %+v", m.User())
	}
	if len(m.Teams()) != 2 {
		t.Errorf("expected 2 teams, got %d", len(m.Teams()))
	}
}

func TestUserManagerLoad_ExpiredToken(t *testing.T) {
	server := moimtest.NewServer()
	defer server.Close()

	// No bearer token at all stands in for an expired session.
	client, err := api.NewClient(server.URL, http.DefaultClient)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	m := NewUserManager(client, report.New(nil, nil))

	err = m.Load(context.Background())
	if err == nil {
		t.Fatal("expected Load to fail without a token")
	}
	if !strings.Contains(err.Error(), "sign in again") {
		t.Errorf("expected an auth-specific message, got %q", err)
	}
}

func TestChangePassword_Validation(t *testing.T) {
	server := moimtest.NewServer()
	defer server.Close()
	m := NewUserManager(authedClient(t, server), report.New(nil, nil))

	tests := []struct {
		name      string
		current   string
		new       string
		confirm   string
		wantField string
	}{
		{name: "missing current", current: "", new: "longenough", confirm: "longenough", wantField: "password"},
		{name: "too short", current: "password1", new: "short", confirm: "short", wantField: "newPassword"},
		{name: "unchanged", current: "password1", new: "password1", confirm: "password1", wantField: "newPassword"},
		{name: "mismatch", current: "password1", new: "longenough", confirm: "different1", wantField: "confirmPassword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.ChangePassword(context.Background(), tt.current, tt.new, tt.confirm)
			var re *report.Error
			if !errors.As(err, &re) {
				t.Fatalf("expected *report.Error, got %v", err)
			}
			if re.Kind != report.KindValidation {
				t.Errorf("expected kind %q, got %q", report.KindValidation, re.Kind)
			}
			if re.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, re.Field)
			}
		})
	}

	if got := len(server.Requests()); got != 0 {
		t.Errorf("validation failures must not reach the network, got %d requests", got)
	}
}

func TestChangePassword_Submits(t *testing.T) {
	server := moimtest.NewServer()
	defer server.Close()
	m := NewUserManager(authedClient(t, server), report.New(nil, nil))

	if err := m.ChangePassword(context.Background(), "password1", "longenough", "longenough"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}

	var posted *moimtest.Request
	requests := server.Requests()
	for i := range requests {
		if requests[i].Method == http.MethodPost && requests[i].Path == "/member/password" {
			posted = &requests[i]
		}
	}
	if posted == nil {
		t.Fatal("expected a POST /member/password request")
	}
	var body api.ChangePasswordRequest
	if err := json.Unmarshal(posted.Body, &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.OldPassword != "password1" || body.NewPassword != "longenough" {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	server := moimtest.NewServer()
	defer server.Close()
	m := NewUserManager(authedClient(t, server), report.New(nil, nil))

	err := m.ChangePassword(context.Background(), "not-the-password", "longenough", "longenough")
	if err == nil {
		t.Fatal("expected the server to refuse the wrong current password")
	}
	if got := report.Classify(err); got != report.KindAuth {
		t.Errorf("expected kind %q, got %q", report.KindAuth, got)
	}
}

func TestUpdateProfile_TrimsNickname(t *testing.T) {
	server := moimtest.NewServer()
	defer server.Close()
	seeded := server.SeedTeam(api.Team{TeamID: 3, TeamName: "infra", TeamRole: api.RoleMember, TeamNickName: "old"})

	m := NewTeamManager(authedClient(t, server), report.New(nil, nil))
	ctx := context.Background()
	if err := m.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := m.Select(seeded.TeamID); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	if err := m.UpdateProfile(ctx, "  mina  ", ""); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	if err := m.Load(ctx); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := m.Teams()[0].TeamNickName; got != "mina" {
		t.Errorf("expected the trimmed nickname %q, got %q", "mina", got)
	}
}

func TestUpdateProfile_WithAvatar(t *testing.T) {
	server := moimtest.NewServer()
	defer server.Close()
	seeded := server.SeedTeam(api.Team{TeamID: 3, TeamName: "infra", TeamRole: api.RoleMember})

	avatarPath := filepath.Join(t.TempDir(), "face.png")
	if err := os.WriteFile(avatarPath, []byte("not really a png"), 0o644); err != nil {
		t.Fatalf("failed to write avatar fixture: %v", err)
	}

	m := NewTeamManager(authedClient(t, server), report.New(nil, nil))
	ctx := context.Background()
	if err := m.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := m.Select(seeded.TeamID); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if err := m.UpdateProfile(ctx, "mina", avatarPath); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	if err := m.Load(ctx); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := m.Teams()[0].ParticipantsProfileURL; !strings.HasSuffix(got, "face.png") {
		t.Errorf("expected the avatar to be stored, got url %q", got)
	}
}

func TestUpdateProfile_MissingAvatarFile(t *testing.T) {
	server := moimtest.NewServer()
	defer server.Close()
	seeded := server.SeedTeam(api.Team{TeamID: 3, TeamRole: api.RoleMember})

	m := NewTeamManager(authedClient(t, server), report.New(nil, nil))
	ctx := context.Background()
	if err := m.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := m.Select(seeded.TeamID); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	err := m.UpdateProfile(ctx, "mina", filepath.Join(t.TempDir(), "nope.png"))
	var re *report.Error
	if !errors.As(err, &re) || re.Field != "avatar" {
		t.Fatalf("expected a validation error on the avatar field, got %v", err)
	}
	if got := countRequests(server, http.MethodPost, "/member/participant"); got != 0 {
		t.Errorf("expected no upload for an unreadable file, got %d", got)
	}
}

func TestLeave_SoleLeaderGuard(t *testing.T) {
	server := moimtest.NewServer()
	defer server.Close()
	seeded := server.SeedTeam(api.Team{TeamID: 4, TeamName: "led", TeamRole: api.RoleLeader})

	alerts := 0
	m := NewTeamManager(authedClient(t, server), report.New(nil, report.NotifierFunc(func(string) { alerts++ })))
	ctx := context.Background()
	if err := m.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := m.Select(seeded.TeamID); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	err := m.Leave(ctx)
	if err == nil {
		t.Fatal("expected the guard to refuse")
	}
	if got := report.Classify(err); got != report.KindDomain {
		t.Errorf("expected kind %q, got %q", report.KindDomain, got)
	}
	if alerts != 1 {
		t.Errorf("expected exactly 1 alert, got %d", alerts)
	}
	if got := countRequests(server, http.MethodDelete, "/team/4/participant"); got != 0 {
		t.Errorf("the guard must refuse before any network call, got %d deletes", got)
	}
}

func TestLeave_MemberSucceeds(t *testing.T) {
	server := moimtest.NewServer()
	defer server.Close()
	seeded := server.SeedTeam(api.Team{TeamID: 4, TeamName: "led", TeamRole: api.RoleMember})

	m := NewTeamManager(authedClient(t, server), report.New(nil, nil))
	ctx := context.Background()
	if err := m.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := m.Select(seeded.TeamID); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	if err := m.Leave(ctx); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	if got := countRequests(server, http.MethodDelete, "/team/4/participant"); got != 1 {
		t.Errorf("expected 1 delete, got %d", got)
	}
	if m.Selected() != nil {
		t.Error("expected the selection to clear after leaving")
	}
	if len(m.Teams()) != 0 {
		t.Errorf("expected the team list refetched without the left team, got %d", len(m.Teams()))
	}
}

func TestLeave_NothingSelected(t *testing.T) {
	server := moimtest.NewServer()
	defer server.Close()

	m := NewTeamManager(authedClient(t, server), report.New(nil, nil))
	err := m.Leave(context.Background())
	var re *report.Error
	if !errors.As(err, &re) || re.Kind != report.KindValidation {
		t.Fatalf("expected a validation error, got %v", err)
	}
}
