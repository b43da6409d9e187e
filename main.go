package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/moimhq/moim/internal/api"
	"github.com/moimhq/moim/internal/auth"
	"github.com/moimhq/moim/internal/calendar"
	"github.com/moimhq/moim/internal/category"
	"github.com/moimhq/moim/internal/config"
	"github.com/moimhq/moim/internal/docs"
	"github.com/moimhq/moim/internal/profile"
	"github.com/moimhq/moim/internal/realtime"
	"github.com/moimhq/moim/internal/report"
	"github.com/moimhq/moim/internal/ui"
)

type moimApp struct {
	cfg      *config.Config
	reporter *report.Reporter
	session  *auth.Session // authenticated member (initialized lazily)
	client   *api.Client
}

// newMoimApp creates the app with lazy initialization. Authentication
// happens only when a command first needs the backend.
func newMoimApp(cfg *config.Config) *moimApp {
	notifier := report.NotifierFunc(func(msg string) {
		fmt.Fprintln(os.Stderr, ui.Alert(msg))
	})
	return &moimApp{
		cfg:      cfg,
		reporter: report.New(slog.Default(), notifier),
	}
}

// ensureInitialized lazily resumes the saved session on first use.
func (a *moimApp) ensureInitialized(ctx context.Context) error {
	if a.client != nil {
		return nil
	}

	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	tokenPath, err := config.GetTokenPath()
	if err != nil {
		return err
	}

	session, err := auth.Resume(ctx, a.cfg.APIBaseURL, tokenPath)
	if err != nil {
		return fmt.Errorf("no active session: %w\n\nRun 'moim login' to sign in", err)
	}
	client, err := api.NewClient(a.cfg.APIBaseURL, session.HTTPClient(ctx))
	if err != nil {
		return err
	}

	slog.Info("session resumed", "member", session.User.Email)
	a.session = session
	a.client = client
	return nil
}

// emit writes either the rendered text or, under --output json, the raw
// value.
func emit(cmd *cli.Command, v any, text string) error {
	if cmd.String("output") == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	fmt.Println(text)
	return nil
}

// confirm asks on the terminal and treats anything but y/yes as a no.
func confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

// parseTime accepts a date with or without a wall-clock time.
func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (expected RFC3339 or 2006-01-02 15:04)", s)
}

func teamFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{Name: "team", Usage: "team id", Required: true},
		&cli.Int64Flag{Name: "participant", Usage: "your participant id in the team", Required: true},
	}
}

func (a *moimApp) loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and save the access token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Usage: "account email", Required: true},
			&cli.StringFlag{Name: "password", Usage: "account password", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := config.EnsureConfigDir(); err != nil {
				return err
			}
			tokenPath, err := config.GetTokenPath()
			if err != nil {
				return err
			}
			if _, err := auth.SignIn(ctx, a.cfg.APIBaseURL, cmd.String("email"), cmd.String("password"), tokenPath); err != nil {
				return err
			}
			fmt.Println("Signed in.")
			return nil
		},
	}
}

func (a *moimApp) categoryCommand() *cli.Command {
	manager := func(ctx context.Context, cmd *cli.Command) (*category.Manager, error) {
		if err := a.ensureInitialized(ctx); err != nil {
			return nil, err
		}
		return category.NewManager(a.client, cmd.Int64("team"), cmd.Int64("participant"), a.reporter), nil
	}
	inputFlags := []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "category name", Required: true},
		&cli.StringFlag{Name: "type", Usage: "SCHEDULE or DOCUMENTS", Value: string(api.CategorySchedule)},
		&cli.StringFlag{Name: "color", Usage: "display color, e.g. #82AAFF"},
	}
	input := func(cmd *cli.Command) category.Input {
		return category.Input{
			CategoryName: cmd.String("name"),
			CategoryType: api.CategoryType(cmd.String("type")),
			Color:        cmd.String("color"),
		}
	}

	return &cli.Command{
		Name:  "category",
		Usage: "Manage a team's categories",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the team's categories",
				Flags: teamFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					m, err := manager(ctx, cmd)
					if err != nil {
						return err
					}
					if err := m.List(ctx); err != nil {
						return err
					}
					return emit(cmd, m.Categories(), ui.Categories(m.Categories()))
				},
			},
			{
				Name:  "add",
				Usage: "Create a category",
				Flags: append(teamFlags(), inputFlags...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					m, err := manager(ctx, cmd)
					if err != nil {
						return err
					}
					if err := m.Create(ctx, input(cmd)); err != nil {
						return err
					}
					return emit(cmd, m.Categories(), ui.Categories(m.Categories()))
				},
			},
			{
				Name:  "edit",
				Usage: "Rename or recolor a category",
				Flags: append(append(teamFlags(), &cli.Int64Flag{Name: "id", Usage: "category id", Required: true}), inputFlags...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					m, err := manager(ctx, cmd)
					if err != nil {
						return err
					}
					if err := m.List(ctx); err != nil {
						return err
					}
					if err := m.Edit(ctx, cmd.Int64("id"), input(cmd)); err != nil {
						return err
					}
					return emit(cmd, m.Categories(), ui.Categories(m.Categories()))
				},
			},
			{
				Name:  "delete",
				Usage: "Delete a category, optionally moving its schedules",
				Flags: append(teamFlags(),
					&cli.Int64Flag{Name: "id", Usage: "category id", Required: true},
					&cli.Int64Flag{Name: "move-to", Usage: "category to move the schedules into (omit to delete them)"},
				),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					m, err := manager(ctx, cmd)
					if err != nil {
						return err
					}
					opt := category.DeleteOption{CategoryID: cmd.Int64("id")}
					if to := cmd.Int64("move-to"); to != 0 {
						opt.IsMoved = true
						opt.NewCategoryID = to
					}
					if err := m.Delete(ctx, opt); err != nil {
						return err
					}
					return emit(cmd, m.Categories(), ui.Categories(m.Categories()))
				},
			},
		},
	}
}

func (a *moimApp) calendarCommand() *cli.Command {
	view := func(ctx context.Context, cmd *cli.Command) (*calendar.View, error) {
		if err := a.ensureInitialized(ctx); err != nil {
			return nil, err
		}
		return calendar.NewView(a.client, cmd.Int64("team"), cmd.Int64("participant"), a.reporter, confirm), nil
	}
	draftFlags := []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "event title", Required: true},
		&cli.StringFlag{Name: "content", Usage: "event description"},
		&cli.StringFlag{Name: "place", Usage: "where the event happens"},
		&cli.Int64Flag{Name: "category", Usage: "category id", Required: true},
		&cli.StringFlag{Name: "start", Usage: "start time", Required: true},
		&cli.StringFlag{Name: "end", Usage: "end time", Required: true},
	}
	draft := func(cmd *cli.Command) (calendar.Draft, error) {
		start, err := parseTime(cmd.String("start"))
		if err != nil {
			return calendar.Draft{}, err
		}
		end, err := parseTime(cmd.String("end"))
		if err != nil {
			return calendar.Draft{}, err
		}
		return calendar.Draft{
			Title:      cmd.String("title"),
			Content:    cmd.String("content"),
			Place:      cmd.String("place"),
			CategoryID: cmd.Int64("category"),
			Start:      start,
			End:        end,
		}, nil
	}

	return &cli.Command{
		Name:  "calendar",
		Usage: "View and manage the team calendar",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the team's calendar events",
				Flags: teamFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					v, err := view(ctx, cmd)
					if err != nil {
						return err
					}
					if err := v.Load(ctx); err != nil {
						return err
					}
					return emit(cmd, v.Events(), ui.Events(v.Events()))
				},
			},
			{
				Name:  "view",
				Usage: "Show one event's details",
				Flags: append(teamFlags(), &cli.StringFlag{Name: "id", Usage: "event id", Required: true}),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					v, err := view(ctx, cmd)
					if err != nil {
						return err
					}
					if err := v.Load(ctx); err != nil {
						return err
					}
					sel, err := v.Select(cmd.String("id"))
					if err != nil {
						return err
					}
					return emit(cmd, sel, ui.EventDetail(sel))
				},
			},
			{
				Name:  "add",
				Usage: "Create an event",
				Flags: append(teamFlags(), draftFlags...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					v, err := view(ctx, cmd)
					if err != nil {
						return err
					}
					d, err := draft(cmd)
					if err != nil {
						return err
					}
					if err := v.Create(ctx, d); err != nil {
						return err
					}
					return emit(cmd, v.Events(), ui.Events(v.Events()))
				},
			},
			{
				Name:  "edit",
				Usage: "Update an event",
				Flags: append(append(teamFlags(), &cli.Int64Flag{Name: "id", Usage: "event id", Required: true}), draftFlags...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					v, err := view(ctx, cmd)
					if err != nil {
						return err
					}
					d, err := draft(cmd)
					if err != nil {
						return err
					}
					if err := v.Edit(ctx, cmd.Int64("id"), d); err != nil {
						return err
					}
					return emit(cmd, v.Events(), ui.Events(v.Events()))
				},
			},
			{
				Name:  "delete",
				Usage: "Delete an event (asks for confirmation)",
				Flags: append(teamFlags(), &cli.Int64Flag{Name: "id", Usage: "event id", Required: true}),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					v, err := view(ctx, cmd)
					if err != nil {
						return err
					}
					if err := v.Load(ctx); err != nil {
						return err
					}
					if err := v.Delete(ctx, cmd.Int64("id")); err != nil {
						return err
					}
					return emit(cmd, v.Events(), ui.Events(v.Events()))
				},
			},
		},
	}
}

func (a *moimApp) docsCommand() *cli.Command {
	list := func(ctx context.Context, cmd *cli.Command) (*docs.ListView, error) {
		if err := a.ensureInitialized(ctx); err != nil {
			return nil, err
		}
		return docs.NewListView(a.client, cmd.Int64("team"), a.reporter), nil
	}

	return &cli.Command{
		Name:  "docs",
		Usage: "Browse and edit the team's documents",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List documents, with optional title/content filter",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "team", Usage: "team id", Required: true},
					&cli.StringFlag{Name: "filter", Usage: "substring to match against title and content"},
					&cli.IntFlag{Name: "page", Usage: "page number, starting at 1", Value: 1},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					l, err := list(ctx, cmd)
					if err != nil {
						return err
					}
					if err := l.Load(ctx); err != nil {
						return err
					}
					l.SetFilter(cmd.String("filter"))
					page := int(cmd.Int("page"))
					return emit(cmd, l.Page(page-1), ui.Documents(l.Page(page-1), page, l.TotalPages()))
				},
			},
			{
				Name:  "create",
				Usage: "Create a document",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "team", Usage: "team id", Required: true},
					&cli.StringFlag{Name: "title", Usage: "document title", Required: true},
					&cli.StringFlag{Name: "content", Usage: "initial content"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					l, err := list(ctx, cmd)
					if err != nil {
						return err
					}
					doc, err := l.Create(ctx, cmd.String("title"), cmd.String("content"))
					if err != nil {
						return err
					}
					return emit(cmd, doc, fmt.Sprintf("Created document %s", doc.ID))
				},
			},
			{
				Name:  "open",
				Usage: "Open a live editing session on a document",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "document id", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := a.ensureInitialized(ctx); err != nil {
						return err
					}
					return a.openDocument(ctx, cmd.String("id"))
				},
			},
		},
	}
}

// openDocument keeps a realtime session on the document until interrupted,
// printing each broadcast as other editors push changes.
func (a *moimApp) openDocument(ctx context.Context, docID string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := realtime.Open(ctx, a.cfg.BrokerURL, docID, a.reporter, func(update realtime.DocumentUpdate) {
		fmt.Printf("[%d] %s\n%s\n", update.Seq, update.Title, update.Content)
	})
	if err != nil {
		return err
	}
	defer session.Deactivate()

	slog.Info("session open", "document", docID, "topic", session.Topic(), "state", session.State().String())
	fmt.Fprintln(os.Stderr, "Listening for changes. Press Ctrl-C to close the session.")

	<-ctx.Done()
	return nil
}

func (a *moimApp) profileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Manage your account and team profiles",
		Commands: []*cli.Command{
			{
				Name:  "me",
				Usage: "Show your account and the teams you belong to",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := a.ensureInitialized(ctx); err != nil {
						return err
					}
					m := profile.NewUserManager(a.client, a.reporter)
					if err := m.Load(ctx); err != nil {
						return err
					}
					if err := emit(cmd, m.User(), ui.UserProfile(m.User())); err != nil {
						return err
					}
					return emit(cmd, m.Teams(), ui.Teams(m.Teams()))
				},
			},
			{
				Name:  "teams",
				Usage: "List your per-team participant profiles",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := a.ensureInitialized(ctx); err != nil {
						return err
					}
					m := profile.NewTeamManager(a.client, a.reporter)
					if err := m.Load(ctx); err != nil {
						return err
					}
					return emit(cmd, m.Teams(), ui.Teams(m.Teams()))
				},
			},
			{
				Name:  "update",
				Usage: "Change your nickname or avatar in a team",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "team", Usage: "team id", Required: true},
					&cli.StringFlag{Name: "nickname", Usage: "new nickname"},
					&cli.StringFlag{Name: "avatar", Usage: "path to an image file"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := a.ensureInitialized(ctx); err != nil {
						return err
					}
					m := profile.NewTeamManager(a.client, a.reporter)
					if err := m.Load(ctx); err != nil {
						return err
					}
					if err := m.Select(cmd.Int64("team")); err != nil {
						return err
					}
					if err := m.UpdateProfile(ctx, cmd.String("nickname"), cmd.String("avatar")); err != nil {
						return err
					}
					return emit(cmd, m.Teams(), ui.Teams(m.Teams()))
				},
			},
			{
				Name:  "leave",
				Usage: "Leave a team (blocked while you are its only leader)",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "team", Usage: "team id", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := a.ensureInitialized(ctx); err != nil {
						return err
					}
					if !confirm("Leave this team?") {
						return nil
					}
					m := profile.NewTeamManager(a.client, a.reporter)
					if err := m.Load(ctx); err != nil {
						return err
					}
					if err := m.Select(cmd.Int64("team")); err != nil {
						return err
					}
					if err := m.Leave(ctx); err != nil {
						return err
					}
					fmt.Println("Left the team.")
					return nil
				},
			},
			{
				Name:  "password",
				Usage: "Change your account password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "current", Usage: "current password", Required: true},
					&cli.StringFlag{Name: "new", Usage: "new password", Required: true},
					&cli.StringFlag{Name: "confirm", Usage: "new password again", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := a.ensureInitialized(ctx); err != nil {
						return err
					}
					m := profile.NewUserManager(a.client, a.reporter)
					if err := m.ChangePassword(ctx, cmd.String("current"), cmd.String("new"), cmd.String("confirm")); err != nil {
						return err
					}
					fmt.Println("Password changed.")
					return nil
				},
			},
		},
	}
}

func main() {
	ctx := context.Background()

	cfg := config.Load()
	app := newMoimApp(cfg)

	root := &cli.Command{
		Name:  "moim",
		Usage: "Terminal client for the Moim team workspace",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Usage: "output format: text or json", Value: "text"},
		},
		Commands: []*cli.Command{
			app.loginCommand(),
			app.categoryCommand(),
			app.calendarCommand(),
			app.docsCommand(),
			app.profileCommand(),
		},
	}

	if err := root.Run(ctx, os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
