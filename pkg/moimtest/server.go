package moimtest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/moimhq/moim/internal/api"
)

// Request is one recorded call, for asserting on wire-level behavior.
type Request struct {
	Method string
	Path   string
	Body   []byte
}

// Server is a fake Moim backend.
type Server struct {
	*httptest.Server

	mu         sync.RWMutex
	nextID     int64
	user       api.User
	password   string
	categories map[int64][]api.Category
	schedules  map[int64][]api.Schedule
	documents  map[int64][]api.Document
	teams      []api.Team
	requests   []Request

	// Non-zero values force the matching endpoint to fail.
	deleteCategoryStatus int
	deleteScheduleStatus int

	broker *broker
}

// NewServer creates a fake backend listening on a local port.
func NewServer() *Server {
	s := &Server{
		nextID:     1,
		password:   "password1",
		categories: make(map[int64][]api.Category),
		schedules:  make(map[int64][]api.Schedule),
		documents:  make(map[int64][]api.Document),
	}
	s.broker = newBroker(s)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.broker.handleUpgrade)
	mux.HandleFunc("/", s.handleRequest)

	s.Server = httptest.NewServer(mux)
	return s
}

// Close shuts the backend and broker down.
func (s *Server) Close() {
	s.broker.closeAll()
	s.Server.Close()
}

// BrokerURL is the WebSocket address of the fake STOMP broker.
func (s *Server) BrokerURL() string {
	return "ws" + strings.TrimPrefix(s.URL, "http") + "/ws"
}

// Reset clears all state and the request log.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = 1
	s.categories = make(map[int64][]api.Category)
	s.schedules = make(map[int64][]api.Schedule)
	s.documents = make(map[int64][]api.Document)
	s.teams = nil
	s.requests = nil
	s.deleteCategoryStatus = 0
	s.deleteScheduleStatus = 0
}

// SetUser seeds the authenticated member's profile.
func (s *Server) SetUser(u api.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

// SeedCategory stores a category, assigning an id when missing.
func (s *Server) SeedCategory(teamID int64, c api.Category) api.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.CategoryID == 0 {
		c.CategoryID = s.nextID
		s.nextID++
	}
	s.categories[teamID] = append(s.categories[teamID], c)
	return c
}

// SeedSchedule stores a schedule, assigning an id when missing.
func (s *Server) SeedSchedule(teamID int64, sc api.Schedule) api.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc.ScheduleID == 0 {
		sc.ScheduleID = s.nextID
		s.nextID++
	}
	s.schedules[teamID] = append(s.schedules[teamID], sc)
	return sc
}

// SeedDocument stores a document, assigning a fresh id when missing.
func (s *Server) SeedDocument(teamID int64, d api.Document) api.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.TeamID = teamID
	s.documents[teamID] = append(s.documents[teamID], d)
	return d
}

// SeedTeam stores a participant record for the member.
func (s *Server) SeedTeam(t api.Team) api.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.TeamParticipantsID == 0 {
		t.TeamParticipantsID = s.nextID
		s.nextID++
	}
	s.teams = append(s.teams, t)
	return t
}

// FailDeleteCategory makes DELETE /category answer with the given status.
func (s *Server) FailDeleteCategory(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCategoryStatus = status
}

// FailDeleteSchedule makes the schedule delete answer with the given status.
func (s *Server) FailDeleteSchedule(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteScheduleStatus = status
}

// Requests returns the recorded calls in order.
func (s *Server) Requests() []Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Categories returns a team's stored categories (for assertions).
func (s *Server) Categories(teamID int64) []api.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.Category, len(s.categories[teamID]))
	copy(out, s.categories[teamID])
	return out
}

// Document returns a stored document by id.
func (s *Server) Document(id string) (api.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findDocument(id)
}

func (s *Server) findDocument(id string) (api.Document, bool) {
	for _, docs := range s.documents {
		for _, d := range docs {
			if d.ID == id {
				return d, true
			}
		}
	}
	return api.Document{}, false
}

// PushDocument updates a stored document and broadcasts it to that
// document's topic, as the real backend does when a session opens it.
func (s *Server) PushDocument(docID, title, content string) error {
	s.mu.Lock()
	for teamID, docs := range s.documents {
		for i := range docs {
			if docs[i].ID == docID {
				docs[i].Title = title
				docs[i].Content = content
				s.documents[teamID] = docs
			}
		}
	}
	s.mu.Unlock()
	return s.broker.broadcast(docID, title, content)
}

// handleRequest records and routes every REST call.
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	s.mu.Lock()
	s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Body: body})
	s.mu.Unlock()

	path := strings.Trim(r.URL.Path, "/")
	parts := strings.Split(path, "/")

	switch {
	case path == "sign-in" && r.Method == http.MethodPost:
		s.signIn(w, r)
	case path == "category":
		s.handleCategory(w, r)
	case path == "my-page" && r.Method == http.MethodGet:
		s.requireAuth(w, r, s.myPage)
	case path == "team/list" && r.Method == http.MethodGet:
		s.requireAuth(w, r, s.teamList)
	case path == "member/participants" && r.Method == http.MethodGet:
		s.requireAuth(w, r, s.participants)
	case path == "member/participant" && r.Method == http.MethodPost:
		s.requireAuth(w, r, s.updateParticipant)
	case path == "member/password" && r.Method == http.MethodPost:
		s.requireAuth(w, r, s.changePassword)
	case len(parts) >= 3 && parts[0] == "team":
		s.handleTeamScoped(w, r, parts)
	default:
		http.Error(w, "unsupported endpoint", http.StatusNotFound)
	}
}

func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	next(w, r)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req api.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	s.mu.RLock()
	ok := req.Password == s.password
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, api.SignInResponse{
		GrantType:    "Bearer",
		AccessToken:  "test-access-token",
		RefreshToken: "test-refresh-token",
	})
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		teamID, _ := strconv.ParseInt(r.URL.Query().Get("teamId"), 10, 64)
		s.mu.RLock()
		content := append([]api.Category{}, s.categories[teamID]...)
		s.mu.RUnlock()
		writeJSON(w, api.Page[api.Category]{Content: content, TotalElements: int64(len(content))})

	case http.MethodPost:
		var req api.CreateCategoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		s.mu.Lock()
		created := api.Category{
			CategoryID:   s.nextID,
			CategoryName: req.CategoryName,
			CategoryType: req.CategoryType,
			Color:        req.Color,
		}
		s.nextID++
		s.categories[req.TeamID] = append(s.categories[req.TeamID], created)
		s.mu.Unlock()
		writeJSON(w, created)

	case http.MethodPut:
		var req api.EditCategoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, c := range s.categories[req.TeamID] {
			if c.CategoryID == req.CategoryID {
				c.CategoryName = req.CategoryName
				c.CategoryType = req.CategoryType
				c.Color = req.Color
				s.categories[req.TeamID][i] = c
				writeJSON(w, c)
				return
			}
		}
		writeError(w, http.StatusNotFound, "category not found")

	case http.MethodDelete:
		var req api.DeleteCategoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.deleteCategoryStatus != 0 {
			writeError(w, s.deleteCategoryStatus, "the category's creator is still a team member")
			return
		}
		kept := s.categories[req.TeamID][:0]
		for _, c := range s.categories[req.TeamID] {
			if c.CategoryID != req.CategoryID {
				kept = append(kept, c)
			}
		}
		s.categories[req.TeamID] = kept
		// Honor the reassignment choice for schedules in this category.
		for i, sc := range s.schedules[req.TeamID] {
			if sc.CategoryID != req.CategoryID {
				continue
			}
			if req.IsMoved {
				s.schedules[req.TeamID][i].CategoryID = req.NewCategoryID
			}
		}
		if !req.IsMoved {
			keptSchedules := s.schedules[req.TeamID][:0]
			for _, sc := range s.schedules[req.TeamID] {
				if sc.CategoryID != req.CategoryID {
					keptSchedules = append(keptSchedules, sc)
				}
			}
			s.schedules[req.TeamID] = keptSchedules
		}
		writeJSON(w, map[string]string{"message": "category deleted"})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleTeamScoped routes /team/{teamId}/... paths.
func (s *Server) handleTeamScoped(w http.ResponseWriter, r *http.Request, parts []string) {
	teamID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid team id")
		return
	}
	rest := parts[2:]

	switch {
	case len(rest) == 2 && rest[0] == "schedules" && rest[1] == "calendar" && r.Method == http.MethodGet:
		s.mu.RLock()
		schedules := append([]api.Schedule(nil), s.schedules[teamID]...)
		s.mu.RUnlock()
		writeJSON(w, schedules)

	case len(rest) == 2 && rest[0] == "schedules" && rest[1] == "simple":
		s.upsertSchedule(w, r, teamID)

	case len(rest) == 3 && rest[0] == "schedules" && rest[1] == "simple" && r.Method == http.MethodDelete:
		scheduleID, _ := strconv.ParseInt(rest[2], 10, 64)
		s.deleteSchedule(w, teamID, scheduleID)

	case len(rest) == 1 && rest[0] == "documents" && r.Method == http.MethodGet:
		s.mu.RLock()
		content := append([]api.Document{}, s.documents[teamID]...)
		s.mu.RUnlock()
		writeJSON(w, api.Page[api.Document]{Content: content, TotalElements: int64(len(content))})

	case len(rest) == 1 && rest[0] == "documents" && r.Method == http.MethodPost:
		var req api.CreateDocumentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		s.mu.Lock()
		doc := api.Document{ID: uuid.NewString(), Title: req.Title, Content: req.Content, TeamID: teamID}
		s.documents[teamID] = append(s.documents[teamID], doc)
		s.mu.Unlock()
		writeJSON(w, doc)

	case len(rest) == 1 && rest[0] == "participant" && r.Method == http.MethodDelete:
		s.mu.Lock()
		kept := s.teams[:0]
		for _, t := range s.teams {
			if t.TeamID != teamID {
				kept = append(kept, t)
			}
		}
		s.teams = kept
		s.mu.Unlock()
		writeJSON(w, map[string]string{"message": "left team"})

	default:
		http.Error(w, "unsupported endpoint", http.StatusNotFound)
	}
}

func (s *Server) upsertSchedule(w http.ResponseWriter, r *http.Request, teamID int64) {
	var req api.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	categoryName := ""
	color := ""
	for _, c := range s.categories[teamID] {
		if c.CategoryID == req.CategoryID {
			categoryName = c.CategoryName
			color = c.Color
		}
	}

	switch r.Method {
	case http.MethodPost:
		created := api.Schedule{
			ScheduleID:   s.nextID,
			Title:        req.Title,
			StartDt:      req.StartDt,
			EndDt:        req.EndDt,
			Content:      req.Content,
			Place:        req.Place,
			ScheduleType: "SIMPLE",
			CategoryName: categoryName,
			CategoryID:   req.CategoryID,
			Color:        color,
		}
		s.nextID++
		s.schedules[teamID] = append(s.schedules[teamID], created)
		writeJSON(w, created)

	case http.MethodPut:
		for i, sc := range s.schedules[teamID] {
			if sc.ScheduleID == req.ScheduleID {
				sc.Title = req.Title
				sc.StartDt = req.StartDt
				sc.EndDt = req.EndDt
				sc.Content = req.Content
				sc.Place = req.Place
				sc.CategoryID = req.CategoryID
				sc.CategoryName = categoryName
				sc.Color = color
				s.schedules[teamID][i] = sc
				writeJSON(w, sc)
				return
			}
		}
		writeError(w, http.StatusNotFound, "schedule not found")

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) deleteSchedule(w http.ResponseWriter, teamID, scheduleID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteScheduleStatus != 0 {
		writeError(w, s.deleteScheduleStatus, "the schedule's creator is still a team member")
		return
	}
	kept := s.schedules[teamID][:0]
	for _, sc := range s.schedules[teamID] {
		if sc.ScheduleID != scheduleID {
			kept = append(kept, sc)
		}
	}
	s.schedules[teamID] = kept
	writeJSON(w, map[string]string{"message": "schedule deleted"})
}

func (s *Server) myPage(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	user := s.user
	s.mu.RUnlock()
	writeJSON(w, user)
}

func (s *Server) teamList(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	content := append([]api.Team{}, s.teams...)
	s.mu.RUnlock()
	writeJSON(w, api.Page[api.Team]{Content: content, TotalElements: int64(len(content))})
}

func (s *Server) participants(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	teams := append([]api.Team{}, s.teams...)
	s.mu.RUnlock()
	writeJSON(w, teams)
}

func (s *Server) updateParticipant(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form data")
		return
	}
	id, _ := strconv.ParseInt(r.FormValue("teamParticipantsId"), 10, 64)
	nick := r.FormValue("teamNickName")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.teams {
		if t.TeamParticipantsID == id {
			t.TeamNickName = nick
			if f, header, err := r.FormFile("participantImg"); err == nil {
				f.Close()
				t.ParticipantsProfileURL = "https://cdn.moim.test/" + header.Filename
			}
			s.teams[i] = t
			writeJSON(w, t)
			return
		}
	}
	writeError(w, http.StatusNotFound, "participant not found")
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req api.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.OldPassword != s.password {
		writeError(w, http.StatusUnauthorized, "wrong password")
		return
	}
	s.password = req.NewPassword
	writeJSON(w, map[string]string{"message": "password changed"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"errorMessage": msg})
}
