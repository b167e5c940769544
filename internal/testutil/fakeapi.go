// Package testutil provides an in-memory stand-in for the remote habit
// service, for tests that drive the real API client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

const (
	DefaultEmail    = "sam@example.com"
	DefaultPassword = "hunter2"
	DefaultToken    = "test-token"
)

// Server is an httptest server that speaks the service's REST dialect.
// Habits and tasks are kept in memory; toggles use Now to decide "today".
type Server struct {
	*httptest.Server

	Now func() time.Time

	mu       sync.Mutex
	user     models.User
	password string
	token    string
	habits   []models.Habit
	tasks    []models.Task
	nextID   int
	requests []string
	failNext int
}

// NewServer starts a fake service that is closed when the test ends.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		Now:      time.Now,
		user:     models.User{ID: "u1", Name: "Sam", Email: DefaultEmail},
		password: DefaultPassword,
		token:    DefaultToken,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.authed(s.handleLogout))
	mux.HandleFunc("GET /api/auth/me", s.authed(s.handleMe))
	mux.HandleFunc("GET /api/habits", s.authed(s.handleListHabits))
	mux.HandleFunc("POST /api/habits", s.authed(s.handleCreateHabit))
	mux.HandleFunc("GET /api/habits/{id}", s.authed(s.handleGetHabit))
	mux.HandleFunc("PUT /api/habits/{id}", s.authed(s.handleUpdateHabit))
	mux.HandleFunc("DELETE /api/habits/{id}", s.authed(s.handleDeleteHabit))
	mux.HandleFunc("PATCH /api/habits/{id}/toggle-completion", s.authed(s.handleToggleHabit))
	mux.HandleFunc("GET /api/daily-planner/{date}", s.authed(s.handlePlanner))
	mux.HandleFunc("POST /api/tasks", s.authed(s.handleCreateTask))
	mux.HandleFunc("PUT /api/tasks/{id}", s.authed(s.handleUpdateTask))
	mux.HandleFunc("DELETE /api/tasks/{id}", s.authed(s.handleDeleteTask))
	mux.HandleFunc("PATCH /api/tasks/{id}/toggle-completion", s.authed(s.handleToggleTask))

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// AddHabit seeds a habit, assigning an ID when it has none.
func (s *Server) AddHabit(h models.Habit) models.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.ID == "" {
		h.ID = s.newID("h")
	}
	s.habits = append(s.habits, h)
	return h
}

// AddTask seeds a task, assigning an ID when it has none.
func (s *Server) AddTask(t models.Task) models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = s.newID("t")
	}
	s.tasks = append(s.tasks, t)
	return t
}

func (s *Server) Habits() []models.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Habit(nil), s.habits...)
}

func (s *Server) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Task(nil), s.tasks...)
}

// Requests returns "METHOD /path" for every request received so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// FailNext makes the next n requests answer 500.
func (s *Server) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
}

func (s *Server) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s%d", prefix, s.nextID)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		fail := s.failNext > 0
		if fail {
			s.failNext--
		}
		s.mu.Unlock()

		if fail {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "injected failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		want := "Bearer " + s.token
		s.mu.Unlock()
		if r.Header.Get("Authorization") != want {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authorized, token failed"})
			return
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct{ Name, Email, Password string }
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Please add all fields"})
		return
	}

	s.mu.Lock()
	s.user = models.User{ID: s.newID("u"), Name: body.Name, Email: body.Email}
	s.password = body.Password
	resp := map[string]interface{}{"token": s.token, "user": s.user}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct{ Email, Password string }
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	ok := body.Email == s.user.Email && body.Password == s.password
	resp := map[string]interface{}{"token": s.token, "user": s.user}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	user := s.user
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (s *Server) handleListHabits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"habits": s.Habits()})
}

func (s *Server) findHabit(id string) int {
	for i, h := range s.habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) handleGetHabit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findHabit(r.PathValue("id"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Habit not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"habit": s.habits[i]})
}

func (s *Server) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	var h models.Habit
	if err := json.NewDecoder(r.Body).Decode(&h); err != nil || strings.TrimSpace(h.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Habit name is required"})
		return
	}
	created := s.AddHabit(h)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"habit": created})
}

func (s *Server) handleUpdateHabit(w http.ResponseWriter, r *http.Request) {
	var patch models.Habit
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findHabit(r.PathValue("id"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Habit not found"})
		return
	}
	h := &s.habits[i]
	h.Name = patch.Name
	h.Description = patch.Description
	h.Frequency = patch.Frequency
	h.TimeOfDay = patch.TimeOfDay
	h.GoalType = patch.GoalType
	h.GoalTarget = patch.GoalTarget
	h.GoalDate = patch.GoalDate
	writeJSON(w, http.StatusOK, map[string]interface{}{"habit": *h})
}

func (s *Server) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findHabit(r.PathValue("id"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Habit not found"})
		return
	}
	s.habits = append(s.habits[:i], s.habits[i+1:]...)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Habit removed"})
}

// handleToggleHabit flips today's entry the way the service does: add a
// completed entry when none exists, otherwise invert it, and keep the
// counters in step.
func (s *Server) handleToggleHabit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findHabit(r.PathValue("id"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Habit not found"})
		return
	}

	now := s.Now()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	h := &s.habits[i]
	found := false
	for j := range h.CompletionHistory {
		ey, em, ed := h.CompletionHistory[j].Date.In(now.Location()).Date()
		if ey == y && em == m && ed == d {
			h.CompletionHistory[j].Completed = !h.CompletionHistory[j].Completed
			found = true
			if h.CompletionHistory[j].Completed {
				h.Completions++
				h.CurrentStreak++
			} else {
				h.Completions--
				h.CurrentStreak--
			}
			break
		}
	}
	if !found {
		h.CompletionHistory = append(h.CompletionHistory, models.CompletionEntry{Date: today, Completed: true})
		h.Completions++
		h.CurrentStreak++
	}
	if h.CurrentStreak > h.LongestStreak {
		h.LongestStreak = h.CurrentStreak
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"habit": *h})
}

func (s *Server) handlePlanner(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if _, err := time.Parse(constants.DateFormat, date); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid date"})
		return
	}

	var tasks []models.Task
	for _, t := range s.Tasks() {
		if t.Date == date {
			tasks = append(tasks, t)
		}
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"date": date, "tasks": tasks})
}

func (s *Server) findTask(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var t models.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil || strings.TrimSpace(t.Title) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Task title is required"})
		return
	}
	created := s.AddTask(t)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"task": created})
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch models.Task
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findTask(r.PathValue("id"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
		return
	}
	patch.ID = s.tasks[i].ID
	s.tasks[i] = patch
	writeJSON(w, http.StatusOK, map[string]interface{}{"task": patch})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findTask(r.PathValue("id"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
		return
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task removed"})
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findTask(r.PathValue("id"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
		return
	}
	t := &s.tasks[i]
	t.Completed = !t.Completed
	if t.Completed {
		now := s.Now()
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"task": *t})
}
