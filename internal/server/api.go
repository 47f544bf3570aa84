// ABOUTME: JSON API handlers for the dashboard's feature endpoints
// ABOUTME: Validation errors surface as 4xx; storage failures never do

package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dayboard/dayboard/internal/briefing"
	"github.com/dayboard/dayboard/internal/layout"
	"github.com/dayboard/dayboard/internal/saves"
	"github.com/dayboard/dayboard/internal/workout"
)

// CompleteDeadlineRequest is the JSON request body for POST /api/deadlines/complete.
type CompleteDeadlineRequest struct {
	DueDate string `json:"due_date"`
	Desc    string `json:"desc"`
	Done    *bool  `json:"done"`
}

// CompleteDeadlineResponse is the JSON response for POST /api/deadlines/complete.
type CompleteDeadlineResponse struct {
	OK   bool   `json:"ok"`
	Key  string `json:"key"`
	Done bool   `json:"done"`
}

// WorkoutRequest is the JSON request body for POST /api/workout/advance.
type WorkoutRequest struct {
	Action       string `json:"action,omitempty"`
	ForceAdvance bool   `json:"force_advance,omitempty"`
}

// SaveRequest is the JSON request body for POST /api/saves.
type SaveRequest struct {
	Type    string `json:"type,omitempty"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Source  string `json:"source,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// DeleteSaveRequest is the JSON request body for DELETE /api/saves.
type DeleteSaveRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleBriefing handles GET /api/briefing. Without a date parameter it
// serves today's document with merged deadline state; with ?date= it
// serves the archived day as stored.
func (s *Server) handleBriefing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if date := r.URL.Query().Get("date"); date != "" {
		doc, err := s.provider.LoadArchived(r.Context(), date)
		if errors.Is(err, briefing.ErrNotArchived) {
			s.sendJSONError(w, http.StatusNotFound, "no archived briefing for this date")
			return
		}
		if err != nil {
			s.logger.Error("failed to load archived briefing", "date", date, "error", err)
			s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		s.sendJSON(w, http.StatusOK, doc)
		return
	}

	now := s.now()
	doc, err := s.provider.Load(r.Context(), now)
	if err != nil {
		s.logger.Error("failed to load briefing", "error", err)
		s.sendJSONError(w, http.StatusNotFound, "no briefing available for today")
		return
	}

	// First-paint read path: the deadline baseline gets cache and device
	// overrides applied before it leaves the server.
	items, err := s.deadlines.List(r.Context(), now)
	if err == nil {
		merged := make([]briefing.SchoolDeadline, len(items))
		for i, d := range items {
			merged[i] = briefing.SchoolDeadline{
				Course:      d.Course,
				Description: d.Description,
				DueDate:     d.DueDate,
				Done:        d.Done,
			}
		}
		doc.School.Deadlines = merged
	}

	s.sendJSON(w, http.StatusOK, doc)
}

// handleArchive handles GET /api/archive?limit=N.
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.archive == nil {
		s.sendJSON(w, http.StatusOK, []briefing.ArchiveEntry{})
		return
	}

	limit := 30
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			s.sendJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
		if limit > 365 {
			limit = 365
		}
	}

	entries, err := s.archive.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list archive", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if entries == nil {
		entries = []briefing.ArchiveEntry{}
	}
	s.sendJSON(w, http.StatusOK, entries)
}

// handleListDeadlines handles GET /api/deadlines.
func (s *Server) handleListDeadlines(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	items, err := s.deadlines.List(r.Context(), s.now())
	if err != nil {
		s.logger.Error("failed to list deadlines", "error", err)
		s.sendJSONError(w, http.StatusNotFound, "no deadline data available")
		return
	}
	s.sendJSON(w, http.StatusOK, items)
}

// handleCompleteDeadline handles POST /api/deadlines/complete. The
// response never distinguishes "fully persisted" from "only some layers
// updated".
func (s *Server) handleCompleteDeadline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	req, err := parseCompleteRequest(r.Body)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := s.deadlines.SetDone(r.Context(), req.DueDate, req.Desc, *req.Done)
	s.sendJSON(w, http.StatusOK, CompleteDeadlineResponse{OK: true, Key: key, Done: *req.Done})
}

// parseCompleteRequest parses and validates a CompleteDeadlineRequest.
// All three fields are required; done must be an actual boolean.
func parseCompleteRequest(r io.Reader) (*CompleteDeadlineRequest, error) {
	var req CompleteDeadlineRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, errors.New("invalid JSON body")
	}
	if req.DueDate == "" {
		return nil, errors.New("due_date is required")
	}
	if req.Desc == "" {
		return nil, errors.New("desc is required")
	}
	if req.Done == nil {
		return nil, errors.New("done is required and must be a boolean")
	}
	return &req, nil
}

// handleWorkout handles /api/workout/advance. POST applies an action;
// GET returns today's derived status including the walk streak.
func (s *Server) handleWorkout(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		st := s.workout.Status(r.Context())
		s.sendJSON(w, http.StatusOK, st)

	case http.MethodPost:
		var req WorkoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Action == "" {
			req.Action = workout.ActionComplete
		}

		st, err := s.workout.Apply(r.Context(), req.Action, req.ForceAdvance)
		if err != nil {
			s.sendJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.sendJSON(w, http.StatusOK, map[string]any{
			"ok":               true,
			"action":           st.Action,
			"cycle_position":   st.CyclePosition,
			"cycle_day":        st.CycleDay,
			"walk_today":       st.WalkToday,
			"breathwork_today": st.BreathworkToday,
		})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleSaves routes saved-link requests by HTTP method.
func (s *Server) handleSaves(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items := s.saves.List(r.Context())
		if items == nil {
			items = []saves.SavedItem{}
		}
		s.sendJSON(w, http.StatusOK, items)

	case http.MethodPost:
		var req SaveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Title == "" || req.URL == "" {
			s.sendJSONError(w, http.StatusBadRequest, "title and url are required")
			return
		}

		duplicate := s.saves.Add(r.Context(), saves.SavedItem{
			Type:    req.Type,
			Title:   req.Title,
			URL:     req.URL,
			Source:  req.Source,
			Snippet: req.Snippet,
		})
		if duplicate {
			s.sendJSON(w, http.StatusOK, map[string]any{"ok": true, "duplicate": true})
			return
		}
		s.sendJSON(w, http.StatusOK, map[string]any{"ok": true})

	case http.MethodDelete:
		var req DeleteSaveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.URL == "" {
			s.sendJSONError(w, http.StatusBadRequest, "url is required")
			return
		}

		removed := s.saves.Remove(r.Context(), req.URL)
		s.sendJSON(w, http.StatusOK, map[string]any{"ok": true, "removed": removed})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleLayout handles GET and PUT /api/layout. Reads merge the stored
// layout with the current defaults so newly shipped widgets appear.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var stored []layout.Widget
		s.layout.LoadDoc(r.Context(), &stored)
		s.sendJSON(w, http.StatusOK, layout.Merge(stored, layout.Default()))

	case http.MethodPut:
		var widgets []layout.Widget
		if err := json.NewDecoder(r.Body).Decode(&widgets); err != nil {
			s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		merged := layout.Merge(widgets, nil)
		s.layout.SaveDoc(r.Context(), merged)
		s.sendJSON(w, http.StatusOK, merged)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// sendJSON writes a JSON response with the given status.
func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
