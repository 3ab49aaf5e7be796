package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/fixfit/internal/models"
	"github.com/claude/fixfit/internal/store"
)

func (s *Server) handleListTrainees(w http.ResponseWriter, r *http.Request) {
	trainees, err := s.queries.ListTrainees(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, trainees)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	programs, err := s.queries.ListPrograms(r.Context(), r.URL.Query().Get("trainee"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, programs)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	p, err := s.queries.GetProgram(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleTraineeWorkouts is the trainee-facing view: same programs, but with
// alternate weight values rendered for display ("20|25" becomes "20 / 25").
func (s *Server) handleTraineeWorkouts(w http.ResponseWriter, r *http.Request) {
	programs, err := s.queries.ListPrograms(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	for i := range programs {
		for j := range programs[i].Exercises {
			e := &programs[i].Exercises[j]
			e.Weight = models.DisplayWeight(e.Weight)
		}
	}
	writeJSON(w, http.StatusOK, programs)
}

type toggleRequest struct {
	Index int `json:"index"`
}

func (s *Server) handleToggleEntry(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	id := chi.URLParam(r, "id")
	p, err := s.queries.GetProgram(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if req.Index < 0 || req.Index >= len(p.Exercises) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "index out of range"})
		return
	}

	p.ToggleEntry(req.Index)
	// Merge only the fields the toggle changes so the rest of the
	// document (importedAt and such) survives untouched.
	patch := store.Document{
		"exercises":            models.EntriesDoc(p.Exercises),
		"completedIndices":     p.CompletedIndices,
		"completionPercentage": p.CompletionPercentage,
		"status":               p.Status,
		"lastUpdated":          store.ServerTimestamp,
	}
	if err := s.docs.Set(r.Context(), store.CollectionWorkouts, id, patch, true); err != nil {
		s.log.Error("toggle write failed", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type workoutRequest struct {
	TraineeID   string `json:"traineeId"`
	TraineeName string `json:"traineeName"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Exercises   []struct {
		Name   string `json:"name"`
		Sets   string `json:"sets"`
		Reps   string `json:"reps"`
		Weight string `json:"weight"`
	} `json:"exercises"`
}

func (req *workoutRequest) validate() string {
	switch {
	case req.TraineeID == "":
		return "traineeId required"
	case req.Type == "":
		return "type required"
	case len(req.Exercises) == 0:
		return "at least one exercise required"
	}
	for _, e := range req.Exercises {
		if e.Name == "" {
			return "exercise name required"
		}
	}
	return ""
}

func (req *workoutRequest) entries() []models.ExerciseEntry {
	entries := make([]models.ExerciseEntry, 0, len(req.Exercises))
	for i, e := range req.Exercises {
		entries = append(entries, models.NewExerciseEntry(e.Name, e.Sets, e.Reps, e.Weight, i))
	}
	return entries
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var req workoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	p := models.Program{
		TraineeID:   req.TraineeID,
		TraineeName: req.TraineeName,
		Type:        req.Type,
		Title:       req.Title,
		Exercises:   req.entries(),
		Status:      models.StatusPending,
	}
	doc := p.Doc()
	doc["lastUpdated"] = store.ServerTimestamp

	id, err := s.docs.Add(r.Context(), store.CollectionWorkouts, doc)
	if err != nil {
		s.log.Error("workout create failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	p.ID = id
	writeJSON(w, http.StatusCreated, p)
}

// handleUpdateWorkout replaces a workout's content. Completion state resets:
// an edited program starts over as pending.
func (s *Server) handleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	var req workoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := s.queries.GetProgram(r.Context(), id); errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	} else if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	p := models.Program{
		ID:          id,
		TraineeID:   req.TraineeID,
		TraineeName: req.TraineeName,
		Type:        req.Type,
		Title:       req.Title,
		Exercises:   req.entries(),
		Status:      models.StatusPending,
	}
	doc := p.Doc()
	doc["lastUpdated"] = store.ServerTimestamp
	if err := s.docs.Set(r.Context(), store.CollectionWorkouts, id, doc, false); err != nil {
		s.log.Error("workout update failed", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.queries.GetProgram(r.Context(), id); errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	} else if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if err := s.docs.Delete(r.Context(), store.CollectionWorkouts, id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearchExercises(w http.ResponseWriter, r *http.Request) {
	defs, err := s.queries.SearchExerciseBank(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, defs)
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	var def models.ExerciseDefinition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if def.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name required"})
		return
	}

	doc := def.Doc()
	doc["createdAt"] = store.ServerTimestamp
	id, err := s.docs.Add(r.Context(), store.CollectionExerciseBank, doc)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	def.ID = id
	writeJSON(w, http.StatusCreated, def)
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	if err := s.docs.Delete(r.Context(), store.CollectionExerciseBank, chi.URLParam(r, "id")); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRoleLookup reports the configured role for an email, defaulting to
// trainee for anyone not listed.
func (s *Server) handleRoleLookup(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email parameter required"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"email": email,
		"role":  s.roleFor(email),
	})
}

type roleUpdateRequest struct {
	Role string `json:"role"`
}

// handleUpdateRole flips a profile between trainee and admin. The config role
// table still wins for emails it lists; the profile role covers everyone else.
func (s *Server) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	var req roleUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Role != models.RoleTrainee && req.Role != models.RoleAdmin {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role must be trainee or admin"})
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := s.docs.Get(r.Context(), store.CollectionUsers, id); errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "trainee not found"})
		return
	} else if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	patch := store.Document{
		"role":      req.Role,
		"updatedAt": store.ServerTimestamp,
	}
	if err := s.docs.Set(r.Context(), store.CollectionUsers, id, patch, true); err != nil {
		s.log.Error("role update failed", "uid", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"uid": id, "role": req.Role})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
