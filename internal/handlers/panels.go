package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/kladdkaka/internal/app"
	"github.com/shrimpsizemoose/kladdkaka/internal/metrics"
	"github.com/shrimpsizemoose/kladdkaka/internal/models"
)

// SourceHeader carries the calling page's identity so its own change
// events can be told apart from everyone else's.
const SourceHeader = "X-Page-Source"

const userHeader = "X-Username"

// PanelHandler is the JSON surface the front-end panels consume. It does
// no business logic of its own; everything goes through the service.
type PanelHandler struct {
	service *app.Service
}

func NewPanelHandler(service *app.Service) *PanelHandler {
	return &PanelHandler{
		service: service,
	}
}

func (h *PanelHandler) observe(r *http.Request, status string, start time.Time) {
	metrics.APIRequestDuration.WithLabelValues(
		r.URL.Path,
		r.Method,
		status,
	).Observe(time.Since(start).Seconds())
}

func (h *PanelHandler) authorize(r *http.Request) error {
	if !h.service.Config.Server.EnableAuth {
		return nil
	}

	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	username := r.Header.Get(userHeader)
	if username == "" {
		return errors.New("missing username header")
	}

	return h.service.Tokens.Validate(r.Context(), username, token)
}

func (h *PanelHandler) source(r *http.Request) string {
	if src := r.Header.Get(SourceHeader); src != "" {
		return src
	}
	return "api"
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (h *PanelHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer h.observe(r, "200", start)

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, app.ErrBadCredentials):
		http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		return
	case errors.Is(err, app.ErrAccountLocked):
		http.Error(w, "Account is locked", http.StatusForbidden)
		return
	case err != nil:
		logger.Error.Printf("Login failed for %s: %v", req.Username, err)
		http.Error(w, "Login failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"token":          token,
		"role":           user.Role,
		"user_id":        user.ID,
		"is_first_login": user.IsFirstLogin,
	})
}

func (h *PanelHandler) HandleListCourses(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer h.observe(r, "200", start)

	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	courses, err := h.service.ListCourses()
	if err != nil {
		logger.Error.Printf("Failed to list courses: %v", err)
		http.Error(w, "Failed to fetch courses", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"rows": courses})
}

func (h *PanelHandler) HandleSaveCourse(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer h.observe(r, "200", start)

	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusForbidden)
		return
	}
	if err := h.authorize(r); err != nil {
		logger.Error.Printf("Auth failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var course models.Course
	if err := json.NewDecoder(r.Body).Decode(&course); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := h.service.SaveCourse(&course, r.Header.Get(userHeader), h.source(r))
	if errors.Is(err, app.ErrCourseCodeTaken) {
		http.Error(w, "Course code already exists", http.StatusConflict)
		return
	}
	if err != nil {
		logger.Error.Printf("Failed to save course: %v", err)
		http.Error(w, "Failed to save course", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"id": course.ID})
}

func (h *PanelHandler) HandlePublishCourse(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer h.observe(r, "200", start)

	if err := h.authorize(r); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id := r.PathValue("course")
	if id == "" {
		http.Error(w, "Invalid course", http.StatusBadRequest)
		return
	}

	if err := h.service.PublishCourse(id, r.Header.Get(userHeader), h.source(r)); err != nil {
		logger.Error.Printf("Failed to publish course %s: %v", id, err)
		http.Error(w, "Failed to publish course", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *PanelHandler) HandlePlanScores(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer h.observe(r, "200", start)

	plan := r.PathValue("plan")
	if plan == "" {
		http.Error(w, "Invalid plan", http.StatusBadRequest)
		return
	}

	scores, err := h.service.PlanScores(plan)
	if err != nil {
		logger.Error.Printf("Failed to fetch scores for %s: %v", plan, err)
		http.Error(w, "Failed to fetch scores", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"rows": scores})
}

func (h *PanelHandler) HandleRecomputePlan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer h.observe(r, "200", start)

	if err := h.authorize(r); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	plan := r.PathValue("plan")
	if plan == "" {
		http.Error(w, "Invalid plan", http.StatusBadRequest)
		return
	}

	updated, err := h.service.RecomputeTotals(plan, r.Header.Get(userHeader), h.source(r))
	if err != nil {
		logger.Error.Printf("Failed to recompute plan %s: %v", plan, err)
		http.Error(w, "Failed to recompute totals", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"updated": updated})
}

func (h *PanelHandler) HandleAuditLogs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer h.observe(r, "200", start)

	if err := h.authorize(r); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	logs, err := h.service.ListAuditLogs()
	if err != nil {
		logger.Error.Printf("Failed to list audit logs: %v", err)
		http.Error(w, "Failed to fetch audit logs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"rows": logs})
}

func (h *PanelHandler) HandleClearAuditLogs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer h.observe(r, "200", start)

	if err := h.authorize(r); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.service.ClearAuditLogs(r.Header.Get(userHeader), h.source(r)); err != nil {
		logger.Error.Printf("Failed to clear audit logs: %v", err)
		http.Error(w, "Failed to clear audit logs", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
