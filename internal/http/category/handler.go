package category

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cartola/internal/categorize"
	"github.com/MrJamesThe3rd/cartola/internal/category"
	"github.com/MrJamesThe3rd/cartola/internal/dashboard"
)

type Handler struct {
	svc       *category.Service
	dashboard *dashboard.Service
}

func NewHandler(svc *category.Service, dash *dashboard.Service) *Handler {
	return &Handler{svc: svc, dashboard: dash}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/rules", h.rules)
	r.Get("/suggest", h.suggest)
	r.Post("/recategorize", h.recategorize)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.deactivate)
}

type ruleResponse struct {
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}

type categoryResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Keywords    []string   `json:"keywords"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ModifiedAt  *time.Time `json:"modified_at,omitempty"`
}

type listResponse struct {
	Predefined []ruleResponse     `json:"predefined"`
	Custom     []categoryResponse `json:"custom"`
}

type suggestResponse struct {
	Description string                       `json:"description"`
	Suggestions []categorize.Suggestion      `json:"suggestions"`
	Fuzzy       []categorize.FuzzySuggestion `json:"fuzzy_suggestions,omitempty"`
}

type recategorizeResponse struct {
	Total     int      `json:"total"`
	Updated   int      `json:"updated"`
	Unchanged int      `json:"unchanged"`
	Kept      int      `json:"kept"`
	Failed    []string `json:"failed,omitempty"`
}

func toCategoryResponse(c *category.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Keywords:    c.Keywords,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		ModifiedAt:  c.ModifiedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	custom, err := h.svc.ListActive(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	predefined := categorize.Predefined()

	resp := listResponse{
		Predefined: make([]ruleResponse, len(predefined)),
		Custom:     make([]categoryResponse, len(custom)),
	}

	for i, rule := range predefined {
		resp.Predefined[i] = ruleResponse{Category: rule.Category, Keywords: rule.Keywords}
	}

	for i, c := range custom {
		resp.Custom[i] = toCategoryResponse(c)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) rules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.svc.Rules(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, rules)
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	desc := strings.TrimSpace(r.URL.Query().Get("description"))
	if desc == "" {
		http.Error(w, "description query parameter is required", http.StatusBadRequest)
		return
	}

	s := h.dashboard.Suggest(r.Context(), desc)

	writeJSON(w, http.StatusOK, suggestResponse{
		Description: desc,
		Suggestions: s.Exact,
		Fuzzy:       s.Fuzzy,
	})
}

type createRequest struct {
	Name        string   `json:"name"`
	Keywords    []string `json:"keywords"`
	Description string   `json:"description"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Create(r.Context(), category.CreateParams{
		Name:        req.Name,
		Keywords:    req.Keywords,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCategoryResponse(c))
}

type updateRequest struct {
	Name        *string  `json:"name,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Description *string  `json:"description,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Update(r.Context(), id, category.UpdateParams{
		Name:        req.Name,
		Keywords:    req.Keywords,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Deactivate(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) recategorize(w http.ResponseWriter, r *http.Request) {
	res, err := h.dashboard.Recategorize(r.Context())
	if err != nil {
		if errors.Is(err, dashboard.ErrNoTransactions) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	resp := recategorizeResponse{
		Total:     res.Total,
		Updated:   res.Updated,
		Unchanged: res.Unchanged,
		Kept:      res.Kept,
	}

	for _, f := range res.Failed {
		resp.Failed = append(resp.Failed, f.ID.String())
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, category.ErrNotFound):
		http.Error(w, "category not found", http.StatusNotFound)
	case errors.Is(err, category.ErrNameConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, category.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("category request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
