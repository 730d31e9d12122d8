package transaction

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

const maxLimit = 1000

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Delete("/", h.deleteAll)
	r.Get("/summary", h.summary)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}/category", h.updateCategory)
}

// ParseFilter reads from, to, category, type, search, limit and offset from
// query parameters.
func ParseFilter(q url.Values) (transaction.Filter, error) {
	var filter transaction.Filter

	if s := q.Get("from"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return filter, fmt.Errorf("invalid from date: %q", s)
		}

		filter.From = new(t)
	}

	if s := q.Get("to"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return filter, fmt.Errorf("invalid to date: %q", s)
		}

		filter.To = new(t)
	}

	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, errors.New("to date is before from date")
	}

	switch t := transaction.Type(strings.ToLower(q.Get("type"))); t {
	case "", transaction.TypeIncome, transaction.TypeExpense:
		filter.Type = t
	default:
		return filter, fmt.Errorf("invalid type: %q", q.Get("type"))
	}

	filter.Category = q.Get("category")
	filter.Search = strings.TrimSpace(q.Get("search"))

	var err error

	if filter.Limit, err = nonNegative(q, "limit"); err != nil {
		return filter, err
	}

	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}

	if filter.Offset, err = nonNegative(q, "offset"); err != nil {
		return filter, err
	}

	return filter, nil
}

func nonNegative(q url.Values, key string) (int, error) {
	s := q.Get(key)
	if s == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}

	return n, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	txs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	countFilter := filter
	countFilter.Limit, countFilter.Offset = 0, 0

	total, err := h.svc.Count(r.Context(), countFilter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(listResponse{
		Transactions: ToResponseList(txs),
		TotalCount:   total,
		HasMore:      filter.Offset+len(txs) < total,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	totals, err := h.svc.CategoryTotals(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(ToTotalsResponse(totals)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(ToResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearAll(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type updateCategoryRequest struct {
	Category string `json:"category"`
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		http.Error(w, "category is required", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.UpdateCategory(r.Context(), id, category)
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(ToResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
