package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/cartola/internal/export"
	httptx "github.com/MrJamesThe3rd/cartola/internal/http/transaction"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc *export.Service
	txs *transaction.Service
}

func NewHandler(svc *export.Service, txs *transaction.Service) *Handler {
	return &Handler{svc: svc, txs: txs}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.workbook)
	r.Post("/summary", h.summary)
}

type exportRequest struct {
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Category string `json:"category,omitempty"`
	Type     string `json:"type,omitempty"`
	Search   string `json:"search,omitempty"`
}

func decodeFilter(r *http.Request) (transaction.Filter, error) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return transaction.Filter{}, err
	}

	q := url.Values{}

	for k, v := range map[string]string{
		"from":     req.From,
		"to":       req.To,
		"category": req.Category,
		"type":     req.Type,
		"search":   req.Search,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}

	return httptx.ParseFilter(q)
}

func (h *Handler) workbook(w http.ResponseWriter, r *http.Request) {
	filter, err := decodeFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer

	n, err := h.svc.Workbook(r.Context(), filter, &buf)
	if err != nil {
		slog.Error("failed to export workbook", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"movimientos_%s.xlsx\"", time.Now().Format("20060102")))
	w.Header().Set("X-Transaction-Count", strconv.Itoa(n))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write workbook", "error", err)
	}
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	filter, err := decodeFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	txs, err := h.txs.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if _, err := io.WriteString(w, h.svc.GenerateSummary(txs)); err != nil {
		slog.Error("failed to write summary", "error", err)
	}
}
