package ingest

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/cartola/internal/dashboard"
	httptx "github.com/MrJamesThe3rd/cartola/internal/http/transaction"
	"github.com/MrJamesThe3rd/cartola/internal/importer"
	"github.com/MrJamesThe3rd/cartola/internal/importer/record"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

type Handler struct {
	svc       *dashboard.Service
	importDir string
	maxUpload int64
}

func NewHandler(svc *dashboard.Service, importDir string, maxUpload int64) *Handler {
	return &Handler{
		svc:       svc,
		importDir: importDir,
		maxUpload: maxUpload,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.upload)
	r.Post("/local", h.local)
	r.Get("/history", h.history)
	r.Get("/stats", h.stats)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}

		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)

		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	opts := dashboard.SaveOptions{}

	if s := r.FormValue("save"); s != "" {
		if opts.Save, err = strconv.ParseBool(s); err != nil {
			http.Error(w, "invalid save flag", http.StatusBadRequest)
			return
		}
	}

	if opts.Mode, err = parseMode(r.FormValue("mode")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.svc.ProcessReader(r.Context(), header.Filename, file, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toReportResponse(report))
}

type localRequest struct {
	Dir  string `json:"dir,omitempty"`
	Mode string `json:"mode,omitempty"`
}

func (h *Handler) local(w http.ResponseWriter, r *http.Request) {
	var req localRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	mode, err := parseMode(req.Mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if mode == "" {
		mode = transaction.ModeReplace
	}

	dir := h.importDir
	if req.Dir != "" {
		// Subdirectories only; the request cannot escape the import folder.
		dir = filepath.Join(h.importDir, filepath.Clean("/"+req.Dir))
	}

	report, err := h.svc.LoadDir(r.Context(), dir, mode)
	if err != nil {
		if report != nil && len(report.Failures) > 0 {
			writeJSON(w, http.StatusUnprocessableEntity, toReportResponse(report))
			return
		}

		writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, toReportResponse(report))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	filter, err := httptx.ParseFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.svc.History(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toReportResponse(report))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toStatsResponse(h.svc.Stats(r.Context())))
}

func parseMode(s string) (transaction.SaveMode, error) {
	switch m := transaction.SaveMode(s); m {
	case "", transaction.ModeAppend, transaction.ModeReplace:
		return m, nil
	default:
		return "", errors.New("mode must be append or replace")
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, importer.ErrNoFiles), errors.Is(err, fs.ErrNotExist):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, record.ErrNoRows):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, record.ErrUnreadable), errors.Is(err, record.ErrMissingColumns):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("ingest failed", "error", err)
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
