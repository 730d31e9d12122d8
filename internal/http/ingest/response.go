package ingest

import (
	"github.com/MrJamesThe3rd/cartola/internal/aggregate"
	"github.com/MrJamesThe3rd/cartola/internal/dashboard"
	httptx "github.com/MrJamesThe3rd/cartola/internal/http/transaction"
	"github.com/MrJamesThe3rd/cartola/internal/importer"
	"github.com/MrJamesThe3rd/cartola/internal/period"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

type failureResponse struct {
	Path   string          `json:"path"`
	Format importer.Format `json:"format,omitempty"`
	Reason string          `json:"reason"`
	Error  string          `json:"error"`
}

type storeResponse struct {
	Requested bool                 `json:"requested"`
	Saved     bool                 `json:"saved"`
	Mode      transaction.SaveMode `json:"mode,omitempty"`
	Inserted  int                  `json:"inserted"`
	Skipped   int                  `json:"skipped"`
	Error     string               `json:"error,omitempty"`
}

type reportResponse struct {
	Format            importer.Format        `json:"format,omitempty"`
	Files             []string               `json:"files,omitempty"`
	Failures          []failureResponse      `json:"failures,omitempty"`
	Dropped           int                    `json:"dropped"`
	TotalTransactions int                    `json:"total_transactions"`
	Transactions      []httptx.Response      `json:"transactions"`
	Aggregates        aggregate.Bundle       `json:"aggregates"`
	Range             *period.Range          `json:"date_range,omitempty"`
	Periods           period.Available       `json:"available_periods"`
	Categories        []httptx.TotalResponse `json:"categories_summary"`
	Store             *storeResponse         `json:"store,omitempty"`
	Warnings          []string               `json:"warnings,omitempty"`
}

type statsResponse struct {
	Available  bool          `json:"available"`
	Total      int           `json:"total_transactions"`
	Income     int64         `json:"total_income"`
	Expense    int64         `json:"total_expense"`
	Categories []string      `json:"categories"`
	Range      *period.Range `json:"date_range,omitempty"`
	Error      string        `json:"error,omitempty"`
}

func toFailures(fes []*importer.FileError) []failureResponse {
	if len(fes) == 0 {
		return nil
	}

	out := make([]failureResponse, len(fes))
	for i, fe := range fes {
		out[i] = failureResponse{
			Path:   fe.Path,
			Format: fe.Format,
			Reason: fe.Reason(),
			Error:  fe.Err.Error(),
		}
	}

	return out
}

func toReportResponse(r *dashboard.Report) reportResponse {
	resp := reportResponse{
		Format:            r.Format,
		Files:             r.Files,
		Failures:          toFailures(r.Failures),
		Dropped:           r.Dropped,
		TotalTransactions: len(r.Transactions),
		Transactions:      httptx.ToResponseList(r.Transactions),
		Aggregates:        r.Aggregates,
		Range:             r.Range,
		Periods:           r.Periods,
		Categories:        httptx.ToTotalsResponse(r.Categories),
		Warnings:          r.Warnings,
	}

	if r.Store.Requested {
		resp.Store = &storeResponse{
			Requested: true,
			Saved:     r.Store.Saved,
			Mode:      r.Store.Mode,
			Inserted:  r.Store.Inserted,
			Skipped:   r.Store.Skipped,
			Error:     r.Store.Error,
		}
	}

	return resp
}

func toStatsResponse(s dashboard.Stats) statsResponse {
	return statsResponse{
		Available:  s.Available,
		Total:      s.Total,
		Income:     s.Income,
		Expense:    s.Expense,
		Categories: s.Categories,
		Range:      s.Range,
		Error:      s.Error,
	}
}
