package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

// Response is the JSON shape of a transaction.
type Response struct {
	ID          uuid.UUID            `json:"id"`
	Date        string               `json:"date"`
	Description string               `json:"description"`
	Amount      int64                `json:"amount"`
	Type        transaction.Type     `json:"type"`
	Category    string               `json:"category"`
	RuleKind    transaction.RuleKind `json:"rule_kind"`
	Details     *detailsResponse     `json:"details,omitempty"`
	Year        int                  `json:"year"`
	Month       int                  `json:"month"`
	Week        int                  `json:"week"`
	MonthName   string               `json:"month_name"`
	YearMonth   string               `json:"year_month"`
	YearWeek    string               `json:"year_week"`
	CreatedAt   time.Time            `json:"created_at"`
	ModifiedAt  *time.Time           `json:"modified_at,omitempty"`
}

type detailsResponse struct {
	Origin             string `json:"origin,omitempty"`
	DestinationName    string `json:"destination_name,omitempty"`
	DestinationTaxID   string `json:"destination_tax_id,omitempty"`
	DestinationBank    string `json:"destination_bank,omitempty"`
	AccountType        string `json:"account_type,omitempty"`
	DestinationAccount string `json:"destination_account,omitempty"`
	Status             string `json:"status,omitempty"`
	Channel            string `json:"channel,omitempty"`
	ExternalID         string `json:"external_id,omitempty"`
	Comment            string `json:"comment,omitempty"`
	Balance            *int64 `json:"balance,omitempty"`
}

type listResponse struct {
	Transactions []Response `json:"transactions"`
	TotalCount   int        `json:"total_count"`
	HasMore      bool       `json:"has_more"`
}

type TotalResponse struct {
	Category string           `json:"category"`
	Type     transaction.Type `json:"type"`
	Count    int              `json:"count"`
	Total    int64            `json:"total"`
}

// ToResponse renders a transaction for JSON output.
func ToResponse(tx *transaction.Transaction) Response {
	resp := Response{
		ID:          tx.ID,
		Date:        tx.Date.Format(time.DateOnly),
		Description: tx.Description,
		Amount:      tx.Amount,
		Type:        tx.Type,
		Category:    tx.Category,
		RuleKind:    tx.RuleKind,
		Year:        tx.Period.Year,
		Month:       tx.Period.Month,
		Week:        tx.Period.Week,
		MonthName:   tx.Period.MonthName,
		YearMonth:   tx.Period.YearMonth,
		YearWeek:    tx.Period.YearWeek,
		CreatedAt:   tx.CreatedAt,
		ModifiedAt:  tx.ModifiedAt,
	}

	if tx.Details != (transaction.Details{}) {
		d := tx.Details
		resp.Details = &detailsResponse{
			Origin:             d.Origin,
			DestinationName:    d.DestinationName,
			DestinationTaxID:   d.DestinationTaxID,
			DestinationBank:    d.DestinationBank,
			AccountType:        d.AccountType,
			DestinationAccount: d.DestinationAccount,
			Status:             d.Status,
			Channel:            d.Channel,
			ExternalID:         d.ExternalID,
			Comment:            d.Comment,
			Balance:            d.Balance,
		}
	}

	return resp
}

func ToResponseList(txs []*transaction.Transaction) []Response {
	resp := make([]Response, len(txs))
	for i, tx := range txs {
		resp[i] = ToResponse(tx)
	}

	return resp
}

func ToTotalsResponse(totals []transaction.CategoryTotal) []TotalResponse {
	resp := make([]TotalResponse, len(totals))
	for i, t := range totals {
		resp[i] = TotalResponse{
			Category: t.Category,
			Type:     t.Type,
			Count:    t.Count,
			Total:    t.Total,
		}
	}

	return resp
}
