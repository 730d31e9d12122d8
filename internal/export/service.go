package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/cartola/internal/aggregate"
	"github.com/MrJamesThe3rd/cartola/internal/transaction"
)

const (
	SheetTransactions = "Transacciones"
	SheetMonthly      = "Resumen mensual"
)

var (
	transactionHeader = []any{"Fecha", "Descripción", "Tipo", "Categoría", "Monto", "Regla"}
	monthlyHeader     = []any{"Mes", "Ingresos", "Gastos", "Neto"}
)

// Service writes stored transactions out as spreadsheets.
type Service struct {
	transactions *transaction.Service
	now          func() time.Time
}

// NewService creates a new export Service.
func NewService(txService *transaction.Service) *Service {
	return &Service{
		transactions: txService,
		now:          time.Now,
	}
}

// Workbook writes the transactions matching filter as an xlsx workbook to w
// and returns how many were exported.
func (s *Service) Workbook(ctx context.Context, filter transaction.Filter, w io.Writer) (int, error) {
	txs, err := s.transactions.List(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("listing transactions: %w", err)
	}

	f, err := build(txs)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("writing workbook: %w", err)
	}

	return len(txs), nil
}

// ToDir writes the workbook into dir and returns the file path.
func (s *Service) ToDir(ctx context.Context, filter transaction.Filter, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("movimientos_%s.xlsx", s.now().Format("20060102_150405")))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if _, err := s.Workbook(ctx, filter, f); err != nil {
		return "", err
	}

	return path, nil
}

// GenerateSummary renders one line per transaction for pasting into a
// message.
func (s *Service) GenerateSummary(txs []*transaction.Transaction) string {
	var sb strings.Builder

	for _, tx := range txs {
		sign := "-"
		if tx.Type == transaction.TypeIncome {
			sign = "+"
		}

		sb.WriteString(fmt.Sprintf("* %s | %s | %s%s | %s\n",
			tx.Date.Format(time.DateOnly), tx.Description, sign, amount(tx.Amount).StringFixed(2), tx.Category))
	}

	return sb.String()
}

func amount(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func build(txs []*transaction.Transaction) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetTransactions); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	if _, err := f.NewSheet(SheetMonthly); err != nil {
		f.Close()
		return nil, fmt.Errorf("adding sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating style: %w", err)
	}

	rows := make([][]any, 0, len(txs)+1)
	rows = append(rows, transactionHeader)

	for _, tx := range txs {
		rows = append(rows, []any{
			tx.Date.Format(time.DateOnly),
			tx.Description,
			string(tx.Type),
			tx.Category,
			amount(tx.Amount).InexactFloat64(),
			string(tx.RuleKind),
		})
	}

	if err := writeRows(f, SheetTransactions, rows, bold); err != nil {
		f.Close()
		return nil, err
	}

	monthly := aggregate.Monthly(txs)
	rows = make([][]any, 0, len(monthly)+1)
	rows = append(rows, monthlyHeader)

	for _, m := range monthly {
		rows = append(rows, []any{m.Label, m.Income, m.Expense, m.Net})
	}

	if err := writeRows(f, SheetMonthly, rows, bold); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("addressing row %d: %w", i+1, err)
		}

		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}

	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}

	return nil
}
