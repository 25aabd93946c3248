package parsers

import (
	"strings"

	"settlement-recon-service/internal/models"
	"settlement-recon-service/pkg/errors"
	"settlement-recon-service/pkg/logger"

	"github.com/xuri/excelize/v2"
)

// LedgerConfig names the three bank-statement columns projected into the
// ledger.
type LedgerConfig struct {
	TransactionIDColumn string
	DescriptionColumn   string
	AmountColumn        string
}

// DefaultLedgerConfig returns the standard bank-statement projection.
func DefaultLedgerConfig() *LedgerConfig {
	return &LedgerConfig{
		TransactionIDColumn: "Transaction ID",
		DescriptionColumn:   "Description",
		AmountColumn:        "Transaction Amount(INR)",
	}
}

// LedgerParser loads one or more bank-statement workbooks into a single
// ordered ledger.
type LedgerParser struct {
	config *LedgerConfig
	logger logger.Logger
}

// NewLedgerParser creates a LedgerParser with the given configuration.
func NewLedgerParser(config *LedgerConfig) *LedgerParser {
	if config == nil {
		config = DefaultLedgerConfig()
	}
	return &LedgerParser{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("ledger_parser"),
	}
}

// LoadLedger reads every bank workbook in input order and concatenates their
// rows, preserving row order within each file. The path list must be
// non-empty. Each file must carry all three ledger columns.
func (lp *LedgerParser) LoadLedger(paths []string) ([]models.LedgerEntry, error) {
	if len(paths) == 0 {
		return nil, errors.ValidationError("bank_files",
			"at least one bank statement file is required")
	}

	var ledger []models.LedgerEntry
	for _, path := range paths {
		entries, err := lp.loadFile(path)
		if err != nil {
			return nil, err
		}
		ledger = append(ledger, entries...)
	}

	lp.logger.WithFields(logger.Fields{
		"files":   len(paths),
		"entries": len(ledger),
	}).Info("Loaded bank ledger")
	return ledger, nil
}

func (lp *LedgerParser) loadFile(path string) ([]models.LedgerEntry, error) {
	lp.logger.WithField("file_path", path).Debug("Reading bank statement workbook")

	rows, err := readFirstSheet(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryFile, errors.CodeFileCorrupted,
			"failed to read bank statement workbook").WithContext("path", path)
	}
	if len(rows) == 0 {
		return nil, errors.SchemaError(path, []string{
			lp.config.TransactionIDColumn,
			lp.config.DescriptionColumn,
			lp.config.AmountColumn,
		}, nil)
	}

	header := headerMap(rows[0])
	var missing []string
	idIdx, ok := header[lp.config.TransactionIDColumn]
	if !ok {
		missing = append(missing, lp.config.TransactionIDColumn)
	}
	descIdx, ok := header[lp.config.DescriptionColumn]
	if !ok {
		missing = append(missing, lp.config.DescriptionColumn)
	}
	amtIdx, ok := header[lp.config.AmountColumn]
	if !ok {
		missing = append(missing, lp.config.AmountColumn)
	}
	if len(missing) > 0 {
		return nil, errors.SchemaError(path, missing, rows[0])
	}

	entries := make([]models.LedgerEntry, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		entries = append(entries, models.LedgerEntry{
			TransactionID: cellAt(raw, idIdx),
			Description:   cellAt(raw, descIdx),
			Amount:        cellAt(raw, amtIdx),
		})
	}
	return entries, nil
}

// readFirstSheet reads all rows of a workbook's first sheet as raw text.
func readFirstSheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}

// headerMap maps trimmed header names to their column index.
func headerMap(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, h := range header {
		m[strings.TrimSpace(h)] = i
	}
	return m
}

// cellAt returns the cell at index idx, or "" when the row is short.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
