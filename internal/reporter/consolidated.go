// Package reporter persists the two pipeline outputs: the flat consolidated
// result workbook and the annotated copy of the outstanding report.
package reporter

import (
	"settlement-recon-service/internal/models"
	"settlement-recon-service/pkg/errors"
	"settlement-recon-service/pkg/logger"

	"github.com/xuri/excelize/v2"
)

// ConsolidatedWriterConfig controls the column layout of the consolidated
// output: ledger columns, the message-reference tag column, the statement
// columns (taken from the extracted table) and the MIS claim columns.
type ConsolidatedWriterConfig struct {
	LedgerColumns []string
	MsgRefColumn  string
	ClaimColumns  []string
}

// ConsolidatedWriter writes the consolidated result set as a flat
// spreadsheet, one row per chain match.
type ConsolidatedWriter struct {
	config *ConsolidatedWriterConfig
	logger logger.Logger
}

// NewConsolidatedWriter creates a ConsolidatedWriter.
func NewConsolidatedWriter(config *ConsolidatedWriterConfig) *ConsolidatedWriter {
	return &ConsolidatedWriter{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("consolidated_writer"),
	}
}

// Write persists the consolidated set to path. The header is the union of
// ledger, tag, statement and claim columns; each record contributes its
// values in the same order.
func (cw *ConsolidatedWriter) Write(set *models.ConsolidatedSet, path string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]string, 0, len(cw.config.LedgerColumns)+1+len(set.StatementColumns)+len(cw.config.ClaimColumns))
	header = append(header, cw.config.LedgerColumns...)
	header = append(header, cw.config.MsgRefColumn)
	header = append(header, set.StatementColumns...)
	header = append(header, cw.config.ClaimColumns...)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.WriteError(path, err)
	}

	for i, rec := range set.Records {
		row := make([]interface{}, 0, len(header))
		for _, v := range rec.Entry.Values() {
			row = append(row, v)
		}
		row = append(row, rec.MsgRef)
		for _, v := range rec.Statement.Fields {
			row = append(row, v)
		}
		for _, v := range rec.Claim.Values() {
			row = append(row, v)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.WriteError(path, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.WriteError(path, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.WriteError(path, err)
	}

	cw.logger.WithFields(logger.Fields{
		"path": path,
		"rows": len(set.Records),
	}).Info("Wrote consolidated result")
	return nil
}
