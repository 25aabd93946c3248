// Package parsers loads the four heterogeneous reconciliation sources: the
// tabular PDF settlement statement, the bank-statement workbooks, the MIS
// claims workbook and the outstanding report.
//
// Spreadsheets are always read in text mode (no type inference); the PDF is
// reconstructed from positioned text runs. Each parser validates its source
// schema eagerly and fails with a typed error before any downstream stage
// runs.
package parsers

import (
	"strings"

	"settlement-recon-service/internal/models"
	"settlement-recon-service/pkg/errors"
	"settlement-recon-service/pkg/logger"
)

// StatementConfig configures statement extraction.
type StatementConfig struct {
	// MsgRefColumn and RefColumn are the normalized names of the two join
	// columns that must exist in the extracted table.
	MsgRefColumn string
	RefColumn    string
	// ReferenceMarker is the literal marker a reference must contain for
	// the row to participate in reconciliation. A leading occurrence is
	// stripped from the retained value.
	ReferenceMarker string
}

// DefaultStatementConfig returns the standard settlement statement schema.
func DefaultStatementConfig() *StatementConfig {
	return &StatementConfig{
		MsgRefColumn:    "Msg_Refer_No",
		RefColumn:       "Refer_No",
		ReferenceMarker: "/XUTR/",
	}
}

// StatementParser extracts the settlement statement table from a paginated
// tabular PDF.
type StatementParser struct {
	config *StatementConfig
	layout tableLayout
	logger logger.Logger
}

// NewStatementParser creates a StatementParser with the given configuration.
func NewStatementParser(config *StatementConfig) *StatementParser {
	if config == nil {
		config = DefaultStatementConfig()
	}
	return &StatementParser{
		config: config,
		layout: defaultTableLayout(),
		logger: logger.GetGlobalLogger().WithComponent("statement_parser"),
	}
}

// ParseStatement extracts every page's table from the PDF, anchors the
// header on the first extracted row carrying both join columns, and filters
// to rows carrying the reference marker.
//
// The header is reused across all pages; the document is assumed to carry a
// uniform table schema on every page. Per-page schema equality is not
// re-verified.
func (sp *StatementParser) ParseStatement(path string) (*models.StatementTable, error) {
	sp.logger.WithField("file_path", path).Debug("Extracting statement tables from PDF")

	rows, err := extractDocumentRows(path, sp.layout)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryFile, errors.CodeFileCorrupted,
			"failed to read PDF document").WithContext("path", path)
	}
	if len(rows) == 0 {
		sp.logger.WithField("file_path", path).Error("PDF yielded no table rows")
		return nil, errors.ExtractionError(path)
	}

	table, err := sp.BuildStatementTable(rows, path)
	if err != nil {
		return nil, err
	}

	sp.logger.WithFields(logger.Fields{
		"file_path":     path,
		"raw_rows":      len(rows) - 1,
		"filtered_rows": len(table.Rows),
	}).Info("Extracted statement table")
	return table, nil
}

// BuildStatementTable builds the filtered statement table from raw extracted
// rows. The header is the first row whose normalized cells include both join
// columns; extracted rows above it are page furniture, not table content.
// Rows are kept only when their reference value is non-blank and contains
// the reference marker; the marker prefix is then stripped when anchored at
// the start of the value.
func (sp *StatementParser) BuildStatementTable(rows [][]string, source string) (*models.StatementTable, error) {
	headerIdx := sp.locateHeader(rows)
	columns := make([]string, len(rows[headerIdx]))
	for i, c := range rows[headerIdx] {
		columns[i] = models.NormalizeColumnName(c)
	}

	table := &models.StatementTable{Columns: columns}
	msgIdx := table.ColumnIndex(sp.config.MsgRefColumn)
	refIdx := table.ColumnIndex(sp.config.RefColumn)

	var missing []string
	if msgIdx < 0 {
		missing = append(missing, sp.config.MsgRefColumn)
	}
	if refIdx < 0 {
		missing = append(missing, sp.config.RefColumn)
	}
	if len(missing) > 0 {
		sp.logger.WithFields(logger.Fields{
			"missing_columns":   missing,
			"available_columns": columns,
		}).Error("Statement table is missing required columns")
		return nil, errors.SchemaError(source, missing, columns)
	}

	for _, raw := range rows[headerIdx+1:] {
		fields := alignRow(raw, len(columns))

		ref := fields[refIdx]
		if strings.TrimSpace(ref) == "" {
			continue
		}
		if !strings.Contains(ref, sp.config.ReferenceMarker) {
			continue
		}
		fields[refIdx] = strings.TrimPrefix(ref, sp.config.ReferenceMarker)

		table.Rows = append(table.Rows, models.StatementRow{
			MsgReferNo: fields[msgIdx],
			ReferNo:    fields[refIdx],
			Fields:     fields,
		})
	}

	return table, nil
}

// locateHeader returns the index of the first extracted row whose normalized
// cells include both join columns. Statement PDFs carry letterhead and
// label/value lines above the table that cluster into rows too; anchoring on
// the join columns keeps that furniture out of the table. Falls back to the
// first row when no row qualifies, so the schema check reports against it.
func (sp *StatementParser) locateHeader(rows [][]string) int {
	for i, raw := range rows {
		var hasMsg, hasRef bool
		for _, c := range raw {
			switch models.NormalizeColumnName(c) {
			case sp.config.MsgRefColumn:
				hasMsg = true
			case sp.config.RefColumn:
				hasRef = true
			}
		}
		if hasMsg && hasRef {
			return i
		}
	}
	return 0
}

// alignRow pads or truncates a raw row to the header width. Missing cells
// read as empty strings.
func alignRow(raw []string, width int) []string {
	fields := make([]string, width)
	for i := 0; i < width && i < len(raw); i++ {
		fields[i] = raw[i]
	}
	return fields
}
