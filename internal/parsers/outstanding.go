package parsers

import (
	"settlement-recon-service/internal/models"
	"settlement-recon-service/pkg/logger"

	"github.com/xuri/excelize/v2"
)

// OutstandingConfig names the four columns an outstanding sheet must carry
// to be eligible for annotation.
type OutstandingConfig struct {
	ClaimNoColumn     string
	CRNoColumn        string
	PatientNameColumn string
	BalanceColumn     string
}

// DefaultOutstandingConfig returns the standard outstanding-report schema.
func DefaultOutstandingConfig() *OutstandingConfig {
	return &OutstandingConfig{
		ClaimNoColumn:     "Claim No",
		CRNoColumn:        "CR No",
		PatientNameColumn: "Patient Name",
		BalanceColumn:     "Balance",
	}
}

// OutstandingSheet is the text-only logic view of one sheet of the
// outstanding workbook. It is used for row filtering and matching decisions;
// it is never persisted. ClaimColIndex is the 0-based index of the Claim No
// column, kept so the annotator can address the live cell for mutation.
type OutstandingSheet struct {
	Name          string
	ClaimColIndex int
	Rows          []models.OutstandingRow
}

// LoadOutstandingSheets builds the logic view for every sheet of an already
// opened outstanding workbook that carries all four required columns. Sheets
// missing any required column are skipped silently; that is not an error.
//
// The caller keeps the *excelize.File open: the same handle serves as the
// structural view mutated by the annotator, so untouched formatting survives
// the round trip.
func LoadOutstandingSheets(f *excelize.File, config *OutstandingConfig) ([]OutstandingSheet, error) {
	if config == nil {
		config = DefaultOutstandingConfig()
	}
	log := logger.GetGlobalLogger().WithComponent("outstanding_parser")

	var sheets []OutstandingSheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			continue
		}

		header := headerMap(rows[0])
		claimIdx, okClaim := header[config.ClaimNoColumn]
		crIdx, okCR := header[config.CRNoColumn]
		nameIdx, okName := header[config.PatientNameColumn]
		balIdx, okBal := header[config.BalanceColumn]
		if !okClaim || !okCR || !okName || !okBal {
			log.WithField("sheet", name).Debug("Skipping sheet without required outstanding columns")
			continue
		}

		sheet := OutstandingSheet{Name: name, ClaimColIndex: claimIdx}
		for i, raw := range rows[1:] {
			sheet.Rows = append(sheet.Rows, models.OutstandingRow{
				RowIndex:    i + 2, // header occupies row 1
				ClaimNo:     cellAt(raw, claimIdx),
				CRNo:        cellAt(raw, crIdx),
				PatientName: cellAt(raw, nameIdx),
				Balance:     cellAt(raw, balIdx),
			})
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}
