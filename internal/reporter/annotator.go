package reporter

import (
	"settlement-recon-service/internal/matcher"
	"settlement-recon-service/internal/models"
	"settlement-recon-service/internal/parsers"
	"settlement-recon-service/pkg/errors"
	"settlement-recon-service/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// AnnotatorConfig controls outstanding-report annotation.
type AnnotatorConfig struct {
	Outstanding *parsers.OutstandingConfig
	// HighlightColor is the solid fill applied to every cell the annotator
	// writes, as an RGB hex string.
	HighlightColor string
	// Tolerance is the strict upper bound on |settled - balance| for a
	// match to be accepted.
	Tolerance decimal.Decimal
}

// DefaultAnnotatorConfig returns the standard annotation settings: cyan
// highlight, 0.01 tolerance.
func DefaultAnnotatorConfig() *AnnotatorConfig {
	return &AnnotatorConfig{
		Outstanding:    parsers.DefaultOutstandingConfig(),
		HighlightColor: "00FFFF",
		Tolerance:      decimal.NewFromFloat(0.01),
	}
}

// Annotator backfills missing claim numbers into the outstanding workbook.
//
// It holds two views over the same source file: the text-only logic view
// (row filtering and match decisions) and the live workbook (cell mutation).
// Only the live workbook is ever persisted, and only when at least one cell
// was updated, so all untouched rows, sheets and formatting survive intact.
type Annotator struct {
	config *AnnotatorConfig
	logger logger.Logger
}

// NewAnnotator creates an Annotator with the given configuration.
func NewAnnotator(config *AnnotatorConfig) *Annotator {
	if config == nil {
		config = DefaultAnnotatorConfig()
	}
	return &Annotator{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("outstanding_annotator"),
	}
}

// Annotate scans every eligible sheet of the outstanding workbook at
// inputPath for rows with a blank claim number, resolves each through the
// lookup indices, and writes accepted claim numbers back with a highlight
// fill. The annotated workbook is saved to outputPath only if at least one
// row was updated; the returned bool reports whether that happened. Zero
// updates is a valid outcome, not an error.
func (a *Annotator) Annotate(inputPath, outputPath string, indices *matcher.LookupIndices) (bool, error) {
	f, err := excelize.OpenFile(inputPath)
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryFile, errors.CodeFileCorrupted,
			"failed to open outstanding workbook").WithContext("path", inputPath)
	}
	defer f.Close()

	sheets, err := parsers.LoadOutstandingSheets(f, a.config.Outstanding)
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryFile, errors.CodeFileCorrupted,
			"failed to read outstanding workbook").WithContext("path", inputPath)
	}

	styleID := -1
	updated := 0
	for _, sheet := range sheets {
		for _, row := range sheet.Rows {
			if row.HasClaimNo() {
				continue
			}

			balance := models.ParseTolerantDecimal(row.Balance)
			claim := indices.ResolveClaim(row.CRNo, row.PatientName, balance, a.config.Tolerance)
			if claim == "" {
				continue
			}

			if styleID < 0 {
				styleID, err = f.NewStyle(&excelize.Style{
					Fill: excelize.Fill{
						Type:    "pattern",
						Pattern: 1,
						Color:   []string{a.config.HighlightColor},
					},
				})
				if err != nil {
					return false, errors.WriteError(outputPath, err)
				}
			}

			cell, err := excelize.CoordinatesToCellName(sheet.ClaimColIndex+1, row.RowIndex)
			if err != nil {
				return false, errors.WriteError(outputPath, err)
			}
			if err := f.SetCellValue(sheet.Name, cell, claim); err != nil {
				return false, errors.WriteError(outputPath, err)
			}
			if err := f.SetCellStyle(sheet.Name, cell, cell, styleID); err != nil {
				return false, errors.WriteError(outputPath, err)
			}

			a.logger.WithFields(logger.Fields{
				"sheet": sheet.Name,
				"cell":  cell,
				"claim": claim,
			}).Debug("Backfilled claim number")
			updated++
		}
	}

	if updated == 0 {
		a.logger.Info("No outstanding rows qualified for annotation; no file written")
		return false, nil
	}

	if err := f.SaveAs(outputPath); err != nil {
		return false, errors.WriteError(outputPath, err)
	}

	a.logger.WithFields(logger.Fields{
		"path":    outputPath,
		"updates": updated,
	}).Info("Wrote annotated outstanding report")
	return true, nil
}
