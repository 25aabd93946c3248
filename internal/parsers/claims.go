package parsers

import (
	"settlement-recon-service/internal/models"
	"settlement-recon-service/pkg/errors"
	"settlement-recon-service/pkg/logger"
)

// ClaimsConfig names the fixed MIS projection. Columns is ordered to match
// models.ClaimRecord field order; UTRColumn must be one of Columns.
type ClaimsConfig struct {
	Columns   []string
	UTRColumn string
}

// DefaultClaimsConfig returns the standard MIS claims projection.
func DefaultClaimsConfig() *ClaimsConfig {
	return &ClaimsConfig{
		Columns: []string{
			"IHX Ref Id", "Hospital Name", "RohiniId", "Patient Name",
			"In Patient Number", "Claim Number", "Initial Claim Number",
			"Settled Amount", "TDS Amount", "Cheque/ NEFT/ UTR No.",
			"Cheque/ NEFT/ UTR Date", "Claim Status", "TPA Name",
		},
		UTRColumn: "Cheque/ NEFT/ UTR No.",
	}
}

// ClaimsParser loads the MIS claims workbook with the fixed column
// projection, as text.
type ClaimsParser struct {
	config *ClaimsConfig
	logger logger.Logger
}

// NewClaimsParser creates a ClaimsParser with the given configuration.
func NewClaimsParser(config *ClaimsConfig) *ClaimsParser {
	if config == nil {
		config = DefaultClaimsConfig()
	}
	return &ClaimsParser{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("claims_parser"),
	}
}

// LoadClaims reads the MIS workbook's first sheet and projects every data
// row to the fixed claims columns. Any missing projection column is a
// schema failure. Rows with blank UTR references are retained here; the
// claims linker filters them.
func (cp *ClaimsParser) LoadClaims(path string) ([]models.ClaimRecord, error) {
	cp.logger.WithField("file_path", path).Debug("Reading MIS claims workbook")

	rows, err := readFirstSheet(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryFile, errors.CodeFileCorrupted,
			"failed to read MIS workbook").WithContext("path", path)
	}
	if len(rows) == 0 {
		return nil, errors.SchemaError(path, cp.config.Columns, nil)
	}

	header := headerMap(rows[0])
	indices := make([]int, len(cp.config.Columns))
	var missing []string
	for i, col := range cp.config.Columns {
		idx, ok := header[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		indices[i] = idx
	}
	if len(missing) > 0 {
		cp.logger.WithFields(logger.Fields{
			"missing_columns":   missing,
			"available_columns": rows[0],
		}).Error("MIS workbook is missing required columns")
		return nil, errors.SchemaError(path, missing, rows[0])
	}

	claims := make([]models.ClaimRecord, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		values := make([]string, len(indices))
		for i, idx := range indices {
			values[i] = cellAt(raw, idx)
		}
		claims = append(claims, claimFromValues(values))
	}

	cp.logger.WithFields(logger.Fields{
		"file_path": path,
		"claims":    len(claims),
	}).Info("Loaded MIS claims")
	return claims, nil
}

// claimFromValues builds a ClaimRecord from values in projection order.
func claimFromValues(v []string) models.ClaimRecord {
	return models.ClaimRecord{
		IHXRefID:           v[0],
		HospitalName:       v[1],
		RohiniID:           v[2],
		PatientName:        v[3],
		InPatientNumber:    v[4],
		ClaimNumber:        v[5],
		InitialClaimNumber: v[6],
		SettledAmount:      v[7],
		TDSAmount:          v[8],
		UTRReference:       v[9],
		UTRDate:            v[10],
		ClaimStatus:        v[11],
		TPAName:            v[12],
	}
}
