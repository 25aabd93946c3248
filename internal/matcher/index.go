package matcher

import (
	"settlement-recon-service/internal/models"

	"github.com/shopspring/decimal"
)

// LookupIndices are the three mappings the outstanding annotator resolves
// against, keyed by uppercased-and-trimmed values.
//
// Construction iterates the consolidated records in order and the last row
// wins on key collision. That is the documented collision policy, not an
// accident of iteration: two claims sharing an in-patient number or patient
// name resolve to whichever appeared last in the chain.
type LookupIndices struct {
	// InPatientToClaim maps a normalized in-patient number to a claim number.
	InPatientToClaim map[string]string
	// PatientNameToClaim maps a normalized patient name to a claim number.
	PatientNameToClaim map[string]string
	// ClaimToSettled maps a normalized claim number to its settled amount.
	// A claim whose settled amount was blank or unparseable maps to nil.
	ClaimToSettled map[string]*decimal.Decimal
}

// BuildLookupIndices builds the three annotation indices from the
// consolidated result.
func BuildLookupIndices(consolidated *models.ConsolidatedSet) *LookupIndices {
	indices := &LookupIndices{
		InPatientToClaim:   make(map[string]string),
		PatientNameToClaim: make(map[string]string),
		ClaimToSettled:     make(map[string]*decimal.Decimal),
	}

	for _, rec := range consolidated.Records {
		claim := rec.Claim
		indices.InPatientToClaim[models.NormalizeKey(claim.InPatientNumber)] = claim.ClaimNumber
		indices.PatientNameToClaim[models.NormalizeKey(claim.PatientName)] = claim.ClaimNumber
		indices.ClaimToSettled[models.NormalizeKey(claim.ClaimNumber)] = models.ParseTolerantDecimal(claim.SettledAmount)
	}

	return indices
}

// ResolveClaim applies the dual-key acceptance rule for one outstanding row:
// the CR number and the patient name must both resolve, both must agree on
// the claim number, the claim must have a known settled amount, and that
// amount must differ from the row balance by strictly less than the
// tolerance. It returns the claim number to write, or "" when any condition
// fails.
func (li *LookupIndices) ResolveClaim(crNo, patientName string, balance *decimal.Decimal, tolerance decimal.Decimal) string {
	claimByCR, okCR := li.InPatientToClaim[models.NormalizeKey(crNo)]
	claimByName, okName := li.PatientNameToClaim[models.NormalizeKey(patientName)]
	if !okCR || !okName || claimByCR != claimByName {
		return ""
	}

	settled, ok := li.ClaimToSettled[models.NormalizeKey(claimByCR)]
	if !ok || settled == nil || balance == nil {
		return ""
	}
	if settled.Sub(*balance).Abs().GreaterThanOrEqual(tolerance) {
		return ""
	}
	return claimByCR
}
