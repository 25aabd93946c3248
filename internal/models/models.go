// Package models defines the entities flowing through the reconciliation
// pipeline and the shared normalization helpers used at every join boundary.
//
// All entities are transient: they live for the duration of a single
// pipeline run and are never persisted except through the two output
// workbooks written by the reporter.
package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// StatementRow is one filtered row of the extracted PDF statement table.
// MsgReferNo and ReferNo are the join fields; Fields carries the full
// original row (aligned with StatementTable.Columns) so downstream joins can
// recover every statement column opaquely.
type StatementRow struct {
	MsgReferNo string
	ReferNo    string
	Fields     []string
}

// StatementTable is the normalized, filtered statement extracted from the
// PDF. Column names have been normalized and every row's ReferNo carries the
// canonical reference with the /XUTR/ prefix already stripped.
type StatementTable struct {
	Columns []string
	Rows    []StatementRow
}

// ColumnIndex returns the index of a column by name, or -1 if absent.
func (t *StatementTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// LedgerEntry is one bank-statement row. All fields are raw text; no type
// inference is applied to spreadsheet cells.
type LedgerEntry struct {
	TransactionID string
	Description   string
	Amount        string
}

// Values returns the ledger fields in output column order.
func (e LedgerEntry) Values() []string {
	return []string{e.TransactionID, e.Description, e.Amount}
}

// ReferenceMatch is a ledger entry tagged with the statement message
// reference found as a literal substring of its description.
type ReferenceMatch struct {
	Entry  LedgerEntry
	MsgRef string
}

// MatchedStatement joins a tagged ledger entry back to the statement row it
// matched, recovering every original statement column.
type MatchedStatement struct {
	Entry     LedgerEntry
	MsgRef    string
	Statement StatementRow
}

// ClaimRecord is one MIS claims row, projected to the fixed claims columns
// and kept as raw text.
type ClaimRecord struct {
	IHXRefID           string
	HospitalName       string
	RohiniID           string
	PatientName        string
	InPatientNumber    string
	ClaimNumber        string
	InitialClaimNumber string
	SettledAmount      string
	TDSAmount          string
	UTRReference       string
	UTRDate            string
	ClaimStatus        string
	TPAName            string
}

// Values returns the claim fields in output column order, matching the MIS
// projection order.
func (c ClaimRecord) Values() []string {
	return []string{
		c.IHXRefID, c.HospitalName, c.RohiniID, c.PatientName,
		c.InPatientNumber, c.ClaimNumber, c.InitialClaimNumber,
		c.SettledAmount, c.TDSAmount, c.UTRReference, c.UTRDate,
		c.ClaimStatus, c.TPAName,
	}
}

// ConsolidatedRecord is one row of the fully chained result: a ledger entry
// linked through the statement reference chain to a claim. Multiplicity is
// preserved; a claim matched by several ledger entries appears once per
// entry.
type ConsolidatedRecord struct {
	Entry     LedgerEntry
	MsgRef    string
	Statement StatementRow
	Claim     ClaimRecord
}

// ConsolidatedSet is the consolidated result together with the statement
// column schema needed to render the flat output table.
type ConsolidatedSet struct {
	StatementColumns []string
	Records          []ConsolidatedRecord
}

// IsEmpty reports whether the chain produced no matches. An empty set is a
// valid outcome, not an error.
func (s *ConsolidatedSet) IsEmpty() bool {
	return len(s.Records) == 0
}

// OutstandingRow is the logic view of one outstanding-report row. RowIndex
// is the 1-based spreadsheet row so the annotator can address the live cell.
type OutstandingRow struct {
	RowIndex    int
	ClaimNo     string
	CRNo        string
	PatientName string
	Balance     string
}

// HasClaimNo reports whether the row already carries a claim number. Rows
// with a claim number are never rewritten.
func (r OutstandingRow) HasClaimNo() bool {
	return strings.TrimSpace(r.ClaimNo) != ""
}

// NormalizeColumnName trims a header cell and replaces dots and spaces with
// underscores, matching the statement schema expected downstream.
func NormalizeColumnName(name string) string {
	n := strings.TrimSpace(name)
	n = strings.ReplaceAll(n, ".", "_")
	n = strings.ReplaceAll(n, " ", "_")
	return n
}

// NormalizeKey uppercases and trims a value for use as a lookup index key.
func NormalizeKey(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// ParseTolerantDecimal parses a numeric cell, stripping thousands
// separators. Blank or unparseable input yields nil, never an error: an
// unreadable amount disqualifies a row from matching but must not fail the
// pipeline.
func ParseTolerantDecimal(value string) *decimal.Decimal {
	s := strings.TrimSpace(strings.ReplaceAll(value, ",", ""))
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}
