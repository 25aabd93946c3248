// Package reconciler orchestrates the settlement reconciliation pipeline.
//
// One service invocation processes one full set of inputs synchronously:
// statement extraction, ledger loading, reference matching, claims linking
// and outstanding annotation, in that order, with no retries and no partial
// recovery. Validation failures and stage failures carry typed errors from
// pkg/errors and propagate to the caller unhandled.
package reconciler

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"settlement-recon-service/internal/matcher"
	"settlement-recon-service/internal/parsers"
	"settlement-recon-service/internal/reporter"
	"settlement-recon-service/pkg/errors"
	"settlement-recon-service/pkg/logger"
)

// spreadsheetExtensions are the accepted workbook extensions for the bank,
// MIS and outstanding sources.
var spreadsheetExtensions = []string{".xlsx", ".xls", ".xlsm"}

// ReconciliationRequest carries the four input sources and two output
// targets of one pipeline run.
type ReconciliationRequest struct {
	StatementPDF             string
	BankFiles                []string
	MISFile                  string
	OutstandingFile          string
	ConsolidatedOutput       string
	UpdatedOutstandingOutput string
}

// Validate performs the fail-fast precondition checks: every input must be
// an existing regular file with the expected extension, and both output
// parents must exist and be writable. Nothing is parsed before these pass.
func (r *ReconciliationRequest) Validate() error {
	if err := validateInputFile("statement PDF", r.StatementPDF, []string{".pdf"}); err != nil {
		return err
	}

	if len(r.BankFiles) == 0 {
		return errors.ValidationError("bank_files",
			"at least one bank statement file is required")
	}
	for _, bankFile := range r.BankFiles {
		if err := validateInputFile("bank statement", bankFile, spreadsheetExtensions); err != nil {
			return err
		}
	}

	if err := validateInputFile("MIS file", r.MISFile, spreadsheetExtensions); err != nil {
		return err
	}
	if err := validateInputFile("outstanding report", r.OutstandingFile, spreadsheetExtensions); err != nil {
		return err
	}

	if err := validateOutputTarget("consolidated output", r.ConsolidatedOutput); err != nil {
		return err
	}
	return validateOutputTarget("updated outstanding output", r.UpdatedOutstandingOutput)
}

// ReconciliationResult is the summary returned to the caller. The written
// paths are empty when the corresponding file was not produced; both
// absences are success outcomes, not failures.
type ReconciliationResult struct {
	MatchesFound              int    `json:"matches_found"`
	ConsolidatedWritten       string `json:"consolidated_written,omitempty"`
	UpdatedOutstandingWritten string `json:"updated_outstanding_written,omitempty"`
}

// ServiceConfig aggregates the per-stage configurations.
type ServiceConfig struct {
	Statement *parsers.StatementConfig
	Ledger    *parsers.LedgerConfig
	Claims    *parsers.ClaimsConfig
	Annotator *reporter.AnnotatorConfig
	// MsgRefTagColumn is the name of the tag column in the consolidated
	// output that carries the matched message reference.
	MsgRefTagColumn string
}

// DefaultServiceConfig returns the standard pipeline configuration.
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		Statement:       parsers.DefaultStatementConfig(),
		Ledger:          parsers.DefaultLedgerConfig(),
		Claims:          parsers.DefaultClaimsConfig(),
		Annotator:       reporter.DefaultAnnotatorConfig(),
		MsgRefTagColumn: "__Msg_Ref__",
	}
}

// ReconciliationService runs the reconciliation pipeline.
type ReconciliationService struct {
	config    *ServiceConfig
	statement *parsers.StatementParser
	ledger    *parsers.LedgerParser
	claims    *parsers.ClaimsParser
	refs      *matcher.ReferenceMatcher
	linker    *matcher.ClaimsLinker
	annotator *reporter.Annotator
	logger    logger.Logger
}

// NewReconciliationService creates a ReconciliationService with the given
// configuration.
func NewReconciliationService(config *ServiceConfig) *ReconciliationService {
	if config == nil {
		config = DefaultServiceConfig()
	}
	return &ReconciliationService{
		config:    config,
		statement: parsers.NewStatementParser(config.Statement),
		ledger:    parsers.NewLedgerParser(config.Ledger),
		claims:    parsers.NewClaimsParser(config.Claims),
		refs:      matcher.NewReferenceMatcher(),
		linker:    matcher.NewClaimsLinker(),
		annotator: reporter.NewAnnotator(config.Annotator),
		logger:    logger.GetGlobalLogger().WithComponent("reconciliation_service"),
	}
}

// ProcessReconciliation runs one complete pipeline invocation. Zero
// reference matches and zero outstanding updates both return successfully
// with the corresponding output absent.
func (rs *ReconciliationService) ProcessReconciliation(ctx context.Context, request *ReconciliationRequest) (*ReconciliationResult, error) {
	rs.logger.WithFields(logger.Fields{
		"statement_pdf": request.StatementPDF,
		"bank_files":    len(request.BankFiles),
	}).Info("Starting reconciliation")

	if err := request.Validate(); err != nil {
		rs.logger.WithError(err).Error("Request validation failed")
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, errors.CodeUnexpectedError,
			"reconciliation cancelled")
	}

	statements, err := rs.statement.ParseStatement(request.StatementPDF)
	if err != nil {
		return nil, err
	}

	ledger, err := rs.ledger.LoadLedger(request.BankFiles)
	if err != nil {
		return nil, err
	}

	refMatches := rs.refs.MatchReferences(statements, ledger)
	if len(refMatches) == 0 {
		// A valid no-matches outcome: nothing to consolidate or annotate.
		rs.logger.Info("No ledger descriptions contained a statement reference")
		return &ReconciliationResult{MatchesFound: 0}, nil
	}

	matched := rs.refs.JoinStatements(refMatches, statements)

	claims, err := rs.claims.LoadClaims(request.MISFile)
	if err != nil {
		return nil, err
	}
	consolidated := rs.linker.LinkClaims(matched, claims, statements.Columns)

	writer := reporter.NewConsolidatedWriter(&reporter.ConsolidatedWriterConfig{
		LedgerColumns: []string{
			rs.config.Ledger.TransactionIDColumn,
			rs.config.Ledger.DescriptionColumn,
			rs.config.Ledger.AmountColumn,
		},
		MsgRefColumn: rs.config.MsgRefTagColumn,
		ClaimColumns: rs.config.Claims.Columns,
	})
	if err := writer.Write(consolidated, request.ConsolidatedOutput); err != nil {
		return nil, err
	}

	result := &ReconciliationResult{
		MatchesFound:        len(consolidated.Records),
		ConsolidatedWritten: request.ConsolidatedOutput,
	}

	indices := matcher.BuildLookupIndices(consolidated)
	updated, err := rs.annotator.Annotate(request.OutstandingFile, request.UpdatedOutstandingOutput, indices)
	if err != nil {
		return nil, err
	}
	if updated {
		result.UpdatedOutstandingWritten = request.UpdatedOutstandingOutput
	}

	rs.logger.WithFields(logger.Fields{
		"matches_found":       result.MatchesFound,
		"outstanding_updated": updated,
	}).Info("Reconciliation completed")
	return result, nil
}

// validateInputFile checks that path names an existing regular file with one
// of the allowed extensions.
func validateInputFile(what, path string, allowed []string) error {
	if strings.TrimSpace(path) == "" {
		return errors.ValidationError(what, "path cannot be empty")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return errors.NotFoundError(what, path)
	}
	if err != nil {
		return errors.Wrap(err, errors.CategoryFile, errors.CodeFileCorrupted,
			"failed to stat "+what).WithContext("path", path)
	}
	if !info.Mode().IsRegular() {
		return errors.NotRegularFileError(what, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	return errors.TypeValidationError(what, path, allowed)
}

// validateOutputTarget checks that the output path's parent directory exists
// and is writable, probing with a throwaway temp file.
func validateOutputTarget(what, path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.ValidationError(what, "path cannot be empty")
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return errors.NotFoundError("parent directory for "+what, dir)
	}
	if err != nil || !info.IsDir() {
		return errors.NotFoundError("parent directory for "+what, dir)
	}

	probe, err := os.CreateTemp(dir, ".recon-probe-*")
	if err != nil {
		return errors.PermissionError(what, dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}
