package reconciler

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"settlement-recon-service/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// createTestRequest builds a request whose inputs all exist with the right
// extensions and whose outputs point into a writable directory.
func createTestRequest(t *testing.T) *ReconciliationRequest {
	t.Helper()
	dir := t.TempDir()

	touch := func(name string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("fixture"), 0o644); err != nil {
			t.Fatalf("failed to create fixture %s: %v", name, err)
		}
		return path
	}

	return &ReconciliationRequest{
		StatementPDF:             touch("statement.pdf"),
		BankFiles:                []string{touch("bank.xlsx")},
		MISFile:                  touch("mis.xlsx"),
		OutstandingFile:          touch("outstanding.xlsx"),
		ConsolidatedOutput:       filepath.Join(dir, "consolidated.xlsx"),
		UpdatedOutstandingOutput: filepath.Join(dir, "outstanding_updated.xlsx"),
	}
}

func TestRequestValidate(t *testing.T) {
	request := createTestRequest(t)
	if err := request.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestRequestValidateFailures(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(t *testing.T, r *ReconciliationRequest)
		category errors.Category
		code     errors.Code
	}{
		{
			name: "missing statement PDF",
			mutate: func(t *testing.T, r *ReconciliationRequest) {
				r.StatementPDF = filepath.Join(t.TempDir(), "missing.pdf")
			},
			category: errors.CategoryFile,
			code:     errors.CodeFileNotFound,
		},
		{
			name: "statement with wrong extension",
			mutate: func(t *testing.T, r *ReconciliationRequest) {
				path := filepath.Join(t.TempDir(), "statement.txt")
				if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
					t.Fatal(err)
				}
				r.StatementPDF = path
			},
			category: errors.CategoryValidation,
			code:     errors.CodeInvalidFileType,
		},
		{
			name: "empty bank file list",
			mutate: func(t *testing.T, r *ReconciliationRequest) {
				r.BankFiles = nil
			},
			category: errors.CategoryValidation,
			code:     errors.CodeMissingField,
		},
		{
			name: "bank file with wrong extension",
			mutate: func(t *testing.T, r *ReconciliationRequest) {
				path := filepath.Join(t.TempDir(), "bank.csv")
				if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
					t.Fatal(err)
				}
				r.BankFiles = []string{path}
			},
			category: errors.CategoryValidation,
			code:     errors.CodeInvalidFileType,
		},
		{
			name: "directory given as MIS file",
			mutate: func(t *testing.T, r *ReconciliationRequest) {
				dir := filepath.Join(t.TempDir(), "mis.xlsx")
				if err := os.Mkdir(dir, 0o755); err != nil {
					t.Fatal(err)
				}
				r.MISFile = dir
			},
			category: errors.CategoryFile,
			code:     errors.CodeNotRegularFile,
		},
		{
			name: "blank outstanding path",
			mutate: func(t *testing.T, r *ReconciliationRequest) {
				r.OutstandingFile = "  "
			},
			category: errors.CategoryValidation,
			code:     errors.CodeMissingField,
		},
		{
			name: "consolidated output parent does not exist",
			mutate: func(t *testing.T, r *ReconciliationRequest) {
				r.ConsolidatedOutput = filepath.Join(t.TempDir(), "no", "such", "out.xlsx")
			},
			category: errors.CategoryFile,
			code:     errors.CodeFileNotFound,
		},
		{
			name: "updated outstanding output parent does not exist",
			mutate: func(t *testing.T, r *ReconciliationRequest) {
				r.UpdatedOutstandingOutput = filepath.Join(t.TempDir(), "no", "out.xlsx")
			},
			category: errors.CategoryFile,
			code:     errors.CodeFileNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := createTestRequest(t)
			tt.mutate(t, request)

			err := request.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			reconErr, ok := errors.AsReconError(err)
			if !ok {
				t.Fatalf("error is not a ReconError: %v", err)
			}
			if reconErr.Category != tt.category {
				t.Errorf("Category = %s, want %s", reconErr.Category, tt.category)
			}
			if reconErr.Code != tt.code {
				t.Errorf("Code = %s, want %s", reconErr.Code, tt.code)
			}
		})
	}
}

func TestRequestValidateAcceptsSpreadsheetVariants(t *testing.T) {
	for _, ext := range []string{".xlsx", ".xls", ".xlsm"} {
		t.Run(ext, func(t *testing.T) {
			request := createTestRequest(t)
			path := filepath.Join(t.TempDir(), "bank"+ext)
			if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
				t.Fatal(err)
			}
			request.BankFiles = []string{path}

			if err := request.Validate(); err != nil {
				t.Errorf("Validate() error = %v for extension %s", err, ext)
			}
		})
	}
}

func TestDefaultServiceConfig(t *testing.T) {
	config := DefaultServiceConfig()

	if config.Statement.ReferenceMarker != "/XUTR/" {
		t.Errorf("ReferenceMarker = %q, want /XUTR/", config.Statement.ReferenceMarker)
	}
	if config.Ledger.DescriptionColumn != "Description" {
		t.Errorf("DescriptionColumn = %q", config.Ledger.DescriptionColumn)
	}
	if config.Claims.UTRColumn != "Cheque/ NEFT/ UTR No." {
		t.Errorf("UTRColumn = %q", config.Claims.UTRColumn)
	}
	if config.Annotator.HighlightColor != "00FFFF" {
		t.Errorf("HighlightColor = %q, want 00FFFF", config.Annotator.HighlightColor)
	}
	if !config.Annotator.Tolerance.Equal(decimal.NewFromFloat(0.01)) {
		t.Errorf("Tolerance = %s, want 0.01", config.Annotator.Tolerance)
	}
	if config.MsgRefTagColumn != "__Msg_Ref__" {
		t.Errorf("MsgRefTagColumn = %q", config.MsgRefTagColumn)
	}
}

func TestProcessReconciliationValidationFailureShortCircuits(t *testing.T) {
	service := NewReconciliationService(nil)
	request := createTestRequest(t)
	request.StatementPDF = filepath.Join(t.TempDir(), "missing.pdf")

	result, err := service.ProcessReconciliation(context.Background(), request)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if result != nil {
		t.Errorf("result = %+v, want nil on failure", result)
	}

	// No output files may appear when validation fails.
	if _, statErr := os.Stat(request.ConsolidatedOutput); !os.IsNotExist(statErr) {
		t.Error("consolidated output exists despite validation failure")
	}
	if _, statErr := os.Stat(request.UpdatedOutstandingOutput); !os.IsNotExist(statErr) {
		t.Error("updated outstanding output exists despite validation failure")
	}
}

// escapePDFText escapes the characters with special meaning inside a PDF
// literal string.
func escapePDFText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// createTestStatementPDF writes a one-page PDF placing each cell as a
// positioned text run, with wide horizontal gaps between columns so the
// layout clustering reconstructs the intended rows.
func createTestStatementPDF(t *testing.T, rows [][]string) string {
	t.Helper()

	var content strings.Builder
	y := 720
	for _, row := range rows {
		x := 72
		for _, cell := range row {
			fmt.Fprintf(&content, "BT /F1 10 Tf 1 0 0 1 %d %d Tm (%s) Tj ET\n",
				x, y, escapePDFText(cell))
			x += 220
		}
		y -= 24
	}
	stream := content.String()

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, 6)
	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}
	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
		"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	widths := strings.TrimSpace(strings.Repeat("500 ", 95))
	writeObj(4, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica "+
		"/FirstChar 32 /LastChar 126 /Widths ["+widths+"] /Encoding /WinAnsiEncoding >>")
	writeObj(5, fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(stream), stream))

	xrefOffset := buf.Len()
	buf.WriteString("xref\n0 6\n0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	path := filepath.Join(t.TempDir(), "statement.pdf")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write statement fixture: %v", err)
	}
	return path
}

// createTestSheet writes a single-sheet workbook with the given rows.
func createTestSheet(t *testing.T, name string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("failed to compute cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("failed to write row: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook fixture: %v", err)
	}
	return path
}

// createPipelineRequest wires a full fixture set: the statement PDF, one
// bank workbook whose description carries the message reference, an MIS
// workbook linking the statement reference to claim C1, and an outstanding
// workbook with one blank-claim row carrying the given balance.
func createPipelineRequest(t *testing.T, outstandingBalance string) *ReconciliationRequest {
	t.Helper()
	outDir := t.TempDir()

	statementPDF := createTestStatementPDF(t, [][]string{
		{"Statement Date:", "2024-01-15"},
		{"Msg Refer No", "Refer No"},
		{"MSG1", "/XUTR/REF1"},
	})

	bankFile := createTestSheet(t, "bank.xlsx", [][]interface{}{
		{"Transaction ID", "Description", "Transaction Amount(INR)"},
		{"T1", "payment MSG1 settled", "100"},
	})

	misFile := createTestSheet(t, "mis.xlsx", [][]interface{}{
		{"IHX Ref Id", "Hospital Name", "RohiniId", "Patient Name",
			"In Patient Number", "Claim Number", "Initial Claim Number",
			"Settled Amount", "TDS Amount", "Cheque/ NEFT/ UTR No.",
			"Cheque/ NEFT/ UTR Date", "Claim Status", "TPA Name"},
		{"IHX1", "City Hospital", "R1", "JOHN", "IP1", "C1", "ICN1",
			"500", "50", "REF1", "2024-01-16", "Settled", "TPA One"},
	})

	outstandingFile := createTestSheet(t, "outstanding.xlsx", [][]interface{}{
		{"CR No", "Patient Name", "Claim No", "Balance"},
		{"ip1", "john", "", outstandingBalance},
	})

	return &ReconciliationRequest{
		StatementPDF:             statementPDF,
		BankFiles:                []string{bankFile},
		MISFile:                  misFile,
		OutstandingFile:          outstandingFile,
		ConsolidatedOutput:       filepath.Join(outDir, "consolidated.xlsx"),
		UpdatedOutstandingOutput: filepath.Join(outDir, "outstanding_updated.xlsx"),
	}
}

func TestProcessReconciliationEndToEnd(t *testing.T) {
	service := NewReconciliationService(nil)
	request := createPipelineRequest(t, "500.00")

	result, err := service.ProcessReconciliation(context.Background(), request)
	if err != nil {
		t.Fatalf("ProcessReconciliation() error = %v", err)
	}

	if result.MatchesFound != 1 {
		t.Errorf("MatchesFound = %d, want 1", result.MatchesFound)
	}
	if result.ConsolidatedWritten != request.ConsolidatedOutput {
		t.Errorf("ConsolidatedWritten = %q, want %q", result.ConsolidatedWritten, request.ConsolidatedOutput)
	}
	if result.UpdatedOutstandingWritten != request.UpdatedOutstandingOutput {
		t.Errorf("UpdatedOutstandingWritten = %q, want %q",
			result.UpdatedOutstandingWritten, request.UpdatedOutstandingOutput)
	}

	// MatchesFound equals the consolidated data row count exactly.
	cf, err := excelize.OpenFile(request.ConsolidatedOutput)
	if err != nil {
		t.Fatalf("failed to reopen consolidated output: %v", err)
	}
	defer cf.Close()
	rows, err := cf.GetRows(cf.GetSheetName(0))
	if err != nil {
		t.Fatalf("failed to read consolidated rows: %v", err)
	}
	if len(rows)-1 != result.MatchesFound {
		t.Errorf("consolidated data rows = %d, want %d", len(rows)-1, result.MatchesFound)
	}
	record := rows[1]
	if record[0] != "T1" || record[3] != "MSG1" {
		t.Errorf("consolidated record = %v", record)
	}

	// The outstanding copy carries the backfilled claim with a highlight.
	of, err := excelize.OpenFile(request.UpdatedOutstandingOutput)
	if err != nil {
		t.Fatalf("failed to reopen annotated output: %v", err)
	}
	defer of.Close()
	sheet := of.GetSheetName(0)
	if got, _ := of.GetCellValue(sheet, "C2"); got != "C1" {
		t.Errorf("annotated claim cell = %q, want C1", got)
	}
	if styleID, _ := of.GetCellStyle(sheet, "C2"); styleID == 0 {
		t.Error("annotated cell has no style; expected highlight fill")
	}
}

func TestProcessReconciliationBalanceOutsideTolerance(t *testing.T) {
	service := NewReconciliationService(nil)
	request := createPipelineRequest(t, "500.02")

	result, err := service.ProcessReconciliation(context.Background(), request)
	if err != nil {
		t.Fatalf("ProcessReconciliation() error = %v", err)
	}

	if result.MatchesFound != 1 {
		t.Errorf("MatchesFound = %d, want 1", result.MatchesFound)
	}
	if result.ConsolidatedWritten != request.ConsolidatedOutput {
		t.Errorf("ConsolidatedWritten = %q, want %q", result.ConsolidatedWritten, request.ConsolidatedOutput)
	}
	if result.UpdatedOutstandingWritten != "" {
		t.Errorf("UpdatedOutstandingWritten = %q, want absent", result.UpdatedOutstandingWritten)
	}
	if _, statErr := os.Stat(request.UpdatedOutstandingOutput); !os.IsNotExist(statErr) {
		t.Error("annotated output exists despite zero updates")
	}
}

func TestProcessReconciliationNoReferenceMatches(t *testing.T) {
	service := NewReconciliationService(nil)
	request := createPipelineRequest(t, "500.00")

	// Replace the bank file with one whose description never contains the
	// statement reference.
	request.BankFiles = []string{createTestSheet(t, "bank.xlsx", [][]interface{}{
		{"Transaction ID", "Description", "Transaction Amount(INR)"},
		{"T1", "unrelated narration", "100"},
	})}

	result, err := service.ProcessReconciliation(context.Background(), request)
	if err != nil {
		t.Fatalf("ProcessReconciliation() error = %v", err)
	}

	if result.MatchesFound != 0 {
		t.Errorf("MatchesFound = %d, want 0", result.MatchesFound)
	}
	if result.ConsolidatedWritten != "" || result.UpdatedOutstandingWritten != "" {
		t.Errorf("result = %+v, want no written paths", result)
	}
	if _, statErr := os.Stat(request.ConsolidatedOutput); !os.IsNotExist(statErr) {
		t.Error("consolidated output exists despite zero matches")
	}
}
