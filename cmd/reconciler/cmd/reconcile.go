package cmd

import (
	"context"
	"fmt"
	"strings"

	"settlement-recon-service/cmd/reconciler/config"
	"settlement-recon-service/internal/reconciler"
	"settlement-recon-service/pkg/errors"

	"github.com/spf13/cobra"
)

var (
	statementPDF             string
	bankFiles                []string
	misFile                  string
	outstandingFile          string
	consolidatedOutput       string
	updatedOutstandingOutput string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run the settlement reconciliation pipeline",
	Long: `Reconcile extracts the settlement table from the statement PDF, matches
its references against bank-statement descriptions, links matched rows
to MIS claims by UTR, writes the consolidated result workbook and
backfills missing claim numbers into a copy of the outstanding report.

Outputs are only written when there is something to write: the
consolidated workbook requires at least one reference match, and the
updated outstanding report requires at least one backfilled claim.`,
	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVar(&statementPDF, "statement-pdf", "",
		"path to the settlement statement PDF (required)")
	reconcileCmd.Flags().StringSliceVar(&bankFiles, "bank-files", nil,
		"comma-separated bank statement workbooks (required)")
	reconcileCmd.Flags().StringVar(&misFile, "mis-file", "",
		"path to the MIS claims workbook (required)")
	reconcileCmd.Flags().StringVar(&outstandingFile, "outstanding-file", "",
		"path to the outstanding report workbook (required)")
	reconcileCmd.Flags().StringVar(&consolidatedOutput, "consolidated-output", "",
		"output path for the consolidated result workbook (required)")
	reconcileCmd.Flags().StringVar(&updatedOutstandingOutput, "updated-outstanding-output", "",
		"output path for the annotated outstanding workbook (required)")

	reconcileCmd.MarkFlagRequired("statement-pdf")
	reconcileCmd.MarkFlagRequired("bank-files")
	reconcileCmd.MarkFlagRequired("mis-file")
	reconcileCmd.MarkFlagRequired("outstanding-file")
	reconcileCmd.MarkFlagRequired("consolidated-output")
	reconcileCmd.MarkFlagRequired("updated-outstanding-output")
}

// validateReconcileFlags rejects blank flag values before any file I/O.
func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	required := map[string]string{
		"statement-pdf":              statementPDF,
		"mis-file":                   misFile,
		"outstanding-file":           outstandingFile,
		"consolidated-output":        consolidatedOutput,
		"updated-outstanding-output": updatedOutstandingOutput,
	}
	for flag, value := range required {
		if strings.TrimSpace(value) == "" {
			return errors.ValidationError(flag, "value cannot be empty")
		}
	}

	if len(bankFiles) == 0 {
		return errors.ValidationError("bank-files", "at least one bank statement file is required")
	}
	for _, f := range bankFiles {
		if strings.TrimSpace(f) == "" {
			return errors.ValidationError("bank-files", "file paths cannot be empty")
		}
	}
	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	service := reconciler.NewReconciliationService(config.BuildServiceConfig())

	request := &reconciler.ReconciliationRequest{
		StatementPDF:             statementPDF,
		BankFiles:                bankFiles,
		MISFile:                  misFile,
		OutstandingFile:          outstandingFile,
		ConsolidatedOutput:       consolidatedOutput,
		UpdatedOutstandingOutput: updatedOutstandingOutput,
	}

	result, err := service.ProcessReconciliation(context.Background(), request)
	if err != nil {
		return err
	}

	printReconcileSummary(cmd, result)
	return nil
}

func printReconcileSummary(cmd *cobra.Command, result *reconciler.ReconciliationResult) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Matches found: %d\n", result.MatchesFound)
	if result.ConsolidatedWritten != "" {
		fmt.Fprintf(out, "Consolidated result: %s\n", result.ConsolidatedWritten)
	} else {
		fmt.Fprintln(out, "Consolidated result: not written (no reference matches)")
	}
	if result.UpdatedOutstandingWritten != "" {
		fmt.Fprintf(out, "Updated outstanding report: %s\n", result.UpdatedOutstandingWritten)
	} else {
		fmt.Fprintln(out, "Updated outstanding report: not written (no rows qualified)")
	}
}
