package cmd

import (
	"fmt"
	"os"

	"settlement-recon-service/pkg/errors"
)

// CLIErrorHandler renders pipeline errors for terminal users and maps them
// to process exit codes.
type CLIErrorHandler struct {
	verbose bool
}

// NewCLIErrorHandler creates a CLI error handler honoring the --verbose flag.
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{verbose: verbose}
}

// HandleError prints a user-facing rendering of err to stderr and returns
// the exit code the process should terminate with.
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	if reconErr, ok := errors.AsReconError(err); ok {
		return h.handleReconError(reconErr)
	}

	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
	return 1
}

func (h *CLIErrorHandler) handleReconError(err *errors.ReconError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 && h.verbose {
		fmt.Fprintln(os.Stderr, "Details:")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "Suggestion: %s\n", err.Suggestion)
	}

	if help := categoryHelp(err.Category); help != "" {
		fmt.Fprintf(os.Stderr, "\n%s\n", help)
	}

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "Caused by: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

func categoryHelp(category errors.Category) string {
	switch category {
	case errors.CategoryFile:
		return "Check that all input files exist, are regular files, and that output directories are writable."
	case errors.CategoryValidation:
		return "Check the command flags: run 'reconciler reconcile --help' for expected values."
	case errors.CategoryExtraction:
		return "The statement PDF yielded no tabular data. Confirm it is the settlement statement and not a scanned image."
	case errors.CategorySchema:
		return "An input workbook is missing required columns. Compare its header row against the expected layout."
	case errors.CategoryInternal:
		return "An unexpected internal failure occurred. Re-run with --verbose for more detail."
	default:
		return ""
	}
}
