// Package config builds the pipeline configuration for the CLI, layering
// optional viper overrides on top of the built-in defaults.
package config

import (
	"settlement-recon-service/internal/reconciler"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Tunable keys recognized from the config file or RECON_* environment
// variables. Everything else in the pipeline configuration is a fixed part
// of the source schemas and is not overridable.
const (
	keyReferenceMarker = "statement.reference_marker"
	keyHighlightColor  = "annotator.highlight_color"
	keyTolerance       = "annotator.tolerance"
)

func init() {
	viper.SetDefault(keyReferenceMarker, "/XUTR/")
	viper.SetDefault(keyHighlightColor, "00FFFF")
	viper.SetDefault(keyTolerance, 0.01)
}

// BuildServiceConfig assembles the full pipeline configuration: built-in
// schema defaults plus any viper overrides for the tunable keys.
func BuildServiceConfig() *reconciler.ServiceConfig {
	cfg := reconciler.DefaultServiceConfig()

	if marker := viper.GetString(keyReferenceMarker); marker != "" {
		cfg.Statement.ReferenceMarker = marker
	}
	if color := viper.GetString(keyHighlightColor); color != "" {
		cfg.Annotator.HighlightColor = color
	}
	if tolerance := viper.GetFloat64(keyTolerance); tolerance > 0 {
		cfg.Annotator.Tolerance = decimal.NewFromFloat(tolerance)
	}

	return cfg
}
