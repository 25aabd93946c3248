package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

func TestBuildServiceConfigDefaults(t *testing.T) {
	viper.Reset()
	viper.SetDefault(keyReferenceMarker, "/XUTR/")
	viper.SetDefault(keyHighlightColor, "00FFFF")
	viper.SetDefault(keyTolerance, 0.01)

	cfg := BuildServiceConfig()

	if cfg.Statement.ReferenceMarker != "/XUTR/" {
		t.Errorf("ReferenceMarker = %q, want /XUTR/", cfg.Statement.ReferenceMarker)
	}
	if cfg.Annotator.HighlightColor != "00FFFF" {
		t.Errorf("HighlightColor = %q, want 00FFFF", cfg.Annotator.HighlightColor)
	}
	if !cfg.Annotator.Tolerance.Equal(decimal.NewFromFloat(0.01)) {
		t.Errorf("Tolerance = %s, want 0.01", cfg.Annotator.Tolerance)
	}
}

func TestBuildServiceConfigOverrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set(keyReferenceMarker, "/NEFT/")
	viper.Set(keyHighlightColor, "FFFF00")
	viper.Set(keyTolerance, 0.05)

	cfg := BuildServiceConfig()

	if cfg.Statement.ReferenceMarker != "/NEFT/" {
		t.Errorf("ReferenceMarker = %q, want /NEFT/", cfg.Statement.ReferenceMarker)
	}
	if cfg.Annotator.HighlightColor != "FFFF00" {
		t.Errorf("HighlightColor = %q, want FFFF00", cfg.Annotator.HighlightColor)
	}
	if !cfg.Annotator.Tolerance.Equal(decimal.NewFromFloat(0.05)) {
		t.Errorf("Tolerance = %s, want 0.05", cfg.Annotator.Tolerance)
	}
}
