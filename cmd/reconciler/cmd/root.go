package cmd

import (
	"fmt"
	"os"

	"settlement-recon-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "Settlement reconciliation tool",
	Long: `Reconciler links bank settlement records across a PDF settlement
statement, bank-statement workbooks and an MIS claims workbook, then
backfills missing claim numbers into the outstanding report.

Examples:
  reconciler reconcile --statement-pdf stmt.pdf --bank-files bank.xlsx \
    --mis-file mis.xlsx --outstanding-file outstanding.xlsx \
    --consolidated-output out/joined.xlsx \
    --updated-outstanding-output out/outstanding_updated.xlsx
  reconciler version`,
	Version: getVersionString(),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)

		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
			os.Exit(1)
		}

		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	}

	viper.SetEnvPrefix("RECON")
	viper.AutomaticEnv()

	if viper.GetBool("verbose") {
		if log, err := logger.NewLogger(logger.DebugConfig()); err == nil {
			logger.SetGlobalLogger(log)
		}
	}
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
