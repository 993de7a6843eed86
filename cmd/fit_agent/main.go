// Package main provides the entry point for the resume fit analysis CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonathan/resume-fit/internal/config"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	configPath string
	viper      *viper.Viper
}

func newRootCmd() *cobra.Command {
	opts := &options{viper: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "fit_agent",
		Short: "Resume fit analysis",
		Long: `fit_agent evaluates how well a resume fits a job posting. It extracts the posting's
requirements, matches them against the resume's bullets, scores the fit and suggests
targeted edits that preserve the resume's sections.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML or JSON config file")
	flags.Bool("debug", false, "Enable debug logging")
	flags.Bool("json", false, "Emit logs as JSON")
	_ = opts.viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = opts.viper.BindPFlag("json", flags.Lookup("json"))

	rootCmd.AddCommand(
		newAnalyzeCmd(opts),
		newParseResumeCmd(opts),
		newExtractRequirementsCmd(opts),
		newValidateCmd(),
		newServeCmd(opts),
	)
	return rootCmd
}

// loadConfig merges defaults, the config file, environment and bound flags.
func (o *options) loadConfig() (*config.Config, error) {
	return config.Load(o.viper, o.configPath)
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
