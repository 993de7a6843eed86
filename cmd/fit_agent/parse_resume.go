package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-fit/internal/ingestion"
	"github.com/jonathan/resume-fit/internal/observability"
	"github.com/jonathan/resume-fit/internal/schemas"
	"github.com/jonathan/resume-fit/internal/types"
)

// resumeOutput is the JSON written by parse-resume.
type resumeOutput struct {
	Resume            types.StructuredResume `json:"resume"`
	ParseIncomplete   bool                   `json:"parse_incomplete"`
	MissingSections   []string               `json:"missing_sections"`
	StructuringFailed bool                   `json:"structuring_failed"`
	FromCache         bool                   `json:"from_cache"`
}

func newParseResumeCmd(opts *options) *cobra.Command {
	var (
		resumePath string
		priorPath  string
		outPath    string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "parse-resume",
		Short: "Structure a plain-text resume into sections",
		Long: `Parses a plain-text resume into its summary, experience, projects, education, skills,
certifications and achievements. The raw text is preserved verbatim alongside the structure.
A previously structured resume can be supplied with --prior to guide the parse.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			raw, err := ingestion.ReadText(resumePath)
			if err != nil {
				return fmt.Errorf("failed to read resume: %w", err)
			}

			var prior *types.StructuredResume
			if priorPath != "" {
				data, err := os.ReadFile(priorPath)
				if err != nil {
					return fmt.Errorf("failed to read prior structure: %w", err)
				}
				prior = &types.StructuredResume{}
				if err := json.Unmarshal(data, prior); err != nil {
					return fmt.Errorf("failed to parse prior structure: %w", err)
				}
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			rt, err := newRuntime(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := rt.structurer.Structure(ctx, raw, prior)
			if err != nil {
				return fmt.Errorf("failed to structure resume: %w", err)
			}
			if err := schemas.ValidateResume(&result.Resume); err != nil {
				return fmt.Errorf("structured resume failed schema validation: %w", err)
			}
			if verbose {
				observability.NewPrinter(cmd.ErrOrStderr()).PrintResume(&result.Resume, result.MissingSections)
			}

			missing := result.MissingSections
			if missing == nil {
				missing = []string{}
			}
			return writeJSON(cmd.OutOrStdout(), outPath, resumeOutput{
				Resume:            result.Resume,
				ParseIncomplete:   result.ParseIncomplete,
				MissingSections:   missing,
				StructuringFailed: result.Failed,
				FromCache:         result.FromCache,
			})
		},
	}

	cmd.Flags().StringVarP(&resumePath, "resume", "r", "", "Path to the resume text file")
	cmd.Flags().StringVar(&priorPath, "prior", "", "Path to a previously structured resume JSON")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the JSON result to this file instead of stdout")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print a readable summary to stderr")
	_ = cmd.MarkFlagRequired("resume")
	return cmd
}
