package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-fit/internal/ingestion"
	"github.com/jonathan/resume-fit/internal/observability"
	"github.com/jonathan/resume-fit/internal/schemas"
	"github.com/jonathan/resume-fit/internal/types"
)

// requirementsOutput is the JSON written by extract-requirements.
type requirementsOutput struct {
	Requirements     []types.Requirement `json:"requirements"`
	ExtractionFailed bool                `json:"extraction_failed"`
	FromCache        bool                `json:"from_cache"`
	Discarded        int                 `json:"discarded"`
	Job              ingestion.Metadata  `json:"job"`
}

func newExtractRequirementsCmd(opts *options) *cobra.Command {
	var (
		outPath string
		verbose bool
		job     jobFlags
	)

	cmd := &cobra.Command{
		Use:   "extract-requirements",
		Short: "Extract categorized requirements from a job posting",
		Long: `Extracts the requirements of a job posting, each categorized as required, preferred or
nice to have, weighted by importance and typed. HTML postings are converted to text first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			posting, err := job.posting()
			if err != nil {
				return err
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

			result, err := rt.extractor.Extract(ctx, posting)
			if err != nil {
				return fmt.Errorf("failed to extract requirements: %w", err)
			}
			requirements := result.Requirements
			if requirements == nil {
				requirements = []types.Requirement{}
			}
			if err := schemas.ValidateRequirements(requirements); err != nil {
				return fmt.Errorf("requirements failed schema validation: %w", err)
			}
			if verbose {
				observability.NewPrinter(cmd.ErrOrStderr()).PrintRequirements(requirements)
			}

			return writeJSON(cmd.OutOrStdout(), outPath, requirementsOutput{
				Requirements:     requirements,
				ExtractionFailed: result.Failed,
				FromCache:        result.FromCache,
				Discarded:        result.Discarded,
				Job: ingestion.Describe(
					ingestion.PrepareJobText(posting.Description, cfg.PipelineSettings().JobBudget),
					job.path,
				),
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the JSON result to this file instead of stdout")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print a readable summary to stderr")
	job.register(cmd)
	return cmd
}
