package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-fit/internal/ingestion"
	"github.com/jonathan/resume-fit/internal/observability"
	"github.com/jonathan/resume-fit/internal/pipeline"
	"github.com/jonathan/resume-fit/internal/types"
)

type jobFlags struct {
	path     string
	title    string
	company  string
	location string
	url      string
}

func (f *jobFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.path, "job", "j", "", "Path to the job posting text (plain text or HTML)")
	cmd.Flags().StringVar(&f.title, "title", "", "Job title")
	cmd.Flags().StringVar(&f.company, "company", "", "Company name")
	cmd.Flags().StringVar(&f.location, "location", "", "Job location")
	cmd.Flags().StringVar(&f.url, "url", "", "Source URL of the posting (metadata only, never fetched)")
	_ = cmd.MarkFlagRequired("job")
}

// posting reads the job description and attaches the metadata flags.
func (f *jobFlags) posting() (types.JobPosting, error) {
	description, err := ingestion.ReadText(f.path)
	if err != nil {
		return types.JobPosting{}, fmt.Errorf("failed to read job posting: %w", err)
	}
	job := types.JobPosting{
		Title:       f.title,
		Company:     f.company,
		Location:    f.location,
		URL:         f.url,
		Description: description,
	}
	if err := job.Validate(); err != nil {
		return types.JobPosting{}, fmt.Errorf("invalid job posting: %w", err)
	}
	return job, nil
}

func newAnalyzeCmd(opts *options) *cobra.Command {
	var (
		resumePath string
		outPath    string
		verbose    bool
		job        jobFlags
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze how well a resume fits a job posting",
		Long: `Runs the full analysis: structures the resume and extracts the posting's requirements
concurrently, matches requirements to resume bullets, scores the fit and generates edits.
The FitAnalysis JSON is written to --out or stdout.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			resumeText, err := ingestion.ReadText(resumePath)
			if err != nil {
				return fmt.Errorf("failed to read resume: %w", err)
			}
			posting, err := job.posting()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			rt, err := newRuntime(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			var onProgress pipeline.ProgressCallback
			printer := observability.NewPrinter(cmd.ErrOrStderr())
			if verbose {
				var mu sync.Mutex
				onProgress = func(e pipeline.ProgressEvent) {
					mu.Lock()
					defer mu.Unlock()
					printer.PrintProgress(e.Category, e.Step, e.Message)
				}
			}

			analysis, err := rt.analyzer.Analyze(ctx, types.AnalysisRequest{ResumeText: resumeText, Job: posting}, onProgress)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}
			if verbose {
				printer.PrintAnalysis(analysis)
			}
			return writeJSON(cmd.OutOrStdout(), outPath, analysis)
		},
	}

	cmd.Flags().StringVarP(&resumePath, "resume", "r", "", "Path to the resume text file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the JSON result to this file instead of stdout")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print progress and a readable summary to stderr")
	job.register(cmd)
	_ = cmd.MarkFlagRequired("resume")
	return cmd
}

// writeJSON writes v as indented JSON to path, or to stdout when path is empty.
func writeJSON(stdout io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "Wrote %s\n", path)
	return nil
}
