package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-fit/internal/schemas"
	schemafiles "github.com/jonathan/resume-fit/schemas"
)

// schemaNames maps the --schema flag values to embedded schema files.
var schemaNames = map[string]string{
	"fit_analysis":      schemafiles.FitAnalysis,
	"requirements":      schemafiles.Requirements,
	"structured_resume": schemafiles.StructuredResume,
}

func newValidateCmd() *cobra.Command {
	var (
		schemaName string
		jsonPath   string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a JSON file against a published schema",
		Long:  "Validate a FitAnalysis, requirements or structured resume JSON file against its embedded JSON Schema.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, ok := schemaNames[schemaName]
			if !ok {
				return fmt.Errorf("unknown schema %q (want fit_analysis, requirements or structured_resume)", schemaName)
			}

			if err := schemas.ValidateFile(file, jsonPath); err != nil {
				var validationErr *schemas.ValidationError
				if errors.As(err, &validationErr) {
					var sb strings.Builder
					sb.WriteString("Validation failed:\n")
					for _, fieldErr := range validationErr.Errors {
						sb.WriteString(fmt.Sprintf("  - %s: %s\n", fieldErr.Field, fieldErr.Message))
					}
					_, _ = fmt.Fprint(cmd.ErrOrStderr(), sb.String())
					return fmt.Errorf("%s does not conform to %s", jsonPath, file)
				}
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Validation passed: %s conforms to %s\n", jsonPath, file)
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaName, "schema", "fit_analysis", "Schema to validate against: fit_analysis, requirements or structured_resume")
	cmd.Flags().StringVarP(&jsonPath, "file", "f", "", "Path to the JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
