package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-consolidator/internal/schemas"
)

func newValidateCmd() *cobra.Command {
	var (
		jsonPath   string
		schemaPath string
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a CV JSON file against the canonical schema",
		Long:  `Checks a JSON file against the embedded CanonicalCV schema, or against --schema when given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if schemaPath != "" {
				err = schemas.ValidateJSON(schemaPath, jsonPath)
			} else {
				err = schemas.ValidateCVFile(jsonPath)
			}
			if err != nil {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Validation failed")
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Validation passed")
			return nil
		},
	}
	cmd.Flags().StringVar(&jsonPath, "json", "", "Path to the JSON file")
	cmd.Flags().StringVar(&schemaPath, "schema", "", "Path to a JSON schema (defaults to the CanonicalCV schema)")
	_ = cmd.MarkFlagRequired("json")
	return cmd
}
