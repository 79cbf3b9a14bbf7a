// Package cli implements the specplan command line: it loads a schema file
// and a query document, then prints the resulting translation.
package cli

import (
	"fmt"
	"slices"

	"github.com/architeacher/queryspec/internal/config"
	"github.com/spf13/cobra"
)

type RootOptions struct {
	Schema string
	Format string
}

func NewRootCommand(cfg *config.ServiceConfig) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "specplan",
		Short:         "Translate query specifications",
		Long:          "Build a specification graph from a schema file and a YAML query document, then print its translation.",
		Version:       config.ServiceVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			if opts.Schema == "" {
				return fmt.Errorf("the --schema flag is required")
			}

			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.Schema, "schema", "s", "", "schema file (.yaml, .yml, .json or .cue)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (text|json)")

	cmd.AddCommand(NewSQLCommand(cfg, opts))
	cmd.AddCommand(NewInspectCommand(cfg, opts))

	return cmd
}
