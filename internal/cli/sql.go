package cli

import (
	"context"
	"fmt"

	"github.com/architeacher/queryspec/internal/config"
	"github.com/architeacher/queryspec/pkg/fingerprint"
	"github.com/architeacher/queryspec/pkg/translator/sqlbuilder"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type (
	SQLOptions struct {
		Placeholder string
		Quote       bool
	}

	SQLResult struct {
		SQL         string `json:"sql"`
		Args        []any  `json:"args"`
		Fingerprint string `json:"fingerprint"`
	}
)

func NewSQLCommand(cfg *config.ServiceConfig, root *RootOptions) *cobra.Command {
	opts := &SQLOptions{}

	cmd := &cobra.Command{
		Use:   "sql <query-file>",
		Short: "Translate a query document into a parameterized SELECT statement",
		Example: `  specplan sql --schema schemas.yaml query.yaml
  specplan sql -s schemas.cue --placeholder question --format json query.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(cmd, cfg, root, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Placeholder, "placeholder", cfg.Translation.Placeholder,
		"placeholder format (dollar|question|colon|at)")
	cmd.Flags().BoolVar(&opts.Quote, "quote", cfg.Translation.QuoteIdentifiers, "quote identifiers")

	return cmd
}

func runSQL(cmd *cobra.Command, cfg *config.ServiceConfig, root *RootOptions, opts *SQLOptions, queryPath string) error {
	placeholder, err := sqlbuilder.PlaceholderByName(opts.Placeholder)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --placeholder", err)
	}

	rt, err := newRuntime(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	defer rt.close(ctx)

	graph, err := rt.graph(root.Schema, queryPath)
	if err != nil {
		return err
	}

	t := decorate[sqlbuilder.Query](rt, sqlbuilder.New(
		sqlbuilder.WithLogger(rt.log),
		sqlbuilder.WithPlaceholder(placeholder),
		sqlbuilder.WithQuotedIdentifiers(opts.Quote),
	))

	query, err := t.Translate(ctx, graph)
	if err != nil {
		return WrapExitError(ExitFailure, "translation failed", err)
	}

	fp, err := fingerprint.Of(graph)
	if err != nil {
		return WrapExitError(ExitFailure, "fingerprint failed", err)
	}

	result := SQLResult{SQL: query.SQL, Args: query.Args, Fingerprint: fp}

	if root.Format == FormatJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}

	return writeSQLText(cmd, result)
}

func writeSQLText(cmd *cobra.Command, result SQLResult) error {
	args, err := json.Marshal(result.Args)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to encode arguments", err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s;\n-- args: %s\n-- fingerprint: %s\n", result.SQL, args, result.Fingerprint)

	return err
}
