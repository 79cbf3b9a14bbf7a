package cli

import (
	"context"
	"fmt"

	"github.com/architeacher/queryspec/internal/config"
	"github.com/architeacher/queryspec/pkg/fingerprint"
	"github.com/architeacher/queryspec/pkg/translator/jsontree"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type InspectResult struct {
	Fingerprint string          `json:"fingerprint"`
	Graph       json.RawMessage `json:"graph"`
}

func NewInspectCommand(cfg *config.ServiceConfig, root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <query-file>",
		Short: "Print the specification graph built from a query document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, cfg, root, args[0])
		},
	}
}

func runInspect(cmd *cobra.Command, cfg *config.ServiceConfig, root *RootOptions, queryPath string) error {
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

	indent := "  "
	if root.Format == FormatJSON {
		indent = ""
	}

	tree, err := decorate[[]byte](rt, jsontree.New(jsontree.WithIndent(indent))).Translate(ctx, graph)
	if err != nil {
		return WrapExitError(ExitFailure, "translation failed", err)
	}

	fp, err := fingerprint.Of(graph)
	if err != nil {
		return WrapExitError(ExitFailure, "fingerprint failed", err)
	}

	if root.Format == FormatJSON {
		return writeJSON(cmd.OutOrStdout(), InspectResult{Fingerprint: fp, Graph: tree})
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "# fingerprint: %s\n%s\n", fp, tree)

	return err
}
