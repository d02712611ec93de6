package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/legislation-tracker/internal/logging"
)

// newGenerateCmd creates the 'generate' subcommand, the tracker's one-shot run.
func newGenerateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Collects bills and writes the site and snapshot",
		Args:  cobra.NoArgs,
		RunE:  runGenerateCommand,
	}
	addRunFlags(cmd, opts)
	return cmd
}

func runGenerateCommand(cmd *cobra.Command, _ []string) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	runID, err := a.NewRunID()
	if err != nil {
		return err
	}
	logger := logging.ForRun(a.Logger(), runID)

	jurisdictions, err := a.Jurisdictions()
	if err != nil {
		return err
	}
	p, err := a.Pipeline(logger)
	if err != nil {
		return err
	}

	res, err := p.Run(cmd.Context(), runID, jurisdictions)
	if err != nil {
		logger.Error("run failed", zap.Error(err))
		return fmt.Errorf("run %s: %w", runID, err)
	}

	if a.DryRun() {
		fmt.Fprintln(cmd.OutOrStdout(), "dry run: nothing was published")
	}
	for _, uri := range res.Artifacts.URIs {
		fmt.Fprintln(cmd.OutOrStdout(), uri)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d bills across %d jurisdictions (%d active, %d analyzed)\n",
		res.Stats.Total, res.Stats.JurisdictionCount, res.Stats.ActiveCount, res.Stats.AnalyzedCount)
	return nil
}
