package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/indexwatch/internal/config"
	"github.com/kailas-cloud/indexwatch/internal/version"
)

// rootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands are registered here.
func rootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:   "indexwatch",
		Short: "indexwatch verifies what backup jobs left in a Solr index.",
		Long: `indexwatch builds select queries from filter expressions, counts and pages
documents, waits for a job's indexed item count to settle, checks that every item
of a job was played and validates retention of deleted items.

Filter expressions:
  JobId=100               field match
  Type=1,2                any of the values
  Title|Body=report       any of the fields
  keyword=JobId:100 OR x  raw query, every other expression is ignored`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.env, "env", config.GetEnv(), "environment: local, dev, ci or prod")
	flags.StringVar(&opts.configPath, "config", "", "config file (default config/<env>.yaml)")
	flags.StringVar(&opts.coreURL, "core-url", "", "core URL, overrides solr.core_url")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	cmd.AddCommand(
		queryCmd(opts),
		countCmd(opts),
		docsCmd(opts),
		fieldsCmd(opts),
		updateCmd(opts),
		waitCmd(opts),
		playedCmd(opts),
		ageCmd(opts),
		retentionCmd(opts),
		historyCmd(opts),
		healthCmd(opts),
		serveCmd(opts),
		versionCmd(),
	)
	return cmd
}

// run wires an app for one command and releases it afterwards.
func run(cmd *cobra.Command, opts *globalOptions, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printLine(cmd.OutOrStdout(), version.String())
		},
	}
}

func printLine(w io.Writer, s string) error {
	if _, err := fmt.Fprintln(w, s); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
