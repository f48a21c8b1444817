package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/claimsight/claimsight/cmd/claimsight/cli"
	"github.com/claimsight/claimsight/internal/app"
)

func datasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Validate, fingerprint and publish dataset documents",
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a dataset document (the embedded one by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := datasetOptions(cmd)
			opts.JSONOutput, _ = cmd.Flags().GetBool("json")
			return exitWith(cli.NewDatasetCLI().ValidateCommand(cmd.Context(), opts))
		},
	}
	validateCmd.Flags().String("file", "", "path to a dataset JSON document")
	validateCmd.Flags().Bool("json", false, "print the result as JSON")
	cmd.AddCommand(validateCmd)

	checksumCmd := &cobra.Command{
		Use:   "checksum",
		Short: "Print the checksum of a dataset document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return exitWith(cli.NewDatasetCLI().ChecksumCommand(cmd.Context(), datasetOptions(cmd)))
		},
	}
	checksumCmd.Flags().String("file", "", "path to a dataset JSON document")
	cmd.AddCommand(checksumCmd)

	publishCmd := &cobra.Command{
		Use:   "publish",
		Short: "Store a dataset document as a Postgres snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd.Context(), datasetOptions(cmd))
		},
	}
	publishCmd.Flags().String("file", "", "path to a dataset JSON document")
	publishCmd.Flags().String("name", "", "snapshot name (defaults to DATASET_SNAPSHOT)")
	cmd.AddCommand(publishCmd)

	return cmd
}

func datasetOptions(cmd *cobra.Command) cli.DatasetOptions {
	opts := cli.DatasetOptions{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()}
	opts.File, _ = cmd.Flags().GetString("file")
	if cmd.Flags().Lookup("name") != nil {
		opts.Name, _ = cmd.Flags().GetString("name")
	}
	return opts
}

func runPublish(ctx context.Context, opts cli.DatasetOptions) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg)
	if opts.Name == "" {
		opts.Name = cfg.DatasetSnapshot
	}
	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.close(logger)

	var publisher cli.Publisher
	if b.pool != nil {
		publisher = snapshotPublisher{pool: b.pool, cache: b.cache}
	}
	code := cli.NewDatasetCLI().PublishCommand(ctx, publisher, opts)
	if code == cli.ExitOK {
		logger.Info("dataset published", slog.String("snapshot", opts.Name))
	}
	return exitWith(code)
}
