package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mohammadpnp/outreach-import/internal/bootstrap"
	"github.com/mohammadpnp/outreach-import/internal/config"
	"github.com/mohammadpnp/outreach-import/internal/logging"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "importctl",
		Short:        "Create and drive outreach import jobs",
		SilenceUsage: true,
	}
	cmd.AddCommand(newCreateCmd(), newAdvanceCmd(), newRunCmd(), newMigrateCmd())
	return cmd
}

func openContainer(ctx context.Context) (*bootstrap.Container, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewWithWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	c, err := bootstrap.NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return c, logger, nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
