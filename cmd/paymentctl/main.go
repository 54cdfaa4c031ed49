package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wekeepgrowing/ticket-payment/internal/app"
	"github.com/wekeepgrowing/ticket-payment/internal/config"
	"github.com/wekeepgrowing/ticket-payment/pkg/logger"
	"go.uber.org/zap"
)

var configPath string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "paymentctl",
		Short:        "Operator tools for the ticket payment gateway",
		Long:         `paymentctl refunds charges, manages the Stripe gateway settings and follows payment events.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: $CONFIG_PATH or ./configs/payment.yaml)")

	rootCmd.AddCommand(
		newRefundCommand(),
		newRefundAllCommand(),
		newSettingsCommand(),
		newEventsCommand(),
		newTokenCommand(),
	)

	return rootCmd
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadConfigFile(configPath)
	}
	return config.LoadConfig()
}

// withContainer runs fn with a fully wired container. Logs go to stderr so
// that stdout stays machine readable.
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *app.Container) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Log.Output != "file" {
		cfg.Log.Output = "stderr"
	}
	zapLogger, err := logger.NewZapLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.NewContainer(ctx, cfg, zapLogger.With(zap.String("component", "paymentctl")))
	if err != nil {
		return err
	}
	defer container.Close()

	return fn(ctx, container)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
