package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ems-mock/internal/app"
	"ems-mock/internal/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "ems-api",
	Short: "Mock energy management system API",
	Long: "ems-api serves simulated live telemetry, KPIs, charts, analytics, alerts, " +
		"tariff, weather and site views over HTTP.",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (YAML or JSON); EMS_* env vars override it")
}

func run(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	svc, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		return err
	}
	defer svc.Close()

	return svc.Run(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
