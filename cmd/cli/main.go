package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"ems-mock/internal/analysis"
	"ems-mock/internal/config"
	"ems-mock/internal/logger"
	"ems-mock/internal/model"
	"ems-mock/internal/replay"
)

type replayFlags struct {
	config string
	start  string
	step   time.Duration
	steps  int
}

func (f *replayFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "Path to YAML/JSON config (defaults when empty)")
	cmd.Flags().StringVar(&f.start, "start", "", "Start time, RFC3339 (default: today 00:00 local)")
	cmd.Flags().DurationVar(&f.step, "step", 15*time.Minute, "Simulated time between steps")
	cmd.Flags().IntVar(&f.steps, "steps", 96, "Number of steps")
}

func (f *replayFlags) run() (*replay.Result, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.SetLevel(cfg.Log.Level)

	start, err := parseStart(f.start, time.Now())
	if err != nil {
		return nil, err
	}
	tariff, err := cfg.Tariff.ToSchedule()
	if err != nil {
		return nil, err
	}

	return replay.New(logger.New("replay")).Run(replay.Options{
		Start:    start,
		Step:     f.step,
		Steps:    f.steps,
		Settings: cfg.Simulation.ToSimulationSettings(),
		Tariff:   tariff,
	})
}

// parseStart defaults to local midnight of now.
func parseStart(s string, now time.Time) (time.Time, error) {
	if s == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --start %q: %w", s, err)
	}
	return t, nil
}

func newSimulateCmd() *cobra.Command {
	var (
		flags   replayFlags
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay the simulation headless and write the step ledger as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := flags.run()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return err
			}
			if err := replay.WriteLedgerCSV(outPath, res.Ledger); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %d rows to %s\n", len(res.Ledger), outPath)
			fmt.Fprintf(out, "Energy=%.2f kWh Peak=%.2f kW Savings=%.2f Carbon=%.2f kg\n",
				res.EnergyKWh, res.PeakPowerKW, res.CostSavings, res.CarbonAvoidedKG)
			fmt.Fprintf(out, "Grid import=%.2f kWh export=%.2f kWh cost=%.2f Final SOC=%.3f\n",
				res.GridImportKWh, res.GridExportKWh, res.GridCost, res.FinalSOC)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&outPath, "out", "results/replay.csv", "Output CSV path")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	var flags replayFlags
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Replay the simulation and print per-series statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := flags.run()
			if err != nil {
				return err
			}
			printSummary(cmd, res)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func printSummary(cmd *cobra.Command, res *replay.Result) {
	series := map[string][]float64{}
	for _, r := range res.Ledger {
		series[string(model.SeriesGrid)] = append(series[string(model.SeriesGrid)], r.GridKW)
		series[string(model.SeriesSolar)] = append(series[string(model.SeriesSolar)], r.SolarKW)
		series[string(model.SeriesBattery)] = append(series[string(model.SeriesBattery)], r.BatteryKW)
		series[string(model.SeriesLoad)] = append(series[string(model.SeriesLoad)], r.LoadKW)
		series["soc"] = append(series["soc"], r.SOCEnd)
		series["rate"] = append(series["rate"], r.Rate)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-8s %-6s %-9s %-9s %-9s %-9s %-9s\n", "series", "count", "min", "max", "mean", "stddev", "p95-p05")
	for _, name := range []string{
		string(model.SeriesGrid), string(model.SeriesSolar), string(model.SeriesBattery),
		string(model.SeriesLoad), "soc", "rate",
	} {
		s := analysis.ComputeStats(series[name])
		fmt.Fprintf(out, "%-8s %-6d %-9.2f %-9.2f %-9.2f %-9.2f %-9.2f\n",
			name, s.Count, s.Min, s.Max, s.Mean, s.StdDev, s.Spread)
	}
}

func main() {
	root := &cobra.Command{
		Use:          "ems-cli",
		Short:        "Headless tools for the mock EMS simulation",
		SilenceUsage: true,
	}
	root.AddCommand(newSimulateCmd(), newSummaryCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
