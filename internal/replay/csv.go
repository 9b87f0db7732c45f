package replay

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"
)

// WriteLedgerCSV writes the ledger to path, replacing any existing file.
func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteLedger(f, ledger); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteLedger writes the ledger as CSV with a header row.
func WriteLedger(out io.Writer, ledger []LedgerRow) error {
	w := csv.NewWriter(out)

	header := []string{
		"index",
		"timestamp",
		"delta_ms",
		"grid_kw",
		"solar_kw",
		"battery_kw",
		"load_kw",
		"mode",
		"soc_start",
		"soc_end",
		"tariff_type",
		"rate",
		"grid_cost",
		"energy_today_kwh",
		"peak_power_today_kw",
		"cost_savings",
		"carbon_avoided_kg",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Index),
			fmtTime(r.Timestamp),
			fmtFloat(r.DeltaMS),
			fmtFloat(r.GridKW),
			fmtFloat(r.SolarKW),
			fmtFloat(r.BatteryKW),
			fmtFloat(r.LoadKW),
			string(r.Mode),
			fmtFloat(r.SOCStart),
			fmtFloat(r.SOCEnd),
			string(r.TariffType),
			fmtFloat(r.Rate),
			fmtFloat(r.GridCost),
			fmtFloat(r.EnergyToday),
			fmtFloat(r.PeakPowerToday),
			fmtFloat(r.CostSavings),
			fmtFloat(r.CarbonAvoided),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
