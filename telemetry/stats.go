// Package telemetry aggregates per-tick world state into windowed
// statistics and writes them to CSV, mirroring pthm-soup's
// collector/stats/output split.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one stats window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	CellCount   int `csv:"cells"`
	BondCount   int `csv:"bonds"`
	GussetCount int `csv:"gussets"`

	Births int `csv:"births"`
	Deaths int `csv:"deaths"`

	TotalEnergy float64 `csv:"total_energy"`
	EnergyMean  float64 `csv:"energy_mean"`
	EnergyP10   float64 `csv:"energy_p10"`
	EnergyP50   float64 `csv:"energy_p50"`
	EnergyP90   float64 `csv:"energy_p90"`

	HealthMean float64 `csv:"health_mean"`
	HealthStd  float64 `csv:"health_std"`

	RadiusMean float64 `csv:"radius_mean"`
}

// Percentile calculates the p-th quantile (p in [0, 1]) of a sorted
// slice using gonum/stat's empirical quantile estimator. Returns 0 for
// an empty slice.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeEnergyStats calculates the mean and p10/p50/p90 of values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// ComputeHealthStats calculates the mean and sample standard deviation
// (n-1 denominator) of values.
func ComputeHealthStats(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean = stat.Mean(values, nil)
	if len(values) == 1 {
		return mean, 0
	}
	std = stat.StdDev(values, nil)
	return mean, std
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("cells", s.CellCount),
		slog.Int("bonds", s.BondCount),
		slog.Int("gussets", s.GussetCount),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Float64("total_energy", s.TotalEnergy),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
		slog.Float64("health_mean", s.HealthMean),
		slog.Float64("health_std", s.HealthStd),
		slog.Float64("radius_mean", s.RadiusMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "stats", s)
}
