package telemetry

// Collector accumulates birth/death counts within a tick window and
// produces a WindowStats when flushed, the way pthm-soup's Collector
// accumulates hunting/reproduction events between samples.
type Collector struct {
	windowDurationTicks int64
	dt                  float64

	windowStartTick int64
	births          int
	deaths          int
}

// NewCollector creates a collector that flushes every windowDurationTicks
// ticks. dt is the simulated seconds per tick, used only to convert tick
// counts into a simulated-time column.
func NewCollector(windowDurationTicks int64, dt float64) *Collector {
	if windowDurationTicks < 1 {
		windowDurationTicks = 1
	}
	return &Collector{windowDurationTicks: windowDurationTicks, dt: dt}
}

// RecordBirth records a budding event.
func (c *Collector) RecordBirth() { c.births++ }

// RecordDeath records a cell death.
func (c *Collector) RecordDeath() { c.deaths++ }

// ShouldFlush reports whether enough ticks have passed since the last
// flush to close out the current window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// PopulationSample is the per-cell data the caller gathers from the
// world at flush time.
type PopulationSample struct {
	Energies []float64
	Healths  []float64
	Radii    []float64
}

// Flush produces a WindowStats from the current counters and the given
// population sample, then resets the counters for the next window.
func (c *Collector) Flush(currentTick int64, bondCount, gussetCount int, sample PopulationSample) WindowStats {
	energyMean, energyP10, energyP50, energyP90 := ComputeEnergyStats(sample.Energies)
	healthMean, healthStd := ComputeHealthStats(sample.Healths)
	radiusMean, _ := ComputeHealthStats(sample.Radii)

	var totalEnergy float64
	for _, e := range sample.Energies {
		totalEnergy += e
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		CellCount:   len(sample.Energies),
		BondCount:   bondCount,
		GussetCount: gussetCount,

		Births: c.births,
		Deaths: c.deaths,

		TotalEnergy: totalEnergy,
		EnergyMean:  energyMean,
		EnergyP10:   energyP10,
		EnergyP50:   energyP50,
		EnergyP90:   energyP90,

		HealthMean: healthMean,
		HealthStd:  healthStd,

		RadiusMean: radiusMean,
	}

	c.windowStartTick = currentTick
	c.births = 0
	c.deaths = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 { return c.windowDurationTicks }
