package telemetry

import "testing"

func TestCollectorShouldFlush(t *testing.T) {
	c := NewCollector(10, 0.1)
	if c.ShouldFlush(5) {
		t.Error("should not flush before window elapses")
	}
	if !c.ShouldFlush(10) {
		t.Error("should flush once the window elapses")
	}
}

func TestCollectorFlushResetsCounters(t *testing.T) {
	c := NewCollector(10, 0.1)
	c.RecordBirth()
	c.RecordBirth()
	c.RecordDeath()

	sample := PopulationSample{Energies: []float64{1, 2, 3}, Healths: []float64{1, 1}, Radii: []float64{0.5, 0.5}}
	stats := c.Flush(10, 2, 1, sample)

	if stats.Births != 2 {
		t.Errorf("Births = %d, want 2", stats.Births)
	}
	if stats.Deaths != 1 {
		t.Errorf("Deaths = %d, want 1", stats.Deaths)
	}
	if stats.CellCount != 3 {
		t.Errorf("CellCount = %d, want 3", stats.CellCount)
	}
	if stats.TotalEnergy != 6 {
		t.Errorf("TotalEnergy = %v, want 6", stats.TotalEnergy)
	}
	if stats.SimTimeSec != 1.0 {
		t.Errorf("SimTimeSec = %v, want 1.0", stats.SimTimeSec)
	}

	second := c.Flush(20, 0, 0, PopulationSample{})
	if second.Births != 0 || second.Deaths != 0 {
		t.Error("counters should reset after Flush")
	}
	if second.WindowStartTick != 10 {
		t.Errorf("WindowStartTick = %d, want 10", second.WindowStartTick)
	}
}

func TestNewCollectorClampsWindow(t *testing.T) {
	c := NewCollector(0, 0.1)
	if c.WindowDurationTicks() != 1 {
		t.Errorf("WindowDurationTicks = %d, want 1", c.WindowDurationTicks())
	}
}
