package telemetry

import "github.com/evosim/cellengine/world"

// Sample gathers a PopulationSample and live bond/gusset counts from w,
// for handing to Collector.Flush. Per-cell health is the mean of that
// cell's layer healths.
func Sample(w *world.World) (sample PopulationSample, bondCount, gussetCount int) {
	handles := w.Cells()
	sample.Energies = make([]float64, 0, len(handles))
	sample.Healths = make([]float64, 0, len(handles))
	sample.Radii = make([]float64, 0, len(handles))

	for _, h := range handles {
		c := w.Cell(h)
		sample.Energies = append(sample.Energies, c.Energy.Value)
		sample.Radii = append(sample.Radii, c.Radius().Value)

		layers := c.Layers()
		var healthSum float64
		for _, l := range layers {
			healthSum += l.Health()
		}
		if len(layers) > 0 {
			sample.Healths = append(sample.Healths, healthSum/float64(len(layers)))
		}
	}

	return sample, len(w.Bonds()), w.GussetCount()
}
