package genome

import "math"

// boxMuller converts two independent uniform(0,1) draws into one
// standard-normal sample.
func boxMuller(u1, u2 float64) float64 {
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
