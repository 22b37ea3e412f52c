package trip

import "time"

// Record is one raw fix as produced by the ingest layer, before validation.
type Record struct {
	Time time.Time
	Lat  float64
	Lon  float64
}

// Point is one validated GPS fix. Stop is written only by the detector,
// which returns a fresh slice rather than flipping flags on a shared one.
type Point struct {
	Time time.Time
	Lat  float64
	Lon  float64
	Stop bool
}

// Trip holds the ordered fix sequence for one loaded trip log.
type Trip struct {
	points []Point
}

// Len returns the number of fixes in the trip.
func (t *Trip) Len() int { return len(t.points) }

// Full returns every point in original order.
func (t *Trip) Full() []Point {
	out := make([]Point, len(t.points))
	copy(out, t.points)
	return out
}

// Moving returns the points not classified as stops, in original order.
// The result may have fewer than 2 points; playback handles that case.
func (t *Trip) Moving() []Point {
	var out []Point
	for _, p := range t.points {
		if !p.Stop {
			out = append(out, p)
		}
	}
	return out
}

// Replace swaps in a classified copy of the sequence. It is called once,
// after detection and before any playback run starts.
func (t *Trip) Replace(points []Point) {
	t.points = points
}

// Start returns the timestamp of the first fix.
func (t *Trip) Start() time.Time { return t.points[0].Time }

// End returns the timestamp of the last fix.
func (t *Trip) End() time.Time { return t.points[len(t.points)-1].Time }
