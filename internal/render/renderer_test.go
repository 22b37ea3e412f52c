package render_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"trip-replay/internal/playback"
	"trip-replay/internal/render"
)

type fakeRenderer struct {
	next     render.MarkerID
	live     map[render.MarkerID][2]float64
	segments [][4]float64
	headings []float64
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{live: make(map[render.MarkerID][2]float64)}
}

func (f *fakeRenderer) AddMarker(lat, lon, heading float64) (render.MarkerID, error) {
	f.next++
	f.live[f.next] = [2]float64{lat, lon}
	f.headings = append(f.headings, heading)
	return f.next, nil
}

func (f *fakeRenderer) RemoveMarker(id render.MarkerID) error {
	delete(f.live, id)
	return nil
}

func (f *fakeRenderer) AddTrailSegment(aLat, aLon, bLat, bLon float64) error {
	f.segments = append(f.segments, [4]float64{aLat, aLon, bLat, bLon})
	return nil
}

func event(i, total int, lat, lon, heading float64) playback.Event {
	return playback.Event{Index: i, Total: total, Lat: lat, Lon: lon, Heading: heading, First: i == 0}
}

func TestTrailDriverSingleMarkerInvariant(t *testing.T) {
	require := require.New(t)
	fr := newFakeRenderer()
	d := render.NewTrailDriver(fr)

	coords := [][2]float64{{34.0, -106.0}, {34.1, -106.1}, {34.2, -106.0}, {34.3, -105.9}}
	for i, c := range coords {
		require.NoError(d.Emit(event(i, len(coords), c[0], c[1], float64(i)*10)))
		// After every event exactly one marker is visible.
		require.Len(fr.live, 1)
		// Trail segments accumulate, one per event after the first.
		require.Len(fr.segments, i)
	}

	// The surviving marker is the last position.
	for _, pos := range fr.live {
		require.Equal([2]float64{34.3, -105.9}, pos)
	}
	// Each segment connects an event position to its predecessor.
	require.Equal([4]float64{34.1, -106.1, 34.0, -106.0}, fr.segments[0])
}

func TestTrailDriverFreshRunClearsStaleMarker(t *testing.T) {
	require := require.New(t)
	fr := newFakeRenderer()
	d := render.NewTrailDriver(fr)

	// A cancelled run leaves its marker behind.
	require.NoError(d.Emit(event(0, 2, 34.0, -106.0, 0)))
	require.Len(fr.live, 1)

	// The next run's First event replaces it; never two markers at once.
	require.NoError(d.Emit(event(0, 3, 35.0, -107.0, 0)))
	require.Len(fr.live, 1)
	for _, pos := range fr.live {
		require.Equal([2]float64{35.0, -107.0}, pos)
	}
	// No trail between runs.
	require.Empty(fr.segments)
}
