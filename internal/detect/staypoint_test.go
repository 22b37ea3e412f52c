package detect_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trip-replay/internal/detect"
	"trip-replay/internal/trip"
)

var base = time.Date(2023, time.April, 2, 9, 0, 0, 0, time.UTC)

func pt(sec int, lat, lon float64) trip.Point {
	return trip.Point{Time: base.Add(time.Duration(sec) * time.Second), Lat: lat, Lon: lon}
}

func defaultDetector() detect.Detector {
	return detect.Detector{DistanceThreshold: 50, MinDuration: 60 * time.Second}
}

func TestClassifyStationaryThenJump(t *testing.T) {
	require := require.New(t)
	points := []trip.Point{
		pt(0, 34.0, -106.0),
		pt(30, 34.0, -106.0),
		pt(60, 34.0, -106.0),
		pt(90, 34.1, -106.1),
	}

	out, clusters, err := defaultDetector().Classify(points)
	require.NoError(err)
	require.Len(out, 4)
	require.True(out[0].Stop)
	require.True(out[1].Stop)
	require.True(out[2].Stop)
	require.False(out[3].Stop)

	require.Len(clusters, 1)
	c := clusters[0]
	require.Equal(0, c.First)
	require.Equal(2, c.Last)
	require.Equal(3, c.Points)
	require.Equal(60*time.Second, c.Duration())

	// Input untouched
	for _, p := range points {
		require.False(p.Stop)
	}
}

func TestClassifySinglePointIsMoving(t *testing.T) {
	require := require.New(t)
	out, clusters, err := defaultDetector().Classify([]trip.Point{pt(0, 34, -106)})
	require.NoError(err)
	require.Len(out, 1)
	require.False(out[0].Stop)
	require.Empty(clusters)
}

func TestClassifyShortDwellStaysMoving(t *testing.T) {
	require := require.New(t)
	// Within distance but only 30s of dwell: too short to be a stop.
	points := []trip.Point{
		pt(0, 34.0, -106.0),
		pt(30, 34.0, -106.0),
		pt(60, 34.1, -106.1),
	}
	out, clusters, err := defaultDetector().Classify(points)
	require.NoError(err)
	for _, p := range out {
		require.False(p.Stop)
	}
	require.Empty(clusters)
}

func TestClassifyClusterProperties(t *testing.T) {
	require := require.New(t)
	d := defaultDetector()
	// Two stays separated by a drive.
	points := []trip.Point{
		pt(0, 34.0000, -106.0000),
		pt(40, 34.0001, -106.0001),
		pt(80, 34.0002, -106.0000),
		pt(100, 34.5, -106.5),
		pt(110, 34.7, -106.7),
		pt(120, 35.0, -107.0),
		pt(140, 35.0001, -107.0001),
		pt(220, 35.0002, -107.0000),
	}
	out, clusters, err := d.Classify(points)
	require.NoError(err)
	require.Len(clusters, 2)

	prevLast := -1
	for _, c := range clusters {
		// Clusters never overlap and come in index order.
		require.Greater(c.First, prevLast)
		prevLast = c.Last
		// Every member is within the threshold of the anchor and marked.
		for k := c.First; k <= c.Last; k++ {
			require.True(out[k].Stop)
			require.LessOrEqual(trip.Haversine(c.AnchorLat, c.AnchorLon, out[k].Lat, out[k].Lon), d.DistanceThreshold)
		}
		require.GreaterOrEqual(c.Duration(), d.MinDuration)
	}
	// The drive points stay moving.
	require.False(out[3].Stop)
	require.False(out[4].Stop)
	require.Equal([2]int{0, 2}, [2]int{clusters[0].First, clusters[0].Last})
	require.Equal([2]int{5, 7}, [2]int{clusters[1].First, clusters[1].Last})
}

func TestClassifyIdempotent(t *testing.T) {
	require := require.New(t)
	points := []trip.Point{
		pt(0, 34.0, -106.0),
		pt(30, 34.0, -106.0),
		pt(60, 34.0, -106.0),
		pt(90, 34.1, -106.1),
	}
	d := defaultDetector()
	first, _, err := d.Classify(points)
	require.NoError(err)
	// Re-run on the already-classified output: existing flags are ignored.
	second, _, err := d.Classify(first)
	require.NoError(err)
	require.Equal(first, second)
}

func TestClassifyPreconditions(t *testing.T) {
	require := require.New(t)
	d := defaultDetector()

	_, _, err := d.Classify(nil)
	require.ErrorIs(err, detect.ErrNoPoints)

	_, _, err = d.Classify([]trip.Point{pt(60, 34, -106), pt(0, 34, -106)})
	require.ErrorIs(err, detect.ErrUnorderedInput)
}
