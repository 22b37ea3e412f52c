package trip_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trip-replay/internal/trip"
)

func mkRecords(n int, lat, lon float64) []trip.Record {
	base := time.Date(2023, time.April, 2, 9, 0, 0, 0, time.UTC)
	recs := make([]trip.Record, n)
	for i := range recs {
		recs[i] = trip.Record{Time: base.Add(time.Duration(i) * time.Minute), Lat: lat, Lon: lon}
	}
	return recs
}

func TestLoadRejectsBadInput(t *testing.T) {
	base := time.Date(2023, time.April, 2, 9, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		records []trip.Record
	}{
		"empty": {records: nil},
		"lat_too_big": {records: []trip.Record{
			{Time: base, Lat: 90.5, Lon: 0},
		}},
		"lat_too_small": {records: []trip.Record{
			{Time: base, Lat: -91, Lon: 0},
		}},
		"lon_too_big": {records: []trip.Record{
			{Time: base, Lat: 0, Lon: 180.1},
		}},
		"lon_too_small": {records: []trip.Record{
			{Time: base, Lat: 0, Lon: -181},
		}},
		"time_regression": {records: []trip.Record{
			{Time: base.Add(time.Minute), Lat: 34, Lon: -106},
			{Time: base, Lat: 34, Lon: -106},
		}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			tr, err := trip.Load(tc.records)
			require.Nil(tr)
			var ingErr *trip.IngestionError
			require.ErrorAs(err, &ingErr)
		})
	}
}

func TestLoadAcceptsEqualTimestamps(t *testing.T) {
	require := require.New(t)
	base := time.Date(2023, time.April, 2, 9, 0, 0, 0, time.UTC)
	tr, err := trip.Load([]trip.Record{
		{Time: base, Lat: 34, Lon: -106},
		{Time: base, Lat: 34.001, Lon: -106.001},
	})
	require.NoError(err)
	require.Equal(2, tr.Len())
}

func TestViews(t *testing.T) {
	require := require.New(t)
	tr, err := trip.Load(mkRecords(5, 34, -106))
	require.NoError(err)

	full := tr.Full()
	require.Len(full, 5)
	for _, p := range full {
		require.False(p.Stop)
	}
	// Before classification moving == full
	require.Len(tr.Moving(), 5)

	full[1].Stop = true
	full[2].Stop = true
	tr.Replace(full)
	require.Len(tr.Full(), 5)
	moving := tr.Moving()
	require.Len(moving, 3)
	// Order preserved
	require.True(moving[0].Time.Before(moving[1].Time))
	require.True(moving[1].Time.Before(moving[2].Time))
}

func TestHaversine(t *testing.T) {
	require := require.New(t)
	// Zero distance
	require.Equal(0.0, trip.Haversine(34, -106, 34, -106))
	// One degree of latitude is about 111.2 km
	d := trip.Haversine(34, -106, 35, -106)
	require.InDelta(111195, d, 200)
	// Symmetric
	require.InDelta(d, trip.Haversine(35, -106, 34, -106), 0.001)
}

func TestHeading(t *testing.T) {
	tests := map[string]struct {
		from, to trip.Point
		want     float64
	}{
		"due_east":  {from: trip.Point{Lat: 0, Lon: 0}, to: trip.Point{Lat: 0, Lon: 1}, want: 0},
		"due_north": {from: trip.Point{Lat: 0, Lon: 0}, to: trip.Point{Lat: 1, Lon: 0}, want: 90},
		"due_west":  {from: trip.Point{Lat: 0, Lon: 0}, to: trip.Point{Lat: 0, Lon: -1}, want: 180},
		"due_south": {from: trip.Point{Lat: 0, Lon: 0}, to: trip.Point{Lat: -1, Lon: 0}, want: 270},
		"northeast": {from: trip.Point{Lat: 0, Lon: 0}, to: trip.Point{Lat: 1, Lon: 1}, want: 45},
		"zero_delta": {from: trip.Point{Lat: 34, Lon: -106}, to: trip.Point{Lat: 34, Lon: -106}, want: 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			got := trip.Heading(tc.from, tc.to)
			require.InDelta(tc.want, got, 1e-9)
			require.GreaterOrEqual(got, 0.0)
			require.Less(got, 360.0)
		})
	}
}
