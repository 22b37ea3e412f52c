// Package detect classifies trip fixes as stopped or moving using
// stay-point detection: a run of consecutive fixes that remains within a
// distance threshold of its anchor fix for at least a minimum duration is
// a stop cluster.
package detect

import (
	"errors"
	"time"

	"trip-replay/internal/trip"
)

var (
	// ErrNoPoints is returned when Classify is given an empty sequence.
	ErrNoPoints = errors.New("detect: no points")
	// ErrUnorderedInput is returned when timestamps regress. trip.Load
	// already rejects such input, so hitting this is a caller bug.
	ErrUnorderedInput = errors.New("detect: points not time-ordered")
)

// Detector holds the stay-point thresholds. Both are supplied by the
// caller; see config for the recognized defaults.
type Detector struct {
	DistanceThreshold float64 // meters from the cluster anchor
	MinDuration       time.Duration
}

// Cluster describes one detected stay: the inclusive index range of the
// fixes it covers and the anchor position the distance test ran against.
type Cluster struct {
	First, Last int
	AnchorLat   float64
	AnchorLon   float64
	Start, End  time.Time
	Points      int
}

// Duration returns the time span covered by the cluster.
func (c Cluster) Duration() time.Duration { return c.End.Sub(c.Start) }

// Classify scans the sequence left to right. From each anchor p[i] it
// grows a window [i,j] while every fix stays within DistanceThreshold of
// the anchor. If the window spans at least MinDuration, all of it is
// marked stopped and the scan resumes at j+1; otherwise p[i] alone is
// marked moving and the scan advances by one. The input slice is never
// modified; a classified copy and the detected clusters are returned.
func (d Detector) Classify(points []trip.Point) ([]trip.Point, []Cluster, error) {
	if len(points) == 0 {
		return nil, nil, ErrNoPoints
	}
	for i := 1; i < len(points); i++ {
		if points[i].Time.Before(points[i-1].Time) {
			return nil, nil, ErrUnorderedInput
		}
	}

	out := make([]trip.Point, len(points))
	copy(out, points)
	for i := range out {
		out[i].Stop = false
	}

	var clusters []Cluster
	i := 0
	for i < len(out) {
		anchor := out[i]
		j := i
		for j+1 < len(out) && trip.Haversine(anchor.Lat, anchor.Lon, out[j+1].Lat, out[j+1].Lon) <= d.DistanceThreshold {
			j++
		}
		if out[j].Time.Sub(anchor.Time) >= d.MinDuration {
			for k := i; k <= j; k++ {
				out[k].Stop = true
			}
			clusters = append(clusters, Cluster{
				First:     i,
				Last:      j,
				AnchorLat: anchor.Lat,
				AnchorLon: anchor.Lon,
				Start:     anchor.Time,
				End:       out[j].Time,
				Points:    j - i + 1,
			})
			i = j + 1
			continue
		}
		i++
	}
	return out, clusters, nil
}
