// Package playback turns a classified point sequence into a paced stream
// of render events and guards the at-most-one-live-run invariant.
package playback

import (
	"context"
	"errors"
	"time"

	"trip-replay/internal/trip"
)

var (
	// ErrNegativeDuration rejects playback with totalSeconds < 0 before
	// any event is emitted.
	ErrNegativeDuration = errors.New("playback: negative duration")
	// ErrNoPoints rejects playback over an empty sequence.
	ErrNoPoints = errors.New("playback: no points")
)

// Event is one playback step. Heading is degrees in [0,360); it is 0 on
// the first event, which carries First=true so the renderer draws the
// unrotated icon.
type Event struct {
	Index   int     `json:"index"`
	Total   int     `json:"total"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Heading float64 `json:"heading"`
	First   bool    `json:"first"`
	Stop    bool    `json:"stop"`
}

// Delay returns the constant inter-event delay for a run: totalSeconds
// spread uniformly over the points, regardless of the original recording
// cadence. Zero totalSeconds means emit back-to-back.
func Delay(totalSeconds, points int) time.Duration {
	if points == 0 {
		return 0
	}
	return time.Duration(totalSeconds*1000/points) * time.Millisecond
}

// Schedule starts a producer goroutine that emits one Event per point in
// strictly increasing index order, waiting Delay between consecutive
// events. The channel is closed when the run completes or ctx is
// cancelled; nothing is emitted after cancellation.
func Schedule(ctx context.Context, points []trip.Point, totalSeconds int) (<-chan Event, error) {
	if totalSeconds < 0 {
		return nil, ErrNegativeDuration
	}
	if len(points) == 0 {
		return nil, ErrNoPoints
	}

	delay := Delay(totalSeconds, len(points))
	ch := make(chan Event)
	go func() {
		defer close(ch)
		for i, p := range points {
			if i > 0 && delay > 0 {
				t := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					t.Stop()
					return
				case <-t.C:
				}
			}
			ev := Event{
				Index: i,
				Total: len(points),
				Lat:   p.Lat,
				Lon:   p.Lon,
				First: i == 0,
				Stop:  p.Stop,
			}
			if i > 0 {
				ev.Heading = trip.Heading(points[i-1], p)
			}
			select {
			case <-ctx.Done():
				return
			case ch <- ev:
			}
		}
	}()
	return ch, nil
}
