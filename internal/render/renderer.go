// Package render drives an external map renderer with the playback
// protocol: one visible marker at a time, trail segments that accumulate.
package render

import (
	"log"
	"sync"

	"trip-replay/internal/playback"
)

// MarkerID identifies a placed marker so it can be removed later.
type MarkerID int64

// Renderer is the map-widget boundary. Implementations own all drawing
// state; the driver only sequences the calls.
type Renderer interface {
	AddMarker(lat, lon, heading float64) (MarkerID, error)
	RemoveMarker(id MarkerID) error
	AddTrailSegment(aLat, aLon, bLat, bLon float64) error
}

// TrailDriver is a playback.EventSink that applies each event to a
// Renderer: place the new marker, extend the trail from the previous
// position, then remove the previous marker. That ordering keeps exactly
// one marker visible at any instant while the trail grows.
type TrailDriver struct {
	r Renderer

	mu      sync.Mutex
	hasPrev bool
	prev    MarkerID
	prevLat float64
	prevLon float64
}

func NewTrailDriver(r Renderer) *TrailDriver {
	return &TrailDriver{r: r}
}

// Emit implements playback.EventSink.
func (d *TrailDriver) Emit(ev playback.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ev.First {
		// A fresh run; orphan any marker from a cancelled predecessor.
		if d.hasPrev {
			if err := d.r.RemoveMarker(d.prev); err != nil {
				return err
			}
			d.hasPrev = false
		}
	}

	id, err := d.r.AddMarker(ev.Lat, ev.Lon, ev.Heading)
	if err != nil {
		return err
	}
	if d.hasPrev {
		if err := d.r.AddTrailSegment(ev.Lat, ev.Lon, d.prevLat, d.prevLon); err != nil {
			return err
		}
		if err := d.r.RemoveMarker(d.prev); err != nil {
			return err
		}
	}
	d.prev = id
	d.prevLat = ev.Lat
	d.prevLon = ev.Lon
	d.hasPrev = true
	return nil
}

// LogRenderer logs renderer calls instead of drawing. It keeps the
// binary usable without a map frontend; real rendering happens in
// whatever subscribes to the published events.
type LogRenderer struct {
	mu   sync.Mutex
	next MarkerID
}

func (l *LogRenderer) AddMarker(lat, lon, heading float64) (MarkerID, error) {
	l.mu.Lock()
	l.next++
	id := l.next
	l.mu.Unlock()
	log.Printf("render: marker %d at (%.5f, %.5f) heading %.1f", id, lat, lon, heading)
	return id, nil
}

func (l *LogRenderer) RemoveMarker(id MarkerID) error {
	log.Printf("render: remove marker %d", id)
	return nil
}

func (l *LogRenderer) AddTrailSegment(aLat, aLon, bLat, bLon float64) error {
	log.Printf("render: trail (%.5f, %.5f) -> (%.5f, %.5f)", bLat, bLon, aLat, aLon)
	return nil
}
