package trip

import "fmt"

// IngestionError reports why a trip log was rejected at load time.
// Index is the offending record position, or -1 when the whole input
// is unusable (e.g. empty).
type IngestionError struct {
	Index  int
	Reason string
}

func (e *IngestionError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("ingest: %s", e.Reason)
	}
	return fmt.Sprintf("ingest: record %d: %s", e.Index, e.Reason)
}

// Load validates the raw record sequence and returns a Trip with all
// points unclassified. It fails on empty input, out-of-range coordinates
// and timestamps that go backwards. A failed load leaves any previously
// loaded trip untouched.
func Load(records []Record) (*Trip, error) {
	if len(records) == 0 {
		return nil, &IngestionError{Index: -1, Reason: "no records"}
	}
	points := make([]Point, len(records))
	for i, r := range records {
		if r.Lat < -90 || r.Lat > 90 {
			return nil, &IngestionError{Index: i, Reason: fmt.Sprintf("latitude %v out of range", r.Lat)}
		}
		if r.Lon < -180 || r.Lon > 180 {
			return nil, &IngestionError{Index: i, Reason: fmt.Sprintf("longitude %v out of range", r.Lon)}
		}
		if i > 0 && r.Time.Before(records[i-1].Time) {
			return nil, &IngestionError{Index: i, Reason: "timestamp before previous record"}
		}
		points[i] = Point{Time: r.Time, Lat: r.Lat, Lon: r.Lon}
	}
	return &Trip{points: points}, nil
}
