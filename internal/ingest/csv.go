// Package ingest reads a delimited trip log into raw records. Anything
// beyond producing the typed record sequence (validation, classification)
// belongs to the trip package.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"trip-replay/internal/trip"
)

// ReadFile reads a trip log CSV from disk.
func ReadFile(path string) ([]trip.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trip log: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses rows of Time,Latitude,Longitude. The Time column is either
// RFC3339 or a bare minute offset (the format the original trip logs
// use). A header row is skipped when its first cell is not parseable as
// a time. Malformed rows are load-time errors.
func Read(r io.Reader) ([]trip.Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	var records []trip.Record
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read trip log: %w", err)
		}
		line++
		if len(row) < 3 {
			return nil, fmt.Errorf("trip log line %d: want 3 fields, got %d", line, len(row))
		}
		ts, err := parseTime(row[0])
		if err != nil {
			if line == 1 {
				continue // header row
			}
			return nil, fmt.Errorf("trip log line %d: %w", line, err)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("trip log line %d: bad latitude %q", line, row[1])
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("trip log line %d: bad longitude %q", line, row[2])
		}
		records = append(records, trip.Record{Time: ts, Lat: lat, Lon: lon})
	}
	return records, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	// Bare numbers are minute offsets from a common zero.
	if min, err := strconv.ParseFloat(s, 64); err == nil && min >= 0 {
		return time.Unix(0, 0).UTC().Add(time.Duration(min * float64(time.Minute))), nil
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", s)
}
