package trip

import "math"

const earthRadiusM = 6371000.0

// Haversine returns the great-circle distance in meters between two
// lat/lon pairs given in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

// Heading returns the travel direction from prev to cur as
// degrees(atan2(dLat, dLon)) normalized into [0,360). A zero delta
// yields 0; callers treat that as "no rotation".
func Heading(prev, cur Point) float64 {
	deg := math.Atan2(cur.Lat-prev.Lat, cur.Lon-prev.Lon) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}
