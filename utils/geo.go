package utils

import (
	"math"
	"strconv"
	"strings"
)

const (
	// equatorial radius used for spherical distance
	EarthRadiusKm = 6378.1
	EarthRadiusMi = 3963.2

	metersToMiles = 0.000621371
	metersToKm    = 0.001
)

// ParseLatLng parses "lat,lng".
func ParseLatLng(s string) (lat, lng float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, ErrInvalidLatLng
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, ErrInvalidLatLng
	}
	return lat, lng, nil
}

// RadiusInRadians converts a distance in mi (unit "mi") or km into radians.
func RadiusInRadians(distance float64, unit string) float64 {
	if unit == "mi" {
		return distance / EarthRadiusMi
	}
	return distance / EarthRadiusKm
}

// DistanceMultiplier converts meters into the requested unit.
func DistanceMultiplier(unit string) float64 {
	if unit == "mi" {
		return metersToMiles
	}
	return metersToKm
}

// CentralAngle is the great-circle angle in radians between two points.
func CentralAngle(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLng := (lng2 - lng1) * math.Pi / 180.0
	la1 := lat1 * math.Pi / 180.0
	la2 := lat2 * math.Pi / 180.0
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(la1)*math.Cos(la2)
	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DistanceMeters is the haversine distance on a sphere of EarthRadiusKm.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	return CentralAngle(lat1, lng1, lat2, lng2) * EarthRadiusKm * 1000
}

// BoundingBox returns the lat/lng window that contains every point within
// radius radians of (lat, lng). Near the poles the longitude span is open.
func BoundingBox(lat, lng, radius float64) (minLat, maxLat, minLng, maxLng float64) {
	dLat := radius * 180 / math.Pi
	minLat, maxLat = lat-dLat, lat+dLat
	if minLat <= -90 || maxLat >= 90 {
		return math.Max(minLat, -90), math.Min(maxLat, 90), -180, 180
	}
	dLng := math.Asin(math.Sin(radius)/math.Cos(lat*math.Pi/180)) * 180 / math.Pi
	if math.IsNaN(dLng) || lng-dLng < -180 || lng+dLng > 180 {
		return minLat, maxLat, -180, 180
	}
	return minLat, maxLat, lng - dLng, lng + dLng
}
