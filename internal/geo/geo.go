// Package geo filters donations by great-circle distance from an NGO.
package geo

import (
	"math"
	"sort"
)

// EarthRadiusKm is the mean earth radius used by Distance.
const EarthRadiusKm = 6371.0

// DefaultRadiusKm is the cut-off used for the nearby donations list.
const DefaultRadiusKm = 50.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Distance returns the haversine distance between a and b in kilometres.
func Distance(a, b Point) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Locatable is anything with optional coordinates.
type Locatable interface {
	Location() (Point, bool)
}

// Match pairs an element with its distance from the origin.
type Match[T Locatable] struct {
	Item       T
	DistanceKm float64
}

// Nearby returns the items strictly within radiusKm of origin, closest first.
// Items without a location are dropped. If origin is nil every item is
// returned in its original order with a zero distance.
func Nearby[T Locatable](origin *Point, items []T, radiusKm float64) []Match[T] {
	out := make([]Match[T], 0, len(items))

	if origin == nil {
		for _, it := range items {
			out = append(out, Match[T]{Item: it})
		}
		return out
	}

	for _, it := range items {
		p, ok := it.Location()
		if !ok {
			continue
		}
		d := Distance(*origin, p)
		if d < radiusKm {
			out = append(out, Match[T]{Item: it, DistanceKm: d})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out
}

// Round1 rounds km to one decimal place.
func Round1(km float64) float64 {
	return math.Round(km*10) / 10
}
