package common

import "math"

// kmhToKnots is the conversion factor from km/h to knots.
// The same factor converts m/s to knots when the input is first scaled by 3.6.
const kmhToKnots = 0.539957

// KmhToKnots converts a wind speed from km/h to knots, rounded to one decimal.
func KmhToKnots(kmh float64) float64 {
	return Round1(kmh * kmhToKnots)
}

// MsToKnots converts a wind speed from m/s to knots, rounded to one decimal.
func MsToKnots(ms float64) float64 {
	return Round1(ms * 3.6 * kmhToKnots)
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Haversine returns the great-circle distance in kilometers between two
// coordinates given in decimal degrees.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371

	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
