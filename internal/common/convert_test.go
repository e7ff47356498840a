package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKmhToKnots(t *testing.T) {
	assert.InDelta(t, 10.8, KmhToKnots(20), 0.001)
	assert.InDelta(t, 0, KmhToKnots(0), 0.001)
	assert.InDelta(t, 5.4, KmhToKnots(10), 0.001)
}

func TestMsToKnots(t *testing.T) {
	// 10 m/s = 36 km/h = 19.4 kn.
	assert.InDelta(t, 19.4, MsToKnots(10), 0.001)
}

func TestHaversine(t *testing.T) {
	// Domburg to Vlissingen is roughly 16 km.
	d := Haversine(51.5664, 3.4906, 51.4425, 3.5967)
	assert.InDelta(t, 15.6, d, 1.0)

	// Same point is zero.
	assert.InDelta(t, 0, Haversine(52.1, 4.27, 52.1, 4.27), 0.0001)
}
