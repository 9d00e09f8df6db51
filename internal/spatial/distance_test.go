package spatial

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	if d := Distance(0, 0, 3, 4); d != 5 {
		t.Errorf("expected 5, got %v", d)
	}
	if d := Distance(2, 2, 2, 2); d != 0 {
		t.Errorf("expected 0, got %v", d)
	}
}

func TestHaversineDistance(t *testing.T) {
	// One degree of latitude is about 111.2 km.
	d := HaversineDistance(52.0, 4.5, 53.0, 4.5)
	if math.Abs(d-111195) > 200 {
		t.Errorf("expected ~111195 m, got %v", d)
	}

	if d := HaversineDistance(52.0, 4.5, 52.0, 4.5); d != 0 {
		t.Errorf("expected 0 for identical points, got %v", d)
	}
}

func TestProjectionRoundTrip(t *testing.T) {
	// Wadden Sea area, typical ATLAS deployment latitude.
	proj := NewProjection(53.25, 5.25)

	lat, lon := 53.252, 5.247
	x, y := proj.ToPlanar(lat, lon)

	backLat, backLon := proj.FromPlanar(x, y)
	if math.Abs(backLat-lat) > 1e-9 || math.Abs(backLon-lon) > 1e-9 {
		t.Errorf("round trip drifted: (%v, %v) -> (%v, %v)", lat, lon, backLat, backLon)
	}

	// Planar distance should agree with the great-circle distance to
	// within a meter at this scale.
	planar := Distance(0, 0, x, y)
	sphere := HaversineDistance(53.25, 5.25, lat, lon)
	if math.Abs(planar-sphere) > 1 {
		t.Errorf("planar %v m vs haversine %v m", planar, sphere)
	}
}

func TestProjectionInRange(t *testing.T) {
	proj := NewProjection(53.25, 5.25)

	if !proj.InRange(53.25, 5.25) {
		t.Error("origin should be in range")
	}
	if !proj.InRange(53.9, 5.3) {
		t.Error("point ~72 km from origin should be in range")
	}
	// Berlin is roughly 570 km from the Wadden Sea origin.
	if proj.InRange(52.52, 13.40) {
		t.Error("point ~570 km from origin should be out of range")
	}
}

func TestProjectionOrigin(t *testing.T) {
	proj := NewProjection(53.25, 5.25)
	x, y := proj.ToPlanar(53.25, 5.25)
	if x != 0 || y != 0 {
		t.Errorf("origin should project to (0, 0), got (%v, %v)", x, y)
	}
}
