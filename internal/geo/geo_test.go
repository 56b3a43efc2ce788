package geo

import (
	"math"
	"testing"

	"github.com/uavops/uavsim/pkg/core"
)

func TestOriginRoundTrip(t *testing.T) {
	o := NewOrigin(13.4, 52.5)

	lon, lat := o.ToWGS84(core.Position3D{})
	if math.Abs(lon-13.4) > 1e-6 || math.Abs(lat-52.5) > 1e-6 {
		t.Errorf("origin should map onto itself, got %f,%f", lon, lat)
	}

	// A kilometer east must move longitude, not latitude.
	lonE, latE := o.ToWGS84(core.Position3D{X: 1000})
	if lonE <= lon {
		t.Errorf("eastward offset did not increase longitude: %f", lonE)
	}
	if math.Abs(latE-lat) > 1e-6 {
		t.Errorf("eastward offset changed latitude: %f", latE)
	}
}

func TestPoint3857CarriesAltitude(t *testing.T) {
	o := NewOrigin(0, 0)
	p := o.Point3857(core.Position3D{X: 10, Y: 20, Z: 55})
	c, ok := p.Coordinates()
	if !ok {
		t.Fatal("expected non-empty point")
	}
	if c.Z != 55 {
		t.Errorf("altitude lost: got %f", c.Z)
	}
}

func TestPosition3DFromString(t *testing.T) {
	cases := []struct {
		in      string
		want    core.Position3D
		wantErr bool
	}{
		{"100,200", core.Position3D{X: 100, Y: 200}, false},
		{"100, 200, 30", core.Position3D{X: 100, Y: 200, Z: 30}, false},
		{"1.5,-2.5,0.25", core.Position3D{X: 1.5, Y: -2.5, Z: 0.25}, false},
		{"100", core.Position3D{}, true},
		{"abc,def", core.Position3D{}, true},
		{"1,2,xyz", core.Position3D{}, true},
	}
	for _, tc := range cases {
		got, err := Position3DFromString(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: got %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestTrackLineString(t *testing.T) {
	o := NewOrigin(0, 0)
	states := []core.NodeState{
		{Position: core.Position3D{X: 0, Y: 0}},
		{Position: core.Position3D{X: 100, Y: 0}},
		{Position: core.Position3D{X: 100, Y: 100}},
	}
	ls, err := TrackLineString(o, states)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := ls.Coordinates().Length(); n != 3 {
		t.Errorf("expected 3 points, got %d", n)
	}

	if _, err := TrackLineString(o, states[:1]); err == nil {
		t.Error("expected error for single-sample track")
	}
}
