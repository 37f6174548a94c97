package attendance

import (
	"testing"
)

func fptr(v float64) *float64 { return &v }

func TestValidateLocation(t *testing.T) {
	center := Geofence{Lat: fptr(5.6037), Lon: fptr(-0.1870), RadiusMeters: 100}

	tests := []struct {
		name      string
		fence     Geofence
		lat, lon  *float64
		override  float64
		wantValid bool
		sentinel  bool
		wantErr   bool
	}{
		{
			name:      "disabled fence accepts any coords",
			fence:     Geofence{RadiusMeters: 100},
			lat:       fptr(5.6037),
			lon:       fptr(-0.1870),
			wantValid: true,
		},
		{
			name:      "disabled fence accepts absent coords",
			fence:     Geofence{RadiusMeters: 100},
			wantValid: true,
		},
		{
			name:     "missing coords yields sentinel",
			fence:    center,
			lat:      fptr(5.6037),
			sentinel: true,
		},
		{
			name:      "at the center",
			fence:     center,
			lat:       fptr(5.6037),
			lon:       fptr(-0.1870),
			wantValid: true,
		},
		{
			name:      "inside radius",
			fence:     center,
			lat:       fptr(5.60415),
			lon:       fptr(-0.1870),
			wantValid: true,
		},
		{
			name:      "outside radius",
			fence:     center,
			lat:       fptr(5.60505),
			lon:       fptr(-0.1870),
			wantValid: false,
		},
		{
			name:      "override radius widens the fence",
			fence:     center,
			lat:       fptr(5.60505),
			lon:       fptr(-0.1870),
			override:  500,
			wantValid: true,
		},
		{
			name:    "malformed student latitude",
			fence:   center,
			lat:     fptr(91),
			lon:     fptr(-0.1870),
			wantErr: true,
		},
		{
			name:    "malformed fence center",
			fence:   Geofence{Lat: fptr(5.6037), Lon: fptr(-200), RadiusMeters: 100},
			lat:     fptr(5.6037),
			lon:     fptr(-0.1870),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, distance, err := ValidateLocation(tt.fence, tt.lat, tt.lon, tt.override)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateLocation() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if valid != tt.wantValid {
				t.Fatalf("ValidateLocation() valid = %v, want %v (distance %v)", valid, tt.wantValid, distance)
			}
			if tt.sentinel && distance != MissingLocationDistance {
				t.Fatalf("ValidateLocation() distance = %v, want sentinel %v", distance, MissingLocationDistance)
			}
			if !tt.sentinel && distance < 0 {
				t.Fatalf("ValidateLocation() distance = %v, want >= 0", distance)
			}
		})
	}
}

func TestValidateLocationDistanceBounds(t *testing.T) {
	fence := Geofence{Lat: fptr(5.6037), Lon: fptr(-0.1870), RadiusMeters: 100}

	valid, distance, err := ValidateLocation(fence, fptr(5.60415), fptr(-0.1870), 0)
	if err != nil {
		t.Fatalf("ValidateLocation() error = %v", err)
	}
	if !valid {
		t.Fatalf("expected point ~50m from center to be inside a 100m fence, distance %v", distance)
	}
	if distance < 40 || distance > 60 {
		t.Fatalf("distance = %v, want roughly 50m", distance)
	}

	valid, distance, err = ValidateLocation(fence, fptr(5.60505), fptr(-0.1870), 0)
	if err != nil {
		t.Fatalf("ValidateLocation() error = %v", err)
	}
	if valid {
		t.Fatalf("expected point ~150m from center to be outside a 100m fence, distance %v", distance)
	}
	if distance < 130 || distance > 170 {
		t.Fatalf("distance = %v, want roughly 150m", distance)
	}
}

func TestGeofenceDefaultRadius(t *testing.T) {
	fence := Geofence{Lat: fptr(5.6037), Lon: fptr(-0.1870)}

	valid, _, err := ValidateLocation(fence, fptr(5.60415), fptr(-0.1870), 0)
	if err != nil {
		t.Fatalf("ValidateLocation() error = %v", err)
	}
	if !valid {
		t.Fatal("zero-radius fence should fall back to the default radius")
	}
}
