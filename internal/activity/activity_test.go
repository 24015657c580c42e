package activity

import (
	"math"
	"strings"
	"testing"
	"time"
)

const sample = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "geometry": null, "properties": {
      "id": 1, "name": "Morning Run", "sport_type": "Run", "distance": 10000,
      "total_elevation_gain": 120, "elapsed_time": 3600, "average_speed": 2.9,
      "start_date_local": "2023-01-01T07:30:00Z", "country": "CH"}},
    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": []}, "properties": {
      "id": 2, "name": "No date", "sport_type": "Ride"}}
  ]
}`

func TestDecodeGeoJSON(t *testing.T) {
	acts, err := DecodeGeoJSON(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("DecodeGeoJSON: %v", err)
	}
	if len(acts) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(acts))
	}

	a := acts[0]
	if a.ID != 1 || a.SportType != "Run" || a.Country != "CH" {
		t.Fatalf("unexpected activity: %+v", a)
	}
	want := time.Date(2023, 1, 1, 7, 30, 0, 0, time.UTC)
	if !a.Date.Equal(want) {
		t.Fatalf("Date = %v, want %v", a.Date, want)
	}
	if a.Day() != "2023-01-01" {
		t.Fatalf("Day = %q", a.Day())
	}

	b := acts[1]
	if b.HasDate() {
		t.Fatal("activity without start_date_local should have no date")
	}
	if b.Day() != "" {
		t.Fatalf("Day without date = %q, want empty", b.Day())
	}
	if !math.IsNaN(b.Distance) || !math.IsNaN(b.ElevationGain) {
		t.Fatal("missing metrics should be NaN")
	}
}

func TestDecodeGeoJSONWrongType(t *testing.T) {
	_, err := DecodeGeoJSON(strings.NewReader(`{"type": "Feature"}`))
	if err == nil {
		t.Fatal("expected error for non-collection input")
	}
}

func TestDecodeGeoJSONBadJSON(t *testing.T) {
	if _, err := DecodeGeoJSON(strings.NewReader(`{`)); err == nil {
		t.Fatal("expected error for truncated input")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2023-01-08T10:00:00Z", time.Date(2023, 1, 8, 10, 0, 0, 0, time.UTC), true},
		{"2023-01-08T10:00:00", time.Date(2023, 1, 8, 10, 0, 0, 0, time.UTC), true},
		{"2023-01-08", time.Date(2023, 1, 8, 0, 0, 0, 0, time.UTC), true},
		{"yesterday", time.Time{}, false},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseDate(%q) err = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
