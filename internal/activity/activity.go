package activity

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"
)

// DateLayout is the layout of start_date_local in activity exports.
const DateLayout = "2006-01-02T15:04:05Z"

// Activity is one recorded exercise session. Metric fields hold NaN when the
// source did not provide them.
type Activity struct {
	ID            int64
	Name          string
	SportType     string
	Distance      float64 // meters
	ElevationGain float64 // meters
	ElapsedTime   float64 // seconds
	AverageSpeed  float64 // meters per second
	Date          time.Time
	Country       string
}

// HasDate reports whether the activity carries a usable timestamp.
func (a Activity) HasDate() bool { return !a.Date.IsZero() }

// Day returns the calendar day key of the activity, or "" without a date.
func (a Activity) Day() string {
	if !a.HasDate() {
		return ""
	}
	return a.Date.Format("2006-01-02")
}

// Properties mirrors the properties object of an exported activity feature.
type Properties struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	SportType          string   `json:"sport_type"`
	Distance           *float64 `json:"distance"`
	TotalElevationGain *float64 `json:"total_elevation_gain"`
	ElapsedTime        *float64 `json:"elapsed_time"`
	AverageSpeed       *float64 `json:"average_speed"`
	StartDateLocal     string   `json:"start_date_local"`
	Country            string   `json:"country"`
}

type feature struct {
	Type       string          `json:"type"`
	Properties Properties      `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

// FromProperties converts feature properties to an Activity. An unparsable
// date leaves Date zero rather than failing the record.
func FromProperties(p Properties) Activity {
	a := Activity{
		ID:            p.ID,
		Name:          p.Name,
		SportType:     p.SportType,
		Distance:      orNaN(p.Distance),
		ElevationGain: orNaN(p.TotalElevationGain),
		ElapsedTime:   orNaN(p.ElapsedTime),
		AverageSpeed:  orNaN(p.AverageSpeed),
		Country:       p.Country,
	}
	if p.StartDateLocal != "" {
		if t, err := ParseDate(p.StartDateLocal); err == nil {
			a.Date = t
		}
	}
	return a
}

// ParseDate parses start_date_local, which is wall-clock time tagged with a
// bogus Z suffix. The result is in UTC and interpreted as local wall time.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{DateLayout, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q", s)
}

// DecodeGeoJSON reads a FeatureCollection and extracts the properties of
// every feature as activities, preserving feature order.
func DecodeGeoJSON(r io.Reader) ([]Activity, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	if fc.Type != "" && fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("decode geojson: unexpected type %q", fc.Type)
	}
	out := make([]Activity, 0, len(fc.Features))
	for _, f := range fc.Features {
		out = append(out, FromProperties(f.Properties))
	}
	return out, nil
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
