package export

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/sadopc/actistats/internal/groupbin"
	"github.com/sadopc/actistats/internal/stats"
)

// Views lists the view names ViewJSON accepts.
var Views = []string{
	stats.ViewTimeline, stats.ViewTrend, stats.ViewViolin, stats.ViewCalendar,
	stats.ViewPie, stats.ViewGeo, stats.ViewScatter,
}

type jsonExport struct {
	ExportedAt string `json:"exported_at"`
	View       string `json:"view"`
	Records    int    `json:"records"`
	Error      string `json:"error,omitempty"`
	Data       any    `json:"data"`
}

type jsonExtent struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

type jsonPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type jsonSeries struct {
	ID     string      `json:"id"`
	Group  string      `json:"group"`
	Year   int         `json:"year,omitempty"`
	Color  string      `json:"color"`
	Alpha  float64     `json:"alpha"`
	Points []jsonPoint `json:"points"`
}

type jsonTrendBin struct {
	Date     string             `json:"date"`
	Values   map[string]float64 `json:"values"`
	Smoothed map[string]float64 `json:"smoothed"`
}

type jsonMarker struct {
	ID int64   `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	R  float64 `json:"r"`
}

type jsonViolin struct {
	Group  string            `json:"group"`
	X      float64           `json:"x"`
	Bins   []stats.ViolinBin `json:"bins,omitempty"`
	Stats  *stats.Quartiles  `json:"stats,omitempty"`
	Points []jsonMarker      `json:"points"`
}

type jsonDay struct {
	Day      string  `json:"day"`
	Value    float64 `json:"value"`
	Selected bool    `json:"selected,omitempty"`
	IDs      []int64 `json:"ids"`
}

// ViewJSON writes the data of one view of snap to path.
func ViewJSON(snap stats.Snapshot, view, path string) error {
	out := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		View:       view,
		Records:    snap.Records,
	}
	var err error
	switch view {
	case stats.ViewTimeline:
		out.Data, err = timelineJSON(snap.Timeline.Data), snap.Timeline.Err
	case stats.ViewTrend:
		out.Data, err = trendJSON(snap.Trend.Data), snap.Trend.Err
	case stats.ViewViolin:
		out.Data, err = violinJSON(snap.Violin.Data), snap.Violin.Err
	case stats.ViewCalendar:
		out.Data, err = calendarJSON(snap.Calendar.Data), snap.Calendar.Err
	case stats.ViewPie:
		out.Data = snap.Pie.Data
	case stats.ViewGeo:
		out.Data = map[string]any{"countries": snap.Geo.Data.Countries, "domain": extentJSON(snap.Geo.Data.Domain)}
	case stats.ViewScatter:
		d := snap.Scatter.Data
		out.Data = map[string]jsonExtent{"x": extentJSON(d.X), "y": extentJSON(d.Y), "size": extentJSON(d.Size)}
	default:
		return fmt.Errorf("unknown view %q", view)
	}
	if err != nil {
		out.Error = err.Error()
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

func timelineJSON(series []stats.Series) []jsonSeries {
	out := make([]jsonSeries, 0, len(series))
	for _, s := range series {
		js := jsonSeries{ID: s.ID, Group: s.Group, Year: s.Year, Color: s.Color, Alpha: s.Alpha}
		for _, p := range s.Points {
			js.Points = append(js.Points, jsonPoint{Date: p.Date.Format("2006-01-02"), Value: p.Value})
		}
		out = append(out, js)
	}
	return out
}

func trendJSON(d stats.TrendData) []jsonTrendBin {
	out := make([]jsonTrendBin, 0, len(d.Bins))
	for _, b := range d.Bins {
		smoothed := make(map[string]float64, len(b.Smoothed))
		for g, v := range b.Smoothed {
			if !math.IsNaN(v) {
				smoothed[g] = v
			}
		}
		out = append(out, jsonTrendBin{Date: b.Date.Format("2006-01-02"), Values: b.Values, Smoothed: smoothed})
	}
	return out
}

func violinJSON(d stats.ViolinData) []jsonViolin {
	out := make([]jsonViolin, 0, len(d.Violins))
	for _, v := range d.Violins {
		jv := jsonViolin{Group: v.Group, X: v.CenterX, Bins: v.Bins, Stats: v.Stats, Points: []jsonMarker{}}
		for _, n := range v.Points {
			jv.Points = append(jv.Points, jsonMarker{ID: n.Data.ID, X: n.X, Y: n.Y, R: n.R})
		}
		out = append(out, jv)
	}
	return out
}

func calendarJSON(d stats.CalendarData) []jsonDay {
	out := make([]jsonDay, 0, len(d.Days))
	for _, day := range d.Days {
		out = append(out, jsonDay{Day: day.Day, Value: day.Value, Selected: day.Selected, IDs: day.IDs})
	}
	return out
}

func extentJSON(e groupbin.Extent) jsonExtent {
	if !e.Valid() {
		return jsonExtent{}
	}
	min, max := e.Min, e.Max
	return jsonExtent{Min: &min, Max: &max}
}
