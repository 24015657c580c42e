package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/actistats/internal/stats"
)

// TimelineCSV writes one row per series point.
func TimelineCSV(series []stats.Series, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Series", "Group", "Year", "Date", "Value"}); err != nil {
		return err
	}
	for _, s := range series {
		year := ""
		if s.Year != 0 {
			year = strconv.Itoa(s.Year)
		}
		for _, p := range s.Points {
			row := []string{
				s.ID,
				s.Group,
				year,
				p.Date.Format("2006-01-02"),
				formatFloat(p.Value),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// TrendCSV writes one row per bin with a raw and a smoothed column per
// group.
func TrendCSV(data stats.TrendData, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"Date"}
	for _, g := range data.Groups {
		header = append(header, g, g+" (smoothed)")
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, b := range data.Bins {
		row := []string{b.Date.Format("2006-01-02")}
		for _, g := range data.Groups {
			row = append(row, formatFloat(b.Values[g]), formatFloat(b.Smoothed[g]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
