package tui

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/sadopc/actistats/internal/stats"
	"github.com/sadopc/actistats/internal/store"
)

// RestoreViews applies the view parameters persisted in db to st. Keys that
// no longer resolve are reported but do not stop the other views.
func RestoreViews(st *stats.Store, db *store.Store) error {
	load := func(view string) (map[string]string, error) {
		m, err := db.ViewSettings(view)
		if err != nil {
			return nil, fmt.Errorf("restore %s: %w", view, err)
		}
		return m, nil
	}

	var errs []error
	tl, err := load(stats.ViewTimeline)
	if err != nil {
		return err
	}
	u := stats.TimelineUpdate{Period: tl["period"], Value: tl["value"], Group: tl["group"]}
	if c, ok := tl["cumulative"]; ok {
		b, perr := strconv.ParseBool(c)
		if perr != nil {
			errs = append(errs, fmt.Errorf("restore timeline cumulative %q: %w", c, perr))
		} else {
			u.Cumulative = &b
		}
	}
	_, err = st.SetTimeline(u)
	errs = append(errs, err)

	tr, err := load(stats.ViewTrend)
	if err != nil {
		return err
	}
	_, err = st.SetTrend(stats.TrendUpdate{
		Period: tr["period"], Value: tr["value"], Group: tr["group"], Averaging: tr["averaging"],
	})
	errs = append(errs, err)

	vi, err := load(stats.ViewViolin)
	if err != nil {
		return err
	}
	_, err = st.SetViolin(stats.ViolinUpdate{Value: vi["value"], Group: vi["group"], Scale: vi["scale"]})
	errs = append(errs, err)

	ca, err := load(stats.ViewCalendar)
	if err != nil {
		return err
	}
	_, err = st.SetCalendar(stats.CalendarUpdate{Value: ca["value"]})
	errs = append(errs, err)

	pi, err := load(stats.ViewPie)
	if err != nil {
		return err
	}
	_, err = st.SetPie(stats.PieUpdate{Value: pi["value"], Group: pi["group"]})
	errs = append(errs, err)

	ge, err := load(stats.ViewGeo)
	if err != nil {
		return err
	}
	_, err = st.SetGeo(stats.GeoUpdate{Value: ge["value"]})
	errs = append(errs, err)

	return errors.Join(errs...)
}
