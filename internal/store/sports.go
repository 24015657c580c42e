package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sadopc/actistats/internal/activity"
	"github.com/sadopc/actistats/internal/groupbin"
)

// ListSportTypes returns every stored sport type with its activity count,
// most frequent first.
func (s *Store) ListSportTypes() ([]SportCount, error) {
	rows, err := s.db.Query(`
		SELECT sport_type, COUNT(*) AS n
		FROM activities
		GROUP BY sport_type
		ORDER BY n DESC, sport_type`)
	if err != nil {
		return nil, fmt.Errorf("list sport types: %w", err)
	}
	defer rows.Close()

	var out []SportCount
	for rows.Next() {
		var sc SportCount
		if err := rows.Scan(&sc.SportType, &sc.Count); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// DateRange returns the first and last activity dates. The range is empty
// when no stored activity is dated.
func (s *Store) DateRange() (groupbin.TimeRange, error) {
	var from, to sql.NullString
	err := s.db.QueryRow(`SELECT MIN(start_date_local), MAX(start_date_local) FROM activities`).Scan(&from, &to)
	if err != nil {
		return groupbin.TimeRange{}, fmt.Errorf("date range: %w", err)
	}
	var r groupbin.TimeRange
	if from.Valid && to.Valid {
		r.Start, _ = time.Parse(activity.DateLayout, from.String)
		r.End, _ = time.Parse(activity.DateLayout, to.String)
	}
	return r, nil
}
