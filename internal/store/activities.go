package store

import (
	"database/sql"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/sadopc/actistats/internal/activity"
)

const activityColumns = `id, name, sport_type, distance, total_elevation_gain, elapsed_time, average_speed, start_date_local, country`

// UpsertActivities inserts acts, replacing stored activities with the same
// id, and returns the number written.
func (s *Store) UpsertActivities(acts []activity.Activity) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO activities (` + activityColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			sport_type = excluded.sport_type,
			distance = excluded.distance,
			total_elevation_gain = excluded.total_elevation_gain,
			elapsed_time = excluded.elapsed_time,
			average_speed = excluded.average_speed,
			start_date_local = excluded.start_date_local,
			country = excluded.country`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, a := range acts {
		var date any
		if a.HasDate() {
			date = a.Date.UTC().Format(activity.DateLayout)
		}
		_, err := stmt.Exec(a.ID, a.Name, a.SportType,
			nullable(a.Distance), nullable(a.ElevationGain), nullable(a.ElapsedTime), nullable(a.AverageSpeed),
			date, a.Country)
		if err != nil {
			return 0, fmt.Errorf("upsert activity %d: %w", a.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert: %w", err)
	}
	return len(acts), nil
}

// ImportGeoJSON decodes a FeatureCollection of activities from r and
// upserts them.
func (s *Store) ImportGeoJSON(r io.Reader) (int, error) {
	acts, err := activity.DecodeGeoJSON(r)
	if err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}
	return s.UpsertActivities(acts)
}

func (s *Store) GetActivity(id int64) (*activity.Activity, error) {
	row := s.db.QueryRow(`SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)
	a, err := scanActivity(row)
	if err != nil {
		return nil, fmt.Errorf("get activity %d: %w", id, err)
	}
	return &a, nil
}

// ListActivities returns the activities matching f, oldest first.
func (s *Store) ListActivities(f ActivityFilter) ([]activity.Activity, error) {
	where, args := f.where()
	query := `SELECT ` + activityColumns + ` FROM activities` + where + ` ORDER BY start_date_local, id`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var acts []activity.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		acts = append(acts, a)
	}
	return acts, rows.Err()
}

// FilterIDs returns the ids of the activities matching f. A nil slice means
// nothing matched.
func (s *Store) FilterIDs(f ActivityFilter) ([]int64, error) {
	where, args := f.where()
	rows, err := s.db.Query(`SELECT id FROM activities`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("filter ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) DeleteActivity(id int64) error {
	_, err := s.db.Exec(`DELETE FROM activities WHERE id = ?`, id)
	return err
}

func (s *Store) CountActivities() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM activities`).Scan(&n)
	return n, err
}

func (f ActivityFilter) where() (string, []any) {
	var clauses []string
	var args []any
	if len(f.SportTypes) > 0 {
		clauses = append(clauses, `sport_type IN (?`+strings.Repeat(`, ?`, len(f.SportTypes)-1)+`)`)
		for _, st := range f.SportTypes {
			args = append(args, st)
		}
	}
	if f.Country != "" {
		clauses = append(clauses, `country = ?`)
		args = append(args, f.Country)
	}
	if f.From != nil {
		clauses = append(clauses, `start_date_local >= ?`)
		args = append(args, f.From.UTC().Format(activity.DateLayout))
	}
	if f.To != nil {
		clauses = append(clauses, `start_date_local < ?`)
		args = append(args, f.To.UTC().Format(activity.DateLayout))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(clauses, ` AND `), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(sc scanner) (activity.Activity, error) {
	var a activity.Activity
	var distance, elevation, elapsed, speed sql.NullFloat64
	var date sql.NullString
	if err := sc.Scan(&a.ID, &a.Name, &a.SportType, &distance, &elevation, &elapsed, &speed, &date, &a.Country); err != nil {
		return a, err
	}
	a.Distance = orNaN(distance)
	a.ElevationGain = orNaN(elevation)
	a.ElapsedTime = orNaN(elapsed)
	a.AverageSpeed = orNaN(speed)
	if date.Valid {
		a.Date, _ = time.Parse(activity.DateLayout, date.String)
	}
	return a, nil
}

func nullable(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
