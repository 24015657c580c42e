package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/actistats/internal/activity"
)

func (s *Store) SaveFilter(name string, f ActivityFilter) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`
		INSERT INTO saved_filters (name, sport_types, country, from_date, to_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			sport_types = excluded.sport_types,
			country = excluded.country,
			from_date = excluded.from_date,
			to_date = excluded.to_date`,
		name, strings.Join(f.SportTypes, ","), f.Country, dateArg(f.From), dateArg(f.To), now,
	)
	if err != nil {
		return fmt.Errorf("save filter %q: %w", name, err)
	}
	return nil
}

func (s *Store) GetFilter(name string) (*SavedFilter, error) {
	row := s.db.QueryRow(`SELECT name, sport_types, country, from_date, to_date, created_at FROM saved_filters WHERE name = ?`, name)
	sf, err := scanFilter(row)
	if err != nil {
		return nil, fmt.Errorf("get filter %q: %w", name, err)
	}
	return &sf, nil
}

func (s *Store) ListFilters() ([]SavedFilter, error) {
	rows, err := s.db.Query(`SELECT name, sport_types, country, from_date, to_date, created_at FROM saved_filters ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	defer rows.Close()

	var out []SavedFilter
	for rows.Next() {
		sf, err := scanFilter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sf)
	}
	return out, rows.Err()
}

func (s *Store) DeleteFilter(name string) error {
	_, err := s.db.Exec(`DELETE FROM saved_filters WHERE name = ?`, name)
	return err
}

func scanFilter(sc scanner) (SavedFilter, error) {
	var sf SavedFilter
	var sports, createdAt string
	var from, to sql.NullString
	if err := sc.Scan(&sf.Name, &sports, &sf.Filter.Country, &from, &to, &createdAt); err != nil {
		return sf, err
	}
	if sports != "" {
		sf.Filter.SportTypes = strings.Split(sports, ",")
	}
	sf.Filter.From = parseDate(from)
	sf.Filter.To = parseDate(to)
	sf.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return sf, nil
}

func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(activity.DateLayout)
}

func parseDate(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(activity.DateLayout, s.String)
	if err != nil {
		return nil
	}
	return &t
}
