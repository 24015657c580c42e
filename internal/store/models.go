package store

import "time"

type Setting struct {
	Key   string
	Value string
}

// ActivityFilter restricts activity queries. Zero fields match everything.
type ActivityFilter struct {
	SportTypes []string
	Country    string
	From       *time.Time
	To         *time.Time
	Limit      int
}

// SavedFilter is a named ActivityFilter.
type SavedFilter struct {
	Name      string
	Filter    ActivityFilter
	CreatedAt time.Time
}

// SportCount is the number of stored activities of one sport type.
type SportCount struct {
	SportType string
	Count     int
}
