package models

import "time"

// EnvironmentFilters defines the query options for listing a location's readings.
// Decoded from the query string with gorilla/schema; zero times mean unbounded.
type EnvironmentFilters struct {
	From  time.Time `schema:"from"`
	To    time.Time `schema:"to"`
	Limit int       `schema:"limit"`
}

// DefaultEnvironmentLimit applies when no limit is given
const DefaultEnvironmentLimit = 500

// Normalize fills defaults and clamps the limit
func (f *EnvironmentFilters) Normalize() {
	if f.Limit <= 0 || f.Limit > 5000 {
		f.Limit = DefaultEnvironmentLimit
	}
}
