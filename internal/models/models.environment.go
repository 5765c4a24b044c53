// FilePath: server/hub/internal/models/models.environment.go
package models

import (
	"fmt"
	"time"
)

// DataSourceType tags where an environment row came from
type DataSourceType string

const (
	SourceSwitchBotCSV  DataSourceType = "switchbot-csv"
	SourceInkbirdCSV    DataSourceType = "inkbird-csv"
	SourceGenericCSV    DataSourceType = "generic-csv"
	SourceManual        DataSourceType = "manual"
	SourceOpenMeteo     DataSourceType = "open-meteo"
	SourceSwitchBotAPI  DataSourceType = "switchbot-api"
	SourceHomeAssistant DataSourceType = "home-assistant"
)

// DailyDateLayout is the calendar date format of DailyEnvironmentSummary.Date
const DailyDateLayout = "2006-01-02"

// EnvironmentLog is one hourly reading for a location.
// At most one row exists per (LocationID, Timestamp).
type EnvironmentLog struct {
	ID          string         `json:"id" db:"id"`
	LocationID  string         `json:"locationId" db:"location_id"`
	Timestamp   time.Time      `json:"timestamp" db:"recorded_at"`
	Temperature *float64       `json:"temperature,omitempty" db:"temperature"`
	Humidity    *float64       `json:"humidity,omitempty" db:"humidity"`
	Source      DataSourceType `json:"source,omitempty" db:"source"`
	Notes       *string        `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`
}

// Validate checks a manually entered log
func (l *EnvironmentLog) Validate() error {
	if l.LocationID == "" {
		return fmt.Errorf("locationId is required")
	}
	if l.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	if l.Temperature == nil && l.Humidity == nil {
		return fmt.Errorf("temperature or humidity is required")
	}
	if l.Humidity != nil && (*l.Humidity < 0 || *l.Humidity > 100) {
		return fmt.Errorf("humidity must be between 0 and 100")
	}
	return nil
}

// DailyEnvironmentSummary is the per-day rollup for a location.
// At most one row exists per (LocationID, Date); a re-import replaces it.
type DailyEnvironmentSummary struct {
	ID          string         `json:"id" db:"id"`
	LocationID  string         `json:"locationId" db:"location_id"`
	Date        string         `json:"date" db:"summary_date"`
	TempMax     float64        `json:"tempMax" db:"temp_max"`
	TempMin     float64        `json:"tempMin" db:"temp_min"`
	TempAvg     float64        `json:"tempAvg" db:"temp_avg"`
	HumidityMax *float64       `json:"humidityMax,omitempty" db:"humidity_max"`
	HumidityMin *float64       `json:"humidityMin,omitempty" db:"humidity_min"`
	HumidityAvg *float64       `json:"humidityAvg,omitempty" db:"humidity_avg"`
	DataPoints  int            `json:"dataPoints" db:"data_points"`
	Source      DataSourceType `json:"source" db:"source"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`
}

// EnvironmentStats rolls up a location's daily summaries over a date range.
// Averages are means of the daily averages; humidity fields are absent when no day has humidity.
type EnvironmentStats struct {
	LocationID  string   `json:"locationId"`
	From        string   `json:"from"`
	To          string   `json:"to"`
	Days        int      `json:"days"`
	DataPoints  int      `json:"dataPoints"`
	TempMin     float64  `json:"tempMin"`
	TempMax     float64  `json:"tempMax"`
	TempAvg     float64  `json:"tempAvg"`
	HumidityMin *float64 `json:"humidityMin,omitempty"`
	HumidityMax *float64 `json:"humidityMax,omitempty"`
	HumidityAvg *float64 `json:"humidityAvg,omitempty"`
}
