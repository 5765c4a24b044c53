// FilePath: server/hub/internal/models/models.import.go
package models

import "time"

// RawEnvironmentRecord is one parsed CSV sample. It is never stored.
type RawEnvironmentRecord struct {
	Timestamp   time.Time
	Temperature float64
	Humidity    *float64
}

// DateRange is an inclusive from/to pair of formatted dates
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ImportPreview summarises an uploaded CSV before anything is written
type ImportPreview struct {
	Format        string    `json:"format"`
	RawRecords    int       `json:"rawRecords"`
	HourlyRecords int       `json:"hourlyRecords"`
	DailyRecords  int       `json:"dailyRecords"`
	DateRange     DateRange `json:"dateRange"`
}

// ImportResult reports the outcome of merging a CSV into storage.
// DailyRecords counts inserts and overwrites together; Skipped only applies to hourly rows.
type ImportResult struct {
	Success       bool      `json:"success"`
	HourlyRecords int       `json:"hourlyRecords"`
	DailyRecords  int       `json:"dailyRecords"`
	Skipped       int       `json:"skipped"`
	Errors        []string  `json:"errors"`
	DateRange     DateRange `json:"dateRange"`
}

// ImportStep is the position of an upload in the select, preview, complete flow
type ImportStep string

const (
	ImportStepSelect   ImportStep = "select"
	ImportStepPreview  ImportStep = "preview"
	ImportStepComplete ImportStep = "complete"
)

// ImportSession tracks one upload through the import flow
type ImportSession struct {
	ID        string         `json:"id"`
	Step      ImportStep     `json:"step"`
	FileName  string         `json:"fileName,omitempty"`
	Content   string         `json:"content,omitempty"`
	Preview   *ImportPreview `json:"preview,omitempty"`
	Result    *ImportResult  `json:"result,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// ExportData is the JSON backup document for a location's environment data
type ExportData struct {
	Version    int        `json:"version"`
	ExportedAt string     `json:"exportedAt"`
	App        string     `json:"app"`
	Data       ExportBody `json:"data"`
}

type ExportBody struct {
	Locations                 []*Location                `json:"locations"`
	EnvironmentLogs           []*EnvironmentLog          `json:"environmentLogs"`
	DailyEnvironmentSummaries []*DailyEnvironmentSummary `json:"dailyEnvironmentSummaries"`
}
