// Package envimport turns vendor CSV exports into hourly logs and daily summaries
// and merges them into storage.
package envimport

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/plalog/plalog/server/hub/internal/models"
)

var (
	// ErrUnsupportedFormat is returned when no registered parser accepts the header
	ErrUnsupportedFormat = errors.New("unsupported CSV format")
	// ErrNoData is returned when a parser accepted the header but no row was usable
	ErrNoData = errors.New("no data found")
	// ErrHeaderMismatch is returned by Parse when the content's header lacks the parser's columns
	ErrHeaderMismatch = errors.New("CSV header does not match parser")
)

// Parser reads one vendor's CSV dialect
type Parser interface {
	Name() string
	CanParse(header string) bool
	Parse(content string) ([]models.RawEnvironmentRecord, error)
}

// SourceFor returns the source tag stored with rows produced by p
func SourceFor(p Parser) models.DataSourceType {
	return models.DataSourceType(strings.ToLower(p.Name()) + "-csv")
}

// DefaultTimestampLayouts are tried in order for zone-less timestamps
var DefaultTimestampLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// columnMatcher decides whether a header cell names a column
type columnMatcher func(cell string) bool

func exactColumn(name string) columnMatcher {
	return func(cell string) bool { return cell == name }
}

func containsColumn(part string) columnMatcher {
	return func(cell string) bool { return strings.Contains(cell, part) }
}

func regexpColumn(re *regexp.Regexp) columnMatcher {
	return re.MatchString
}

// columnParser locates timestamp, temperature and humidity columns by name
// and reads rows with them. Humidity is optional unless requireHumidity is set.
type columnParser struct {
	name            string
	delimiter       string
	timestamp       columnMatcher
	temperature     columnMatcher
	humidity        columnMatcher
	requireHumidity bool
	layouts         []string
	loc             *time.Location
}

type columnIndex struct {
	timestamp, temperature, humidity int
}

func (p *columnParser) Name() string {
	return p.name
}

func (p *columnParser) CanParse(header string) bool {
	_, ok := p.locate(header)
	return ok
}

func (p *columnParser) locate(header string) (columnIndex, bool) {
	cells := splitRow(stripBOM(header), p.delimiter)
	idx := columnIndex{
		timestamp:   findColumn(cells, p.timestamp),
		temperature: findColumn(cells, p.temperature),
		humidity:    findColumn(cells, p.humidity),
	}
	if idx.timestamp < 0 || idx.temperature < 0 {
		return idx, false
	}
	if p.requireHumidity && idx.humidity < 0 {
		return idx, false
	}
	return idx, true
}

func (p *columnParser) Parse(content string) ([]models.RawEnvironmentRecord, error) {
	lines := splitLines(content)
	if len(lines) == 0 {
		return nil, ErrHeaderMismatch
	}
	idx, ok := p.locate(lines[0])
	if !ok {
		return nil, ErrHeaderMismatch
	}

	records := make([]models.RawEnvironmentRecord, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := splitRow(line, p.delimiter)
		if idx.timestamp >= len(cols) || idx.temperature >= len(cols) {
			continue
		}

		ts, ok := parseTimestamp(cols[idx.timestamp], p.layouts, p.loc)
		if !ok {
			continue
		}
		temp, ok := parseNumber(cols[idx.temperature])
		if !ok {
			continue
		}

		record := models.RawEnvironmentRecord{Timestamp: ts, Temperature: temp}
		if idx.humidity >= 0 && idx.humidity < len(cols) {
			if h, ok := parseNumber(cols[idx.humidity]); ok {
				record.Humidity = &h
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// HeaderLine returns the first line of content, without BOM or line ending
func HeaderLine(content string) string {
	content = stripBOM(content)
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		content = content[:i]
	}
	return strings.TrimRight(content, "\r")
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}

func splitLines(content string) []string {
	content = strings.TrimSpace(stripBOM(content))
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}

func splitRow(line, delimiter string) []string {
	cells := strings.Split(line, delimiter)
	for i, c := range cells {
		cells[i] = strings.Trim(strings.TrimSpace(c), `"`)
	}
	return cells
}

func findColumn(cells []string, match columnMatcher) int {
	if match == nil {
		return -1
	}
	for i, c := range cells {
		if match(c) {
			return i
		}
	}
	return -1
}

func parseTimestamp(value string, layouts []string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), true
	}
	return time.Time{}, false
}

func parseNumber(value string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
