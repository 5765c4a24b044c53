package envimport

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// DialectConfig describes an extra vendor CSV layout. Column fields are
// case-insensitive regular expressions matched against header cells.
type DialectConfig struct {
	Name              string   `yaml:"name"`
	TimestampColumn   string   `yaml:"timestamp_column"`
	TemperatureColumn string   `yaml:"temperature_column"`
	HumidityColumn    string   `yaml:"humidity_column"`
	TimestampLayouts  []string `yaml:"timestamp_layouts"`
	Delimiter         string   `yaml:"delimiter"`
}

type dialectFile struct {
	Dialects []DialectConfig `yaml:"dialects"`
}

// LoadDialects reads dialect definitions from a YAML file. An empty path yields none.
func LoadDialects(path string, loc *time.Location) ([]Parser, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dialects file: %w", err)
	}
	return ParseDialects(data, loc)
}

// ParseDialects builds parsers from YAML, keeping file order
func ParseDialects(data []byte, loc *time.Location) ([]Parser, error) {
	var file dialectFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse dialects yaml: %w", err)
	}

	parsers := make([]Parser, 0, len(file.Dialects))
	for i, d := range file.Dialects {
		p, err := NewDialectParser(d, loc)
		if err != nil {
			return nil, fmt.Errorf("dialect %d: %w", i, err)
		}
		parsers = append(parsers, p)
	}
	return parsers, nil
}

// NewDialectParser compiles a single dialect
func NewDialectParser(d DialectConfig, loc *time.Location) (Parser, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if d.TimestampColumn == "" || d.TemperatureColumn == "" {
		return nil, fmt.Errorf("%s: timestamp_column and temperature_column are required", d.Name)
	}

	ts, err := compileColumn(d.TimestampColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: timestamp_column: %w", d.Name, err)
	}
	temp, err := compileColumn(d.TemperatureColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: temperature_column: %w", d.Name, err)
	}
	var hum columnMatcher
	if d.HumidityColumn != "" {
		if hum, err = compileColumn(d.HumidityColumn); err != nil {
			return nil, fmt.Errorf("%s: humidity_column: %w", d.Name, err)
		}
	}

	delimiter := d.Delimiter
	if delimiter == "" {
		delimiter = ","
	}
	layouts := d.TimestampLayouts
	if len(layouts) == 0 {
		layouts = DefaultTimestampLayouts
	}

	return &columnParser{
		name:        d.Name,
		delimiter:   delimiter,
		timestamp:   ts,
		temperature: temp,
		humidity:    hum,
		layouts:     layouts,
		loc:         loc,
	}, nil
}

func compileColumn(expr string) (columnMatcher, error) {
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, err
	}
	return regexpColumn(re), nil
}
