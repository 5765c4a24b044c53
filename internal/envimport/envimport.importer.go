package envimport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/plalog/plalog/server/hub/internal/models"
	"github.com/plalog/plalog/server/hub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// User-facing messages carried in ImportResult.Errors
const (
	MsgUnsupportedFormat = "unsupported CSV format"
	MsgNoData            = "no data found"
	MsgImportFailed      = "import failed"
)

// MergeStore runs the merge of one import inside a single transaction
type MergeStore interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.EnvironmentTx) error) error
}

// Metrics receives the outcome of every import run
type Metrics interface {
	ObserveImport(format, outcome string, result *models.ImportResult, elapsed time.Duration)
}

// Importer previews and merges CSV content
type Importer struct {
	registry *Registry
	store    MergeStore
	metrics  Metrics
	now      func() time.Time
	newID    func() string
}

type Option func(*Importer)

func WithMetrics(m Metrics) Option {
	return func(i *Importer) { i.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(i *Importer) { i.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(i *Importer) { i.newID = newID }
}

func NewImporter(registry *Registry, store MergeStore, opts ...Option) *Importer {
	i := &Importer{
		registry: registry,
		store:    store,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// parse selects a parser for content and runs it. It returns ErrUnsupportedFormat or ErrNoData.
func (i *Importer) parse(content string) (Parser, []models.RawEnvironmentRecord, error) {
	parser := i.registry.SelectParser(HeaderLine(content))
	if parser == nil {
		return nil, nil, ErrUnsupportedFormat
	}
	records, err := parser.Parse(content)
	if err != nil {
		if errors.Is(err, ErrHeaderMismatch) {
			return nil, nil, ErrUnsupportedFormat
		}
		return nil, nil, err
	}
	if len(records) == 0 {
		return parser, nil, ErrNoData
	}
	return parser, records, nil
}

// Preview summarises content without touching storage. Hour and day counts
// come from the distinct grouping keys of the raw records.
func (i *Importer) Preview(content string) (*models.ImportPreview, error) {
	parser, records, err := i.parse(content)
	if err != nil {
		return nil, err
	}

	hours := map[string]struct{}{}
	days := map[string]struct{}{}
	first, last := records[0].Timestamp, records[0].Timestamp
	for _, r := range records {
		hours[hourKey(r.Timestamp)] = struct{}{}
		days[dayKey(r.Timestamp)] = struct{}{}
		if r.Timestamp.Before(first) {
			first = r.Timestamp
		}
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}

	return &models.ImportPreview{
		Format:        parser.Name(),
		RawRecords:    len(records),
		HourlyRecords: len(hours),
		DailyRecords:  len(days),
		DateRange: models.DateRange{
			From: first.Format(rangeLayout),
			To:   last.Format(rangeLayout),
		},
	}, nil
}

// Import merges content into locationID's series. Unsupported or empty content
// yields an unsuccessful result and a nil error; storage failures are returned
// as errors and leave nothing behind.
func (i *Importer) Import(ctx context.Context, content, locationID string) (*models.ImportResult, error) {
	start := i.now()

	parser, records, err := i.parse(content)
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return i.failed("unknown", MsgUnsupportedFormat, start), nil
	case errors.Is(err, ErrNoData):
		return i.failed(parser.Name(), MsgNoData, start), nil
	case err != nil:
		return nil, err
	}

	source := SourceFor(parser)
	hourly := AggregateToHourly(records, locationID, source)
	daily := AggregateToDaily(records, locationID, source)

	result := &models.ImportResult{Errors: []string{}}
	err = i.store.RunInTx(ctx, func(ctx context.Context, tx repository.EnvironmentTx) error {
		saved, skipped, err := i.mergeHourly(ctx, tx, hourly)
		if err != nil {
			return err
		}
		dailySaved, err := i.mergeDaily(ctx, tx, daily)
		if err != nil {
			return err
		}
		result.HourlyRecords, result.Skipped, result.DailyRecords = saved, skipped, dailySaved
		return nil
	})
	if err != nil {
		nuts.L.Errorf("[Importer] Merge for location %s failed: %v", locationID, err)
		i.observe(parser.Name(), "error", nil, start)
		return nil, fmt.Errorf("%s: %w", MsgImportFailed, err)
	}

	result.Success = true
	if len(daily) > 0 {
		result.DateRange = models.DateRange{From: daily[0].Date, To: daily[len(daily)-1].Date}
	}

	nuts.L.Infof("[Importer] %s import into %s: %d hourly saved, %d skipped, %d daily saved",
		parser.Name(), locationID, result.HourlyRecords, result.Skipped, result.DailyRecords)
	i.observe(parser.Name(), "success", result, start)
	return result, nil
}

// mergeHourly inserts hours not yet stored and skips the rest
func (i *Importer) mergeHourly(ctx context.Context, tx repository.EnvironmentTx, logs []models.EnvironmentLog) (saved, skipped int, err error) {
	now := i.now()
	for _, log := range logs {
		exists, err := tx.HasLogAt(ctx, log.LocationID, log.Timestamp)
		if err != nil {
			return 0, 0, err
		}
		if exists {
			skipped++
			continue
		}
		log.ID = i.newID()
		log.CreatedAt, log.UpdatedAt = now, now
		if err := tx.InsertLog(ctx, &log); err != nil {
			return 0, 0, err
		}
		saved++
	}
	return saved, skipped, nil
}

// mergeDaily overwrites existing days in place and inserts new ones. Both count as saved.
func (i *Importer) mergeDaily(ctx context.Context, tx repository.EnvironmentTx, summaries []models.DailyEnvironmentSummary) (int, error) {
	now := i.now()
	saved := 0
	for _, s := range summaries {
		existing, err := tx.FindDailySummary(ctx, s.LocationID, s.Date)
		if err != nil {
			return 0, err
		}
		s.UpdatedAt = now
		if existing != nil {
			s.ID, s.CreatedAt = existing.ID, existing.CreatedAt
			err = tx.ReplaceDailySummary(ctx, &s)
		} else {
			s.ID, s.CreatedAt = i.newID(), now
			err = tx.InsertDailySummary(ctx, &s)
		}
		if err != nil {
			return 0, err
		}
		saved++
	}
	return saved, nil
}

func (i *Importer) failed(format, msg string, start time.Time) *models.ImportResult {
	result := &models.ImportResult{Success: false, Errors: []string{msg}}
	outcome := "unsupported_format"
	if msg == MsgNoData {
		outcome = "no_data"
	}
	i.observe(format, outcome, result, start)
	return result
}

func (i *Importer) observe(format, outcome string, result *models.ImportResult, start time.Time) {
	if i.metrics != nil {
		i.metrics.ObserveImport(format, outcome, result, i.now().Sub(start))
	}
}
