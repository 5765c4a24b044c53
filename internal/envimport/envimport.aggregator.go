package envimport

import (
	"sort"
	"time"

	"github.com/plalog/plalog/server/hub/internal/models"
	"github.com/shopspring/decimal"
)

const (
	hourKeyLayout = "2006-01-02-15"
	rangeLayout   = "2006/01/02"
)

// hourStart truncates t to the top of its wall-clock hour in t's own zone
func hourStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func hourKey(t time.Time) string {
	return t.Format(hourKeyLayout)
}

func dayKey(t time.Time) string {
	return t.Format(models.DailyDateLayout)
}

// Round1 rounds half away from zero to one decimal place, working on the
// shortest decimal form of v (1.15 -> 1.2, -0.25 -> -0.3)
func Round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

type hourGroup struct {
	start    time.Time
	temps    []float64
	humidity []float64
}

// AggregateToHourly averages records per clock hour, ascending by timestamp.
// IDs and audit times are left for the caller to stamp.
func AggregateToHourly(records []models.RawEnvironmentRecord, locationID string, source models.DataSourceType) []models.EnvironmentLog {
	groups := map[string]*hourGroup{}
	for _, r := range records {
		key := hourKey(r.Timestamp)
		g, ok := groups[key]
		if !ok {
			g = &hourGroup{start: hourStart(r.Timestamp)}
			groups[key] = g
		}
		g.temps = append(g.temps, r.Temperature)
		if r.Humidity != nil {
			g.humidity = append(g.humidity, *r.Humidity)
		}
	}

	logs := make([]models.EnvironmentLog, 0, len(groups))
	for _, g := range groups {
		temp := Round1(average(g.temps))
		log := models.EnvironmentLog{
			LocationID:  locationID,
			Timestamp:   g.start,
			Temperature: &temp,
			Source:      source,
		}
		if len(g.humidity) > 0 {
			h := Round1(average(g.humidity))
			log.Humidity = &h
		}
		logs = append(logs, log)
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Timestamp.Before(logs[j].Timestamp)
	})
	return logs
}

type dayGroup struct {
	temps    []float64
	humidity []float64
}

// AggregateToDaily computes min, max and average per calendar date, ascending by date.
func AggregateToDaily(records []models.RawEnvironmentRecord, locationID string, source models.DataSourceType) []models.DailyEnvironmentSummary {
	groups := map[string]*dayGroup{}
	for _, r := range records {
		key := dayKey(r.Timestamp)
		g, ok := groups[key]
		if !ok {
			g = &dayGroup{}
			groups[key] = g
		}
		g.temps = append(g.temps, r.Temperature)
		if r.Humidity != nil {
			g.humidity = append(g.humidity, *r.Humidity)
		}
	}

	summaries := make([]models.DailyEnvironmentSummary, 0, len(groups))
	for date, g := range groups {
		tMin, tMax := minMax(g.temps)
		s := models.DailyEnvironmentSummary{
			LocationID: locationID,
			Date:       date,
			TempMax:    tMax,
			TempMin:    tMin,
			TempAvg:    Round1(average(g.temps)),
			DataPoints: len(g.temps),
			Source:     source,
		}
		if len(g.humidity) > 0 {
			hMin, hMax := minMax(g.humidity)
			hAvg := Round1(average(g.humidity))
			s.HumidityMax, s.HumidityMin, s.HumidityAvg = &hMax, &hMin, &hAvg
		}
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Date < summaries[j].Date
	})
	return summaries
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
