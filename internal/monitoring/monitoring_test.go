package monitoring

import (
	"testing"
	"time"

	"github.com/plalog/plalog/server/hub/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestService_ObserveImport(t *testing.T) {
	s := NewService(prometheus.NewRegistry())

	s.ObserveImport("SwitchBot", "success", &models.ImportResult{
		Success: true, HourlyRecords: 5, Skipped: 2, DailyRecords: 1,
	}, 40*time.Millisecond)
	s.ObserveImport("unknown", "unsupported_format", &models.ImportResult{}, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.importRuns.WithLabelValues("SwitchBot", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.importRuns.WithLabelValues("unknown", "unsupported_format")))
	assert.Equal(t, 5.0, testutil.ToFloat64(s.importRows.WithLabelValues("hourly_saved")))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.importRows.WithLabelValues("hourly_skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.importRows.WithLabelValues("daily_saved")))
}

func TestService_RecordEvent(t *testing.T) {
	s := NewService(prometheus.NewRegistry())
	s.RecordEvent("location.deleted", map[string]string{"id": "loc-1"})
	s.RecordEvent("location.deleted", map[string]string{"id": "loc-2"})
	assert.Equal(t, 2.0, testutil.ToFloat64(s.events.WithLabelValues("location.deleted")))
}
