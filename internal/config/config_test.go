package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func TestDecode_Defaults(t *testing.T) {
	cfg, err := decode(newViper())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "./data/plalog.db", cfg.Database.SQLite.Path)
	assert.Equal(t, 30*time.Minute, cfg.Import.SessionTTL)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "local", cfg.Export.Target)
}

func TestDecode_Validation(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]any
	}{
		{"unknown driver", map[string]any{"database.driver": "mysql"}},
		{"postgres without host", map[string]any{"database.driver": "postgres"}},
		{"redis without host", map[string]any{"redis.enabled": true}},
		{"bad timezone", map[string]any{"import.timezone": "Mars/Olympus"}},
		{"s3 without bucket", map[string]any{"export.target": "s3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := decode(v)
			assert.Error(t, err)
		})
	}
}

func TestImportConfig_Location(t *testing.T) {
	loc, err := ImportConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = ImportConfig{Timezone: "Asia/Tokyo"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())
}
