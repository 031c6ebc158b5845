package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, "s3", cfg.StorageProvider)
	assert.Equal(t, "http://localhost:8000", cfg.ClassifierURL)
	assert.Equal(t, 30*time.Second, cfg.ClassifierTimeout)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.AllowedOrigins)
}

func TestLoadParsesDurationsAndLists(t *testing.T) {
	t.Setenv("CLASSIFIER_TIMEOUT", "5s")
	t.Setenv("STORAGE_TIMEOUT", "12")
	t.Setenv("ALLOWED_ORIGINS", " http://a.example , ,http://b.example")
	t.Setenv("STORE_DRIVER", "MONGO")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.ClassifierTimeout)
	assert.Equal(t, 12*time.Second, cfg.StorageTimeout)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "mongo", cfg.StoreDriver)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNonPositiveGaugeInterval(t *testing.T) {
	for _, v := range []string{"0", "0s", "-5s"} {
		t.Setenv("STATUS_GAUGE_INTERVAL", v)

		_, err := Load()
		require.Error(t, err, v)
		assert.Contains(t, err.Error(), "STATUS_GAUGE_INTERVAL")
	}
}

func TestProductionRequiresSecrets(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_URL", "postgres://db")
	t.Setenv("BUCKET_NAME", "complaints")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	_, err = Load()
	assert.NoError(t, err)
}

func TestLoadDashboardTrimsBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://api.internal:8001/")

	cfg := LoadDashboard()
	assert.Equal(t, "http://api.internal:8001", cfg.APIBaseURL)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "en", cfg.DefaultLang)
}
