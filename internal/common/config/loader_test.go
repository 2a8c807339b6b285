package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// ==========================
// Defaults
// ==========================

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: medadmit-workers
workers:
  generate-quick-prediction:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, ReferenceSourceEmbedded, cfg.Reference.Source)
	assert.Equal(t, 0.6, cfg.Model.UncertaintyMargin)
	assert.Equal(t, 16, cfg.Model.TypicalApplications)
	assert.Equal(t, 15*time.Minute, cfg.Cache.TTLDuration())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Camunda.Enabled)
	assert.Equal(t, 10, cfg.Database.Redis.PoolSize)
	assert.Equal(t, 500, cfg.Database.Redis.ReadTimeout)

	w := cfg.Workers["generate-quick-prediction"]
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 30000, w.Timeout)
	assert.Equal(t, 3, w.MaxRetries)
}

func TestLoadFromFile_ZeroUncertaintyMargin(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, `
model:
  uncertainty_margin: 0
`))
	require.NoError(t, err)
	assert.Zero(t, cfg.Model.UncertaintyMargin)

	cfg, err = LoadFromFile(writeConfig(t, `
model:
  uncertainty_margin: 1.1
`))
	require.NoError(t, err)
	assert.Equal(t, 1.1, cfg.Model.UncertaintyMargin)

	t.Setenv("MODEL_UNCERTAINTY_MARGIN", "0")
	cfg, err = LoadFromFile(writeConfig(t, `
app:
  name: medadmit-workers
`))
	require.NoError(t, err)
	assert.Zero(t, cfg.Model.UncertaintyMargin)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("MEDADMIT_TEST_PG_HOST", "db.internal")
	path := writeConfig(t, `
reference:
  source: postgres
database:
  postgres:
    host: ${MEDADMIT_TEST_PG_HOST}
    database: admissions
    user: scorer
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Contains(t, cfg.Database.Postgres.GetDSN(), "host=db.internal")
	assert.Contains(t, cfg.Database.Postgres.GetDSN(), "sslmode=disable")
}

// ==========================
// Validation
// ==========================

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "camunda enabled without broker",
			body: `
camunda:
  enabled: true
`,
			wantErr: "camunda.broker_address",
		},
		{
			name: "file source without dataset path",
			body: `
reference:
  source: file
`,
			wantErr: "reference.dataset_path",
		},
		{
			name: "postgres source without host",
			body: `
reference:
  source: postgres
`,
			wantErr: "database.postgres.host",
		},
		{
			name: "unknown source",
			body: `
reference:
  source: s3
`,
			wantErr: "reference.source",
		},
		{
			name: "negative margin",
			body: `
model:
  uncertainty_margin: -0.2
`,
			wantErr: "uncertainty_margin",
		},
		{
			name: "cache without redis",
			body: `
cache:
  enabled: true
`,
			wantErr: "database.redis.address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestWorkerHelpers(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"normalize-applicant": {Enabled: false, MaxJobsActive: 2},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "normalize-applicant"))
	assert.True(t, IsWorkerEnabled(cfg, "calculate-school-probability"))
	assert.Equal(t, 2, GetWorkerConfig(cfg, "normalize-applicant").MaxJobsActive)
	assert.Equal(t, 5, GetWorkerConfig(cfg, "unknown").MaxJobsActive)
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, "0.0.0.0:9090", ServerConfig{Host: "0.0.0.0", Port: 9090}.Address())
}
