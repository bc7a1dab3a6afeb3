package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":3000", c.EndpointAddr)
	assert.Equal(t, 12*time.Hour, c.TokenValidityDuration)
	assert.Equal(t, 256*1024, c.EvidenceInlineLimit)
	assert.Equal(t, "evidence", c.S3Bucket)
}

func Test_parseJson_OverlaysPresentFields(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(map[string]any{
		"endpoint_addr":           ":8080",
		"database_dsn":            "postgres://u:p@db:5432/reports",
		"token_validity_duration": "30m",
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))

	os.Args = []string{"testbin", "-config", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, ":8080", cfg.EndpointAddr)
	assert.Equal(t, "postgres://u:p@db:5432/reports", cfg.DatabaseDSN)
	assert.Equal(t, 30*time.Minute, cfg.TokenValidityDuration)
	assert.Equal(t, "secretKey", cfg.SecretKey, "absent fields keep defaults")
}

func Test_parseJson_InvalidJSONPanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{ nope`), 0o600))

	os.Args = []string{"testbin", "-config", path}

	cfg := &Config{}
	require.Panics(t, func() { parseJson(cfg) })
}
