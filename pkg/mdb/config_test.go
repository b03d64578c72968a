package mdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{BaseURL: "http://localhost:22338", UserID: "u"}
	cfg.applyDefaults()

	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, defaultBatchID, cfg.BatchID)
	require.NotNil(t, cfg.TLSVerify)
	assert.True(t, *cfg.TLSVerify)
	assert.NotEmpty(t, cfg.CorrelationID)
	assert.NotNil(t, cfg.Logger)
}

func TestConfigForceSchemeDefault(t *testing.T) {
	cfg := &Config{BaseURL: "http://x", UserID: "u", ForceHost: "localhost:8080"}
	cfg.applyDefaults()
	assert.Equal(t, "http", cfg.ForceScheme)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{BaseURL: "http://localhost:22338", UserID: "u"}, false},
		{"valid https", Config{BaseURL: "https://mdb.example", UserID: "u"}, false},
		{"missing base URL", Config{UserID: "u"}, true},
		{"missing user", Config{BaseURL: "http://localhost:22338"}, true},
		{"bad scheme", Config{BaseURL: "ftp://example", UserID: "u"}, true},
		{"negative timeout", Config{BaseURL: "http://x", UserID: "u", Timeout: -time.Second}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigHeaders(t *testing.T) {
	cfg := &Config{
		UserID:        "anne",
		CorrelationID: "corr-1",
		BatchID:       "batch-1",
	}
	h := cfg.headers()
	assert.Equal(t, "anne", h.Get(HeaderUserID))
	assert.Equal(t, "corr-1", h.Get(HeaderTransaction))
	assert.Equal(t, "batch-1", h.Get(HeaderBatch))
	assert.Empty(t, h.Get(HeaderSourceSystem))

	cfg.SourceSystem = "potion"
	assert.Equal(t, "potion", cfg.headers().Get(HeaderSourceSystem))
}
