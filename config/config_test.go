package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServeDefaults(t *testing.T) {
	cfg, err := LoadServe()
	require.NoError(t, err)

	assert.Equal(t, DefaultHTTPPort, cfg.Port)
	assert.Equal(t, DefaultHealthRoute, cfg.HealthRoute)
	assert.Equal(t, DefaultPredictRoute, cfg.PredictRoute)
	assert.Empty(t, cfg.StorageURI)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadServeReadsEnvironment(t *testing.T) {
	t.Setenv(EnvHTTPPort, "9000")
	t.Setenv(EnvPredictRoute, "/v1/predict")
	t.Setenv(EnvHealthRoute, "/v1/health")
	t.Setenv(EnvStorageURI, "s3://bucket/models/")

	cfg, err := LoadServe()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/v1/predict", cfg.PredictRoute)
	assert.Equal(t, "/v1/health", cfg.HealthRoute)
	assert.Equal(t, "s3://bucket/models/", cfg.StorageURI)
}

func TestLoadServeValidates(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "port out of range", key: EnvHTTPPort, value: "70000"},
		{name: "port not a number", key: EnvHTTPPort, value: "-1"},
		{name: "route without slash", key: EnvPredictRoute, value: "predict"},
		{name: "routes collide", key: EnvPredictRoute, value: DefaultHealthRoute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadServe()
			assert.Error(t, err)
		})
	}
}
