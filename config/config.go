// Package config resolves runtime configuration from the environment and
// command-line flags. The serving settings follow the managed-platform
// convention of AIP_-prefixed environment variables so the same container
// runs unchanged inside and outside the deployment platform.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/healthsignals/mindgauge/pkg/errors"
)

// Environment variables read by the serving path.
const (
	EnvStorageURI   = "AIP_STORAGE_URI"
	EnvHTTPPort     = "AIP_HTTP_PORT"
	EnvHealthRoute  = "AIP_HEALTH_ROUTE"
	EnvPredictRoute = "AIP_PREDICT_ROUTE"
)

// Defaults applied when the environment does not say otherwise.
const (
	DefaultHTTPPort     = 8080
	DefaultHealthRoute  = "/health"
	DefaultPredictRoute = "/predict"
)

// Serve is the validated configuration of the inference server.
type Serve struct {
	Port         int
	HealthRoute  string
	PredictRoute string

	// StorageURI is the artifact location holding the model; empty means
	// the hard-coded default location.
	StorageURI string

	LogLevel string
}

// LoadServe reads the serving configuration from the environment.
func LoadServe() (*Serve, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault(EnvHTTPPort, DefaultHTTPPort)
	v.SetDefault(EnvHealthRoute, DefaultHealthRoute)
	v.SetDefault(EnvPredictRoute, DefaultPredictRoute)
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Serve{
		Port:         v.GetInt(EnvHTTPPort),
		HealthRoute:  v.GetString(EnvHealthRoute),
		PredictRoute: v.GetString(EnvPredictRoute),
		StorageURI:   v.GetString(EnvStorageURI),
		LogLevel:     v.GetString("LOG_LEVEL"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Serve) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.NewValueError("LoadServe", "port must be in (0, 65535]")
	}
	if !strings.HasPrefix(c.HealthRoute, "/") {
		return errors.NewValueError("LoadServe", "health route must start with /")
	}
	if !strings.HasPrefix(c.PredictRoute, "/") {
		return errors.NewValueError("LoadServe", "predict route must start with /")
	}
	if c.HealthRoute == c.PredictRoute {
		return errors.NewValueError("LoadServe", "health and predict routes must differ")
	}
	return nil
}
