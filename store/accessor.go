package store

import (
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/healthsignals/mindgauge/boost"
	"github.com/healthsignals/mindgauge/pkg/errors"
	"github.com/healthsignals/mindgauge/pkg/log"
	"github.com/healthsignals/mindgauge/schema"
)

// DefaultModelLocation is where the serving path looks for a trained model
// when no storage URI is configured.
const DefaultModelLocation = "s3://mindgauge-artifacts/models/ment14d/"

// accessor states. A failed load returns to unloaded so a later request can
// retry.
type accessorState int

const (
	stateUnloaded accessorState = iota
	stateLoading
	stateLoaded
)

// LoaderFunc materializes a model from storage.
type LoaderFunc func() (*boost.Model, error)

// Accessor lazily loads the trained model exactly once under concurrent
// access. The first caller performs the load while the rest block; on
// failure every blocked caller gets the error and the accessor resets so the
// next request retries.
type Accessor struct {
	mu    sync.Mutex
	cond  *sync.Cond
	state accessorState
	model *boost.Model

	location string
	loader   LoaderFunc
}

// NewAccessor builds an accessor over the given artifact location. An empty
// location falls back to DefaultModelLocation.
func NewAccessor(location string) *Accessor {
	if location == "" {
		location = DefaultModelLocation
	}
	a := &Accessor{location: location}
	a.cond = sync.NewCond(&a.mu)
	a.loader = a.loadFromStorage
	return a
}

// NewAccessorWithLoader builds an accessor that materializes the model
// through the given loader instead of storage.
func NewAccessorWithLoader(loader LoaderFunc) *Accessor {
	a := &Accessor{location: "custom loader", loader: loader}
	a.cond = sync.NewCond(&a.mu)
	return a
}

// Model returns the loaded model, performing the load on first use.
func (a *Accessor) Model() (*boost.Model, error) {
	a.mu.Lock()
	for a.state == stateLoading {
		a.cond.Wait()
	}
	if a.state == stateLoaded {
		m := a.model
		a.mu.Unlock()
		return m, nil
	}
	a.state = stateLoading
	a.mu.Unlock()

	model, err := a.loader()

	a.mu.Lock()
	defer a.mu.Unlock()
	defer a.cond.Broadcast()
	if err != nil {
		a.state = stateUnloaded
		return nil, err
	}
	a.model = model
	a.state = stateLoaded
	return model, nil
}

// loadFromStorage locates the model artifact by extension, downloads it and
// decodes the ensemble.
func (a *Accessor) loadFromStorage() (*boost.Model, error) {
	logger := log.GetLoggerWithName("store")
	start := time.Now()

	uri, err := FindByExt(a.location, boost.ModelFileExt)
	if err != nil {
		return nil, errors.NewModelUnavailableError(a.location, "no model artifact found", err)
	}

	r, err := Open(uri)
	if err != nil {
		return nil, errors.NewModelUnavailableError(uri, "downloading model artifact", err)
	}
	defer r.Close()

	model, err := boost.LoadModel(r)
	if err != nil {
		return nil, errors.NewModelUnavailableError(uri, "decoding model artifact", err)
	}
	if model.NumFeatures != schema.TotalColumns {
		return nil, errors.NewModelUnavailableError(uri, "model feature count does not match schema", errors.NewDimensionError("loadFromStorage", schema.TotalColumns, model.NumFeatures, 1))
	}

	logger.Info("model loaded",
		log.ArtifactKey, uri,
		log.ClassesKey, model.NumClass,
		log.FeaturesKey, model.NumFeatures,
		log.DurationKey, humanize.RelTime(start, time.Now(), "", ""))
	return model, nil
}
