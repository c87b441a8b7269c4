package store

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/healthsignals/mindgauge/boost"
	"github.com/healthsignals/mindgauge/pkg/errors"
	"github.com/healthsignals/mindgauge/schema"
)

// tinyModel trains a minimal ensemble with the serving feature width.
func tinyModel(t *testing.T) *boost.Model {
	t.Helper()

	rows := 40
	X := mat.NewDense(rows, schema.TotalColumns, nil)
	labels := make([]int, rows)
	for i := 0; i < rows; i++ {
		labels[i] = i % schema.NumClasses
		X.Set(i, 0, float64(labels[i]*10+i%3))
		X.Set(i, 1, float64(i%7))
	}

	model, err := boost.Train(X, labels, nil, boost.Params{
		NumRounds:    5,
		MaxDepth:     3,
		LearningRate: 0.3,
		NumClass:     schema.NumClasses,
		RegLambda:    1,
		Seed:         1,
	})
	require.NoError(t, err)
	return model
}

func TestAccessorLoadsExactlyOnce(t *testing.T) {
	model := tinyModel(t)

	var loads int64
	started := make(chan struct{})
	accessor := NewAccessorWithLoader(func() (*boost.Model, error) {
		atomic.AddInt64(&loads, 1)
		<-started // hold the load open until every caller is in flight
		return model, nil
	})

	const callers = 16
	var wg sync.WaitGroup
	results := make([]*boost.Model, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = accessor.Model()
		}(i)
	}
	close(started)
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&loads))
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, model, results[i])
	}
}

func TestAccessorRetriesAfterFailure(t *testing.T) {
	model := tinyModel(t)

	var loads int64
	accessor := NewAccessorWithLoader(func() (*boost.Model, error) {
		if atomic.AddInt64(&loads, 1) == 1 {
			return nil, errors.New("storage down")
		}
		return model, nil
	})

	_, err := accessor.Model()
	require.Error(t, err)

	got, err := accessor.Model()
	require.NoError(t, err)
	assert.Same(t, model, got)
	assert.Equal(t, int64(2), atomic.LoadInt64(&loads))

	// Loaded state is sticky: no further loads.
	_, err = accessor.Model()
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&loads))
}

func TestAccessorLoadsFromLocalDirectory(t *testing.T) {
	model := tinyModel(t)

	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "ment14d"+boost.ModelFileExt))
	require.NoError(t, err)
	require.NoError(t, model.Save(f))
	require.NoError(t, f.Close())

	// A decoy that must not match the extension.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	accessor := NewAccessor(dir)
	got, err := accessor.Model()
	require.NoError(t, err)
	assert.Equal(t, model.NumFeatures, got.NumFeatures)
	assert.Equal(t, model.NumClass, got.NumClass)
}

func TestAccessorFailsWithoutArtifact(t *testing.T) {
	accessor := NewAccessor(t.TempDir())
	_, err := accessor.Model()
	require.Error(t, err)

	var unavailable *errors.ModelUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.True(t, errors.Is(err, errors.ErrNoArtifact))
}

func TestAccessorRejectsWrongFeatureWidth(t *testing.T) {
	// A model trained on the wrong width must be refused at load time, not
	// at the first prediction.
	X := mat.NewDense(20, 3, nil)
	labels := make([]int, 20)
	for i := range labels {
		labels[i] = i % 2
		X.Set(i, 0, float64(i))
	}
	narrow, err := boost.Train(X, labels, nil, boost.Params{
		NumRounds: 2, MaxDepth: 2, LearningRate: 0.3, NumClass: 2, RegLambda: 1,
	})
	require.NoError(t, err)

	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "narrow"+boost.ModelFileExt))
	require.NoError(t, err)
	require.NoError(t, narrow.Save(f))
	require.NoError(t, f.Close())

	_, err = NewAccessor(dir).Model()
	require.Error(t, err)

	var unavailable *errors.ModelUnavailableError
	require.True(t, errors.As(err, &unavailable))
}

func TestDefaultLocationFallback(t *testing.T) {
	accessor := NewAccessor("")
	assert.Equal(t, DefaultModelLocation, accessor.location)
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "s3://bucket/models/a.gob", Join("s3://bucket/models/", "a.gob"))
	assert.Equal(t, "s3://bucket/models/a.gob", Join("s3://bucket/models", "a.gob"))
	assert.Equal(t, filepath.Join("/tmp/out", "a.gob"), Join("/tmp/out", "a.gob"))
}

func TestCreateIsAtomicLocally(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "artifact.gob")

	w, err := Create(dest)
	require.NoError(t, err)
	_, err = w.Write([]byte("payload"))
	require.NoError(t, err)

	// Until Close the destination must not exist.
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))

	require.NoError(t, w.Close())
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestAbortDiscardsPartialArtifact(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "ment14d"+boost.ModelFileExt)

	// A producer that fails mid-write aborts; nothing may appear at the
	// final name, and no spool file may linger for the next listing.
	w, err := Create(dest)
	require.NoError(t, err)
	_, err = w.Write([]byte("half a model"))
	require.NoError(t, err)
	require.NoError(t, w.Abort())

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
