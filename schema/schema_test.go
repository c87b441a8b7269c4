package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthsignals/mindgauge/pkg/errors"
)

func fullRecord() map[string]float64 {
	record := make(map[string]float64, NumFeatures)
	for i, name := range FeatureNames {
		record[name] = float64(i + 1)
	}
	return record
}

func TestCanonicalizeOrdersByName(t *testing.T) {
	row, err := Canonicalize(fullRecord())
	require.NoError(t, err)
	require.Len(t, row, NumFeatures)

	for i := range FeatureNames {
		assert.Equal(t, float64(i+1), row[i])
	}
}

func TestCanonicalizeRejectsWrongArity(t *testing.T) {
	record := fullRecord()
	delete(record, "poorhlth")

	_, err := Canonicalize(record)
	require.Error(t, err)

	var clientErr *errors.ClientInputError
	require.True(t, errors.As(err, &clientErr))
	assert.Equal(t, "arity", clientErr.Contract)
}

func TestCanonicalizeRejectsUnknownFeature(t *testing.T) {
	record := fullRecord()
	delete(record, "poorhlth")
	record["not_a_feature"] = 1

	_, err := Canonicalize(record)
	require.Error(t, err)

	var clientErr *errors.ClientInputError
	require.True(t, errors.As(err, &clientErr))
	assert.Equal(t, "feature set", clientErr.Contract)
}

func TestDeriveCompositesValues(t *testing.T) {
	values := map[string]float64{
		"genhlth":  3,
		"physhlth": 10,
		"income3":  7,
		"educa":    4,
		"emtsuprt": 2,
		"addepev3": 1,
		"poorhlth": 6,
	}
	lookup := func(name string) (float64, bool) {
		v, ok := values[name]
		return v, ok
	}

	composites, err := DeriveComposites(lookup)
	require.NoError(t, err)
	require.Len(t, composites, NumComposites)

	assert.InDelta(t, 30.0, composites[0], 1e-12) // genhlth * physhlth
	assert.InDelta(t, 28.0, composites[1], 1e-12) // income3 * educa
	assert.InDelta(t, 3.0, composites[2], 1e-12)  // mean(emtsuprt, addepev3, poorhlth)
}

func TestDeriveCompositesDeterministic(t *testing.T) {
	row, err := Canonicalize(fullRecord())
	require.NoError(t, err)

	first, err := WithComposites(row)
	require.NoError(t, err)
	second, err := WithComposites(row)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDeriveCompositesMissingInput(t *testing.T) {
	_, err := DeriveComposites(func(name string) (float64, bool) {
		if name == "educa" {
			return 0, false
		}
		return 1, true
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "educa")
}

func TestWithCompositesShape(t *testing.T) {
	row, err := Canonicalize(fullRecord())
	require.NoError(t, err)

	full, err := WithComposites(row)
	require.NoError(t, err)
	require.Len(t, full, TotalColumns)

	// Raw features keep their positions; composites follow.
	assert.Equal(t, row, full[:NumFeatures])

	_, err = WithComposites(row[:10])
	assert.Error(t, err)
}

func TestLabelRoundTrip(t *testing.T) {
	tests := []struct {
		code  int
		dense int
	}{
		{code: 1, dense: 0},
		{code: 2, dense: 1},
		{code: 3, dense: 2},
		{code: 9, dense: 3},
	}
	for _, tt := range tests {
		dense, err := DenseLabel(tt.code)
		require.NoError(t, err)
		assert.Equal(t, tt.dense, dense)

		code, err := SparseLabel(dense)
		require.NoError(t, err)
		assert.Equal(t, tt.code, code)
	}
}

func TestDenseLabelRejectsUnknownCode(t *testing.T) {
	for _, code := range []int{0, 4, 7, -1} {
		_, err := DenseLabel(code)
		assert.Error(t, err, "code %d", code)
	}
	_, err := SparseLabel(NumClasses)
	assert.Error(t, err)
}

func TestFeatureNamesHaveNoDuplicates(t *testing.T) {
	seen := make(map[string]bool, NumFeatures)
	for _, name := range FeatureNames {
		assert.False(t, seen[name], "duplicate feature %s", name)
		seen[name] = true
	}
	assert.NotContains(t, seen, Target)
}
