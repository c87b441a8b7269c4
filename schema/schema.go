// Package schema defines the canonical feature schema for the mental-health
// survey classifier: the fixed ordered set of raw input features, the sparse
// target label codec, and the derived composite columns.
//
// Every other package derives ordering, arity, and column positions from the
// constants here. There is deliberately no second copy of the feature list
// anywhere in the repository; the inference arity check and the canonical
// ordering cannot drift apart because both read FeatureNames.
package schema

import (
	"github.com/healthsignals/mindgauge/pkg/errors"
)

// Target is the label column of the training table. It is a training-time
// concept only and is never accepted as an inference feature.
const Target = "ment14d"

// FeatureNames is the fixed ordered list of raw input features. Names are
// the lowercased survey column codes with the leading underscore stripped
// (the survey's `_STATE` is `state` here). Order matters: the trained model's
// feature vector uses exactly this order, followed by the composites.
var FeatureNames = []string{
	"poorhlth", "physhlth", "genhlth", "diffwalk", "diffalon",
	"checkup1", "diffdres", "addepev3", "acedeprs", "sdlonely", "lsatisfy",
	"emtsuprt", "decide", "cdsocia1", "cddiscu1", "cimemlo1", "smokday2",
	"alcday4", "marijan1", "exeroft1", "usenow3", "firearm5", "income3",
	"educa", "employ1", "sex", "marital", "adult", "rrclass3", "qstlang",
	"state", "veteran3", "medcost1", "sdhbills", "sdhemply", "sdhfood1",
	"sdhstre1", "sdhutils", "sdhtrnsp", "cdhous1", "foodstmp", "pregnant",
	"asthnow", "havarth4", "chcscnc1", "chcocnc1", "diabete4", "chccopd3",
	"cholchk3", "bpmeds1", "bphigh6", "cvdstrk3", "cvdcrhd4", "chckdny2",
	"cholmed3",
}

// NumFeatures is the required arity of every submitted record.
var NumFeatures = len(FeatureNames)

// featureIndex maps a feature name to its canonical position.
var featureIndex = func() map[string]int {
	idx := make(map[string]int, len(FeatureNames))
	for i, name := range FeatureNames {
		idx[name] = i
	}
	return idx
}()

// Index returns the canonical position of a feature name.
func Index(name string) (int, bool) {
	i, ok := featureIndex[name]
	return i, ok
}

// Canonicalize validates a name-keyed record and returns its values in
// canonical order. The record must supply every feature name exactly once
// and nothing else; a missing or unknown key is an error, never defaulted.
func Canonicalize(record map[string]float64) ([]float64, error) {
	if len(record) != NumFeatures {
		return nil, errors.NewClientInputErrorf("arity",
			"expected %d feature values, got %d", NumFeatures, len(record))
	}
	row := make([]float64, NumFeatures)
	for name, value := range record {
		i, ok := featureIndex[name]
		if !ok {
			return nil, errors.NewClientInputErrorf("feature set",
				"unknown feature %q", name)
		}
		row[i] = value
	}
	// Length matched and every key resolved, so all names are present.
	return row, nil
}
