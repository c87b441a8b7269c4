// Package dataset loads the labeled survey table and prepares it for
// training: composite-feature augmentation, stratified splitting, and
// inverse-frequency sample weighting.
package dataset

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/healthsignals/mindgauge/pkg/errors"
	"github.com/healthsignals/mindgauge/schema"
)

// Table is an ordered collection of rows in canonical column order. Before
// Augment the columns are exactly schema.FeatureNames; after Augment the
// three composite columns follow. Labels, when present, hold the sparse
// target codes in row order.
type Table struct {
	Columns []string
	Rows    [][]float64
	Labels  []int
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// Matrix converts the rows into a dense matrix for the booster.
func (t *Table) Matrix() *mat.Dense {
	if len(t.Rows) == 0 {
		return &mat.Dense{}
	}
	cols := len(t.Columns)
	data := make([]float64, 0, len(t.Rows)*cols)
	for _, row := range t.Rows {
		data = append(data, row...)
	}
	return mat.NewDense(len(t.Rows), cols, data)
}

// DenseLabels returns the label column remapped to [0, NumClasses).
func (t *Table) DenseLabels() ([]int, error) {
	if t.Labels == nil {
		return nil, errors.NewValueError("DenseLabels", "table has no label column")
	}
	return schema.DenseLabels(t.Labels)
}

// Augment appends the composite columns to every row. It fails if the table
// is not in raw canonical shape.
func (t *Table) Augment() error {
	if len(t.Columns) != schema.NumFeatures {
		return errors.NewDimensionError("Augment", schema.NumFeatures, len(t.Columns), 1)
	}
	for i, row := range t.Rows {
		augmented, err := schema.WithComposites(row)
		if err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
		t.Rows[i] = augmented
	}
	t.Columns = append(append([]string{}, schema.FeatureNames...), schema.CompositeNames...)
	return nil
}

// Load reads a labeled CSV feature table. The header must contain every
// canonical feature name plus the target column; column order in the file is
// irrelevant because columns are projected by name. Values are integer-coded
// categories or counts, parsed strictly.
func Load(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}

	position := make(map[string]int, len(header))
	for i, name := range header {
		position[strings.TrimSpace(strings.ToLower(name))] = i
	}

	fieldFor := make([]int, schema.NumFeatures)
	for i, name := range schema.FeatureNames {
		pos, ok := position[name]
		if !ok {
			return nil, errors.NewValueError("Load", "missing required column "+name)
		}
		fieldFor[i] = pos
	}
	targetPos, ok := position[schema.Target]
	if !ok {
		return nil, errors.NewValueError("Load", "missing target column "+schema.Target)
	}

	table := &Table{Columns: append([]string{}, schema.FeatureNames...)}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}

		row := make([]float64, schema.NumFeatures)
		for i, pos := range fieldFor {
			v, err := strconv.Atoi(strings.TrimSpace(record[pos]))
			if err != nil {
				return nil, errors.Wrapf(err, "line %d, column %s", line, schema.FeatureNames[i])
			}
			row[i] = float64(v)
		}
		label, err := strconv.Atoi(strings.TrimSpace(record[targetPos]))
		if err != nil {
			return nil, errors.Wrapf(err, "line %d, column %s", line, schema.Target)
		}

		table.Rows = append(table.Rows, row)
		table.Labels = append(table.Labels, label)
	}

	if len(table.Rows) == 0 {
		return nil, errors.ErrEmptyData
	}
	return table, nil
}
