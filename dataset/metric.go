/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package dataset

import (
	"fmt"
	"math"

	datarange "github.com/ilhamster/chartcore/data_range"
	"github.com/ilhamster/chartcore/dimension"
)

// table returns the named metric's table, checking that the metric exists,
// that it is accessed with the receiver's dimensionality, and that it is of
// the expected kind.
func (ds *Dataset[Item, X, Y]) table(name string, twoD, arrayLike bool) (*metricTable, error) {
	m, ok := ds.metrics[name]
	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownMetric, name)
	}
	if twoD != ds.Is2D() {
		if twoD {
			return nil, fmt.Errorf("%w: two-dimensional access to one-dimensional metric '%s'", ErrDimensionMismatch, name)
		}
		return nil, fmt.Errorf("%w: one-dimensional access to two-dimensional metric '%s'", ErrDimensionMismatch, name)
	}
	if arrayLike != m.ArrayLike() {
		if arrayLike {
			return nil, fmt.Errorf("%w: array access to scalar metric '%s'", ErrMetricKindMismatch, name)
		}
		return nil, fmt.Errorf("%w: scalar access to array-like metric '%s'", ErrMetricKindMismatch, name)
	}
	return ds.cur.tables[name], nil
}

// cell resolves the provided indices into table coordinates.
func (ds *Dataset[Item, X, Y]) cell(name string, indices []int) (xi, yi int, err error) {
	want := 1
	if ds.Is2D() {
		want = 2
	}
	if len(indices) != want {
		return 0, 0, fmt.Errorf("%w: metric '%s' is indexed by %d dimension(s), got %d",
			ErrDimensionMismatch, name, want, len(indices))
	}
	xi = indices[0]
	if xi < 0 || xi >= len(ds.cur.xs) {
		return 0, 0, fmt.Errorf("x index %d out of range [0, %d)", xi, len(ds.cur.xs))
	}
	if want == 2 {
		yi = indices[1]
		if yi < 0 || yi >= len(ds.cur.ys) {
			return 0, 0, fmt.Errorf("y index %d out of range [0, %d)", yi, len(ds.cur.ys))
		}
	}
	return xi, yi, nil
}

// MetricValue returns the value of the named scalar metric at the provided
// X coordinate of a one-dimensional dataset, or NaN if there is no
// observation at that coordinate.
func (ds *Dataset[Item, X, Y]) MetricValue(name string, x X) (float64, error) {
	t, err := ds.table(name, false, false)
	if err != nil {
		return 0, err
	}
	xi, ok := ds.cur.xIdx[dimension.KeyOf(x)]
	if !ok {
		return math.NaN(), nil
	}
	return t.scalars[xi][0], nil
}

// MetricValueForDimensions returns the value of the named scalar metric at
// the provided (X, Y) coordinate of a two-dimensional dataset, or NaN if
// there is no observation at that coordinate.
func (ds *Dataset[Item, X, Y]) MetricValueForDimensions(name string, x X, y Y) (float64, error) {
	t, err := ds.table(name, true, false)
	if err != nil {
		return 0, err
	}
	xi, xok := ds.cur.xIdx[dimension.KeyOf(x)]
	yi, yok := ds.cur.yIdx[dimension.KeyOf(y)]
	if !xok || !yok {
		return math.NaN(), nil
	}
	return t.scalars[xi][yi], nil
}

// MetricValues returns the sorted values of the named array-like metric at
// the provided X coordinate of a one-dimensional dataset, or nil if there is
// no observation at that coordinate.
func (ds *Dataset[Item, X, Y]) MetricValues(name string, x X) ([]float64, error) {
	t, err := ds.table(name, false, true)
	if err != nil {
		return nil, err
	}
	xi, ok := ds.cur.xIdx[dimension.KeyOf(x)]
	if !ok {
		return nil, nil
	}
	return append([]float64(nil), t.arrays[xi][0]...), nil
}

// MetricValuesForDimensions returns the sorted values of the named
// array-like metric at the provided (X, Y) coordinate of a two-dimensional
// dataset, or nil if there is no observation at that coordinate.
func (ds *Dataset[Item, X, Y]) MetricValuesForDimensions(name string, x X, y Y) ([]float64, error) {
	t, err := ds.table(name, true, true)
	if err != nil {
		return nil, err
	}
	xi, xok := ds.cur.xIdx[dimension.KeyOf(x)]
	yi, yok := ds.cur.yIdx[dimension.KeyOf(y)]
	if !xok || !yok {
		return nil, nil
	}
	return append([]float64(nil), t.arrays[xi][yi]...), nil
}

// MetricValueAt returns the value of the named scalar metric at the provided
// indices: one (X) for one-dimensional datasets, two (X, Y) for
// two-dimensional ones.
func (ds *Dataset[Item, X, Y]) MetricValueAt(name string, indices ...int) (float64, error) {
	t, err := ds.table(name, len(indices) == 2, false)
	if err != nil {
		return 0, err
	}
	xi, yi, err := ds.cell(name, indices)
	if err != nil {
		return 0, err
	}
	return t.scalars[xi][yi], nil
}

// MetricValuesAt returns the sorted values of the named array-like metric at
// the provided indices.
func (ds *Dataset[Item, X, Y]) MetricValuesAt(name string, indices ...int) ([]float64, error) {
	t, err := ds.table(name, len(indices) == 2, true)
	if err != nil {
		return nil, err
	}
	xi, yi, err := ds.cell(name, indices)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), t.arrays[xi][yi]...), nil
}

// MetricRange returns the smallest range covering every value of the named
// metric, scalar or array-like.  NaN values are ignored; the range is empty
// if there are no values.  Ranges are cached until the next mutation.
func (ds *Dataset[Item, X, Y]) MetricRange(name string) (datarange.NumericRange, error) {
	if r, ok := ds.ranges[name]; ok {
		return r, nil
	}
	m, ok := ds.metrics[name]
	if !ok {
		return datarange.Empty[float64](), fmt.Errorf("%w '%s'", ErrUnknownMetric, name)
	}
	ret := datarange.Empty[float64]()
	t, ok := ds.cur.tables[name]
	if !ok {
		// Cleared datasets have no tables.
		return ret, nil
	}
	include := func(v float64) {
		if !math.IsNaN(v) {
			ret = ret.Include(v)
		}
	}
	if m.ArrayLike() {
		for _, row := range t.arrays {
			for _, vals := range row {
				for _, v := range vals {
					include(v)
				}
			}
		}
	} else {
		for _, row := range t.scalars {
			for _, v := range row {
				include(v)
			}
		}
	}
	ds.ranges[name] = ret
	return ret, nil
}
