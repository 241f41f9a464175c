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
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	datarange "github.com/ilhamster/chartcore/data_range"
	"github.com/ilhamster/chartcore/dimension"
)

type named struct {
	name  string
	value float64
}

type sample struct {
	at      float64
	series  string
	value   float64
	samples []float64
}

func namedOpts() Options[named, string, string] {
	return Options[named, string, string]{
		X: func(n named) string { return n.name },
		Metrics: []Metric[named]{{
			Name:  "value",
			Value: func(n named) float64 { return n.value },
		}},
	}
}

func sampleOpts(twoD bool) Options[sample, float64, string] {
	opts := Options[sample, float64, string]{
		X: func(s sample) float64 { return s.at },
		Metrics: []Metric[sample]{{
			Name:  "value",
			Value: func(s sample) float64 { return s.value },
		}, {
			Name:   "samples",
			Values: func(s sample) []float64 { return s.samples },
		}},
	}
	if twoD {
		opts.Y = func(s sample) string { return s.series }
	}
	return opts
}

func primitives[T dimension.Raw](vals []dimension.Value[T]) []any {
	ret := make([]any, len(vals))
	for i, v := range vals {
		ret[i] = v.Primitive()
	}
	return ret
}

func pairs[X, Y dimension.Raw](ps []Pair[X, Y]) [][2]any {
	ret := make([][2]any, len(ps))
	for i, p := range ps {
		ret[i] = [2]any{p.X.Primitive(), p.Y.Primitive()}
	}
	return ret
}

// checkIndices asserts that vals carry dense indices 0..N-1 in order.
func checkIndices[T dimension.Raw](t *testing.T, vals []dimension.Value[T]) {
	t.Helper()
	for i, v := range vals {
		if v.Index() != i {
			t.Errorf("value %v at position %d has index %d", v, i, v.Index())
		}
	}
}

func TestUpdateScenario(t *testing.T) {
	ds, err := New(namedOpts(), named{"first", 10}, named{"second", 20})
	require.NoError(t, err)
	var got []ChangeEvent[string, string]
	ds.OnChanged(func(ev ChangeEvent[string, string]) {
		got = append(got, ev)
	})
	require.NoError(t, ds.Update(named{"first", 10}, named{"third", 30}))
	require.Len(t, got, 1)
	ev := got[0]
	if diff := cmp.Diff([]any{"first"}, primitives(ev.X.Updated)); diff != "" {
		t.Errorf("updated diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{"third"}, primitives(ev.X.Added)); diff != "" {
		t.Errorf("added diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{"second"}, primitives(ev.X.Deleted)); diff != "" {
		t.Errorf("deleted diff (-want +got):\n%s", diff)
	}
	assert.True(t, ev.X.IsUpdated(dimension.StringKey("first")))
	assert.True(t, ev.X.IsAdded(dimension.StringKey("third")))
	assert.True(t, ev.X.IsDeleted(dimension.StringKey("second")))
	assert.False(t, ev.X.IsAdded(dimension.StringKey("first")))
	assert.Nil(t, ev.Y)
	assert.Nil(t, ev.Cells)

	v, err := ds.MetricValue("value", "third")
	require.NoError(t, err)
	assert.Equal(t, 30.0, v)
	v, err = ds.MetricValue("value", "second")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v), "deleted coordinate should have no value")
}

type reading struct {
	at, depth, value float64
}

func readingOpts() Options[reading, float64, float64] {
	return Options[reading, float64, float64]{
		X: func(r reading) float64 { return r.at },
		Y: func(r reading) float64 { return r.depth },
		Metrics: []Metric[reading]{{
			Name:  "value",
			Value: func(r reading) float64 { return r.value },
		}},
	}
}

func TestMonotonicity(t *testing.T) {
	initial := []reading{{0, 1, 1}, {25, 2, 2}, {100, 10, 3}}
	for _, test := range []struct {
		description string
		update      []reading
		wantErr     bool
		wantAxis    string
		wantCoord   float64
		wantMax     float64
	}{{
		description: "new x coordinate below the previous maximum",
		update:      []reading{{0, 1, 1}, {50, 2, 2}, {100, 10, 3}},
		wantErr:     true,
		wantAxis:    "x",
		wantCoord:   50,
		wantMax:     100,
	}, {
		description: "new y coordinate below the previous maximum",
		update:      []reading{{0, 1, 1}, {25, 5, 2}, {100, 10, 3}},
		wantErr:     true,
		wantAxis:    "y",
		wantCoord:   5,
		wantMax:     10,
	}, {
		description: "overwriting existing coordinates below the maximum",
		update:      []reading{{0, 2, 4}, {25, 1, 5}, {100, 10, 6}},
	}, {
		description: "new coordinates above the maximum",
		update:      []reading{{100, 10, 1}, {150, 20, 2}},
	}} {
		t.Run(test.description, func(t *testing.T) {
			ds, err := New(readingOpts(), initial...)
			require.NoError(t, err)
			fired := 0
			ds.OnChanged(func(ChangeEvent[float64, float64]) { fired++ })
			beforeX, beforeY := primitives(ds.XValues()), primitives(ds.YValues())
			err = ds.Update(test.update...)
			if !test.wantErr {
				require.NoError(t, err)
				assert.Equal(t, 1, fired)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMonotonicityViolation))
			var me *MonotonicityError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, test.wantAxis, me.Axis)
			assert.Equal(t, test.wantCoord, me.Coordinate.Num())
			assert.Equal(t, test.wantMax, me.Max.Num())
			assert.Equal(t, 0, fired, "no event may fire on a rejected update")
			if diff := cmp.Diff(beforeX, primitives(ds.XValues())); diff != "" {
				t.Errorf("rejected update mutated x (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(beforeY, primitives(ds.YValues())); diff != "" {
				t.Errorf("rejected update mutated y (-want +got):\n%s", diff)
			}
			assert.Equal(t, initial, ds.Elements())
		})
	}
}

func TestInvalidCoordinates(t *testing.T) {
	nan := math.NaN()
	for _, test := range []struct {
		description string
		update      []reading
		wantAxis    string
	}{{
		description: "NaN x",
		update:      []reading{{5, 1, 1}, {nan, 1, 99}},
		wantAxis:    "x",
	}, {
		description: "NaN y",
		update:      []reading{{5, 1, 1}, {6, nan, 99}},
		wantAxis:    "y",
	}, {
		description: "lone NaN x",
		update:      []reading{{nan, 1, 99}},
		wantAxis:    "x",
	}} {
		t.Run(test.description, func(t *testing.T) {
			ds, err := New(readingOpts(), reading{5, 1, 1})
			require.NoError(t, err)
			fired := 0
			ds.OnChanged(func(ChangeEvent[float64, float64]) { fired++ })
			err = ds.Update(test.update...)
			require.ErrorIs(t, err, ErrInvalidCoordinate)
			assert.Contains(t, err.Error(), test.wantAxis+" coordinate NaN")
			assert.Equal(t, 0, fired)
			v, err := ds.MetricValueForDimensions("value", 5, 1)
			require.NoError(t, err)
			assert.Equal(t, 1.0, v, "rejected update overwrote an existing value")
		})
	}
	_, err := New(sampleOpts(false), sample{at: 5, value: 1}, sample{at: nan, value: 99})
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}

func TestMonotonicityExemptsStrings(t *testing.T) {
	ds, err := New(namedOpts(), named{"m", 1}, named{"z", 2})
	require.NoError(t, err)
	require.NoError(t, ds.Update(named{"a", 3}, named{"z", 2}))
	if diff := cmp.Diff([]any{"a", "z"}, primitives(ds.XValues())); diff != "" {
		t.Errorf("XValues diff (-want +got):\n%s", diff)
	}
}

func TestReplaceAvoidsMonotonicity(t *testing.T) {
	ds, err := New(sampleOpts(false), sample{at: 100})
	require.NoError(t, err)
	var events []ChangeEvent[float64, string]
	ds.OnChanged(func(ev ChangeEvent[float64, string]) { events = append(events, ev) })
	require.NoError(t, ds.Replace(sample{at: 50}))
	require.Len(t, events, 2)
	if diff := cmp.Diff([]any{100.0}, primitives(events[0].X.Deleted)); diff != "" {
		t.Errorf("clear event diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{50.0}, primitives(events[1].X.Added)); diff != "" {
		t.Errorf("update event diff (-want +got):\n%s", diff)
	}
}

func TestSortingAndIndexDensity(t *testing.T) {
	for _, test := range []struct {
		description string
		sorting     dimension.Sorting
		initial     []string
		update      []string
		want        []any
	}{{
		description: "ascending",
		sorting:     dimension.Ascending,
		initial:     []string{"c", "a", "b"},
		update:      []string{"d", "a", "c"},
		want:        []any{"a", "c", "d"},
	}, {
		description: "descending",
		sorting:     dimension.Descending,
		initial:     []string{"c", "a", "b"},
		update:      []string{"d", "a", "c"},
		want:        []any{"d", "c", "a"},
	}, {
		description: "unordered keeps survivors in place and appends arrivals",
		sorting:     dimension.Unordered,
		initial:     []string{"c", "a", "b"},
		update:      []string{"d", "a", "c"},
		want:        []any{"c", "a", "d"},
	}} {
		t.Run(test.description, func(t *testing.T) {
			opts := namedOpts()
			opts.XSorting = test.sorting
			toNamed := func(names []string) []named {
				ret := make([]named, len(names))
				for i, n := range names {
					ret[i] = named{name: n, value: float64(i)}
				}
				return ret
			}
			ds, err := New(opts, toNamed(test.initial)...)
			require.NoError(t, err)
			checkIndices(t, ds.XValues())
			require.NoError(t, ds.Update(toNamed(test.update)...))
			if diff := cmp.Diff(test.want, primitives(ds.XValues())); diff != "" {
				t.Errorf("XValues diff (-want +got):\n%s", diff)
			}
			checkIndices(t, ds.XValues())
			for i, v := range ds.XValues() {
				idx, ok := ds.XIndex(v.Raw())
				assert.True(t, ok)
				assert.Equal(t, i, idx)
			}
		})
	}
}

func TestLastWriteWins(t *testing.T) {
	ds, err := New(sampleOpts(false), sample{at: 1, value: 1}, sample{at: 1, value: 7})
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
	v, err := ds.MetricValue("value", 1)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
}

func TestAppend(t *testing.T) {
	ds, err := New(sampleOpts(false), sample{at: 1, value: 1}, sample{at: 2, value: 2})
	require.NoError(t, err)
	var ev ChangeEvent[float64, string]
	ds.OnChanged(func(got ChangeEvent[float64, string]) { ev = got })
	require.NoError(t, ds.Append(sample{at: 3, value: 3}))
	if diff := cmp.Diff([]any{1.0, 2.0, 3.0}, primitives(ds.XValues())); diff != "" {
		t.Errorf("XValues diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{3.0}, primitives(ev.X.Added)); diff != "" {
		t.Errorf("added diff (-want +got):\n%s", diff)
	}
	assert.Empty(t, ev.X.Deleted)
	assert.Len(t, ev.X.Updated, 2)
	err = ds.Append(sample{at: 0})
	assert.ErrorIs(t, err, ErrMonotonicityViolation)
}

func TestTwoDimensionalDiff(t *testing.T) {
	ds, err := New(sampleOpts(true),
		sample{at: 1, series: "a", value: 1, samples: []float64{3, 1, 2}},
		sample{at: 1, series: "b", value: 2},
		sample{at: 2, series: "a", value: 3},
	)
	require.NoError(t, err)
	assert.True(t, ds.Is2D())
	var ev ChangeEvent[float64, string]
	ds.OnChanged(func(got ChangeEvent[float64, string]) { ev = got })
	require.NoError(t, ds.Update(
		sample{at: 1, series: "a", value: 10},
		sample{at: 2, series: "c", value: 30},
		sample{at: 3, series: "a", value: 40},
	))
	if diff := cmp.Diff([][2]any{{1.0, "a"}}, pairs(ev.Cells.Updated)); diff != "" {
		t.Errorf("updated cells diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][2]any{{2.0, "c"}, {3.0, "a"}}, pairs(ev.Cells.Added)); diff != "" {
		t.Errorf("added cells diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][2]any{{1.0, "b"}, {2.0, "a"}}, pairs(ev.Cells.Deleted)); diff != "" {
		t.Errorf("deleted cells diff (-want +got):\n%s", diff)
	}
	assert.True(t, ev.Cells.IsAdded(dimension.NumberKey(3), dimension.StringKey("a")))
	assert.True(t, ev.Cells.IsDeleted(dimension.NumberKey(1), dimension.StringKey("b")))
	if diff := cmp.Diff([]any{"c"}, primitives(ev.Y.Added)); diff != "" {
		t.Errorf("added Y diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{"b"}, primitives(ev.Y.Deleted)); diff != "" {
		t.Errorf("deleted Y diff (-want +got):\n%s", diff)
	}
	checkIndices(t, ds.YValues())

	v, err := ds.MetricValueForDimensions("value", 2, "c")
	require.NoError(t, err)
	assert.Equal(t, 30.0, v)
	v, err = ds.MetricValueForDimensions("value", 2, "a")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v))
	xi, _ := ds.XIndex(3)
	yi, _ := ds.YIndex("a")
	v, err = ds.MetricValueAt("value", xi, yi)
	require.NoError(t, err)
	assert.Equal(t, 40.0, v)
}

// The three change sets partition the union of before and after
// coordinates.
func TestDiffCompleteness(t *testing.T) {
	before := []float64{1, 2, 3, 5, 8}
	after := []float64{3, 5, 8, 13, 21}
	toSamples := func(ats []float64) []sample {
		ret := make([]sample, len(ats))
		for i, at := range ats {
			ret[i] = sample{at: at}
		}
		return ret
	}
	ds, err := New(sampleOpts(false), toSamples(before)...)
	require.NoError(t, err)
	var ev ChangeEvent[float64, string]
	ds.OnChanged(func(got ChangeEvent[float64, string]) { ev = got })
	require.NoError(t, ds.Update(toSamples(after)...))
	seen := map[float64]int{}
	for _, set := range [][]dimension.Value[float64]{ev.X.Added, ev.X.Updated, ev.X.Deleted} {
		for _, v := range set {
			seen[v.Raw()]++
		}
	}
	for _, at := range append(append([]float64{}, before...), after...) {
		assert.Equal(t, 1, seen[at], "coordinate %v must appear in exactly one change set", at)
	}
	assert.Len(t, seen, 7)
}

func TestClear(t *testing.T) {
	ds, err := New(sampleOpts(true), sample{at: 1, series: "a"}, sample{at: 2, series: "b"})
	require.NoError(t, err)
	var ev ChangeEvent[float64, string]
	ds.OnChanged(func(got ChangeEvent[float64, string]) { ev = got })
	ds.Clear()
	assert.Equal(t, 0, ds.Len())
	assert.Len(t, ev.X.Deleted, 2)
	assert.Len(t, ev.Y.Deleted, 2)
	assert.Len(t, ev.Cells.Deleted, 2)
	assert.True(t, ev.X.IsDeleted(dimension.NumberKey(2)))
	r, err := ds.MetricRange("value")
	require.NoError(t, err)
	assert.True(t, r.IsEmpty())
}

func TestMetricAccessErrors(t *testing.T) {
	oneD, err := New(sampleOpts(false), sample{at: 1, value: 1, samples: []float64{2, 1}})
	require.NoError(t, err)
	twoD, err := New(sampleOpts(true), sample{at: 1, series: "a", value: 1})
	require.NoError(t, err)
	for _, test := range []struct {
		description string
		access      func() error
		wantErr     error
	}{{
		description: "unknown metric",
		access: func() error {
			_, err := oneD.MetricValue("nope", 1)
			return err
		},
		wantErr: ErrUnknownMetric,
	}, {
		description: "unknown metric range",
		access: func() error {
			_, err := oneD.MetricRange("nope")
			return err
		},
		wantErr: ErrUnknownMetric,
	}, {
		description: "2D access to 1D dataset",
		access: func() error {
			_, err := oneD.MetricValueForDimensions("value", 1, "a")
			return err
		},
		wantErr: ErrDimensionMismatch,
	}, {
		description: "1D access to 2D dataset",
		access: func() error {
			_, err := twoD.MetricValue("value", 1)
			return err
		},
		wantErr: ErrDimensionMismatch,
	}, {
		description: "1D index access to 2D dataset",
		access: func() error {
			_, err := twoD.MetricValueAt("value", 0)
			return err
		},
		wantErr: ErrDimensionMismatch,
	}, {
		description: "scalar access to array-like metric",
		access: func() error {
			_, err := oneD.MetricValue("samples", 1)
			return err
		},
		wantErr: ErrMetricKindMismatch,
	}, {
		description: "array access to scalar metric",
		access: func() error {
			_, err := oneD.MetricValues("value", 1)
			return err
		},
		wantErr: ErrMetricKindMismatch,
	}} {
		t.Run(test.description, func(t *testing.T) {
			assert.ErrorIs(t, test.access(), test.wantErr)
		})
	}
}

func TestArrayMetricAndRange(t *testing.T) {
	ds, err := New(sampleOpts(false),
		sample{at: 1, value: 5, samples: []float64{3, -1, 2}},
		sample{at: 2, value: math.NaN(), samples: []float64{9}},
	)
	require.NoError(t, err)
	got, err := ds.MetricValues("samples", 1)
	require.NoError(t, err)
	if diff := cmp.Diff([]float64{-1, 2, 3}, got); diff != "" {
		t.Errorf("MetricValues diff (-want +got):\n%s", diff)
	}
	got, err = ds.MetricValuesAt("samples", 1)
	require.NoError(t, err)
	if diff := cmp.Diff([]float64{9}, got); diff != "" {
		t.Errorf("MetricValuesAt diff (-want +got):\n%s", diff)
	}
	for _, test := range []struct {
		metric string
		want   datarange.NumericRange
	}{
		{"samples", datarange.Numeric(-1, 9)},
		{"value", datarange.Of(5.0)},
	} {
		r, err := ds.MetricRange(test.metric)
		require.NoError(t, err)
		if diff := cmp.Diff(test.want, r, cmp.AllowUnexported(datarange.NumericRange{})); diff != "" {
			t.Errorf("MetricRange(%s) diff (-want +got):\n%s", test.metric, diff)
		}
	}
	// Ranges are invalidated by updates.
	require.NoError(t, ds.Update(sample{at: 2, value: 100}, sample{at: 3, value: -100}))
	r, err := ds.MetricRange("value")
	require.NoError(t, err)
	if diff := cmp.Diff(datarange.Numeric(-100, 100), r, cmp.AllowUnexported(datarange.NumericRange{})); diff != "" {
		t.Errorf("MetricRange after update diff (-want +got):\n%s", diff)
	}
}

func TestDateDimension(t *testing.T) {
	type event struct {
		at    time.Time
		count float64
	}
	start := time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC)
	ds, err := New(Options[event, time.Time, time.Time]{
		X: func(e event) time.Time { return e.at },
		Metrics: []Metric[event]{{
			Name:  "count",
			Value: func(e event) float64 { return e.count },
		}},
	}, event{start.Add(time.Hour), 2}, event{start, 1})
	require.NoError(t, err)
	xs := ds.XValues()
	require.Len(t, xs, 2)
	assert.True(t, xs[0].Raw().Equal(start))
	err = ds.Update(event{start.Add(time.Hour), 2}, event{start.Add(30 * time.Minute), 1})
	assert.ErrorIs(t, err, ErrMonotonicityViolation)
}

func TestOnChangedCancel(t *testing.T) {
	ds, err := New(sampleOpts(false))
	require.NoError(t, err)
	calls := []string{}
	cancelA := ds.OnChanged(func(ChangeEvent[float64, string]) { calls = append(calls, "a") })
	ds.OnChanged(func(ChangeEvent[float64, string]) { calls = append(calls, "b") })
	require.NoError(t, ds.Update(sample{at: 1}))
	cancelA()
	require.NoError(t, ds.Update(sample{at: 2}))
	if diff := cmp.Diff([]string{"a", "b", "b"}, calls); diff != "" {
		t.Errorf("listener calls diff (-want +got):\n%s", diff)
	}
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(Options[sample, float64, string]{})
	assert.Error(t, err)
	opts := sampleOpts(false)
	opts.Metrics = append(opts.Metrics, Metric[sample]{Name: "value", Value: func(sample) float64 { return 0 }})
	_, err = New(opts)
	assert.Error(t, err)
	opts = sampleOpts(false)
	opts.Metrics = []Metric[sample]{{Name: "both"}}
	_, err = New(opts)
	assert.Error(t, err)
}
