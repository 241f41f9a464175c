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

// Package dataset provides Dataset, an indexed, dimension-keyed table of
// observations supporting incremental updates.  Given a set of elements and
// functions extracting an X (and optionally a Y) coordinate and a set of
// named metrics from each element, a Dataset maintains:
//
//   - the sorted, deduplicated dimension values along each axis, each
//     carrying a dense index;
//   - a lookup from coordinate primitive to index for each axis;
//   - per metric, a table of values indexed by X index (and Y index for
//     two-dimensional datasets).  Array-like metrics store a sorted slice of
//     values per cell.
//
// Every mutation computes a ChangeEvent describing which coordinates were
// added, updated, or deleted, and delivers it synchronously to listeners
// registered with OnChanged.  Listeners must not mutate the Dataset that
// invoked them.
//
// A Dataset is not safe for concurrent mutation; callers must serialize
// access.
package dataset

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	datarange "github.com/ilhamster/chartcore/data_range"
	"github.com/ilhamster/chartcore/dimension"
)

// Metric describes a named measurement extracted from each element.  Exactly
// one of Value (for scalar metrics) or Values (for array-like metrics) must
// be set.
type Metric[Item any] struct {
	Name   string
	Value  func(Item) float64
	Values func(Item) []float64
}

// ArrayLike returns true if the receiver stores a slice of values per cell.
func (m Metric[Item]) ArrayLike() bool {
	return m.Values != nil
}

// Options configures a Dataset.  If Y is nil, the Dataset is
// one-dimensional and its Y type parameter is unused.
type Options[Item any, X, Y dimension.Raw] struct {
	X        func(Item) X
	Y        func(Item) Y
	XSorting dimension.Sorting
	YSorting dimension.Sorting
	Metrics  []Metric[Item]
	// If nil, the logrus standard logger is used.
	Logger logrus.FieldLogger
}

type metricTable struct {
	arrayLike bool
	// Indexed [x][y]; y is always 0 in one-dimensional datasets.
	scalars [][]float64
	arrays  [][][]float64
}

func newMetricTable(arrayLike bool, nx, ny int) *metricTable {
	ret := &metricTable{arrayLike: arrayLike}
	if arrayLike {
		ret.arrays = make([][][]float64, nx)
		for x := range ret.arrays {
			ret.arrays[x] = make([][]float64, ny)
		}
		return ret
	}
	ret.scalars = make([][]float64, nx)
	for x := range ret.scalars {
		row := make([]float64, ny)
		for y := range row {
			row[y] = math.NaN()
		}
		ret.scalars[x] = row
	}
	return ret
}

// state is an immutable snapshot of a Dataset's contents.
type state[Item any, X, Y dimension.Raw] struct {
	elements []Item
	xs       []dimension.Value[X]
	xIdx     map[dimension.Key]int
	ys       []dimension.Value[Y]
	yIdx     map[dimension.Key]int
	// Observed cells, ordered by X index then Y index.  Only populated for
	// two-dimensional datasets.
	cells  []Pair[X, Y]
	tables map[string]*metricTable
}

func emptyState[Item any, X, Y dimension.Raw]() *state[Item, X, Y] {
	return &state[Item, X, Y]{
		xIdx:   map[dimension.Key]int{},
		yIdx:   map[dimension.Key]int{},
		tables: map[string]*metricTable{},
	}
}

type listener[X, Y dimension.Raw] struct {
	fn func(ChangeEvent[X, Y])
}

// Dataset is an indexed table of observations.
type Dataset[Item any, X, Y dimension.Raw] struct {
	opts      Options[Item, X, Y]
	metrics   map[string]Metric[Item]
	log       logrus.FieldLogger
	cur       *state[Item, X, Y]
	ranges    map[string]datarange.NumericRange
	listeners []*listener[X, Y]
}

// New returns a new Dataset configured by opts and populated with the
// provided elements.
func New[Item any, X, Y dimension.Raw](opts Options[Item, X, Y], elements ...Item) (*Dataset[Item, X, Y], error) {
	if opts.X == nil {
		return nil, fmt.Errorf("dataset requires an X dimension function")
	}
	ds := &Dataset[Item, X, Y]{
		opts:    opts,
		metrics: make(map[string]Metric[Item], len(opts.Metrics)),
		log:     opts.Logger,
		cur:     emptyState[Item, X, Y](),
		ranges:  map[string]datarange.NumericRange{},
	}
	if ds.log == nil {
		ds.log = logrus.StandardLogger()
	}
	for _, m := range opts.Metrics {
		if m.Name == "" {
			return nil, fmt.Errorf("dataset metrics must be named")
		}
		if (m.Value == nil) == (m.Values == nil) {
			return nil, fmt.Errorf("metric '%s' must define exactly one of Value or Values", m.Name)
		}
		if _, ok := ds.metrics[m.Name]; ok {
			return nil, fmt.Errorf("metric '%s' is defined more than once", m.Name)
		}
		ds.metrics[m.Name] = m
	}
	if err := ds.Update(elements...); err != nil {
		return nil, err
	}
	return ds, nil
}

// Is2D returns true if the receiver has a Y dimension.
func (ds *Dataset[Item, X, Y]) Is2D() bool {
	return ds.opts.Y != nil
}

// OnChanged registers fn to be invoked synchronously, in registration order,
// after every mutation of the receiver.  The returned function unregisters
// fn.
func (ds *Dataset[Item, X, Y]) OnChanged(fn func(ChangeEvent[X, Y])) (cancel func()) {
	l := &listener[X, Y]{fn: fn}
	ds.listeners = append(ds.listeners, l)
	return func() {
		for i, got := range ds.listeners {
			if got == l {
				ds.listeners = append(ds.listeners[:i:i], ds.listeners[i+1:]...)
				return
			}
		}
	}
}

// Update replaces the receiver's observations with the provided elements.
// Coordinates present both before and after are reported as updated, those
// present only before as deleted, and those present only after as added.
// When several elements share a coordinate, the last one wins.
//
// On ordered (numeric or date) dimensions, a coordinate not previously
// present may not fall below the previous maximum coordinate; such updates
// fail with a *MonotonicityError and leave the receiver unchanged.
func (ds *Dataset[Item, X, Y]) Update(elements ...Item) error {
	next, err := ds.build(elements)
	if err != nil {
		return err
	}
	ds.apply(next)
	return nil
}

// Append merges the provided elements into the receiver's current
// observations, subject to the same constraints as Update.
func (ds *Dataset[Item, X, Y]) Append(elements ...Item) error {
	merged := make([]Item, 0, len(ds.cur.elements)+len(elements))
	merged = append(merged, ds.cur.elements...)
	merged = append(merged, elements...)
	return ds.Update(merged...)
}

// Clear removes all observations from the receiver, reporting every
// coordinate as deleted.
func (ds *Dataset[Item, X, Y]) Clear() {
	ds.apply(emptyState[Item, X, Y]())
}

// Replace clears the receiver, then updates it with the provided elements.
// Listeners observe both mutations.  Since the receiver is empty when the
// update is applied, Replace never fails with a monotonicity violation.
func (ds *Dataset[Item, X, Y]) Replace(elements ...Item) error {
	ds.Clear()
	return ds.Update(elements...)
}

// build assembles the state that would result from updating the receiver
// with the provided elements.  It does not modify the receiver.
func (ds *Dataset[Item, X, Y]) build(elements []Item) (*state[Item, X, Y], error) {
	next := emptyState[Item, X, Y]()
	next.elements = append([]Item(nil), elements...)
	var err error
	next.xs, next.xIdx, err = mergeAxis("x", ds.cur.xs, ds.cur.xIdx, elements, ds.opts.X, ds.opts.XSorting)
	if err != nil {
		return nil, err
	}
	ny := 1
	if ds.Is2D() {
		next.ys, next.yIdx, err = mergeAxis("y", ds.cur.ys, ds.cur.yIdx, elements, ds.opts.Y, ds.opts.YSorting)
		if err != nil {
			return nil, err
		}
		ny = len(next.ys)
	}
	for name, m := range ds.metrics {
		next.tables[name] = newMetricTable(m.ArrayLike(), len(next.xs), ny)
	}
	observed := map[PairKey]struct{}{}
	for _, el := range elements {
		xk := dimension.KeyOf(ds.opts.X(el))
		xi, ok := next.xIdx[xk]
		if !ok {
			return nil, fmt.Errorf("%w: x coordinate %s is not indexed", ErrInvalidCoordinate, xk)
		}
		yi := 0
		if ds.Is2D() {
			yk := dimension.KeyOf(ds.opts.Y(el))
			if yi, ok = next.yIdx[yk]; !ok {
				return nil, fmt.Errorf("%w: y coordinate %s is not indexed", ErrInvalidCoordinate, yk)
			}
			p := Pair[X, Y]{X: next.xs[xi], Y: next.ys[yi]}
			if _, ok := observed[p.Key()]; !ok {
				observed[p.Key()] = struct{}{}
				next.cells = append(next.cells, p)
			}
		}
		for name, m := range ds.metrics {
			t := next.tables[name]
			if m.ArrayLike() {
				vals := append([]float64(nil), m.Values(el)...)
				sort.Float64s(vals)
				t.arrays[xi][yi] = vals
			} else {
				t.scalars[xi][yi] = m.Value(el)
			}
		}
	}
	sort.Slice(next.cells, func(a, b int) bool {
		ca, cb := next.cells[a], next.cells[b]
		if ca.X.Index() != cb.X.Index() {
			return ca.X.Index() < cb.X.Index()
		}
		return ca.Y.Index() < cb.Y.Index()
	})
	return next, nil
}

// mergeAxis derives the indexed dimension values along one axis for the
// provided elements, enforcing monotonicity against the previous values.
func mergeAxis[Item any, T dimension.Raw](
	axis string,
	prev []dimension.Value[T], prevIdx map[dimension.Key]int,
	elements []Item, coord func(Item) T, sorting dimension.Sorting,
) ([]dimension.Value[T], map[dimension.Key]int, error) {
	positions := map[dimension.Key]int{}
	vals := []dimension.Value[T]{}
	for _, el := range elements {
		v := dimension.New(coord(el))
		if !v.Key().Valid() {
			return nil, nil, fmt.Errorf("%w: %s coordinate %s", ErrInvalidCoordinate, axis, v.Key())
		}
		if pos, ok := positions[v.Key()]; ok {
			vals[pos] = v
			continue
		}
		positions[v.Key()] = len(vals)
		vals = append(vals, v)
	}
	if dimension.KindOf[T]().Ordered() && len(prev) > 0 {
		max := prev[0].Key()
		for _, v := range prev[1:] {
			if dimension.CompareKeys(v.Key(), max) > 0 {
				max = v.Key()
			}
		}
		for _, v := range vals {
			if _, ok := prevIdx[v.Key()]; ok {
				continue
			}
			if dimension.CompareKeys(v.Key(), max) < 0 {
				return nil, nil, &MonotonicityError{
					Axis:       axis,
					Coordinate: v.Key(),
					Max:        max,
				}
			}
		}
	}
	if sorting == dimension.Unordered {
		// Surviving values keep their previous relative order, ahead of new
		// values in arrival order.
		sort.SliceStable(vals, func(a, b int) bool {
			pa, okA := prevIdx[vals[a].Key()]
			pb, okB := prevIdx[vals[b].Key()]
			switch {
			case okA && okB:
				return pa < pb
			default:
				return okA && !okB
			}
		})
	}
	dimension.Sort(vals, sorting)
	ret, idx := dimension.Reindex(vals)
	return ret, idx, nil
}

// apply installs next as the receiver's state and notifies listeners.
func (ds *Dataset[Item, X, Y]) apply(next *state[Item, X, Y]) {
	prev := ds.cur
	ev := ChangeEvent[X, Y]{
		X: diff1D(prev.xs, prev.xIdx, next.xs, next.xIdx),
	}
	if ds.Is2D() {
		ev.Y = diff1D(prev.ys, prev.yIdx, next.ys, next.yIdx)
		ev.Cells = diff2D(prev.cells, next.cells)
	}
	ds.cur = next
	ds.ranges = map[string]datarange.NumericRange{}
	ds.log.WithFields(logrus.Fields{
		"elements": len(next.elements),
		"added":    len(ev.X.Added),
		"updated":  len(ev.X.Updated),
		"deleted":  len(ev.X.Deleted),
	}).Debug("dataset changed")
	for _, l := range append([]*listener[X, Y](nil), ds.listeners...) {
		l.fn(ev)
	}
}

// Len returns the number of distinct X coordinates in the receiver.
func (ds *Dataset[Item, X, Y]) Len() int {
	return len(ds.cur.xs)
}

// Elements returns the receiver's current observations.
func (ds *Dataset[Item, X, Y]) Elements() []Item {
	return append([]Item(nil), ds.cur.elements...)
}

// XValues returns the receiver's X dimension values in index order.
func (ds *Dataset[Item, X, Y]) XValues() []dimension.Value[X] {
	return append([]dimension.Value[X](nil), ds.cur.xs...)
}

// YValues returns the receiver's Y dimension values in index order.  It is
// empty for one-dimensional datasets.
func (ds *Dataset[Item, X, Y]) YValues() []dimension.Value[Y] {
	return append([]dimension.Value[Y](nil), ds.cur.ys...)
}

// XIndex returns the index of the provided X coordinate.
func (ds *Dataset[Item, X, Y]) XIndex(x X) (int, bool) {
	idx, ok := ds.cur.xIdx[dimension.KeyOf(x)]
	return idx, ok
}

// YIndex returns the index of the provided Y coordinate.
func (ds *Dataset[Item, X, Y]) YIndex(y Y) (int, bool) {
	idx, ok := ds.cur.yIdx[dimension.KeyOf(y)]
	return idx, ok
}

// MetricNames returns the names of the receiver's metrics, in registration
// order.
func (ds *Dataset[Item, X, Y]) MetricNames() []string {
	ret := make([]string, len(ds.opts.Metrics))
	for i, m := range ds.opts.Metrics {
		ret[i] = m.Name
	}
	return ret
}
