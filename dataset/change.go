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
	"github.com/ilhamster/chartcore/dimension"
)

// Change1D is the delta between two states of a single dimension.  Added,
// Updated, and Deleted are pairwise disjoint.  Added and Updated values carry
// their new indices; Deleted values carry their former indices.
type Change1D[T dimension.Raw] struct {
	Added, Updated, Deleted []dimension.Value[T]

	added, updated, deleted map[dimension.Key]struct{}
}

func newChange1D[T dimension.Raw]() *Change1D[T] {
	return &Change1D[T]{
		added:   map[dimension.Key]struct{}{},
		updated: map[dimension.Key]struct{}{},
		deleted: map[dimension.Key]struct{}{},
	}
}

// diff1D computes the change from prev to next, both of which must be
// indexed.
func diff1D[T dimension.Raw](prev []dimension.Value[T], prevIdx map[dimension.Key]int, next []dimension.Value[T], nextIdx map[dimension.Key]int) *Change1D[T] {
	ret := newChange1D[T]()
	for _, v := range next {
		if _, ok := prevIdx[v.Key()]; ok {
			ret.Updated = append(ret.Updated, v)
			ret.updated[v.Key()] = struct{}{}
		} else {
			ret.Added = append(ret.Added, v)
			ret.added[v.Key()] = struct{}{}
		}
	}
	for _, v := range prev {
		if _, ok := nextIdx[v.Key()]; !ok {
			ret.Deleted = append(ret.Deleted, v)
			ret.deleted[v.Key()] = struct{}{}
		}
	}
	return ret
}

// IsAdded returns true if the coordinate with the provided key was added.
func (c *Change1D[T]) IsAdded(k dimension.Key) bool {
	_, ok := c.added[k]
	return ok
}

// IsUpdated returns true if the coordinate with the provided key was present
// both before and after the change.
func (c *Change1D[T]) IsUpdated(k dimension.Key) bool {
	_, ok := c.updated[k]
	return ok
}

// IsDeleted returns true if the coordinate with the provided key was removed.
func (c *Change1D[T]) IsDeleted(k dimension.Key) bool {
	_, ok := c.deleted[k]
	return ok
}

// Empty returns true if the change touches no coordinates at all.
func (c *Change1D[T]) Empty() bool {
	return len(c.Added)+len(c.Updated)+len(c.Deleted) == 0
}

// Pair is a two-dimensional coordinate.
type Pair[X, Y dimension.Raw] struct {
	X dimension.Value[X]
	Y dimension.Value[Y]
}

// PairKey is the comparable primitive of a Pair.
type PairKey [2]dimension.Key

// Key returns the receiver's PairKey.
func (p Pair[X, Y]) Key() PairKey {
	return PairKey{p.X.Key(), p.Y.Key()}
}

// Change2D is the delta between two states of the observed cells of a
// two-dimensional dataset.  A cell is observed if at least one element maps
// to it.
type Change2D[X, Y dimension.Raw] struct {
	Added, Updated, Deleted []Pair[X, Y]

	added, updated, deleted map[PairKey]struct{}
}

func diff2D[X, Y dimension.Raw](prev, next []Pair[X, Y]) *Change2D[X, Y] {
	ret := &Change2D[X, Y]{
		added:   map[PairKey]struct{}{},
		updated: map[PairKey]struct{}{},
		deleted: map[PairKey]struct{}{},
	}
	prevKeys := make(map[PairKey]struct{}, len(prev))
	for _, p := range prev {
		prevKeys[p.Key()] = struct{}{}
	}
	nextKeys := make(map[PairKey]struct{}, len(next))
	for _, p := range next {
		k := p.Key()
		nextKeys[k] = struct{}{}
		if _, ok := prevKeys[k]; ok {
			ret.Updated = append(ret.Updated, p)
			ret.updated[k] = struct{}{}
		} else {
			ret.Added = append(ret.Added, p)
			ret.added[k] = struct{}{}
		}
	}
	for _, p := range prev {
		k := p.Key()
		if _, ok := nextKeys[k]; !ok {
			ret.Deleted = append(ret.Deleted, p)
			ret.deleted[k] = struct{}{}
		}
	}
	return ret
}

// IsAdded returns true if the cell at (x, y) was added.
func (c *Change2D[X, Y]) IsAdded(x, y dimension.Key) bool {
	_, ok := c.added[PairKey{x, y}]
	return ok
}

// IsUpdated returns true if the cell at (x, y) was observed both before and
// after the change.
func (c *Change2D[X, Y]) IsUpdated(x, y dimension.Key) bool {
	_, ok := c.updated[PairKey{x, y}]
	return ok
}

// IsDeleted returns true if the cell at (x, y) is no longer observed.
func (c *Change2D[X, Y]) IsDeleted(x, y dimension.Key) bool {
	_, ok := c.deleted[PairKey{x, y}]
	return ok
}

// Empty returns true if the change touches no cells at all.
func (c *Change2D[X, Y]) Empty() bool {
	return len(c.Added)+len(c.Updated)+len(c.Deleted) == 0
}

// ChangeEvent is delivered to Dataset listeners after every mutation.  Y and
// Cells are nil for one-dimensional datasets.
type ChangeEvent[X, Y dimension.Raw] struct {
	X     *Change1D[X]
	Y     *Change1D[Y]
	Cells *Change2D[X, Y]
}
