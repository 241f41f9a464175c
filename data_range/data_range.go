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

// Package datarange provides interval types shared by axes and datasets.  A
// Range has a minimum and maximum extent along some domain; an empty Range
// has neither.
package datarange

import (
	"fmt"
	"math"
	"time"
)

// Bound is the set of types a Range may span.
type Bound interface {
	float64 | time.Duration | time.Time
}

// Range is an interval along a domain of type T.
type Range[T Bound] struct {
	Min, Max T
	empty    bool
}

// Empty returns an empty Range.
func Empty[T Bound]() Range[T] {
	return Range[T]{empty: true}
}

// Of returns the smallest Range covering all of the provided extents, or an
// empty Range if none are provided.
func Of[T Bound](extents ...T) Range[T] {
	ret := Empty[T]()
	for _, extent := range extents {
		ret = ret.Include(extent)
	}
	return ret
}

// New returns a Range from min to max.  If min is after max, the two are
// swapped.
func New[T Bound](min, max T) Range[T] {
	if less(max, min) {
		min, max = max, min
	}
	return Range[T]{Min: min, Max: max}
}

// IsEmpty returns true if the receiver has no extent.
func (r Range[T]) IsEmpty() bool {
	return r.empty
}

// IsPoint returns true if the receiver is non-empty and its minimum equals
// its maximum.
func (r Range[T]) IsPoint() bool {
	return !r.empty && !less(r.Min, r.Max) && !less(r.Max, r.Min)
}

// Contains returns true if v lies within the receiver, inclusive of both
// ends.
func (r Range[T]) Contains(v T) bool {
	if r.empty {
		return false
	}
	return !less(v, r.Min) && !less(r.Max, v)
}

// Include returns the receiver extended to cover v.
func (r Range[T]) Include(v T) Range[T] {
	if r.empty {
		return Range[T]{Min: v, Max: v}
	}
	if less(v, r.Min) {
		r.Min = v
	}
	if less(r.Max, v) {
		r.Max = v
	}
	return r
}

// Union returns the smallest Range covering both the receiver and other.
func (r Range[T]) Union(other Range[T]) Range[T] {
	if other.empty {
		return r
	}
	return r.Include(other.Min).Include(other.Max)
}

func (r Range[T]) String() string {
	if r.empty {
		return "[empty]"
	}
	return fmt.Sprintf("[%v, %v]", r.Min, r.Max)
}

func less[T Bound](a, b T) bool {
	switch av := any(a).(type) {
	case float64:
		return av < any(b).(float64)
	case time.Duration:
		return av < any(b).(time.Duration)
	case time.Time:
		return av.Before(any(b).(time.Time))
	}
	return false
}

// NumericRange is a Range over float64, the shared currency of tick
// generation and metric extents.  Dates are carried as epoch milliseconds.
type NumericRange = Range[float64]

// Numeric returns a NumericRange from min to max.
func Numeric(min, max float64) NumericRange {
	return New(min, max)
}

// FromTimes returns a NumericRange, in epoch milliseconds, spanning the
// provided Time range.
func FromTimes(r Range[time.Time]) NumericRange {
	if r.IsEmpty() {
		return Empty[float64]()
	}
	return Numeric(float64(r.Min.UnixMilli()), float64(r.Max.UnixMilli()))
}

// Span returns the width of the provided NumericRange, or 0 if it is empty.
func Span(r NumericRange) float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.Max - r.Min
}

// IsFinite returns true if the provided NumericRange is non-empty and both
// its ends are finite.
func IsFinite(r NumericRange) bool {
	if r.IsEmpty() {
		return false
	}
	return !math.IsNaN(r.Min) && !math.IsInf(r.Min, 0) &&
		!math.IsNaN(r.Max) && !math.IsInf(r.Max, 0)
}

// Rect is an axis-aligned rectangle in data space.
type Rect struct {
	X, Y NumericRange
}

// IsEmpty returns true if either of the receiver's ranges is empty.
func (r Rect) IsEmpty() bool {
	return r.X.IsEmpty() || r.Y.IsEmpty()
}

// Merge returns the smallest Rect covering both the receiver and other,
// taking the minimum of both minimum corners and the maximum of both maximum
// corners.  Empty Rects contribute nothing.
func (r Rect) Merge(other Rect) Rect {
	switch {
	case other.IsEmpty():
		return r
	case r.IsEmpty():
		return other
	}
	return Rect{
		X: r.X.Union(other.X),
		Y: r.Y.Union(other.Y),
	}
}
