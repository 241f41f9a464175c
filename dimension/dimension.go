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

// Package dimension defines dimension values: raw axis coordinates (numbers,
// strings, or timestamps) paired with a derived orderable primitive and an
// assigned position index.
//
// Equality and ordering of dimension values are defined solely on their
// primitive.  Numbers are their own primitive, strings are their own
// primitive, and timestamps are reduced to Unix epoch milliseconds.
package dimension

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// Raw is the set of types that may act as dimension coordinates.
type Raw interface {
	float64 | string | time.Time
}

// Kind describes the domain of a dimension.
type Kind int

// Enumerated dimension kinds.
const (
	Numeric Kind = iota
	Categorical
	Date
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	case Date:
		return "date"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Ordered reports whether dimensions of the receiving kind are subject to
// the append-only monotonicity constraint.
func (k Kind) Ordered() bool {
	return k == Numeric || k == Date
}

// KindOf returns the Kind of dimensions with raw type T.
func KindOf[T Raw]() Kind {
	var zero T
	switch any(zero).(type) {
	case string:
		return Categorical
	case time.Time:
		return Date
	default:
		return Numeric
	}
}

// Key is the comparable primitive of a dimension value.  It is usable as a
// map key.
type Key struct {
	num   float64
	str   string
	isStr bool
}

// NumberKey returns the Key of a numeric (or epoch-millisecond) primitive.
func NumberKey(num float64) Key {
	return Key{num: num}
}

// StringKey returns the Key of a string primitive.
func StringKey(str string) Key {
	return Key{str: str, isStr: true}
}

// IsString returns true if the receiver is a string primitive.
func (k Key) IsString() bool {
	return k.isStr
}

// Num returns the receiver's numeric primitive.  It is zero for string keys.
func (k Key) Num() float64 {
	return k.num
}

// Valid returns false if the receiver cannot be ordered or matched against
// other keys, as with a NaN coordinate.
func (k Key) Valid() bool {
	return k.isStr || !math.IsNaN(k.num)
}

// Str returns the receiver's string primitive.  It is empty for numeric keys.
func (k Key) Str() string {
	return k.str
}

func (k Key) String() string {
	if k.isStr {
		return strconv.Quote(k.str)
	}
	return strconv.FormatFloat(k.num, 'g', -1, 64)
}

// CompareKeys returns -1, 0, or 1 as a is less than, equal to, or greater
// than b.  Numeric keys order before string keys, though a single dimension
// never mixes the two.
func CompareKeys(a, b Key) int {
	switch {
	case a.isStr != b.isStr:
		if b.isStr {
			return -1
		}
		return 1
	case a.isStr:
		switch {
		case a.str < b.str:
			return -1
		case a.str > b.str:
			return 1
		}
		return 0
	default:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	}
}

// KeyOf returns the primitive Key of the provided raw coordinate.
func KeyOf[T Raw](raw T) Key {
	switch r := any(raw).(type) {
	case float64:
		return NumberKey(r)
	case string:
		return StringKey(r)
	case time.Time:
		return NumberKey(float64(r.UnixMilli()))
	}
	panic("unreachable")
}

// Value is a single dimension coordinate.  Values are immutable; re-indexing
// produces a new Value.
type Value[T Raw] struct {
	raw   T
	key   Key
	index int
}

// New returns a new, unindexed Value wrapping the provided raw coordinate.
func New[T Raw](raw T) Value[T] {
	return Value[T]{
		raw:   raw,
		key:   KeyOf(raw),
		index: -1,
	}
}

// Raw returns the receiver's raw coordinate.
func (v Value[T]) Raw() T {
	return v.raw
}

// Key returns the receiver's primitive key.
func (v Value[T]) Key() Key {
	return v.key
}

// Primitive returns the receiver's orderable primitive: a float64 for numeric
// and date dimensions, and a string for categorical ones.
func (v Value[T]) Primitive() any {
	if v.key.isStr {
		return v.key.str
	}
	return v.key.num
}

// Index returns the receiver's assigned position, or -1 if it has none.
func (v Value[T]) Index() int {
	return v.index
}

// WithIndex returns a copy of the receiver with the provided index.
func (v Value[T]) WithIndex(index int) Value[T] {
	v.index = index
	return v
}

// Kind returns the receiver's dimension kind.
func (v Value[T]) Kind() Kind {
	return KindOf[T]()
}

// Equal returns true if the receiver and other share a primitive.
func (v Value[T]) Equal(other Value[T]) bool {
	return v.key == other.key
}

func (v Value[T]) String() string {
	return fmt.Sprintf("%s@%d", v.key, v.index)
}

// Compare orders a and b by primitive.
func Compare[T Raw](a, b Value[T]) int {
	return CompareKeys(a.key, b.key)
}

// Sorting is an ordering policy for a dimension.
type Sorting int

// Enumerated sorting policies.  Unordered preserves the existing relative
// order of values, appending new values in the order they arrive.
const (
	Ascending Sorting = iota
	Descending
	Unordered
)

func (s Sorting) String() string {
	switch s {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	case Unordered:
		return "unordered"
	default:
		return fmt.Sprintf("Sorting(%d)", int(s))
	}
}

// Sort orders the provided values in place according to the provided
// policy.  The sort is stable, so Unordered leaves vals as-is.
func Sort[T Raw](vals []Value[T], s Sorting) {
	switch s {
	case Ascending:
		sort.SliceStable(vals, func(a, b int) bool {
			return Compare(vals[a], vals[b]) < 0
		})
	case Descending:
		sort.SliceStable(vals, func(a, b int) bool {
			return Compare(vals[a], vals[b]) > 0
		})
	}
}

// Reindex assigns dense indices 0..len(vals)-1 to the provided values in
// order, returning the re-indexed values and a lookup from primitive key to
// index.
func Reindex[T Raw](vals []Value[T]) ([]Value[T], map[Key]int) {
	ret := make([]Value[T], len(vals))
	idx := make(map[Key]int, len(vals))
	for i, v := range vals {
		ret[i] = v.WithIndex(i)
		idx[v.key] = i
	}
	return ret, idx
}
