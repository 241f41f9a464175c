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

// Package ticks provides axis tick generation.  A MajorGenerator maps a
// range and a desired tick count to a set of labeled ticks, and suggests
// larger or smaller counts when the resulting layout is too sparse or too
// dense.  A MinorGenerator subdivides the intervals between major ticks.
//
// Three strategies are provided, selected by AxisKind: Numeric ("nice
// number" spacing), Labeled (caller-supplied categorical positions), and
// Date (calendar-aware spacing).  All positions are float64; date positions
// are milliseconds since the Unix epoch.
package ticks

import (
	"fmt"
	"sort"
	"time"

	datarange "github.com/ilhamster/chartcore/data_range"
)

// Tick is a single axis mark.
type Tick struct {
	// The tick's position along the axis, in data units.
	Value float64
	// The tick's rendered length.
	Length float64
	// The tick's position within its generated set.
	Index int
}

// LabeledTick is a Tick with display text.
type LabeledTick struct {
	Tick
	Label string
	// An optional coarser label, such as the date under an hour-of-day
	// label.  It is set only where it differs from the preceding tick's.
	Context string
}

// AxisKind selects a tick generation strategy.
type AxisKind int

// Supported axis kinds.
const (
	Numeric AxisKind = iota
	Labeled
	Date
)

func (k AxisKind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Labeled:
		return "labeled"
	case Date:
		return "date"
	default:
		return fmt.Sprintf("AxisKind(%d)", int(k))
	}
}

// ParseAxisKind returns the AxisKind with the provided name.
func ParseAxisKind(name string) (AxisKind, error) {
	for _, k := range []AxisKind{Numeric, Labeled, Date} {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unsupported axis kind '%s'", name)
}

// MajorGenerator produces an axis's labeled major ticks.
type MajorGenerator interface {
	Kind() AxisKind
	// Ticks returns the major ticks for r at roughly the desired count.
	// Ticks may extend up to one step beyond r.
	Ticks(r datarange.NumericRange, count int) []LabeledTick
	// SuggestIncreased returns the next larger count to try when ticks are
	// too sparse.  Returning count unchanged signals that no larger count
	// is available.
	SuggestIncreased(count int) int
	// SuggestDecreased returns the next smaller count to try when ticks are
	// too dense.
	SuggestDecreased(count int) int
	// DefaultCount returns the count to try first.
	DefaultCount() int
}

// MinorGenerator produces unlabeled subdivisions between the major ticks
// that the paired MajorGenerator would produce for the same arguments.
type MinorGenerator interface {
	Minor(r datarange.NumericRange, count int) []Tick
}

// Label is a caller-supplied categorical tick.
type Label struct {
	Text     string
	Position float64
}

// Options configures tick generators.
type Options struct {
	// Rendered lengths of major and minor ticks.
	MajorLength, MinorLength float64
	// The categorical ticks of a Labeled axis.
	Labels []Label
	// The location in which Date ticks are snapped and labeled.  UTC if nil.
	Location *time.Location
}

// DefaultOptions returns a default set of Options.
func DefaultOptions() Options {
	return Options{
		MajorLength: 6,
		MinorLength: 3,
		Location:    time.UTC,
	}
}

// New returns the major and minor generators for the provided AxisKind.
func New(kind AxisKind, opts Options) (MajorGenerator, MinorGenerator, error) {
	switch kind {
	case Numeric:
		n := &numeric{opts: opts}
		return n, n, nil
	case Labeled:
		labels := append([]Label(nil), opts.Labels...)
		sort.SliceStable(labels, func(a, b int) bool {
			return labels[a].Position < labels[b].Position
		})
		l := &labeled{opts: opts, labels: labels}
		return l, l, nil
	case Date:
		if opts.Location == nil {
			opts.Location = time.UTC
		}
		d := &date{opts: opts}
		return d, d, nil
	default:
		return nil, nil, fmt.Errorf("unsupported axis kind %s", kind)
	}
}

// countLadder is the sequence of tick counts visited by numeric and date
// generators.
var countLadder = []int{1, 2, 3, 4, 5, 10, 20, 40, 80}

// defaultCount is the count first attempted on numeric and date axes.
const defaultCount = 5

// ladderUp returns the smallest ladder rung greater than count, or the top
// rung if there is none.
func ladderUp(count int) int {
	for _, rung := range countLadder {
		if rung > count {
			return rung
		}
	}
	return countLadder[len(countLadder)-1]
}

// ladderDown returns the largest ladder rung less than count, or the bottom
// rung if there is none.
func ladderDown(count int) int {
	for i := len(countLadder) - 1; i >= 0; i-- {
		if countLadder[i] < count {
			return countLadder[i]
		}
	}
	return countLadder[0]
}

