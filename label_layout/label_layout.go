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

// Package labellayout classifies the placement of an axis's tick labels as
// acceptable, too dense, or too sparse.
package labellayout

import (
	"fmt"
	"sort"

	"github.com/aclements/go-moremath/scale"

	datarange "github.com/ilhamster/chartcore/data_range"
	"github.com/ilhamster/chartcore/ticks"
)

// Verdict is the classification of a label layout.
type Verdict int

// Layout verdicts.
const (
	OK Verdict = iota
	TooClose
	TooFar
)

func (v Verdict) String() string {
	switch v {
	case OK:
		return "ok"
	case TooClose:
		return "too close"
	case TooFar:
		return "too far"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// Orientation is the direction along which an axis runs.
type Orientation int

// Axis orientations.
const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Coordinate returns the screen coordinate of v on an axis spanning r over
// size pixels.  Horizontal coordinates grow rightward from the range
// minimum; vertical coordinates grow downward from the range maximum.
func Coordinate(r datarange.NumericRange, size float64, o Orientation, v float64) float64 {
	s := scale.Linear{Min: r.Min, Max: r.Max}
	if o == Vertical {
		return (1 - s.Map(v)) * size
	}
	return s.Map(v) * size
}

// Options configures an Evaluator.
type Options struct {
	// Adjacent labels are too close when the gap between their coordinates
	// is less than TooCloseFactor times the mean of their footprints.
	TooCloseFactor float64
	// Adjacent labels are too far apart when the gap between their
	// coordinates exceeds TooFarFactor times the too-close threshold.
	TooFarFactor float64
}

// DefaultOptions returns the default evaluator Options.
func DefaultOptions() Options {
	return Options{
		TooCloseFactor: 2,
		TooFarFactor:   1.5,
	}
}

// Evaluator classifies tick label layouts.
type Evaluator struct {
	opts Options
}

// New returns a new Evaluator configured by opts.
func New(opts Options) *Evaluator {
	return &Evaluator{opts: opts}
}

// Input describes a candidate label layout.
type Input struct {
	Range       datarange.NumericRange
	Size        float64
	Orientation Orientation
	Ticks       []ticks.LabeledTick
	// The footprint of each tick's label along the axis, parallel to Ticks.
	Extents []float64
}

type placed struct {
	coord, extent float64
}

// Evaluate classifies the provided layout.  Only ticks whose coordinates
// fall within [0, Size] participate.  Adjacent pairs are scanned in
// coordinate order; the first pair closer than the too-close threshold
// yields TooClose.  Otherwise, any pair farther apart than the too-far
// threshold yields TooFar.
func (e *Evaluator) Evaluate(in Input) (Verdict, error) {
	if len(in.Extents) != len(in.Ticks) {
		return OK, fmt.Errorf("got %d label extents for %d ticks", len(in.Extents), len(in.Ticks))
	}
	var ps []placed
	for i, tick := range in.Ticks {
		c := Coordinate(in.Range, in.Size, in.Orientation, tick.Value)
		if c < 0 || c > in.Size {
			continue
		}
		ps = append(ps, placed{c, in.Extents[i]})
	}
	if len(ps) < 2 {
		return OK, nil
	}
	sort.Slice(ps, func(a, b int) bool {
		return ps[a].coord < ps[b].coord
	})
	tooFar := false
	for i := 1; i < len(ps); i++ {
		gap := ps[i].coord - ps[i-1].coord
		halfSum := (ps[i].extent + ps[i-1].extent) / 2
		closeThreshold := e.opts.TooCloseFactor * halfSum
		if gap < closeThreshold {
			return TooClose, nil
		}
		if gap > e.opts.TooFarFactor*closeThreshold {
			tooFar = true
		}
	}
	if tooFar {
		return TooFar, nil
	}
	return OK, nil
}
