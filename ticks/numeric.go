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

package ticks

import (
	"math"

	"github.com/dustin/go-humanize"

	datarange "github.com/ilhamster/chartcore/data_range"
)

// maxGenerated bounds the number of ticks any generator will produce.
const maxGenerated = 10000

// niceNumber returns a "nice" number, 1, 2, 5, or 10 times a power of ten,
// approximating x.  If round is true, the nearest nice number is returned;
// otherwise the largest nice number not exceeding x is returned.
func niceNumber(x float64, round bool) float64 {
	if x <= 0 || math.IsInf(x, 0) || math.IsNaN(x) {
		return 0
	}
	exp := math.Floor(math.Log10(x))
	pow := math.Pow(10, exp)
	f := x / pow
	var nf float64
	if round {
		switch {
		case f < 1.5:
			nf = 1
		case f < 3:
			nf = 2
		case f < 7:
			nf = 5
		default:
			nf = 10
		}
	} else {
		switch {
		case f < 2:
			nf = 1
		case f < 5:
			nf = 2
		case f < 10:
			nf = 5
		default:
			nf = 10
		}
	}
	return nf * pow
}

// numericStep returns the tick spacing for r at the desired count.
func numericStep(r datarange.NumericRange, count int) float64 {
	niceSpan := niceNumber(datarange.Span(r), true)
	if count < 2 {
		return niceSpan
	}
	step := niceNumber(niceSpan/float64(count-1), false)
	if step == 0 {
		step = math.Pow(10, math.Floor(math.Log10(niceSpan))-1)
	}
	return step
}

// decimals returns the number of decimal places needed to show multiples of
// step exactly.
func decimals(step float64) int {
	d := -int(math.Floor(math.Log10(step)))
	if d < 0 {
		return 0
	}
	return d
}

// roundTo rounds v to the provided number of decimal places, normalizing
// negative zero.
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p)/p + 0
}

func formatNumber(v float64) string {
	return humanize.Commaf(v)
}

// numeric generates ticks at "nice number" intervals.
type numeric struct {
	opts Options
}

func (n *numeric) Kind() AxisKind {
	return Numeric
}

// values returns the major tick values for r at count, and their step.
func (n *numeric) values(r datarange.NumericRange, count int) ([]float64, float64) {
	if !datarange.IsFinite(r) {
		return nil, 0
	}
	if r.IsPoint() {
		return []float64{r.Min}, 0
	}
	step := numericStep(r, count)
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, 0
	}
	places := decimals(step)
	first := math.Floor(r.Min/step) * step
	last := math.Ceil(r.Max/step) * step
	var ret []float64
	for i := 0; i < maxGenerated; i++ {
		v := first + float64(i)*step
		if v > last+step/2 {
			break
		}
		ret = append(ret, roundTo(v, places))
	}
	return ret, step
}

func (n *numeric) Ticks(r datarange.NumericRange, count int) []LabeledTick {
	vals, _ := n.values(r, count)
	ret := make([]LabeledTick, len(vals))
	for i, v := range vals {
		ret[i] = LabeledTick{
			Tick: Tick{
				Value:  v,
				Length: n.opts.MajorLength,
				Index:  i,
			},
			Label: formatNumber(v),
		}
	}
	return ret
}

func (n *numeric) SuggestIncreased(count int) int {
	return ladderUp(count)
}

func (n *numeric) SuggestDecreased(count int) int {
	return ladderDown(count)
}

func (n *numeric) DefaultCount() int {
	return defaultCount
}

// minorParts returns the number of intervals into which a major step is
// subdivided, by the step's leading digit.
func minorParts(step float64) int {
	mantissa := math.Round(step / math.Pow(10, math.Floor(math.Log10(step))))
	switch mantissa {
	case 2:
		return 4
	default:
		return 5
	}
}

func (n *numeric) Minor(r datarange.NumericRange, count int) []Tick {
	majors, step := n.values(r, count)
	if len(majors) < 2 {
		return nil
	}
	parts := minorParts(step)
	minorStep := step / float64(parts)
	places := decimals(minorStep)
	var ret []Tick
	for _, major := range majors[:len(majors)-1] {
		for i := 1; i < parts; i++ {
			ret = append(ret, Tick{
				Value:  roundTo(major+float64(i)*minorStep, places),
				Length: n.opts.MinorLength,
				Index:  len(ret),
			})
		}
	}
	return ret
}
