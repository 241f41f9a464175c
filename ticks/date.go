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
	"fmt"
	"math"
	"time"

	"github.com/tebeka/strftime"

	datarange "github.com/ilhamster/chartcore/data_range"
)

// TimeUnit is a calendar unit in which date ticks are spaced.
type TimeUnit int

// Supported time units, finest first.
const (
	Millisecond TimeUnit = iota
	Second
	Minute
	Hour
	Day
	Month
	Year
)

func (u TimeUnit) String() string {
	if u < Millisecond || u > Year {
		return fmt.Sprintf("TimeUnit(%d)", int(u))
	}
	return units[u].name
}

const day = 24 * time.Hour

type unitSpec struct {
	name string
	// Nominal unit length, used only to compare spans against candidates.
	approx time.Duration
	// Spans shorter than this select this unit.
	below time.Duration
	// Candidate spacings, in units.  Nil for years, which use nice numbers.
	steps []int
	// strftime formats for tick labels and their coarser context.
	format, context string
}

var units = []unitSpec{
	Millisecond: {
		name:    "millisecond",
		approx:  time.Millisecond,
		below:   2 * time.Second,
		steps:   []int{1, 2, 5, 10, 20, 50, 100, 200, 250, 500, 1000},
		format:  "%H:%M:%S",
		context: "%Y-%m-%d",
	},
	Second: {
		name:    "second",
		approx:  time.Second,
		below:   2 * time.Minute,
		steps:   []int{1, 2, 3, 5, 10, 15, 20, 30, 60},
		format:  "%H:%M:%S",
		context: "%Y-%m-%d",
	},
	Minute: {
		name:    "minute",
		approx:  time.Minute,
		below:   2 * time.Hour,
		steps:   []int{1, 2, 3, 5, 10, 15, 20, 30, 60},
		format:  "%H:%M",
		context: "%Y-%m-%d",
	},
	Hour: {
		name:    "hour",
		approx:  time.Hour,
		below:   2 * day,
		steps:   []int{1, 2, 3, 4, 6, 12, 24},
		format:  "%H:%M",
		context: "%Y-%m-%d",
	},
	Day: {
		name:    "day",
		approx:  day,
		below:   60 * day,
		steps:   []int{1, 2, 3, 7, 14},
		format:  "%b %d",
		context: "%Y",
	},
	Month: {
		name:    "month",
		approx:  30 * day,
		below:   730 * day,
		steps:   []int{1, 2, 3, 4, 6, 12},
		format:  "%b",
		context: "%Y",
	},
	Year: {
		name:   "year",
		approx: 365 * day,
		below:  math.MaxInt64,
		format: "%Y",
	},
}

// SelectUnit returns the time unit suited to ticks spanning span.
func SelectUnit(span time.Duration) TimeUnit {
	for u := Millisecond; u < Year; u++ {
		if span < units[u].below {
			return u
		}
	}
	return Year
}

// timeStep is a tick spacing of n units.
type timeStep struct {
	unit TimeUnit
	n    int
}

func (s timeStep) String() string {
	return fmt.Sprintf("%d %s", s.n, s.unit)
}

// niceCeil returns the smallest nice number, 1, 2, or 5 times a power of
// ten, not less than x, and not less than 1.
func niceCeil(x float64) int {
	if x <= 1 {
		return 1
	}
	pow := math.Pow(10, math.Floor(math.Log10(x)))
	f := x / pow
	var nf float64
	switch {
	case f <= 1:
		nf = 1
	case f <= 2:
		nf = 2
	case f <= 5:
		nf = 5
	default:
		nf = 10
	}
	return int(math.Round(nf * pow))
}

// isCandidate returns true if n units is a permitted spacing.
func (u TimeUnit) isCandidate(n int) bool {
	if u == Year {
		return n >= 1 && niceCeil(float64(n)) == n
	}
	for _, step := range units[u].steps {
		if step == n {
			return true
		}
	}
	return false
}

// chooseStep returns the smallest candidate spacing not less than
// span/(count-1), starting at the unit selected for span and moving to
// coarser units when no candidate of that unit is large enough.
func chooseStep(span time.Duration, count int) timeStep {
	if count < 2 {
		count = 2
	}
	target := float64(span) / float64(count-1)
	for u := SelectUnit(span); u < Year; u++ {
		for _, n := range units[u].steps {
			if float64(n)*float64(units[u].approx) >= target {
				return timeStep{u, n}
			}
		}
	}
	return timeStep{Year, niceCeil(target / float64(units[Year].approx))}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// floor returns the latest step boundary at or before t, in t's location.
func (s timeStep) floor(t time.Time) time.Time {
	loc := t.Location()
	y, mo, d := t.Date()
	h, mi, sec := t.Clock()
	n := s.n
	switch s.unit {
	case Millisecond:
		return time.UnixMilli(floorDiv(t.UnixMilli(), int64(n)) * int64(n)).In(loc)
	case Second:
		return time.Date(y, mo, d, h, mi, (sec/n)*n, 0, loc)
	case Minute:
		return time.Date(y, mo, d, h, (mi/n)*n, 0, 0, loc)
	case Hour:
		return time.Date(y, mo, d, (h/n)*n, 0, 0, 0, loc)
	case Day:
		return time.Date(y, mo, 1+((d-1)/n)*n, 0, 0, 0, 0, loc)
	case Month:
		return time.Date(y, time.Month(1+((int(mo)-1)/n)*n), 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(int(floorDiv(int64(y), int64(n))*int64(n)), time.January, 1, 0, 0, 0, 0, loc)
	}
}

// at returns the k'th step after start.
func (s timeStep) at(start time.Time, k int) time.Time {
	n := k * s.n
	switch s.unit {
	case Millisecond:
		return start.Add(time.Duration(n) * time.Millisecond)
	case Second:
		return start.Add(time.Duration(n) * time.Second)
	case Minute:
		return start.Add(time.Duration(n) * time.Minute)
	case Hour:
		return start.Add(time.Duration(n) * time.Hour)
	case Day:
		return start.AddDate(0, 0, n)
	case Month:
		y, mo, d := start.Date()
		return time.Date(y, mo+time.Month(n), d, 0, 0, 0, 0, start.Location())
	default:
		return time.Date(start.Year()+n, time.January, 1, 0, 0, 0, 0, start.Location())
	}
}

// minorDivisions lists the ways a major step may be subdivided, in order of
// preference.
var minorDivisions = []int{4, 5, 3, 2, 7}

// minor returns the spacing of minor ticks under the receiver.  Single-unit
// steps are subdivided in the next finer unit.
func (s timeStep) minor() (timeStep, bool) {
	if s.n == 1 {
		switch s.unit {
		case Millisecond:
			return timeStep{}, false
		case Second:
			s = timeStep{Millisecond, 1000}
		case Minute:
			s = timeStep{Second, 60}
		case Hour:
			s = timeStep{Minute, 60}
		case Day:
			s = timeStep{Hour, 24}
		case Month:
			// Months are not evenly divisible into days; mark weeks.
			return timeStep{Day, 7}, true
		case Year:
			s = timeStep{Month, 12}
		}
	}
	for _, parts := range minorDivisions {
		if s.n%parts == 0 && s.unit.isCandidate(s.n/parts) {
			return timeStep{s.unit, s.n / parts}, true
		}
	}
	return timeStep{}, false
}

// date generates ticks at calendar-aligned intervals.
type date struct {
	opts Options
}

func (d *date) Kind() AxisKind {
	return Date
}

func toTime(ms float64, loc *time.Location) time.Time {
	return time.UnixMilli(int64(math.Round(ms))).In(loc)
}

func toMillis(t time.Time) float64 {
	return float64(t.UnixMilli())
}

// times returns the major tick times for r at count, and their step.
func (d *date) times(r datarange.NumericRange, count int) ([]time.Time, timeStep) {
	if !datarange.IsFinite(r) {
		return nil, timeStep{}
	}
	lo, hi := toTime(r.Min, d.opts.Location), toTime(r.Max, d.opts.Location)
	step := chooseStep(hi.Sub(lo), count)
	if r.IsPoint() {
		return []time.Time{lo}, step
	}
	start := step.floor(lo)
	var ret []time.Time
	for k := 0; k < maxGenerated; k++ {
		t := step.at(start, k)
		ret = append(ret, t)
		if !t.Before(hi) {
			break
		}
	}
	return ret, step
}

func formatTime(format string, t time.Time) string {
	label, _ := strftime.Format(format, t)
	return label
}

// label returns the tick label for t in the provided unit.
func label(unit TimeUnit, t time.Time) string {
	ret := formatTime(units[unit].format, t)
	if unit == Millisecond {
		ret += fmt.Sprintf(".%03d", t.Nanosecond()/int(time.Millisecond))
	}
	return ret
}

func (d *date) Ticks(r datarange.NumericRange, count int) []LabeledTick {
	times, step := d.times(r, count)
	ret := make([]LabeledTick, len(times))
	lastContext := ""
	for i, t := range times {
		ret[i] = LabeledTick{
			Tick: Tick{
				Value:  toMillis(t),
				Length: d.opts.MajorLength,
				Index:  i,
			},
			Label: label(step.unit, t),
		}
		if format := units[step.unit].context; format != "" {
			context := formatTime(format, t)
			if i == 0 || context != lastContext {
				ret[i].Context = context
			}
			lastContext = context
		}
	}
	return ret
}

func (d *date) SuggestIncreased(count int) int {
	return ladderUp(count)
}

func (d *date) SuggestDecreased(count int) int {
	return ladderDown(count)
}

func (d *date) DefaultCount() int {
	return defaultCount
}

func (d *date) Minor(r datarange.NumericRange, count int) []Tick {
	majors, step := d.times(r, count)
	if len(majors) < 2 {
		return nil
	}
	minor, ok := step.minor()
	if !ok {
		return nil
	}
	var ret []Tick
	for i, major := range majors[:len(majors)-1] {
		next := majors[i+1]
		for k := 1; k < maxGenerated; k++ {
			t := minor.at(major, k)
			if !t.Before(next) {
				break
			}
			ret = append(ret, Tick{
				Value:  toMillis(t),
				Length: d.opts.MinorLength,
				Index:  len(ret),
			})
		}
	}
	return ret
}
