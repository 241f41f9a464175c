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

// Package axis lays out chart axes.  Given a visible range and a pixel
// size, an Axis repeatedly generates major ticks, measures their labels, and
// evaluates the resulting layout, adjusting the requested tick count until
// the labels neither overlap nor leave too much empty space, or until a
// bounded number of attempts is exhausted.
package axis

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ilhamster/chartcore/category"
	datarange "github.com/ilhamster/chartcore/data_range"
	labellayout "github.com/ilhamster/chartcore/label_layout"
	"github.com/ilhamster/chartcore/measure"
	"github.com/ilhamster/chartcore/ticks"
	"github.com/ilhamster/chartcore/util"
)

const (
	axisKindKey     = "axis_kind"
	axisLocationKey = "axis_location"
	axisMinKey      = "axis_min"
	axisMaxKey      = "axis_max"

	// The tick counts requested on each convergence attempt.
	axisCountsTriedKey = "axis_tick_counts_tried"
	// Date axes only: the interval between the first two major ticks.
	axisTickSpacingKey = "axis_tick_spacing"

	labelPaddingPxKey = "axis_render_label_padding_px"
	markerLengthPxKey = "axis_render_marker_length_px"
)

// DefaultMaxAttempts bounds the tick convergence loop.
const DefaultMaxAttempts = 12

// Auto may be passed as a width or height to Update to size that dimension
// from the axis's label measurements.
var Auto = math.NaN()

// Location is the side of the plot area along which an axis runs.
type Location int

// Axis locations.
const (
	Bottom Location = iota
	Left
	Top
	Right
)

var locationNames = map[Location]string{
	Bottom: "bottom",
	Left:   "left",
	Top:    "top",
	Right:  "right",
}

func (l Location) String() string {
	if name, ok := locationNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Location(%d)", int(l))
}

// ParseLocation returns the Location with the provided name.
func ParseLocation(name string) (Location, error) {
	for l, n := range locationNames {
		if n == name {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unsupported axis location '%s'", name)
}

// Orientation returns the direction along which an axis at the receiver
// runs.
func (l Location) Orientation() labellayout.Orientation {
	if l == Left || l == Right {
		return labellayout.Vertical
	}
	return labellayout.Horizontal
}

// ErrConfiguration is returned when an axis is updated with an unusable
// combination of location, range, and size.
var ErrConfiguration = errors.New("axis configuration error")

// ConfigurationError describes an unusable axis configuration.  It matches
// ErrConfiguration under errors.Is.
type ConfigurationError struct {
	Axis   string
	Reason string
}

func (ce *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: axis '%s': %s", ErrConfiguration, ce.Axis, ce.Reason)
}

// Is supports errors.Is(err, ErrConfiguration).
func (ce *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// RenderSettings contains pixel settings for rendering an axis band.
type RenderSettings struct {
	// Space between tick markers and their labels, and between labels and
	// the outer edge of the band.
	LabelPaddingPx float64
	// The length of major tick markers.
	MarkerLengthPx float64
}

// DefaultRenderSettings returns a default set of RenderSettings.
func DefaultRenderSettings() RenderSettings {
	return RenderSettings{
		LabelPaddingPx: 4,
		MarkerLengthPx: 6,
	}
}

// Apply annotates with the receiving RenderSettings.
func (rs RenderSettings) Apply() util.PropertyUpdate {
	return util.Chain(
		util.DoubleProperty(labelPaddingPxKey, rs.LabelPaddingPx),
		util.DoubleProperty(markerLengthPxKey, rs.MarkerLengthPx),
	)
}

// Options configures an Axis.
type Options struct {
	// Display metadata for the axis.  Required.
	Category *category.Category
	Kind     ticks.AxisKind
	Ticks    ticks.Options
	// The font in which tick labels are rendered, and a measurer for it.
	// If Measurer is nil, a measure.FaceMeasurer is used.
	Font     measure.Font
	Measurer measure.Measurer
	Layout   labellayout.Options
	Render   RenderSettings
	// If non-positive, DefaultMaxAttempts is used.
	MaxAttempts int
	// If nil, the logrus standard logger is used.
	Logger logrus.FieldLogger
}

// DefaultOptions returns a default set of Options for an axis of the
// provided kind.
func DefaultOptions(cat *category.Category, kind ticks.AxisKind) Options {
	return Options{
		Category:    cat,
		Kind:        kind,
		Ticks:       ticks.DefaultOptions(),
		Font:        measure.Font{Family: "sans", Size: 12},
		Layout:      labellayout.DefaultOptions(),
		Render:      DefaultRenderSettings(),
		MaxAttempts: DefaultMaxAttempts,
	}
}

// Layout is the result of laying out an axis.
type Layout struct {
	Location Location
	Range    datarange.NumericRange
	// The final major ticks, restricted to Range, and their screen
	// coordinates along the axis.
	Major       []ticks.LabeledTick
	Coordinates []float64
	// The minor ticks between the final major ticks, and their coordinates.
	Minor            []ticks.Tick
	MinorCoordinates []float64
	// The pixel size of the axis band.
	Width, Height float64
	// The tick count that produced Major.
	Count int
	// The number of convergence attempts made.
	Attempts int
	// The tick count requested on each attempt, in order.
	Tried []int
	// False if the attempt bound was exhausted; Major is then empty.
	Converged bool
}

// Axis lays out a single chart axis.  An Axis remembers the tick count on
// which it last converged, and starts its next layout from that count.
type Axis struct {
	opts      Options
	major     ticks.MajorGenerator
	minor     ticks.MinorGenerator
	evaluator *labellayout.Evaluator
	log       logrus.FieldLogger
	seed      int
	last      *Layout
}

// New returns a new Axis configured by opts.
func New(opts Options) (*Axis, error) {
	if opts.Category == nil {
		return nil, fmt.Errorf("axis requires a category")
	}
	major, minor, err := ticks.New(opts.Kind, opts.Ticks)
	if err != nil {
		return nil, err
	}
	return newAxis(opts, major, minor), nil
}

func newAxis(opts Options, major ticks.MajorGenerator, minor ticks.MinorGenerator) *Axis {
	if opts.Measurer == nil {
		opts.Measurer = measure.NewFaceMeasurer(0)
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Layout == (labellayout.Options{}) {
		opts.Layout = labellayout.DefaultOptions()
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Axis{
		opts:      opts,
		major:     major,
		minor:     minor,
		evaluator: labellayout.New(opts.Layout),
		log:       log.WithField("axis", opts.Category.ID()),
		seed:      major.DefaultCount(),
	}
}

// ID returns the ID of the receiver's category.
func (a *Axis) ID() string {
	return a.opts.Category.ID()
}

// Kind returns the receiver's AxisKind.
func (a *Axis) Kind() ticks.AxisKind {
	return a.opts.Kind
}

// Font returns the font in which the receiver's labels are measured.
func (a *Axis) Font() measure.Font {
	return a.opts.Font
}

// Last returns the receiver's most recent Layout, or nil if it has never
// been laid out.
func (a *Axis) Last() *Layout {
	return a.last
}

func (a *Axis) configErr(format string, args ...any) error {
	return &ConfigurationError{
		Axis:   a.ID(),
		Reason: fmt.Sprintf(format, args...),
	}
}

func validSize(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// Update lays out the receiver at the provided location, over the provided
// visible range, within a band of the provided pixel size.  At most one of
// width or height may be Auto, and the dimension along which the axis runs
// (width for horizontal axes, height for vertical ones) must be supplied.
func (a *Axis) Update(location Location, r datarange.NumericRange, width, height float64) (*Layout, error) {
	if _, ok := locationNames[location]; !ok {
		return nil, a.configErr("unsupported location %s", location)
	}
	widthAuto, heightAuto := math.IsNaN(width), math.IsNaN(height)
	if widthAuto && heightAuto {
		return nil, a.configErr("width and height may not both be omitted")
	}
	orientation := location.Orientation()
	size := width
	if orientation == labellayout.Vertical {
		size = height
	}
	if math.IsNaN(size) {
		if orientation == labellayout.Vertical {
			return nil, a.configErr("a vertical axis requires a height")
		}
		return nil, a.configErr("a horizontal axis requires a width")
	}
	if (!widthAuto && !validSize(width)) || (!heightAuto && !validSize(height)) {
		return nil, a.configErr("invalid size %vx%v", width, height)
	}
	if !datarange.IsFinite(r) {
		return nil, a.configErr("unsupported range %s", r)
	}
	res, err := a.converge(r, size, orientation)
	if err != nil {
		return nil, err
	}
	ret := &Layout{
		Location:  location,
		Range:     r,
		Count:     res.count,
		Attempts:  res.attempts,
		Tried:     res.tried,
		Converged: res.converged,
		Width:     width,
		Height:    height,
	}
	for _, tick := range res.ticks {
		if !r.Contains(tick.Value) {
			continue
		}
		tick.Index = len(ret.Major)
		ret.Major = append(ret.Major, tick)
		ret.Coordinates = append(ret.Coordinates, labellayout.Coordinate(r, size, orientation, tick.Value))
	}
	if res.converged {
		a.seed = res.count
		for _, tick := range a.minor.Minor(r, res.count) {
			if !r.Contains(tick.Value) {
				continue
			}
			tick.Index = len(ret.Minor)
			ret.Minor = append(ret.Minor, tick)
			ret.MinorCoordinates = append(ret.MinorCoordinates, labellayout.Coordinate(r, size, orientation, tick.Value))
		}
	} else {
		a.log.WithFields(logrus.Fields{
			"attempts": res.attempts,
			"range":    r.String(),
			"size":     size,
		}).Warn("tick layout did not converge")
	}
	if widthAuto {
		ret.Width = a.autoSize(ret.Major, orientation)
	}
	if heightAuto {
		ret.Height = a.autoSize(ret.Major, orientation)
	}
	a.last = ret
	return ret, nil
}

// autoSize returns the extent of the axis band across the axis direction:
// the largest label extent in that direction plus the marker length and
// label padding.  Context labels occupy a second row.
func (a *Axis) autoSize(major []ticks.LabeledTick, o labellayout.Orientation) float64 {
	across := func(s measure.Size) float64 {
		if o == labellayout.Horizontal {
			return s.Height
		}
		return s.Width
	}
	var label, context float64
	for _, tick := range major {
		label = math.Max(label, across(a.opts.Measurer.Measure(a.opts.Font, tick.Label)))
		if tick.Context != "" {
			context = math.Max(context, across(a.opts.Measurer.Measure(a.opts.Font, tick.Context)))
		}
	}
	if o == labellayout.Horizontal {
		label += context
	} else {
		label = math.Max(label, context)
	}
	return label + a.opts.Render.MarkerLengthPx + 2*a.opts.Render.LabelPaddingPx
}

// extents returns the footprint of each tick's label along the axis.
func (a *Axis) extents(ts []ticks.LabeledTick, o labellayout.Orientation) []float64 {
	ret := make([]float64, len(ts))
	for i, tick := range ts {
		size := a.opts.Measurer.Measure(a.opts.Font, tick.Label)
		if o == labellayout.Horizontal {
			ret[i] = size.Width
		} else {
			ret[i] = size.Height
		}
	}
	return ret
}

type convergence struct {
	ticks     []ticks.LabeledTick
	count     int
	attempts  int
	tried     []int
	converged bool
}

// converge drives tick generation and layout evaluation until the layout is
// acceptable, the count suggestion policy is exhausted, the verdict
// oscillates, or the attempt bound is reached.  In the last case no ticks
// are returned.
func (a *Axis) converge(r datarange.NumericRange, size float64, o labellayout.Orientation) (convergence, error) {
	count := a.seed
	var (
		prevTicks   []ticks.LabeledTick
		prevCount   int
		prevVerdict labellayout.Verdict
		tried       []int
	)
	done := func(ts []ticks.LabeledTick, count, attempt int) (convergence, error) {
		return convergence{
			ticks:     ts,
			count:     count,
			attempts:  attempt,
			tried:     tried,
			converged: true,
		}, nil
	}
	for attempt := 1; attempt <= a.opts.MaxAttempts; attempt++ {
		tried = append(tried, count)
		ts := a.major.Ticks(r, count)
		verdict, err := a.evaluator.Evaluate(labellayout.Input{
			Range:       r,
			Size:        size,
			Orientation: o,
			Ticks:       ts,
			Extents:     a.extents(ts, o),
		})
		if err != nil {
			return convergence{}, err
		}
		a.log.WithFields(logrus.Fields{
			"attempt": attempt,
			"count":   count,
			"ticks":   len(ts),
			"verdict": verdict.String(),
		}).Debug("evaluated tick layout")
		first := attempt == 1
		var next int
		switch verdict {
		case labellayout.OK:
			return done(ts, count, attempt)
		case labellayout.TooClose:
			if !first && prevVerdict == labellayout.TooFar {
				// The previous, sparser set did not overlap.
				return done(prevTicks, prevCount, attempt)
			}
			next = a.major.SuggestDecreased(count)
		case labellayout.TooFar:
			if !first && prevVerdict == labellayout.TooClose {
				return done(ts, count, attempt)
			}
			next = a.major.SuggestIncreased(count)
		}
		if next == count || next <= 0 {
			return done(ts, count, attempt)
		}
		prevTicks, prevCount, prevVerdict = ts, count, verdict
		count = next
	}
	return convergence{
		count:    count,
		attempts: a.opts.MaxAttempts,
		tried:    tried,
	}, nil
}

// Define annotates with a definition of the receiver and its most recent
// layout.  Date axes report their range as timestamps.
func (a *Axis) Define() util.PropertyUpdate {
	updates := []util.PropertyUpdate{
		a.opts.Category.Define(),
		util.StringProperty(axisKindKey, a.opts.Kind.String()),
		a.opts.Render.Apply(),
	}
	if last := a.last; last != nil {
		isDate := a.opts.Kind == ticks.Date
		tried := make([]int64, len(last.Tried))
		for i, count := range last.Tried {
			tried[i] = int64(count)
		}
		updates = append(updates,
			util.StringProperty(axisLocationKey, last.Location.String()),
			util.IfElse(isDate,
				util.Chain(
					util.TimestampProperty(axisMinKey, fromMillis(last.Range.Min)),
					util.TimestampProperty(axisMaxKey, fromMillis(last.Range.Max)),
				),
				util.Chain(
					util.DoubleProperty(axisMinKey, last.Range.Min),
					util.DoubleProperty(axisMaxKey, last.Range.Max),
				),
			),
			util.IntegersProperty(axisCountsTriedKey, tried...),
		)
		if len(last.Major) >= 2 {
			spacing := last.Major[1].Value - last.Major[0].Value
			updates = append(updates, util.If(isDate,
				util.DurationProperty(axisTickSpacingKey, time.Duration(spacing*float64(time.Millisecond)))))
		}
	}
	return util.Chain(updates...)
}

// fromMillis returns the UTC instant at the provided epoch milliseconds.
func fromMillis(ms float64) time.Time {
	return time.Unix(0, int64(ms*float64(time.Millisecond))).UTC()
}
