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

// Package chart composes axes and plots into charts.  A Chart holds up to
// one axis per location and any number of attached plots.  It accepts only
// two inbound signals, a new visible range for an axis and a new pixel
// size, and lays out its axes on demand, producing a Frame for renderers.
//
// A chart's layout has the structure:
//
//	+------+---------------+-------+
//	|      |   top band    |       |
//	+------+---------------+-------+
//	| left |   plot area   | right |
//	+------+---------------+-------+
//	|      |  bottom band  |       |
//	+------+---------------+-------+
//
// Vertical bands are auto-sized in width, and horizontal bands in height,
// from their tick label measurements.
package chart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/aclements/go-moremath/scale"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ilhamster/chartcore/axis"
	"github.com/ilhamster/chartcore/category"
	datarange "github.com/ilhamster/chartcore/data_range"
)

var (
	// ErrAttached is returned when attaching an item already owned by
	// another chart.
	ErrAttached = errors.New("already attached")
	// ErrLocationTaken is returned when adding an axis at an occupied
	// location.
	ErrLocationTaken = errors.New("axis location already occupied")
	// ErrNoAxis is returned when signaling a location with no axis.
	ErrNoAxis = errors.New("no axis at location")
	// ErrInvalidSize is returned for negative or non-finite chart sizes.
	ErrInvalidSize = errors.New("invalid chart size")
	// ErrUnknownChart is returned by a Registry for unknown chart IDs.
	ErrUnknownChart = errors.New("unknown chart")
)

// Rect is a pixel rectangle with its origin at the top left.
type Rect struct {
	X, Y, Width, Height float64
}

// Transform maps data coordinates into the pixel coordinates of a chart's
// plot area.
type Transform struct {
	X, Y datarange.NumericRange
	Area Rect
}

// Apply returns the pixel position of the data point (x, y).  Y grows
// downward from the top of the plot area.
func (t Transform) Apply(x, y float64) (px, py float64) {
	sx := scale.Linear{Min: t.X.Min, Max: t.X.Max}
	sy := scale.Linear{Min: t.Y.Min, Max: t.Y.Max}
	return t.Area.X + sx.Map(x)*t.Area.Width,
		t.Area.Y + (1-sy.Map(y))*t.Area.Height
}

// Options configures a Chart.
type Options struct {
	Width, Height float64
	// The resolution at which axis fonts are measured, used to style band
	// labels in pixels.  Non-positive selects 72.
	DPI float64
	// If nil, the logrus standard logger is used.
	Logger logrus.FieldLogger
}

// Chart is a set of axes and plots laid out within a pixel rectangle.  It is
// safe for concurrent use.
type Chart struct {
	id  string
	log logrus.FieldLogger

	mu            sync.Mutex
	width, height float64
	dpi           float64
	axes          map[axis.Location]*axis.Axis
	ranges        map[axis.Location]datarange.NumericRange
	plots         []Plot
	stale         bool
	frame         *Frame
}

func validSize(width, height float64) error {
	for _, v := range []float64{width, height} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w %vx%v", ErrInvalidSize, width, height)
		}
	}
	return nil
}

func newChart(id string, opts Options) (*Chart, error) {
	if err := validSize(opts.Width, opts.Height); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Chart{
		id:     id,
		log:    log.WithField("chart", id),
		width:  opts.Width,
		height: opts.Height,
		dpi:    opts.DPI,
		axes:   map[axis.Location]*axis.Axis{},
		ranges: map[axis.Location]datarange.NumericRange{},
		stale:  true,
	}, nil
}

// ID returns the receiver's unique ID.
func (c *Chart) ID() string {
	return c.id
}

// AddAxis places a at the provided location.  The axis's visible range is
// initially empty, and must be set with SetVisibleRange before layout.
func (c *Chart) AddAxis(location axis.Location, a *axis.Axis) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.axes[location]; ok {
		return fmt.Errorf("%w: %s holds axis '%s'", ErrLocationTaken, location, existing.ID())
	}
	c.axes[location] = a
	c.ranges[location] = datarange.Empty[float64]()
	c.stale = true
	return nil
}

// Axis returns the axis at the provided location, if any.
func (c *Chart) Axis(location axis.Location) (*axis.Axis, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.axes[location]
	return a, ok
}

// SetVisibleRange sets the visible range of the axis at the provided
// location.
func (c *Chart) SetVisibleRange(location axis.Location, r datarange.NumericRange) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.axes[location]; !ok {
		return fmt.Errorf("%w %s", ErrNoAxis, location)
	}
	c.ranges[location] = r
	c.stale = true
	c.log.WithFields(logrus.Fields{
		"location": location.String(),
		"range":    r.String(),
	}).Debug("visible range changed")
	return nil
}

// VisibleRange returns the visible range of the axis at the provided
// location.
func (c *Chart) VisibleRange(location axis.Location) (datarange.NumericRange, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.ranges[location]
	if !ok {
		return r, fmt.Errorf("%w %s", ErrNoAxis, location)
	}
	return r, nil
}

// Resize sets the receiver's pixel size.
func (c *Chart) Resize(width, height float64) error {
	if err := validSize(width, height); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
	c.stale = true
	return nil
}

// AddPlot attaches p to the receiver.
func (c *Chart) AddPlot(p Plot) error {
	if err := Attach(p.Attachment(), c); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.plots {
		if existing == p {
			return nil
		}
	}
	c.plots = append(c.plots, p)
	c.stale = true
	return nil
}

// RemovePlot detaches the plot with the provided ID, returning false if the
// receiver holds no such plot.
func (c *Chart) RemovePlot(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, p := range c.plots {
		if p.ID() == id {
			Detach(p.Attachment())
			c.plots = append(c.plots[:i], c.plots[i+1:]...)
			c.stale = true
			return true
		}
	}
	return false
}

// Plots returns the IDs of the receiver's plots, in attachment order.
func (c *Chart) Plots() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ret := make([]string, len(c.plots))
	for i, p := range c.plots {
		ret[i] = p.ID()
	}
	return ret
}

func (c *Chart) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stale = true
}

// NeedsLayout returns true if the receiver has changed since its last
// layout.
func (c *Chart) NeedsLayout() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stale
}

// rangeAt returns the visible range at the first of the provided locations
// holding an axis.
func (c *Chart) rangeAt(locations ...axis.Location) datarange.NumericRange {
	for _, l := range locations {
		if r, ok := c.ranges[l]; ok {
			return r
		}
	}
	return datarange.Empty[float64]()
}

func (c *Chart) transform(area Rect) Transform {
	return Transform{
		X:    c.rangeAt(axis.Bottom, axis.Top),
		Y:    c.rangeAt(axis.Left, axis.Right),
		Area: area,
	}
}

// Transform returns the receiver's current data-to-pixel transform.  Before
// the first layout, the plot area is the whole chart.
func (c *Chart) Transform() Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	area := Rect{Width: c.width, Height: c.height}
	if c.frame != nil {
		area = c.frame.PlotArea
	}
	return c.transform(area)
}

type sizing func(location axis.Location) (width, height float64)

// layoutAxes concurrently lays out the receiver's axes at the provided
// locations.
func (c *Chart) layoutAxes(ctx context.Context, size sizing, locations ...axis.Location) (map[axis.Location]*axis.Layout, error) {
	present := []axis.Location{}
	for _, l := range locations {
		if _, ok := c.axes[l]; ok {
			present = append(present, l)
		}
	}
	results := make([]*axis.Layout, len(present))
	g, ctx := errgroup.WithContext(ctx)
	for i, l := range present {
		i, l := i, l
		a, r := c.axes[l], c.ranges[l]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			width, height := size(l)
			layout, err := a.Update(l, r, width, height)
			if err != nil {
				return fmt.Errorf("failed to lay out %s axis: %w", l, err)
			}
			results[i] = layout
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	ret := make(map[axis.Location]*axis.Layout, len(present))
	for i, l := range present {
		ret[l] = results[i]
	}
	return ret, nil
}

func extent(layouts map[axis.Location]*axis.Layout, l axis.Location, width bool) float64 {
	layout, ok := layouts[l]
	if !ok {
		return 0
	}
	if width {
		return layout.Width
	}
	return layout.Height
}

// Layout lays out the receiver's axes and returns the resulting Frame.
// Vertical axes are first sized against the full chart height, then
// horizontal axes against the remaining width, and finally vertical axes
// again against the remaining height.
func (c *Chart) Layout(ctx context.Context) (*Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	vertical := func(height float64) sizing {
		return func(axis.Location) (float64, float64) {
			return axis.Auto, height
		}
	}
	side, err := c.layoutAxes(ctx, vertical(c.height), axis.Left, axis.Right)
	if err != nil {
		return nil, err
	}
	plotWidth := math.Max(0, c.width-extent(side, axis.Left, true)-extent(side, axis.Right, true))
	band, err := c.layoutAxes(ctx, func(axis.Location) (float64, float64) {
		return plotWidth, axis.Auto
	}, axis.Bottom, axis.Top)
	if err != nil {
		return nil, err
	}
	plotHeight := math.Max(0, c.height-extent(band, axis.Top, false)-extent(band, axis.Bottom, false))
	if side, err = c.layoutAxes(ctx, vertical(plotHeight), axis.Left, axis.Right); err != nil {
		return nil, err
	}
	left, top := extent(side, axis.Left, true), extent(band, axis.Top, false)
	// Vertical bands may have narrowed or widened on relayout.
	plotWidth = math.Max(0, c.width-left-extent(side, axis.Right, true))
	f := &Frame{
		ChartID: c.id,
		Width:   c.width,
		Height:  c.height,
		PlotArea: Rect{
			X:      left,
			Y:      top,
			Width:  plotWidth,
			Height: plotHeight,
		},
	}
	bounds := map[axis.Location]Rect{
		axis.Left:   {0, top, left, plotHeight},
		axis.Right:  {left + plotWidth, top, extent(side, axis.Right, true), plotHeight},
		axis.Top:    {left, 0, plotWidth, top},
		axis.Bottom: {left, top + plotHeight, plotWidth, extent(band, axis.Bottom, false)},
	}
	locations := make([]axis.Location, 0, len(c.axes))
	for l := range c.axes {
		locations = append(locations, l)
	}
	sort.Slice(locations, func(a, b int) bool {
		return locations[a] < locations[b]
	})
	for _, l := range locations {
		layout, ok := side[l]
		if !ok {
			layout = band[l]
		}
		b, err := newBand(c.axes[l], bounds[l], layout, c.dpi)
		if err != nil {
			return nil, err
		}
		f.Bands = append(f.Bands, b)
		if !layout.Converged {
			c.log.WithField("axis", c.axes[l].ID()).Warn("axis laid out without ticks")
		}
	}
	for _, p := range c.plots {
		f.Plots = append(f.Plots, p.ID())
		if cp, ok := p.(Categorized); ok {
			if f.PlotCategories == nil {
				f.PlotCategories = map[string][]*category.Category{}
			}
			f.PlotCategories[p.ID()] = cp.Categories()
		}
	}
	f.Transform = c.transform(f.PlotArea)
	c.frame = f
	c.stale = false
	c.log.WithFields(logrus.Fields{
		"bands": len(f.Bands),
		"plots": len(f.Plots),
	}).Debug("laid out chart")
	return f, nil
}

// Frame returns the receiver's most recent Frame, laying the receiver out
// first if it has changed since.
func (c *Chart) Frame(ctx context.Context) (*Frame, error) {
	c.mu.Lock()
	f, stale := c.frame, c.stale
	c.mu.Unlock()
	if f != nil && !stale {
		return f, nil
	}
	return c.Layout(ctx)
}
