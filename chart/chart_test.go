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

package chart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilhamster/chartcore/axis"
	"github.com/ilhamster/chartcore/category"
	datarange "github.com/ilhamster/chartcore/data_range"
	"github.com/ilhamster/chartcore/dataset"
	"github.com/ilhamster/chartcore/dimension"
	"github.com/ilhamster/chartcore/measure"
	"github.com/ilhamster/chartcore/ticks"
	"github.com/ilhamster/chartcore/util"
)

var tenPxPerRune = measure.Func(func(f measure.Font, text string) measure.Size {
	return measure.Size{Width: float64(10 * len([]rune(text))), Height: 10}
})

func newAxis(t *testing.T, id string, kind ticks.AxisKind) *axis.Axis {
	t.Helper()
	opts := axis.DefaultOptions(category.New(id, id, ""), kind)
	opts.Measurer = tenPxPerRune
	a, err := axis.New(opts)
	require.NoError(t, err)
	return a
}

// testChart returns a 400x300 chart with a numeric x axis over [0, 100] at
// the bottom and a numeric y axis over [0, 10] at the left.
func testChart(t *testing.T) (*Registry, *Chart) {
	t.Helper()
	reg := NewRegistry(nil, nil)
	c, err := reg.New(Options{Width: 400, Height: 300})
	require.NoError(t, err)
	require.NoError(t, c.AddAxis(axis.Bottom, newAxis(t, "x", ticks.Numeric)))
	require.NoError(t, c.AddAxis(axis.Left, newAxis(t, "y", ticks.Numeric)))
	require.NoError(t, c.SetVisibleRange(axis.Bottom, datarange.Numeric(0, 100)))
	require.NoError(t, c.SetVisibleRange(axis.Left, datarange.Numeric(0, 10)))
	return reg, c
}

type fakePlot struct {
	id         string
	attachment Attachment

	mu     sync.Mutex
	events []dataset.ChangeEvent[float64, string]
	xforms []Transform
}

func (fp *fakePlot) ID() string               { return fp.id }
func (fp *fakePlot) Attachment() *Attachment { return &fp.attachment }

func (fp *fakePlot) Changed(ev dataset.ChangeEvent[float64, string], t Transform) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.events = append(fp.events, ev)
	fp.xforms = append(fp.xforms, t)
}

func TestIDAllocator(t *testing.T) {
	ida := NewIDAllocator()
	var got []string
	for _, kind := range []string{"chart", "plot", "chart", "plot", "chart"} {
		got = append(got, ida.Next(kind))
	}
	want := []string{"chart-0", "plot-0", "chart-1", "plot-1", "chart-2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Next() diff (-want +got):\n%s", diff)
	}
	// Independent allocators do not share state.
	assert.Equal(t, "chart-0", NewIDAllocator().Next("chart"))
}

func TestLayout(t *testing.T) {
	_, c := testChart(t)
	require.True(t, c.NeedsLayout())
	f, err := c.Layout(context.Background())
	require.NoError(t, err)
	assert.False(t, c.NeedsLayout())
	// The y axis band is as wide as its widest label, "10", plus a 6px
	// marker and 4px padding either side; the x axis band is one 10px label
	// row high plus the same.
	wantArea := Rect{X: 34, Y: 0, Width: 366, Height: 276}
	if diff := cmp.Diff(wantArea, f.PlotArea); diff != "" {
		t.Errorf("plot area diff (-want +got):\n%s", diff)
	}
	bottom, ok := f.Band(axis.Bottom)
	require.True(t, ok)
	assert.Equal(t, "x", bottom.AxisID)
	if diff := cmp.Diff(Rect{34, 276, 366, 24}, bottom.Bounds); diff != "" {
		t.Errorf("bottom band diff (-want +got):\n%s", diff)
	}
	assert.True(t, bottom.Layout.Converged)
	var labels []string
	for _, tick := range bottom.Layout.Major {
		labels = append(labels, tick.Label)
	}
	if diff := cmp.Diff([]string{"0", "20", "40", "60", "80", "100"}, labels); diff != "" {
		t.Errorf("bottom labels diff (-want +got):\n%s", diff)
	}
	left, ok := f.Band(axis.Left)
	require.True(t, ok)
	if diff := cmp.Diff(Rect{0, 0, 34, 276}, left.Bounds); diff != "" {
		t.Errorf("left band diff (-want +got):\n%s", diff)
	}
	assert.Len(t, left.Layout.Major, 11)
	size, ok := left.LabelStyle.Get("font-size")
	assert.True(t, ok)
	assert.Equal(t, "12.00px", size)
	_, ok = f.Band(axis.Top)
	assert.False(t, ok)

	x, y := f.Transform.Apply(50, 5)
	assert.InDelta(t, 217, x, 1e-9)
	assert.InDelta(t, 138, y, 1e-9)

	// Frames are cached until a signal arrives.
	again, err := c.Frame(context.Background())
	require.NoError(t, err)
	assert.Same(t, f, again)
	require.NoError(t, c.SetVisibleRange(axis.Bottom, datarange.Numeric(0, 50)))
	again, err = c.Frame(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, f, again)
}

func TestLayoutErrors(t *testing.T) {
	reg := NewRegistry(nil, nil)
	c, err := reg.New(Options{Width: 200, Height: 100})
	require.NoError(t, err)
	require.NoError(t, c.AddAxis(axis.Bottom, newAxis(t, "x", ticks.Numeric)))
	// No visible range has been set.
	_, err = c.Layout(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, axis.ErrConfiguration))

	assert.ErrorIs(t, c.AddAxis(axis.Bottom, newAxis(t, "x2", ticks.Numeric)), ErrLocationTaken)
	assert.ErrorIs(t, c.SetVisibleRange(axis.Top, datarange.Numeric(0, 1)), ErrNoAxis)
	_, err = c.VisibleRange(axis.Right)
	assert.ErrorIs(t, err, ErrNoAxis)
	assert.ErrorIs(t, c.Resize(-1, 10), ErrInvalidSize)
	_, err = reg.New(Options{Width: 10, Height: -10})
	assert.ErrorIs(t, err, ErrInvalidSize)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, c.SetVisibleRange(axis.Bottom, datarange.Numeric(0, 1)))
	_, err = c.Layout(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAttachment(t *testing.T) {
	reg := NewRegistry(nil, nil)
	a, err := reg.New(Options{Width: 10, Height: 10})
	require.NoError(t, err)
	b, err := reg.New(Options{Width: 10, Height: 10})
	require.NoError(t, err)
	p := &fakePlot{id: reg.NextID("plot")}
	assert.Nil(t, p.Attachment().Chart())
	require.NoError(t, a.AddPlot(p))
	require.NoError(t, a.AddPlot(p), "re-adding to the owner is a no-op")
	assert.Equal(t, []string{"plot-0"}, a.Plots())
	assert.Same(t, a, p.Attachment().Chart())
	assert.ErrorIs(t, b.AddPlot(p), ErrAttached)

	assert.True(t, a.RemovePlot("plot-0"))
	assert.False(t, a.RemovePlot("plot-0"))
	assert.Nil(t, p.Attachment().Chart())
	require.NoError(t, b.AddPlot(p))
	assert.Same(t, b, p.Attachment().Chart())

	assert.True(t, reg.Remove(b.ID()))
	assert.Nil(t, p.Attachment().Chart(), "removing a chart detaches its plots")
	assert.False(t, reg.Remove(b.ID()))
}

type obs struct {
	at, v float64
}

func TestBind(t *testing.T) {
	_, c := testChart(t)
	_, err := c.Layout(context.Background())
	require.NoError(t, err)
	ds, err := dataset.New(dataset.Options[obs, float64, string]{
		X:        func(o obs) float64 { return o.at },
		XSorting: dimension.Ascending,
		Metrics: []dataset.Metric[obs]{{
			Name:  "v",
			Value: func(o obs) float64 { return o.v },
		}},
	}, obs{10, 1}, obs{20, 2})
	require.NoError(t, err)
	p := &fakePlot{id: "plot-0"}
	cancel := Bind[obs, float64, string](ds, p)

	// Detached plots receive nothing.
	require.NoError(t, ds.Update(obs{10, 1}, obs{20, 3}))
	assert.Empty(t, p.events)

	require.NoError(t, c.AddPlot(p))
	_, err = c.Layout(context.Background())
	require.NoError(t, err)
	require.NoError(t, ds.Append(obs{30, 3}))
	require.Len(t, p.events, 1)
	assert.True(t, p.events[0].X.IsAdded(dimension.KeyOf(30.0)))
	assert.Equal(t, Rect{34, 0, 366, 276}, p.xforms[0].Area)
	assert.True(t, c.NeedsLayout(), "dataset changes invalidate the layout")

	cancel()
	require.NoError(t, ds.Append(obs{40, 4}))
	assert.Len(t, p.events, 1)
}

type categorizedPlot struct {
	fakePlot
	cats []*category.Category
}

func (cp *categorizedPlot) Categories() []*category.Category { return cp.cats }

func TestFramePayload(t *testing.T) {
	reg, c := testChart(t)
	require.NoError(t, c.AddPlot(&fakePlot{id: reg.NextID("plot")}))
	require.NoError(t, c.AddPlot(&categorizedPlot{
		fakePlot: fakePlot{id: reg.NextID("plot")},
		cats: []*category.Category{
			category.New("latency", "Latency", ""),
			category.New("errors", "Errors", ""),
		},
	}))
	f, err := reg.Frame(context.Background(), c.ID())
	require.NoError(t, err)
	data, err := f.Data()
	require.NoError(t, err)
	section := data.Section(c.ID())
	require.NotNil(t, section)
	props := data.Properties(section.Root)
	area, err := util.ExpectDoublesValue(props[plotAreaKey])
	require.NoError(t, err)
	assert.Equal(t, []float64{34, 0, 366, 276}, area)
	plotIDs, err := data.Strings(props[plotIDsKey])
	require.NoError(t, err)
	assert.Equal(t, []string{"plot-0", "plot-1"}, plotIDs)
	// Two bands, then two plots.
	require.Len(t, section.Root.Children, 4)

	bottom := data.Properties(section.Root.Children[0])
	attempts, err := util.ExpectIntegerValue(bottom[bandAttemptsKey])
	require.NoError(t, err)
	assert.Equal(t, int64(f.Bands[0].Layout.Attempts), attempts)
	converged, err := util.ExpectIntegerValue(bottom[bandConvergedKey])
	require.NoError(t, err)
	assert.Equal(t, int64(1), converged)
	labels, err := data.Strings(bottom[tickLabelsKey])
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"0", "20", "40", "60", "80", "100"}, labels); diff != "" {
		t.Errorf("tick labels diff (-want +got):\n%s", diff)
	}
	tried, err := util.ExpectIntegersValue(bottom["axis_tick_counts_tried"])
	require.NoError(t, err)
	assert.Len(t, tried, f.Bands[0].Layout.Attempts)

	for i, test := range []struct {
		wantID   string
		wantCats []string
	}{
		{"plot-0", nil},
		{"plot-1", []string{"latency", "errors"}},
	} {
		plot := data.Properties(section.Root.Children[2+i])
		id, err := data.String(plot[plotIDKey])
		require.NoError(t, err)
		assert.Equal(t, test.wantID, id)
		tags, ok := plot["category_ids"]
		if test.wantCats == nil {
			assert.False(t, ok, "uncategorized plots are untagged")
			continue
		}
		cats, err := data.Strings(tags)
		require.NoError(t, err)
		assert.Equal(t, test.wantCats, cats)
	}

	_, err = reg.Frame(context.Background(), "chart-99")
	assert.ErrorIs(t, err, ErrUnknownChart)
}

func TestLabelHTML(t *testing.T) {
	opts := axis.DefaultOptions(category.New("kinds", "Kinds", ""), ticks.Labeled)
	opts.Measurer = tenPxPerRune
	opts.Ticks.Labels = []ticks.Label{{Text: "a<b", Position: 1}, {Text: "c&d", Position: 2}}
	a, err := axis.New(opts)
	require.NoError(t, err)
	reg := NewRegistry(nil, nil)
	c, err := reg.New(Options{Width: 300, Height: 100})
	require.NoError(t, err)
	require.NoError(t, c.AddAxis(axis.Bottom, a))
	require.NoError(t, c.SetVisibleRange(axis.Bottom, datarange.Numeric(0, 3)))
	f, err := c.Layout(context.Background())
	require.NoError(t, err)
	b, ok := f.Band(axis.Bottom)
	require.True(t, ok)
	var got []string
	for _, html := range b.LabelHTML {
		got = append(got, html.String())
	}
	want := []string{
		`<span class="tick-label">a&lt;b</span>`,
		`<span class="tick-label">c&amp;d</span>`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("label HTML diff (-want +got):\n%s", diff)
	}
}
