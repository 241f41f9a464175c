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
	"github.com/google/safehtml"
	"github.com/google/safehtml/template"

	"github.com/ilhamster/chartcore/axis"
	"github.com/ilhamster/chartcore/category"
	"github.com/ilhamster/chartcore/style"
	"github.com/ilhamster/chartcore/util"
)

// Frame payload keys.
const (
	chartIDKey       = "chart_id"
	chartWidthKey    = "chart_width_px"
	chartHeightKey   = "chart_height_px"
	plotAreaKey      = "chart_plot_area_px"
	plotIDsKey       = "chart_plot_ids"
	plotIDKey        = "plot_id"
	bandBoundsKey    = "band_bounds_px"
	bandConvergedKey = "band_converged"
	bandAttemptsKey  = "band_attempts"
	tickValuesKey    = "tick_values"
	tickCoordsKey    = "tick_coordinates_px"
	tickLabelsKey    = "tick_labels"
	tickContextsKey  = "tick_contexts"
	tickHTMLKey      = "tick_label_html"
	minorCoordsKey   = "minor_tick_coordinates_px"
)

// A frame's payload has the structure:
//
//	chart
//	  properties:
//	    * chart_id, chart_width_px, chart_height_px
//	    * chart_plot_area_px: [x, y, width, height]
//	    * chart_plot_ids
//	  children:
//	    * repeated band
//	    * repeated plot
//
//	band
//	  properties:
//	    * axis definition (category, kind, render settings, location, range)
//	    * label font style: style_font-family, style_font-size
//	    * band_bounds_px: [x, y, width, height]
//	    * band_converged, band_attempts
//	    * tick_values, tick_coordinates_px, tick_labels, tick_contexts,
//	      tick_label_html: parallel arrays, one entry per major tick
//	    * minor_tick_coordinates_px
//
//	plot
//	  properties:
//	    * plot_id
//	    * category_ids: the categories of the metrics the plot draws, if any

var tickLabelTemplate = template.Must(template.New("tick").Parse(
	`<span class="tick-label">{{.Label}}</span>` +
		`{{if .Context}}<br><span class="tick-context">{{.Context}}</span>{{end}}`))

// Band is a laid-out axis within a Frame.
type Band struct {
	AxisID   string
	Location axis.Location
	Bounds   Rect
	Layout   *axis.Layout
	// HTML for each major tick's label and context, for label UIs.
	LabelHTML []safehtml.HTML
	// The font in which labels were measured.
	LabelStyle *style.Style

	define util.PropertyUpdate
}

func newBand(a *axis.Axis, bounds Rect, layout *axis.Layout, dpi float64) (Band, error) {
	ret := Band{
		AxisID:     a.ID(),
		Location:   layout.Location,
		Bounds:     bounds,
		Layout:     layout,
		LabelStyle: style.Font(a.Font(), dpi),
		define:     a.Define(),
	}
	for _, tick := range layout.Major {
		html, err := tickLabelTemplate.ExecuteToHTML(tick)
		if err != nil {
			return Band{}, err
		}
		ret.LabelHTML = append(ret.LabelHTML, html)
	}
	return ret, nil
}

func (b Band) payload() util.PropertyUpdate {
	n := len(b.Layout.Major)
	values := make([]float64, n)
	labels := make([]string, n)
	contexts := make([]string, n)
	html := make([]string, n)
	for i, tick := range b.Layout.Major {
		values[i] = tick.Value
		labels[i] = tick.Label
		contexts[i] = tick.Context
		html[i] = b.LabelHTML[i].String()
	}
	converged := int64(0)
	if b.Layout.Converged {
		converged = 1
	}
	return util.Chain(
		b.define,
		b.LabelStyle.Define(),
		util.DoublesProperty(bandBoundsKey, b.Bounds.X, b.Bounds.Y, b.Bounds.Width, b.Bounds.Height),
		util.IntegerProperty(bandConvergedKey, converged),
		util.IntegerProperty(bandAttemptsKey, int64(b.Layout.Attempts)),
		util.DoublesProperty(tickValuesKey, values...),
		util.DoublesProperty(tickCoordsKey, b.Layout.Coordinates...),
		util.StringsProperty(tickLabelsKey, labels...),
		util.StringsProperty(tickContextsKey, contexts...),
		util.StringsProperty(tickHTMLKey, html...),
		util.DoublesProperty(minorCoordsKey, b.Layout.MinorCoordinates...),
	)
}

// Frame is a complete chart layout, ready for rendering.
type Frame struct {
	ChartID       string
	Width, Height float64
	PlotArea      Rect
	// One band per axis, in location order.
	Bands []Band
	// The IDs of the chart's plots, in attachment order.
	Plots []string
	// The metric categories of each Categorized plot, by plot ID.
	PlotCategories map[string][]*category.Category
	Transform      Transform
}

// Band returns the receiver's band at the provided location, if any.
func (f *Frame) Band(location axis.Location) (Band, bool) {
	for _, b := range f.Bands {
		if b.Location == location {
			return b, true
		}
	}
	return Band{}, false
}

// Payload populates db with the receiver.
func (f *Frame) Payload(db util.DataBuilder) {
	db.With(
		util.StringProperty(chartIDKey, f.ChartID),
		util.DoubleProperty(chartWidthKey, f.Width),
		util.DoubleProperty(chartHeightKey, f.Height),
		util.DoublesProperty(plotAreaKey, f.PlotArea.X, f.PlotArea.Y, f.PlotArea.Width, f.PlotArea.Height),
		util.StringsProperty(plotIDsKey, f.Plots...),
	)
	for _, b := range f.Bands {
		db.Child().With(b.payload())
	}
	for _, id := range f.Plots {
		cats := f.PlotCategories[id]
		db.Child().With(
			util.StringProperty(plotIDKey, id),
			util.If(len(cats) > 0, category.Tag(cats...)),
		)
	}
}

// Data returns the receiver as a payload with a single section named for
// its chart.
func (f *Frame) Data() (*util.Data, error) {
	pb := util.NewPayloadBuilder()
	f.Payload(pb.Section(f.ChartID))
	return pb.Data()
}
