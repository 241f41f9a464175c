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
	"fmt"
	"sync"

	"github.com/ilhamster/chartcore/category"
	"github.com/ilhamster/chartcore/dataset"
	"github.com/ilhamster/chartcore/dimension"
)

// Attachment records the chart, if any, that owns a renderable item.  Items
// embed or hold an Attachment and expose it through Plot.Attachment; the
// zero value is detached.
type Attachment struct {
	mu    sync.Mutex
	chart *Chart
}

// Chart returns the owning chart, or nil if the receiver is detached.
func (a *Attachment) Chart() *Chart {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.chart
}

// Attach records c as the owner of a.  Attaching to the current owner is a
// no-op; attaching an item already owned by another chart fails with
// ErrAttached.
func Attach(a *Attachment, c *Chart) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.chart != nil && a.chart != c {
		return fmt.Errorf("%w to chart '%s'", ErrAttached, a.chart.ID())
	}
	a.chart = c
	return nil
}

// Detach clears the owner of a, returning the previous owner.
func Detach(a *Attachment) *Chart {
	a.mu.Lock()
	defer a.mu.Unlock()
	prev := a.chart
	a.chart = nil
	return prev
}

// Plot is a renderable item drawn within a chart's plot area.
type Plot interface {
	ID() string
	Attachment() *Attachment
}

// Categorized is implemented by Plots that draw one or more metrics.  A
// Frame tags each such plot with its metrics' categories.
type Categorized interface {
	Categories() []*category.Category
}

// DataPlot is a Plot drawing the contents of a Dataset.
type DataPlot[X, Y dimension.Raw] interface {
	Plot
	// Changed receives each change to the bound Dataset, with the owning
	// chart's current transform, so that the plot may add, update, and
	// remove its visual elements incrementally.
	Changed(ev dataset.ChangeEvent[X, Y], t Transform)
}

// Bind forwards the change events of ds to p while p is attached to a
// chart, marking that chart as needing layout.  Events arriving while p is
// detached are dropped.  The returned function stops forwarding.
func Bind[Item any, X, Y dimension.Raw](ds *dataset.Dataset[Item, X, Y], p DataPlot[X, Y]) (cancel func()) {
	return ds.OnChanged(func(ev dataset.ChangeEvent[X, Y]) {
		c := p.Attachment().Chart()
		if c == nil {
			return
		}
		c.invalidate()
		p.Changed(ev, c.Transform())
	})
}
