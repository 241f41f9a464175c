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
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Registry owns a set of charts and the IDAllocator naming them and their
// plots.  It is safe for concurrent use.
type Registry struct {
	ids *IDAllocator
	log logrus.FieldLogger

	mu     sync.RWMutex
	charts map[string]*Chart
}

// NewRegistry returns a new, empty Registry.  If ids is nil, a new
// IDAllocator is used; if log is nil, the logrus standard logger is used.
func NewRegistry(ids *IDAllocator, log logrus.FieldLogger) *Registry {
	if ids == nil {
		ids = NewIDAllocator()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Registry{
		ids:    ids,
		log:    log,
		charts: map[string]*Chart{},
	}
}

// NextID returns a new identifier of the provided kind, e.g. "plot".
func (r *Registry) NextID(kind string) string {
	return r.ids.Next(kind)
}

// New creates and registers a new chart.  If opts.Logger is nil, the
// registry's logger is used.
func (r *Registry) New(opts Options) (*Chart, error) {
	if opts.Logger == nil {
		opts.Logger = r.log
	}
	c, err := newChart(r.ids.Next("chart"), opts)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.charts[c.ID()] = c
	r.log.WithField("chart", c.ID()).Info("created chart")
	return c, nil
}

// Get returns the chart with the provided ID.
func (r *Registry) Get(id string) (*Chart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.charts[id]
	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownChart, id)
	}
	return c, nil
}

// Remove unregisters the chart with the provided ID, detaching its plots.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	c, ok := r.charts[id]
	delete(r.charts, id)
	r.mu.Unlock()
	if !ok {
		return false
	}
	for _, plotID := range c.Plots() {
		c.RemovePlot(plotID)
	}
	return true
}

// IDs returns the IDs of all registered charts, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret := make([]string, 0, len(r.charts))
	for id := range r.charts {
		ret = append(ret, id)
	}
	sort.Strings(ret)
	return ret
}

// Frame returns the current Frame of the chart with the provided ID.
func (r *Registry) Frame(ctx context.Context, id string) (*Frame, error) {
	c, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return c.Frame(ctx)
}
