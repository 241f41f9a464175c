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

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ilhamster/chartcore/axis"
	"github.com/ilhamster/chartcore/category"
	"github.com/ilhamster/chartcore/chart"
	datarange "github.com/ilhamster/chartcore/data_range"
	"github.com/ilhamster/chartcore/dataset"
	"github.com/ilhamster/chartcore/dimension"
	"github.com/ilhamster/chartcore/ticks"
)

const valueMetric = "value"

// observation is a single line of an observation file, e.g.
//
//	{"x": 3.5, "value": 10}
//	{"x": "2023-04-01T12:00:00Z", "value": 10}
//	{"x": "apples", "value": 10}
type observation struct {
	X     json.RawMessage `json:"x"`
	Value float64         `json:"value"`

	// The decoded x coordinate: epoch milliseconds for dates, or a label.
	pos   float64
	label string
}

// readObservations decodes JSON-lines observations whose x coordinates are
// of the provided kind.  Blank lines are skipped.
func readObservations(r io.Reader, kind ticks.AxisKind) ([]observation, error) {
	var ret []observation
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var obs observation
		if err := json.Unmarshal([]byte(text), &obs); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(obs.X) == 0 {
			return nil, fmt.Errorf("line %d: missing x", line)
		}
		var err error
		switch kind {
		case ticks.Numeric:
			err = json.Unmarshal(obs.X, &obs.pos)
		case ticks.Date:
			var s string
			if err = json.Unmarshal(obs.X, &s); err == nil {
				var t time.Time
				if t, err = time.Parse(time.RFC3339, s); err == nil {
					obs.pos = float64(t.UnixMilli())
				}
			}
		case ticks.Labeled:
			err = json.Unmarshal(obs.X, &obs.label)
		default:
			err = fmt.Errorf("unsupported axis kind %s", kind)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: bad x %s: %w", line, string(obs.X), err)
		}
		ret = append(ret, obs)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func readObservationFile(path string, kind ticks.AxisKind) ([]observation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	obs, err := readObservations(file, kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return obs, nil
}

// series is a plot counting the points of its bound dataset.
type series[X dimension.Raw] struct {
	id         string
	attachment chart.Attachment
	metric     *category.Category

	mu     sync.Mutex
	points int
}

func (s *series[X]) ID() string                     { return s.id }
func (s *series[X]) Attachment() *chart.Attachment { return &s.attachment }

func (s *series[X]) Categories() []*category.Category {
	return []*category.Category{s.metric}
}

func (s *series[X]) Changed(ev dataset.ChangeEvent[X, string], t chart.Transform) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points += len(ev.X.Added) - len(ev.X.Deleted)
}

func (s *series[X]) Points() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.points
}

// plotted is a chart built from an observation file.
type plotted struct {
	chart  *chart.Chart
	points func() int
}

// populate builds a dataset over obs, binds it to a new series plot on c,
// and returns the dataset's x coordinates and value range.
func populate[X dimension.Raw](
	c *chart.Chart, plotID string, metric *category.Category, obs []observation,
	x func(observation) X, sorting dimension.Sorting, logger log.FieldLogger,
) ([]dimension.Value[X], datarange.NumericRange, *series[X], error) {
	ds, err := dataset.New(dataset.Options[observation, X, string]{
		X:        x,
		XSorting: sorting,
		Metrics: []dataset.Metric[observation]{{
			Name:  valueMetric,
			Value: func(o observation) float64 { return o.Value },
		}},
		Logger: logger,
	})
	if err != nil {
		return nil, datarange.NumericRange{}, nil, err
	}
	s := &series[X]{id: plotID, metric: metric}
	if err := c.AddPlot(s); err != nil {
		return nil, datarange.NumericRange{}, nil, err
	}
	chart.Bind(ds, chart.DataPlot[X, string](s))
	if err := ds.Update(obs...); err != nil {
		return nil, datarange.NumericRange{}, nil, err
	}
	yr, err := ds.MetricRange(valueMetric)
	if err != nil {
		return nil, datarange.NumericRange{}, nil, err
	}
	return ds.XValues(), yr, s, nil
}

// buildChart creates a chart in reg plotting obs, with an x axis of the
// configured kind at the bottom and a numeric y axis at the left.
func buildChart(reg *chart.Registry, cfg config, obs []observation, logger log.FieldLogger) (*plotted, error) {
	xKind, err := ticks.ParseAxisKind(cfg.XKind)
	if err != nil {
		return nil, err
	}
	m, err := cfg.measurer()
	if err != nil {
		return nil, err
	}
	xOpts, err := cfg.axisOptions("x", cfg.XName, xKind, m)
	if err != nil {
		return nil, err
	}
	yOpts, err := cfg.axisOptions("y", cfg.YName, ticks.Numeric, m)
	if err != nil {
		return nil, err
	}
	xOpts.Logger, yOpts.Logger = logger, logger
	c, err := reg.New(chart.Options{Width: cfg.Width, Height: cfg.Height, DPI: cfg.DPI, Logger: logger})
	if err != nil {
		return nil, err
	}
	ret := &plotted{chart: c}
	xr, yr := datarange.Empty[float64](), datarange.Empty[float64]()
	plotID := reg.NextID("plot")
	metric := category.New(valueMetric, cfg.YName, "Observed value")
	if xKind == ticks.Labeled {
		xs, r, s, err := populate(c, plotID, metric, obs, func(o observation) string { return o.label }, dimension.Unordered, logger)
		if err != nil {
			return nil, err
		}
		for i, x := range xs {
			xOpts.Ticks.Labels = append(xOpts.Ticks.Labels, ticks.Label{Text: x.Raw(), Position: float64(i) + 0.5})
		}
		xr, yr, ret.points = datarange.Numeric(0, float64(len(xs))), r, s.Points
	} else {
		xs, r, s, err := populate(c, plotID, metric, obs, func(o observation) float64 { return o.pos }, dimension.Ascending, logger)
		if err != nil {
			return nil, err
		}
		for _, x := range xs {
			xr = xr.Include(x.Raw())
		}
		yr, ret.points = r, s.Points
	}
	if xr.IsEmpty() || yr.IsEmpty() {
		return nil, fmt.Errorf("no observations to plot")
	}
	xAxis, err := axis.New(xOpts)
	if err != nil {
		return nil, err
	}
	yAxis, err := axis.New(yOpts)
	if err != nil {
		return nil, err
	}
	for _, a := range []struct {
		location axis.Location
		axis     *axis.Axis
		r        datarange.NumericRange
	}{
		{axis.Bottom, xAxis, xr},
		{axis.Left, yAxis, yr},
	} {
		if err := c.AddAxis(a.location, a.axis); err != nil {
			return nil, err
		}
		if err := c.SetVisibleRange(a.location, a.r); err != nil {
			return nil, err
		}
	}
	return ret, nil
}
