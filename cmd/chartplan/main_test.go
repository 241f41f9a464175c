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
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilhamster/chartcore/axis"
	"github.com/ilhamster/chartcore/chart"
	"github.com/ilhamster/chartcore/ticks"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestReadObservations(t *testing.T) {
	for _, test := range []struct {
		description string
		kind        ticks.AxisKind
		input       string
		wantPos     []float64
		wantLabels  []string
		wantErr     string
	}{{
		description: "numeric",
		kind:        ticks.Numeric,
		input:       "{\"x\": 1.5, \"value\": 2}\n\n{\"x\": 3, \"value\": 4}\n",
		wantPos:     []float64{1.5, 3},
		wantLabels:  []string{"", ""},
	}, {
		description: "date",
		kind:        ticks.Date,
		input:       `{"x": "1970-01-01T00:00:01Z", "value": 2}`,
		wantPos:     []float64{1000},
		wantLabels:  []string{""},
	}, {
		description: "labeled",
		kind:        ticks.Labeled,
		input:       "{\"x\": \"apples\", \"value\": 2}\n{\"x\": \"pears\", \"value\": 1}",
		wantPos:     []float64{0, 0},
		wantLabels:  []string{"apples", "pears"},
	}, {
		description: "missing x",
		kind:        ticks.Numeric,
		input:       "{\"x\": 1, \"value\": 2}\n{\"value\": 2}",
		wantErr:     "line 2: missing x",
	}, {
		description: "malformed date",
		kind:        ticks.Date,
		input:       `{"x": "yesterday", "value": 2}`,
		wantErr:     "line 1: bad x",
	}, {
		description: "malformed json",
		kind:        ticks.Numeric,
		input:       `{"x": 1`,
		wantErr:     "line 1",
	}} {
		t.Run(test.description, func(t *testing.T) {
			obs, err := readObservations(strings.NewReader(test.input), test.kind)
			if test.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), test.wantErr)
				return
			}
			require.NoError(t, err)
			var gotPos []float64
			var gotLabels []string
			for _, o := range obs {
				gotPos = append(gotPos, o.pos)
				gotLabels = append(gotLabels, o.label)
			}
			if diff := cmp.Diff(test.wantPos, gotPos); diff != "" {
				t.Errorf("positions diff (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(test.wantLabels, gotLabels); diff != "" {
				t.Errorf("labels diff (-want +got):\n%s", diff)
			}
		})
	}
}

func testConfig(t *testing.T, args ...string) config {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addChartFlags(fs)
	require.NoError(t, fs.Parse(args))
	cfg, err := loadConfig(viper.New(), fs)
	require.NoError(t, err)
	return cfg
}

func TestLoadConfig(t *testing.T) {
	cfg := testConfig(t, "--width=800", "--x-kind=date")
	assert.Equal(t, 800.0, cfg.Width)
	assert.Equal(t, 480.0, cfg.Height)
	assert.Equal(t, "date", cfg.XKind)
	assert.Equal(t, axis.DefaultMaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, 2.0, cfg.TooCloseFactor)

	v := viper.New()
	v.SetConfigFile(writeFile(t, "chart.yaml", "height: 200\nfont_size: 9\n"))
	require.NoError(t, v.ReadInConfig())
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addChartFlags(fs)
	require.NoError(t, fs.Parse([]string{"--font-size=10"}))
	cfg, err := loadConfig(v, fs)
	require.NoError(t, err)
	assert.Equal(t, 200.0, cfg.Height, "config files override flag defaults")
	assert.Equal(t, 10.0, cfg.FontSize, "set flags override config files")
}

func TestBuildChart(t *testing.T) {
	for _, test := range []struct {
		description string
		kind        string
		input       string
		wantPoints  int
		wantXLabels []string
	}{{
		description: "numeric",
		kind:        "numeric",
		input:       "{\"x\": 0, \"value\": 1}\n{\"x\": 50, \"value\": 5}\n{\"x\": 100, \"value\": 3}",
		wantPoints:  3,
	}, {
		description: "labeled",
		kind:        "labeled",
		input:       "{\"x\": \"b\", \"value\": 1}\n{\"x\": \"a\", \"value\": 5}\n{\"x\": \"b\", \"value\": 3}",
		wantPoints:  2,
		wantXLabels: []string{"b", "a"},
	}} {
		t.Run(test.description, func(t *testing.T) {
			kind, err := ticks.ParseAxisKind(test.kind)
			require.NoError(t, err)
			obs, err := readObservations(strings.NewReader(test.input), kind)
			require.NoError(t, err)
			cfg := testConfig(t, "--x-kind="+test.kind)
			reg := chart.NewRegistry(nil, log.New())
			p, err := buildChart(reg, cfg, obs, log.New())
			require.NoError(t, err)
			assert.Equal(t, test.wantPoints, p.points())
			assert.Equal(t, []string{"plot-0"}, p.chart.Plots())
			f, err := p.chart.Frame(context.Background())
			require.NoError(t, err)
			bottom, ok := f.Band(axis.Bottom)
			require.True(t, ok)
			assert.True(t, bottom.Layout.Converged)
			left, ok := f.Band(axis.Left)
			require.True(t, ok)
			assert.True(t, left.Layout.Converged)
			assert.NotEmpty(t, left.Layout.Major)
			if test.wantXLabels != nil {
				var got []string
				for _, tick := range bottom.Layout.Major {
					got = append(got, tick.Label)
				}
				if diff := cmp.Diff(test.wantXLabels, got); diff != "" {
					t.Errorf("x labels diff (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestBuildChartErrors(t *testing.T) {
	reg := chart.NewRegistry(nil, log.New())
	_, err := buildChart(reg, testConfig(t), nil, log.New())
	assert.ErrorContains(t, err, "no observations")
	_, err = buildChart(reg, testConfig(t, "--x-kind=polar"), nil, log.New())
	assert.ErrorContains(t, err, "unsupported axis kind")
	_, err = buildChart(reg, testConfig(t, "--timezone=Nowhere/Special"), nil, log.New())
	assert.ErrorContains(t, err, "unsupported timezone")
}

func TestPlanCommand(t *testing.T) {
	path := writeFile(t, "obs.jsonl", "{\"x\": 0, \"value\": 1}\n{\"x\": 100, \"value\": 10}\n")
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"plan", "--width=400", "--height=300", "--log-level=warn", path})
	require.NoError(t, cmd.Execute())
	got := out.String()
	assert.Contains(t, got, "chart chart-0 400x300, 2 points")
	assert.Contains(t, got, "bottom axis 'x': converged")
	assert.Contains(t, got, "left axis 'y': converged")

	cmd = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"plan", "--log-level=loud", path})
	assert.Error(t, cmd.Execute())
}

func TestServeMux(t *testing.T) {
	path := writeFile(t, "obs.jsonl", "{\"x\": 0, \"value\": 1}\n{\"x\": 100, \"value\": 10}\n")
	logger, hook := logtest.NewNullLogger()
	a := &app{v: viper.New(), log: logger}
	mux, reg, err := a.newServeMux(testConfig(t), []string{path})
	require.NoError(t, err)
	assert.Equal(t, []string{"chart-0"}, reg.IDs())
	for _, test := range []struct {
		target     string
		wantStatus int
		wantChart  string
	}{
		{"/GetFrame?chart=chart-0", http.StatusOK, "chart-0"},
		{"/GetFrame?chart=chart-9", http.StatusNotFound, "chart-9"},
	} {
		hook.Reset()
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, test.target, nil))
		assert.Equal(t, test.wantStatus, rec.Code)
		if test.wantStatus == http.StatusOK {
			assert.Contains(t, rec.Body.String(), "tick_coordinates_px")
		}
		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, "served request", entry.Message)
		assert.Equal(t, test.wantStatus, entry.Data["status"])
		assert.Equal(t, "/GetFrame", entry.Data["path"])
		assert.Equal(t, test.wantChart, entry.Data["chart"])
	}

	_, _, err = a.newServeMux(testConfig(t), []string{filepath.Join(t.TempDir(), "missing.jsonl")})
	assert.Error(t, err)
}
