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
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ilhamster/chartcore/axis"
	"github.com/ilhamster/chartcore/category"
	labellayout "github.com/ilhamster/chartcore/label_layout"
	"github.com/ilhamster/chartcore/measure"
	"github.com/ilhamster/chartcore/ticks"
)

// config describes the chart built for an observation file.
type config struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
	// The x axis kind: numeric, date, or labeled.  The y axis is numeric.
	XKind string `mapstructure:"x_kind"`
	XName string `mapstructure:"x_name"`
	YName string `mapstructure:"y_name"`
	// Timezone in which date ticks are snapped and labeled.
	Timezone string `mapstructure:"timezone"`

	FontFamily string  `mapstructure:"font_family"`
	FontSize   float64 `mapstructure:"font_size"`
	// A TrueType file registered under FontFamily.  If empty, the built-in
	// fixed-width face is used.
	FontFile  string  `mapstructure:"font_file"`
	DPI       float64 `mapstructure:"dpi"`
	CacheSize int     `mapstructure:"cache_size"`

	TooCloseFactor float64 `mapstructure:"too_close_factor"`
	TooFarFactor   float64 `mapstructure:"too_far_factor"`
	MaxAttempts    int     `mapstructure:"max_attempts"`

	Port int `mapstructure:"port"`
}

// chartFlags maps flag names to their configuration keys.
var chartFlags = map[string]string{
	"width":            "width",
	"height":           "height",
	"x-kind":           "x_kind",
	"x-name":           "x_name",
	"y-name":           "y_name",
	"timezone":         "timezone",
	"font-family":      "font_family",
	"font-size":        "font_size",
	"font-file":        "font_file",
	"dpi":              "dpi",
	"cache-size":       "cache_size",
	"too-close-factor": "too_close_factor",
	"too-far-factor":   "too_far_factor",
	"max-attempts":     "max_attempts",
	"port":             "port",
}

// addChartFlags defines the chart configuration flags on fs.
func addChartFlags(fs *pflag.FlagSet) {
	layout := labellayout.DefaultOptions()
	fs.Float64("width", 640, "Chart width in pixels")
	fs.Float64("height", 480, "Chart height in pixels")
	fs.String("x-kind", ticks.Numeric.String(), "X axis kind (numeric, date, or labeled)")
	fs.String("x-name", "x", "X axis display name")
	fs.String("y-name", "value", "Y axis display name")
	fs.String("timezone", "UTC", "Timezone for date ticks")
	fs.String("font-family", "sans", "Tick label font family")
	fs.Float64("font-size", 12, "Tick label font size in points")
	fs.String("font-file", "", "TrueType file for the tick label font family")
	fs.Float64("dpi", 72, "Font rendering resolution")
	fs.Int("cache-size", 1024, "Number of cached text measurements")
	fs.Float64("too-close-factor", layout.TooCloseFactor, "Labels closer than this multiple of their mean footprint are too close")
	fs.Float64("too-far-factor", layout.TooFarFactor, "Labels farther than this multiple of the too-close threshold are too far")
	fs.Int("max-attempts", axis.DefaultMaxAttempts, "Tick count attempts per axis layout")
}

// loadConfig binds the configuration flags of the running command into v,
// then decodes the merged flag and file configuration.
func loadConfig(v *viper.Viper, fs *pflag.FlagSet) (config, error) {
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if key, ok := chartFlags[f.Name]; ok && bindErr == nil {
			bindErr = v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return config{}, bindErr
	}
	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// measurer returns the cached text measurer described by the receiver.
func (cfg config) measurer() (measure.Measurer, error) {
	fm := measure.NewFaceMeasurer(cfg.DPI)
	if cfg.FontFile != "" {
		if err := fm.LoadTrueTypeFile(cfg.FontFamily, cfg.FontFile); err != nil {
			return nil, err
		}
	}
	return measure.NewCached(fm, cfg.CacheSize)
}

// axisOptions returns the Options of an axis of the provided kind.
func (cfg config) axisOptions(id, name string, kind ticks.AxisKind, m measure.Measurer) (axis.Options, error) {
	opts := axis.DefaultOptions(category.New(id, name, ""), kind)
	opts.Font = measure.Font{Family: cfg.FontFamily, Size: cfg.FontSize}
	opts.Measurer = m
	opts.Layout = labellayout.Options{
		TooCloseFactor: cfg.TooCloseFactor,
		TooFarFactor:   cfg.TooFarFactor,
	}
	opts.MaxAttempts = cfg.MaxAttempts
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return axis.Options{}, fmt.Errorf("unsupported timezone '%s': %w", cfg.Timezone, err)
	}
	opts.Ticks.Location = loc
	return opts, nil
}
