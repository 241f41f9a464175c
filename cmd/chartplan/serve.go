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
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ilhamster/chartcore/chart"
	"github.com/ilhamster/chartcore/handlers"
	"github.com/ilhamster/chartcore/ticks"
)

// newServeMux returns a mux serving frames of one chart per observation
// file.
func (a *app) newServeMux(cfg config, paths []string) (*http.ServeMux, *chart.Registry, error) {
	kind, err := ticks.ParseAxisKind(cfg.XKind)
	if err != nil {
		return nil, nil, err
	}
	reg := chart.NewRegistry(nil, a.log)
	for _, path := range paths {
		obs, err := readObservationFile(path, kind)
		if err != nil {
			return nil, nil, err
		}
		p, err := buildChart(reg, cfg, obs, a.log)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		a.log.WithFields(log.Fields{
			"chart":  p.chart.ID(),
			"file":   path,
			"points": p.points(),
		}).Info("loaded observations")
	}
	mux := http.NewServeMux()
	fh := handlers.NewFrameHandler(reg, a.log).Wrap(logRequests(a.log))
	for path, handler := range fh.HandlersByPath() {
		mux.HandleFunc(path, handler)
	}
	return mux, reg, nil
}

// statusRecorder records the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// logRequests logs each served request with its response status.
func logRequests(logger log.FieldLogger) handlers.WrapFunc {
	return func(h handlers.HandlerFunc) handlers.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			h(rec, req)
			entry := logger.WithFields(log.Fields{
				"status":  rec.status,
				"elapsed": time.Since(start),
			})
			orig, err := handlers.RequestOf(req.Context())
			if err != nil {
				entry.WithError(err).Warn("served request")
				return
			}
			if orig != nil {
				entry = entry.WithFields(log.Fields{
					"path":   orig.URL.Path,
					"chart":  orig.URL.Query().Get("chart"),
					"remote": orig.RemoteAddr,
				})
			}
			entry.Info("served request")
		}
	}
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <observations.jsonl>...",
		Short: "Serve chart frames of the provided observation files over HTTP",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(a.v, cmd.Flags())
			if err != nil {
				return err
			}
			mux, reg, err := a.newServeMux(cfg, args)
			if err != nil {
				return err
			}
			srv := &http.Server{
				Addr:    fmt.Sprintf(":%d", cfg.Port),
				Handler: mux,
			}
			go func() {
				<-cmd.Context().Done()
				srv.Shutdown(context.Background())
			}()
			a.log.WithFields(log.Fields{
				"port":   cfg.Port,
				"charts": reg.IDs(),
			}).Info("serving frames at /GetFrame?chart=<id>")
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	addChartFlags(cmd.Flags())
	cmd.Flags().Int("port", 7410, "Port to serve frames on")
	return cmd
}
