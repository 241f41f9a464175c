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
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ilhamster/chartcore/chart"
	"github.com/ilhamster/chartcore/ticks"
)

func (a *app) planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <observations.jsonl>",
		Short: "Print the axis layout of a chart of the provided observations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(a.v, cmd.Flags())
			if err != nil {
				return err
			}
			kind, err := ticks.ParseAxisKind(cfg.XKind)
			if err != nil {
				return err
			}
			obs, err := readObservationFile(args[0], kind)
			if err != nil {
				return err
			}
			reg := chart.NewRegistry(nil, a.log)
			p, err := buildChart(reg, cfg, obs, a.log)
			if err != nil {
				return err
			}
			f, err := p.chart.Frame(cmd.Context())
			if err != nil {
				return err
			}
			return printFrame(cmd.OutOrStdout(), f, p.points())
		},
	}
	addChartFlags(cmd.Flags())
	return cmd
}

// printFrame writes a human-readable summary of f to w.
func printFrame(w io.Writer, f *chart.Frame, points int) error {
	fmt.Fprintf(w, "chart %s %gx%g, %d points\n", f.ChartID, f.Width, f.Height, points)
	fmt.Fprintf(w, "plot area x=%g y=%g %gx%g\n", f.PlotArea.X, f.PlotArea.Y, f.PlotArea.Width, f.PlotArea.Height)
	for _, b := range f.Bands {
		l := b.Layout
		status := "converged"
		if !l.Converged {
			status = "did not converge"
		}
		fmt.Fprintf(w, "\n%s axis '%s': %s after %d attempts, %d ticks, %gx%g band\n",
			b.Location, b.AxisID, status, l.Attempts, len(l.Major), b.Bounds.Width, b.Bounds.Height)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  value\tpx\tlabel\tcontext")
		for i, tick := range l.Major {
			fmt.Fprintf(tw, "  %g\t%.1f\t%s\t%s\n", tick.Value, l.Coordinates[i], tick.Label, tick.Context)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if len(l.Minor) > 0 {
			fmt.Fprintf(w, "  %d minor ticks\n", len(l.Minor))
		}
	}
	return nil
}
