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

// Binary chartplan lays out chart axes for observation files, printing the
// resulting ticks or serving the resulting frames over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	v   *viper.Viper
	log *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{
		v:   viper.New(),
		log: log.New(),
	}
	a.log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	rootCmd := &cobra.Command{
		Use:   "chartplan",
		Short: "Chart axis layout planner",
		Long: `chartplan builds a chart from a file of JSON-lines observations and lays
out its axes, choosing tick counts whose labels neither overlap nor spread
too thinly.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.log.SetOutput(cmd.ErrOrStderr())
			return a.initConfig()
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Usage()
		},
	}
	rootCmd.PersistentFlags().String("config", "", "Configuration file (TOML, YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log verbosity level")
	a.v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	a.v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	rootCmd.AddCommand(a.planCmd(), a.serveCmd())
	return rootCmd
}

// initConfig reads the configuration file, if any, and applies the
// configured log level.
func (a *app) initConfig() error {
	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config '%s': %w", path, err)
		}
	}
	level, err := log.ParseLevel(a.v.GetString("log_level"))
	if err != nil {
		return err
	}
	a.log.SetLevel(level)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
