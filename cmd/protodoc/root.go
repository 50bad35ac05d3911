// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/bufbuild/protodoc"
	"github.com/bufbuild/protodoc/config"
	"github.com/bufbuild/protodoc/fetch"
	"github.com/bufbuild/protodoc/model"
	"github.com/bufbuild/protodoc/reporter"
	"github.com/bufbuild/protodoc/snapshot"
)

// Set at link time.
var version = "dev"

// globalState holds everything the commands touch outside of their
// arguments, so tests can replace it.
type globalState struct {
	ctx context.Context

	fs        afero.Fs
	lookupEnv func(string) (string, bool)

	stdin          io.Reader
	stdout, stderr io.Writer
	stdoutTTY      bool
	stderrTTY      bool

	logger *logrus.Logger
}

func newGlobalState(ctx context.Context) *globalState {
	stdoutTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	stderrTTY := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	stderr := colorable.NewColorableStderr()
	return &globalState{
		ctx:       ctx,
		fs:        afero.NewOsFs(),
		lookupEnv: os.LookupEnv,
		stdin:     os.Stdin,
		stdout:    colorable.NewColorableStdout(),
		stderr:    stderr,
		stdoutTTY: stdoutTTY,
		stderrTTY: stderrTTY,
		logger: &logrus.Logger{
			Out:       stderr,
			Formatter: new(logrus.TextFormatter),
			Hooks:     make(logrus.LevelHooks),
			Level:     logrus.InfoLevel,
		},
	}
}

// rootCommand keeps the state shared by all subcommands.
type rootCommand struct {
	gs  *globalState
	cmd *cobra.Command

	configPath string
	noColor    bool
	conf       config.Config
}

func newRootCommand(gs *globalState) *rootCommand {
	c := &rootCommand{gs: gs}
	c.cmd = &cobra.Command{
		Use:               "protodoc",
		Short:             "browse the documentation of protobuf schemas",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
	}
	flags := c.cmd.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "JSON config `file`, defaults to "+config.DefaultFile)
	flags.AddFlagSet(config.Flags())
	flags.BoolVar(&c.noColor, "no-color", false, "disable colored output")

	c.cmd.SetIn(gs.stdin)
	c.cmd.SetOut(gs.stdout)
	c.cmd.SetErr(gs.stderr)
	c.cmd.AddCommand(
		getTreeCmd(c),
		getShowCmd(c),
		getSearchCmd(c),
		getCoverageCmd(c),
		getLocateCmd(c),
		getServeCmd(c),
		getMCPCmd(c),
		getVersionCmd(c),
	)
	return c
}

func (c *rootCommand) persistentPreRunE(cmd *cobra.Command, _ []string) error {
	conf, err := config.Consolidate(c.gs.fs, c.configPath, c.gs.lookupEnv, cmd.Flags())
	if err != nil {
		return err
	}
	c.conf = conf
	if _, ok := c.gs.lookupEnv("NO_COLOR"); ok {
		c.noColor = true
	}
	if c.noColor {
		c.gs.stdout = colorable.NewNonColorable(c.gs.stdout)
		c.gs.stderr = colorable.NewNonColorable(c.gs.stderr)
		c.gs.logger.SetOutput(c.gs.stderr)
	}
	return c.setupLogger()
}

func (c *rootCommand) setupLogger() error {
	level, err := logrus.ParseLevel(c.conf.LogLevel.String)
	if err != nil {
		return err
	}
	c.gs.logger.SetLevel(level)
	switch c.conf.LogFormat.String {
	case "json":
		c.gs.logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		c.gs.logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   c.gs.stderrTTY && !c.noColor,
			DisableColors: !c.gs.stderrTTY || c.noColor,
		})
	}
	c.gs.logger.Debugf("protodoc version: %s", version)
	return nil
}

// color reports whether stdout output should be colored.
func (c *rootCommand) color() bool {
	return c.gs.stdoutTTY && !c.noColor
}

// reporter logs advisory warnings about the descriptors.
func (c *rootCommand) reporter() reporter.Reporter {
	return reporter.Logger(c.gs.logger.WithField("component", "sourceinfo"))
}

// load returns a function that reads the configured url or sources.
func (c *rootCommand) load() snapshot.LoadFunc {
	if c.conf.URL.Valid && c.conf.URL.String != "" {
		client := &fetch.Client{
			URL:     c.conf.URL.String,
			Backoff: c.conf.Backoff(),
			Logger:  c.gs.logger,
		}
		return func(ctx context.Context) (*model.Model, error) {
			data, err := client.Fetch(ctx)
			if err != nil {
				return nil, err
			}
			return protodoc.Build(data, c.reporter())
		}
	}
	loader := c.conf.Loader(c.gs.fs, c.reporter())
	return func(ctx context.Context) (*model.Model, error) {
		return loader.Load(ctx, c.conf.Sources...)
	}
}

// loadOnce loads a model for a one-shot command.
func (c *rootCommand) loadOnce(ctx context.Context) (*model.Model, error) {
	m, err := c.load()(ctx)
	if err != nil {
		return nil, fmt.Errorf("couldn't load descriptors: %w", err)
	}
	return m, nil
}

func execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	gs := newGlobalState(ctx)
	c := newRootCommand(gs)
	err := c.cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		gs.logger.Error(err)
		os.Exit(1)
	}
}
