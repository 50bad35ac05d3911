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

// Package config consolidates protodoc's settings.
//
// Settings come from four layers, each overriding the one before: built-in
// defaults, a JSON config file, PROTODOC_* environment variables, and
// command line flags. Every layer is a [Config] whose unset fields are null,
// and layers are merged with [Config.Apply].
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/mstoykov/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"gopkg.in/guregu/null.v3"

	"github.com/bufbuild/protodoc"
	"github.com/bufbuild/protodoc/fetch"
	"github.com/bufbuild/protodoc/reporter"
)

// DefaultFile is read when no config file is named. It may be absent.
const DefaultFile = "protodoc.json"

// ConfigEnv names the environment variable that selects the config file.
const ConfigEnv = "PROTODOC_CONFIG"

// Config holds every setting of protodoc.
type Config struct {
	// Paths or doublestar patterns of descriptor sets and .proto files.
	Sources []string `json:"sources" envconfig:"PROTODOC_SOURCES"`
	// Endpoint serving a descriptor set as JSON. Used instead of Sources.
	URL         null.String `json:"url" envconfig:"PROTODOC_URL"`
	ImportPaths []string    `json:"importPaths" envconfig:"PROTODOC_IMPORT_PATHS"`
	Include     []string    `json:"include" envconfig:"PROTODOC_INCLUDE"`
	Exclude     []string    `json:"exclude" envconfig:"PROTODOC_EXCLUDE"`

	Listen    null.String `json:"listen" envconfig:"PROTODOC_LISTEN"`
	LogLevel  null.String `json:"logLevel" envconfig:"PROTODOC_LOG_LEVEL"`
	LogFormat null.String `json:"logFormat" envconfig:"PROTODOC_LOG_FORMAT"`

	// How often the server reloads its sources. Zero disables reloading.
	ReloadInterval  NullDuration `json:"reloadInterval" envconfig:"PROTODOC_RELOAD_INTERVAL"`
	RetryInitial    NullDuration `json:"retryInitial" envconfig:"PROTODOC_RETRY_INITIAL"`
	RetryMax        NullDuration `json:"retryMax" envconfig:"PROTODOC_RETRY_MAX"`
	RetryMultiplier null.Float   `json:"retryMultiplier" envconfig:"PROTODOC_RETRY_MULTIPLIER"`
}

// Default returns the built-in defaults. None of its fields are valid, so
// any other layer overrides them.
func Default() Config {
	return Config{
		Listen:          null.NewString(":8080", false),
		LogLevel:        null.NewString("info", false),
		LogFormat:       null.NewString("text", false),
		ReloadInterval:  NewNullDuration(0, false),
		RetryInitial:    NewNullDuration(fetch.DefaultBackoff.Initial, false),
		RetryMax:        NewNullDuration(fetch.DefaultBackoff.Max, false),
		RetryMultiplier: null.NewFloat(fetch.DefaultBackoff.Multiplier, false),
	}
}

// Apply returns c with every set field of cfg copied over it.
func (c Config) Apply(cfg Config) Config {
	if cfg.Sources != nil {
		c.Sources = cfg.Sources
	}
	if cfg.URL.Valid {
		c.URL = cfg.URL
	}
	if cfg.ImportPaths != nil {
		c.ImportPaths = cfg.ImportPaths
	}
	if cfg.Include != nil {
		c.Include = cfg.Include
	}
	if cfg.Exclude != nil {
		c.Exclude = cfg.Exclude
	}
	if cfg.Listen.Valid {
		c.Listen = cfg.Listen
	}
	if cfg.LogLevel.Valid {
		c.LogLevel = cfg.LogLevel
	}
	if cfg.LogFormat.Valid {
		c.LogFormat = cfg.LogFormat
	}
	if cfg.ReloadInterval.Valid {
		c.ReloadInterval = cfg.ReloadInterval
	}
	if cfg.RetryInitial.Valid {
		c.RetryInitial = cfg.RetryInitial
	}
	if cfg.RetryMax.Valid {
		c.RetryMax = cfg.RetryMax
	}
	if cfg.RetryMultiplier.Valid {
		c.RetryMultiplier = cfg.RetryMultiplier
	}
	return c
}

// ReadFile reads a JSON config file from fsys.
func ReadFile(fsys afero.Fs, path string) (Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return Config{}, err
	}
	var conf Config
	if err := json.Unmarshal(data, &conf); err != nil {
		return Config{}, fmt.Errorf("couldn't parse config file %s: %w", path, err)
	}
	return conf, nil
}

// FromEnv reads the PROTODOC_* variables through lookup.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	var conf Config
	if err := envconfig.Process("", &conf, lookup); err != nil {
		return Config{}, err
	}
	return conf, nil
}

// Flags returns the flags that select and filter inputs and configure
// logging. They are meant to be persistent flags of the root command.
func Flags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringSliceP("source", "s", nil, "descriptor set or .proto `path`, may be a doublestar glob")
	flags.String("url", "", "`url` serving a JSON descriptor set, used instead of sources")
	flags.StringSliceP("import-path", "I", nil, "`directory` that .proto imports are resolved against")
	flags.StringSlice("include", nil, "only keep files matching this `glob`")
	flags.StringSlice("exclude", nil, "drop files matching this `glob`")
	flags.String("log-level", "info", "log `level`: trace, debug, info, warn, error")
	flags.String("log-format", "text", "log `format`: text or json")
	return flags
}

// ServeFlags returns the flags of long-running commands.
func ServeFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringP("listen", "l", ":8080", "`address` to serve the HTTP API on")
	flags.Duration("reload-interval", 0, "reload sources this often, 0 to disable")
	flags.Duration("retry-initial", fetch.DefaultBackoff.Initial, "first delay before refetching a failed url")
	flags.Duration("retry-max", fetch.DefaultBackoff.Max, "longest delay before refetching a failed url")
	flags.Float64("retry-multiplier", fetch.DefaultBackoff.Multiplier, "growth of the refetch delay")
	return flags
}

// FromFlags reads the flags of [Flags] and [ServeFlags] that were set.
// Flags that are not defined in flags are ignored.
func FromFlags(flags *pflag.FlagSet) (Config, error) {
	var conf Config
	var errs []error
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}
	slice := func(name string, dst *[]string) {
		if !changed(name) {
			return
		}
		v, err := flags.GetStringSlice(name)
		errs = append(errs, err)
		*dst = v
	}
	str := func(name string, dst *null.String) {
		if !changed(name) {
			return
		}
		v, err := flags.GetString(name)
		errs = append(errs, err)
		*dst = null.StringFrom(v)
	}
	duration := func(name string, dst *NullDuration) {
		if !changed(name) {
			return
		}
		v, err := flags.GetDuration(name)
		errs = append(errs, err)
		*dst = NullDurationFrom(v)
	}

	slice("source", &conf.Sources)
	str("url", &conf.URL)
	slice("import-path", &conf.ImportPaths)
	slice("include", &conf.Include)
	slice("exclude", &conf.Exclude)
	str("log-level", &conf.LogLevel)
	str("log-format", &conf.LogFormat)
	str("listen", &conf.Listen)
	duration("reload-interval", &conf.ReloadInterval)
	duration("retry-initial", &conf.RetryInitial)
	duration("retry-max", &conf.RetryMax)
	if changed("retry-multiplier") {
		v, err := flags.GetFloat64("retry-multiplier")
		errs = append(errs, err)
		conf.RetryMultiplier = null.FloatFrom(v)
	}
	return conf, errors.Join(errs...)
}

// Consolidate layers defaults, the config file, the environment and flags,
// and validates the result.
//
// The config file is path if set, else the file named by PROTODOC_CONFIG,
// else DefaultFile if it exists. lookup reads environment variables; if
// nil, os.LookupEnv is used. flags may be nil.
func Consolidate(fsys afero.Fs, path string, lookup func(string) (string, bool), flags *pflag.FlagSet) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	result := Default()

	optional := false
	if path == "" {
		path, _ = lookup(ConfigEnv)
	}
	if path == "" {
		path, optional = DefaultFile, true
	}
	fileConf, err := ReadFile(fsys, path)
	switch {
	case err == nil:
		result = result.Apply(fileConf)
	case optional && errors.Is(err, os.ErrNotExist):
	default:
		return result, err
	}

	envConf, err := FromEnv(lookup)
	if err != nil {
		return result, err
	}
	result = result.Apply(envConf)

	if flags != nil {
		flagConf, err := FromFlags(flags)
		if err != nil {
			return result, err
		}
		result = result.Apply(flagConf)
	}
	return result, result.Validate()
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if _, err := logrus.ParseLevel(c.LogLevel.String); err != nil {
		errs = append(errs, err)
	}
	if f := c.LogFormat.String; f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("unsupported log format %q, want text or json", f))
	}
	if c.ReloadInterval.Duration < 0 {
		errs = append(errs, fmt.Errorf("reload interval %v is negative", c.ReloadInterval.Duration))
	}
	if c.RetryInitial.Duration <= 0 {
		errs = append(errs, fmt.Errorf("retry delay %v must be positive", c.RetryInitial.Duration))
	}
	if c.RetryMax.Duration < c.RetryInitial.Duration {
		errs = append(errs, fmt.Errorf("maximum retry delay %v is below the initial delay %v", c.RetryMax.Duration, c.RetryInitial.Duration))
	}
	if c.RetryMultiplier.Float64 < 1 {
		errs = append(errs, fmt.Errorf("retry multiplier %v is below 1", c.RetryMultiplier.Float64))
	}
	if c.URL.String != "" {
		if u, err := url.Parse(c.URL.String); err != nil {
			errs = append(errs, fmt.Errorf("invalid descriptor URL: %w", err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, fmt.Errorf("descriptor URL %q must use http or https", c.URL.String))
		}
	}
	return errors.Join(errs...)
}

// Backoff returns the refetch backoff.
func (c Config) Backoff() fetch.Backoff {
	return fetch.Backoff{
		Initial:    c.RetryInitial.Duration,
		Max:        c.RetryMax.Duration,
		Multiplier: c.RetryMultiplier.Float64,
	}
}

// Reload returns the reload interval.
func (c Config) Reload() time.Duration {
	return c.ReloadInterval.Duration
}

// Loader returns a loader for the configured import paths and filters.
func (c Config) Loader(fsys afero.Fs, rep reporter.Reporter) *protodoc.Loader {
	return &protodoc.Loader{
		FS:          fsys,
		ImportPaths: c.ImportPaths,
		Include:     c.Include,
		Exclude:     c.Exclude,
		Reporter:    rep,
	}
}
