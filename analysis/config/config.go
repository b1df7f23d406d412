// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
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

package config

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/awslabs/ar-go-ifds/internal/funcutil"
	"gopkg.in/yaml.v3"
)

// Config contains the options of the tools and the specifications of the taint problems.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// Private fields are not populated from a yaml file, but computed after loading.
type Config struct {
	Options `yaml:"options"`

	sourceFile string

	// if the PkgFilter is specified
	pkgFilterRegex *regexp.Regexp

	// TaintProblems lists the taint tracking specifications
	TaintProblems []TaintSpec `yaml:"taint-problems"`
}

// TaintSpec contains the code identifiers of one taint tracking problem
type TaintSpec struct {
	// Sources is the list of functions whose results are tainted
	Sources []CodeIdentifier `yaml:"sources"`

	// Sinks is the list of functions that must not receive tainted arguments
	Sinks []CodeIdentifier `yaml:"sinks"`

	// Sanitizers is the list of functions whose results are never tainted
	Sanitizers []CodeIdentifier `yaml:"sanitizers"`
}

// Options are the settings shared by all the tools
type Options struct {
	// LogLevel controls the verbosity of the tools, from 1 (errors only) to 5 (trace)
	LogLevel int `yaml:"log-level"`

	// Worklist is the order in which the solver processes path edges: fifo or lifo
	Worklist string `yaml:"worklist"`

	// CheckEvery is the number of solver iterations between two cancellation checks
	CheckEvery int `yaml:"check-every"`

	// UnbalancedExits selects which path edges reaching an exit of a seeded procedure return to all the callers in
	// demand-driven queries: anchor (edges anchored at a seed) or procedure (all edges)
	UnbalancedExits string `yaml:"unbalanced-exits"`

	// CallgraphAnalysis is the algorithm used to build the call graph of Go programs: cha, static, rta or vta
	CallgraphAnalysis string `yaml:"callgraph-analysis"`

	// MaxAlarms sets a limit for the number of alarms reported by an analysis. If MaxAlarms > 0, then at most
	// MaxAlarms will be reported. Otherwise, if MaxAlarms <= 0, it is ignored.
	MaxAlarms int `yaml:"max-alarms"`

	// PkgFilter restricts the procedures of Go supergraphs to the functions whose package matches the filter.
	// Calls to other functions are treated as calls without callee.
	PkgFilter string `yaml:"pkg-filter"`

	// SilenceWarn suppresses warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

const (
	// DefaultCallgraphAnalysis is the call graph algorithm used when none is specified
	DefaultCallgraphAnalysis = "vta"
)

var allowedValues = map[string][]string{
	"worklist":           {"", "fifo", "lifo"},
	"unbalanced-exits":   {"", "anchor", "procedure"},
	"callgraph-analysis": {"", "cha", "static", "rta", "vta"},
}

// NewDefault returns the default config.
func NewDefault() *Config {
	return &Config{
		sourceFile:    "",
		TaintProblems: nil,
		Options: Options{
			LogLevel:          int(InfoLevel),
			Worklist:          "fifo",
			CheckEvery:        1,
			UnbalancedExits:   "anchor",
			CallgraphAnalysis: DefaultCallgraphAnalysis,
			MaxAlarms:         0,
			PkgFilter:         "",
			SilenceWarn:       false,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return LoadBytes(filename, b)
}

// LoadBytes parses the configuration in b. The filename is used to resolve relative paths and in error messages.
func LoadBytes(filename string, b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file %s: %w", filename, err)
	}
	cfg.sourceFile = filename

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}
	if cfg.CheckEvery <= 0 {
		cfg.CheckEvery = 1
	}

	for key, value := range map[string]string{
		"worklist":           cfg.Worklist,
		"unbalanced-exits":   cfg.UnbalancedExits,
		"callgraph-analysis": cfg.CallgraphAnalysis,
	} {
		if !funcutil.Contains(allowedValues[key], strings.ToLower(value)) {
			return nil, fmt.Errorf("invalid value %q for option %s in %s, expected one of %s", value, key,
				filename, strings.Join(allowedValues[key][1:], ", "))
		}
	}
	cfg.Worklist = strings.ToLower(cfg.Worklist)
	cfg.UnbalancedExits = strings.ToLower(cfg.UnbalancedExits)
	cfg.CallgraphAnalysis = strings.ToLower(cfg.CallgraphAnalysis)

	if cfg.PkgFilter != "" {
		r, err := regexp.Compile(cfg.PkgFilter)
		if err == nil {
			cfg.pkgFilterRegex = r
		}
	}

	for _, tSpec := range cfg.TaintProblems {
		funcutil.MapInPlace(tSpec.Sources, compileRegexes)
		funcutil.MapInPlace(tSpec.Sinks, compileRegexes)
		funcutil.MapInPlace(tSpec.Sanitizers, compileRegexes)
	}
	return cfg, nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// SourceFile returns the name of the file the config has been loaded from, if any
func (c Config) SourceFile() string {
	return c.sourceFile
}

// MatchPkgFilter returns true if the package name pkgname matches the package filter set in the config file. If no
// package filter has been set in the config file, the regex will match anything and return true. This function safely
// considers the case where a filter has been specified by the user, but it could not be compiled to a regex. The safe
// case is to check whether the package filter string is a prefix of the pkgname
func (c Config) MatchPkgFilter(pkgname string) bool {
	if c.pkgFilterRegex != nil {
		return c.pkgFilterRegex.MatchString(pkgname)
	} else if c.PkgFilter != "" {
		return strings.HasPrefix(pkgname, c.PkgFilter)
	} else {
		return true
	}
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}

// IsSource returns true if the code identifier matches a source specification
func (ts TaintSpec) IsSource(cid CodeIdentifier) bool {
	return funcutil.Exists(ts.Sources, cid.equalOnNonEmptyFields)
}

// IsSink returns true if the code identifier matches a sink specification
func (ts TaintSpec) IsSink(cid CodeIdentifier) bool {
	return funcutil.Exists(ts.Sinks, cid.equalOnNonEmptyFields)
}

// IsSanitizer returns true if the code identifier matches a sanitizer specification
func (ts TaintSpec) IsSanitizer(cid CodeIdentifier) bool {
	return funcutil.Exists(ts.Sanitizers, cid.equalOnNonEmptyFields)
}
