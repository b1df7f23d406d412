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

/*
Package config loads the configuration of the IFDS tools.

Use [Load](filename) to load a configuration from a file, or [LoadBytes] to parse a configuration that is already
in memory. [NewDefault] returns the configuration used when no file is given.

A config file is in yaml format. The solver options are under the key options, and the taint problems under
taint-problems. For example:

	options:
	  log-level: 4
	  worklist: lifo
	  unbalanced-exits: anchor
	  callgraph-analysis: vta

	taint-problems:
	  - sources:
	      - package: os
	        method: Getenv
	    sinks:
	      - package: fmt
	        method: Printf
	    sanitizers:
	      - method: Escape

# Identifying code elements

Sources, sinks and sanitizers are [CodeIdentifier] values. Their fields are seen as regexes if they can be compiled to
regexes, otherwise they are compared as strings. An empty field matches anything.

# Logging

[NewLogGroup] returns a [LogGroup] printing the messages whose level is at most the log-level option.
*/
package config
