// Copyright 2026 The nix2js Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// manifestEntry is one line of a nix2js.yaml batch manifest (spec.md §4.13).
type manifestEntry struct {
	Path      string `yaml:"path"`
	Out       string `yaml:"out"`
	SourceMap string `yaml:"sourceMap"`
	Name      string `yaml:"name"`
}

type manifest struct {
	Entries []manifestEntry `yaml:"entries"`
}

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch (MANIFEST.yaml|-)",
		Short: "translate many files from a YAML manifest, or quoted command lines read from stdin with -",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "-" {
				return runBatchStdin(cmd)
			}
			return runBatchManifest(cmd, args[0])
		},
	}
	return cmd
}

func runBatchManifest(cmd *cobra.Command, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var m manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, e := range m.Entries {
		out := e.Out
		if out == "" {
			out = "-"
		}
		opts := &buildOptions{out: out, sourceMapPath: e.SourceMap, mapURLComment: true}
		if err := runBuildNamed(cmd, e.Path, e.Name, opts); err != nil {
			return fmt.Errorf("%s: %w", e.Path, err)
		}
	}
	return nil
}

// runBatchStdin implements the `batch -` quoted-argument form: each
// non-blank, non-comment line is tokenized shell-style (so a path containing
// spaces can be quoted) and parsed as if it were a standalone `build`
// invocation's arguments.
func runBatchStdin(cmd *cobra.Command) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		args, err := shlex.Split(line)
		if err != nil {
			return fmt.Errorf("invalid batch line %q: %w", line, err)
		}
		if err := runBatchLine(cmd, args); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func runBatchLine(cmd *cobra.Command, args []string) error {
	fs := pflag.NewFlagSet("batch-line", pflag.ContinueOnError)
	opts := &buildOptions{mapURLComment: true}
	var name string
	fs.StringVarP(&opts.out, "out", "o", "-", "")
	fs.StringVar(&opts.sourceMapPath, "source-map", "", "")
	fs.BoolVar(&opts.inlineMap, "inline-map", false, "")
	fs.BoolVar(&opts.mapURLComment, "map-url-comment", true, "")
	fs.StringVar(&name, "name", "", "")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) != 1 {
		return fmt.Errorf("batch line must name exactly one source path, got %v", rest)
	}
	return runBuildNamed(cmd, rest[0], name, opts)
}
