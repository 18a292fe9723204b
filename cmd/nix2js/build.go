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
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	nix2js "github.com/YZITE/nix2js"
	"github.com/YZITE/nix2js/internal/errors"
)

// buildOptions holds the build subcommand's flags; batch mode constructs one
// of these per manifest entry instead of parsing flags.
type buildOptions struct {
	out           string
	sourceMapPath string
	inlineMap     bool
	mapURLComment bool
}

func newBuildCmd() *cobra.Command {
	opts := &buildOptions{mapURLComment: true}
	cmd := &cobra.Command{
		Use:   "build [file]",
		Short: "translate one L source file (stdin if omitted) to JS",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return runBuild(cmd, path, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "-", "output path, or - for stdout")
	cmd.Flags().StringVar(&opts.sourceMapPath, "source-map", "", "write the source map JSON to this path")
	cmd.Flags().BoolVar(&opts.inlineMap, "inline-map", false, "append the source map as a base64 data-URI comment")
	cmd.Flags().BoolVar(&opts.mapURLComment, "map-url-comment", true, "append a trailing sourceMappingURL comment")
	return cmd
}

// runBuild drives one source-to-JS translation for the build subcommand.
func runBuild(cmd *cobra.Command, path string, opts *buildOptions) error {
	return runBuildNamed(cmd, path, "", opts)
}

// runBuildNamed is runBuild with the diagnostic/source-map input name
// overridable, so batch mode can give a manifest entry's "name" field
// precedence over its on-disk path.
func runBuildNamed(cmd *cobra.Command, path, name string, opts *buildOptions) error {
	source, inputName, err := readSource(cmd, path)
	if err != nil {
		return err
	}
	if name != "" {
		inputName = name
	}

	js, sm, err := nix2js.Translate(source, inputName)
	if err != nil {
		errors.Print(cmd.ErrOrStderr(), err)
		return fmt.Errorf("%s: translation failed", inputName)
	}

	return writeOutput(cmd, js, sm, opts)
}

func readSource(cmd *cobra.Command, path string) (source, inputName string, err error) {
	if path == "-" || path == "" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", err
		}
		return string(b), "<stdin>", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return string(b), path, nil
}

// writeOutput places the generated program and, if requested, its source
// map, honoring --inline-map / --map-url-comment per spec.md §6's CLI
// surface (stdout or -o path, optional side-car map, optional trailing
// comment naming it).
func writeOutput(cmd *cobra.Command, js, sm string, opts *buildOptions) error {
	if opts.sourceMapPath != "" {
		if err := os.WriteFile(opts.sourceMapPath, []byte(sm), 0o644); err != nil {
			return err
		}
	}

	out := js
	if opts.mapURLComment {
		switch {
		case opts.inlineMap:
			enc := base64.StdEncoding.EncodeToString([]byte(sm))
			out += "\n//# sourceMappingURL=data:application/json;base64," + enc + "\n"
		case opts.sourceMapPath != "":
			out += "\n//# sourceMappingURL=" + opts.sourceMapPath + "\n"
		}
	}

	if opts.out == "-" || opts.out == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), out)
		return err
	}
	return os.WriteFile(opts.out, []byte(out), 0o644)
}
