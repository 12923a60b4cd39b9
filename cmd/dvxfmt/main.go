/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// dvxfmt reads tagged-literal text on stdin (or from files) and writes
// it back in canonical form. Unknown tags are preserved verbatim so the
// tool works on data whose record types are not linked into it.
//
// Run with `go run ./cmd/dvxfmt`
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"dirpx.dev/dvx/edn"
)

func main() {
	app := &cli.App{
		Name:      "dvx Format Tool",
		HelpName:  "dvxfmt",
		Usage:     "canonicalize tagged-literal text",
		Copyright: "(c) 2025 The DIRPX Authors",
		Flags: []cli.Flag{
			&compactFlag,
			&indentFlag,
		},
		Action: format,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var compactFlag = cli.BoolFlag{
	Name:  "compact",
	Usage: "emit single-line output",
}

var indentFlag = cli.StringFlag{
	Name:  "indent",
	Usage: "indentation unit for pretty output",
	Value: " ",
}

func format(ctx *cli.Context) error {
	if ctx.Args().Len() == 0 {
		return formatStream(ctx, os.Stdin, os.Stdout)
	}
	for _, name := range ctx.Args().Slice() {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		err = formatStream(ctx, f, os.Stdout)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func formatStream(ctx *cli.Context, in io.Reader, out io.Writer) error {
	src, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	opts := edn.Options{
		PreserveUnknown: true,
		Indent:          ctx.String(indentFlag.Name),
	}
	v, err := edn.Read(string(src), opts)
	if err != nil {
		return err
	}
	if ctx.Bool(compactFlag.Name) {
		text, err := edn.Print(v, opts)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, text)
		return err
	}
	return edn.PrettyPrint(out, v, opts)
}
