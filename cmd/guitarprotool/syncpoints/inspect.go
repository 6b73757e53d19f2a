// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package syncpoints

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jamiemacari/guitarprotool/cmd/guitarprotool/cli"
	"github.com/jamiemacari/guitarprotool/lib/codec"
	"github.com/jamiemacari/guitarprotool/lib/syncplan"
)

type inspectParams struct {
	cli.JSONOutput
	Diagnostic bool `json:"diag"   flag:"diag"   desc:"print the raw CBOR in diagnostic notation"`
	Report     bool `json:"report" flag:"report" desc:"print the stored bar-by-bar drift report"`
}

// InspectCommand returns the "inspect" command.
func InspectCommand() *cli.Command {
	var params inspectParams

	return &cli.Command{
		Name:    "inspect",
		Summary: "Print a stored sync plan",
		Description: `Decode a plan written by "guitarprotool sync --output" and print its
sync points. The document's kind and version are checked, and its
initial time offset must agree with its stored origin.

--diag prints the raw CBOR in RFC 8949 diagnostic notation without
checking it, which helps when a plan fails to decode.`,
		Usage:  "guitarprotool inspect <plan.cbor> [flags]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Show the sync points of a plan",
				Command:     "guitarprotool inspect plan.cbor",
			},
			{
				Description: "List the bars with sync points",
				Command:     "guitarprotool inspect plan.cbor --json | jq '[.points[].bar]'",
			},
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("inspect requires exactly one plan file, got %d arguments", len(args))
			}
			return runInspect(args[0], &params, os.Stdout, logger)
		},
	}
}

func runInspect(path string, params *inspectParams, stdout io.Writer, logger *slog.Logger) error {
	data, err := cli.ReadFile(path)
	if err != nil {
		return err
	}

	if params.Diagnostic {
		notation, err := codec.Diagnose(data)
		if err != nil {
			return cli.Validation("%s: %w", path, err)
		}
		_, err = fmt.Fprintln(stdout, notation)
		return err
	}

	document, err := syncplan.DecodeDocument(data)
	if err != nil {
		return cli.Validation("%s: %w", path, err)
	}
	logger.Debug("decoded sync plan", "file", path, "points", len(document.Points))

	if done, err := params.EmitJSON(stdout, document); done {
		return err
	}
	if params.Report {
		if document.Report == nil {
			return cli.NotFound("%s: plan has no stored drift report", path)
		}
		return document.Report.WriteText(stdout)
	}

	out := newDisplay(stdout)
	timeline := document.Timeline
	fmt.Fprintf(stdout, "%s %.2f BPM, %d beats per bar, %d bars\n",
		out.heading.Render("Score:"), timeline.TempoBPM, timeline.BeatsPerBar, timeline.BarCount)
	fmt.Fprintf(stdout, "%s first beat at %.3f s, tempo correction %s\n",
		out.heading.Render("Audio:"), document.OriginSeconds, document.Correction)
	if document.Report != nil {
		out.summary(document.Report)
	}
	fmt.Fprintln(stdout)
	out.points(document.Points, document.Origin())
	if document.Report != nil {
		out.attention(document.Report)
	}
	return nil
}
