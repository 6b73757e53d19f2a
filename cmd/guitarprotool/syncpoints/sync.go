// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package syncpoints

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jamiemacari/guitarprotool/cmd/guitarprotool/cli"
	"github.com/jamiemacari/guitarprotool/lib/beatfile"
	"github.com/jamiemacari/guitarprotool/lib/drift"
	"github.com/jamiemacari/guitarprotool/lib/syncplan"
	"github.com/jamiemacari/guitarprotool/lib/tempo"
)

type syncParams struct {
	cli.JSONOutput

	Beats       string  `json:"beats"         flag:"beats,b"       desc:"beat timestamp file, text or JSON (required)"`
	Tempo       float64 `json:"tempo"         flag:"tempo,t"       desc:"nominal tempo of the score in BPM (default: from the beat file)"`
	BeatsPerBar int     `json:"beats_per_bar" flag:"beats-per-bar" desc:"beats in each bar (default: from the beat file, else 4)"`
	Bars        int     `json:"bars"          flag:"bars"          desc:"bars in the score (default: from the beat file, else the bars the beats cover)"`

	SampleRate        int     `json:"sample_rate"         flag:"sample-rate"         desc:"frame rate of the emitted offsets (default: sync.sample_rate)"`
	DriftThreshold    float64 `json:"drift_threshold"     flag:"drift-threshold"     desc:"drift percentage that places a sync point (default: sync.drift_threshold_percent)"`
	MaxGap            int     `json:"max_gap"             flag:"max-gap"             desc:"most bars between sync points (default: sync.max_gap)"`
	Matching          string  `json:"matching"            flag:"matching"            desc:"bar matching, direct or nearest (default: sync.matching)"`
	NoTempoCorrection bool    `json:"no_tempo_correction" flag:"no-tempo-correction" desc:"do not correct double- or half-time beat tracking"`

	Output     string `json:"output"      flag:"output,o"    desc:"write the plan as a CBOR document"`
	Report     string `json:"report"      flag:"report"      desc:"write the bar-by-bar drift report as text"`
	DebugBeats string `json:"debug_beats" flag:"debug-beats" desc:"write per-beat interval and tempo diagnostics as text"`
	Force      bool   `json:"force"       flag:"force,f"     desc:"overwrite existing output files"`
}

// SyncCommand returns the "sync" command.
func SyncCommand(globals *cli.Globals) *cli.Command {
	var params syncParams

	return &cli.Command{
		Name:    "sync",
		Summary: "Plan audio sync points from detected beats",
		Description: `Compare beat timestamps detected in a recording with the score's
nominal tempo and decide where the score needs sync points so that
playback follows the performance.

Bar 0 is always a sync point. Further points are placed where drift
since the previous point exceeds the drift threshold, and at least every
max-gap bars. All frame offsets share one origin: the first detected
beat. The initial time offset shifts the whole track so that beat lands
on bar 0.

When the beat tracker locked onto double or half the real tempo, the
beats are corrected before analysis unless --no-tempo-correction is
given or tempo_correction.enabled is false.`,
		Usage:  "guitarprotool sync --beats <file> [--tempo <bpm>] [--bars <n>] [flags]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Plan sync points and save the plan",
				Command:     "guitarprotool sync --beats beats.txt --tempo 120 --bars 64 -o plan.cbor",
			},
			{
				Description: "Write the full drift report for a 3/4 song",
				Command:     "guitarprotool sync -b beats.json --beats-per-bar 3 --report drift.txt",
			},
			{
				Description: "Machine-readable plan",
				Command:     "guitarprotool sync -b beats.txt -t 96 --json | jq '.points[].bar'",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("sync takes no positional arguments, got %q", args[0])
			}
			if params.Beats == "" {
				return cli.Validation("--beats is required")
			}
			cfg, err := globals.Config()
			if err != nil {
				return err
			}
			planner, err := plannerConfig(cfg, &params, logger)
			if err != nil {
				return err
			}
			return runSync(ctx, &params, planner, os.Stdout, logger)
		},
	}
}

func runSync(ctx context.Context, params *syncParams, config syncplan.Config, stdout io.Writer, logger *slog.Logger) error {
	logger = logger.With("command", "sync", "beats", params.Beats)

	data, err := cli.ReadFile(params.Beats)
	if err != nil {
		return err
	}
	file, err := beatfile.Parse(data)
	if err != nil {
		return cli.Validation("%s: %w", params.Beats, err)
	}
	timeline, err := resolveTimeline(params, file)
	if err != nil {
		return err
	}

	if params.DebugBeats != "" {
		var debug bytes.Buffer
		if err := drift.WriteBeatDebug(&debug, file.Beats, timeline); err != nil {
			return cli.Internal("formatting beat diagnostics: %w", err)
		}
		if err := cli.WriteFile(params.DebugBeats, debug.Bytes(), params.Force); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	planner, err := syncplan.NewPlanner(config)
	if err != nil {
		return cli.Validation("%w", err)
	}
	plan, err := planner.Plan(timeline, file.Beats)
	if err != nil {
		var invalid *drift.InvalidTimelineError
		if errors.As(err, &invalid) || errors.Is(err, tempo.ErrInsufficientBeats) {
			return cli.Validation("%s: %w", params.Beats, err)
		}
		return cli.Internal("planning sync points: %w", err)
	}
	logger.Info("sync plan complete",
		"bars", plan.Report.Timeline.BarCount,
		"points", len(plan.Points),
		"avg_drift_percent", plan.Report.AvgDriftPercent,
		"correction", plan.Correction,
	)

	if params.Report != "" {
		var report bytes.Buffer
		if err := plan.Report.WriteText(&report); err != nil {
			return cli.Internal("formatting drift report: %w", err)
		}
		if err := cli.WriteFile(params.Report, report.Bytes(), params.Force); err != nil {
			return err
		}
	}

	document := plan.Document()
	if params.Output != "" {
		encoded, err := syncplan.EncodeDocument(document)
		if err != nil {
			return cli.Internal("encoding plan: %w", err)
		}
		if err := cli.WriteFile(params.Output, encoded, params.Force); err != nil {
			return err
		}
	}

	if done, err := params.EmitJSON(stdout, document); done {
		return err
	}
	out := newDisplay(stdout)
	out.summary(plan.Report)
	fmt.Fprintln(stdout)
	out.points(plan.Points, plan.Origin)
	out.attention(plan.Report)
	for _, path := range []string{params.Output, params.Report, params.DebugBeats} {
		if path != "" {
			fmt.Fprintf(stdout, "wrote %s\n", path)
		}
	}
	return nil
}
