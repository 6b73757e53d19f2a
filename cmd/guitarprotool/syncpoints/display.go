// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package syncpoints

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jamiemacari/guitarprotool/cmd/guitarprotool/cli"
	"github.com/jamiemacari/guitarprotool/lib/drift"
	"github.com/jamiemacari/guitarprotool/lib/syncplan"
)

// theme colours drift output. All colors use lipgloss ANSI 256-color
// codes.
type theme struct {
	Heading   lipgloss.Color
	Faint     lipgloss.Color
	Severity  [drift.SeveritySevere + 1]lipgloss.Color
	SyncPoint lipgloss.Color
}

var defaultTheme = theme{
	Heading: lipgloss.Color("255"),
	Faint:   lipgloss.Color("245"),
	Severity: [...]lipgloss.Color{
		drift.SeverityStable:      lipgloss.Color("114"), // green
		drift.SeverityMinor:       lipgloss.Color("75"),  // blue
		drift.SeverityModerate:    lipgloss.Color("220"), // amber
		drift.SeveritySignificant: lipgloss.Color("208"), // orange
		drift.SeveritySevere:      lipgloss.Color("196"), // red
	},
	SyncPoint: lipgloss.Color("141"), // light purple
}

// display renders plans for a terminal. Colour is used only when the
// writer is a terminal and NO_COLOR is unset.
type display struct {
	w        io.Writer
	heading  lipgloss.Style
	faint    lipgloss.Style
	point    lipgloss.Style
	severity [drift.SeveritySevere + 1]lipgloss.Style
}

func newDisplay(w io.Writer) *display {
	profile := termenv.Ascii
	if cli.IsTerminal(w) && os.Getenv("NO_COLOR") == "" {
		profile = termenv.ANSI256
	}
	return newDisplayWithProfile(w, profile)
}

func newDisplayWithProfile(w io.Writer, profile termenv.Profile) *display {
	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)

	d := &display{
		w:       w,
		heading: renderer.NewStyle().Bold(true).Foreground(defaultTheme.Heading),
		faint:   renderer.NewStyle().Foreground(defaultTheme.Faint),
		point:   renderer.NewStyle().Bold(true).Foreground(defaultTheme.SyncPoint),
	}
	for severity, color := range defaultTheme.Severity {
		d.severity[severity] = renderer.NewStyle().Foreground(color)
	}
	return d
}

func (d *display) severityStyle(severity drift.Severity) lipgloss.Style {
	if severity < 0 || int(severity) >= len(d.severity) {
		return d.faint
	}
	return d.severity[severity]
}

// summary writes the drift headline with the overall severity.
func (d *display) summary(report *drift.Report) {
	overall := drift.Classify(report.AvgDriftPercent)
	fmt.Fprintf(d.w, "%s %s\n", d.heading.Render("Tempo drift:"),
		d.severityStyle(overall).Render(strings.ToUpper(overall.String())))
	for _, line := range report.SummaryLines() {
		fmt.Fprintf(d.w, "  %s\n", line)
	}
}

// points writes one line per sync point, coloured by the severity of
// the drift that placed it.
func (d *display) points(points []syncplan.SyncPoint, origin syncplan.TimeOrigin) {
	fmt.Fprintf(d.w, "%s %d at %d Hz, initial time offset %d frames\n",
		d.heading.Render("Sync points:"), len(points), origin.SampleRate(), origin.InitialTimeOffset())
	fmt.Fprintln(d.w, d.faint.Render(fmt.Sprintf("  %6s  %12s  %10s  %-8s  %8s", "Bar", "Frame", "Local BPM", "Trigger", "Drift %")))
	for _, point := range points {
		drifted := fmt.Sprintf("%8.2f", point.DriftPercent)
		if point.Trigger == syncplan.TriggerDrift {
			drifted = d.severityStyle(drift.Classify(point.DriftPercent)).Render(drifted)
		}
		fmt.Fprintf(d.w, "  %s  %12d  %10.2f  %-8s  %s\n",
			d.point.Render(fmt.Sprintf("%6d", point.Bar)),
			point.FrameOffset, point.LocalTempoBPM, point.Trigger, drifted)
	}
}

// attention lists the bars classified moderate or worse.
func (d *display) attention(report *drift.Report) {
	if len(report.SignificantBars) == 0 {
		return
	}
	fmt.Fprintln(d.w, d.heading.Render("Bars needing attention:"))
	for _, bar := range report.SignificantBars {
		if bar < 0 || bar >= len(report.Records) {
			continue
		}
		record := report.Records[bar]
		fmt.Fprintf(d.w, "  bar %4d  %s  %.2f%%\n", record.Bar,
			d.severityStyle(record.Severity).Render(fmt.Sprintf("%-11s", record.Severity)), record.DriftPercent)
	}
}
