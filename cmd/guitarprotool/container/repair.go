// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jamiemacari/guitarprotool/cmd/guitarprotool/cli"
	"github.com/jamiemacari/guitarprotool/lib/xmlrepair"
)

type repairCommandParams struct {
	cli.JSONOutput
	repairParams
	Output  string `json:"output"   flag:"output,o" desc:"write the repaired document here"`
	InPlace bool   `json:"in_place" flag:"in-place" desc:"overwrite the input with the repaired document"`
	Check   bool   `json:"check"    flag:"check"    desc:"exit 1 if the document needs repair"`
	Force   bool   `json:"force"    flag:"force,f"  desc:"overwrite an existing --output file"`
	List    bool   `json:"list"     flag:"list"     desc:"list the repair rules and exit"`
}

type repairResult struct {
	Path    string          `json:"path"`
	Changed bool            `json:"changed"`
	Latin1  bool            `json:"latin1"`
	Hits    []xmlrepair.Hit `json:"hits"`
	Total   int             `json:"total"`
	Output  string          `json:"output,omitempty"`
}

type ruleDescription struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Disabled    bool   `json:"disabled"`
}

// RepairCommand returns the "repair" command.
func RepairCommand(globals *cli.Globals) *cli.Command {
	var params repairCommandParams

	return &cli.Command{
		Name:    "repair",
		Summary: "Fix known defects in score XML",
		Description: `Run the XML repair pass over a score.gpif (or any XML entry) and
report which rules fired and how often.

The rules fix defects written by some Guitar Pro exporters: stray NUL
bytes, doubled tag names, attributes without values and similar. Input
that is not valid UTF-8 is decoded as ISO-8859-1 first. The repaired
document is always UTF-8.

Without --output or --in-place nothing is written.`,
		Usage:  "guitarprotool repair <file.xml> [flags]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "See what would be repaired",
				Command:     "guitarprotool repair song/score.gpif",
			},
			{
				Description: "Repair in place, skipping one rule",
				Command:     "guitarprotool repair score.gpif --in-place --disable bare-boolean-attribute",
			},
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			cfg, err := globals.Config()
			if err != nil {
				return err
			}
			disabled := params.disabledRepairs(cfg)
			if params.List {
				return listRules(&params, disabled, os.Stdout)
			}
			if len(args) != 1 {
				return cli.Validation("repair requires exactly one file, got %d arguments", len(args))
			}
			if params.InPlace && params.Output != "" {
				return cli.Validation("--in-place and --output are mutually exclusive")
			}
			return runRepair(args[0], &params, disabled, os.Stdout, logger)
		},
	}
}

func runRepair(path string, params *repairCommandParams, disabled []string, stdout io.Writer, logger *slog.Logger) error {
	rules, err := xmlrepair.Select(disabled)
	if err != nil {
		return cli.Validation("%w", err)
	}
	content, err := cli.ReadFile(path)
	if err != nil {
		return err
	}

	repaired := xmlrepair.RepairWith(content, rules)
	result := repairResult{
		Path:    path,
		Changed: repaired.Changed(),
		Latin1:  repaired.Latin1,
		Hits:    repaired.Hits,
		Total:   repaired.Total(),
	}
	logger.Debug("repair pass complete", "file", path, "sites", result.Total, "latin1", result.Latin1)

	switch {
	case params.InPlace && result.Changed:
		if err := cli.WriteFile(path, repaired.Content, true); err != nil {
			return err
		}
		result.Output = path
	case params.Output != "":
		if err := cli.WriteFile(params.Output, repaired.Content, params.Force); err != nil {
			return err
		}
		result.Output = params.Output
	}

	if done, err := params.EmitJSON(stdout, result); !done {
		writeRepairText(stdout, result)
	} else if err != nil {
		return err
	}
	if params.Check && result.Changed {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

func writeRepairText(w io.Writer, result repairResult) {
	if !result.Changed {
		fmt.Fprintf(w, "%s: no repairs needed\n", result.Path)
		return
	}
	fmt.Fprintf(w, "%s: %d sites repaired\n", result.Path, result.Total)
	if result.Latin1 {
		fmt.Fprintln(w, "  decoded as ISO-8859-1")
	}
	for _, hit := range result.Hits {
		fmt.Fprintf(w, "  %-24s %6d\n", hit.Rule, hit.Count)
	}
	if result.Output != "" {
		fmt.Fprintf(w, "wrote %s\n", result.Output)
	}
}

func listRules(params *repairCommandParams, disabled []string, stdout io.Writer) error {
	var rules []ruleDescription
	for _, rule := range xmlrepair.Rules() {
		description := ruleDescription{Name: rule.Name, Description: rule.Description}
		for _, name := range disabled {
			if name == rule.Name {
				description.Disabled = true
			}
		}
		rules = append(rules, description)
	}
	if done, err := params.EmitJSON(stdout, rules); done {
		return err
	}
	for _, rule := range rules {
		marker := " "
		if rule.Disabled {
			marker = "-"
		}
		fmt.Fprintf(stdout, "%s %-24s %s\n", marker, rule.Name, rule.Description)
	}
	return nil
}
