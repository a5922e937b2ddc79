package cli

// This file contains the summary report: a per-test table plus, in verbose
// mode, the captured diagnostic heads of every failing test.

import (
	"fmt"
	"os"
	"time"

	"github.com/goldrun/goldrun/aggregator"
	"github.com/goldrun/goldrun/descriptor"
	"github.com/goldrun/goldrun/model"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func (a *App) printSummary(agg *aggregator.Aggregator, reg *descriptor.Registry, verbose bool) {
	counts := agg.Counts()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("goldrun results")

	t.AppendHeader(table.Row{"Test", "Procs", "Run", "Diff", "Duration", "Status"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Test", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Procs", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
	})

	for _, res := range agg.Results() {
		t.AppendRow(table.Row{
			res.Descriptor.Name,
			res.Descriptor.ProcessCount,
			string(res.RunStatus),
			string(res.DiffStatus),
			res.Duration.Round(time.Millisecond),
			statusString(res),
		})
	}
	for _, problem := range reg.Problems {
		t.AppendRow(table.Row{problem.Path, "-", "-", "-", "-", "error"})
	}

	t.AppendFooter(table.Row{
		"", "",
		fmt.Sprintf("passed %d", counts.Passed),
		fmt.Sprintf("failed %d", counts.Failed+counts.TimedOut+counts.Errors),
		fmt.Sprintf("skipped %d", counts.Skipped),
		fmt.Sprintf("%d total", counts.Total),
	})

	switch {
	case counts.Passed == counts.Total && counts.Skipped == 0 && len(reg.Problems) == 0:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	case counts.Passed > 0:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.Render()

	if verbose {
		a.printFailureDiagnostics(agg.Failures())
	}
}

// printFailureDiagnostics lists failing tests with their captured output
// heads, in completion order.
func (a *App) printFailureDiagnostics(failures []*model.TestResult) {
	for _, res := range failures {
		fmt.Printf("\n--- %s (run=%s diff=%s", res.Descriptor.Name, res.RunStatus, res.DiffStatus)
		if res.LaunchError != "" {
			fmt.Printf(" launch-error=%q", res.LaunchError)
		} else if res.ExitCode != 0 {
			fmt.Printf(" exit=%d", res.ExitCode)
		}
		fmt.Println(") ---")

		if res.Diagnostics == nil {
			continue
		}
		if res.Diagnostics.Stdout != "" {
			fmt.Printf("stdout:\n%s\n", res.Diagnostics.Stdout)
		}
		if res.Diagnostics.Stderr != "" {
			fmt.Printf("stderr:\n%s\n", res.Diagnostics.Stderr)
		}
		if res.Diagnostics.DiffOutput != "" {
			fmt.Printf("diff:\n%s\n", res.Diagnostics.DiffOutput)
		}
	}
}

func statusString(res *model.TestResult) string {
	switch {
	case res.Overall():
		return "pass"
	case res.LaunchError != "":
		return "error"
	case res.RunStatus == model.RunTimedOut:
		return "timeout"
	default:
		return "fail"
	}
}
