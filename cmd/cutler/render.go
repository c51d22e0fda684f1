package cutler

import (
	"fmt"
	"io"

	"github.com/machlit/cutler/pkg/commands/apply"
	"github.com/machlit/cutler/pkg/commands/status"
	"github.com/machlit/cutler/pkg/commands/unapply"
	"github.com/machlit/cutler/pkg/prefs"
	"github.com/machlit/cutler/pkg/style"
)

func renderValue(v *prefs.Value) string {
	if v == nil {
		return style.Get("Missing").Render("(not set)")
	}
	return style.Get("Value").Render(v.String())
}

func renderStatus(w io.Writer, result *status.Result) {
	for i, domain := range result.Domains {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, style.Get("Domain").Render(domain.Name))
		for _, entry := range domain.Entries {
			marker := style.Get("Drift").Render("≠")
			if entry.InSync {
				marker = style.Get("InSync").Render("=")
			}
			fmt.Fprintf(w, "  %s %s  want %s, have %s\n",
				marker,
				style.Get("Key").Render(entry.Key),
				renderValue(&entry.Desired),
				renderValue(entry.Current))
		}
	}

	fmt.Fprintln(w)
	if result.InSync {
		fmt.Fprintln(w, style.Get("Success").Render(MsgNothingToDo))
	} else {
		fmt.Fprintln(w, style.Get("Drift").Render("System and config differ; run `cutler apply`."))
	}
	if result.ConfigDrifted {
		fmt.Fprintln(w, style.Get("Muted").Render("The config changed since the last apply."))
	}
}

func renderApply(w io.Writer, result *apply.Result) {
	if result.DryRun {
		for _, job := range result.Jobs {
			fmt.Fprintf(w, "%s %s %s -> %s\n",
				style.Get("Info").Render("would set"),
				style.Get("Key").Render(job.Domain+" | "+job.Key),
				renderValue(job.Current),
				renderValue(&job.Desired))
		}
		fmt.Fprintln(w, style.Get("Muted").Render(MsgDryRunNotice))
		return
	}

	if len(result.Jobs) == 0 && result.CommandsRun == 0 {
		fmt.Fprintln(w, style.Get("Success").Render(MsgNothingToDo))
		return
	}

	line := fmt.Sprintf("Applied %d settings", result.Applied)
	if result.CommandsRun > 0 {
		line += fmt.Sprintf(", ran %d commands", result.CommandsRun)
	}
	fmt.Fprintln(w, style.Get("Success").Render(line))
	if result.Failed > 0 {
		fmt.Fprintln(w, style.Get("Error").Render(fmt.Sprintf("%d writes failed; see the log", result.Failed)))
	}
}

func renderUnapply(w io.Writer, result *unapply.Result) {
	if result.DryRun {
		fmt.Fprintf(w, "Would restore %d settings and delete %d.\n", result.Restored, result.Deleted)
		fmt.Fprintln(w, style.Get("Muted").Render(MsgDryRunNotice))
		return
	}
	fmt.Fprintln(w, style.Get("Success").Render(
		fmt.Sprintf("Restored %d settings, deleted %d", result.Restored, result.Deleted)))
	if result.Failed > 0 {
		fmt.Fprintln(w, style.Get("Error").Render(fmt.Sprintf("%d operations failed; see the log", result.Failed)))
	}
	if result.ExecRuns > 0 {
		fmt.Fprintln(w, style.Get("Muted").Render("External command effects were not undone."))
	}
}
