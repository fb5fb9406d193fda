package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/teamcutter/keeper/internal/domain"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

func withSpinner(ctx context.Context, desc string) (stop func()) {
	spinner := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				spinner.Finish()
				return
			default:
				spinner.Add(1)
				time.Sleep(100 * time.Millisecond)
			}
		}
	}()
	return func() {
		close(done)
		spinner.Finish()
	}
}

func formatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}

func printOutcome(w io.Writer, out *domain.Outcome, quiet bool) {
	name := bold(out.Archive)

	switch {
	case out.DryRun:
		state := "exists"
		if out.Destination.Planned {
			state = "would be created"
		}
		fmt.Fprintf(w, "%s %s → %s %s\n", yellow("~"), name, destinationOf(out), dim("("+out.Format.String()+", "+state+")"))
		return
	case out.Listed:
		fmt.Fprintf(w, "%s %s %s\n", cyan("≡"), name,
			dim(fmt.Sprintf("(%s, %d entries, %s)", out.Format, len(out.Entries), formatSize(out.TotalSize()))))
	default:
		fmt.Fprintf(w, "%s %s → %s %s\n", green("✓"), name, destinationOf(out),
			dim(fmt.Sprintf("(%d entries, %s, %s)", len(out.Entries), formatSize(out.TotalSize()), out.Duration.Round(time.Millisecond))))
	}

	if !quiet {
		for _, e := range out.Entries {
			fmt.Fprintf(w, "  %s\n", formatEntry(e))
		}
	}

	for _, s := range out.Skipped {
		fmt.Fprintf(w, "  %s %s %s\n", yellow("!"), s.Name, dim("("+s.Reason+")"))
	}
}

func destinationOf(out *domain.Outcome) string {
	if out.Destination.File != "" {
		return out.Destination.File
	}
	return out.Destination.Root
}

func formatEntry(e domain.Entry) string {
	mode := "          "
	if e.HasMode {
		mode = e.Mode.String()
	}

	var line string
	switch {
	case e.Dir:
		line = fmt.Sprintf("%s %9s  %s", mode, "-", cyan(e.Name))
	case e.Symlink != "":
		line = fmt.Sprintf("%s %9s  %s -> %s", mode, "-", e.Name, e.Symlink)
	case e.Hardlink != "":
		line = fmt.Sprintf("%s %9s  %s => %s", mode, formatSize(e.Size), e.Name, e.Hardlink)
	default:
		line = fmt.Sprintf("%s %9s  %s", mode, formatSize(e.Size), e.Name)
	}

	if e.Comment != "" {
		line += "  " + dim("# "+e.Comment)
	}
	return line
}
