package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/MetaNetX-Resolver/internal/application/build"
	"github.com/turtacn/MetaNetX-Resolver/internal/domain/xref"
)

// NewBuildCmd creates the build command.
func NewBuildCmd() *cobra.Command {
	var (
		watch    bool
		lockMode string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a new snapshot from the MetaNetX source files",
		Long: "Fetch and parse the property, cross-reference and name files, assemble the\n" +
			"equivalence graph, resolve reaction names and publish the result as the\n" +
			"current snapshot.  With --watch the command stays up and rebuilds whenever\n" +
			"the source directory changes.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			var mode build.LockMode
			if lockMode != "" {
				if mode, err = build.ParseLockMode(lockMode); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := cliCtx.App(ctx)
			if err != nil {
				return err
			}
			pipeline, err := app.Pipeline(ctx, mode)
			if err != nil {
				return err
			}
			if !watch {
				return runBuild(ctx, cmd, pipeline)
			}
			return watchBuild(ctx, cmd, app, pipeline)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "rebuild whenever the source directory changes")
	cmd.Flags().StringVar(&lockMode, "lock-mode", "", "when another build runs: fail or wait (default from config)")
	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, p *build.Pipeline) error {
	res, err := p.Run(ctx)
	if err != nil {
		return err
	}
	return PrintResult(cmd, reportView{res.Report})
}

func watchBuild(ctx context.Context, cmd *cobra.Command, app *App, p *build.Pipeline) error {
	dir, err := app.watchDir()
	if err != nil {
		return err
	}
	cfg := app.Config.Build
	w, err := build.NewWatcher(dir, cfg.WatchQuietPeriod, cfg.WatchMaxWait, app.Logger)
	if err != nil {
		return err
	}

	// A failed first build does not stop the watch; the next change retries.
	if err := runBuild(ctx, cmd, p); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		PrintError(cmd, err)
	}
	PrintSuccess(cmd, "watching "+dir+" for changes")
	return w.Run(ctx, func(ctx context.Context) error {
		return runBuild(ctx, cmd, p)
	})
}

// reportView renders a BuildReport.  JSON output is the report itself.
type reportView struct {
	*xref.BuildReport
}

func (v reportView) rows() [][]string {
	r := v.BuildReport
	return [][]string{
		{"version", r.Version},
		{"duration", r.Duration().Round(time.Millisecond).String()},
		{"compounds", fmt.Sprint(r.Compounds)},
		{"reactions", fmt.Sprint(r.Reactions)},
		{"compartments", fmt.Sprint(r.Compartments)},
		{"cross references", fmt.Sprint(r.CrossReferences)},
		{"duplicates merged", fmt.Sprint(r.DuplicatesMerged)},
		{"conflicts", fmt.Sprint(len(r.Conflicts))},
		{"dangling", fmt.Sprint(r.Dangling)},
		{"unparseable equations", fmt.Sprint(r.UnparseableEquations)},
		{"malformed lines", fmt.Sprint(r.Skipped())},
		{"named reactions", fmt.Sprintf("%d/%d", r.Names.Resolved(), r.Names.Reactions)},
	}
}

func (v reportView) TableHeaders() []string { return []string{"Metric", "Value"} }

func (v reportView) TableRows() [][]string { return v.rows() }

func (v reportView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s snapshot %s\n", color.GreenString("Built"), v.Version)
	for _, row := range v.rows()[1:] {
		fmt.Fprintf(&sb, "  %-22s %s\n", row[0]+":", row[1])
	}
	for _, s := range v.Sources {
		if s.Skipped > 0 {
			fmt.Fprintf(&sb, "  %s %s skipped %d malformed lines\n", color.YellowString("warning:"), s.Name, s.Skipped)
		}
	}
	return sb.String()
}

//Personal.AI order the ending
