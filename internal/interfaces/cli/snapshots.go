package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/MetaNetX-Resolver/internal/domain/snapshot"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MetaNetX-Resolver/pkg/errors"
)

// NewSnapshotsCmd creates the snapshots command group.
func NewSnapshotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Inspect saved snapshots",
	}
	cmd.AddCommand(newSnapshotsListCmd(), newSnapshotsCurrentCmd())
	return cmd
}

func newSnapshotsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved snapshots, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			app, err := cliCtx.App(ctx)
			if err != nil {
				return err
			}
			versions, err := app.Store.List(ctx)
			if err != nil {
				return err
			}
			current, err := app.Store.Current(ctx)
			if err != nil && !errors.IsNotFound(err) {
				return err
			}

			list := manifestList{current: current}
			for _, v := range versions {
				m, err := app.Store.Manifest(ctx, v)
				if err != nil {
					// A half-written snapshot has no readable manifest; skip it.
					cliCtx.Logger.Debug("Skipping unreadable snapshot", logging.SnapshotVersion(v), logging.Err(err))
					continue
				}
				list.items = append(list.items, m)
			}
			if len(list.items) == 0 && cliCtx.OutputFormat != "json" {
				fmt.Fprintln(cmd.ErrOrStderr(), "No snapshots found. Run `metanetx build` first.")
				return nil
			}
			return PrintResult(cmd, list)
		},
	}
}

func newSnapshotsCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the manifest of the current snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			app, err := cliCtx.App(ctx)
			if err != nil {
				return err
			}
			m, err := app.Store.Manifest(ctx, snapshot.Latest)
			if err != nil {
				return err
			}
			return PrintResult(cmd, manifestList{current: m.Version, items: []*snapshot.Manifest{m}})
		},
	}
}

// manifestList marks the current snapshot in text and table output.  JSON
// output is the manifest array.
type manifestList struct {
	current string
	items   []*snapshot.Manifest
}

func (l manifestList) MarshalJSON() ([]byte, error) {
	if l.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.items)
}

func (l manifestList) TableHeaders() []string {
	return []string{"", "Version", "Created", "Compounds", "Reactions", "Compartments", "XRefs", "Size"}
}

func (l manifestList) TableRows() [][]string {
	rows := make([][]string, 0, len(l.items))
	for _, m := range l.items {
		mark := ""
		if m.Version == l.current {
			mark = color.GreenString("*")
		}
		rows = append(rows, []string{
			mark,
			m.Version,
			m.CreatedAt.Format(time.RFC3339),
			fmt.Sprint(m.Counts.Compounds),
			fmt.Sprint(m.Counts.Reactions),
			fmt.Sprint(m.Counts.Compartments),
			fmt.Sprint(m.Counts.CrossReferences),
			humanBytes(m.Size),
		})
	}
	return rows
}

func (l manifestList) String() string {
	var sb strings.Builder
	for _, m := range l.items {
		mark := " "
		if m.Version == l.current {
			mark = color.GreenString("*")
		}
		fmt.Fprintf(&sb, "%s %s  %s  compounds=%d reactions=%d compartments=%d xrefs=%d size=%s\n",
			mark, m.Version, m.CreatedAt.Format(time.RFC3339),
			m.Counts.Compounds, m.Counts.Reactions, m.Counts.Compartments, m.Counts.CrossReferences,
			humanBytes(m.Size))
	}
	return sb.String()
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

//Personal.AI order the ending
