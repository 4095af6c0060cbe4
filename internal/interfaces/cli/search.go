package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/MetaNetX-Resolver/internal/application/query"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/logging"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	var (
		fuzzy    bool
		limit    int
		snapshot string
	)

	cmd := &cobra.Command{
		Use:   "search <name>",
		Short: "Find entities by name",
		Long: "Match a name against display names, alternate names and property-file\n" +
			"names.  Matching ignores case, punctuation and accents.  With --fuzzy,\n" +
			"near matches are ranked by edit-distance similarity.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			engine, err := loadEngine(ctx, cliCtx, snapshot)
			if err != nil {
				return err
			}
			q := strings.Join(args, " ")
			matches, err := engine.ResolveByName(ctx, q, fuzzy, limit)
			if err != nil {
				return err
			}
			cliCtx.Logger.Debug("Search completed",
				logging.String("query", q),
				logging.Bool("fuzzy", fuzzy),
				logging.Int("results", len(matches)))

			if len(matches) == 0 && cliCtx.OutputFormat != "json" {
				fmt.Fprintln(cmd.ErrOrStderr(), "No matching entities found.")
				if !fuzzy {
					fmt.Fprintln(cmd.ErrOrStderr(), "Try --fuzzy to include near matches.")
				}
				return nil
			}
			return PrintResult(cmd, matchList(matches))
		},
	}

	cmd.Flags().BoolVar(&fuzzy, "fuzzy", false, "rank near matches by similarity")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results (default from config for --fuzzy)")
	cmd.Flags().StringVar(&snapshot, "snapshot", "latest", "snapshot version to query")
	return cmd
}

type matchList []query.Match

func (m matchList) TableHeaders() []string {
	return []string{"Rank", "Score", "ID", "Kind", "Matched name", "Display name"}
}

func (m matchList) TableRows() [][]string {
	rows := make([][]string, 0, len(m))
	for i, hit := range m {
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			colorizeScore(hit.Score),
			hit.Entity.ID,
			string(hit.Entity.Kind),
			truncateString(hit.Name, 40),
			truncateString(hit.Entity.DisplayName, 40),
		})
	}
	return rows
}

func (m matchList) String() string {
	var sb strings.Builder
	for _, hit := range m {
		fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\n", hit.Entity.ID, fmt.Sprintf("%.3f", hit.Score), string(hit.Entity.Kind), hit.Name)
	}
	return sb.String()
}

func colorizeScore(score float64) string {
	s := fmt.Sprintf("%.3f", score)
	switch {
	case score >= 0.999:
		return color.GreenString(s)
	case score >= 0.8:
		return color.YellowString(s)
	default:
		return s
	}
}

//Personal.AI order the ending
