package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/MetaNetX-Resolver/internal/application/query"
	"github.com/turtacn/MetaNetX-Resolver/internal/domain/xref"
)

// loadEngine publishes the requested snapshot and returns the engine over it.
func loadEngine(ctx context.Context, cliCtx *CLIContext, version string) (*query.Engine, error) {
	app, err := cliCtx.App(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := app.Load(ctx, version); err != nil {
		return nil, err
	}
	return app.Engine, nil
}

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	var (
		namespace string
		snapshot  string
	)

	cmd := &cobra.Command{
		Use:   "resolve <id>",
		Short: "Resolve an identifier to its canonical MetaNetX entity",
		Long: "Look up a MetaNetX id (current or deprecated) or, with --namespace, a\n" +
			"foreign id such as bigg.reaction:ATPS4r.  Raw MetaNetX prefixes like\n" +
			"bigg or kegg are accepted.  A namespace may also be given inline as\n" +
			"<namespace>:<id>.",
		Args: cobra.ExactArgs(1),
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
			ns, id := splitQualified(namespace, args[0])
			e, err := engine.ResolveByID(ctx, id, ns)
			if err != nil {
				return err
			}
			return PrintResult(cmd, entityView{e})
		},
	}

	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "namespace of the id (default: MetaNetX)")
	cmd.Flags().StringVar(&snapshot, "snapshot", "latest", "snapshot version to query")
	return cmd
}

// splitQualified accepts "ns:id" when no namespace flag is given.  CHEBI
// style ids carry their own colon and are left alone.
func splitQualified(namespace, arg string) (string, string) {
	if namespace != "" {
		return namespace, arg
	}
	ns, id, ok := strings.Cut(arg, ":")
	if !ok || ns == "" || id == "" || strings.EqualFold(ns, "chebi") || strings.EqualFold(ns, "slm") {
		return "", arg
	}
	return ns, id
}

// NewXrefsCmd creates the xrefs command.
func NewXrefsCmd() *cobra.Command {
	var snapshot string

	cmd := &cobra.Command{
		Use:   "xrefs <id>",
		Short: "List the cross-references of a MetaNetX entity",
		Args:  cobra.ExactArgs(1),
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
			refs, err := engine.CrossReferences(ctx, args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, xrefList(refs))
		},
	}

	cmd.Flags().StringVar(&snapshot, "snapshot", "latest", "snapshot version to query")
	return cmd
}

type entityView struct {
	*xref.Entity
}

func (v entityView) rows() [][]string {
	e := v.Entity
	rows := [][]string{{"id", e.ID}, {"kind", string(e.Kind)}}
	add := func(k, val string) {
		if val != "" {
			rows = append(rows, []string{k, val})
		}
	}
	add("display name", e.DisplayName)
	add("alternate names", strings.Join(e.AlternateNames, "; "))
	add("name", e.Name)
	add("formula", e.Formula)
	if e.Charge != nil {
		add("charge", fmt.Sprint(*e.Charge))
	}
	if e.Mass != nil {
		add("mass", fmt.Sprint(*e.Mass))
	}
	add("inchikey", e.InChIKey)
	add("smiles", e.SMILES)
	add("equation", e.Equation)
	add("ec", strings.Join(e.EC, ";"))
	add("balanced", e.Balanced)
	add("reference", e.Reference)
	add("cross references", fmt.Sprint(len(e.XRefs)))
	return rows
}

func (v entityView) TableHeaders() []string { return []string{"Field", "Value"} }

func (v entityView) TableRows() [][]string { return v.rows() }

func (v entityView) String() string {
	var sb strings.Builder
	rows := v.rows()
	fmt.Fprintf(&sb, "%s (%s)\n", color.New(color.Bold).Sprint(v.ID), v.Kind)
	for _, row := range rows[2:] {
		fmt.Fprintf(&sb, "  %-17s %s\n", row[0]+":", row[1])
	}
	return sb.String()
}

type xrefList []xref.XRef

func (l xrefList) TableHeaders() []string { return []string{"Namespace", "ID"} }

func (l xrefList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		rows = append(rows, []string{r.Namespace, r.ID})
	}
	return rows
}

func (l xrefList) String() string {
	var sb strings.Builder
	for _, r := range l {
		sb.WriteString(r.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

//Personal.AI order the ending
