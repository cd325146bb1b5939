package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/cyclome/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cyclome/pkg/client"
)

// ─────────────────────────────────────────────────────────────────────────────
// Output shapes
// ─────────────────────────────────────────────────────────────────────────────

type idList []string

func (l idList) TableHeaders() []string { return []string{"ID"} }

func (l idList) TableRows() [][]string {
	rows := make([][]string, len(l))
	for i, id := range l {
		rows[i] = []string{id}
	}
	return rows
}

type hitList []client.SequenceHit

func (l hitList) TableHeaders() []string { return []string{"ID", "SEQUENCE"} }

func (l hitList) TableRows() [][]string {
	rows := make([][]string, len(l))
	for i, h := range l {
		rows[i] = []string{h.ID, h.Sequence}
	}
	return rows
}

type similarView struct {
	*client.SimilarityResult
}

func (v similarView) TableHeaders() []string { return []string{"NEIGHBOR"} }

func (v similarView) TableRows() [][]string {
	return idList(v.Results).TableRows()
}

func (v similarView) String() string {
	head := fmt.Sprintf("%s @ %s (%s): %d neighbors", v.PDBID, formatThreshold(v.Threshold), v.Key, v.Count)
	if len(v.Results) == 0 {
		return head
	}
	return head + "\n" + strings.Join(v.Results, "\n")
}

type batchView struct {
	*client.BatchResult
}

func (v batchView) TableHeaders() []string { return []string{"ID", "COUNT", "NEIGHBORS"} }

func (v batchView) TableRows() [][]string {
	rows := make([][]string, len(v.Items))
	for i, it := range v.Items {
		if it.Failed() {
			rows[i] = []string{it.PDBID, "-", it.Code + ": " + it.Error}
			continue
		}
		rows[i] = []string{it.PDBID, strconv.Itoa(it.Count), joinComma(it.Results)}
	}
	return rows
}

func (v batchView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "threshold %s (%s): %d ids", formatThreshold(v.Threshold), v.Key, v.Count)
	if v.Truncated {
		sb.WriteString(", neighbor lists truncated")
	}
	for _, row := range v.TableRows() {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(row, "\t"))
	}
	return sb.String()
}

func formatThreshold(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}

func joinComma(values []string) string {
	return strings.Join(values, ",")
}

// ─────────────────────────────────────────────────────────────────────────────
// Commands
// ─────────────────────────────────────────────────────────────────────────────

// NewSearchCmd creates the identifier prefix search command.
func NewSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search structure ids by prefix",
		Example: "  cyclome search 1a1p\n" +
			"  cyclome search 1ag7_ --limit 5 -o json",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ctx, cancel, err := queryContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			cliCtx.Logger.Debug("searching ids", logging.String("query", args[0]), logging.Int("limit", limit))
			ids, err := cliCtx.Client.Structures().Search(ctx, args[0], limit)
			if err != nil {
				return err
			}
			return PrintResult(cmd, idList(ids))
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results (server default when 0)")
	return cmd
}

// NewSeqCmd creates the sequence fragment search command.
func NewSeqCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "seq <fragment>",
		Short:   "Find chains whose sequence contains a fragment",
		Example: "  cyclome seq IQNCP",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ctx, cancel, err := queryContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			hits, err := cliCtx.Client.Structures().SequenceSearch(ctx, args[0], limit)
			if err != nil {
				return err
			}
			return PrintResult(cmd, hitList(hits))
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results (server default when 0)")
	return cmd
}

// NewSimilarCmd creates the single-id similarity lookup command.
func NewSimilarCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "similar <id> <threshold>",
		Short:   "List the similarity neighbors of a structure",
		Example: "  cyclome similar 1A1P_A 75",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ctx, cancel, err := queryContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			res, err := cliCtx.Client.Similarity().Get(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return PrintResult(cmd, similarView{res})
		},
	}
}

// NewSimilarBatchCmd creates the batch similarity lookup command.
func NewSimilarBatchCmd() *cobra.Command {
	var useGet bool

	cmd := &cobra.Command{
		Use:   "similar-batch <threshold> <id> [id...]",
		Short: "Look up the similarity neighbors of several structures",
		Long: "similar-batch sends every id in one request.  Ids may also be given as a\n" +
			"single comma-separated argument.  Unknown ids are reported per item and\n" +
			"do not fail the command.",
		Example: "  cyclome similar-batch 75 1a1p 1cn2\n" +
			"  cyclome similar-batch 90 1a1p,1cn2 --get",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ctx, cancel, err := queryContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			threshold, ids := args[0], splitIDs(args[1:])
			sim := cliCtx.Client.Similarity()
			var res *client.BatchResult
			if useGet {
				res, err = sim.BatchQuery(ctx, threshold, ids)
			} else {
				res, err = sim.Batch(ctx, threshold, ids)
			}
			if err != nil {
				return err
			}
			return PrintResult(cmd, batchView{res})
		},
	}
	cmd.Flags().BoolVar(&useGet, "get", false, "use the GET form with ids in the query string")
	return cmd
}

// splitIDs flattens comma-separated arguments and drops empty entries.
func splitIDs(args []string) []string {
	var ids []string
	for _, a := range args {
		for _, id := range strings.Split(a, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

//Personal.AI order the ending
