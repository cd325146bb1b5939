package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/cyclome/internal/application/catalog"
	"github.com/turtacn/cyclome/internal/domain/structure"
	"github.com/turtacn/cyclome/internal/infrastructure/monitoring/logging"
)

// IndexReport is the output of the index command.
type IndexReport struct {
	Stats      *catalog.Stats             `json:"stats"`
	Bases      []*structure.BaseAggregate `json:"bases,omitempty"`
	Missing    []string                   `json:"missing,omitempty"`
	Similarity *catalog.SimilarityStatus  `json:"similarity,omitempty"`
}

func (r *IndexReport) TableHeaders() []string {
	return []string{"PDB", "CHAINS", "FILES"}
}

func (r *IndexReport) TableRows() [][]string {
	rows := [][]string{{
		"(total)",
		strconv.Itoa(r.Stats.ChainCount),
		strconv.Itoa(r.Stats.BaseCount) + " bases",
	}}
	for _, b := range r.Bases {
		rows = append(rows, []string{b.BaseCode, joinComma(b.Chains), joinComma(b.SourceFiles)})
	}
	for _, m := range r.Missing {
		rows = append(rows, []string{m, "-", "not found"})
	}
	return rows
}

func (r *IndexReport) String() string {
	s := fmt.Sprintf("source: %s\nbases: %d\nchains: %d\nsequences: %d\nskipped files: %d",
		r.Stats.Source, r.Stats.BaseCount, r.Stats.ChainCount, r.Stats.SequenceCount, r.Stats.Skipped)
	for _, b := range r.Bases {
		s += fmt.Sprintf("\n%s: chains=[%s] files=[%s]", b.BaseCode, joinComma(b.Chains), joinComma(b.SourceFiles))
	}
	for _, m := range r.Missing {
		s += fmt.Sprintf("\n%s: not found", m)
	}
	if sim := r.Similarity; sim != nil {
		if sim.OK {
			s += fmt.Sprintf("\nsimilarity: %d records from %s", sim.Indexed, sim.Path)
		} else {
			s += fmt.Sprintf("\nsimilarity: unavailable (%s)", sim.Detail)
		}
	}
	return s
}

// NewIndexCmd creates the index command.  It builds the catalog in process
// from the configured source without starting a server.
func NewIndexCmd() *cobra.Command {
	var (
		dir        string
		bases      []string
		similarity bool
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the catalog offline and print its statistics",
		Long: "index scans the structure source exactly as serve does and reports the\n" +
			"index counters.  --base prints the aggregate of structure codes and\n" +
			"--similarity loads the similarity dataset to check it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config
			if cmd.Flags().Changed("dir") {
				cfg.Catalog.StructureDir = dir
				cfg.Catalog.Source = "local"
			}

			ctx := cmd.Context()
			app := &App{cfg: cfg, logger: cliCtx.Logger}
			source, _, err := app.openSource(cfg, cliCtx.Logger)
			if err != nil {
				return err
			}
			defer app.Close()

			deps := catalog.Dependencies{
				Source:   source,
				Metadata: datasetLoader(cfg.Catalog.MetadataPath),
				Logger:   cliCtx.Logger,
			}
			if similarity {
				deps.Similarity = datasetLoader(cfg.Similarity.DatasetPath)
			}
			svc := catalog.NewService(ctx, CatalogConfig(cfg), deps)

			report := &IndexReport{Stats: svc.Stats(ctx)}
			for _, b := range bases {
				agg, err := svc.Base(ctx, b)
				if err != nil {
					cliCtx.Logger.Debug("base lookup failed", logging.String("pdb", b), logging.Err(err))
					report.Missing = append(report.Missing, b)
					continue
				}
				report.Bases = append(report.Bases, agg)
			}
			if similarity {
				report.Similarity = svc.SimilarityHealth(ctx)
			}
			return PrintResult(cmd, report)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "structure directory (forces the local source)")
	cmd.Flags().StringSliceVar(&bases, "base", nil, "structure codes to print the aggregate of")
	cmd.Flags().BoolVar(&similarity, "similarity", false, "load the similarity dataset and report its status")
	return cmd
}

//Personal.AI order the ending
