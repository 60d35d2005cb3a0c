package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/odorscape/internal/application/scoring"
	"github.com/turtacn/odorscape/internal/application/splits"
	"github.com/turtacn/odorscape/internal/application/stratify"
	"github.com/turtacn/odorscape/internal/domain/dataset"
	"github.com/turtacn/odorscape/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/odorscape/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// splits
// ─────────────────────────────────────────────────────────────────────────────

// FoldSummary describes one fold of an ensemble.
type FoldSummary struct {
	Index int `json:"index" yaml:"index"`
	Train int `json:"train" yaml:"train"`
	Test  int `json:"test" yaml:"test"`
}

// SplitsResult describes a fold ensemble.
type SplitsResult struct {
	Source string        `json:"source" yaml:"source"`
	Size   int           `json:"size" yaml:"size"`
	Folds  []FoldSummary `json:"folds" yaml:"folds"`
}

// TableHeaders implements tableProvider.
func (r *SplitsResult) TableHeaders() []string { return []string{"FOLD", "TRAIN", "TEST"} }

// TableRows implements tableProvider.
func (r *SplitsResult) TableRows() [][]string {
	rows := make([][]string, len(r.Folds))
	for i, f := range r.Folds {
		rows[i] = []string{strconv.Itoa(f.Index), strconv.Itoa(f.Train), strconv.Itoa(f.Test)}
	}
	return rows
}

func summarizeEnsemble(source string, e *splits.Ensemble) *SplitsResult {
	res := &SplitsResult{Source: source, Size: e.Size, Folds: make([]FoldSummary, e.Count())}
	for i, f := range e.Folds {
		test := f.TestSize()
		res.Folds[i] = FoldSummary{Index: f.Index, Train: e.Size - test, Test: test}
	}
	return res
}

// NewSplitsCmd prints the seeded fold ensemble, or the membership recorded
// in a model's score table.
func NewSplitsCmd() *cobra.Command {
	var fromPredictions string

	cmd := &cobra.Command{
		Use:   "splits [DATASET]",
		Short: "Show the fold ensemble over the cleaned dataset",
		Long: "Generate the seeded fold ensemble (splits.folds folds, fold i seeded with i)\n" +
			"over the cleaned dataset.  With --from-predictions, derive fold membership from\n" +
			"the named model's score table instead; its fold count must equal splits.folds.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ds, _, err := loadDataset(cmd, args)
			if err != nil {
				return err
			}

			if fromPredictions == "" {
				e, err := splits.Generate(cliCtx.Config.Splits.Folds, ds.Len(), cliCtx.Config.Splits.TestFraction)
				if err != nil {
					return err
				}
				return PrintResult(cmd, summarizeEnsemble("generated", e))
			}

			p, err := loadPredictions(cmd, fromPredictions)
			if err != nil {
				return err
			}
			e := splits.FromScoreTable(ds.IDs(), p.Table())
			if err := splits.CheckCount(cliCtx.Config.Splits.Folds, e); err != nil {
				return err
			}
			return PrintResult(cmd, summarizeEnsemble(fromPredictions, e))
		},
	}
	cmd.Flags().StringVar(&fromPredictions, "from-predictions", "", "model name under data.predictions to derive folds from")
	return cmd
}

// loadPredictions reads the score table configured for model.
func loadPredictions(cmd *cobra.Command, model string) (*scoring.Precomputed, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil, err
	}
	path, ok := cliCtx.Config.Data.Predictions[model]
	if !ok {
		return nil, errors.NotFound("no score table configured for model").WithDetail(model)
	}
	table, err := scoring.LoadScoreTable(cmd.Context(), cliCtx.Source, path, model)
	if err != nil {
		return nil, err
	}
	cliCtx.Logger.Info("score table loaded",
		logging.String("model", model),
		logging.String("path", path),
		logging.Int("folds", table.Folds()),
		logging.Int("entries", len(table.IDs())))
	return scoring.NewPrecomputed(table), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// classes
// ─────────────────────────────────────────────────────────────────────────────

// ClassCount is the membership of one class in the dataset.
type ClassCount struct {
	Class    string `json:"class" yaml:"class"`
	Pattern  string `json:"pattern" yaml:"pattern"`
	Invert   bool   `json:"invert,omitempty" yaml:"invert,omitempty"`
	Members  int    `json:"members" yaml:"members"`
	Odorous  int    `json:"odorous" yaml:"odorous"`
	Odorless int    `json:"odorless" yaml:"odorless"`
}

// ClassesResult lists the class memberships in definition order.
type ClassesResult struct {
	Classes []ClassCount `json:"classes" yaml:"classes"`
}

// TableHeaders implements tableProvider.
func (r *ClassesResult) TableHeaders() []string {
	return []string{"CLASS", "PATTERN", "MEMBERS", "ODOROUS", "ODORLESS"}
}

// TableRows implements tableProvider.
func (r *ClassesResult) TableRows() [][]string {
	rows := make([][]string, len(r.Classes))
	for i, c := range r.Classes {
		pattern := c.Pattern
		if c.Invert {
			pattern = "NOT " + pattern
		}
		rows[i] = []string{c.Class, pattern, strconv.Itoa(c.Members), strconv.Itoa(c.Odorous), strconv.Itoa(c.Odorless)}
	}
	return rows
}

// NewClassesCmd prints how many dataset molecules fall in each class.
func NewClassesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classes [DATASET]",
		Short: "Count dataset molecules per substructure class",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			set, err := stratify.FromConfig(cliCtx.Config.Evaluation.Classes)
			if err != nil {
				return err
			}
			ds, _, err := loadDataset(cmd, args)
			if err != nil {
				return err
			}
			return PrintResult(cmd, countClasses(set, ds))
		},
	}
}

func countClasses(set stratify.ClassSet, ds *dataset.Dataset) *ClassesResult {
	classes := set.Classes()
	res := &ClassesResult{Classes: make([]ClassCount, len(classes))}
	for ci, mb := range set.Stratify(ds) {
		c := ClassCount{
			Class:   mb.Class,
			Pattern: classes[ci].Pattern,
			Invert:  classes[ci].Invert,
			Members: mb.Count,
		}
		for i, in := range mb.Members {
			if !in {
				continue
			}
			switch ds.At(i).Label {
			case dataset.LabelOdorous:
				c.Odorous++
			case dataset.LabelOdorless:
				c.Odorless++
			}
		}
		res.Classes[ci] = c
	}
	return res
}
