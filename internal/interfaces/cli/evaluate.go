package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/odorscape/internal/application/evaluation"
	"github.com/turtacn/odorscape/internal/application/extrapolation"
	"github.com/turtacn/odorscape/internal/application/scoring"
	"github.com/turtacn/odorscape/internal/application/splits"
	"github.com/turtacn/odorscape/internal/application/stratify"
	"github.com/turtacn/odorscape/internal/domain/molecule"
	"github.com/turtacn/odorscape/internal/infrastructure/database/redis"
	"github.com/turtacn/odorscape/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/odorscape/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// evaluate
// ─────────────────────────────────────────────────────────────────────────────

// EvaluationReport is the per (model, class) AUROC summary of one run.
type EvaluationReport struct {
	RunID   string              `json:"run_id" yaml:"run_id"`
	Folds   int                 `json:"folds" yaml:"folds"`
	Results []evaluation.Result `json:"results" yaml:"results"`
}

// TableHeaders implements tableProvider.
func (r *EvaluationReport) TableHeaders() []string {
	return []string{"MODEL", "CLASS", "AUROC", "LOWER", "UPPER", "N", "SKIPPED"}
}

// TableRows implements tableProvider.
func (r *EvaluationReport) TableRows() [][]string {
	rows := make([][]string, len(r.Results))
	for i, res := range r.Results {
		est, lo, hi := "-", "-", "-"
		if res.Valid {
			est, lo, hi = formatFloat(res.Estimate), formatFloat(res.Lower), formatFloat(res.Upper)
		}
		rows[i] = []string{res.Model, res.Class, est, lo, hi, strconv.Itoa(res.N), strconv.Itoa(res.Skipped)}
	}
	return rows
}

// NewEvaluateCmd runs the per-class AUROC evaluation of the rule model and
// every configured score table.
func NewEvaluateCmd() *cobra.Command {
	var models []string

	cmd := &cobra.Command{
		Use:   "evaluate [DATASET]",
		Short: "Evaluate models per substructure class across the fold ensemble",
		Long: "Score every fold with the rule model and each score table under\n" +
			"data.predictions, compute the AUROC of each (model, class) pair per fold and\n" +
			"report the median with rank-rule bounds.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config

			classes, err := stratify.FromConfig(cfg.Evaluation.Classes)
			if err != nil {
				return err
			}
			ds, _, err := loadDataset(cmd, args)
			if err != nil {
				return err
			}
			generated, err := splits.Generate(cfg.Splits.Folds, ds.Len(), cfg.Splits.TestFraction)
			if err != nil {
				return err
			}

			selected, err := selectModels(models, cfg.Data.Predictions)
			if err != nil {
				return err
			}
			var ms []evaluation.Model
			for _, name := range selected {
				if name == scoring.RuleOfThreeName {
					ms = append(ms, evaluation.Model{Scorer: scoring.RuleOfThree{}, Folds: generated, HeldOut: splits.FlagTest})
					continue
				}
				p, err := loadPredictions(cmd, name)
				if err != nil {
					return err
				}
				folds := splits.FromScoreTable(ds.IDs(), p.Table())
				if err := splits.CheckCount(cfg.Splits.Folds, folds); err != nil {
					return errors.Wrap(err, errors.CodeFoldCountMismatch, "score table fold count differs from splits.folds").WithDetail(name)
				}
				ms = append(ms, evaluation.Model{Scorer: p, Folds: folds, HeldOut: splits.FlagTrain})
			}

			ev := evaluation.NewEvaluator(evaluation.OptionsFromConfig(cfg.Evaluation), classes, cliCtx.Logger, cliCtx.Metrics)
			results, err := ev.Evaluate(cmd.Context(), ds, ms)
			if err != nil {
				return err
			}
			return PrintResult(cmd, &EvaluationReport{RunID: cliCtx.RunID, Folds: generated.Count(), Results: results})
		},
	}
	cmd.Flags().StringSliceVar(&models, "model", nil, "models to evaluate (default: rule_of_three and every data.predictions entry)")
	return cmd
}

// selectModels returns the requested model names, or the rule model followed
// by every configured score table in name order.
func selectModels(requested []string, predictions map[string]string) ([]string, error) {
	if len(requested) > 0 {
		for _, name := range requested {
			if name == scoring.RuleOfThreeName {
				continue
			}
			if _, ok := predictions[name]; !ok {
				return nil, errors.NotFound("unknown model").WithDetail(name)
			}
		}
		return requested, nil
	}
	names := make([]string, 0, len(predictions))
	for name := range predictions {
		names = append(names, name)
	}
	sort.Strings(names)
	return append([]string{scoring.RuleOfThreeName}, names...), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// extrapolate
// ─────────────────────────────────────────────────────────────────────────────

// ExtrapolationReport is the reweighted virtual-space tally of one run.
type ExtrapolationReport struct {
	extrapolation.Result `yaml:",inline"`

	RunID   string                   `json:"run_id" yaml:"run_id"`
	Dropped int                      `json:"dropped" yaml:"dropped"`
	Rows    []extrapolation.CountRow `json:"rows" yaml:"rows"`
}

// TableHeaders implements tableProvider.
func (r *ExtrapolationReport) TableHeaders() []string {
	return []string{"THRESHOLD", "BAND", "WEIGHT"}
}

// TableRows implements tableProvider.
func (r *ExtrapolationReport) TableRows() [][]string {
	rows := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = []string{strconv.FormatFloat(row.Threshold, 'g', -1, 64), row.Band, strconv.FormatFloat(row.Weight, 'f', 1, 64)}
	}
	return rows
}

// String implements fmt.Stringer.
func (r *ExtrapolationReport) String() string {
	var sb strings.Builder
	reference := "training set"
	if r.Self {
		reference = "itself"
	}
	fmt.Fprintf(&sb, "Virtual molecules: %d (dropped %d), compared against %s (%d)\n", r.Virtual, r.Dropped, reference, r.Reference)
	fmt.Fprintf(&sb, "Estimated virtual-space size: %.1f\n\n", r.Counts.Total)
	sb.WriteString(FormatTable(r.TableHeaders(), r.TableRows()))
	return sb.String()
}

// NewExtrapolateCmd reweights the virtual sample and tallies the odorous
// share of the virtual space per similarity band.
func NewExtrapolateCmd() *cobra.Command {
	var self bool

	cmd := &cobra.Command{
		Use:   "extrapolate [DATASET]",
		Short: "Extrapolate odor prevalence to the virtual chemical space",
		Long: "Compute each virtual molecule's maximum similarity to the cleaned dataset (or,\n" +
			"with --self, to the rest of the virtual sample), weight it by the sampling ratio\n" +
			"of its heavy-atom count and sum the weights above each probability threshold\n" +
			"per similarity band.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config
			if cfg.Data.Virtual.Path == "" {
				return errors.InvalidParam("data.virtual.path is required")
			}
			if cfg.Extrapolation.SamplingTable == "" {
				return errors.InvalidParam("extrapolation.sampling_table is required")
			}

			table, err := extrapolation.LoadSamplingTable(cmd.Context(), cliCtx.Source, cfg.Extrapolation.SamplingTable)
			if err != nil {
				return err
			}
			opts := extrapolation.OptionsFromConfig(cfg)
			if cache := openFingerprintCache(cliCtx); cache != nil {
				defer cache.close()
				opts.Cache = cache.store
			}
			x, err := extrapolation.NewExtrapolator(opts, table, cliCtx.Logger, cliCtx.Metrics)
			if err != nil {
				return err
			}
			sample, err := extrapolation.LoadVirtualSample(cmd.Context(), cliCtx.Source, cfg.Data.Virtual)
			if err != nil {
				return err
			}

			var reference []*molecule.Molecule
			if !self {
				ds, _, err := loadDataset(cmd, args)
				if err != nil {
					return err
				}
				reference = make([]*molecule.Molecule, ds.Len())
				for i, r := range ds.Records() {
					reference[i] = r.Molecule
				}
			}

			res, err := x.Run(cmd.Context(), sample, reference)
			if err != nil {
				return err
			}
			return PrintResult(cmd, &ExtrapolationReport{
				RunID:   cliCtx.RunID,
				Result:  *res,
				Dropped: sample.Dropped,
				Rows:    res.Counts.Rows(),
			})
		},
	}
	cmd.Flags().BoolVar(&self, "self", false, "compare the virtual sample against itself instead of the dataset")
	return cmd
}

type fingerprintCache struct {
	store extrapolation.FingerprintStore
	close func()
}

// openFingerprintCache connects the configured redis cache.  A cache that
// cannot be reached is logged and skipped.
func openFingerprintCache(cliCtx *CLIContext) *fingerprintCache {
	rc := cliCtx.Config.Cache.Redis
	if !rc.Enabled {
		return nil
	}
	client, err := redis.NewClient(&redis.RedisConfig{
		Mode:          rc.Mode,
		Addr:          rc.Addr,
		MasterName:    rc.MasterName,
		SentinelAddrs: rc.SentinelAddrs,
		ClusterAddrs:  rc.ClusterAddrs,
		Username:      rc.Username,
		Password:      rc.Password,
		DB:            rc.DB,
		TLSEnabled:    rc.TLSEnabled,
		TLSCAFile:     rc.TLSCAFile,
	}, cliCtx.Logger)
	if err != nil {
		cliCtx.Logger.Warn("fingerprint cache disabled", logging.Err(err))
		return nil
	}
	store := redis.NewFingerprintCache(client, cliCtx.Logger, redis.WithPrefix(rc.KeyPrefix), redis.WithTTL(rc.TTL))
	return &fingerprintCache{store: store, close: func() { client.Close() }}
}

// ─────────────────────────────────────────────────────────────────────────────
// version
// ─────────────────────────────────────────────────────────────────────────────

// BuildInfo holds version information injected at build time.
type BuildInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
}

// String implements fmt.Stringer.
func (b BuildInfo) String() string {
	return fmt.Sprintf("odorscape %s (commit: %s, built: %s)\n", b.Version, b.Commit, b.BuildDate)
}

// NewVersionCmd prints build information.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return PrintResult(cmd, BuildInfo{Version: Version, Commit: GitCommit, BuildDate: BuildDate})
		},
	}
}
