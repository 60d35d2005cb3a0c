package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/odorscape/internal/application/loading"
	"github.com/turtacn/odorscape/internal/domain/dataset"
	"github.com/turtacn/odorscape/internal/domain/molecule"
	"github.com/turtacn/odorscape/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// validate
// ─────────────────────────────────────────────────────────────────────────────

// ValidationResult lists one verdict per input structure.
type ValidationResult struct {
	Verdicts []molecule.Verdict `json:"verdicts" yaml:"verdicts"`
	Valid    int                `json:"valid" yaml:"valid"`
	Invalid  int                `json:"invalid" yaml:"invalid"`
}

// TableHeaders implements tableProvider.
func (r *ValidationResult) TableHeaders() []string {
	return []string{"SMILES", "VALID", "CODE", "REASON"}
}

// TableRows implements tableProvider.
func (r *ValidationResult) TableRows() [][]string {
	rows := make([][]string, len(r.Verdicts))
	for i, v := range r.Verdicts {
		rows[i] = []string{v.Input, strconv.FormatBool(v.Valid), v.Code, v.Reason}
	}
	return rows
}

// NewValidateCmd checks structure strings without loading a dataset.
func NewValidateCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate SMILES...",
		Short: "Check whether structures parse and sanitize",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := &ValidationResult{Verdicts: make([]molecule.Verdict, len(args))}
			for i, s := range args {
				v := molecule.ValidateSMILES(s)
				res.Verdicts[i] = v
				if v.Valid {
					res.Valid++
				} else {
					res.Invalid++
				}
			}
			if err := PrintResult(cmd, res); err != nil {
				return err
			}
			if strict && res.Invalid > 0 {
				return errors.Validation("invalid structures").WithDetailf("%d of %d", res.Invalid, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when any structure is invalid")
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// load
// ─────────────────────────────────────────────────────────────────────────────

// LoadResult wraps the loader report for printing.
type LoadResult struct {
	loading.Report `yaml:",inline"`
}

// String implements fmt.Stringer.
func (r *LoadResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Source:   %s\n", r.Source)
	fmt.Fprintf(&sb, "Rows:     %d\n", r.Rows)
	fmt.Fprintf(&sb, "Kept:     %d\n", r.Kept)
	fmt.Fprintf(&sb, "Dropped:  %d (missing %d, parse %d, sanitize %d)\n", r.DroppedTotal(),
		r.Dropped[loading.DropMissing], r.Dropped[loading.DropParse], r.Dropped[loading.DropSanitize])
	labels := make([]string, 0, len(r.Labels))
	for l := range r.Labels {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		fmt.Fprintf(&sb, "Label %-9s %d\n", l+":", r.Labels[l])
	}
	fmt.Fprintf(&sb, "MW:       %.2f / %.2f / %.2f (min/mean/max)\n", r.MolecularWeight.Min, r.MolecularWeight.Mean, r.MolecularWeight.Max)
	fmt.Fprintf(&sb, "logP:     %.2f / %.2f / %.2f\n", r.LogP.Min, r.LogP.Mean, r.LogP.Max)
	fmt.Fprintf(&sb, "HAC:      %.0f / %.1f / %.0f\n", r.HeavyAtoms.Min, r.HeavyAtoms.Mean, r.HeavyAtoms.Max)
	return sb.String()
}

// NewLoadCmd loads and cleans the labelled dataset and prints the report.
func NewLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load [DATASET]",
		Short: "Load and clean the labelled dataset",
		Long:  "Load the labelled dataset (default data.dataset), drop rows whose structure is\nmissing or does not sanitize, and report the counts.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, report, err := loadDataset(cmd, args)
			if err != nil {
				return err
			}
			return PrintResult(cmd, &LoadResult{Report: *report})
		},
	}
}

// loadDataset loads args[0] or data.dataset.
func loadDataset(cmd *cobra.Command, args []string) (*dataset.Dataset, *loading.Report, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil, nil, err
	}
	path := cliCtx.Config.Data.Dataset
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return nil, nil, errors.InvalidParam("no dataset given; pass a path or set data.dataset")
	}
	loader := loading.NewLoader(cliCtx.Source, loading.OptionsFromConfig(cliCtx.Config.Data), cliCtx.Logger, cliCtx.Metrics)
	return loader.Load(cmd.Context(), path)
}
