package loading

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/odorscape/internal/application/scoring"
	"github.com/turtacn/odorscape/internal/config"
	"github.com/turtacn/odorscape/internal/domain/dataset"
	"github.com/turtacn/odorscape/internal/domain/prediction"
	"github.com/turtacn/odorscape/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/odorscape/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/odorscape/internal/infrastructure/storage"
	"github.com/turtacn/odorscape/internal/infrastructure/tabular"
	mocks "github.com/turtacn/odorscape/internal/testutil"
	"github.com/turtacn/odorscape/pkg/errors"
)

const sampleCSV = `smiles,label,mw,bp,logp,dataset
CCO,odorous,46.07,78.4,-0.31,train
c1ccccc1,odorous,,80.1,,train
,odorless,18.0,,,train
C(C,odorless,,,,train
c1cccc1,odorless,,,,test
C(C)(C)(C)(C)C,odorous,,,,test
O,odorless,18.02,100,,test
CC(=O)O,maybe,60.05,,,test
`

func defaultOptions() Options {
	cfg := config.NewDefaultConfig()
	return OptionsFromConfig(cfg.Data)
}

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoader_Load(t *testing.T) {
	path := writeCSV(t, sampleCSV)
	loader := NewLoader(storage.NewSource(nil, nil), defaultOptions(), logging.NewNopLogger(), nil)

	ds, report, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, report.Source)
	assert.Equal(t, 8, report.Rows)
	assert.Equal(t, 4, report.Kept)
	assert.Equal(t, 1, report.Dropped[DropMissing])
	assert.Equal(t, 1, report.Dropped[DropParse])
	assert.Equal(t, 2, report.Dropped[DropSanitize])
	assert.Equal(t, 4, report.DroppedTotal())
	assert.Equal(t, report.Rows, report.Kept+report.DroppedTotal())
	assert.Equal(t, map[string]int{"odorous": 2, "odorless": 1, "unknown": 1}, report.Labels)

	assert.Equal(t, []string{"CCO", "c1ccccc1", "O", "CC(=O)O"}, ds.IDs())

	ethanol, ok := ds.Get("CCO")
	require.True(t, ok)
	require.NotNil(t, ethanol.Molecule)
	assert.Equal(t, dataset.LabelOdorous, ethanol.Label)
	assert.Equal(t, 46.07, ethanol.MW)
	assert.Equal(t, 78.4, ethanol.BP)
	assert.Equal(t, -0.31, ethanol.LogPColumn)
	assert.Equal(t, "train", ethanol.DatasetTag)
	assert.InDelta(t, -0.0014, ethanol.LogP, 1e-4)
	assert.Equal(t, 0, ethanol.Row)

	benzene, _ := ds.Get("c1ccccc1")
	assert.True(t, math.IsNaN(benzene.MW))
	assert.InDelta(t, 1.6866, benzene.LogP, 1e-4)

	acid, _ := ds.Get("CC(=O)O")
	assert.Equal(t, dataset.LabelUnknown, acid.Label)
	assert.Equal(t, 7, acid.Row)

	assert.InDelta(t, 18.015, report.MolecularWeight.Min, 1e-3)
	assert.InDelta(t, 78.114, report.MolecularWeight.Max, 1e-3)
	assert.Equal(t, 1.0, report.HeavyAtoms.Min)
	assert.Equal(t, 6.0, report.HeavyAtoms.Max)
}

func TestLoader_DuplicateIdentifierAborts(t *testing.T) {
	body := "smiles,label\nCCO,odorous\nC(C,odorless\nCCO,odorless\n"
	loader := NewLoader(storage.NewSource(nil, nil), defaultOptions(), nil, nil)

	ds, report, err := loader.Load(context.Background(), writeCSV(t, body))
	require.Error(t, err)
	assert.Nil(t, ds)
	assert.Nil(t, report)
	assert.True(t, errors.IsCode(err, errors.CodeDuplicateIdentifier))
	assert.Contains(t, err.Error(), "rows 0 and 2")
}

func TestLoader_KeepsRawIdentifierCell(t *testing.T) {
	body := "smiles,label\nCCO ethanol,odorous\nCCO propanal-typo,odorless\n  c1ccccc1  ,odorous\n"
	loader := NewLoader(storage.NewSource(nil, nil), defaultOptions(), nil, nil)

	ds, report, err := loader.Load(context.Background(), writeCSV(t, body))
	require.NoError(t, err)
	assert.Equal(t, 3, report.Kept)
	assert.Equal(t, []string{"CCO ethanol", "CCO propanal-typo", "c1ccccc1"}, ds.IDs())

	r, ok := ds.Get("CCO ethanol")
	require.True(t, ok)
	assert.Equal(t, "CCO", r.Molecule.SMILES)
	assert.Equal(t, 3, r.HeavyAtoms())

	b := prediction.NewBuilder("external", []string{"f0"})
	for i, id := range []string{"CCO ethanol", "CCO propanal-typo", "c1ccccc1"} {
		require.NoError(t, b.Add(id))
		b.Set(id, 0, float64(i)/10)
	}
	scores, err := scoring.NewPrecomputed(b.Build()).Score(0, nil, ds.Records())
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.1, 0.2}, scores)
}

func TestLoader_MissingColumn(t *testing.T) {
	loader := NewLoader(storage.NewSource(nil, nil), defaultOptions(), nil, nil)

	_, _, err := loader.Load(context.Background(), writeCSV(t, "structure,label\nCCO,odorous\n"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeMissingColumn))

	_, _, err = loader.Load(context.Background(), writeCSV(t, "smiles\nCCO\n"))
	assert.True(t, errors.IsCode(err, errors.CodeMissingColumn))
}

func TestLoader_MissingFile(t *testing.T) {
	loader := NewLoader(storage.NewSource(nil, nil), defaultOptions(), nil, nil)
	_, _, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestLoader_FromTable_CustomColumns(t *testing.T) {
	opts := Options{
		Columns:    config.ColumnConfig{SMILES: "SMILES", Label: "Odor"},
		Vocabulary: dataset.NewVocabulary([]string{"yes"}, []string{"no"}),
	}
	tbl, err := tabular.Read(strings.NewReader("SMILES,Odor\nCCO,yes\nO,no\n"))
	require.NoError(t, err)

	ds, report, err := NewLoader(nil, opts, nil, nil).FromTable(tbl)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, 0, report.DroppedTotal())
	assert.Equal(t, dataset.LabelOdorless, ds.At(1).Label)
	assert.Equal(t, "", ds.At(0).DatasetTag)
}

func TestLoader_RecordsMetrics(t *testing.T) {
	collector, err := prom.NewMetricsCollector(prom.CollectorConfig{Namespace: "test"}, nil)
	require.NoError(t, err)
	metrics := prom.NewRunMetrics(collector)

	loader := NewLoader(storage.NewSource(nil, nil), defaultOptions(), nil, metrics)
	_, _, err = loader.Load(context.Background(), writeCSV(t, sampleCSV))
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(collector.Gatherer(), "test_dataset_rows_total")
	require.NoError(t, err)
	// kept, missing, parse, sanitize
	assert.Equal(t, 4, count)

	count, err = testutil.GatherAndCount(collector.Gatherer(), "test_stage_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLoader_LogsDroppedRows(t *testing.T) {
	logger := mocks.NewMockLogger()
	loader := NewLoader(storage.NewSource(nil, nil), defaultOptions(), logger, nil)

	_, _, err := loader.Load(context.Background(), writeCSV(t, sampleCSV))
	require.NoError(t, err)

	var reasons []string
	for _, m := range logger.GetMessages() {
		if m.Message != "dropping row" {
			continue
		}
		assert.Equal(t, "debug", m.Level)
		assert.Equal(t, "loader", m.Logger)
		for _, f := range m.Fields {
			if f.Key == "reason" {
				reasons = append(reasons, f.Value.(string))
			}
		}
	}
	assert.ElementsMatch(t, []string{string(DropParse), string(DropSanitize), string(DropSanitize)}, reasons)
}
