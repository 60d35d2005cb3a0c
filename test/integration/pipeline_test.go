//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/odorscape/internal/application/evaluation"
	"github.com/turtacn/odorscape/internal/application/extrapolation"
)

const datasetCSV = `smiles,label
CCO,odorous
CCCCO,odorous
CC(C)=O,odorous
c1ccccc1,odorous
CCOC(C)=O,odorous
CC=O,odorous
CC,odorless
CCC,odorless
C,odorless
CCCCCCCCCCCCCCCCCCCC,odorless
CCCCCCCCCCCCCCCCCCCCCC,odorless
OC(=O)CCCCCCCCCCCCCCCCC,odorless
`

const virtualCSV = `smiles,hac,probability
CCO,3,0.8
CCCO,4,0.6
c1ccccc1,6,0.95
CCCC,4,0.3
`

const samplingCSV = `hac,total_count,sampled_count
3,100,10
4,200,10
6,50,10
`

type pipeline struct {
	config string
	redis  string
}

func setup(t *testing.T) *pipeline {
	t.Helper()
	endpoint, client := startMinIO(t)
	redisAddr := startRedis(t)

	dataset := putObject(t, client, "dataset.csv", datasetCSV)
	virtual := putObject(t, client, "virtual.csv", virtualCSV)
	sampling := putObject(t, client, "sampling.csv", samplingCSV)

	cfg := fmt.Sprintf(`log:
  level: error
data:
  dataset: %s
  virtual:
    path: %s
splits:
  folds: 10
extrapolation:
  sampling_table: %s
storage:
  minio:
    endpoint: %s
    access_key: %s
    secret_key: %s
cache:
  redis:
    enabled: true
    addr: %s
`, dataset, virtual, sampling, endpoint, minioUser, minioPassword, redisAddr)
	return &pipeline{config: writeConfig(t, cfg), redis: redisAddr}
}

func TestPipeline_ObjectStorageSources(t *testing.T) {
	p := setup(t)

	out, err := runCLI(t, p.config, "-o", "json", "load")
	require.NoError(t, err)
	var report struct {
		Source string `json:"source"`
		Kept   int    `json:"kept"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 12, report.Kept)
	assert.Contains(t, report.Source, "s3://")

	out, err = runCLI(t, p.config, "-o", "json", "evaluate", "--model", "rule_of_three")
	require.NoError(t, err)
	var eval struct {
		Folds   int                 `json:"folds"`
		Results []evaluation.Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &eval))
	assert.Equal(t, 10, eval.Folds)
	require.Len(t, eval.Results, 11)
	for _, r := range eval.Results {
		assert.Equal(t, 10, r.N+r.Skipped, r.Class)
	}
}

func TestPipeline_ExtrapolationWarmsCache(t *testing.T) {
	p := setup(t)

	first, err := runCLI(t, p.config, "-o", "json", "extrapolate")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: p.redis})
	t.Cleanup(func() { rdb.Close() })
	keys, err := rdb.Keys(context.Background(), "odorscape:fp:*").Result()
	require.NoError(t, err)
	// four virtual and twelve dataset molecules, two of them shared
	assert.Len(t, keys, 14)

	second, err := runCLI(t, p.config, "-o", "json", "extrapolate")
	require.NoError(t, err)

	var a, b struct {
		Counts extrapolation.Counts `json:"counts"`
	}
	require.NoError(t, json.Unmarshal([]byte(first), &a))
	require.NoError(t, json.Unmarshal([]byte(second), &b))
	assert.Equal(t, a.Counts, b.Counts)
	assert.InDelta(t, 10+20+5+20, a.Counts.Total, 1e-9)
}
