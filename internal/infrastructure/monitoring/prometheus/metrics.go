package prometheus

import (
	"strconv"
	"time"
)

// RunMetrics holds the metrics recorded during one analysis run.
type RunMetrics struct {
	// Loading
	RowsTotal CounterVec // outcome=kept|missing|parse|sanitize

	// Stages
	StageDuration HistogramVec // stage

	// Chemistry
	FingerprintsTotal     CounterVec // collection
	FingerprintCacheTotal CounterVec // result=hit|miss|error
	SimilarityPairsTotal  CounterVec

	// Evaluation
	FoldsEvaluatedTotal CounterVec // model, class
	FoldsSkippedTotal   CounterVec // model, class, reason
	AUROCMedian         GaugeVec   // model, class

	// Extrapolation
	VirtualWeightTotal GaugeVec // threshold, band
}

// DefaultStageDurationBuckets spans sub-second loads up to long similarity scans.
var DefaultStageDurationBuckets = []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300, 900}

// NewRunMetrics registers all run metrics on collector.
func NewRunMetrics(collector MetricsCollector) *RunMetrics {
	m := &RunMetrics{}

	m.RowsTotal = collector.RegisterCounter("dataset_rows_total", "Dataset rows by load outcome", "outcome")
	m.StageDuration = collector.RegisterHistogram("stage_duration_seconds", "Analysis stage duration", DefaultStageDurationBuckets, "stage")

	m.FingerprintsTotal = collector.RegisterCounter("fingerprints_total", "Fingerprints computed", "collection")
	m.FingerprintCacheTotal = collector.RegisterCounter("fingerprint_cache_total", "Fingerprint cache lookups by result", "result")
	m.SimilarityPairsTotal = collector.RegisterCounter("similarity_pairs_total", "Tanimoto comparisons performed")

	m.FoldsEvaluatedTotal = collector.RegisterCounter("folds_evaluated_total", "Folds contributing an AUROC sample", "model", "class")
	m.FoldsSkippedTotal = collector.RegisterCounter("folds_skipped_total", "Folds without an AUROC sample", "model", "class", "reason")
	m.AUROCMedian = collector.RegisterGauge("auroc_median", "Median fold AUROC", "model", "class")

	m.VirtualWeightTotal = collector.RegisterGauge("virtual_weight_total", "Reweighted virtual-space count above a probability threshold", "threshold", "band")

	return m
}

// ObserveStage records the duration of stage since start.
func (m *RunMetrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// RecordRows adds n rows with the given load outcome.
func (m *RunMetrics) RecordRows(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsTotal.WithLabelValues(outcome).Add(float64(n))
}

// RecordFold counts one evaluated or skipped fold.  reason is empty for an
// evaluated fold.
func (m *RunMetrics) RecordFold(model, class, reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		m.FoldsEvaluatedTotal.WithLabelValues(model, class).Inc()
		return
	}
	m.FoldsSkippedTotal.WithLabelValues(model, class, reason).Inc()
}

// RecordFingerprints adds n fingerprints computed for collection.
func (m *RunMetrics) RecordFingerprints(collection string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.FingerprintsTotal.WithLabelValues(collection).Add(float64(n))
}

// RecordCacheLookups adds n fingerprint cache lookups with the given result.
func (m *RunMetrics) RecordCacheLookups(result string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.FingerprintCacheTotal.WithLabelValues(result).Add(float64(n))
}

// RecordPairs adds n Tanimoto comparisons.
func (m *RunMetrics) RecordPairs(n int) {
	if m == nil || n == 0 {
		return
	}
	m.SimilarityPairsTotal.WithLabelValues().Add(float64(n))
}

// SetAUROCMedian records the median fold AUROC of a (model, class) pair.
func (m *RunMetrics) SetAUROCMedian(model, class string, v float64) {
	if m == nil {
		return
	}
	m.AUROCMedian.WithLabelValues(model, class).Set(v)
}

// SetVirtualWeight records the reweighted count above threshold in band.
func (m *RunMetrics) SetVirtualWeight(threshold float64, band string, v float64) {
	if m == nil {
		return
	}
	m.VirtualWeightTotal.WithLabelValues(strconv.FormatFloat(threshold, 'g', -1, 64), band).Set(v)
}
