package telemetry

// Histogram bucket definitions
var (
	// ApplyBuckets for commit merges (pure in-memory map work)
	ApplyBuckets = []float64{0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01}

	// BatchSizeBuckets for markers per published batch
	BatchSizeBuckets = []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500}
)

// Registry metrics
var (
	// CommittedMarkers tracks the current size of the committed set
	CommittedMarkers Gauge = NoopStat{}

	// PendingOps tracks staged operations awaiting ApplyChanges
	PendingOps Gauge = NoopStat{}

	// ApplyDurationSeconds measures ApplyChanges commit latency
	ApplyDurationSeconds Histogram = NoopStat{}
)

// Broadcast metrics
var (
	// PublishedBatchesTotal counts batches delivered per sink
	PublishedBatchesTotal CounterVec = noopCounterVec{}

	// PublishFailuresTotal counts dropped ticks per sink by stage
	// (encode, compress, publish)
	PublishFailuresTotal CounterVec = noopCounterVec{}

	// BatchMarkers measures markers per published batch per sink
	BatchMarkers HistogramVec = noopHistogramVec{}
)

// InitMetrics creates the real metric instances. Must run after
// InitializeTelemetry; otherwise every metric stays a no-op.
func InitMetrics() {
	CommittedMarkers = NewGauge(
		"committed_markers",
		"Current number of committed markers",
	)
	PendingOps = NewGauge(
		"pending_ops",
		"Staged marker operations awaiting apply",
	)
	ApplyDurationSeconds = NewHistogramWithBuckets(
		"apply_duration_seconds",
		"ApplyChanges commit latency in seconds",
		ApplyBuckets,
	)

	PublishedBatchesTotal = NewCounterVec(
		"published_batches_total",
		"Marker batches delivered per sink",
		[]string{"sink"},
	)
	PublishFailuresTotal = NewCounterVec(
		"publish_failures_total",
		"Dropped broadcast ticks per sink by stage",
		[]string{"sink", "stage"},
	)
	BatchMarkers = NewHistogramVec(
		"batch_markers",
		"Markers per published batch",
		[]string{"sink"},
		BatchSizeBuckets,
	)
}
