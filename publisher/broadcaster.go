package publisher

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
	"github.com/vizfeed/beacon/encoding"
	"github.com/vizfeed/beacon/marker"
	"github.com/vizfeed/beacon/telemetry"
)

// Snapshotter provides the committed marker set for publishing
type Snapshotter interface {
	Snapshot() map[string]marker.Marker
}

// DefaultPublishInterval is the tick interval used when none is configured.
const DefaultPublishInterval = 20 * time.Millisecond

// BroadcasterConfig configures a periodic marker broadcaster
type BroadcasterConfig struct {
	Name        string        // Sink name (for logs and metrics)
	Source      Snapshotter   // Committed set to snapshot each tick
	Sink        Sink          // Destination sink
	Encoder     Encoder       // Batch encoder
	Filter      Filter        // Marker name filter
	Topic       string        // Fully built topic
	Namespace   string        // Topic namespace, stamped into batches
	Compression string        // Payload compression scheme ("", "none", "s2")
	NodeID      uint64        // Originating node, stamped into batches
	Interval    time.Duration // Tick interval
}

// Broadcaster republishes the full committed marker set to one sink on a
// fixed tick, independent of caller activity. Delivery is best-effort: a
// failed tick is dropped and the next tick re-attempts with the then-current
// committed set. There is deliberately no retry or backoff.
type Broadcaster struct {
	config      BroadcasterConfig
	seq         atomic.Uint64
	stopCh      chan struct{} // Stop signal
	doneCh      chan struct{} // Done signal
	running     atomic.Bool
	lifecycleMu sync.Mutex // Protects Start/Stop lifecycle operations
}

// NewBroadcaster creates a broadcaster; it does not start publishing.
func NewBroadcaster(config BroadcasterConfig) (*Broadcaster, error) {
	if config.Name == "" {
		return nil, fmt.Errorf("broadcaster name is required")
	}
	if config.Source == nil {
		return nil, fmt.Errorf("snapshot source is required")
	}
	if config.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if config.Encoder == nil {
		return nil, fmt.Errorf("encoder is required")
	}
	if config.Filter == nil {
		return nil, fmt.Errorf("filter is required")
	}
	if config.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if config.Interval <= 0 {
		config.Interval = DefaultPublishInterval
	}

	b := &Broadcaster{
		config: config,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	return b, nil
}

// Start starts the broadcaster goroutine
func (b *Broadcaster) Start() {
	b.lifecycleMu.Lock()
	defer b.lifecycleMu.Unlock()

	if b.running.Load() {
		return // Already running
	}

	b.running.Store(true)
	b.stopCh = make(chan struct{})
	b.doneCh = make(chan struct{})

	log.Info().
		Str("broadcaster", b.config.Name).
		Str("topic", b.config.Topic).
		Dur("interval", b.config.Interval).
		Msg("Starting marker broadcaster")

	go b.publishLoop()
}

// Stop stops the broadcaster gracefully. The stop signal is observed at the
// next tick boundary; the registry lock is never held across shutdown.
func (b *Broadcaster) Stop() {
	b.lifecycleMu.Lock()
	defer b.lifecycleMu.Unlock()

	if !b.running.Load() {
		return // Not running
	}

	close(b.stopCh)
	<-b.doneCh // Wait for goroutine to finish
	b.running.Store(false)

	log.Info().Str("broadcaster", b.config.Name).Msg("Marker broadcaster stopped")
}

// publishLoop is the periodic publish loop. It always proceeds at its own
// cadence and republishes the full committed set even when unchanged, so
// lossy or late-joining subscribers converge on the current state.
func (b *Broadcaster) publishLoop() {
	defer close(b.doneCh)

	ticker := time.NewTicker(b.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopCh:
			return
		case <-ticker.C:
			b.publishTick()
		}
	}
}

// publishTick snapshots, encodes and publishes one batch. Any failure drops
// the tick; the loop proceeds regardless of the outcome.
func (b *Broadcaster) publishTick() {
	snap := b.config.Source.Snapshot()

	names := make([]string, 0, len(snap))
	for name := range snap {
		if b.config.Filter.Match(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	batch := MarkerBatch{
		Namespace:   b.config.Namespace,
		Topic:       b.config.Topic,
		Seq:         b.seq.Add(1),
		NodeID:      b.config.NodeID,
		PublishedAt: time.Now().UnixMilli(),
		Markers:     make([]NamedMarker, 0, len(names)),
	}
	for _, name := range names {
		batch.Markers = append(batch.Markers, NamedMarker{Name: name, Marker: snap[name]})
	}

	// Content-hash key over the marker content only — the envelope's seq and
	// timestamp are excluded so identical snapshots produce identical keys
	// and subscribers can skip redundant redraws.
	content, err := encoding.Marshal(batch.Markers)
	if err != nil {
		telemetry.PublishFailuresTotal.With(b.config.Name, "encode").Inc()
		log.Warn().
			Err(err).
			Str("broadcaster", b.config.Name).
			Uint64("seq", batch.Seq).
			Msg("Failed to encode marker content, dropping tick")
		return
	}
	key := fmt.Sprintf("%016x", xxhash.Sum64(content))

	data, err := b.config.Encoder.Encode(batch)
	if err != nil {
		telemetry.PublishFailuresTotal.With(b.config.Name, "encode").Inc()
		log.Warn().
			Err(err).
			Str("broadcaster", b.config.Name).
			Uint64("seq", batch.Seq).
			Msg("Failed to encode marker batch, dropping tick")
		return
	}

	data, err = encoding.Compress(b.config.Compression, data)
	if err != nil {
		telemetry.PublishFailuresTotal.With(b.config.Name, "compress").Inc()
		log.Warn().
			Err(err).
			Str("broadcaster", b.config.Name).
			Uint64("seq", batch.Seq).
			Msg("Failed to compress marker batch, dropping tick")
		return
	}

	if err := b.config.Sink.Publish(b.config.Topic, key, data); err != nil {
		telemetry.PublishFailuresTotal.With(b.config.Name, "publish").Inc()
		log.Warn().
			Err(err).
			Str("broadcaster", b.config.Name).
			Str("topic", b.config.Topic).
			Uint64("seq", batch.Seq).
			Msg("Failed to publish marker batch, dropping tick")
		return
	}

	telemetry.PublishedBatchesTotal.With(b.config.Name).Inc()
	telemetry.BatchMarkers.With(b.config.Name).Observe(float64(len(batch.Markers)))
}
