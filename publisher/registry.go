package publisher

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vizfeed/beacon/cfg"
	"github.com/vizfeed/beacon/marker"
	"github.com/vizfeed/beacon/telemetry"
)

// Pending operation kinds
const (
	opUpsert uint8 = 0
	opDelete uint8 = 1
)

// pendingOp is a staged mutation for one marker name. At most one pending
// operation exists per name; a later stage for the same name replaces it.
type pendingOp struct {
	kind uint8
	m    marker.Marker
}

// RegistryConfig configures the marker registry
type RegistryConfig struct {
	TopicNamespace string
	TopicName      string
	NodeID         uint64
	Interval       time.Duration           // publish interval, default 20ms
	SinkConfigs    []cfg.SinkConfiguration // from config
}

// MarkerRegistry holds a named collection of visualization markers and
// republishes the committed collection on every broadcaster tick.
//
// Mutations are staged: Insert/Delete/DeleteAll write into the pending set,
// and only ApplyChanges makes them visible to the broadcasters. Both maps
// are guarded by one mutex so a commit is atomic relative to snapshots —
// a broadcaster never observes a partially applied change set.
type MarkerRegistry struct {
	topicNamespace string
	topicName      string
	nodeID         uint64
	interval       time.Duration

	mu           sync.Mutex
	committed    map[string]marker.Marker
	pending      map[string]pendingOp
	pendingClear bool

	broadcasters []*Broadcaster
	running      atomic.Bool
	lifecycleMu  sync.Mutex
}

// NewMarkerRegistry creates a marker registry with one broadcaster per
// configured sink. Broadcasters stay idle until Start.
func NewMarkerRegistry(config RegistryConfig) (*MarkerRegistry, error) {
	if config.TopicNamespace == "" {
		return nil, fmt.Errorf("topic namespace is required")
	}
	if config.TopicName == "" {
		return nil, fmt.Errorf("topic name is required")
	}
	if config.Interval <= 0 {
		config.Interval = DefaultPublishInterval
	}

	r := &MarkerRegistry{
		topicNamespace: config.TopicNamespace,
		topicName:      config.TopicName,
		nodeID:         config.NodeID,
		interval:       config.Interval,
		committed:      make(map[string]marker.Marker),
		pending:        make(map[string]pendingOp),
		broadcasters:   make([]*Broadcaster, 0, len(config.SinkConfigs)),
	}

	for _, sinkCfg := range config.SinkConfigs {
		if err := r.AddSink(sinkCfg); err != nil {
			// Cleanup on error: close the sinks of broadcasters built so far
			for _, b := range r.broadcasters {
				if b.config.Sink != nil {
					b.config.Sink.Close()
				}
			}
			return nil, fmt.Errorf("failed to add sink %q: %w", sinkCfg.Name, err)
		}
	}

	log.Info().
		Str("topic", r.Topic()).
		Dur("interval", r.interval).
		Int("sinks", len(r.broadcasters)).
		Msg("Marker registry initialized")

	return r, nil
}

// Topic returns the dot-joined base topic (namespace.name) the registry
// broadcasts on. Per-sink topic prefixes are applied on top of this.
func (r *MarkerRegistry) Topic() string {
	return fmt.Sprintf("%s.%s", r.topicNamespace, r.topicName)
}

// Interval returns the publish interval shared by all broadcasters.
func (r *MarkerRegistry) Interval() time.Duration {
	return r.interval
}

// AddSink creates and adds a broadcaster for the given sink configuration.
// Adding sinks after Start is not supported.
func (r *MarkerRegistry) AddSink(config cfg.SinkConfiguration) error {
	r.lifecycleMu.Lock()
	defer r.lifecycleMu.Unlock()

	if r.running.Load() {
		return fmt.Errorf("registry already running")
	}

	snk, err := createSink(config)
	if err != nil {
		return fmt.Errorf("failed to create sink: %w", err)
	}

	enc, err := createEncoder(config.Format)
	if err != nil {
		snk.Close()
		return fmt.Errorf("failed to create encoder: %w", err)
	}

	filter, err := NewGlobFilter(config.FilterNames)
	if err != nil {
		snk.Close()
		return fmt.Errorf("failed to create filter: %w", err)
	}

	topic := r.Topic()
	if config.TopicPrefix != "" {
		topic = fmt.Sprintf("%s.%s", config.TopicPrefix, topic)
	}

	b, err := NewBroadcaster(BroadcasterConfig{
		Name:        config.Name,
		Source:      r,
		Sink:        snk,
		Encoder:     enc,
		Filter:      filter,
		Topic:       topic,
		Namespace:   r.topicNamespace,
		Compression: config.Compression,
		NodeID:      r.nodeID,
		Interval:    r.interval,
	})
	if err != nil {
		snk.Close()
		return fmt.Errorf("failed to create broadcaster: %w", err)
	}

	r.broadcasters = append(r.broadcasters, b)

	log.Info().
		Str("sink", config.Name).
		Str("type", config.Type).
		Str("topic", topic).
		Msg("Added marker sink")

	return nil
}

// Insert stages an upsert for name. It overwrites any prior pending
// operation for that name and never fails; the marker becomes visible to
// the broadcasters only after the next ApplyChanges.
func (r *MarkerRegistry) Insert(name string, m marker.Marker) {
	r.mu.Lock()
	r.pending[name] = pendingOp{kind: opUpsert, m: m}
	pendingLen := len(r.pending)
	r.mu.Unlock()

	telemetry.PendingOps.Set(float64(pendingLen))
	log.Debug().Str("name", name).Msg("Staged marker upsert")
}

// Delete stages a delete for name. Staging succeeds even if the name is not
// committed; the eventual apply is then a no-op for that entry.
func (r *MarkerRegistry) Delete(name string) {
	r.mu.Lock()
	r.pending[name] = pendingOp{kind: opDelete}
	pendingLen := len(r.pending)
	r.mu.Unlock()

	telemetry.PendingOps.Set(float64(pendingLen))
	log.Debug().Str("name", name).Msg("Staged marker delete")
}

// DeleteAll stages an atomic clear of the committed set. Per-name operations
// staged before the clear are discarded (the clear subsumes them); operations
// staged afterwards apply on top of the emptied set.
func (r *MarkerRegistry) DeleteAll() {
	r.mu.Lock()
	r.pending = make(map[string]pendingOp)
	r.pendingClear = true
	r.mu.Unlock()

	telemetry.PendingOps.Set(0)
	log.Debug().Msg("Staged delete of all markers")
}

// ApplyChanges merges the pending set into the committed set as one atomic
// unit and drains the pending set. It is the sole mutator of the committed
// set. Upserts of a new name commit with ActionAdd; upserts of an existing
// name replace the entry with ActionModify.
func (r *MarkerRegistry) ApplyChanges() {
	start := time.Now()

	r.mu.Lock()
	if len(r.pending) == 0 && !r.pendingClear {
		r.mu.Unlock()
		log.Debug().Msg("No changes to apply")
		return
	}

	if r.pendingClear {
		r.committed = make(map[string]marker.Marker)
		r.pendingClear = false
	}

	applied := len(r.pending)
	for name, op := range r.pending {
		switch op.kind {
		case opUpsert:
			m := op.m
			if _, exists := r.committed[name]; exists {
				m.Action = marker.ActionModify
			} else {
				m.Action = marker.ActionAdd
			}
			r.committed[name] = m
		case opDelete:
			delete(r.committed, name)
		}
	}
	r.pending = make(map[string]pendingOp)
	committedLen := len(r.committed)
	r.mu.Unlock()

	telemetry.ApplyDurationSeconds.Observe(time.Since(start).Seconds())
	telemetry.CommittedMarkers.Set(float64(committedLen))
	telemetry.PendingOps.Set(0)

	log.Debug().
		Int("applied", applied).
		Int("committed", committedLen).
		Msg("Applied marker changes")
}

// Snapshot returns a copy of the committed set, taken under the lock. The
// copy is safe to hand off without further synchronization.
func (r *MarkerRegistry) Snapshot() map[string]marker.Marker {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := make(map[string]marker.Marker, len(r.committed))
	for name, m := range r.committed {
		snap[name] = m
	}
	return snap
}

// Lookup returns the committed marker for name, if any. Staged operations
// are not visible here.
func (r *MarkerRegistry) Lookup(name string) (marker.Marker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.committed[name]
	return m, ok
}

// CommittedLen returns the number of committed markers.
func (r *MarkerRegistry) CommittedLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

// PendingLen returns the number of staged per-name operations.
func (r *MarkerRegistry) PendingLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Start starts all broadcasters
func (r *MarkerRegistry) Start() error {
	r.lifecycleMu.Lock()
	defer r.lifecycleMu.Unlock()

	if r.running.Load() {
		return fmt.Errorf("registry already running")
	}

	log.Info().Int("broadcasters", len(r.broadcasters)).Msg("Starting marker registry")

	for _, b := range r.broadcasters {
		b.Start()
	}

	r.running.Store(true)

	return nil
}

// Stop stops all broadcasters and closes their sinks
func (r *MarkerRegistry) Stop() {
	r.lifecycleMu.Lock()
	defer r.lifecycleMu.Unlock()

	if !r.running.Swap(false) {
		return // Already stopped
	}

	log.Info().Msg("Stopping marker registry")

	for _, b := range r.broadcasters {
		b.Stop()
		if err := b.config.Sink.Close(); err != nil {
			log.Warn().Err(err).Str("sink", b.config.Name).Msg("Failed to close sink")
		}
	}

	log.Info().Msg("Marker registry stopped")
}

// createSink creates a sink based on the configuration
func createSink(config cfg.SinkConfiguration) (Sink, error) {
	factoryMu.RLock()
	factory, exists := sinkFactories[config.Type]
	factoryMu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown sink type: %s", config.Type)
	}

	return factory(config)
}

// SinkFactory is a function that creates a Sink from a configuration
type SinkFactory func(cfg.SinkConfiguration) (Sink, error)

// EncoderFactory is a function that creates an Encoder
type EncoderFactory func() Encoder

var (
	sinkFactories    = make(map[string]SinkFactory)
	encoderFactories = make(map[string]EncoderFactory)
	factoryMu        sync.RWMutex
)

// RegisterSink registers a sink factory for a type
func RegisterSink(sinkType string, factory SinkFactory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	sinkFactories[sinkType] = factory
}

// RegisterEncoder registers an encoder factory for a format
func RegisterEncoder(format string, factory EncoderFactory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	encoderFactories[format] = factory
}

// createEncoder creates an encoder for the format; empty means msgpack
func createEncoder(format string) (Encoder, error) {
	if format == "" {
		format = "msgpack"
	}

	factoryMu.RLock()
	factory, exists := encoderFactories[format]
	factoryMu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	return factory(), nil
}
