package publisher

import "github.com/vizfeed/beacon/marker"

// Sink represents a destination for marker batches (e.g., Kafka, NATS)
type Sink interface {
	// Publish sends one encoded batch to the sink
	Publish(topic string, key string, value []byte) error
	// Close releases any resources held by the sink
	Close() error
}

// Encoder converts marker batches to sink-specific wire formats
type Encoder interface {
	Encode(batch MarkerBatch) ([]byte, error)
}

// Filter decides whether a named marker is included in a sink's batches
type Filter interface {
	// Match returns true if the marker should be published
	Match(name string) bool
}

// NamedMarker pairs a registry name with its payload on the wire
type NamedMarker struct {
	Name   string        `msgpack:"name" json:"name"`
	Marker marker.Marker `msgpack:"marker" json:"marker"`
}

// MarkerBatch is one full snapshot of the committed set, published per tick.
// Markers are sorted by name so identical snapshots carry identical content
// keys; the key hashes the marker content only, not the envelope fields.
type MarkerBatch struct {
	Namespace   string        `msgpack:"ns" json:"namespace"`
	Topic       string        `msgpack:"topic" json:"topic"`
	Seq         uint64        `msgpack:"seq" json:"seq"`
	NodeID      uint64        `msgpack:"node" json:"node_id"`
	PublishedAt int64         `msgpack:"ts" json:"published_at_ms"` // unix ms
	Markers     []NamedMarker `msgpack:"markers" json:"markers"`
}
