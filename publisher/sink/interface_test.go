package sink

import "github.com/vizfeed/beacon/publisher"

// Compile-time interface checks
var (
	_ publisher.Sink = (*NatsSink)(nil)
	_ publisher.Sink = (*KafkaSink)(nil)
	_ publisher.Sink = (*MockSink)(nil)
)
