// Package publisher implements the marker registry and its periodic
// broadcast pipeline.
//
// # Architecture
//
// The package consists of three main components:
//
// 1. MarkerRegistry: staged-mutation store for named markers
// 2. Broadcaster: per-sink periodic snapshot publisher
// 3. Interfaces: Sink, Encoder, and Filter abstractions
//
// # MarkerRegistry
//
// Callers stage mutations and commit them explicitly:
//
//	reg, err := NewMarkerRegistry(RegistryConfig{
//		TopicNamespace: "robot1",
//		TopicName:      "markers",
//		SinkConfigs:    cfg.Config.Sinks,
//	})
//	if err != nil {
//		return err
//	}
//
//	reg.Insert("goal", m)
//	reg.Delete("old_goal")
//	reg.ApplyChanges() // both become visible to broadcasters atomically
//
//	reg.Start()
//	defer reg.Stop()
//
// Staged operations are invisible to the broadcast loop until ApplyChanges,
// which merges the whole pending set under one lock acquisition. A snapshot
// therefore always reflects a whole number of commits.
//
// # Broadcasters
//
// One broadcaster runs per configured sink. Each wakes on a fixed tick
// (20 ms by default), copies the committed set under the lock, and publishes
// the full batch outside the lock. Publishing is best-effort: a failed tick
// is logged, counted, and dropped — the next tick carries the current state
// anyway, so subscribers converge without retries.
//
// # Thread Safety
//
// All registry operations are safe for concurrent use from any goroutine,
// before, during, and after the broadcasters' lifetime. One mutex guards
// both the committed and pending maps; no I/O happens under it.
package publisher
