package cfg

import (
	"flag"
	"fmt"
	"hash/fnv"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/denisbrodbeck/machineid"
	"github.com/rs/zerolog/log"
)

// SinkConfiguration describes one broadcast destination. One broadcaster
// goroutine is created per sink.
type SinkConfiguration struct {
	Name        string   `toml:"name"`
	Type        string   `toml:"type"`        // "nats", "kafka", "mock"
	Format      string   `toml:"format"`      // "msgpack" (default) or "json"
	Compression string   `toml:"compression"` // "none" (default) or "s2"
	NatsURL     string   `toml:"nats_url"`
	Brokers     []string `toml:"brokers"`
	TopicPrefix string   `toml:"topic_prefix"`
	FilterNames []string `toml:"filter_names"` // glob patterns, empty = all markers
}

// LoggingConfiguration controls logging behavior
type LoggingConfiguration struct {
	Verbose bool   `toml:"verbose"`
	Format  string `toml:"format"` // "console" or "json"
}

// PrometheusConfiguration for metrics
type PrometheusConfiguration struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
	Port    int    `toml:"port"`
}

// AdminConfiguration for the debug/admin HTTP API. It shares the listener
// with the Prometheus endpoint.
type AdminConfiguration struct {
	Enabled   bool   `toml:"enabled"`
	AuthToken string `toml:"auth_token"`
}

// Configuration is the main configuration structure
type Configuration struct {
	NodeID            uint64 `toml:"node_id"`
	TopicNamespace    string `toml:"topic_namespace"`
	TopicName         string `toml:"topic_name"`
	PublishIntervalMS int    `toml:"publish_interval_ms"`

	Sinks      []SinkConfiguration     `toml:"sink"`
	Logging    LoggingConfiguration    `toml:"logging"`
	Prometheus PrometheusConfiguration `toml:"prometheus"`
	Admin      AdminConfiguration      `toml:"admin"`
}

// Command line flags
var (
	ConfigPathFlag      = flag.String("config", "config.toml", "Path to configuration file")
	NodeIDFlag          = flag.Uint64("node-id", 0, "Node ID (overrides config, 0=auto)")
	TopicNamespaceFlag  = flag.String("topic-namespace", "", "Topic namespace (overrides config)")
	TopicNameFlag       = flag.String("topic-name", "", "Topic name (overrides config)")
	PublishIntervalFlag = flag.Int("publish-interval-ms", 0, "Publish interval in ms (overrides config)")
)

// Default configuration
var Config = &Configuration{
	NodeID:            0, // Auto-generate
	TopicNamespace:    "beacon",
	TopicName:         "markers",
	PublishIntervalMS: 20,

	Sinks: []SinkConfiguration{},

	Logging: LoggingConfiguration{
		Verbose: false,
		Format:  "console",
	},

	Prometheus: PrometheusConfiguration{
		Enabled: true,
		Address: "0.0.0.0",
		Port:    9090,
	},

	Admin: AdminConfiguration{
		Enabled: false,
	},
}

// Load loads configuration from file and applies CLI overrides
func Load(configPath string) error {
	// Load from file if it exists
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			log.Info().Str("path", configPath).Msg("Loading configuration")
			if _, err := toml.DecodeFile(configPath, Config); err != nil {
				return fmt.Errorf("failed to decode config: %w", err)
			}
		} else {
			log.Warn().Str("path", configPath).Msg("Config file not found, using defaults")
		}
	}

	// Apply CLI overrides
	if *NodeIDFlag != 0 {
		Config.NodeID = *NodeIDFlag
	}
	if *TopicNamespaceFlag != "" {
		Config.TopicNamespace = *TopicNamespaceFlag
	}
	if *TopicNameFlag != "" {
		Config.TopicName = *TopicNameFlag
	}
	if *PublishIntervalFlag != 0 {
		Config.PublishIntervalMS = *PublishIntervalFlag
	}

	// Auto-generate node ID if not set
	if Config.NodeID == 0 {
		var err error
		Config.NodeID, err = generateNodeID()
		if err != nil {
			return fmt.Errorf("failed to generate node ID: %w", err)
		}
		log.Info().Uint64("node_id", Config.NodeID).Msg("Auto-generated node ID")
	}

	return nil
}

// generateNodeID creates a unique node ID based on machine ID
func generateNodeID() (uint64, error) {
	id, err := machineid.ProtectedID("beacon")
	if err != nil {
		return 0, err
	}

	h := fnv.New64a()
	h.Write([]byte(id))
	return h.Sum64(), nil
}

// Validate checks configuration for errors
func Validate() error {
	if Config.TopicNamespace == "" {
		return fmt.Errorf("topic namespace must not be empty")
	}

	if Config.TopicName == "" {
		return fmt.Errorf("topic name must not be empty")
	}

	if Config.PublishIntervalMS < 1 {
		return fmt.Errorf("publish interval must be >= 1ms, got %d", Config.PublishIntervalMS)
	}

	if Config.Prometheus.Enabled && (Config.Prometheus.Port < 1 || Config.Prometheus.Port > 65535) {
		return fmt.Errorf("invalid prometheus port: %d", Config.Prometheus.Port)
	}

	if Config.Admin.Enabled && !Config.Prometheus.Enabled {
		return fmt.Errorf("admin API requires the prometheus HTTP listener to be enabled")
	}

	seen := map[string]bool{}
	for _, snk := range Config.Sinks {
		if snk.Name == "" {
			return fmt.Errorf("sink name must not be empty")
		}
		if seen[snk.Name] {
			return fmt.Errorf("duplicate sink name: %s", snk.Name)
		}
		seen[snk.Name] = true

		switch snk.Type {
		case "nats":
			if snk.NatsURL == "" {
				return fmt.Errorf("sink %q: nats sink requires nats_url", snk.Name)
			}
		case "kafka":
			if len(snk.Brokers) == 0 {
				return fmt.Errorf("sink %q: kafka sink requires at least one broker", snk.Name)
			}
		case "mock":
			// No required fields
		case "":
			return fmt.Errorf("sink %q: type is required", snk.Name)
		}
	}

	return nil
}
