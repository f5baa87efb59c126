package cfg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	// Save original config
	original := Config
	defer func() { Config = original }()

	Config = &Configuration{
		NodeID:            1,
		TopicNamespace:    "robot1",
		TopicName:         "markers",
		PublishIntervalMS: 20,
		Sinks: []SinkConfiguration{
			{Name: "viz", Type: "nats", NatsURL: "nats://localhost:4222"},
		},
		Prometheus: PrometheusConfiguration{
			Enabled: true,
			Port:    9090,
		},
	}

	err := Validate()
	if err != nil {
		t.Errorf("Expected no error for valid config, got: %v", err)
	}
}

func TestValidate_EmptyTopicNamespace(t *testing.T) {
	original := Config
	defer func() { Config = original }()

	Config = &Configuration{
		TopicName:         "markers",
		PublishIntervalMS: 20,
	}

	if err := Validate(); err == nil {
		t.Error("Expected error for empty topic namespace")
	}
}

func TestValidate_InvalidInterval(t *testing.T) {
	original := Config
	defer func() { Config = original }()

	Config = &Configuration{
		TopicNamespace:    "robot1",
		TopicName:         "markers",
		PublishIntervalMS: 0,
	}

	if err := Validate(); err == nil {
		t.Error("Expected error for zero publish interval")
	}
}

func TestValidate_NatsSinkMissingURL(t *testing.T) {
	original := Config
	defer func() { Config = original }()

	Config = &Configuration{
		TopicNamespace:    "robot1",
		TopicName:         "markers",
		PublishIntervalMS: 20,
		Sinks: []SinkConfiguration{
			{Name: "viz", Type: "nats"},
		},
	}

	if err := Validate(); err == nil {
		t.Error("Expected error for nats sink without url")
	}
}

func TestValidate_KafkaSinkMissingBrokers(t *testing.T) {
	original := Config
	defer func() { Config = original }()

	Config = &Configuration{
		TopicNamespace:    "robot1",
		TopicName:         "markers",
		PublishIntervalMS: 20,
		Sinks: []SinkConfiguration{
			{Name: "viz", Type: "kafka"},
		},
	}

	if err := Validate(); err == nil {
		t.Error("Expected error for kafka sink without brokers")
	}
}

func TestValidate_DuplicateSinkNames(t *testing.T) {
	original := Config
	defer func() { Config = original }()

	Config = &Configuration{
		TopicNamespace:    "robot1",
		TopicName:         "markers",
		PublishIntervalMS: 20,
		Sinks: []SinkConfiguration{
			{Name: "viz", Type: "mock"},
			{Name: "viz", Type: "mock"},
		},
	}

	if err := Validate(); err == nil {
		t.Error("Expected error for duplicate sink names")
	}
}

func TestValidate_AdminRequiresListener(t *testing.T) {
	original := Config
	defer func() { Config = original }()

	Config = &Configuration{
		TopicNamespace:    "robot1",
		TopicName:         "markers",
		PublishIntervalMS: 20,
		Prometheus:        PrometheusConfiguration{Enabled: false},
		Admin:             AdminConfiguration{Enabled: true},
	}

	if err := Validate(); err == nil {
		t.Error("Expected error for admin API without the HTTP listener")
	}
}

func TestLoad_FromFile(t *testing.T) {
	original := Config
	defer func() { Config = original }()

	Config = &Configuration{
		NodeID:            42, // avoid machineid dependence in tests
		TopicNamespace:    "beacon",
		TopicName:         "markers",
		PublishIntervalMS: 20,
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
topic_namespace = "robot7"
publish_interval_ms = 50

[[sink]]
name = "viz"
type = "nats"
nats_url = "nats://localhost:4222"
format = "msgpack"
compression = "s2"
filter_names = ["robot/*"]

[logging]
verbose = true
format = "json"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if Config.TopicNamespace != "robot7" {
		t.Errorf("Expected topic namespace robot7, got %s", Config.TopicNamespace)
	}
	if Config.TopicName != "markers" {
		t.Errorf("Expected default topic name to survive, got %s", Config.TopicName)
	}
	if Config.PublishIntervalMS != 50 {
		t.Errorf("Expected interval 50, got %d", Config.PublishIntervalMS)
	}
	if len(Config.Sinks) != 1 {
		t.Fatalf("Expected 1 sink, got %d", len(Config.Sinks))
	}
	if Config.Sinks[0].Compression != "s2" {
		t.Errorf("Expected s2 compression, got %s", Config.Sinks[0].Compression)
	}
	if !Config.Logging.Verbose || Config.Logging.Format != "json" {
		t.Errorf("Logging config not applied: %+v", Config.Logging)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	original := Config
	defer func() { Config = original }()

	Config = &Configuration{
		NodeID:            42,
		TopicNamespace:    "beacon",
		TopicName:         "markers",
		PublishIntervalMS: 20,
	}

	if err := Load(filepath.Join(t.TempDir(), "missing.toml")); err != nil {
		t.Fatalf("Load of missing file should fall back to defaults, got: %v", err)
	}

	if Config.TopicNamespace != "beacon" || Config.PublishIntervalMS != 20 {
		t.Errorf("Defaults not preserved: %+v", Config)
	}
}
