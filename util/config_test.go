package util

import (
	"os"
	"testing"
)

func TestConfigConstants(t *testing.T) {
	if Name != "hive" {
		t.Errorf("Expected Name 'hive', got '%s'", Name)
	}

	if ConfigFileName != "config.yaml" {
		t.Errorf("Expected ConfigFileName 'config.yaml', got '%s'", ConfigFileName)
	}
}

func TestBaseURI(t *testing.T) {
	conf := &AppConfig{}
	conf.Conf.Domain = "hive.example"

	if conf.BaseURI() != "https://hive.example" {
		t.Errorf("Expected 'https://hive.example', got '%s'", conf.BaseURI())
	}
}

func TestReadConfWithYaml(t *testing.T) {
	yamlContent := `
conf:
  host: 127.0.0.1
  httpPort: 9999
  domain: example.com
  storagePublicPath: /storage
  deliveryTimeoutSecs: 15
  workerIntervalSecs: 5
  withFederation: true
`
	err := os.WriteFile("config.yaml", []byte(yamlContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}
	defer os.Remove("config.yaml")

	config, err := ReadConf()
	if err != nil {
		t.Fatalf("ReadConf failed: %v", err)
	}

	if config.Conf.Host != "127.0.0.1" {
		t.Errorf("Expected Host '127.0.0.1', got '%s'", config.Conf.Host)
	}

	if config.Conf.HttpPort != 9999 {
		t.Errorf("Expected HttpPort 9999, got %d", config.Conf.HttpPort)
	}

	if config.Conf.Domain != "example.com" {
		t.Errorf("Expected Domain 'example.com', got '%s'", config.Conf.Domain)
	}

	if config.Conf.StoragePublicPath != "/storage" {
		t.Errorf("Expected StoragePublicPath '/storage', got '%s'", config.Conf.StoragePublicPath)
	}

	if config.Conf.DeliveryTimeoutSecs != 15 {
		t.Errorf("Expected DeliveryTimeoutSecs 15, got %d", config.Conf.DeliveryTimeoutSecs)
	}

	if config.Conf.WorkerIntervalSecs != 5 {
		t.Errorf("Expected WorkerIntervalSecs 5, got %d", config.Conf.WorkerIntervalSecs)
	}

	if !config.Conf.WithFederation {
		t.Error("Expected WithFederation to be true")
	}
}

func TestReadConfWithEnvOverrides(t *testing.T) {
	yamlContent := `
conf:
  host: 127.0.0.1
  httpPort: 9999
  domain: example.com
`
	err := os.WriteFile("config.yaml", []byte(yamlContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}
	defer os.Remove("config.yaml")

	os.Setenv("HIVE_DOMAIN", "override.example")
	os.Setenv("HIVE_HTTPPORT", "8888")
	os.Setenv("HIVE_WITH_FEDERATION", "true")
	defer func() {
		os.Unsetenv("HIVE_DOMAIN")
		os.Unsetenv("HIVE_HTTPPORT")
		os.Unsetenv("HIVE_WITH_FEDERATION")
	}()

	config, err := ReadConf()
	if err != nil {
		t.Fatalf("ReadConf failed: %v", err)
	}

	if config.Conf.Domain != "override.example" {
		t.Errorf("Expected Domain 'override.example', got '%s'", config.Conf.Domain)
	}

	if config.Conf.HttpPort != 8888 {
		t.Errorf("Expected HttpPort 8888, got %d", config.Conf.HttpPort)
	}

	if !config.Conf.WithFederation {
		t.Error("Expected WithFederation to be true")
	}
}

func TestReadConfDefaults(t *testing.T) {
	yamlContent := `
conf:
  host: 127.0.0.1
  httpPort: 9999
  domain: example.com
`
	err := os.WriteFile("config.yaml", []byte(yamlContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}
	defer os.Remove("config.yaml")

	config, err := ReadConf()
	if err != nil {
		t.Fatalf("ReadConf failed: %v", err)
	}

	if config.Conf.DeliveryTimeoutSecs != 10 {
		t.Errorf("Expected default DeliveryTimeoutSecs 10, got %d", config.Conf.DeliveryTimeoutSecs)
	}

	if config.Conf.WorkerIntervalSecs != 10 {
		t.Errorf("Expected default WorkerIntervalSecs 10, got %d", config.Conf.WorkerIntervalSecs)
	}
}
