package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWithNoFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.Paths.DataDir != "data" {
		t.Errorf("Paths.DataDir = %q, want default \"data\"", cfg.Paths.DataDir)
	}
}

func TestLoadFromYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlContent := `
server:
  port: 9999
paths:
  data_dir: /custom/data
  indexes_dir: /custom/indexes
`
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999 from YAML", cfg.Server.Port)
	}
	if cfg.Paths.DataDir != "/custom/data" {
		t.Errorf("Paths.DataDir = %q, want /custom/data", cfg.Paths.DataDir)
	}
	// Fields untouched by the YAML file should keep their defaults.
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %q, want default when omitted from YAML", cfg.Redis.Addr)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Load with a nonexistent path should return an error")
	}
}

func TestLoadRejectsEmptyDataDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("paths:\n  data_dir: \"\"\n  indexes_dir: indexes\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load should reject a config with an empty paths.data_dir")
	}
}

func TestEnvOverridesTakePrecedenceOverYAML(t *testing.T) {
	t.Setenv("SE_SERVER_PORT", "7777")
	t.Setenv("SE_DATA_DIR", "/env/data")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777 from SE_SERVER_PORT", cfg.Server.Port)
	}
	if cfg.Paths.DataDir != "/env/data" {
		t.Errorf("Paths.DataDir = %q, want /env/data from SE_DATA_DIR", cfg.Paths.DataDir)
	}
}

func TestEnvOverrideIgnoresInvalidInt(t *testing.T) {
	t.Setenv("SE_SERVER_PORT", "not-a-number")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080 preserved on invalid override", cfg.Server.Port)
	}
}

func TestKafkaBrokersEnvOverrideSplitsOnComma(t *testing.T) {
	t.Setenv("SE_KAFKA_BROKERS", "broker1:9092,broker2:9092")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "broker1:9092" || cfg.Kafka.Brokers[1] != "broker2:9092" {
		t.Errorf("Kafka.Brokers = %v, want [broker1:9092 broker2:9092]", cfg.Kafka.Brokers)
	}
}

func TestDSNFormatsPostgresConnectionString(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=d sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
