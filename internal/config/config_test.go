package config

import (
	"log/slog"
	"testing"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENVIRONMENT", "LOG_LEVEL", "DATABASE_URL", "REDIS_URL",
		"KAFKA_BROKERS", "KAFKA_TOPIC", "CASDOOR_ENDPOINT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/exam_engine")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %s, want development", cfg.Environment)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.KafkaTopic != "exam-engine.events" {
		t.Errorf("KafkaTopic = %s, want exam-engine.events", cfg.KafkaTopic)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Errorf("KafkaBrokers = %v, want empty", cfg.KafkaBrokers)
	}
	if cfg.IsProduction() {
		t.Error("IsProduction true for development")
	}
}

func TestLoadConfig_RequiresDatabaseURL(t *testing.T) {
	clearConfigEnv(t)

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error without DATABASE_URL")
	}
}

func TestLoadConfig_ProductionRequiresCasdoor(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/exam_engine")
	t.Setenv("ENVIRONMENT", "production")

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error without CASDOOR_ENDPOINT in production")
	}

	t.Setenv("CASDOOR_ENDPOINT", "https://auth.example.com")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction false for production")
	}
}

func TestLoadConfig_KafkaBrokerSplitting(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/exam_engine")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092 ,,kafka-3:9092")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := []string{"kafka-1:9092", "kafka-2:9092", "kafka-3:9092"}
	if len(cfg.KafkaBrokers) != len(want) {
		t.Fatalf("KafkaBrokers = %v, want %v", cfg.KafkaBrokers, want)
	}
	for i := range want {
		if cfg.KafkaBrokers[i] != want[i] {
			t.Errorf("KafkaBrokers[%d] = %s, want %s", i, cfg.KafkaBrokers[i], want[i])
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{name: "debug", input: "debug", want: slog.LevelDebug},
		{name: "warn", input: "warn", want: slog.LevelWarn},
		{name: "error", input: "ERROR", want: slog.LevelError},
		{name: "unknown falls back to info", input: "verbose", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
