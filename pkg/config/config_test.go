package config

import (
	"strings"
	"testing"
)

func productionConfig() *Config {
	return &Config{
		DatabaseURL:        "postgres://invoices:secret@db:5432/invoices",
		Environment:        EnvProduction,
		CORSAllowedOrigins: "https://invoices.example.com",
		LogLevel:           "info",
	}
}

func TestValidateForProduction_NonProductionIsNoop(t *testing.T) {
	cfg := &Config{
		DatabaseURL:        "sqlite://invoices.db",
		Environment:        EnvDevelopment,
		CORSAllowedOrigins: "*",
		SeedDemoData:       true,
		LogLevel:           "debug",
	}
	if err := ValidateForProduction(cfg); err != nil {
		t.Fatalf("expected nil for development config, got %v", err)
	}
}

func TestValidateForProduction_Valid(t *testing.T) {
	if err := ValidateForProduction(productionConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateForProduction_Violations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"sqlite database", func(c *Config) { c.DatabaseURL = "sqlite://invoices.db" }, "DATABASE_URL"},
		{"wildcard cors", func(c *Config) { c.CORSAllowedOrigins = " * " }, "CORS_ALLOWED_ORIGINS"},
		{"demo seed", func(c *Config) { c.SeedDemoData = true }, "SEED_DEMO_DATA"},
		{"debug logging", func(c *Config) { c.LogLevel = "debug" }, "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := productionConfig()
			tt.mutate(cfg)
			err := ValidateForProduction(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected %q in error, got %v", tt.wantMsg, err)
			}
		})
	}
}

func TestIsProduction(t *testing.T) {
	if (&Config{Environment: EnvTesting}).IsProduction() {
		t.Error("testing environment reported as production")
	}
	if !(&Config{Environment: EnvProduction}).IsProduction() {
		t.Error("production environment not reported as production")
	}
}
