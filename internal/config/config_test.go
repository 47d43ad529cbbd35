package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
database:
  path: "test.db"
scheduling:
  timezone: "Europe/Berlin"
api:
  auth:
    enabled: true
    api_keys:
      - key: "secret"
        name: "frontend"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Database.Path != "test.db" {
		t.Errorf("expected database path test.db, got %s", cfg.Database.Path)
	}

	if cfg.Scheduling.Timezone != "Europe/Berlin" {
		t.Errorf("expected timezone Europe/Berlin, got %s", cfg.Scheduling.Timezone)
	}

	if cfg.Location().String() != "Europe/Berlin" {
		t.Errorf("expected location Europe/Berlin, got %s", cfg.Location())
	}

	// Defaults
	if cfg.API.HTTP.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.API.HTTP.Port)
	}
	if cfg.Scheduling.CacheTTLSeconds != 300 {
		t.Errorf("expected default cache ttl 300, got %d", cfg.Scheduling.CacheTTLSeconds)
	}
	if cfg.API.Auth.HeaderAPIKey != "x-api-key" {
		t.Errorf("expected default api key header, got %s", cfg.API.Auth.HeaderAPIKey)
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("TEST_DB_PATH", "/data/slotcal.db")

	yamlContent := `
database:
  path: "${TEST_DB_PATH}"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Database.Path != "/data/slotcal.db" {
		t.Errorf("expected expanded path, got %s", cfg.Database.Path)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Database:   DatabaseConfig{Path: "path"},
				Scheduling: SchedulingConfig{Timezone: "UTC"},
			},
			wantErr: false,
		},
		{
			name: "missing database path",
			cfg: Config{
				Scheduling: SchedulingConfig{Timezone: "UTC"},
			},
			wantErr: true,
		},
		{
			name: "bad timezone",
			cfg: Config{
				Database:   DatabaseConfig{Path: "path"},
				Scheduling: SchedulingConfig{Timezone: "Mars/Olympus"},
			},
			wantErr: true,
		},
		{
			name: "auth enabled without keys",
			cfg: Config{
				Database:   DatabaseConfig{Path: "path"},
				Scheduling: SchedulingConfig{Timezone: "UTC"},
				API:        APIConfig{Auth: APIAuthConfig{Enabled: true}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
