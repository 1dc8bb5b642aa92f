package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Language != "en" {
		t.Errorf("expected default language en, got %q", cfg.Language)
	}
	if cfg.History.Storage.Backend != "local" {
		t.Errorf("expected default backend local, got %q", cfg.History.Storage.Backend)
	}
	if cfg.History.Database.Driver != "sqlite" {
		t.Errorf("expected default driver sqlite, got %q", cfg.History.Database.Driver)
	}
	if cfg.Cache.Size != 256 {
		t.Errorf("expected default cache size 256, got %d", cfg.Cache.Size)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		create  bool
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:   "non-existent file returns defaults",
			create: false,
			check: func(t *testing.T, cfg *Config) {
				if cfg.History.Database.Driver != "sqlite" {
					t.Errorf("expected default driver, got %q", cfg.History.Database.Driver)
				}
			},
		},
		{
			name:   "valid YAML overrides defaults",
			create: true,
			yaml: `
language: de
scores:
  dir: /srv/scores
history:
  storage:
    backend: s3
    bucket: klinscore-records
    region: eu-central-1
  database:
    driver: postgres
    dsn: postgres://localhost/klinscore?sslmode=disable
cache:
  size: 64
  redis_addr: localhost:6379
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Language != "de" {
					t.Errorf("expected language de, got %q", cfg.Language)
				}
				if cfg.Scores.Dir != "/srv/scores" {
					t.Errorf("expected scores dir, got %q", cfg.Scores.Dir)
				}
				if cfg.History.Storage.Bucket != "klinscore-records" {
					t.Errorf("expected bucket, got %q", cfg.History.Storage.Bucket)
				}
				if cfg.History.Database.Driver != "postgres" {
					t.Errorf("expected postgres, got %q", cfg.History.Database.Driver)
				}
				if cfg.Cache.Size != 64 || cfg.Cache.RedisAddr != "localhost:6379" {
					t.Errorf("unexpected cache config %+v", cfg.Cache)
				}
				// Untouched sections keep their defaults.
				if cfg.Server.Port != "8080" {
					t.Errorf("expected default port, got %q", cfg.Server.Port)
				}
			},
		},
		{
			name:    "invalid YAML returns error",
			create:  true,
			yaml:    "{{invalid yaml",
			wantErr: true,
		},
		{
			name:    "unknown backend",
			create:  true,
			yaml:    "history:\n  storage:\n    backend: ftp\n",
			wantErr: true,
		},
		{
			name:    "s3 without bucket",
			create:  true,
			yaml:    "history:\n  storage:\n    backend: s3\n",
			wantErr: true,
		},
		{
			name:    "postgres without dsn",
			create:  true,
			yaml:    "history:\n  database:\n    driver: postgres\n",
			wantErr: true,
		},
		{
			name:    "unknown language",
			create:  true,
			yaml:    "language: fr\n",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")

			if tc.create {
				if err := os.WriteFile(path, []byte(tc.yaml), 0o644); err != nil {
					t.Fatalf("write test config: %v", err)
				}
			}

			cfg, err := Load(path)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.check != nil {
				tc.check(t, cfg)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"KLINSCORE_PORT":            "9090",
		"KLINSCORE_DB_DRIVER":       "postgres",
		"KLINSCORE_DATABASE_URL":    "postgres://db/klinscore",
		"KLINSCORE_STORAGE_BACKEND": "gcs",
		"KLINSCORE_BUCKET":          "records",
		"KLINSCORE_CACHE_SIZE":      "12",
		"KLINSCORE_REDIS_ADDR":      "redis:6379",
	}
	cfg := DefaultConfig()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
	if cfg.History.Database.Driver != "postgres" || cfg.History.Database.DSN != "postgres://db/klinscore" {
		t.Errorf("Database = %+v", cfg.History.Database)
	}
	if cfg.History.Storage.Backend != "gcs" || cfg.History.Storage.Bucket != "records" {
		t.Errorf("Storage = %+v", cfg.History.Storage)
	}
	if cfg.Cache.Size != 12 || cfg.Cache.RedisAddr != "redis:6379" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Language != "en" {
		t.Errorf("unset variables must not override, Language = %q", cfg.Language)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestDirectoryFunctions(t *testing.T) {
	data := DataDir()
	if !strings.HasSuffix(data, filepath.Join(".local", "share", "klinscore")) {
		t.Errorf("DataDir should end with .local/share/klinscore, got %q", data)
	}
	if RecordDir() != filepath.Join(data, "records") {
		t.Errorf("RecordDir = %q", RecordDir())
	}
	if ExportDir() != filepath.Join(data, "exports") {
		t.Errorf("ExportDir = %q", ExportDir())
	}
}

func TestFindConfigFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	if got := FindConfigFile(nested); got != "" {
		t.Errorf("expected no config file, got %q", got)
	}

	cfgDir := filepath.Join(root, "a", ".klinscore")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(cfgDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("language: de\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := FindConfigFile(nested); got != cfgPath {
		t.Errorf("FindConfigFile = %q, want %q", got, cfgPath)
	}
}
