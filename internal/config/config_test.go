package config

import (
	"os"
	"path/filepath"
	"testing"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestLoad(t *testing.T) {
	setEnv(t, map[string]string{
		"SITE_URL":  "https://example.com/",
		"MYSQL_DSN": "user:pass@tcp(localhost:3306)/test",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.SiteURL != "https://example.com" {
		t.Errorf("Expected trailing slash trimmed, got %s", cfg.SiteURL)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("Expected HTTPAddr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.Cache.Driver != "file" {
		t.Errorf("Expected cache driver file, got %s", cfg.Cache.Driver)
	}
	if cfg.RedirectVerifier.BatchSize != 10 || cfg.RedirectVerifier.IntervalSec != 3600 {
		t.Errorf("Unexpected verifier defaults: %+v", cfg.RedirectVerifier)
	}
	if cfg.RedirectCleaner.RetentionDays != 90 {
		t.Errorf("Expected retention 90 days, got %d", cfg.RedirectCleaner.RetentionDays)
	}
}

func TestLoad_MissingSiteURL(t *testing.T) {
	t.Setenv("SITE_URL", "")
	t.Setenv("MYSQL_DSN", "dsn")

	if _, err := Load(); err == nil {
		t.Error("Expected error when SITE_URL is missing")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{
			name:    "relative site url",
			env:     map[string]string{"SITE_URL": "/example", "MYSQL_DSN": "dsn"},
			wantErr: true,
		},
		{
			name:    "mysql without dsn",
			env:     map[string]string{"SITE_URL": "https://example.com", "MYSQL_DSN": "", "DB_DRIVER": "mysql"},
			wantErr: true,
		},
		{
			name:    "sqlite without dsn",
			env:     map[string]string{"SITE_URL": "https://example.com", "MYSQL_DSN": "", "DB_DRIVER": "sqlite"},
			wantErr: false,
		},
		{
			name:    "unknown cache driver",
			env:     map[string]string{"SITE_URL": "https://example.com", "DB_DRIVER": "sqlite", "CACHE_DRIVER": "memcached"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)
			_, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromINI_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "polyseo.ini")
	content := `
[site]
url = https://ini.example.com

[db]
driver = sqlite
sqlite_path = /tmp/polyseo.db

[redirect_verifier]
batch_size = 25
interval_sec = 600

[cache]
driver = redis
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SITE_URL", "")
	t.Setenv("REDIRECT_VERIFIER_INTERVAL_SEC", "120")

	cfg, err := LoadFromINI(path)
	if err != nil {
		t.Fatalf("LoadFromINI() failed: %v", err)
	}

	if cfg.SiteURL != "https://ini.example.com" {
		t.Errorf("Expected INI site url, got %s", cfg.SiteURL)
	}
	if cfg.DSN() != "/tmp/polyseo.db" {
		t.Errorf("Expected sqlite path as DSN, got %s", cfg.DSN())
	}
	if cfg.RedirectVerifier.BatchSize != 25 {
		t.Errorf("Expected batch size 25, got %d", cfg.RedirectVerifier.BatchSize)
	}
	if cfg.RedirectVerifier.IntervalSec != 120 {
		t.Errorf("Expected env override 120, got %d", cfg.RedirectVerifier.IntervalSec)
	}
	if cfg.Cache.Driver != "redis" {
		t.Errorf("Expected cache driver redis, got %s", cfg.Cache.Driver)
	}
}
