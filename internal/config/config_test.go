package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadFailsWithoutPort(t *testing.T) {
	t.Setenv("PORT", "")

	_, err := Load(missingEnvFile(t), "")
	if !errors.Is(err, ErrPortMissing) {
		t.Fatalf("expected ErrPortMissing, got %v", err)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("FRONTEND_URL", "http://localhost:5173, http://example.test")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "pg")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load(missingEnvFile(t), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr() != ":3000" {
		t.Errorf("unexpected addr %s", cfg.Addr())
	}
	if origins := cfg.AllowedOrigins(); len(origins) != 2 || origins[1] != "http://example.test" {
		t.Errorf("unexpected origins %v", origins)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("unexpected shutdown timeout %v", cfg.ShutdownTimeout)
	}
	if got := cfg.Database.PostgresURL(); got != "postgres://user:password@pg:6543/tododb?sslmode=disable" {
		t.Errorf("unexpected postgres url %s", got)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")
	t.Setenv("DB_DRIVER", "")
	os.Unsetenv("DB_DRIVER")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PORT=8088\nDB_DRIVER=memory\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("DB_DRIVER")
	})

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8088" || cfg.Database.Driver != DriverMemory {
		t.Errorf("dotenv values not applied: %+v", cfg)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("DB_DRIVER", "mongo")

	if _, err := Load(missingEnvFile(t), ""); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("DB_DRIVER", "")
	os.Unsetenv("DB_DRIVER")

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "frontend_url: http://ui.test\ndb:\n  driver: sqlite\n  path: /tmp/x.db\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(missingEnvFile(t), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FrontendURL != "http://ui.test" || cfg.Database.Path != "/tmp/x.db" {
		t.Errorf("config file not applied: %+v", cfg)
	}
}

func TestLoadClientDefaults(t *testing.T) {
	t.Setenv("API_URL", "")
	os.Unsetenv("API_URL")

	c, err := LoadClient(missingEnvFile(t))
	if err != nil {
		t.Fatal(err)
	}
	if c.APIURL != "http://localhost:3000/api" {
		t.Errorf("unexpected default api url %s", c.APIURL)
	}
}
