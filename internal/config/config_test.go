package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/pflag"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Path != "easysks.db" {
		t.Errorf("database path = %s", cfg.Database.Path)
	}
	if cfg.Auth.Provider != "cognito" {
		t.Errorf("provider = %s", cfg.Auth.Provider)
	}
	if cfg.Log.Mode != "dev" {
		t.Errorf("log mode = %s", cfg.Log.Mode)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9000
  allowed_origins:
    - https://app.easysks.de
database:
  path: /var/lib/easysks/easysks.db
auth:
  jwt_secret: s3cret
  issuer: easysks
scheduler:
  desired_retention: 0.85
  queue_cap: 30
log:
  mode: prod
catalog:
  sources:
    - url: https://github.com/easysks/fragenkatalog.git
      ref: main
      path: cards
`)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if !reflect.DeepEqual(cfg.Server.AllowedOrigins, []string{"https://app.easysks.de"}) {
		t.Errorf("origins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Scheduler.DesiredRetention != 0.85 {
		t.Errorf("desired retention = %v", cfg.Scheduler.DesiredRetention)
	}
	if cfg.Scheduler.QueueCap != 30 {
		t.Errorf("queue cap = %d", cfg.Scheduler.QueueCap)
	}
	if len(cfg.Catalog.Sources) != 1 || cfg.Catalog.Sources[0].Ref != "main" {
		t.Errorf("catalog sources = %+v", cfg.Catalog.Sources)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9000
auth:
  jwt_secret: from-file
`)
	t.Setenv("EASYSKS_SERVER__PORT", "9100")
	t.Setenv("EASYSKS_AUTH__JWT_SECRET", "from-env")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want 9100 (env wins)", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("secret = %s, want from-env", cfg.Auth.JWTSecret)
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("EASYSKS_SERVER__PORT", "9100")
	t.Setenv("EASYSKS_AUTH__JWT_SECRET", "s3cret")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("server.port", 8080, "")
	if err := flags.Parse([]string{"--server.port=9200"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("port = %d, want 9200 (flag wins)", cfg.Server.Port)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("EASYSKS_AUTH__JWT_SECRET", "s3cret")
	path := writeConfigFile(t, `
server:
  port: 70000
auth:
  jwt_secret: s3cret
`)
	if _, err := Load(path, nil); err == nil {
		t.Fatal("expected validation error for out-of-range port")
	}
}
