package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.DB.Host != "localhost" {
		t.Errorf("db host %q", cfg.DB.Host)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port %q", cfg.Server.Port)
	}
	if cfg.Tenant.RootDomain != "localhost" {
		t.Errorf("root domain %q", cfg.Tenant.RootDomain)
	}
	if cfg.Tenant.DevFallback {
		t.Error("dev fallback enabled by default")
	}
	if cfg.Calendar.CredentialsFile != "" {
		t.Error("calendar enabled by default")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("TENANT_DEV_FALLBACK", "true")
	t.Setenv("JWT_EXPIRATION_HOURS", "72")
	t.Setenv("MINIO_USE_SSL", "not-a-bool")

	cfg := Load()
	if cfg.Server.Port != "9999" {
		t.Errorf("port %q", cfg.Server.Port)
	}
	if !cfg.Tenant.DevFallback {
		t.Error("dev fallback not picked up")
	}
	if cfg.JWT.ExpirationHours != 72 {
		t.Errorf("expiration %d", cfg.JWT.ExpirationHours)
	}
	if cfg.MinIO.UseSSL {
		t.Error("unparseable bool should fall back to default")
	}
}
