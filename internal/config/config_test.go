package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q", cfg.GinMode)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Errorf("APIBasePath = %q", cfg.APIBasePath)
	}
	if cfg.DBPath != "recipes.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("Cache.TTL = %v", cfg.Cache.TTL)
	}
	if cfg.Cache.RedisAddr != "" {
		t.Errorf("RedisAddr = %q, want remote tier off by default", cfg.Cache.RedisAddr)
	}
	if cfg.Dialogue.PageSize != 10 || cfg.Dialogue.PrepDays != 7 {
		t.Errorf("Dialogue = %+v", cfg.Dialogue)
	}
	if cfg.Dialogue.SessionTTL != 10*time.Minute {
		t.Errorf("SessionTTL = %v", cfg.Dialogue.SessionTTL)
	}
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Errorf("rate = %v/%d", cfg.RateRPS, cfg.RateBurst)
	}
	if cfg.OTEL.Enabled {
		t.Errorf("OTEL must be off by default")
	}
	if cfg.OTEL.SampleRatio != 1.0 {
		t.Errorf("SampleRatio = %v", cfg.OTEL.SampleRatio)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GIN_MODE", "DEBUG")
	t.Setenv("LOG_LEVEL", "warning") // normalized to warn
	t.Setenv("API_BASE_PATH", "api/v2/")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("RECIPES_PER_PAGE", "5")
	t.Setenv("PREP_DAYS", "14")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.GinMode != "debug" {
		t.Errorf("GinMode = %q", cfg.GinMode)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warning normalized", cfg.LogLevel)
	}
	if cfg.APIBasePath != "/api/v2" {
		t.Errorf("APIBasePath = %q", cfg.APIBasePath)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" || cfg.Cache.RedisDB != 3 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Dialogue.PageSize != 5 || cfg.Dialogue.PrepDays != 14 || cfg.Dialogue.SessionTTL != 30*time.Minute {
		t.Errorf("dialogue = %+v", cfg.Dialogue)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("origins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_UnknownGinModeFallsBack(t *testing.T) {
	t.Setenv("GIN_MODE", "verbose")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q, want release fallback", cfg.GinMode)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		key, value, wantErr string
	}{
		{"LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"READ_TIMEOUT", "-1s", "timeouts"},
		{"MAX_HEADER_BYTES", "-5", "MAX_HEADER_BYTES"},
		{"CACHE_TTL", "-1h", "CACHE_TTL"},
		{"RECIPES_PER_PAGE", "0", "RECIPES_PER_PAGE"},
		{"PREP_DAYS", "0", "PREP_DAYS"},
		{"SESSION_TTL", "-1m", "SESSION_TTL"},
		{"RATE_RPS", "-2", "RATE_RPS"},
		{"RATE_BURST", "0", "RATE_BURST"},
		{"OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err = %v, want mention of %s", err, tc.wantErr)
			}
		})
	}
}

func TestGetBool(t *testing.T) {
	t.Setenv("FLAG", "yes")
	if !getbool("FLAG", false) {
		t.Errorf("yes must parse true")
	}
	t.Setenv("FLAG", "off")
	if getbool("FLAG", true) {
		t.Errorf("off must parse false")
	}
	t.Setenv("FLAG", "maybe")
	if !getbool("FLAG", true) {
		t.Errorf("unparsable value must keep the default")
	}
}

func TestNormalizeBasePath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "/"},
		{"/", "/"},
		{"api", "/api"},
		{"/api/v1/", "/api/v1"},
		{"  /api  ", "/api"},
	}
	for _, tc := range tests {
		if got := normalizeBasePath(tc.in); got != tc.want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
