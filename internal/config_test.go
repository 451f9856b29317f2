package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/notehub/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
	if cfg.BearerToken() != "mysecret" {
		t.Errorf("bearer token = %q", cfg.BearerToken())
	}
}

func TestAuthConfig_DisabledIgnoresToken(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: "leftover"}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.BearerToken() != "" {
		t.Errorf("bearer token = %q, want empty in disabled mode", cfg.BearerToken())
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestHTTPConfig_Address(t *testing.T) {
	c := HTTPConfig{Port: 9090}
	if got := c.Address(); got != ":9090" {
		t.Errorf("address = %q, want :9090", got)
	}
	c.Host = "127.0.0.1"
	if got := c.Address(); got != "127.0.0.1:9090" {
		t.Errorf("address = %q", got)
	}
}

func TestInboxConfig_EnabledRequiresPathAndTag(t *testing.T) {
	cfg := InboxConfig{Enabled: true}
	if err := cfg.Validate(); err == nil {
		t.Fatal("enabled inbox without path should fail")
	}
	cfg = InboxConfig{Enabled: true, Path: "./inbox", DefaultTag: "Someday"}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "unknown tag") {
		t.Fatalf("unknown tag should fail, got %v", err)
	}
	cfg.DefaultTag = "Work"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid inbox config: %v", err)
	}
	if err := (&InboxConfig{}).Validate(); err != nil {
		t.Fatalf("disabled inbox needs nothing: %v", err)
	}
}

func TestClientConfig_Validation(t *testing.T) {
	base := NewDefaultConfig().Client

	cfg := base
	cfg.BaseURL = "://missing-scheme"
	if err := cfg.Validate(); err == nil {
		t.Error("bad base url should fail")
	}

	cfg = base
	cfg.PerPage = 500
	if err := cfg.Validate(); err == nil {
		t.Error("per_page above the API maximum should fail")
	}

	cfg = base
	cfg.Debounce = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero debounce should fail")
	}
}

func TestFullConfig_LoadsFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("NOTEHUB_TEST_TOKEN", "from-env")
	yaml := `
app:
  log_level: debug
  http:
    port: 9191
auth:
  mode: token
  token: ${NOTEHUB_TEST_TOKEN}
client:
  debounce: 250ms
  per_page: 20
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
	if cfg.Auth.Token != "from-env" {
		t.Errorf("token = %q, want env expansion", cfg.Auth.Token)
	}
	if cfg.Client.Debounce != 250*time.Millisecond || cfg.Client.PerPage != 20 {
		t.Errorf("client = %+v", cfg.Client)
	}
	if cfg.Client.BaseURL != "http://127.0.0.1:8080/api" {
		t.Errorf("defaults should survive a partial file, base_url = %q", cfg.Client.BaseURL)
	}
}
