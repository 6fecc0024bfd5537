package config

import (
	"os"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.ReadTimeout != 30*time.Second {
		t.Errorf("expected default read timeout 30s, got %v", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 60*time.Second {
		t.Errorf("expected default write timeout 60s, got %v", cfg.WriteTimeout)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.DataDir != "" {
		t.Errorf("expected empty default data dir, got %s", cfg.DataDir)
	}
	if cfg.ClassifierURL != "http://localhost:8000" {
		t.Errorf("expected default classifier URL http://localhost:8000, got %s", cfg.ClassifierURL)
	}
	if cfg.ClassifyTimeout != 30*time.Second {
		t.Errorf("expected default classify timeout 30s, got %v", cfg.ClassifyTimeout)
	}
	if cfg.FetchTimeout != 15*time.Second {
		t.Errorf("expected default fetch timeout 15s, got %v", cfg.FetchTimeout)
	}
	if cfg.MaxPolicySize != 2*1024*1024 {
		t.Errorf("expected default max policy size 2MB, got %d", cfg.MaxPolicySize)
	}
}

func TestNewWithEnvVars(t *testing.T) {
	envVars := map[string]string{
		"FIREWALL_PORT":             "9090",
		"FIREWALL_READ_TIMEOUT":     "45s",
		"FIREWALL_WRITE_TIMEOUT":    "90s",
		"FIREWALL_SHUTDOWN_TIMEOUT": "10s",
		"FIREWALL_DATA_DIR":         "/var/lib/firewall",
		"FIREWALL_CLASSIFIER_URL":   "http://classifier:9000",
		"FIREWALL_CLASSIFY_TIMEOUT": "120s",
		"FIREWALL_FETCH_TIMEOUT":    "20s",
		"FIREWALL_MAX_POLICY_SIZE":  "204800",
		"FIREWALL_WEBHOOK_URL":      "https://hooks.example.com/firewall",
	}

	for key, val := range envVars {
		t.Setenv(key, val)
	}

	cfg := New()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.ReadTimeout != 45*time.Second {
		t.Errorf("expected read timeout 45s, got %v", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 90*time.Second {
		t.Errorf("expected write timeout 90s, got %v", cfg.WriteTimeout)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected shutdown timeout 10s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.DataDir != "/var/lib/firewall" {
		t.Errorf("expected data dir /var/lib/firewall, got %s", cfg.DataDir)
	}
	if cfg.ClassifierURL != "http://classifier:9000" {
		t.Errorf("expected classifier URL http://classifier:9000, got %s", cfg.ClassifierURL)
	}
	if cfg.ClassifyTimeout != 120*time.Second {
		t.Errorf("expected classify timeout 120s, got %v", cfg.ClassifyTimeout)
	}
	if cfg.FetchTimeout != 20*time.Second {
		t.Errorf("expected fetch timeout 20s, got %v", cfg.FetchTimeout)
	}
	if cfg.MaxPolicySize != 204800 {
		t.Errorf("expected max policy size 204800, got %d", cfg.MaxPolicySize)
	}
	if cfg.WebhookURL != "https://hooks.example.com/firewall" {
		t.Errorf("expected webhook URL https://hooks.example.com/firewall, got %s", cfg.WebhookURL)
	}
}

func TestInvalidDurationEnv(t *testing.T) {
	t.Setenv("FIREWALL_READ_TIMEOUT", "invalid")

	cfg := New()
	if cfg.ReadTimeout != 30*time.Second {
		t.Errorf("expected fallback to default 30s for invalid duration, got %v", cfg.ReadTimeout)
	}
}

func TestInvalidInt64Env(t *testing.T) {
	t.Setenv("FIREWALL_MAX_POLICY_SIZE", "not-a-number")

	cfg := New()
	if cfg.MaxPolicySize != 2*1024*1024 {
		t.Errorf("expected fallback to default 2MB for invalid int64, got %d", cfg.MaxPolicySize)
	}
}

func TestEmptyEnvUsesDefault(t *testing.T) {
	_ = os.Setenv("FIREWALL_PORT", "")
	t.Cleanup(func() {
		_ = os.Unsetenv("FIREWALL_PORT")
	})

	cfg := New()
	if cfg.Port != "8080" {
		t.Errorf("expected empty env var to fall back to 8080, got %s", cfg.Port)
	}
}
