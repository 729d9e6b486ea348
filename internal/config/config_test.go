package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.RetrievalTopK != 5 {
		t.Errorf("expected default top K 5, got %d", cfg.RetrievalTopK)
	}
	if cfg.RelevanceThreshold != 0.3 {
		t.Errorf("expected default threshold 0.3, got %g", cfg.RelevanceThreshold)
	}
	if cfg.LLMTimeoutSeconds != 60 {
		t.Errorf("expected default LLM timeout 60, got %d", cfg.LLMTimeoutSeconds)
	}
	if cfg.SOPsPath == "" || cfg.PoliciesPath == "" || cfg.GuidelinesPath == "" {
		t.Error("expected default knowledge base paths")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Setenv("RETRIEVAL_TOP_K", "3")
	os.Setenv("RELEVANCE_THRESHOLD", "1.5")
	defer os.Unsetenv("RETRIEVAL_TOP_K")
	defer os.Unsetenv("RELEVANCE_THRESHOLD")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RetrievalTopK != 3 {
		t.Errorf("expected top K 3, got %d", cfg.RetrievalTopK)
	}
	if cfg.RelevanceThreshold != 1.5 {
		t.Errorf("expected threshold 1.5, got %g", cfg.RelevanceThreshold)
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}

	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
}

func TestConfig_Durations(t *testing.T) {
	c := &Config{LLMTimeoutSeconds: 30, RequestTimeoutSeconds: 15}
	if c.LLMTimeout() != 30*time.Second {
		t.Errorf("unexpected LLM timeout: %v", c.LLMTimeout())
	}
	if c.RequestTimeout() != 15*time.Second {
		t.Errorf("unexpected request timeout: %v", c.RequestTimeout())
	}
}

func TestConfig_Validate(t *testing.T) {
	c := &Config{Env: "production", RequestTimeoutSeconds: 30}
	if err := c.Validate(); err == nil {
		t.Error("production without AUTH_SIGNING_KEY must fail validation")
	}

	c.AuthSigningKey = "secret"
	if err := c.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	c.RetrievalTopK = -1
	if err := c.Validate(); err == nil {
		t.Error("negative top K must fail validation")
	}

	c.RetrievalTopK = 5
	c.RequestTimeoutSeconds = 0
	if err := c.Validate(); err == nil {
		t.Error("non-positive request timeout must fail validation")
	}
}

func TestConfig_Validate_DevWithoutKey(t *testing.T) {
	c := &Config{Env: "development", RequestTimeoutSeconds: 30}
	if err := c.Validate(); err != nil {
		t.Errorf("development mode must not require a signing key: %v", err)
	}
}
