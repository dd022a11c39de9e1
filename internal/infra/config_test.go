package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"GOOGLE_API_KEY", "GEMINI_API_KEY", "MAIN_MODEL", "FALLBACK_MODEL",
		"MAX_STREAM_COUNT", "MAX_STREAM_RETRY_ATTEMPTS", "STREAM_RETRY_DELAY_SECONDS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MaxStreamCount != 6 {
		t.Errorf("MaxStreamCount = %d, want 6", cfg.MaxStreamCount)
	}
	if cfg.MaxRetryAttempts != 0 {
		t.Errorf("MaxRetryAttempts = %d, want 0", cfg.MaxRetryAttempts)
	}
	if cfg.RetryDelay != time.Second {
		t.Errorf("RetryDelay = %v, want 1s", cfg.RetryDelay)
	}
	if cfg.MainModel != DefaultModel {
		t.Errorf("MainModel = %q, want %q", cfg.MainModel, DefaultModel)
	}
}

func TestLoadConfigFractionalRetryDelay(t *testing.T) {
	t.Setenv("STREAM_RETRY_DELAY_SECONDS", "0.25")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.RetryDelay != 250*time.Millisecond {
		t.Errorf("RetryDelay = %v, want 250ms", cfg.RetryDelay)
	}
}

func TestLoadConfigGeminiKeyAlias(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "alias-key")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.GoogleAPIKey != "alias-key" {
		t.Errorf("GoogleAPIKey = %q, want alias", cfg.GoogleAPIKey)
	}
}

func TestModelsSequence(t *testing.T) {
	cases := []struct {
		name     string
		main     string
		fallback string
		want     []string
	}{
		{"both", "model-a", "model-b", []string{"model-a", "model-b"}},
		{"main only", "model-a", "", []string{"model-a"}},
		{"neither", "", "", []string{DefaultModel}},
		{"whitespace", "  ", " ", []string{DefaultModel}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{MainModel: tc.main, FallbackModel: tc.fallback}
			got := cfg.Models()
			if len(got) != len(tc.want) {
				t.Fatalf("Models() = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("Models()[%d] = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}
