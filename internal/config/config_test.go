package config

import (
	"os"
	"testing"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsFloatOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal float64
		expected   float64
	}{
		{"parses float", "TEST_FLOAT_1", "0.35", 0.7, 0.35},
		{"uses default for empty", "TEST_FLOAT_2", "", 0.7, 0.7},
		{"uses default for garbage", "TEST_FLOAT_3", "warm", 0.7, 0.7},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsFloatOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsBoolOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		envValue   string
		defaultVal bool
		expected   bool
	}{
		{"true literal", "true", false, true},
		{"numeric off", "0", true, false},
		{"unknown keeps default", "maybe", true, true},
		{"empty keeps default", "", false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			os.Setenv("TEST_BOOL", tc.envValue)
			defer os.Unsetenv("TEST_BOOL")

			if got := getEnvAsBoolOrDefault("TEST_BOOL", tc.defaultVal); got != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("NONEXISTENT_REQUIRED_VAR")
	mustGetEnv("NONEXISTENT_REQUIRED_VAR")
}

func TestMustGetEnv_ReturnsValue(t *testing.T) {
	os.Setenv("TEST_REQUIRED", "value123")
	defer os.Unsetenv("TEST_REQUIRED")

	result := mustGetEnv("TEST_REQUIRED")
	if result != "value123" {
		t.Errorf("Expected 'value123', got %q", result)
	}
}

func TestLoad_MissingLLMKeyDoesNotPanic(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Unsetenv("OPENAI_API_KEY")
	defer os.Unsetenv("JWT_SECRET")

	cfg := Load()
	if cfg.LLMAPIKey() != "" {
		t.Errorf("Expected empty LLM key, got %q", cfg.LLMAPIKey())
	}
	if cfg.LLMProviderName() != "OpenAI" {
		t.Errorf("Expected OpenAI provider by default, got %q", cfg.LLMProviderName())
	}
	if cfg.LLMTemperature != 0.7 || cfg.LLMMaxTokens != 4000 {
		t.Errorf("Unexpected LLM defaults: temperature=%v maxTokens=%d", cfg.LLMTemperature, cfg.LLMMaxTokens)
	}
}

func TestLLMAPIKey_Gemini(t *testing.T) {
	cfg := &Config{LLMProvider: "gemini", GeminiAPIKey: "g-key", OpenAIAPIKey: "o-key"}
	if cfg.LLMAPIKey() != "g-key" {
		t.Errorf("Expected gemini key, got %q", cfg.LLMAPIKey())
	}
	if cfg.LLMProviderName() != "Gemini" {
		t.Errorf("Expected Gemini, got %q", cfg.LLMProviderName())
	}
}
