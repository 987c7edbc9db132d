package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.input, got, tt.expected)
		}
	}
}

func TestStartupLoggerLog(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = orig })
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")

	NewStartupLogger("daily-panda").
		CommitHash("abc123").
		Storage("root", "/srv/panda").
		Model("text", "gemini-2.5-flash-lite").
		Model("image", "gemini-2.5-flash-image").
		Feature("dryRun", true).
		Config("timeout", "3m0s").
		Log()

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("startup log is not JSON: %v\n%s", err, buf.String())
	}

	process := doc["process"].(map[string]any)
	if process["name"] != "daily-panda" || process["commitHash"] != "abc123" {
		t.Errorf("unexpected process block %v", process)
	}
	if _, ok := process["functionName"]; ok {
		t.Error("functionName should only be logged inside Lambda")
	}
	if doc["storage"].(map[string]any)["root"] != "/srv/panda" {
		t.Errorf("unexpected storage block %v", doc["storage"])
	}
	if doc["models"].(map[string]any)["image"] != "gemini-2.5-flash-image" {
		t.Errorf("unexpected models block %v", doc["models"])
	}
	if doc["features"].(map[string]any)["dryRun"] != true {
		t.Errorf("unexpected features block %v", doc["features"])
	}
	if _, ok := doc["ssmParams"]; ok {
		t.Error("empty sections should be omitted")
	}
	if doc["message"] != "Startup configuration" {
		t.Errorf("unexpected message %v", doc["message"])
	}
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("PANDA_TEST_VALUE", "")
	if got := EnvOrDefault("PANDA_TEST_VALUE", "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
	t.Setenv("PANDA_TEST_VALUE", "set")
	if got := EnvOrDefault("PANDA_TEST_VALUE", "fallback"); got != "set" {
		t.Errorf("expected set, got %q", got)
	}
}
