package metrics

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestNew_FunctionNameDimension(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "DailyPandaFunction")

	r := New(Namespace)
	if r.namespace != Namespace {
		t.Errorf("expected namespace %s, got %s", Namespace, r.namespace)
	}
	if r.dimensions["FunctionName"] != "DailyPandaFunction" {
		t.Errorf("expected FunctionName dimension, got %q", r.dimensions["FunctionName"])
	}
}

func TestNew_NoFunctionNameOutsideLambda(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")

	r := New(Namespace)
	if _, ok := r.dimensions["FunctionName"]; ok {
		t.Error("FunctionName dimension should not be set outside Lambda")
	}
}

func TestRecorder_FlushOutput(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")

	var buf bytes.Buffer
	rec := New(Namespace).WithWriter(&buf)
	rec.now = func() time.Time { return time.UnixMilli(1700000000000) }
	rec.Dimension("Result", "success")
	rec.Duration("RunLatencyMs", 1234*time.Millisecond)
	rec.Metric("ImageBytes", 2048, UnitBytes)
	rec.Property("runId", "abc-123")
	rec.Flush()

	output := buf.Bytes()
	if bytes.Count(output, []byte("\n")) != 1 {
		t.Fatalf("expected exactly one line, got %q", output)
	}

	var doc map[string]any
	if err := json.Unmarshal(output, &doc); err != nil {
		t.Fatalf("failed to parse EMF output as JSON: %v\nOutput: %s", err, output)
	}

	awsMap, ok := doc["_aws"].(map[string]any)
	if !ok {
		t.Fatal("missing _aws directive in EMF output")
	}
	if awsMap["Timestamp"].(float64) != 1700000000000 {
		t.Errorf("unexpected timestamp %v", awsMap["Timestamp"])
	}

	cwMetrics := awsMap["CloudWatchMetrics"].([]any)
	if len(cwMetrics) != 1 {
		t.Fatalf("expected 1 CloudWatchMetrics entry, got %d", len(cwMetrics))
	}
	entry := cwMetrics[0].(map[string]any)
	if entry["Namespace"] != Namespace {
		t.Errorf("expected namespace %s, got %v", Namespace, entry["Namespace"])
	}

	defs := entry["Metrics"].([]any)
	if len(defs) != 2 {
		t.Fatalf("expected 2 metric definitions, got %d", len(defs))
	}
	first := defs[0].(map[string]any)
	if first["Name"] != "ImageBytes" || first["Unit"] != UnitBytes {
		t.Errorf("metric definitions should be sorted by name, got %v", first)
	}

	if doc["Result"] != "success" {
		t.Errorf("expected Result=success, got %v", doc["Result"])
	}
	if doc["RunLatencyMs"] != 1234.0 {
		t.Errorf("expected RunLatencyMs=1234, got %v", doc["RunLatencyMs"])
	}
	if doc["runId"] != "abc-123" {
		t.Errorf("expected runId=abc-123, got %v", doc["runId"])
	}
}

func TestRecorder_NoMetricsNoOutput(t *testing.T) {
	var buf bytes.Buffer
	New(Namespace).WithWriter(&buf).Dimension("Result", "success").Flush()
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
