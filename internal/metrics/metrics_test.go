package metrics

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
)

func capture(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()
	fn()
	return buf.String()
}

func TestFlush_EmitsSingleJSONLine(t *testing.T) {
	line := capture(t, func() {
		New("transcoder").
			Metric("TranscodeDuration", 1234.5, UnitMilliseconds).
			Metric("OutputSize", 204800, UnitBytes).
			Count("TranscodeSuccess").
			Property("submission_id", "abc-123").
			Flush()
	})

	if strings.Count(line, "\n") != 1 {
		t.Fatalf("expected exactly one line, got %q", line)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(line), &doc); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}

	if doc["component"] != "transcoder" {
		t.Errorf("component = %v, want transcoder", doc["component"])
	}
	if _, ok := doc["ts"].(float64); !ok {
		t.Errorf("ts missing or not numeric: %v", doc["ts"])
	}
	if doc["submission_id"] != "abc-123" {
		t.Errorf("property submission_id = %v, want abc-123", doc["submission_id"])
	}

	ms, ok := doc["metrics"].(map[string]interface{})
	if !ok {
		t.Fatalf("metrics section missing: %v", doc)
	}

	dur, ok := ms["TranscodeDuration"].(map[string]interface{})
	if !ok {
		t.Fatalf("TranscodeDuration missing: %v", ms)
	}
	if dur["value"] != 1234.5 {
		t.Errorf("TranscodeDuration value = %v, want 1234.5", dur["value"])
	}
	if dur["unit"] != UnitMilliseconds {
		t.Errorf("TranscodeDuration unit = %v, want %s", dur["unit"], UnitMilliseconds)
	}

	success, ok := ms["TranscodeSuccess"].(map[string]interface{})
	if !ok {
		t.Fatalf("TranscodeSuccess missing: %v", ms)
	}
	if success["value"] != 1.0 || success["unit"] != UnitCount {
		t.Errorf("TranscodeSuccess = %v, want value 1 unit Count", success)
	}
}

func TestFlush_NoMetricsEmitsNothing(t *testing.T) {
	line := capture(t, func() {
		New("gateway").Property("submission_id", "abc").Flush()
	})

	if line != "" {
		t.Errorf("expected no output for a metric-less recorder, got %q", line)
	}
}

func TestFlush_ConcurrentRecordersEmitWholeLines(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	const flushers = 16
	var wg sync.WaitGroup
	for i := 0; i < flushers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			New("gateway").
				Metric("Work", float64(n), UnitCount).
				Flush()
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != flushers {
		t.Fatalf("expected %d lines, got %d", flushers, len(lines))
	}
	for _, line := range lines {
		var doc map[string]interface{}
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			t.Errorf("interleaved or corrupt line %q: %v", line, err)
		}
	}
}

func TestMetric_LastWriteWins(t *testing.T) {
	line := capture(t, func() {
		New("gateway").
			Metric("Retries", 1, UnitCount).
			Metric("Retries", 3, UnitCount).
			Flush()
	})

	var doc struct {
		Metrics map[string]struct {
			Value float64 `json:"value"`
		} `json:"metrics"`
	}
	if err := json.Unmarshal([]byte(line), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := doc.Metrics["Retries"].Value; got != 3 {
		t.Errorf("Retries = %v, want 3", got)
	}
}
