// Where: internal/amberflo/client_test.go
// What: Tests for the Amberflo API client.
// Why: Auth headers, gzip decoding, retry policy, and error surfacing are the client's contract.
package amberflo

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateMeterSendsAuthAndBody(t *testing.T) {
	var gotKey, gotPath, gotMethod string
	var gotBody Meter
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotPath = r.URL.Path
		gotMethod = r.Method
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(Meter{ID: "m-1", Label: "API Calls", MeterAPIName: "api_calls", MeterType: "sum_of_all_usage"})
	}))
	defer server.Close()

	client := New(server.URL, "test-key")
	meter, err := client.CreateMeter(context.Background(), Meter{
		Label:        "API Calls",
		MeterAPIName: "api_calls",
		MeterType:    "sum_of_all_usage",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "test-key" {
		t.Fatalf("unexpected api key header: %q", gotKey)
	}
	if gotMethod != http.MethodPost || gotPath != "/meters" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if gotBody.MeterAPIName != "api_calls" {
		t.Fatalf("unexpected body: %+v", gotBody)
	}
	if meter.ID != "m-1" {
		t.Fatalf("unexpected response meter: %+v", meter)
	}
}

func TestCreateMeterRequiresFields(t *testing.T) {
	client := New("https://unused.test", "key")
	if _, err := client.CreateMeter(context.Background(), Meter{Label: "x"}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestUpdateMeterRequiresID(t *testing.T) {
	client := New("https://unused.test", "key")
	_, err := client.UpdateMeter(context.Background(), Meter{
		Label:        "API Calls",
		MeterAPIName: "api_calls",
		MeterType:    "sum_of_all_usage",
	})
	if err == nil {
		t.Fatalf("expected id error")
	}
}

func TestClientDecodesGzipResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		json.NewEncoder(gz).Encode([]Meter{{ID: "m-1", Label: "a", MeterAPIName: "a", MeterType: "sum_of_all_usage"}})
		gz.Close()
	}))
	defer server.Close()

	meters, err := New(server.URL, "key").ListMeters(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meters) != 1 || meters[0].ID != "m-1" {
		t.Fatalf("unexpected meters: %+v", meters)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(Meter{ID: "m-1", Label: "a", MeterAPIName: "a", MeterType: "sum_of_all_usage"})
	}))
	defer server.Close()

	meter, err := New(server.URL, "key").GetMeter(context.Background(), "m-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if meter.ID != "m-1" {
		t.Fatalf("unexpected meter: %+v", meter)
	}
}

func TestClientGivesUpAfterMaxAttempts(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := New(server.URL, "key").GetMeter(context.Background(), "m-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "no such meter", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := New(server.URL, "key").GetMeter(context.Background(), "m-404")
	if err == nil {
		t.Fatalf("expected error")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("unexpected error type: %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "no such meter" {
		t.Fatalf("provider response not surfaced verbatim: %+v", apiErr)
	}
}

func TestCancelUsageStampsFilterType(t *testing.T) {
	var gotPath string
	var gotBody CancelRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	_, err := New(server.URL, "key").CancelUsage(context.Background(), CancelRequest{
		ID:           "rule-1",
		MeterAPIName: "api_calls",
		IngestionTimeRange: TimeRange{
			StartTimeInSeconds: 1700000000,
			EndTimeInSeconds:   1700003600,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/ingest-snapshot/custom-filtering-rules" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotBody.Type != "by_property_filter_out" {
		t.Fatalf("filter type not stamped: %q", gotBody.Type)
	}
}

func TestGetUsageRequiresMeterAPIName(t *testing.T) {
	client := New("https://unused.test", "key")
	if _, err := client.GetUsage(context.Background(), UsageQuery{}); err == nil {
		t.Fatalf("expected validation error")
	}
}
