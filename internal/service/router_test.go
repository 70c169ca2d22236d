// Where: internal/service/router_test.go
// What: Tests for the metering service HTTP surface.
// Why: Route validation, defaults, and provider error surfacing are observable contract.
package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/amberflo/sbt-aws-amberflo/internal/amberflo"
)

type fakeProvider struct {
	meters     map[string]amberflo.Meter
	created    []amberflo.Meter
	updated    []amberflo.Meter
	deleted    []string
	ingested   []amberflo.IngestEvent
	usageQuery *amberflo.UsageQuery
	cancelled  []amberflo.CancelRequest
	err        error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{meters: map[string]amberflo.Meter{}}
}

func (f *fakeProvider) CreateMeter(_ context.Context, meter amberflo.Meter) (amberflo.Meter, error) {
	if f.err != nil {
		return amberflo.Meter{}, f.err
	}
	meter.ID = "m-created"
	f.created = append(f.created, meter)
	return meter, nil
}

func (f *fakeProvider) UpdateMeter(_ context.Context, meter amberflo.Meter) (amberflo.Meter, error) {
	if f.err != nil {
		return amberflo.Meter{}, f.err
	}
	f.updated = append(f.updated, meter)
	return meter, nil
}

func (f *fakeProvider) GetMeter(_ context.Context, meterID string) (amberflo.Meter, error) {
	if f.err != nil {
		return amberflo.Meter{}, f.err
	}
	return f.meters[meterID], nil
}

func (f *fakeProvider) ListMeters(_ context.Context) ([]amberflo.Meter, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]amberflo.Meter, 0, len(f.meters))
	for _, meter := range f.meters {
		out = append(out, meter)
	}
	return out, nil
}

func (f *fakeProvider) DeleteMeter(_ context.Context, meterID string) (amberflo.Meter, error) {
	if f.err != nil {
		return amberflo.Meter{}, f.err
	}
	f.deleted = append(f.deleted, meterID)
	return f.meters[meterID], nil
}

func (f *fakeProvider) Ingest(_ context.Context, event amberflo.IngestEvent) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.ingested = append(f.ingested, event)
	return json.RawMessage(`{"accepted":true}`), nil
}

func (f *fakeProvider) GetUsage(_ context.Context, query amberflo.UsageQuery) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.usageQuery = &query
	return json.RawMessage(`{"usage":[]}`), nil
}

func (f *fakeProvider) CancelUsage(_ context.Context, request amberflo.CancelRequest) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.cancelled = append(f.cancelled, request)
	return json.RawMessage(`{"ok":true}`), nil
}

func fixedService(provider ProviderAPI, at time.Time) *Service {
	svc := New(provider)
	svc.now = func() time.Time { return at }
	return svc
}

func httpRequest(routeKey string, pathParams map[string]string, query map[string]string, body string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		RouteKey:              routeKey,
		PathParameters:        pathParams,
		QueryStringParameters: query,
		Body:                  body,
	}
}

func TestCreateMeterReturnsCreated(t *testing.T) {
	provider := newFakeProvider()
	svc := New(provider)

	resp := svc.handleHTTP(context.Background(), httpRequest("POST /meters", nil, nil,
		`{"label":"API Calls","meterApiName":"api_calls","meterType":"sum_of_all_usage"}`))

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status: %d (%s)", resp.StatusCode, resp.Body)
	}
	if len(provider.created) != 1 {
		t.Fatalf("expected one create call, got %d", len(provider.created))
	}
}

func TestCreateMeterRejectsMissingProperties(t *testing.T) {
	provider := newFakeProvider()
	svc := New(provider)

	resp := svc.handleHTTP(context.Background(), httpRequest("POST /meters", nil, nil,
		`{"label":"API Calls"}`))

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if len(provider.created) != 0 {
		t.Fatalf("provider must not be called on invalid input")
	}
}

func TestUpdateMeterDefaultsIDFromPath(t *testing.T) {
	provider := newFakeProvider()
	svc := New(provider)

	resp := svc.handleHTTP(context.Background(), httpRequest("PUT /meters/{meterId}",
		map[string]string{"meterId": "m-7"}, nil,
		`{"label":"API Calls","meterApiName":"api_calls","meterType":"sum_of_all_usage"}`))

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", resp.StatusCode, resp.Body)
	}
	if len(provider.updated) != 1 || provider.updated[0].ID != "m-7" {
		t.Fatalf("meter id not defaulted from path: %+v", provider.updated)
	}
}

func TestFetchUsageDefaultsWindowAndInterval(t *testing.T) {
	provider := newFakeProvider()
	provider.meters["m-1"] = amberflo.Meter{ID: "m-1", MeterAPIName: "api_calls"}
	at := time.Unix(1700100000, 0)
	svc := fixedService(provider, at)

	resp := svc.handleHTTP(context.Background(), httpRequest("GET /usage/{meterId}",
		map[string]string{"meterId": "m-1"}, nil, ""))

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", resp.StatusCode, resp.Body)
	}
	query := provider.usageQuery
	if query == nil {
		t.Fatalf("usage not queried")
	}
	if query.MeterAPIName != "api_calls" {
		t.Fatalf("meterApiName not resolved from meterId: %+v", query)
	}
	if query.TimeGroupingInterval != "DAY" {
		t.Fatalf("unexpected grouping interval: %s", query.TimeGroupingInterval)
	}
	if query.TimeRange.StartTimeInSeconds != at.Unix()-24*60*60 {
		t.Fatalf("unexpected window start: %d", query.TimeRange.StartTimeInSeconds)
	}
	if query.TimeRange.EndTimeInSeconds != 0 {
		t.Fatalf("unexpected window end: %d", query.TimeRange.EndTimeInSeconds)
	}
}

func TestFetchUsageHonorsExplicitParams(t *testing.T) {
	provider := newFakeProvider()
	svc := New(provider)

	resp := svc.handleHTTP(context.Background(), httpRequest("GET /usage/{meterId}",
		map[string]string{"meterId": "m-1"},
		map[string]string{
			"meterApiName":       "api_calls",
			"startTimeInSeconds": "1700000000",
			"endTimeInSeconds":   "1700003600",
		}, ""))

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", resp.StatusCode, resp.Body)
	}
	query := provider.usageQuery
	if query.TimeRange.StartTimeInSeconds != 1700000000 || query.TimeRange.EndTimeInSeconds != 1700003600 {
		t.Fatalf("explicit window not honored: %+v", query.TimeRange)
	}
}

func TestFetchUsageFailsWhenMeterAPINameUnresolvable(t *testing.T) {
	provider := newFakeProvider()
	provider.meters["m-1"] = amberflo.Meter{ID: "m-1"}
	svc := New(provider)

	resp := svc.handleHTTP(context.Background(), httpRequest("GET /usage/{meterId}",
		map[string]string{"meterId": "m-1"}, nil, ""))

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestCancelUsageRequiresFields(t *testing.T) {
	provider := newFakeProvider()
	svc := New(provider)

	resp := svc.handleHTTP(context.Background(), httpRequest("DELETE /usage", nil, nil,
		`{"meterApiName":"api_calls"}`))

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if len(provider.cancelled) != 0 {
		t.Fatalf("provider must not be called on invalid input")
	}
}

func TestProviderErrorsSurfacedVerbatim(t *testing.T) {
	provider := newFakeProvider()
	provider.err = &amberflo.APIError{StatusCode: http.StatusConflict, Message: "meter exists"}
	svc := New(provider)

	resp := svc.handleHTTP(context.Background(), httpRequest("POST /meters", nil, nil,
		`{"label":"API Calls","meterApiName":"api_calls","meterType":"sum_of_all_usage"}`))

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("provider status not surfaced: %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != "meter exists" {
		t.Fatalf("provider message not surfaced: %q", body["message"])
	}
}

func TestUnknownRouteReturnsNotFound(t *testing.T) {
	svc := New(newFakeProvider())
	resp := svc.handleHTTP(context.Background(), httpRequest("PATCH /meters", nil, nil, ""))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}
