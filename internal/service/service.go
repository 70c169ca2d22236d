// Where: internal/service/service.go
// What: Metering service dispatch.
// Why: One Lambda serves both the HTTP surface and the async ingest event path.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/amberflo/sbt-aws-amberflo/internal/amberflo"
)

// ingestDetailType marks EventBridge events carrying usage to ingest.
const ingestDetailType = "ingestUsage"

// ProviderAPI is the slice of the Amberflo client the service uses.
// Narrowed to an interface so tests run against a fake.
type ProviderAPI interface {
	CreateMeter(ctx context.Context, meter amberflo.Meter) (amberflo.Meter, error)
	UpdateMeter(ctx context.Context, meter amberflo.Meter) (amberflo.Meter, error)
	GetMeter(ctx context.Context, meterID string) (amberflo.Meter, error)
	ListMeters(ctx context.Context) ([]amberflo.Meter, error)
	DeleteMeter(ctx context.Context, meterID string) (amberflo.Meter, error)
	Ingest(ctx context.Context, event amberflo.IngestEvent) (json.RawMessage, error)
	GetUsage(ctx context.Context, query amberflo.UsageQuery) (json.RawMessage, error)
	CancelUsage(ctx context.Context, request amberflo.CancelRequest) (json.RawMessage, error)
}

// Service routes Lambda invocations to provider calls.
type Service struct {
	provider ProviderAPI
	now      func() time.Time
}

// New creates a service backed by the given provider client.
func New(provider ProviderAPI) *Service {
	return &Service{
		provider: provider,
		now:      time.Now,
	}
}

// Handle is the Lambda entrypoint. EventBridge ingest events are detected
// by detail-type; everything else is treated as an API Gateway HTTP event.
func (s *Service) Handle(ctx context.Context, raw json.RawMessage) (any, error) {
	var probe struct {
		DetailType string `json:"detail-type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("service: decode event: %w", err)
	}

	if probe.DetailType == ingestDetailType {
		var event events.CloudWatchEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, fmt.Errorf("service: decode ingest event: %w", err)
		}
		return s.handleIngest(ctx, event.Detail)
	}

	var request events.APIGatewayV2HTTPRequest
	if err := json.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("service: decode http event: %w", err)
	}
	return s.handleHTTP(ctx, request), nil
}
