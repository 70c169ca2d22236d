// Where: internal/service/ingest.go
// What: Async ingest path for usage events.
// Why: The framework fires ingestUsage events at the function without waiting on completion.
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amberflo/sbt-aws-amberflo/internal/amberflo"
)

// handleIngest maps an ingestUsage event detail onto a provider ingest
// call. The tenant identifier becomes the provider's customer id; every
// detail field other than meterApiName and meterValue is carried as a
// dimension, tenantId included.
func (s *Service) handleIngest(ctx context.Context, detail json.RawMessage) (json.RawMessage, error) {
	var fields map[string]any
	if err := json.Unmarshal(detail, &fields); err != nil {
		return nil, fmt.Errorf("service: decode ingest detail: %w", err)
	}

	tenantID, _ := fields["tenantId"].(string)
	meterAPIName, _ := fields["meterApiName"].(string)
	if tenantID == "" || meterAPIName == "" {
		return nil, fmt.Errorf("service: ingest event requires tenantId and meterApiName")
	}
	meterValue, ok := toFloat(fields["meterValue"])
	if !ok {
		return nil, fmt.Errorf("service: ingest event requires numeric meterValue")
	}

	dimensions := make(map[string]string)
	for key, value := range fields {
		if key == "meterApiName" || key == "meterValue" {
			continue
		}
		dimensions[key] = fmt.Sprint(value)
	}

	return s.provider.Ingest(ctx, amberflo.IngestEvent{
		CustomerID:        tenantID,
		MeterAPIName:      meterAPIName,
		MeterValue:        meterValue,
		MeterTimeInMillis: s.now().UnixMilli(),
		Dimensions:        dimensions,
	})
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case json.Number:
		parsed, err := v.Float64()
		return parsed, err == nil
	default:
		return 0, false
	}
}
