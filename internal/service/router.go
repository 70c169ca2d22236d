// Where: internal/service/router.go
// What: HTTP surface of the metering service.
// Why: Map the framework's metering routes onto provider calls with the required validation.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"

	"github.com/amberflo/sbt-aws-amberflo/internal/amberflo"
)

const defaultUsageWindow = 24 * 60 * 60 // seconds

func (s *Service) handleHTTP(ctx context.Context, request events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPResponse {
	meterID := request.PathParameters["meterId"]

	switch request.RouteKey {
	case "POST /meters":
		return s.createMeter(ctx, request.Body)
	case "GET /meters":
		return s.fetchAllMeters(ctx)
	case "GET /meters/{meterId}":
		return s.fetchMeter(ctx, meterID)
	case "PUT /meters/{meterId}":
		return s.updateMeter(ctx, meterID, request.Body)
	case "DELETE /meters/{meterId}":
		return s.deleteMeter(ctx, meterID)
	case "GET /usage/{meterId}":
		return s.fetchUsage(ctx, meterID, request.QueryStringParameters)
	case "DELETE /usage":
		return s.cancelUsage(ctx, request.Body)
	}
	return errorResponse(http.StatusNotFound, fmt.Sprintf("unknown route %s", request.RouteKey))
}

func (s *Service) createMeter(ctx context.Context, body string) events.APIGatewayV2HTTPResponse {
	var meter amberflo.Meter
	if err := json.Unmarshal([]byte(body), &meter); err != nil {
		return errorResponse(http.StatusBadRequest, "malformed request body")
	}
	if !meter.Valid() {
		return errorResponse(http.StatusBadRequest, "Required properties missing for create meter")
	}
	created, err := s.provider.CreateMeter(ctx, meter)
	if err != nil {
		return providerErrorResponse(err)
	}
	return dataResponse(http.StatusCreated, created)
}

func (s *Service) fetchMeter(ctx context.Context, meterID string) events.APIGatewayV2HTTPResponse {
	if meterID == "" {
		return errorResponse(http.StatusBadRequest, "meterId is required")
	}
	meter, err := s.provider.GetMeter(ctx, meterID)
	if err != nil {
		return providerErrorResponse(err)
	}
	return dataResponse(http.StatusOK, meter)
}

func (s *Service) fetchAllMeters(ctx context.Context) events.APIGatewayV2HTTPResponse {
	meters, err := s.provider.ListMeters(ctx)
	if err != nil {
		return providerErrorResponse(err)
	}
	return dataResponse(http.StatusOK, meters)
}

func (s *Service) updateMeter(ctx context.Context, meterID, body string) events.APIGatewayV2HTTPResponse {
	if meterID == "" {
		return errorResponse(http.StatusBadRequest, "meterId is required")
	}
	var meter amberflo.Meter
	if err := json.Unmarshal([]byte(body), &meter); err != nil {
		return errorResponse(http.StatusBadRequest, "malformed request body")
	}
	if !meter.Valid() {
		return errorResponse(http.StatusBadRequest, "Required properties missing for update meter")
	}
	if meter.ID == "" {
		meter.ID = meterID
	}
	updated, err := s.provider.UpdateMeter(ctx, meter)
	if err != nil {
		return providerErrorResponse(err)
	}
	return dataResponse(http.StatusOK, updated)
}

func (s *Service) deleteMeter(ctx context.Context, meterID string) events.APIGatewayV2HTTPResponse {
	if meterID == "" {
		return errorResponse(http.StatusBadRequest, "meterId is required")
	}
	deleted, err := s.provider.DeleteMeter(ctx, meterID)
	if err != nil {
		return providerErrorResponse(err)
	}
	return dataResponse(http.StatusOK, deleted)
}

// fetchUsage resolves meterApiName from the meter when the query parameter
// is absent and defaults the window to the trailing 24 hours.
func (s *Service) fetchUsage(ctx context.Context, meterID string, params map[string]string) events.APIGatewayV2HTTPResponse {
	if meterID == "" {
		return errorResponse(http.StatusBadRequest, "meterId is required")
	}

	meterAPIName := params["meterApiName"]
	if meterAPIName == "" {
		meter, err := s.provider.GetMeter(ctx, meterID)
		if err != nil {
			return providerErrorResponse(err)
		}
		if meter.MeterAPIName == "" {
			return errorResponse(http.StatusBadRequest, "meterApiName could not be fetched from meterId")
		}
		meterAPIName = meter.MeterAPIName
	}

	start := parseEpoch(params["startTimeInSeconds"], s.now().Unix()-defaultUsageWindow)
	end := parseEpoch(params["endTimeInSeconds"], 0)

	usage, err := s.provider.GetUsage(ctx, amberflo.UsageQuery{
		MeterAPIName:         meterAPIName,
		TimeGroupingInterval: "DAY",
		TimeRange: amberflo.TimeRange{
			StartTimeInSeconds: start,
			EndTimeInSeconds:   end,
		},
	})
	if err != nil {
		return providerErrorResponse(err)
	}
	return dataResponse(http.StatusOK, usage)
}

func (s *Service) cancelUsage(ctx context.Context, body string) events.APIGatewayV2HTTPResponse {
	var request amberflo.CancelRequest
	if err := json.Unmarshal([]byte(body), &request); err != nil {
		return errorResponse(http.StatusBadRequest, "malformed request body")
	}
	if !request.Valid() {
		return errorResponse(http.StatusBadRequest, "Required properties missing for cancelUsage request")
	}
	rule, err := s.provider.CancelUsage(ctx, request)
	if err != nil {
		return providerErrorResponse(err)
	}
	return dataResponse(http.StatusOK, rule)
}

func parseEpoch(value string, fallback int64) int64 {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func dataResponse(status int, payload any) events.APIGatewayV2HTTPResponse {
	body, err := json.Marshal(map[string]any{"data": payload})
	if err != nil {
		return errorResponse(http.StatusInternalServerError, "encode response")
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func errorResponse(status int, message string) events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(map[string]string{"message": message})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

// providerErrorResponse surfaces the provider's status and message upward
// rather than synthesizing a new one.
func providerErrorResponse(err error) events.APIGatewayV2HTTPResponse {
	var apiErr *amberflo.APIError
	if errors.As(err, &apiErr) {
		return errorResponse(apiErr.StatusCode, apiErr.Message)
	}
	return errorResponse(http.StatusInternalServerError, err.Error())
}
