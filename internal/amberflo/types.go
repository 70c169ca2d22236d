// Where: internal/amberflo/types.go
// What: Request and response shapes for the Amberflo HTTP API.
// Why: Keep wire types separate from client mechanics.
package amberflo

// Meter describes a usage meter. Label, MeterAPIName, and MeterType are
// required on create and update; everything else is optional.
type Meter struct {
	ID               string   `json:"id,omitempty"`
	Label            string   `json:"label"`
	MeterAPIName     string   `json:"meterApiName"`
	MeterType        string   `json:"meterType"`
	Description      string   `json:"description,omitempty"`
	Dimensions       []string `json:"dimensions,omitempty"`
	LockedProperties []string `json:"lockedProperties,omitempty"`
}

// Valid reports whether the meter carries the fields the provider
// requires on create and update.
func (m Meter) Valid() bool {
	return m.Label != "" && m.MeterAPIName != "" && m.MeterType != ""
}

// IngestEvent is a single usage record. CustomerID carries the tenant
// identifier; Dimensions carry every extra attribute of the source event.
type IngestEvent struct {
	CustomerID        string            `json:"customerId"`
	MeterAPIName      string            `json:"meterApiName"`
	MeterValue        float64           `json:"meterValue"`
	MeterTimeInMillis int64             `json:"meterTimeInMillis"`
	Dimensions        map[string]string `json:"dimensions,omitempty"`
}

// TimeRange bounds a usage query or cancellation in epoch seconds.
// EndTimeInSeconds may be zero, meaning "now" on the provider side.
type TimeRange struct {
	StartTimeInSeconds int64 `json:"startTimeInSeconds"`
	EndTimeInSeconds   int64 `json:"endTimeInSeconds,omitempty"`
}

// UsageQuery selects usage for one meter over a time window.
type UsageQuery struct {
	MeterAPIName         string              `json:"meterApiName"`
	TimeRange            TimeRange           `json:"timeRange"`
	TimeGroupingInterval string              `json:"timeGroupingInterval,omitempty"`
	GroupBy              []string            `json:"groupBy,omitempty"`
	Filter               map[string][]string `json:"filter,omitempty"`
}

// CancelRequest filters previously ingested events out of billing. The
// provider models cancellation as a filtering rule, not a delete; Type is
// stamped by the client.
type CancelRequest struct {
	ID                 string              `json:"id"`
	MeterAPIName       string              `json:"meterApiName"`
	IngestionTimeRange TimeRange           `json:"ingestionTimeRange"`
	CustomerID         string              `json:"customerId,omitempty"`
	Filter             map[string][]string `json:"filter,omitempty"`
	Type               string              `json:"type,omitempty"`
}

// Valid reports whether the cancellation carries its required fields.
func (r CancelRequest) Valid() bool {
	return r.ID != "" && r.MeterAPIName != "" && r.IngestionTimeRange.StartTimeInSeconds != 0
}
