// Where: internal/adapter/capabilities.go
// What: Capability map exposed to the host framework.
// Why: The framework routes metering operations through a fixed, closed set of handles.
package adapter

import "fmt"

// Operation names one of the metering operations the host framework
// requires. The set is closed: a provider adapter must expose all of them.
type Operation string

const (
	OpCreateMeter       Operation = "createMeter"
	OpFetchMeter        Operation = "fetchMeter"
	OpFetchAllMeters    Operation = "fetchAllMeters"
	OpUpdateMeter       Operation = "updateMeter"
	OpDeleteMeter       Operation = "deleteMeter"
	OpIngestUsageEvent  Operation = "ingestUsageEvent"
	OpFetchUsage        Operation = "fetchUsage"
	OpCancelUsageEvents Operation = "cancelUsageEvents"
)

// AllOperations lists the closed operation set in a stable order.
func AllOperations() []Operation {
	return []Operation{
		OpCreateMeter,
		OpFetchMeter,
		OpFetchAllMeters,
		OpUpdateMeter,
		OpDeleteMeter,
		OpIngestUsageEvent,
		OpFetchUsage,
		OpCancelUsageEvents,
	}
}

// InvocationStyle is how a capability's caller relates to completion:
// synchronous callers wait for the function's response, asynchronous
// callers only for dispatch acknowledgment. The values double as Lambda
// invocation types so the invoker needs no mapping layer.
type InvocationStyle string

const (
	StyleSync  InvocationStyle = "RequestResponse"
	StyleAsync InvocationStyle = "Event"
)

// Handle is an invocation handle for one operation. All handles built by
// this adapter alias the same underlying function.
type Handle struct {
	Operation    Operation
	FunctionName string
	Style        InvocationStyle
}

// Capabilities is the full capability map. It is built once at adapter
// construction and read-only afterwards.
type Capabilities map[Operation]Handle

// Validate checks that every operation in the closed set is present
// exactly once.
func (c Capabilities) Validate() error {
	for _, op := range AllOperations() {
		handle, ok := c[op]
		if !ok {
			return fmt.Errorf("adapter: capability %s missing", op)
		}
		if handle.Operation != op {
			return fmt.Errorf("adapter: capability %s mapped to %s", op, handle.Operation)
		}
	}
	if len(c) != len(AllOperations()) {
		return fmt.Errorf("adapter: capability map has %d entries, want %d", len(c), len(AllOperations()))
	}
	return nil
}

// MeteringProvider is the capability-set contract the host framework
// consumes. Any provider adapter satisfies it structurally; this package
// ships the Amberflo implementer.
type MeteringProvider interface {
	CreateMeter() Handle
	FetchMeter() Handle
	FetchAllMeters() Handle
	UpdateMeter() Handle
	DeleteMeter() Handle
	IngestUsageEvent() Handle
	FetchUsage() Handle
	CancelUsageEvents() Handle
}
